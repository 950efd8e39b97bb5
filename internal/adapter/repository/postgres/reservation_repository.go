package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/resort_booking/internal/core/domain"
)

var ErrDuplicateReference = errors.New("reference code already exists")

const uniqueViolation = "23505"

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO reservations (id, reference_code, customer_name, customer_email, customer_phone,
		check_in, check_out, currency, total_amount, downpayment, payment_status, status,
		proof_of_payment, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var downpayment sql.NullInt64
	if res.Downpayment != nil {
		downpayment = sql.NullInt64{Int64: res.Downpayment.Amount(), Valid: true}
	}

	_, err = tx.ExecContext(ctx, queryHeader,
		res.ID, res.ReferenceCode, res.Customer.Name, res.Customer.Email, res.Customer.Phone,
		res.CheckIn, res.CheckOut, res.TotalAmount.Currency(), res.TotalAmount.Amount(), downpayment,
		string(res.PaymentStatus), string(res.Status), res.ProofOfPaymentPresent, res.CreatedAt, res.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("insert reservation %s: %w", res.ReferenceCode, ErrDuplicateReference)
		}
		return fmt.Errorf("failed to insert reservation header: %w", err)
	}

	queryItem := `
	INSERT INTO reservation_items (reservation_id, amenity_id, amenity_name, quantity, unit_price)
	VALUES ($1, $2, $3, $4, $5)
	`

	stmt, err := tx.PrepareContext(ctx, queryItem)
	if err != nil {
		return fmt.Errorf("failed to prepare item statement: %w", err)
	}

	defer stmt.Close()

	for _, item := range res.Items {
		_, err := stmt.ExecContext(ctx, res.ID, item.AmenityID, item.AmenityName, item.Quantity, item.UnitPrice.Amount())
		if err != nil {
			return fmt.Errorf("failed to insert reservation item %s: %w", item.AmenityID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const selectReservation = `
	SELECT id, reference_code, customer_name, customer_email, customer_phone,
		check_in, check_out, currency, total_amount, downpayment, payment_status, status,
		proof_of_payment, created_at, expires_at
	FROM reservations
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res         domain.Reservation
		currency    string
		total       int64
		downpayment sql.NullInt64
		payment     string
		status      string
		phone       sql.NullString
	)

	err := row.Scan(
		&res.ID,
		&res.ReferenceCode,
		&res.Customer.Name,
		&res.Customer.Email,
		&phone,
		&res.CheckIn,
		&res.CheckOut,
		&currency,
		&total,
		&downpayment,
		&payment,
		&status,
		&res.ProofOfPaymentPresent,
		&res.CreatedAt,
		&res.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	res.Customer.Phone = phone.String
	res.TotalAmount = domain.New(total, currency)
	if downpayment.Valid {
		dp := domain.New(downpayment.Int64, currency)
		res.Downpayment = &dp
	}
	res.PaymentStatus = domain.PaymentStatus(payment)

	// Every predicate in this file compares against the canonical spelling,
	// so a row that escaped migration 002 must not load as if it matched.
	st := domain.BookingStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("reservation %s: %w", res.ID, &domain.UnknownStatusError{Status: status})
	}
	res.Status = st

	return &res, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, selectReservation+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *ReservationRepository) loadChildren(ctx context.Context, res *domain.Reservation) error {
	currency := res.TotalAmount.Currency()

	rows, err := r.db.QueryContext(ctx, `
	SELECT amenity_id, amenity_name, quantity, unit_price
	FROM reservation_items
	WHERE reservation_id = $1
	ORDER BY id
	`, res.ID)
	if err != nil {
		return fmt.Errorf("failed to load items of %s: %w", res.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.LineItem
		var price int64
		if err := rows.Scan(&item.AmenityID, &item.AmenityName, &item.Quantity, &price); err != nil {
			return err
		}
		item.UnitPrice = domain.New(price, currency)
		res.Items = append(res.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	extRows, err := r.db.QueryContext(ctx, `
	SELECT hours, additional_cost, created_at
	FROM reservation_extensions
	WHERE reservation_id = $1
	ORDER BY created_at
	`, res.ID)
	if err != nil {
		return fmt.Errorf("failed to load extensions of %s: %w", res.ID, err)
	}
	defer extRows.Close()

	for extRows.Next() {
		var ext domain.ExtensionRecord
		var cost int64
		if err := extRows.Scan(&ext.Hours, &cost, &ext.Timestamp); err != nil {
			return err
		}
		ext.AdditionalCost = domain.New(cost, currency)
		res.Extensions = append(res.Extensions, ext)
	}

	return extRows.Err()
}

// ListByStatuses returns reservation headers only; items and extensions are
// loaded by GetByID.
func (r *ReservationRepository) ListByStatuses(ctx context.Context, statuses []domain.BookingStatus) ([]domain.Reservation, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	rows, err := r.db.QueryContext(ctx, selectReservation+`WHERE status = ANY($1) ORDER BY check_in DESC`, pq.Array(names))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}

	return out, rows.Err()
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	query := `
	UPDATE reservations
	SET status = $1, payment_status = CASE WHEN $1 IN ('CHECKED_IN', 'COMPLETED') THEN 'PAID' ELSE payment_status END
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrStatusConflict
	}

	return nil
}

// MarkProofOfPayment only touches pending reservations; a reservation that
// was declined or approved in the meantime reports ErrStatusConflict.
func (r *ReservationRepository) MarkProofOfPayment(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
	UPDATE reservations SET proof_of_payment = TRUE
	WHERE id = $1 AND status = 'PENDING'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrStatusConflict
	}

	return nil
}

// AppendExtension records the extension and pushes total and check-out
// forward in the same transaction.
func (r *ReservationRepository) AppendExtension(ctx context.Context, id uuid.UUID, ext domain.ExtensionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO reservation_extensions (reservation_id, hours, additional_cost, created_at)
	VALUES ($1, $2, $3, $4)
	`, id, ext.Hours, ext.AdditionalCost.Amount(), ext.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert extension: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
	UPDATE reservations
	SET total_amount = total_amount + $1,
		check_out = check_out + make_interval(hours => $2)
	WHERE id = $3 AND status = 'CHECKED_IN'
	`, ext.AdditionalCost.Amount(), ext.Hours, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation total: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrStatusConflict
	}

	return tx.Commit()
}

func (r *ReservationRepository) GetExpiredPending(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM reservations
	WHERE status = 'PENDING' AND proof_of_payment = FALSE AND expires_at < $1
	LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
