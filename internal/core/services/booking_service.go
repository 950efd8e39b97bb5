package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/ports"
)

type CreateReservationRequest struct {
	Customer domain.Customer       `json:"customer"`
	Order    domain.SubmittedOrder `json:"order"`
}

type ExtendRequest struct {
	Hours          int          `json:"hours"`
	AdditionalCost domain.Money `json:"additional_cost"`
}

type BookingServiceConfig struct {
	PendingTTL      time.Duration
	CleanupInterval time.Duration
}

type BookingService struct {
	reservationRepo ports.ReservationRepository
	publisher       ports.StatusPublisher
	lifecycle       *LifecycleClassifier
	pricing         *PricingEngine
	cfg             BookingServiceConfig
	log             *zap.Logger
	now             func() time.Time
}

func NewBookingService(
	reservationRepo ports.ReservationRepository,
	publisher ports.StatusPublisher,
	pricing *PricingEngine,
	cfg BookingServiceConfig,
	log *zap.Logger,
) *BookingService {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{
		reservationRepo: reservationRepo,
		publisher:       publisher,
		lifecycle:       NewLifecycleClassifier(),
		pricing:         pricing,
		cfg:             cfg,
		log:             log,
		now:             time.Now,
	}
}

func newReferenceCode(id uuid.UUID) string {
	return "RSV-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func (s *BookingService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return nil, &domain.ValidationError{Field: "customer.name", Reason: "is required"}
	}
	if strings.TrimSpace(req.Customer.Email) == "" {
		return nil, &domain.ValidationError{Field: "customer.email", Reason: "is required"}
	}
	if len(req.Order.Items) == 0 {
		return nil, &domain.ValidationError{Field: "order", Reason: "has no items"}
	}
	if !req.Order.Schedule.CheckIn.Before(req.Order.Schedule.CheckOut) {
		return nil, &domain.ValidationError{Field: "schedule", Reason: "check-in must be before check-out"}
	}
	if _, err := req.Order.Total.Subtract(req.Order.Downpayment); err != nil {
		return nil, fmt.Errorf("downpayment exceeds total: %w", err)
	}

	id := uuid.New()
	now := s.now().UTC()

	items := make([]domain.LineItem, 0, len(req.Order.Items))
	for _, it := range req.Order.Items {
		items = append(items, domain.LineItem{
			AmenityID:   it.AmenityID,
			AmenityName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	dp := req.Order.Downpayment
	reservation := &domain.Reservation{
		ID:            id,
		ReferenceCode: newReferenceCode(id),
		Customer:      req.Customer,
		CheckIn:       req.Order.Schedule.CheckIn,
		CheckOut:      req.Order.Schedule.CheckOut,
		Items:         items,
		TotalAmount:   req.Order.Total,
		Downpayment:   &dp,
		PaymentStatus: domain.PaymentUnpaid,
		Status:        domain.BookingPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.PendingTTL),
	}

	if err := s.reservationRepo.CreateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", id.String()),
		zap.String("reference_code", reservation.ReferenceCode),
		zap.Int64("total_amount", reservation.TotalAmount.Amount()),
	)

	return reservation, nil
}

func (s *BookingService) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			return nil, &domain.NotFoundError{Kind: "reservation", ID: id.String()}
		}
		return nil, fmt.Errorf("load reservation %s: %w", id, err)
	}
	return r, nil
}

func (s *BookingService) ListReservations(ctx context.Context, bucket domain.Bucket) ([]domain.Reservation, error) {
	statuses, err := s.lifecycle.StatusesIn(bucket)
	if err != nil {
		return nil, err
	}

	rows, err := s.reservationRepo.ListByStatuses(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("list %s reservations: %w", bucket, err)
	}

	out := rows[:0]
	for _, r := range rows {
		got, err := s.lifecycle.ClassifyBucket(r.Status)
		if err != nil {
			return nil, fmt.Errorf("reservation %s: %w", r.ID, err)
		}
		if got == bucket {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *BookingService) ListReservationsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Reservation, error) {
	if !status.Valid() {
		return nil, &domain.UnknownStatusError{Status: string(status)}
	}

	rows, err := s.reservationRepo.ListByStatuses(ctx, []domain.BookingStatus{status})
	if err != nil {
		return nil, fmt.Errorf("list %s reservations: %w", status, err)
	}
	return rows, nil
}

func (s *BookingService) Breakdown(ctx context.Context, id uuid.UUID) (PricingBreakdown, error) {
	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return PricingBreakdown{}, err
	}

	b, err := s.pricing.ComputeBreakdown(*r)
	if err != nil {
		s.log.Warn("inconsistent reservation amounts",
			zap.String("reservation_id", id.String()),
			zap.Error(err),
		)
	}
	return b, err
}

func (s *BookingService) AllowedActions(ctx context.Context, id uuid.UUID) ([]domain.Action, error) {
	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.AllowedActions(r.Status)
}

// PerformAction runs a lifecycle action that changes status. Extensions go
// through Extend since they carry a payload.
func (s *BookingService) PerformAction(ctx context.Context, id uuid.UUID, action domain.Action) (*domain.Reservation, error) {
	if action == domain.ActionExtend {
		return nil, &domain.ValidationError{Field: "action", Reason: "extend requires hours and cost"}
	}

	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	cmd, err := s.lifecycle.Apply(r, action)
	if err != nil {
		return nil, err
	}

	if cmd.ChangesStatus() {
		if err := s.commit(ctx, cmd); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (s *BookingService) commit(ctx context.Context, cmd domain.StatusCommand) error {
	if err := s.reservationRepo.UpdateStatus(ctx, cmd.ReservationID, cmd.From, cmd.Target); err != nil {
		return fmt.Errorf("update status of %s: %w", cmd.ReservationID, err)
	}

	s.log.Info("reservation status changed",
		zap.String("reservation_id", cmd.ReservationID.String()),
		zap.String("from", string(cmd.From)),
		zap.String("to", string(cmd.Target)),
		zap.String("action", string(cmd.Action)),
	)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishStatusCommand(ctx, cmd); err != nil {
		s.log.Error("failed to publish status command",
			zap.String("reservation_id", cmd.ReservationID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *BookingService) AttachProof(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.BookingPending {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: r.Status, Action: domain.ActionApprove}
	}

	if err := s.reservationRepo.MarkProofOfPayment(ctx, id); err != nil {
		return nil, fmt.Errorf("mark proof of payment for %s: %w", id, err)
	}
	r.ProofOfPaymentPresent = true
	return r, nil
}

func (s *BookingService) Extend(ctx context.Context, id uuid.UUID, req ExtendRequest) (*domain.Reservation, error) {
	if req.Hours < 1 {
		return nil, &domain.ValidationError{Field: "hours", Reason: "must be at least 1"}
	}
	if req.AdditionalCost.IsNegative() {
		return nil, &domain.ValidationError{Field: "additional_cost", Reason: "must not be negative"}
	}

	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.lifecycle.Apply(r, domain.ActionExtend); err != nil {
		return nil, err
	}

	total, err := r.TotalAmount.Add(req.AdditionalCost)
	if err != nil {
		return nil, err
	}

	ext := domain.ExtensionRecord{
		Hours:          req.Hours,
		AdditionalCost: req.AdditionalCost,
		Timestamp:      s.now().UTC(),
	}
	if err := s.reservationRepo.AppendExtension(ctx, id, ext); err != nil {
		return nil, fmt.Errorf("append extension to %s: %w", id, err)
	}

	r.Extensions = append(r.Extensions, ext)
	r.TotalAmount = total
	r.CheckOut = r.CheckOut.Add(time.Duration(req.Hours) * time.Hour)

	s.log.Info("reservation extended",
		zap.String("reservation_id", id.String()),
		zap.Int("hours", req.Hours),
		zap.Int64("additional_cost", req.AdditionalCost.Amount()),
	)

	return r, nil
}

func (s *BookingService) RunBackgroundCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	s.log.Info("background worker started", zap.Duration("interval", s.cfg.CleanupInterval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("background worker stopped")
			return
		case <-ticker.C:
			s.processExpiredReservations(ctx)
		}
	}
}

func (s *BookingService) processExpiredReservations(ctx context.Context) {
	ids, err := s.reservationRepo.GetExpiredPending(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("failed to fetch expired reservations", zap.Error(err))
		return
	}

	if len(ids) == 0 {
		return
	}

	s.log.Info("declining expired reservations", zap.Int("count", len(ids)))

	for _, id := range ids {
		if _, err := s.PerformAction(ctx, id, domain.ActionDecline); err != nil {
			s.log.Warn("failed to decline expired reservation", zap.String("reservation_id", id.String()), zap.Error(err))
			continue
		}
	}
}
