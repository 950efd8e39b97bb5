package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/services"
)

type BookingHandler struct {
	svc    *services.BookingService
	ledger *services.ExtensionLedger
	log    *zap.Logger
}

func NewBookingHandler(svc *services.BookingService, ledger *services.ExtensionLedger, log *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, ledger: ledger, log: log}
}

type reservationResponse struct {
	ID                    string                   `json:"id"`
	ReferenceCode         string                   `json:"reference_code"`
	Customer              domain.Customer          `json:"customer"`
	CheckIn               string                   `json:"check_in"`
	CheckOut              string                   `json:"check_out"`
	Items                 []domain.LineItem        `json:"items"`
	Extensions            []domain.ExtensionRecord `json:"extensions"`
	TotalAmount           domain.Money             `json:"total_amount"`
	Downpayment           *domain.Money            `json:"downpayment,omitempty"`
	PaymentStatus         domain.PaymentStatus     `json:"payment_status,omitempty"`
	Status                domain.BookingStatus     `json:"status"`
	ProofOfPaymentPresent bool                     `json:"proof_of_payment_present"`
	ExpiresAt             string                   `json:"expires_at,omitempty"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:                    r.ID.String(),
		ReferenceCode:         r.ReferenceCode,
		Customer:              r.Customer,
		CheckIn:               r.CheckIn.Format(time.RFC3339),
		CheckOut:              r.CheckOut.Format(time.RFC3339),
		Items:                 r.Items,
		Extensions:            r.Extensions,
		TotalAmount:           r.TotalAmount,
		Downpayment:           r.Downpayment,
		PaymentStatus:         r.PaymentStatus,
		Status:                r.Status,
		ProofOfPaymentPresent: r.ProofOfPaymentPresent,
	}
	if resp.Items == nil {
		resp.Items = []domain.LineItem{}
	}
	if resp.Extensions == nil {
		resp.Extensions = []domain.ExtensionRecord{}
	}
	if r.Status == domain.BookingPending && !r.ExpiresAt.IsZero() {
		resp.ExpiresAt = r.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

func (h *BookingHandler) reservationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, &domain.ValidationError{Field: "reservation id", Reason: "must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("status"); raw != "" {
		h.listByStatus(w, r, raw)
		return
	}

	bucket := domain.Bucket(r.URL.Query().Get("bucket"))
	if bucket == "" {
		bucket = domain.BucketActive
	}

	rows, err := h.svc.ListReservations(r.Context(), bucket)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bucket": bucket, "reservations": toReservationResponses(rows)})
}

// listByStatus accepts the display spellings the booking screens use
// ("Checked-In", "checked in") for the status filter.
func (h *BookingHandler) listByStatus(w http.ResponseWriter, r *http.Request, raw string) {
	status, err := domain.ParseBookingStatus(raw)
	if err != nil {
		writeError(w, h.log, &domain.ValidationError{Field: "status", Reason: err.Error(), Err: err})
		return
	}

	rows, err := h.svc.ListReservationsByStatus(r.Context(), status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "reservations": toReservationResponses(rows)})
}

func toReservationResponses(rows []domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toReservationResponse(&rows[i]))
	}
	return out
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *BookingHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Breakdown(r.Context(), id)
	var neg *domain.NegativeResultError
	if errors.As(err, &neg) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "breakdown": b})
		return
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Actions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	actions, err := h.svc.AllowedActions(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

func (h *BookingHandler) Perform(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.PerformAction(r.Context(), id, domain.Action(chi.URLParam(r, "action")))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *BookingHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.AttachProof(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// Extend takes the extension as the booking screens send it. Field names and
// number formats vary, but unlike display paths a missing or bad cost is
// rejected rather than read as zero.
func (h *BookingHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var raw map[string]any
	if err := decode(r, &raw); err != nil {
		writeError(w, h.log, err)
		return
	}

	rec, err := h.ledger.ParseExtension(raw)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	res, err := h.svc.Extend(r.Context(), id, services.ExtendRequest{
		Hours:          rec.Hours,
		AdditionalCost: rec.AdditionalCost,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}
