package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Limit int    `json:"limit,omitempty"`
}

// writeError maps core error kinds onto HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		limit      *domain.QuantityLimitExceeded
		duplicate  *domain.DuplicateItemError
		notFound   *domain.NotFoundError
		transition *domain.InvalidTransitionError
		unknown    *domain.UnknownStatusError
		negative   *domain.NegativeResultError
	)

	switch {
	case errors.As(err, &limit):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Limit: limit.Limit})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &notFound), errors.Is(err, domain.ErrReservationNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &duplicate), errors.As(err, &transition), errors.Is(err, domain.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &unknown), errors.As(err, &negative):
		log.Error("inconsistent reservation data", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Reason: "invalid json body", Err: err}
	}
	return nil
}
