package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/srgjo27/resort_booking/internal/core/services"
)

type CartHandler struct {
	svc *services.CartService
	log *zap.Logger
}

func NewCartHandler(svc *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

type addItemRequest struct {
	Amenity  domain.Amenity `json:"amenity"`
	Quantity int            `json:"quantity"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "sessionID"), req.Amenity, req.Quantity)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	view, err := h.svc.AdjustQuantity(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "amenityID"), req.Delta)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "amenityID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req services.CheckoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	res, err := h.svc.Checkout(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}
