package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(bookings *BookingHandler, carts *CartHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/carts/{sessionID}", func(r chi.Router) {
		r.Get("/", carts.View)
		r.Delete("/", carts.Clear)
		r.Post("/items", carts.AddItem)
		r.Patch("/items/{amenityID}", carts.AdjustQuantity)
		r.Delete("/items/{amenityID}", carts.RemoveItem)
		r.Post("/checkout", carts.Checkout)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", bookings.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", bookings.Get)
			r.Get("/pricing", bookings.Pricing)
			r.Get("/actions", bookings.Actions)
			r.Post("/actions/{action}", bookings.Perform)
			r.Post("/proof", bookings.AttachProof)
			r.Post("/extensions", bookings.Extend)
		})
	})

	return r
}
