package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sheetpos/internal/apperr"
	"sheetpos/internal/modules/cart"
	"sheetpos/internal/session"
)

// Handler exposes checkout and the admin order listing.
type Handler struct {
	service       Service
	carts         *cart.Handler
	secureCookies bool
}

func NewHandler(service Service, carts *cart.Handler, secureCookies bool) *Handler {
	return &Handler{service: service, carts: carts, secureCookies: secureCookies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checkout", h.checkout)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/api/admin/orders", h.listOrders) // ?limit=, default 50
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sid := session.ID(w, r, h.secureCookies)
	result, err := h.service.Checkout(r.Context(), h.carts.Load(sid), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	// The order exists on both statuses; keeping the cart would invite a
	// resubmission and a duplicate order.
	h.carts.Clear(sid)
	respond(w, http.StatusCreated, result)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.service.GetOrders(r.Context(), limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
}
