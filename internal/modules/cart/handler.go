package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetpos/internal/apperr"
	"sheetpos/internal/session"
)

const sessionKey = "cart"

// Handler exposes cart HTTP endpoints. The cart value itself lives in the
// session store keyed by the pos_session cookie.
type Handler struct {
	service       Service
	sessions      *session.Store
	secureCookies bool
}

func NewHandler(service Service, sessions *session.Store, secureCookies bool) *Handler {
	return &Handler{service: service, sessions: sessions, secureCookies: secureCookies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/cart", h.getCart)
	r.Post("/api/cart/add", h.addLine)
	r.Post("/api/cart/update", h.updateLine)
	r.Post("/api/cart/remove", h.removeLine)
	r.Post("/api/cart/clear", h.clearCart)
}

// Load returns the sanitized cart for a session.
func (h *Handler) Load(sessionID string) Cart {
	v, ok := h.sessions.Get(sessionID, sessionKey)
	if !ok {
		return Cart{}
	}
	c, ok := v.(Cart)
	if !ok {
		return Cart{}
	}
	return Sanitize(c)
}

// Save persists the cart back into the session.
func (h *Handler) Save(sessionID string, c Cart) {
	h.sessions.Set(sessionID, sessionKey, c)
}

// Clear destroys the session's cart.
func (h *Handler) Clear(sessionID string) {
	h.sessions.Delete(sessionID, sessionKey)
}

type lineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sid := session.ID(w, r, h.secureCookies)
	c := h.Load(sid)
	respond(w, http.StatusOK, map[string]interface{}{"items": c, "subtotal": c.Subtotal()})
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sid := session.ID(w, r, h.secureCookies)
	c, err := h.service.Add(r.Context(), h.Load(sid), req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Save(sid, c)
	respond(w, http.StatusOK, map[string]interface{}{"items": c, "subtotal": c.Subtotal()})
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sid := session.ID(w, r, h.secureCookies)
	c, err := h.service.Update(r.Context(), h.Load(sid), req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Save(sid, c)
	respond(w, http.StatusOK, map[string]interface{}{"items": c, "subtotal": c.Subtotal()})
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sid := session.ID(w, r, h.secureCookies)
	c := h.service.Remove(h.Load(sid), req.ProductID)
	h.Save(sid, c)
	respond(w, http.StatusOK, map[string]interface{}{"items": c, "subtotal": c.Subtotal()})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sid := session.ID(w, r, h.secureCookies)
	h.Clear(sid)
	respond(w, http.StatusOK, map[string]interface{}{"items": Cart{}, "subtotal": 0.0})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
}
