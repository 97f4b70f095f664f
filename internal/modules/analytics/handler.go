package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetpos/internal/apperr"
)

// Handler exposes the admin analytics endpoint.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/api/admin/analytics", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
		return
	}
	respond(w, http.StatusOK, sum)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
