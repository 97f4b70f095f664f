package invoice

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"sheetpos/internal/apperr"
	"sheetpos/internal/modules/order"
)

var validate = validator.New()

// Handler exposes the email-invoice endpoint.
type Handler struct {
	mailer  *Mailer
	company Company
}

func NewHandler(mailer *Mailer, company Company) *Handler {
	return &Handler{mailer: mailer, company: company}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/email-invoice", h.emailInvoice)
}

type emailInvoiceRequest struct {
	To      string      `json:"to" validate:"required,email"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
	Order   order.Order `json:"order" validate:"required"`
}

func (h *Handler) emailInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.mailer.Configured() {
		respond(w, http.StatusServiceUnavailable, map[string]string{"error": "email service not configured"})
		return
	}
	var req emailInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Subject == "" {
		req.Subject = "Your invoice " + req.Order.OrderID
	}

	html, err := Render(&req.Order, h.company)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "could not render invoice"})
		return
	}
	if err := h.mailer.Send(r.Context(), req.To, req.Subject, req.Message, html); err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "invoice sent"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
