package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"sheetpos/internal/apperr"
)

var validate = validator.New()

// Handler exposes the admin inventory endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/api/admin/products/update-stock", h.setStock)
	r.Post("/api/admin/products/add-stock", h.addStock)
	r.Get("/api/admin/inventory-log", h.inventoryLog) // ?limit=, default 100
	r.Get("/api/admin/low-stock", h.lowStock)         // ?threshold=, default 10
}

type setStockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Stock     int    `json:"stock" validate:"gte=0"`
	Reason    string `json:"reason"`
}

type addStockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Reason    string `json:"reason"`
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.service.SetStock(r.Context(), req.ProductID, req.Stock, req.Reason)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.service.AddStock(r.Context(), req.ProductID, req.Quantity, req.Reason)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) inventoryLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.Log(r.Context(), limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, entries)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	products, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, products)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
}
