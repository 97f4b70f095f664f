package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sheetpos/internal/apperr"
	"sheetpos/internal/session"
)

const tokenCookie = "admin_token"

// Handler exposes admin login/logout and the RequireAdmin middleware.
type Handler struct {
	service       Service
	secureCookies bool
}

func NewHandler(service Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/admin/login", h.login)
	r.Post("/api/admin/logout", h.logout)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sid := session.ID(w, r, h.secureCookies)
	token, err := h.service.Login(r.Context(), sid, req.Password)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.ClientMessage(err)})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(tokenLifetime),
	})
	respond(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respond(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RequireAdmin rejects requests without a valid admin token, taken from the
// cookie or an Authorization bearer header.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(tokenCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
				token = strings.TrimPrefix(bearer, "Bearer ")
			}
		}
		if token == "" || h.service.Verify(token) != nil {
			respond(w, http.StatusUnauthorized, map[string]string{"error": "admin authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
