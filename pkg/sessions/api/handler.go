package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/client"
	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/sessions"
)

// Handler handles HTTP requests for session management
type Handler struct {
	service *sessions.Service
}

// NewHandler creates a new session handler
func NewHandler(service *sessions.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the session routes. They read the bearer token
// themselves and need no auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.GetMe)
	r.Post("/logout", h.Logout)
}

// GetMe handles GET /me - the current user, 401 for a missing or invalid token
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.service.GetMe(r.Context(), client.TokenFromHeader(r))
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, me)
}

// Logout handles POST /logout - always {"ok":true} unless the store fails
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), client.TokenFromHeader(r)); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}
