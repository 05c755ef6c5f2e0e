package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/iam"
)

type Handle struct {
	iamService *iam.IamService
}

func NewHandle(iamService *iam.IamService) Handle {
	return Handle{
		iamService: iamService,
	}
}

type RoleRequest struct {
	Role string `json:"role"`
}

// RegisterRoutes adds the user administration routes to r.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Patch("/{userId}/approve", h.ApproveUser)
	r.Patch("/{userId}/role", h.UpdateUserRole)
	r.Delete("/{userId}", h.DeleteUser)
}

func (h Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.iamService.ListUsers(r.Context())
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, users)
}

func (h Handle) ApproveUser(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	if err := h.iamService.ApproveUser(r.Context(), chi.URLParam(r, "userId"), req.Role); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}

func (h Handle) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	if err := h.iamService.UpdateUserRole(r.Context(), chi.URLParam(r, "userId"), req.Role); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}

func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.iamService.DeleteUser(r.Context(), chi.URLParam(r, "userId")); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}
