package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/team"
)

type Handle struct {
	teamService *team.TeamService
}

func NewHandle(teamService *team.TeamService) Handle {
	return Handle{
		teamService: teamService,
	}
}

func (h Handle) RegisterRoutes(r chi.Router) {
	r.Route("/team", func(r chi.Router) {
		r.Get("/", h.ListMembers)
		r.Post("/", h.AddMember)
		r.Delete("/{memberId}", h.RemoveMember)
	})
}

func (h Handle) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.teamService.ListMembers(r.Context())
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, members)
}

func (h Handle) AddMember(w http.ResponseWriter, r *http.Request) {
	var req team.NewMember
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	m, err := h.teamService.AddMember(r.Context(), req)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusCreated, m)
}

func (h Handle) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.RemoveMember(r.Context(), chi.URLParam(r, "memberId")); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}
