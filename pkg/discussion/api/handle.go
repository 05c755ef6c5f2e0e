package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/discussion"
)

type Handle struct {
	discussionService *discussion.DiscussionService
}

func NewHandle(discussionService *discussion.DiscussionService) Handle {
	return Handle{
		discussionService: discussionService,
	}
}

func (h Handle) RegisterRoutes(r chi.Router) {
	r.Route("/discussions", func(r chi.Router) {
		r.Get("/", h.ListMessages)
		r.Post("/", h.PostMessage)
		r.Delete("/{messageId}", h.DeleteMessage)
	})
}

// ListMessages handles GET /discussions?projectId=...
func (h Handle) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.discussionService.ListMessages(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, messages)
}

func (h Handle) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req discussion.NewMessage
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	m, err := h.discussionService.PostMessage(r.Context(), req)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusCreated, m)
}

func (h Handle) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.discussionService.DeleteMessage(r.Context(), chi.URLParam(r, "messageId")); err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}
