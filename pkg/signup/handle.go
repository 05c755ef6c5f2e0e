package signup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
)

type Handle struct {
	signupService *SignupService
}

func NewHandle(signupService *SignupService) Handle {
	return Handle{signupService: signupService}
}

// RegisterRoutes adds POST /register to r.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.RegisterUser)
}

// RegisterUser handles POST /register
func (h Handle) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := common.DecodeJSON(r, &request); err != nil {
		common.RenderError(w, r, err)
		return
	}

	created, err := h.signupService.Register(r.Context(), request)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusCreated, created)
}
