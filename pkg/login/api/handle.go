package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/login"
)

type Handle struct {
	loginService *login.LoginService
}

func NewHandle(loginService *login.LoginService) Handle {
	return Handle{loginService: loginService}
}

// RegisterRoutes adds the two login steps to r.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/verify-otp", h.VerifyOTP)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

// Login handles POST /login
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	res, err := h.loginService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, res)
}

// VerifyOTP handles POST /verify-otp
func (h Handle) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}

	res, err := h.loginService.VerifyOTP(r.Context(), req.UserID, req.OTP)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, res)
}
