package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/externalprovider"
)

const (
	StateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// Redirect error values understood by the frontend.
const (
	ErrorAuthFailed           = "google_auth_failed"
	ErrorPendingApproval      = "pending_approval"
	ErrorRegistrationDisabled = "registration_disabled"
)

// Handle serves the Google login endpoints
type Handle struct {
	googleService *externalprovider.GoogleService
	frontendURL   string
	secureCookie  bool
}

// NewHandle creates a new external provider API handler
func NewHandle(googleService *externalprovider.GoogleService) *Handle {
	return &Handle{
		googleService: googleService,
		frontendURL:   "http://localhost:3000",
	}
}

// WithFrontendURL sets the frontend URL for redirects
func (h *Handle) WithFrontendURL(url string) *Handle {
	h.frontendURL = url
	return h
}

// WithSecureCookie marks the state cookie Secure, for HTTPS deployments.
func (h *Handle) WithSecureCookie(secure bool) *Handle {
	h.secureCookie = secure
	return h
}

func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Get("/google", h.AuthURL)
	r.Get("/google/callback", h.Callback)
}

// AuthURL handles GET /google - redirects the browser to the consent screen
func (h *Handle) AuthURL(w http.ResponseWriter, r *http.Request) {
	state, err := externalprovider.GenerateState()
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	authURL, err := h.googleService.AuthCodeURL(state)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /google/callback - completes login and redirects to
// the frontend with either a session token or an error value
func (h *Handle) Callback(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	if !h.googleService.IsConfigured() {
		common.RenderError(w, r, errors.New(errors.ErrCodeConfigurationMissing, "Google OAuth not configured"))
		return
	}

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		slog.Warn("Google callback received error", "error", providerErr)
		h.redirect(w, r, "error", ErrorAuthFailed)
		return
	}
	if !h.stateMatches(r, query.Get("state")) {
		slog.Warn("Google callback state mismatch")
		h.redirect(w, r, "error", ErrorAuthFailed)
		return
	}

	token, err := h.googleService.Login(r.Context(), query.Get("code"))
	if err != nil {
		switch errors.GetCode(err) {
		case errors.ErrCodeConfigurationMissing:
			common.RenderError(w, r, err)
		case errors.ErrCodePendingApproval:
			h.redirect(w, r, "error", ErrorPendingApproval)
		case errors.ErrCodeForbidden:
			h.redirect(w, r, "error", ErrorRegistrationDisabled)
		default:
			slog.Error("Google login failed", "err", err)
			h.redirect(w, r, "error", ErrorAuthFailed)
		}
		return
	}
	h.redirect(w, r, "token", token)
}

func (h *Handle) stateMatches(r *http.Request, state string) bool {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" || state == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) == 1
}

func (h *Handle) redirect(w http.ResponseWriter, r *http.Request, key, value string) {
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		slog.Error("Invalid frontend URL", "url", h.frontendURL, "err", err)
		common.RenderError(w, r, err)
		return
	}
	q := target.Query()
	q.Set(key, value)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
