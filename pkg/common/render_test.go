package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/errors"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorResponse
	}{
		{
			name:       "coded error",
			err:        errors.New(errors.ErrCodePendingApproval, "Account pending approval"),
			wantStatus: http.StatusForbidden,
			wantBody:   ErrorResponse{Error: "Account pending approval", Code: "PENDING_APPROVAL"},
		},
		{
			name:       "wrapped coded error",
			err:        fmt.Errorf("login: %w", errors.New(errors.ErrCodeInvalidCredentials, "Invalid credentials")),
			wantStatus: http.StatusUnauthorized,
			wantBody:   ErrorResponse{Error: "Invalid credentials", Code: "INVALID_CREDENTIALS"},
		},
		{
			name:       "plain error hides details",
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorResponse{Error: "Internal server error", Code: "INTERNAL_ERROR"},
		},
		{
			name:       "internal coded error hides details",
			err:        errors.InternalWrap(fmt.Errorf("boom"), "failed to scan users"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorResponse{Error: "Internal server error", Code: "INTERNAL_ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			RenderError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rec))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "a@b.c", v.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	err := DecodeJSON(req, &v)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestRenderOK(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderOK(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
