package signup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/user"
)

func TestRegisterUserHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandle(NewSignupService(user.NewUserService(user.NewInMemoryUserRepository()))).RegisterRoutes(r)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := do(`{"email":"a@x.com","password":"pw","name":"A"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "a@x.com", created["email"])
	assert.Equal(t, "Admin", created["role"])
	assert.Equal(t, "active", created["status"])
	assert.NotContains(t, created, "password")

	rr = do(`{"email":"a@x.com","password":"pw","name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"User already exists","code":"USER_ALREADY_EXISTS"}`, rr.Body.String())

	rr = do(`{"email":"b@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"email, password, and name are required","code":"INVALID_INPUT"}`, rr.Body.String())
}
