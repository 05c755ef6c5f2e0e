package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/iam"
	"github.com/tendant/protus/pkg/user"
)

func TestUserAdministration(t *testing.T) {
	ctx := context.Background()
	repo := user.NewInMemoryUserRepository()
	_, err := repo.CreateUser(ctx, user.User{
		UserID: "p1", Email: "p1@x.com", Password: "hash", Token: "secret-token",
		Role: user.RolePending, Status: user.StatusPending,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/users", NewHandle(iam.NewIamService(repo)).RegisterRoutes)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "password")
	assert.NotContains(t, list[0], "token")

	rr = do(http.MethodPatch, "/users/p1/approve", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(http.MethodPatch, "/users/zz/approve", `{"role":"Member"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(http.MethodPatch, "/users/p1/approve", `{"role":"Member"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	rr = do(http.MethodPatch, "/users/p1/role", `{"role":"Admin"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	u, err := repo.GetUserByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	rr = do(http.MethodDelete, "/users/p1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	_, err = repo.GetUserByID(ctx, "p1")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
