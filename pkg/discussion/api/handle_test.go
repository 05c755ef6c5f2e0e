package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/discussion"
)

func TestDiscussionRoutes(t *testing.T) {
	r := chi.NewRouter()
	NewHandle(discussion.NewDiscussionService(discussion.NewInMemoryRepository())).RegisterRoutes(r)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/discussions", `{"content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "content, userId, and userName are required")

	rr = do(http.MethodPost, "/discussions", `{"content":"hi","userId":"u-1","userName":"Ann"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var general map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &general))
	assert.Contains(t, general, "projectId")
	assert.Nil(t, general["projectId"])

	rr = do(http.MethodPost, "/discussions", `{"projectId":"p-1","content":"ship it","userId":"u-1","userName":"Ann"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var scoped map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scoped))
	assert.Equal(t, "p-1", scoped["projectId"])

	list := func(path string) []map[string]interface{} {
		rr := do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var out []map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		return out
	}
	assert.Len(t, list("/discussions"), 2)
	filtered := list("/discussions?projectId=p-1")
	require.Len(t, filtered, 1)
	assert.Equal(t, "ship it", filtered[0]["content"])

	rr = do(http.MethodDelete, "/discussions/"+scoped["messageId"].(string), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	assert.Empty(t, list("/discussions?projectId=p-1"))
}
