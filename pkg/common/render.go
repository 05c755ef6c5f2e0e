// Package common holds the HTTP response helpers shared by the api packages.
package common

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/protus/pkg/errors"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OKResponse is returned by actions with no other payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// RenderJSON writes v with the given status.
func RenderJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// RenderOK writes 200 {"ok":true}.
func RenderOK(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusOK, OKResponse{OK: true})
}

// RenderError writes a coded error with its mapped status. Errors without a
// code are logged and reported as a generic 500.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := errors.As(err)
	if !ok || e.Code == errors.ErrCodeInternal {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		RenderJSON(w, r, http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  string(errors.ErrCodeInternal),
		})
		return
	}
	RenderJSON(w, r, e.HTTPStatusCode(), ErrorResponse{Error: e.Message, Code: string(e.Code)})
}

// DecodeJSON decodes the request body into v. An empty body leaves v at its
// zero value so required-field checks report the missing fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "Invalid JSON body")
	}
	return nil
}

// NotFound is the fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusNotFound, ErrorResponse{Error: "Not found"})
}
