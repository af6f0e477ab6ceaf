package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request id, then
// returned to the client as a user-friendly message with an action and a
// support code: JSON for API clients, an HTML error page otherwise.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/fileconv/internal/charts"
	"github.com/JonMunkholm/fileconv/internal/core"
	mw "github.com/JonMunkholm/fileconv/internal/web/middleware"
	"github.com/JonMunkholm/fileconv/internal/web/templates"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message with the status
// statusFor picks.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, core.ErrFileTooLarge),
		strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrFileNotFound), errors.Is(err, charts.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, mw.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyRuns), errors.Is(err, core.ErrStoreFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, core.ErrParse), errors.Is(err, core.ErrExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrTooManyFiles),
		errors.Is(err, core.ErrUnknownColumn),
		errors.Is(err, core.ErrDuplicateColumn),
		errors.Is(err, core.ErrNotNumeric),
		errors.Is(err, core.ErrInvalidOptions):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
