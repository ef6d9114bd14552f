package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with their technical details and the request id, then
// returned as a core.UserMessage. Session pages re-render the form with the
// message on top; API requests get a JSON body; anything else gets a short
// HTML page.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/logging"
	"github.com/JonMunkholm/tableform/internal/tableform"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Fields lists the rejected fields of a failed submit.
	Fields []core.FieldFailure `json:"fields,omitempty"`
}

var rateLimitedMessage = core.MapError(errors.New("rate limit exceeded"))

// statusFor picks the HTTP status of an error.
func statusFor(err error) int {
	var submitErr *tableform.SubmitError
	switch {
	case errors.As(err, &submitErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, core.ErrUnknownForm):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManySessions), errors.Is(err, core.ErrTooManySubmits):
		return http.StatusServiceUnavailable
	case errors.Is(err, tableform.ErrNotEditing), errors.Is(err, tableform.ErrNotRevertable),
		errors.Is(err, tableform.ErrWrongKind), errors.Is(err, tableform.ErrUnknownColumn):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// logError records the technical error. Client mistakes are logged at warn.
func logError(r *http.Request, err error, status int, msg core.UserMessage) {
	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)
}

// respondError handles error responses outside a session page.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)
	logError(r, err, status, msg)

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	s.respondErrorHTML(w, r, msg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the message in the page layout, or as a bare
// alert for htmx requests.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	body := errorAlert(msg)
	if !isHTMX(r) {
		body = pageLayout("Error", s.cfg.Server.HTMXScriptURL, body)
	}
	if err := body.Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
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

