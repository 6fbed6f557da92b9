package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/logging"
	"github.com/JonMunkholm/geoentities/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// paramError reports a query parameter that could not be parsed.
type paramError struct {
	Name  string
	Value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid query parameter %s=%q", e.Name, e.Value)
}

func userMessage(err error) core.UserMessage {
	var pe *paramError
	if errors.As(err, &pe) {
		return core.UserMessage{
			Message: fmt.Sprintf("Invalid value %q for %s", pe.Value, pe.Name),
			Action:  "Use a numeric id",
			Code:    "REQ001",
		}
	}
	return core.MapError(err)
}

// respondError logs the technical error and answers with its user-facing
// form, as JSON or as an HTML page depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := userMessage(err)

	logger := logging.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", "path", r.URL.Path, "status", statusCode, "error", err, "code", msg.Code)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", statusCode, "error", err, "code", msg.Code)
	}

	if wantsJSON(r) {
		writeJSON(w, r, statusCode, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logger.Error("render error page", "error", err)
	}
}

// wantsJSON reports whether the client prefers JSON: an Accept header asking
// for it, or any /api route.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
