package web

// errors.go provides unified error responses for the API.
//
// Every error is:
//   - Logged with full technical details and the request ID (server-side)
//   - Returned as JSON {"detail", "kind", "code", "action"}
//
// Validation failures carry their own detail text. Warehouse failures are
// prefixed with the operation that failed so clients can tell an ingest
// failure from a calculation failure.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/walis/inventory-uploader/internal/core"
	"github.com/walis/inventory-uploader/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError maps err to a status and response body and writes it.
// operation prefixes the detail of warehouse and unclassified failures.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Detail: errorDetail(err, userMsg, operation),
		Kind:   string(core.KindOf(err)),
		Code:   userMsg.Code,
		Action: userMsg.Action,
	}
	writeJSON(w, r, status, resp)
}

// statusFor picks the HTTP status of an error.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case core.IsValidation(err), errors.Is(err, errNoFile), errors.Is(err, core.ErrUnknownTable):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorDetail(err error, msg core.UserMessage, operation string) string {
	switch {
	case core.IsValidation(err), errors.Is(err, errNoFile):
		return err.Error()
	case core.KindOf(err) != "":
		var ce *core.Error
		errors.As(err, &ce)
		cause := err.Error()
		if ce.Err != nil {
			cause = ce.Err.Error()
		}
		if operation == "" {
			return cause
		}
		return operation + ": " + cause
	default:
		// Uncoded failures get the generic message, tagged with the operation.
		if !core.IsUserFacing(err) && operation != "" {
			return operation + ": " + msg.Message
		}
		return msg.Message
	}
}
