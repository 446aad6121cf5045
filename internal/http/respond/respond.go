// Package respond writes JSON responses and maps domain errors to HTTP
// statuses for every handler.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

// LoginPath is where clients send users whose session is missing.
const LoginPath = "/auth"

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Login  string            `json:"login,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status matching its kind and logs it. Client
// errors are logged at warn level, server errors at error level. Unexpected
// errors are reported without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}

	JSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var verr *invoice.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Violations}
	case errors.Is(err, savedtemplate.ErrInvalidName):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Fields: map[string]string{"name": err.Error()}}
	case errors.Is(err, auth.ErrAuthRequired):
		return http.StatusUnauthorized, errorResponse{Error: "auth_required", Login: LoginPath}
	case errors.Is(err, savedtemplate.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, savedtemplate.ErrStaleSnapshot), errors.Is(err, savedtemplate.ErrUnsupportedSchema):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, invoice.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()}
	case errors.Is(err, invoice.ErrImageTooLarge), errors.Is(err, invoice.ErrImageDimensions), errors.Is(err, export.ErrCanvasTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()}
	case errors.Is(err, export.ErrPrintBlocked):
		return http.StatusBadGateway, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

// BadRequest reports and logs a malformed request.
func BadRequest(w http.ResponseWriter, msg string) {
	slog.Warn("bad request", "status", http.StatusBadRequest, "error", msg)
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
