package respond_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]any
		wantLevel  string
	}{
		{
			name:       "Validation",
			err:        fmt.Errorf("saving: %w", &invoice.ValidationError{Violations: map[string]string{"items[0].quantity": "must be at least 1"}}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: map[string]any{
				"error":  "validation failed",
				"fields": map[string]any{"items[0].quantity": "must be at least 1"},
			},
			wantLevel: "WARN",
		},
		{
			name:       "AuthRequired",
			err:        auth.ErrAuthRequired,
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]any{"error": "auth_required", "login": "/auth"},
			wantLevel:  "WARN",
		},
		{
			name:       "NotFound",
			err:        savedtemplate.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"error": "template not found"},
			wantLevel:  "WARN",
		},
		{
			name:       "ImageTooLarge",
			err:        invoice.ErrImageTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   map[string]any{"error": "image exceeds 5 MB"},
			wantLevel:  "WARN",
		},
		{
			name:       "ImageDimensions",
			err:        fmt.Errorf("%w: got 4 x 20000", invoice.ErrImageDimensions),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   map[string]any{"error": "image exceeds 8000 x 8000 pixels: got 4 x 20000"},
			wantLevel:  "WARN",
		},
		{
			name:       "PrintBlocked",
			err:        fmt.Errorf("%w: no window", export.ErrPrintBlocked),
			wantStatus: http.StatusBadGateway,
			wantBody:   map[string]any{"error": "print context could not be opened: no window"},
			wantLevel:  "ERROR",
		},
		{
			name:       "Unexpected",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "internal error"},
			wantLevel:  "ERROR",
		},
	}

	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

			rec := httptest.NewRecorder()
			respond.Error(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil), tt.err)

			assert.Contains(t, logs.String(), "level="+tt.wantLevel)
			assert.Contains(t, logs.String(), "path=/api/v1/templates")
			assert.Contains(t, logs.String(), fmt.Sprintf("status=%d", tt.wantStatus))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestBadRequest(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var logs bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

	rec := httptest.NewRecorder()
	respond.BadRequest(rec, "invalid id")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), `error="invalid id"`)
}
