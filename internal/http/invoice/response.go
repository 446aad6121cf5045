package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type themeResponse struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Primary   string `json:"primaryColor"`
	Secondary string `json:"secondaryColor"`
	Accent    string `json:"accentColor"`
}

func toThemeList(themes []invoice.Theme) []themeResponse {
	resp := make([]themeResponse, len(themes))
	for i, t := range themes {
		resp[i] = themeResponse{
			Key:       t.Key,
			Name:      t.Name,
			Primary:   t.Primary,
			Secondary: t.Secondary,
			Accent:    t.Accent,
		}
	}

	return resp
}

// deferredHeaders sets the content headers on the first write only, so an
// export that fails before producing output can still answer with an error.
type deferredHeaders struct {
	w           http.ResponseWriter
	contentType string
	disposition string
	started     bool
}

func (d *deferredHeaders) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true

		d.w.Header().Set("Content-Type", d.contentType)

		if d.disposition != "" {
			d.w.Header().Set("Content-Disposition", d.disposition)
		}
	}

	return d.w.Write(p)
}

// responseDownloader delivers an export as an attachment of the response.
type responseDownloader struct {
	w http.ResponseWriter
}

func (d responseDownloader) Download(_ context.Context, filename, contentType string, data []byte) error {
	d.w.Header().Set("Content-Type", contentType)
	d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	d.w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	d.w.WriteHeader(http.StatusOK)

	_, err := d.w.Write(data)

	return err
}

func pdfName(number string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}

		return -1
	}, number)

	if clean == "" {
		return "invoice.pdf"
	}

	return "invoice-" + clean + ".pdf"
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
