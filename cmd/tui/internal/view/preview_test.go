package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

func TestRenderPreview(t *testing.T) {
	type testCase struct {
		name   string
		locale invoice.Locale
		want   []string
	}

	tests := []testCase{
		{
			name:   "Indonesian",
			locale: invoice.LocaleID,
			want:   []string{"Tagih Kepada", "Deskripsi", "Jatuh Tempo:", "Terima kasih"},
		},
		{
			name:   "English",
			locale: invoice.LocaleEN,
			want:   []string{"Bill To", "Description", "Due Date:", "Thank you"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
			doc.Locale = tt.locale

			v := render.Project(doc)
			out := renderPreview(v, previewWidth)

			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}

			assert.Contains(t, out, v.Total)
			assert.Contains(t, out, doc.Items[0].Description)
		})
	}
}
