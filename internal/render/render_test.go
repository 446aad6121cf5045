package render_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// 1x1 transparent PNG.
const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func newDoc() *invoice.Document {
	return invoice.Default(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
}

func TestProject(t *testing.T) {
	doc := newDoc()
	doc.Items[1].Quantity = 2
	doc.Items[1].Details = "Logo utama\n\n  Varian warna  "

	v := render.Project(doc)

	assert.Equal(t, "Rp 3.500.000", v.Total)
	assert.Equal(t, v.Total, v.Subtotal)
	assert.True(t, decimal.NewFromInt(3500000).Equal(v.Amount))
	assert.Equal(t, "15 Oktober 2026", v.IssueDate)
	assert.Equal(t, "14 November 2026", v.DueDate)
	require.Len(t, v.Rows, 2)
	assert.False(t, v.Rows[0].Striped)
	assert.True(t, v.Rows[1].Striped)
	assert.Equal(t, "Rp 3.000.000", v.Rows[1].Total)
	assert.Equal(t, []string{"Logo utama", "Varian warna"}, v.Rows[1].Details)
	assert.Nil(t, v.Bank)
	assert.Equal(t, "Terima kasih atas kepercayaan Anda • PT. Perusahaan Anda", v.Footer)
	assert.Equal(t, v, render.Project(doc), "projection is deterministic")
}

func TestProject_EnglishLabelsKeepRupiah(t *testing.T) {
	doc := newDoc()
	doc.Locale = invoice.LocaleEN

	v := render.Project(doc)

	assert.Equal(t, "Bill To", v.L("billTo"))
	assert.Equal(t, "15 October 2026", v.IssueDate)
	assert.Equal(t, "Rp 2.000.000", v.Total)
}

func TestRenderer_Render(t *testing.T) {
	r, err := render.NewRenderer()
	require.NoError(t, err)

	type testCase struct {
		name        string
		mutate      func(d *invoice.Document)
		contains    []string
		notContains []string
	}

	tests := []testCase{
		{
			name:   "GradientHeader",
			mutate: func(*invoice.Document) {},
			contains: []string{
				`class="invoice-preview"`,
				"invoice-header--gradient",
				"Tagih Kepada",
				"Layanan Konsultasi",
				"Rp 2.000.000",
				"--primary: #5A8F7B",
			},
			notContains: []string{"invoice-header--image", "invoice-payment", "invoice-signature"},
		},
		{
			name:        "CustomHeaderImage",
			mutate:      func(d *invoice.Document) { d.HeaderImage = pixel },
			contains:    []string{"invoice-header--image", `src="data:image/png;base64,`},
			notContains: []string{"invoice-header--gradient"},
		},
		{
			name: "OptionalSections",
			mutate: func(d *invoice.Document) {
				d.BankName = "BCA"
				d.BankAccountNumber = "1234567890"
				d.TermsAndConditions = "Pembayaran 30 hari"
				d.Signature = pixel
			},
			contains: []string{"invoice-payment", "1234567890", "invoice-terms", "invoice-signature", "Tanda Tangan"},
		},
		{
			name:     "EscapesText",
			mutate:   func(d *invoice.Document) { d.ClientName = "<script>alert(1)</script>" },
			contains: []string{"&lt;script&gt;"},
		},
		{
			name:        "RejectsNonDataImage",
			mutate:      func(d *invoice.Document) { d.CompanyLogo = "javascript:alert(1)" },
			notContains: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc()
			tt.mutate(doc)

			s, err := r.Render(doc)
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, s.Markup, want)
			}

			for _, unwanted := range tt.notContains {
				assert.NotContains(t, s.Markup, unwanted)
			}

			assert.Equal(t, render.A4, s.Page)
			assert.NotEmpty(t, s.Stylesheets)
		})
	}
}

func TestRenderer_RenderNil(t *testing.T) {
	r, err := render.NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(nil)
	assert.ErrorIs(t, err, render.ErrNilDocument)
}

func TestSplitRules(t *testing.T) {
	css := `/* head */
@import url("fonts.css");
.a { color: red; }
@media print { .b { display: none; } }
.c{margin:0}`

	rules := render.SplitRules(css)

	assert.Equal(t, []string{
		`@import url("fonts.css");`,
		".a { color: red; }",
		"@media print { .b { display: none; } }",
		".c{margin:0}",
	}, rules)
}

func TestRemoteStylesheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/font.css" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte("@font-face { font-family: 'Poppins'; }"))
	}))
	defer srv.Close()

	rules, err := render.RemoteStylesheet{URL: srv.URL + "/font.css"}.Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, strings.HasPrefix(rules[0], "@font-face"))

	_, err = render.RemoteStylesheet{URL: srv.URL + "/missing.css"}.Rules(context.Background())
	assert.Error(t, err)
}
