// Package render turns an invoice document into the preview surface that
// both export operations consume.
package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

var (
	//go:embed templates/preview.gohtml
	previewTemplate string

	//go:embed templates/preview.css
	previewCSS string
)

// PreviewClass is the class of the root element of a rendered surface.
const PreviewClass = "invoice-preview"

var ErrNilDocument = errors.New("no document to render")

// Page describes the physical page a surface is laid out for.
type Page struct {
	Size       string
	WidthMM    float64
	HeightMM   float64
	MarginMM   float64
	PaddingMM  float64
	FontFamily string
}

// A4 is the only page setup the preview is designed for.
var A4 = Page{
	Size:       "A4",
	WidthMM:    210,
	HeightMM:   297,
	MarginMM:   0,
	PaddingMM:  20,
	FontFamily: "'Poppins', system-ui, sans-serif",
}

// Surface is the rendered preview of one document: the markup of the
// preview element, the style sheets it depends on, and the view it was
// built from.
type Surface struct {
	View        View
	Markup      string
	Stylesheets []Stylesheet
	Page        Page
}

type Renderer struct {
	tmpl   *template.Template
	sheets []Stylesheet
}

// NewRenderer parses the embedded preview template. Extra style sheets
// (web fonts, branding) are attached to every surface after the built-in
// one.
func NewRenderer(extra ...Stylesheet) (*Renderer, error) {
	tmpl, err := template.New("preview").Funcs(template.FuncMap{
		"img": imageURL,
	}).Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}

	sheets := append([]Stylesheet{InlineStylesheet{Name: "preview", CSS: previewCSS}}, extra...)

	return &Renderer{tmpl: tmpl, sheets: sheets}, nil
}

func (r *Renderer) Render(doc *invoice.Document) (*Surface, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	view := Project(doc)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("executing preview template: %w", err)
	}

	return &Surface{
		View:        view,
		Markup:      buf.String(),
		Stylesheets: r.sheets,
		Page:        A4,
	}, nil
}

// imageURL only lets inline image payloads through to src attributes.
func imageURL(uri string) template.URL {
	if !strings.HasPrefix(uri, "data:image/") {
		return ""
	}

	return template.URL(uri)
}
