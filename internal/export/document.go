package export

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strconv"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// PrintDocument is the standalone document handed to a print context: the
// surface markup, every readable style rule of the surface, and the page
// directives.
type PrintDocument struct {
	Title  string
	Markup string
	Rules  []string
	Page   render.Page
	View   render.View
}

// NewPrintDocument collects the style rules of the surface. A sheet whose
// rules cannot be read is skipped.
func NewPrintDocument(ctx context.Context, s *render.Surface) *PrintDocument {
	doc := &PrintDocument{
		Title:  "Invoice " + s.View.Number,
		Markup: s.Markup,
		Page:   s.Page,
		View:   s.View,
	}

	for _, sheet := range s.Stylesheets {
		rules, err := sheet.Rules(ctx)
		if err != nil {
			slog.Debug("skipping unreadable stylesheet", "href", sheet.Href(), "error", err)
			continue
		}

		doc.Rules = append(doc.Rules, rules...)
	}

	return doc
}

// PageCSS returns the print directives for the page setup.
func (d *PrintDocument) PageCSS() string {
	mm := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "mm" }

	return fmt.Sprintf(
		"@page { size: %s; margin: %s; }\n"+
			"body { margin: 0; font-family: %s; }\n"+
			".%s { width: %s; min-height: %s; padding: %s; box-sizing: border-box; }",
		d.Page.Size, mm(d.Page.MarginMM),
		d.Page.FontFamily,
		render.PreviewClass, mm(d.Page.WidthMM), mm(d.Page.HeightMM), mm(d.Page.PaddingMM),
	)
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{range .Rules}}{{.}}
{{end}}{{.Page}}
</style>
</head>
<body>
{{.Markup}}
{{- if .AutoPrint}}
<script>window.addEventListener("load", function () { window.focus(); window.print(); });</script>
{{- end}}
</body>
</html>
`))

// WriteHTML writes the standalone HTML form of the document. With autoPrint
// the page opens the print dialog once loaded.
func WriteHTML(w io.Writer, doc *PrintDocument, autoPrint bool) error {
	rules := make([]template.CSS, len(doc.Rules))
	for i, r := range doc.Rules {
		rules[i] = template.CSS(r)
	}

	data := struct {
		Title     string
		Rules     []template.CSS
		Page      template.CSS
		Markup    template.HTML
		AutoPrint bool
	}{
		Title:     doc.Title,
		Rules:     rules,
		Page:      template.CSS(doc.PageCSS()),
		Markup:    template.HTML(doc.Markup),
		AutoPrint: autoPrint,
	}

	if err := printTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("writing print document: %w", err)
	}

	return nil
}
