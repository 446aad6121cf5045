package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pdfFont = "Go"
	pxToMM  = 25.4 / 96
	ptToMM  = 25.4 / 72
)

// WritePDF lays the print document out on one page with the page setup of
// its surface. Content taller than the page is scaled down to fit.
func WritePDF(w io.Writer, doc *PrintDocument) error {
	page := doc.Page

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(page.MarginMM, page.MarginMM, page.MarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("invoicer", true)
	pdf.AddUTF8FontFromBytes(pdfFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", gobold.TTF)
	pdf.AddPage()

	offset := page.MarginMM + page.PaddingMM
	width := (page.WidthMM - 2*offset) / pxToMM
	available := page.HeightMM - 2*offset

	pics := loadPictures(doc.View)

	p := &pdfPainter{pdf: pdf, ox: offset, oy: offset, factor: 1}

	height := drawView(dryRun{p}, doc.View, pics, width) * pxToMM
	if height > available {
		p.factor = available / height
		p.ox += (page.WidthMM - 2*offset) * (1 - p.factor) / 2
	}

	drawView(p, doc.View, pics, width)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("composing pdf: %w", err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}

	return nil
}

type pdfPainter struct {
	pdf    *gofpdf.Fpdf
	ox, oy float64
	factor float64
	images int
}

func (p *pdfPainter) mm(v float64) float64 { return v * pxToMM * p.factor }

func (p *pdfPainter) x(v float64) float64 { return p.ox + p.mm(v) }

func (p *pdfPainter) y(v float64) float64 { return p.oy + p.mm(v) }

func rgb(c color.Color) (int, int, int, float64) {
	r, g, b, a := color.NRGBAModel.Convert(c).RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8), float64(a>>8) / 255
}

func (p *pdfPainter) Fill(x, y, w, h float64, c color.Color) {
	r, g, b, a := rgb(c)

	p.pdf.SetFillColor(r, g, b)
	if a < 1 {
		p.pdf.SetAlpha(a, "Normal")
		defer p.pdf.SetAlpha(1, "Normal")
	}

	p.pdf.Rect(p.x(x), p.y(y), p.mm(w), p.mm(h), "F")
}

func (p *pdfPainter) Gradient(x, y, w, h float64, from, to color.Color) {
	r1, g1, b1, _ := rgb(from)
	r2, g2, b2, _ := rgb(to)

	p.pdf.LinearGradient(p.x(x), p.y(y), p.mm(w), p.mm(h), r1, g1, b1, r2, g2, b2, 0, 0, 1, 1)
}

func (p *pdfPainter) Line(x1, y1, x2, y2, width float64, c color.Color) {
	r, g, b, _ := rgb(c)

	p.pdf.SetDrawColor(r, g, b)
	p.pdf.SetLineWidth(p.mm(width))
	p.pdf.Line(p.x(x1), p.y(y1), p.x(x2), p.y(y2))
}

func (p *pdfPainter) setFont(size float64, bold bool) float64 {
	style := ""
	if bold {
		style = "B"
	}

	// CSS pixels to points.
	pt := size * 0.75 * p.factor
	p.pdf.SetFont(pdfFont, style, pt)

	return pt
}

func (p *pdfPainter) Text(s string, x, y, size float64, bold bool, c color.Color, a align) {
	if s == "" {
		return
	}

	pt := p.setFont(size, bold)

	r, g, b, _ := rgb(c)
	p.pdf.SetTextColor(r, g, b)

	w := p.pdf.GetStringWidth(s)

	left := p.x(x)
	switch a {
	case alignCenter:
		left -= w / 2
	case alignRight:
		left -= w
	}

	// Baseline sits roughly one ascent below the top of the line box.
	p.pdf.Text(left, p.y(y)+pt*ptToMM*0.95, s)
}

func (p *pdfPainter) Measure(s string, size float64, bold bool) float64 {
	p.setFont(size, bold)
	return p.pdf.GetStringWidth(s) / (pxToMM * p.factor)
}

func (p *pdfPainter) Image(img image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}

	p.images++
	name := fmt.Sprintf("image-%d", p.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	p.pdf.RegisterImageOptionsReader(name, opts, &buf)
	p.pdf.ImageOptions(name, p.x(x), p.y(y), p.mm(w), p.mm(h), false, opts, 0, "")
}
