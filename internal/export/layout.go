package export

import (
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// All layout coordinates are CSS pixels (96 per inch); painters convert to
// their own device units.

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type painter interface {
	Fill(x, y, w, h float64, c color.Color)
	Gradient(x, y, w, h float64, from, to color.Color)
	Line(x1, y1, x2, y2, width float64, c color.Color)
	// Text draws s with the top of its line box at y. For alignRight x is
	// the right edge, for alignCenter the center.
	Text(s string, x, y, size float64, bold bool, c color.Color, a align)
	Measure(s string, size float64, bold bool) float64
	Image(img image.Image, x, y, w, h float64)
}

// dryRun forwards measuring and discards drawing; it is used to find the
// height of a layout before committing to a canvas.
type dryRun struct {
	painter
}

func (dryRun) Fill(float64, float64, float64, float64, color.Color)                   {}
func (dryRun) Gradient(float64, float64, float64, float64, color.Color, color.Color) {}
func (dryRun) Line(float64, float64, float64, float64, float64, color.Color)         {}
func (dryRun) Text(string, float64, float64, float64, bool, color.Color, align)      {}
func (dryRun) Image(image.Image, float64, float64, float64, float64)                 {}

const (
	inset      = 32.0
	lineFactor = 1.5

	// maxHeaderRatio caps a header image at the height of an A4 page of
	// the same width.
	maxHeaderRatio = 297.0 / 210.0
)

var (
	white     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ink       = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	muted     = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	rule      = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	signRule  = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	softAlpha = uint8(0x1a)
)

// pictures holds the decoded images of a view. An image that cannot be
// decoded is left nil and simply not drawn.
type pictures struct {
	header    image.Image
	logo      image.Image
	signature image.Image
}

func loadPictures(v render.View) pictures {
	return pictures{
		header:    decodeOrSkip("header", v.HeaderImage),
		logo:      decodeOrSkip("logo", v.Logo),
		signature: decodeOrSkip("signature", v.Signature),
	}
}

func decodeOrSkip(slot, uri string) image.Image {
	if uri == "" {
		return nil
	}

	img, _, err := invoice.DecodeImage(uri)
	if err != nil {
		slog.Debug("skipping undecodable image", "slot", slot, "error", err)
		return nil
	}

	return img
}

type palette struct {
	primary   color.RGBA
	secondary color.RGBA
	accent    color.RGBA
	soft      color.RGBA
}

func newPalette(p render.Palette) palette {
	primary := parseHex(p.Primary)
	soft := primary
	soft.A = softAlpha

	return palette{
		primary:   primary,
		secondary: parseHex(p.Secondary),
		accent:    parseHex(p.Accent),
		soft:      soft,
	}
}

// parseHex reads #RGB or #RRGGBB. Anything else yields the ink color.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}

	if len(s) != 6 {
		return ink
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return ink
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

type layout struct {
	p      painter
	v      render.View
	pics   pictures
	colors palette
	width  float64
	y      float64
}

// drawView draws the invoice view onto p across the given width and
// returns the total height used.
func drawView(p painter, v render.View, pics pictures, width float64) float64 {
	l := &layout{p: p, v: v, pics: pics, colors: newPalette(v.Palette), width: width}

	l.header()
	l.parties()
	l.items()
	l.totals()
	l.bank()
	l.notes()
	l.terms()
	l.signature()
	l.footer()

	return l.y
}

func (l *layout) header() {
	if img := l.pics.header; img != nil {
		b := img.Bounds()
		w, h := l.width, l.width*float64(b.Dy())/float64(b.Dx())
		if limit := l.width * maxHeaderRatio; h > limit {
			w, h = w*limit/h, limit
		}

		l.p.Image(img, (l.width-w)/2, 0, w, h)
		l.p.Text(l.v.L("invoice"), l.width-inset, h/2-22, 30, true, l.colors.primary, alignRight)
		l.y = h + 16

		l.p.Text(l.v.Company.Name, inset, l.y, 20, true, ink, alignLeft)
		l.y += 20 * lineFactor
		l.y = l.paragraph(l.v.Company.Address, inset, l.y, 12, muted, l.width/2)
		l.y = l.paragraph(l.v.Company.Contact(), inset, l.y, 12, muted, l.width/2)

		return
	}

	const (
		height   = 130.0
		logoSize = 64.0
	)

	l.p.Gradient(0, 0, l.width, height, l.colors.primary, l.colors.secondary)

	x := inset
	if l.pics.logo != nil {
		top := (height - logoSize) / 2
		l.p.Fill(x, top, logoSize, logoSize, white)
		l.drawFitted(l.pics.logo, x, top, logoSize, logoSize)
		x += logoSize + 16
	}

	y := 32.0
	l.p.Text(l.v.Company.Name, x, y, 20, true, white, alignLeft)
	y += 20 * lineFactor
	l.p.Text(l.v.Company.Address, x, y, 12, false, white, alignLeft)
	y += 12 * lineFactor
	l.p.Text(l.v.Company.Contact(), x, y, 12, false, white, alignLeft)

	l.p.Text(l.v.L("invoice"), l.width-inset, height/2-22, 30, true, white, alignRight)
	l.y = height
}

func (l *layout) parties() {
	top := l.y + 24

	y := top
	l.p.Text(strings.ToUpper(l.v.L("billTo")), inset, y, 11, true, l.colors.accent, alignLeft)
	y += 11*lineFactor + 4
	l.p.Text(l.v.Client.Name, inset, y, 14, true, ink, alignLeft)
	y += 14 * lineFactor
	y = l.paragraph(l.v.Client.Address, inset, y, 12, ink, l.width/2)
	y = l.paragraph(l.v.Client.Contact(), inset, y, 12, ink, l.width/2)

	meta := [][2]string{
		{l.v.L("invoiceNo"), l.v.Number},
		{l.v.L("date"), l.v.IssueDate},
		{l.v.L("dueDate"), l.v.DueDate},
	}

	right := l.width - inset
	valueWidth := 0.0

	for _, m := range meta {
		valueWidth = max(valueWidth, l.p.Measure(m[1], 12, true))
	}

	my := top
	for _, m := range meta {
		l.p.Text(m[0], right-valueWidth-12, my, 12, false, muted, alignRight)
		l.p.Text(m[1], right, my, 12, true, ink, alignRight)
		my += 12*lineFactor + 2
	}

	l.y = max(y, my) + 24
}

type column struct {
	x, w float64
	a    align
}

func (c column) anchor() float64 {
	switch c.a {
	case alignCenter:
		return c.x + c.w/2
	case alignRight:
		return c.x + c.w - 12
	}

	return c.x + 12
}

func (l *layout) items() {
	tableWidth := l.width - 2*inset
	descWidth := tableWidth - 60 - 130 - 130

	cols := []column{
		{x: inset, w: descWidth, a: alignLeft},
		{x: inset + descWidth, w: 60, a: alignCenter},
		{x: inset + descWidth + 60, w: 130, a: alignRight},
		{x: inset + descWidth + 190, w: 130, a: alignRight},
	}

	headers := []string{l.v.L("description"), l.v.L("quantity"), l.v.L("price"), l.v.L("total")}

	const headerHeight = 34.0

	l.p.Fill(inset, l.y, tableWidth, headerHeight, l.colors.primary)

	for i, c := range cols {
		l.p.Text(headers[i], c.anchor(), l.y+8, 12, true, white, c.a)
	}

	l.y += headerHeight

	for _, row := range l.v.Rows {
		l.itemRow(row, cols, tableWidth)
	}
}

func (l *layout) itemRow(row render.Row, cols []column, tableWidth float64) {
	const line = 12 * lineFactor

	textWidth := cols[0].w - 24

	desc := l.wrap(row.Description, 12, true, textWidth)
	sub := l.wrap(row.SubDescription, 12, false, textWidth)

	var details []string
	for _, d := range row.Details {
		details = append(details, l.wrap("• "+d, 11, false, textWidth-8)...)
	}

	height := 16 + line*float64(max(1, len(desc))+len(sub)) + 11*lineFactor*float64(len(details))
	if len(details) > 0 {
		height += 4
	}

	if row.Striped {
		l.p.Fill(inset, l.y, tableWidth, height, l.colors.soft)
	}

	y := l.y + 8
	for _, s := range desc {
		l.p.Text(s, cols[0].anchor(), y, 12, true, ink, alignLeft)
		y += line
	}

	for _, s := range sub {
		l.p.Text(s, cols[0].anchor(), y, 12, false, muted, alignLeft)
		y += line
	}

	if len(details) > 0 {
		y += 4
	}

	for _, s := range details {
		l.p.Text(s, cols[0].anchor()+8, y, 11, false, muted, alignLeft)
		y += 11 * lineFactor
	}

	values := []string{strconv.Itoa(row.Quantity), row.Price, row.Total}
	for i, s := range values {
		c := cols[i+1]
		l.p.Text(s, c.anchor(), l.y+8, 12, false, ink, c.a)
	}

	l.y += height
	l.p.Line(inset, l.y, inset+tableWidth, l.y, 1, rule)
}

func (l *layout) totals() {
	const width = 260.0

	x := l.width - inset - width
	right := l.width - inset

	l.y += 16
	l.p.Text(l.v.L("subtotal"), x, l.y+4, 12, false, ink, alignLeft)
	l.p.Text(l.v.Subtotal, right, l.y+4, 12, false, ink, alignRight)
	l.y += 12*lineFactor + 8

	l.p.Line(x, l.y, right, l.y, 2, l.colors.primary)
	l.y += 6
	l.p.Text(l.v.L("grandTotal"), x, l.y, 16, true, l.colors.primary, alignLeft)
	l.p.Text(l.v.Total, right, l.y, 16, true, l.colors.primary, alignRight)
	l.y += 16 * lineFactor
}

func (l *layout) sectionTitle(key string, x float64) {
	l.p.Text(strings.ToUpper(l.v.L(key)), x, l.y, 11, true, l.colors.accent, alignLeft)
	l.y += 11*lineFactor + 4
}

func (l *layout) bank() {
	b := l.v.Bank
	if b == nil {
		return
	}

	l.y += 24
	l.sectionTitle("payment", inset)

	for _, f := range [][2]string{
		{"bankName", b.Name},
		{"accountNumber", b.AccountNumber},
		{"accountName", b.AccountName},
	} {
		if f[1] == "" {
			continue
		}

		label := l.v.L(f[0])
		l.p.Text(label, inset, l.y, 12, false, muted, alignLeft)
		l.p.Text(f[1], inset+l.p.Measure(label, 12, false)+6, l.y, 12, true, ink, alignLeft)
		l.y += 12 * lineFactor
	}
}

func (l *layout) notes() {
	if l.v.Notes == "" {
		return
	}

	l.y += 24

	boxWidth := l.width - 2*inset
	textLines := l.wrapParagraphs(l.v.Notes, 12, boxWidth-32)
	height := 24 + 11*lineFactor + 4 + 12*lineFactor*float64(len(textLines))

	l.p.Fill(inset, l.y, boxWidth, height, l.colors.soft)
	l.p.Fill(inset, l.y, 4, height, l.colors.primary)

	top := l.y
	l.y += 12
	l.sectionTitle("notes", inset+16)

	for _, s := range textLines {
		l.p.Text(s, inset+16, l.y, 12, false, ink, alignLeft)
		l.y += 12 * lineFactor
	}

	l.y = top + height
}

func (l *layout) terms() {
	if l.v.Terms == "" {
		return
	}

	l.y += 24
	l.sectionTitle("terms", inset)

	for _, s := range l.wrapParagraphs(l.v.Terms, 12, l.width-2*inset) {
		l.p.Text(s, inset, l.y, 12, false, ink, alignLeft)
		l.y += 12 * lineFactor
	}
}

func (l *layout) signature() {
	img := l.pics.signature
	if img == nil {
		return
	}

	const (
		blockWidth = 200.0
		maxW       = 160.0
		maxH       = 80.0
	)

	l.y += 32
	x := l.width - inset - blockWidth
	center := x + blockWidth/2

	w, h := fit(img.Bounds(), maxW, maxH)
	l.p.Image(img, center-w/2, l.y, w, h)
	l.y += h + 4

	l.p.Line(x, l.y, x+blockWidth, l.y, 1, signRule)
	l.y += 4
	l.p.Text(l.v.L("signature"), center, l.y, 12, false, ink, alignCenter)
	l.y += 12 * lineFactor
}

func (l *layout) footer() {
	const height = 40.0

	l.y += 32
	l.p.Fill(0, l.y, l.width, height, l.colors.primary)
	l.p.Text(l.v.Footer, l.width/2, l.y+13, 11, false, white, alignCenter)
	l.y += height
}

// paragraph wraps s and draws it, returning the y below the last line.
func (l *layout) paragraph(s string, x, y, size float64, c color.Color, width float64) float64 {
	for _, line := range l.wrap(s, size, false, width) {
		l.p.Text(line, x, y, size, false, c, alignLeft)
		y += size * lineFactor
	}

	return y
}

func (l *layout) drawFitted(img image.Image, x, y, w, h float64) {
	fw, fh := fit(img.Bounds(), w, h)
	l.p.Image(img, x+(w-fw)/2, y+(h-fh)/2, fw, fh)
}

// wrapParagraphs keeps explicit line breaks and wraps each paragraph.
func (l *layout) wrapParagraphs(s string, size, width float64) []string {
	var out []string

	for para := range strings.SplitSeq(s, "\n") {
		wrapped := l.wrap(para, size, false, width)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}

		out = append(out, wrapped...)
	}

	return out
}

// wrap breaks s into lines no wider than width, splitting on spaces.
func (l *layout) wrap(s string, size float64, bold bool, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var (
		lines   []string
		current = words[0]
	)

	for _, w := range words[1:] {
		candidate := current + " " + w
		if l.p.Measure(candidate, size, bold) <= width {
			current = candidate
			continue
		}

		lines = append(lines, current)
		current = w
	}

	return append(lines, current)
}

// fit scales bounds down to fit inside maxW x maxH, keeping the aspect.
func fit(b image.Rectangle, maxW, maxH float64) (float64, float64) {
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return 0, 0
	}

	scale := min(maxW/w, maxH/h, 1)

	return w * scale, h * scale
}
