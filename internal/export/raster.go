package export

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const (
	// mmToPx converts millimetres to CSS pixels.
	mmToPx = 96 / 25.4

	// maxCanvasPixels is the largest bitmap Rasterize allocates, about
	// 256 MiB of RGBA.
	maxCanvasPixels = 64 << 20
)

// Rasterizer draws a surface into a bitmap at a fixed pixel ratio on an
// opaque white background.
type Rasterizer struct {
	scale     float64
	maxPixels int
	regular   *opentype.Font
	bold      *opentype.Font
}

func NewRasterizer(scale float64) (*Rasterizer, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid raster scale %v", scale)
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}

	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}

	return &Rasterizer{scale: scale, maxPixels: maxCanvasPixels, regular: regular, bold: bold}, nil
}

func (r *Rasterizer) Scale() float64 { return r.scale }

// Rasterize renders the surface at the configured scale. The image is at
// least one page tall and grows with the content. A canvas over the pixel
// budget fails with ErrCanvasTooLarge before anything is allocated.
func (r *Rasterizer) Rasterize(s *render.Surface) (image.Image, error) {
	width := s.Page.WidthMM * mmToPx
	pics := loadPictures(s.View)

	faces := newFaceCache(r)
	defer faces.close()

	// Measure first, then draw. The context is never scaled; text is laid
	// out at device size.
	measure := &rasterPainter{dc: gg.NewContext(1, 1), scale: r.scale, faces: faces}
	height := max(drawView(dryRun{measure}, s.View, pics, width), s.Page.HeightMM*mmToPx)

	w, h := int(width*r.scale+0.5), int(height*r.scale+0.5)
	if w <= 0 || h <= 0 || h > r.maxPixels/w {
		return nil, fmt.Errorf("%w: %d x %d pixels", ErrCanvasTooLarge, w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(white)
	dc.Clear()

	p := &rasterPainter{dc: dc, scale: r.scale, faces: faces}
	drawView(p, s.View, pics, width)

	return dc.Image(), nil
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache holds sized faces for one rasterization; faces are not safe
// for concurrent use.
type faceCache struct {
	r     *Rasterizer
	faces map[faceKey]font.Face
}

func newFaceCache(r *Rasterizer) *faceCache {
	return &faceCache{r: r, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}

	src := c.r.regular
	if bold {
		src = c.r.bold
	}

	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}

	c.faces[key] = f

	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}

type rasterPainter struct {
	dc    *gg.Context
	scale float64
	faces *faceCache
}

func (p *rasterPainter) Fill(x, y, w, h float64, c color.Color) {
	p.dc.SetColor(c)
	p.dc.DrawRectangle(x*p.scale, y*p.scale, w*p.scale, h*p.scale)
	p.dc.Fill()
}

func (p *rasterPainter) Gradient(x, y, w, h float64, from, to color.Color) {
	g := gg.NewLinearGradient(x*p.scale, y*p.scale, (x+w)*p.scale, (y+h)*p.scale)
	g.AddColorStop(0, from)
	g.AddColorStop(1, to)

	p.dc.SetFillStyle(g)
	p.dc.DrawRectangle(x*p.scale, y*p.scale, w*p.scale, h*p.scale)
	p.dc.Fill()
}

func (p *rasterPainter) Line(x1, y1, x2, y2, width float64, c color.Color) {
	p.dc.SetColor(c)
	p.dc.SetLineWidth(width * p.scale)
	p.dc.DrawLine(x1*p.scale, y1*p.scale, x2*p.scale, y2*p.scale)
	p.dc.Stroke()
}

func (p *rasterPainter) Text(s string, x, y, size float64, bold bool, c color.Color, a align) {
	if s == "" {
		return
	}

	face := p.faces.face(size*p.scale, bold)
	p.dc.SetFontFace(face)
	p.dc.SetColor(c)

	w, _ := p.dc.MeasureString(s)

	dx := x * p.scale
	switch a {
	case alignCenter:
		dx -= w / 2
	case alignRight:
		dx -= w
	}

	p.dc.DrawString(s, dx, y*p.scale+float64(face.Metrics().Ascent.Ceil()))
}

func (p *rasterPainter) Measure(s string, size float64, bold bool) float64 {
	p.dc.SetFontFace(p.faces.face(size*p.scale, bold))
	w, _ := p.dc.MeasureString(s)

	return w / p.scale
}

func (p *rasterPainter) Image(img image.Image, x, y, w, h float64) {
	dw, dh := int(w*p.scale+0.5), int(h*p.scale+0.5)
	if dw <= 0 || dh <= 0 {
		return
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	p.dc.DrawImage(dst, int(x*p.scale+0.5), int(y*p.scale+0.5))
}
