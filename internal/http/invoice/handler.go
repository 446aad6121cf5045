package invoice

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const (
	// maxDocumentSize allows three inline images at the upload limit after
	// base64 growth.
	maxDocumentSize = 24 << 20
	maxImportSize   = 2 << 20
)

type Handler struct {
	renderer *render.Renderer
	exporter *export.Service
	importer *importer.Service
	now      func() time.Time
}

func NewHandler(renderer *render.Renderer, exporter *export.Service, importer *importer.Service) *Handler {
	return &Handler{
		renderer: renderer,
		exporter: exporter,
		importer: importer,
		now:      time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/default", h.defaultDocument)
	r.Get("/themes", h.themes)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/preview", h.preview)
		r.Post("/print", h.print)
		r.Post("/pdf", h.pdf)
		r.Post("/png", h.png)
	})

	r.Post("/images", h.uploadImage)
	r.Post("/items/import", h.importItems)
}

func (h *Handler) defaultDocument(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, invoice.Default(h.now()))
}

func (h *Handler) themes(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, toThemeList(invoice.Themes))
}

// surface decodes and validates the posted document and renders it. On
// failure the response has already been written.
func (h *Handler) surface(w http.ResponseWriter, r *http.Request) (*render.Surface, bool) {
	var doc invoice.Document

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize)).Decode(&doc); err != nil {
		respond.BadRequest(w, "invalid document: "+err.Error())
		return nil, false
	}

	if err := doc.Validate(); err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	s, err := h.renderer.Render(&doc)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return s, true
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.surface(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if r.URL.Query().Get("standalone") != "" {
		if err := export.WriteHTML(w, export.NewPrintDocument(r.Context(), s), false); err != nil {
			respond.Error(w, r, err)
		}

		return
	}

	if _, err := io.WriteString(w, s.Markup); err != nil {
		respond.Error(w, r, err)
	}
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	s, ok := h.surface(w, r)
	if !ok {
		return
	}

	out := &deferredHeaders{w: w, contentType: "text/html; charset=utf-8"}

	if err := h.exporter.Print(r.Context(), s, export.NewStreamPrinter(out, export.HTMLWriter(true))); err != nil {
		if !out.started {
			respond.Error(w, r, err)
		}
	}
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	s, ok := h.surface(w, r)
	if !ok {
		return
	}

	out := &deferredHeaders{
		w:           w,
		contentType: "application/pdf",
		disposition: fmt.Sprintf("inline; filename=%q", pdfName(s.View.Number)),
	}

	if err := h.exporter.Print(r.Context(), s, export.NewStreamPrinter(out, export.WritePDF)); err != nil {
		if !out.started {
			respond.Error(w, r, err)
		}
	}
}

func (h *Handler) png(w http.ResponseWriter, r *http.Request) {
	s, ok := h.surface(w, r)
	if !ok {
		return
	}

	if _, err := h.exporter.ExportPNG(r.Context(), s, responseDownloader{w: w}); err != nil {
		respond.Error(w, r, err)
	}
}

type imageResponse struct {
	DataURI string `json:"dataUri"`
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, invoice.MaxImageSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respond.Error(w, r, invoice.ErrImageTooLarge)
			return
		}

		respond.BadRequest(w, "file field is required")

		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, invoice.MaxImageSize+1))
	if err != nil {
		respond.BadRequest(w, "failed to read file: "+err.Error())
		return
	}

	uri, err := invoice.EncodeImage(header.Header.Get("Content-Type"), data)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, imageResponse{DataURI: uri})
}

func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	items, err := h.importer.Import(file)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, items)
}
