package savedtemplate

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

const maxTemplateSize = 24 << 20

// SessionResolver derives the caller's session from a request.
type SessionResolver interface {
	FromRequest(r *http.Request) auth.Session
}

type Handler struct {
	svc      *savedtemplate.Service
	sessions SessionResolver
}

func NewHandler(svc *savedtemplate.Service, sessions SessionResolver) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(middleware.AllowContentType("application/json")).Post("/", h.save)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.List(r.Context(), h.sessions.FromRequest(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryList(templates))
}

type saveRequest struct {
	Name     string            `json:"name"`
	Document *invoice.Document `json:"document"`
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(r)
	if err := sess.Require(); err != nil {
		respond.Error(w, r, err)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTemplateSize)).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if req.Document == nil {
		respond.BadRequest(w, "document is required")
		return
	}

	t, err := h.svc.Save(r.Context(), sess, req.Name, req.Document)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSummary(t))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	t, err := h.svc.Get(r.Context(), h.sessions.FromRequest(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	doc, err := h.svc.Load(t)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, templateResponse{summaryResponse: toSummary(t), Document: doc})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), h.sessions.FromRequest(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
