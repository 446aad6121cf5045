package savedtemplate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=savedtemplate
type Repository interface {
	Insert(ctx context.Context, t *Template) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Template, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*Template, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Service keeps each owner's templates apart: every operation takes the
// caller's session and only ever touches rows owned by it.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the owner's templates, newest first.
func (s *Service) List(ctx context.Context, sess auth.Session) ([]*Template, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	return s.repo.ListByOwner(ctx, sess.OwnerID)
}

// Save stores a snapshot of doc under name.
func (s *Service) Save(ctx context.Context, sess auth.Session, name string, doc *invoice.Document) (*Template, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := EncodeSnapshot(doc)
	if err != nil {
		return nil, err
	}

	t := &Template{
		OwnerID:  sess.OwnerID,
		Name:     name,
		Snapshot: snapshot,
	}

	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}

	slog.Info("template saved", "id", t.ID, "owner", t.OwnerID, "name", t.Name)

	return t, nil
}

func (s *Service) Get(ctx context.Context, sess auth.Session, id uuid.UUID) (*Template, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, sess.OwnerID, id)
}

func (s *Service) Delete(ctx context.Context, sess auth.Session, id uuid.UUID) error {
	if err := sess.Require(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sess.OwnerID, id); err != nil {
		return err
	}

	slog.Info("template deleted", "id", id, "owner", sess.OwnerID)

	return nil
}

// Load decodes the template's snapshot into a fresh document.
func (s *Service) Load(t *Template) (*invoice.Document, error) {
	doc, err := DecodeSnapshot(t.Snapshot)
	if err != nil {
		slog.Warn("template snapshot rejected", "id", t.ID, "error", err)
		return nil, fmt.Errorf("loading template %s: %w", t.ID, err)
	}

	return doc, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	case n > MaxNameLength:
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return name, nil
}
