package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, owner_id, name, invoice_data, created_at
func scanTemplate(s scanner) (*savedtemplate.Template, error) {
	var t savedtemplate.Template

	var data []byte

	if err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &data, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Snapshot = data

	return &t, nil
}

const selectTemplateColumns = `id, owner_id, name, invoice_data, created_at`

func (s *Store) Insert(ctx context.Context, t *savedtemplate.Template) error {
	query := `
		INSERT INTO invoice_templates (owner_id, name, invoice_data, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, t.OwnerID, t.Name, []byte(t.Snapshot)).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}

	return nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*savedtemplate.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM invoice_templates
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*savedtemplate.Template

	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}

		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}

	return templates, nil
}

func (s *Store) Get(ctx context.Context, ownerID, id uuid.UUID) (*savedtemplate.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM invoice_templates
		WHERE id = $1 AND owner_id = $2`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, savedtemplate.ErrNotFound
		}

		return nil, fmt.Errorf("getting template: %w", err)
	}

	return t, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoice_templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	if n == 0 {
		return savedtemplate.ErrNotFound
	}

	return nil
}
