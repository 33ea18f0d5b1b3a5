// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mailforge/internal/models"
)

// TemplateStore keeps templates in PostgreSQL, one row per template with the
// component tree in a JSONB column.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, name, components, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var (
		t   models.Template
		raw []byte
	)
	if err := scanner.Scan(&t.ID, &t.Name, &raw, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &t.Components); err != nil {
		return nil, fmt.Errorf("decode components of %s: %w", t.ID, err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// List implements Collection.
func (s *TemplateStore) List(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Get implements Collection. Returns nil if not found.
func (s *TemplateStore) Get(ctx context.Context, id string) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+` FROM templates WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// Save implements Collection. The row's created_at is never overwritten
// and is read back into t.
func (s *TemplateStore) Save(ctx context.Context, t *models.Template) error {
	components := t.Components
	if components == nil {
		components = []models.Component{}
	}
	raw, err := json.Marshal(components)
	if err != nil {
		return fmt.Errorf("encode components of %s: %w", t.ID, err)
	}
	stamp(t)

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO templates (id, name, components, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			components = EXCLUDED.components,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`, t.ID, t.Name, raw, t.CreatedAt, t.UpdatedAt).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return nil
}

// Delete implements Collection.
func (s *TemplateStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
