// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"mailforge/internal/models"
)

// PublicationStore records published HTML exports. It requires the
// PostgreSQL backend.
type PublicationStore struct {
	db *sql.DB
}

// NewPublicationStore creates a new PublicationStore with the given database connection.
func NewPublicationStore(db *sql.DB) *PublicationStore {
	return &PublicationStore{db: db}
}

const publicationColumns = `id, template_id, object_key, url, size_bytes, published_at`

func scanPublication(scanner interface{ Scan(...any) error }) (*models.Publication, error) {
	var p models.Publication
	if err := scanner.Scan(&p.ID, &p.TemplateID, &p.ObjectKey, &p.URL, &p.SizeBytes, &p.PublishedAt); err != nil {
		return nil, err
	}
	p.PublishedAt = p.PublishedAt.UTC()
	return &p, nil
}

// Create inserts a publication and returns it with its generated id.
func (s *PublicationStore) Create(ctx context.Context, p *models.Publication) (*models.Publication, error) {
	out, err := scanPublication(s.db.QueryRowContext(ctx, `
		INSERT INTO published_exports (template_id, object_key, url, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+publicationColumns,
		p.TemplateID, p.ObjectKey, p.URL, p.SizeBytes,
	))
	if err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	return out, nil
}

// ListByTemplate returns a template's publications, newest first.
func (s *PublicationStore) ListByTemplate(ctx context.Context, templateID string) ([]models.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+publicationColumns+`
		FROM published_exports
		WHERE template_id = $1
		ORDER BY published_at DESC, id DESC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	pubs := []models.Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pubs = append(pubs, *p)
	}
	return pubs, rows.Err()
}
