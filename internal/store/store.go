// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists templates. Three backends implement Collection:
// PostgreSQL (TemplateStore), Valkey (ValkeyStore) and an in-process map
// (MemoryStore). All of them return (nil, nil) from Get when a template
// does not exist.
package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"mailforge/internal/document"
	"mailforge/internal/models"
)

// Collection is the template collection contract.
type Collection interface {
	// List returns every template, most recently updated first.
	List(ctx context.Context) ([]models.Template, error)
	// Get returns the template with the given id, or nil if there is none.
	Get(ctx context.Context, id string) (*models.Template, error)
	// Save inserts or replaces t. It stamps UpdatedAt, and CreatedAt when
	// t has none yet.
	Save(ctx context.Context, t *models.Template) error
	// Delete removes a template and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// now is the store clock. Timestamps are kept at millisecond precision so
// they survive the record format unchanged.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// stamp sets the persistence timestamps on t.
func stamp(t *models.Template) {
	ts := now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
}

// sortByUpdated orders templates most recently updated first. Ties keep
// a stable order by id.
func sortByUpdated(ts []models.Template) {
	slices.SortFunc(ts, func(a, b models.Template) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Create saves a new, empty template called name.
func Create(ctx context.Context, c Collection, name string) (*models.Template, error) {
	t := &models.Template{
		ID:         document.NewID(),
		Name:       name,
		Components: []models.Component{},
	}
	if err := c.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// Duplicate copies the template id under a new name. Every node in the copy
// gets a fresh id. Returns nil if the source does not exist.
func Duplicate(ctx context.Context, c Collection, id, name string) (*models.Template, error) {
	src, err := c.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("duplicate template %s: %w", id, err)
	}
	if src == nil {
		return nil, nil
	}
	t := &models.Template{
		ID:         document.NewID(),
		Name:       name,
		Components: document.Reassign(src.Components),
	}
	if err := c.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("duplicate template %s: %w", id, err)
	}
	return t, nil
}
