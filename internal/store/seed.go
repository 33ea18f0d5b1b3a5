// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"mailforge/internal/document"
	"mailforge/internal/models"
)

// counter is implemented by backends that can count templates without
// decoding them.
type counter interface {
	Count(ctx context.Context) (int, error)
}

func count(ctx context.Context, c Collection) (int, error) {
	if cc, ok := c.(counter); ok {
		return cc.Count(ctx)
	}
	all, err := c.List(ctx)
	return len(all), err
}

// Seed saves a starter template when the collection is empty, so a fresh
// install opens on something editable. It reports whether it wrote one.
func Seed(ctx context.Context, c Collection, name string) (bool, error) {
	n, err := count(ctx, c)
	if err != nil {
		return false, fmt.Errorf("seed check templates: %w", err)
	}
	if n > 0 {
		slog.Info("template collection already seeded, skipping")
		return false, nil
	}

	tree, err := starterTree()
	if err != nil {
		return false, fmt.Errorf("seed build tree: %w", err)
	}
	t := &models.Template{ID: document.NewID(), Name: name, Components: tree}
	if err := c.Save(ctx, t); err != nil {
		return false, fmt.Errorf("seed save: %w", err)
	}

	slog.Info("template collection seeded", "id", t.ID, "components", document.Count(tree))
	return true, nil
}

// starterTree is a header, a two-column grid holding a text and a button,
// and a footer, all with registry defaults.
func starterTree() ([]models.Component, error) {
	var tree []models.Component
	for _, k := range []models.Kind{models.KindHeader, models.KindGrid, models.KindFooter} {
		n, err := document.New(k)
		if err != nil {
			return nil, err
		}
		if k == models.KindGrid {
			for _, ck := range []models.Kind{models.KindText, models.KindButton} {
				child, err := document.New(ck)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, child)
			}
		}
		tree = append(tree, n)
	}
	return tree, nil
}
