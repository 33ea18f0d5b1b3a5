// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package document

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"mailforge/internal/models"
	"mailforge/internal/registry"
)

// NewID returns a fresh node id. UUIDv7 puts a millisecond timestamp in the
// high bits and random data in the rest, so rapid successive inserts never
// collide.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New builds a node of kind with a fresh id and the registry's default
// content and styles.
func New(kind models.Kind) (models.Component, error) {
	s, err := registry.Lookup(kind)
	if err != nil {
		return models.Component{}, err
	}
	c := models.Component{
		ID:      NewID(),
		Kind:    kind,
		Content: s.DefaultContent,
		Styles:  s.DefaultStyles,
	}
	if s.HasGrid {
		cols := registry.DefaultGridColumns
		c.GridColumns = &cols
	}
	return c, nil
}

// Reassign returns a deep copy of the tree where every node has a new id.
// Used when duplicating a template.
func Reassign(tree []models.Component) []models.Component {
	if tree == nil {
		return nil
	}
	out := make([]models.Component, len(tree))
	for i, c := range tree {
		c.ID = NewID()
		c.Styles = c.Styles.Clone()
		if c.Link != nil {
			link := *c.Link
			c.Link = &link
		}
		if c.GridColumns != nil {
			cols := *c.GridColumns
			c.GridColumns = &cols
		}
		c.Children = Reassign(c.Children)
		out[i] = c
	}
	return out
}

// Validate checks a tree read from outside the editor: every kind is known,
// ids are present and unique, only grids and cards carry children and grid
// columns are within [1, 6]. All problems are reported together.
func Validate(tree []models.Component) error {
	var errs []error
	seen := make(map[string]bool)
	Walk(tree, func(c models.Component, depth int) bool {
		if _, err := registry.Lookup(c.Kind); err != nil {
			errs = append(errs, err)
		}
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("%s node at depth %d has no id", c.Kind, depth))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("duplicate id %q", c.ID))
		}
		seen[c.ID] = true
		if len(c.Children) > 0 && !c.Kind.IsContainer() {
			errs = append(errs, fmt.Errorf("node %q of kind %q cannot have children", c.ID, c.Kind))
		}
		if c.GridColumns != nil && (*c.GridColumns < 1 || *c.GridColumns > 6) {
			errs = append(errs, fmt.Errorf("node %q has %d grid columns, want 1-6", c.ID, *c.GridColumns))
		}
		return true
	})
	return errors.Join(errs...)
}

// Equal reports whether two trees are structurally equal. Nil and empty
// children or styles compare equal.
func Equal(a, b []models.Component) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalNode(a, b models.Component) bool {
	if a.ID != b.ID || a.Kind != b.Kind || a.Content != b.Content {
		return false
	}
	if (a.Link == nil) != (b.Link == nil) || a.LinkValue() != b.LinkValue() {
		return false
	}
	if (a.GridColumns == nil) != (b.GridColumns == nil) || a.Columns(0) != b.Columns(0) {
		return false
	}
	if len(a.Styles) != len(b.Styles) || !maps.Equal(a.Styles, b.Styles) {
		return false
	}
	return Equal(a.Children, b.Children)
}
