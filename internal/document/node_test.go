// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package document

import (
	"errors"
	"strings"
	"testing"

	"mailforge/internal/models"
	"mailforge/internal/registry"
)

func TestNew(t *testing.T) {
	for _, k := range models.Kinds {
		t.Run(string(k), func(t *testing.T) {
			c, err := New(k)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s := registry.MustLookup(k)
			if c.ID == "" {
				t.Error("new node has no id")
			}
			if c.Content != s.DefaultContent {
				t.Errorf("content = %q, want %q", c.Content, s.DefaultContent)
			}
			if len(c.Styles) != len(s.DefaultStyles) {
				t.Errorf("styles = %v, want %v", c.Styles, s.DefaultStyles)
			}
			if k == models.KindGrid && c.Columns(0) != registry.DefaultGridColumns {
				t.Errorf("grid columns = %d, want %d", c.Columns(0), registry.DefaultGridColumns)
			}
			if k != models.KindGrid && c.GridColumns != nil {
				t.Error("only grids get a column count")
			}
		})
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("marquee")
	var uk *registry.UnknownKindError
	if !errors.As(err, &uk) {
		t.Fatalf("expected UnknownKindError, got %v", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 10_000 {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestReassign(t *testing.T) {
	tree := sample()
	tree[1].GridColumns = ptr(3)
	got := Reassign(tree)

	if Count(got) != Count(tree) {
		t.Fatalf("Count = %d, want %d", Count(got), Count(tree))
	}
	old := make(map[string]bool)
	for _, id := range IDs(tree) {
		old[id] = true
	}
	for _, id := range IDs(got) {
		if old[id] {
			t.Errorf("id %q was reused", id)
		}
	}
	*got[1].GridColumns = 5
	if *tree[1].GridColumns != 3 {
		t.Error("Reassign shares grid column storage")
	}
	if err := Validate(got); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		tree []models.Component
		want string
	}{
		{"valid", sample(), ""},
		{"unknown kind", []models.Component{node("x", "carousel")}, "unknown component kind"},
		{"missing id", []models.Component{node("", models.KindText)}, "has no id"},
		{"duplicate nested id", []models.Component{
			node("a", models.KindText),
			node("g", models.KindGrid, node("a", models.KindText)),
		}, "duplicate id"},
		{"children on leaf", []models.Component{node("t", models.KindText, node("u", models.KindText))}, "cannot have children"},
		{"columns out of range", []models.Component{{ID: "g", Kind: models.KindGrid, GridColumns: ptr(12)}}, "grid columns"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.tree)
			if tc.want == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := []models.Component{{ID: "x", Kind: models.KindText}}
	b := []models.Component{{ID: "x", Kind: models.KindText, Styles: models.Styles{}, Children: []models.Component{}}}
	if !Equal(a, b) {
		t.Error("nil and empty should compare equal")
	}
	b[0].Link = ptr("")
	if Equal(a, b) {
		t.Error("nil and empty link should differ")
	}
	if Equal(sample(), sample()[:2]) {
		t.Error("different lengths should differ")
	}
}
