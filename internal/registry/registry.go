// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package registry holds the static schema for every component kind: its
// palette category, which fields it supports, its default content and the
// style properties the property panel exposes for it.
package registry

import (
	"fmt"
	"slices"

	"mailforge/internal/models"
)

// Category groups kinds in the palette.
type Category string

const (
	CategoryText        Category = "text"
	CategoryMedia       Category = "media"
	CategoryInteractive Category = "interactive"
	CategoryLayout      Category = "layout"
	CategoryContent     Category = "content"
)

// DefaultGridColumns is the column count given to newly created grids.
const DefaultGridColumns = 2

// Schema describes the capabilities of one component kind.
type Schema struct {
	Kind            models.Kind
	Category        Category
	HasContent      bool
	HasLink         bool
	HasGrid         bool
	DefaultContent  string
	StyleProperties []string
	DefaultStyles   models.Styles
}

// Editable reports whether prop is surfaced for editing on this kind.
func (s Schema) Editable(prop string) bool {
	return slices.Contains(s.StyleProperties, prop)
}

// UnknownKindError is returned when a kind outside the closed set is looked up.
type UnknownKindError struct {
	Kind models.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown component kind %q", string(e.Kind))
}

// Lookup returns the schema for kind.
func Lookup(kind models.Kind) (Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return Schema{}, &UnknownKindError{Kind: kind}
	}
	s.StyleProperties = slices.Clone(s.StyleProperties)
	s.DefaultStyles = s.DefaultStyles.Clone()
	return s, nil
}

// MustLookup is Lookup for kinds already validated by the caller. It panics
// on an unknown kind.
func MustLookup(kind models.Kind) Schema {
	s, err := Lookup(kind)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns every schema in palette order.
func All() []Schema {
	out := make([]Schema, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		out = append(out, MustLookup(k))
	}
	return out
}

// Categories returns the palette categories in display order.
func Categories() []Category {
	return []Category{CategoryText, CategoryMedia, CategoryInteractive, CategoryLayout, CategoryContent}
}

// ByCategory returns the schemas of one category in palette order. An empty
// category returns all schemas.
func ByCategory(c Category) []Schema {
	all := All()
	if c == "" {
		return all
	}
	return slices.DeleteFunc(all, func(s Schema) bool { return s.Category != c })
}

// PropertyOrder returns the position of a known style property in the
// canonical ordering, or -1.
func PropertyOrder(prop string) int {
	return slices.Index(propertyOrder, prop)
}

var propertyOrder = []string{
	models.StyleWidth, models.StyleHeight, models.StyleFontSize, models.StyleFontWeight,
	models.StyleColor, models.StyleBackgroundColor, models.StylePadding, models.StyleMargin,
	models.StyleTextAlign, models.StyleBorder, models.StyleBorderRadius, models.StyleBoxShadow,
}
