// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"maps"
	"slices"
)

// Kind identifies which block a component node renders as. The set is closed.
type Kind string

const (
	KindHeader      Kind = "header"
	KindText        Kind = "text"
	KindQuote       Kind = "quote"
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindButton      Kind = "button"
	KindDivider     Kind = "divider"
	KindSpacer      Kind = "spacer"
	KindFooter      Kind = "footer"
	KindGrid        Kind = "grid"
	KindCard        Kind = "card"
	KindList        Kind = "list"
	KindTestimonial Kind = "testimonial"
	KindIcon        Kind = "icon"
)

// Kinds lists every component kind in palette order.
var Kinds = []Kind{
	KindHeader, KindText, KindQuote, KindImage, KindVideo, KindButton,
	KindGrid, KindCard, KindList, KindTestimonial, KindIcon,
	KindDivider, KindSpacer, KindFooter,
}

// Valid reports whether k belongs to the closed kind set.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// IsContainer reports whether nodes of this kind may hold children.
func (k Kind) IsContainer() bool {
	return k == KindGrid || k == KindCard
}

// Style property names understood by the editor and renderer.
const (
	StyleFontSize        = "fontSize"
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StylePadding         = "padding"
	StyleTextAlign       = "textAlign"
	StyleFontWeight      = "fontWeight"
	StyleBorderRadius    = "borderRadius"
	StyleWidth           = "width"
	StyleHeight          = "height"
	StyleBorder          = "border"
	StyleMargin          = "margin"
	StyleBoxShadow       = "boxShadow"
)

// ValidTextAlign reports whether v is an accepted textAlign value.
func ValidTextAlign(v string) bool {
	switch v {
	case "left", "center", "right":
		return true
	}
	return false
}

// Styles maps style property names to raw CSS values. Keys outside the
// known property set are kept as-is.
type Styles map[string]string

// Clone returns an independent copy. A nil map clones to nil.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Merge returns a new map holding s overlaid with patch. An empty value in
// patch removes the key.
func (s Styles) Merge(patch Styles) Styles {
	out := make(Styles, len(s)+len(patch))
	maps.Copy(out, s)
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Keys returns the style keys in sorted order.
func (s Styles) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Component is one block in a template tree. Children are stored by value
// so every node has exactly one owner.
type Component struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"type"`
	Content     string      `json:"content"`
	Link        *string     `json:"link,omitempty"`
	GridColumns *int        `json:"gridColumns,omitempty"`
	Children    []Component `json:"gridItems,omitempty"`
	Styles      Styles      `json:"styles"`
}

// LinkValue returns the link or an empty string.
func (c Component) LinkValue() string {
	if c.Link == nil {
		return ""
	}
	return *c.Link
}

// Columns returns the grid column count, falling back to def when unset.
func (c Component) Columns(def int) int {
	if c.GridColumns == nil {
		return def
	}
	return *c.GridColumns
}

// ClampColumns bounds a grid column count to [1, 6].
func ClampColumns(n int) int {
	return min(max(n, 1), 6)
}
