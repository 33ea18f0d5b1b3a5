// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package registry

import (
	"maps"

	m "mailforge/internal/models"
)

var textProperties = []string{
	m.StyleFontSize, m.StyleColor, m.StyleBackgroundColor, m.StylePadding,
	m.StyleTextAlign, m.StyleFontWeight, m.StyleMargin,
}

// withBase layers kind-specific defaults over the shared block padding
// and alignment.
func withBase(extra m.Styles) m.Styles {
	out := m.Styles{m.StylePadding: "10px", m.StyleTextAlign: "left"}
	maps.Copy(out, extra)
	return out
}

var schemas = map[m.Kind]Schema{
	m.KindHeader: {
		Category:        CategoryText,
		HasContent:      true,
		DefaultContent:  "Header Text",
		StyleProperties: textProperties,
		DefaultStyles:   withBase(m.Styles{m.StyleFontSize: "24px", m.StyleFontWeight: "bold", m.StyleColor: "#1f2937"}),
	},
	m.KindText: {
		Category:        CategoryText,
		HasContent:      true,
		DefaultContent:  "Text content",
		StyleProperties: textProperties,
		DefaultStyles:   withBase(m.Styles{m.StyleFontSize: "16px", m.StyleColor: "#374151"}),
	},
	m.KindQuote: {
		Category:       CategoryText,
		HasContent:     true,
		DefaultContent: "Quote text",
		StyleProperties: []string{
			m.StyleFontSize, m.StyleColor, m.StyleBackgroundColor, m.StylePadding,
			m.StyleTextAlign, m.StyleFontWeight, m.StyleBorder, m.StyleBorderRadius, m.StyleMargin,
		},
		DefaultStyles: withBase(m.Styles{m.StyleFontSize: "18px", m.StyleColor: "#4b5563", m.StyleFontWeight: "300"}),
	},
	m.KindImage: {
		Category:        CategoryMedia,
		HasContent:      true,
		HasLink:         true,
		DefaultContent:  "https://via.placeholder.com/400x200",
		StyleProperties: []string{m.StyleWidth, m.StyleHeight, m.StyleBorderRadius, m.StyleMargin, m.StyleBorder},
		DefaultStyles:   withBase(nil),
	},
	m.KindVideo: {
		Category:        CategoryMedia,
		HasContent:      true,
		StyleProperties: []string{m.StyleWidth, m.StyleHeight, m.StyleBorderRadius, m.StyleMargin},
		DefaultStyles:   m.Styles{m.StyleWidth: "100%"},
	},
	m.KindButton: {
		Category:       CategoryInteractive,
		HasContent:     true,
		HasLink:        true,
		DefaultContent: "Click me",
		StyleProperties: []string{
			m.StyleFontSize, m.StyleColor, m.StyleBackgroundColor, m.StylePadding,
			m.StyleBorderRadius, m.StyleBorder, m.StyleFontWeight, m.StyleMargin,
		},
		DefaultStyles: withBase(m.Styles{
			m.StyleBackgroundColor: "#3b82f6", m.StyleColor: "#ffffff", m.StyleBorderRadius: "6px",
			m.StyleTextAlign: "center", m.StyleFontWeight: "bold",
		}),
	},
	m.KindGrid: {
		Category:        CategoryLayout,
		HasGrid:         true,
		StyleProperties: []string{m.StyleBackgroundColor, m.StylePadding, m.StyleBorderRadius, m.StyleBorder, m.StyleMargin},
		DefaultStyles:   m.Styles{m.StylePadding: "20px", m.StyleBackgroundColor: "#f9fafb", m.StyleBorderRadius: "8px"},
	},
	m.KindCard: {
		Category:        CategoryLayout,
		HasContent:      true,
		HasLink:         true,
		DefaultContent:  "Card content",
		StyleProperties: []string{m.StyleBackgroundColor, m.StylePadding, m.StyleBorderRadius, m.StyleBorder, m.StyleMargin, m.StyleBoxShadow},
		DefaultStyles: withBase(m.Styles{
			m.StyleBackgroundColor: "#ffffff", m.StyleBorderRadius: "8px", m.StyleBorder: "1px solid #e5e7eb",
		}),
	},
	m.KindList: {
		Category:        CategoryContent,
		HasContent:      true,
		DefaultContent:  "Item 1\nItem 2\nItem 3",
		StyleProperties: []string{m.StyleFontSize, m.StyleColor, m.StyleBackgroundColor, m.StylePadding, m.StyleMargin},
		DefaultStyles:   withBase(m.Styles{m.StyleFontSize: "16px", m.StyleColor: "#374151"}),
	},
	m.KindTestimonial: {
		Category:       CategoryContent,
		HasContent:     true,
		DefaultContent: "Customer testimonial",
		StyleProperties: []string{
			m.StyleFontSize, m.StyleColor, m.StyleBackgroundColor, m.StylePadding,
			m.StyleTextAlign, m.StyleBorderRadius, m.StyleBorder, m.StyleMargin,
		},
		DefaultStyles: withBase(m.Styles{
			m.StyleBackgroundColor: "#f9fafb", m.StyleBorderRadius: "8px", m.StyleFontSize: "16px", m.StyleColor: "#374151",
		}),
	},
	m.KindIcon: {
		Category:        CategoryContent,
		HasContent:      true,
		DefaultContent:  "star",
		StyleProperties: []string{m.StyleColor, m.StyleMargin},
		DefaultStyles:   withBase(m.Styles{m.StyleTextAlign: "center", m.StyleColor: "#3b82f6"}),
	},
	m.KindDivider: {
		Category:        CategoryLayout,
		StyleProperties: []string{m.StyleColor, m.StyleMargin, m.StyleHeight},
		DefaultStyles:   m.Styles{m.StyleHeight: "1px", m.StyleBackgroundColor: "#e5e7eb", m.StyleWidth: "100%"},
	},
	m.KindSpacer: {
		Category:        CategoryLayout,
		StyleProperties: []string{m.StyleHeight, m.StyleMargin},
		DefaultStyles:   m.Styles{m.StyleHeight: "20px", m.StyleWidth: "100%"},
	},
	m.KindFooter: {
		Category:        CategoryText,
		HasContent:      true,
		DefaultContent:  "Footer text",
		StyleProperties: textProperties,
		DefaultStyles:   withBase(m.Styles{m.StyleFontSize: "14px", m.StyleColor: "#6b7280", m.StyleTextAlign: "center"}),
	},
}

func init() {
	for k, s := range schemas {
		s.Kind = k
		schemas[k] = s
	}
}
