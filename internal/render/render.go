// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns component trees into HTML. The same renderer feeds
// the live canvas preview, the HTML export and the PDF rasterizer, so all
// three show identical markup.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-h/templ"

	"mailforge/internal/locale"
	"mailforge/internal/models"
	"mailforge/internal/registry"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates holds the per-kind element templates and the document shell.
// html/template escapes every value by the context it lands in.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Renderer renders nodes with a fixed set of labels and icons.
type Renderer struct {
	labels locale.Labels
	icons  IconSet
}

// New creates a Renderer. A nil icon set uses the built-in icons.
func New(labels locale.Labels, icons IconSet) *Renderer {
	if icons == nil {
		icons = DefaultIcons
	}
	return &Renderer{labels: labels, icons: icons}
}

// Locale returns the locale code the renderer's labels belong to.
func (r *Renderer) Locale() string {
	return r.labels.Locale
}

// nodeView is what the element templates see of one node.
type nodeView struct {
	Kind    string
	Style   template.CSS
	Content string
	Href    string

	Alt         string
	Attribution string
	Placeholder string
	VideoID     string
	Items       []string
	Icon        string
	IconSVG     template.HTML

	Children  []*nodeView
	Rows      [][]*nodeView
	CellWidth string
}

// view resolves c and its descendants into template data. Kinds outside
// the registry are rejected here, before anything is written.
func (r *Renderer) view(c models.Component) (*nodeView, error) {
	if _, err := registry.Lookup(c.Kind); err != nil {
		return nil, err
	}
	v := &nodeView{
		Kind:    string(c.Kind),
		Style:   styleAttr(c.Styles),
		Content: c.Content,
		Href:    c.LinkValue(),
	}
	switch c.Kind {
	case models.KindImage:
		v.Alt = r.labels.Canvas.ImageAlt
	case models.KindTestimonial:
		v.Attribution = r.labels.Canvas.TestimonialAttribution
	case models.KindVideo:
		v.VideoID = YouTubeID(c.Content)
		v.Placeholder = r.labels.Canvas.VideoPlaceholder
	case models.KindList:
		for item := range strings.SplitSeq(c.Content, "\n") {
			if strings.TrimSpace(item) != "" {
				v.Items = append(v.Items, item)
			}
		}
	case models.KindIcon:
		name, svg := r.icons.Resolve(c.Content)
		v.Icon = name
		// Icon markup comes from the icon set, never from the document.
		v.IconSVG = template.HTML(svg)
	}

	children, err := r.views(c.Children)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case models.KindCard:
		v.Children = children
	case models.KindGrid:
		cols := models.ClampColumns(c.Columns(registry.DefaultGridColumns))
		v.Rows = slices.Collect(slices.Chunk(children, cols))
		v.CellWidth = strconv.FormatFloat(100/float64(cols), 'f', -1, 64) + "%"
	}
	return v, nil
}

func (r *Renderer) views(nodes []models.Component) ([]*nodeView, error) {
	out := make([]*nodeView, 0, len(nodes))
	for _, c := range nodes {
		v, err := r.view(c)
		if err != nil {
			return nil, fmt.Errorf("render %s %s: %w", c.Kind, c.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// component executes a named template as a templ component. data builds
// the template input, so errors surface before any output is written.
func component(name string, data func() (any, error)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := data()
		if err != nil {
			return err
		}
		return templates.ExecuteTemplate(w, name, d)
	})
}

// Node returns the markup component for c and, for containers, its children.
func (r *Renderer) Node(c models.Component) templ.Component {
	return component("node", func() (any, error) {
		v, err := r.view(c)
		if err != nil {
			return nil, fmt.Errorf("render %s %s: %w", c.Kind, c.ID, err)
		}
		return v, nil
	})
}

// Nodes renders a sequence of nodes one after another.
func (r *Renderer) Nodes(nodes []models.Component) templ.Component {
	return component("nodes", func() (any, error) {
		return r.views(nodes)
	})
}

// Canvas renders nodes, or the localized empty-canvas prompt when there
// are none.
func (r *Renderer) Canvas(nodes []models.Component) templ.Component {
	if len(nodes) == 0 {
		return component("empty", func() (any, error) {
			return r.labels.Canvas.Empty, nil
		})
	}
	return r.Nodes(nodes)
}

// Fragment renders nodes to a string.
func (r *Renderer) Fragment(ctx context.Context, nodes []models.Component) (string, error) {
	var buf bytes.Buffer
	if err := r.Nodes(nodes).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return buf.String(), nil
}

// YouTubeID extracts the video id from a youtube.com or youtu.be URL.
func YouTubeID(raw string) string {
	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		return ""
	}
	if _, after, ok := strings.Cut(raw, "v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	if _, after, ok := strings.Cut(raw, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return id
	}
	return ""
}

// styleAttr builds the inline style value. Known properties come first in
// a fixed order, then any other keys sorted. Keys are converted from
// camelCase to CSS names; values are passed through and only
// attribute-escaped, as the editor lets users type any CSS value.
func styleAttr(s models.Styles) template.CSS {
	keys := s.Keys()
	slices.SortStableFunc(keys, func(a, b string) int {
		ia, ib := registry.PropertyOrder(a), registry.PropertyOrder(b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		return 0
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, cssName(k)+": "+s[k])
	}
	return template.CSS(strings.Join(parts, "; "))
}

// cssName converts a camelCase style key to its CSS property name.
func cssName(key string) string {
	var sb strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
