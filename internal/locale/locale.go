// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package locale loads the editor's translated labels. Labels are resolved
// once per request and passed explicitly to the renderer and the editing
// coordinator.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"mailforge/internal/models"
)

//go:embed locales/*.yaml
var embedLocales embed.FS

// DefaultLocale is used when nothing else matches.
const DefaultLocale = "nl"

// KindLabel is the palette name and description of one component kind.
type KindLabel struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// PaletteLabels holds component library strings.
type PaletteLabels struct {
	SearchPlaceholder string            `yaml:"search_placeholder"`
	NoResults         string            `yaml:"no_results"`
	Categories        map[string]string `yaml:"categories"`
}

// PanelLabels holds property panel strings.
type PanelLabels struct {
	SelectComponent string            `yaml:"select_component"`
	Content         string            `yaml:"content"`
	Style           string            `yaml:"style"`
	Link            string            `yaml:"link"`
	Grid            string            `yaml:"grid"`
	Columns         string            `yaml:"columns"`
	Properties      map[string]string `yaml:"properties"`
}

// CanvasLabels holds strings that end up in rendered markup.
type CanvasLabels struct {
	Empty                  string `yaml:"empty"`
	GridDropZone           string `yaml:"grid_drop_zone"`
	CardDropZone           string `yaml:"card_drop_zone"`
	VideoPlaceholder       string `yaml:"video_placeholder"`
	ImageAlt               string `yaml:"image_alt"`
	TestimonialAttribution string `yaml:"testimonial_attribution"`
}

// TemplateLabels holds template collection strings.
type TemplateLabels struct {
	NewName string `yaml:"new_name"`
}

// ShareLabels holds the defaults of the share dialog. Subject is a format
// string taking the template name.
type ShareLabels struct {
	Subject string `yaml:"subject"`
	Message string `yaml:"message"`
}

// Labels is the full set of strings for one locale.
type Labels struct {
	Locale    string               `yaml:"-"`
	Palette   PaletteLabels        `yaml:"palette"`
	Kinds     map[string]KindLabel `yaml:"kinds"`
	Panel     PanelLabels          `yaml:"panel"`
	Canvas    CanvasLabels         `yaml:"canvas"`
	Templates TemplateLabels       `yaml:"templates"`
	Share     ShareLabels          `yaml:"share"`
}

// Kind returns the label for kind, deriving a title-cased name when the
// catalog has no entry.
func (l Labels) Kind(kind models.Kind) KindLabel {
	if kl, ok := l.Kinds[string(kind)]; ok {
		return kl
	}
	return KindLabel{Name: cases.Title(language.Und).String(string(kind))}
}

// Category returns the translated palette category name.
func (l Labels) Category(c string) string {
	if v, ok := l.Palette.Categories[c]; ok {
		return v
	}
	return c
}

// Property returns the translated style property label.
func (l Labels) Property(prop string) string {
	if v, ok := l.Panel.Properties[prop]; ok {
		return v
	}
	return prop
}

// Catalog holds the labels of every bundled locale.
type Catalog struct {
	labels   map[string]Labels
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
}

// Load parses the bundled locale files. fallback names the locale returned
// when a request matches nothing; it must be one of the bundled locales.
func Load(fallback string) (*Catalog, error) {
	files, err := fs.Glob(embedLocales, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	slices.Sort(files)

	c := &Catalog{labels: make(map[string]Labels, len(files))}
	for _, f := range files {
		data, err := embedLocales.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var l Labels
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		code := strings.TrimSuffix(path.Base(f), ".yaml")
		l.Locale = code
		c.labels[code] = l
	}

	if fallback == "" {
		fallback = DefaultLocale
	}
	if _, ok := c.labels[fallback]; !ok {
		return nil, fmt.Errorf("unknown default locale %q", fallback)
	}
	c.fallback = fallback

	// The fallback goes first so the matcher prefers it on ties.
	c.tags = append(c.tags, language.Make(fallback))
	for _, code := range c.Locales() {
		if code != fallback {
			c.tags = append(c.tags, language.Make(code))
		}
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Locales returns the bundled locale codes in sorted order.
func (c *Catalog) Locales() []string {
	codes := make([]string, 0, len(c.labels))
	for code := range c.labels {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Get returns the labels for an exact locale code, or the fallback.
func (c *Catalog) Get(code string) Labels {
	if l, ok := c.labels[code]; ok {
		return l
	}
	return c.labels[c.fallback]
}

// Has reports whether code is a bundled locale.
func (c *Catalog) Has(code string) bool {
	_, ok := c.labels[code]
	return ok
}

// Match picks the best bundled locale for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) Labels {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.labels[c.fallback]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.labels[c.fallback]
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.labels[c.fallback]
	}
	base, _ := c.tags[idx].Base()
	return c.Get(base.String())
}
