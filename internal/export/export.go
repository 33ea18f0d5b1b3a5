// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export produces the standalone HTML and PDF files of a template.
// HTML is cached in two layers: an in-process map (L1) and an optional
// shared cache such as Valkey (L2).
package export

import (
	"bytes"
	"context"
	"fmt"

	"mailforge/internal/models"
	"mailforge/internal/render"
	"mailforge/internal/slug"
)

// Cache is a shared cache for exported HTML.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidateTemplate(ctx context.Context, id string)
}

// Exporter renders templates to downloadable files.
type Exporter struct {
	cache  *htmlCache
	remote Cache
	raster Rasterizer
}

// New creates an Exporter. raster and remote may be nil; without a
// rasterizer PDF export returns ErrNoRasterizer.
func New(raster Rasterizer, remote Cache) *Exporter {
	return &Exporter{
		cache:  newHTMLCache(),
		remote: remote,
		raster: raster,
	}
}

// CanPDF reports whether PDF export is available.
func (e *Exporter) CanPDF() bool {
	return e.raster != nil
}

// HTML returns the complete HTML document for tpl rendered with r.
func (e *Exporter) HTML(ctx context.Context, r *render.Renderer, tpl *models.Template) ([]byte, error) {
	key, err := keyOf(tpl, r.Locale())
	if err != nil {
		return nil, fmt.Errorf("cache key for template %s: %w", tpl.ID, err)
	}
	if tpl.ID != "" {
		if html, ok := e.cache.get(key); ok {
			return html, nil
		}
		if e.remote != nil {
			if html, ok := e.remote.Get(ctx, remoteKey(key)); ok {
				e.cache.put(key, html)
				return html, nil
			}
		}
	}

	var buf bytes.Buffer
	if err := r.Document(tpl).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render template %s: %w", tpl.ID, err)
	}
	html := buf.Bytes()

	if tpl.ID != "" {
		e.cache.put(key, html)
		if e.remote != nil {
			e.remote.Set(ctx, remoteKey(key), html)
		}
	}
	return html, nil
}

// Invalidate drops every cached export of a template. Saves already change
// the cache key; this is for deletes.
func (e *Exporter) Invalidate(ctx context.Context, id string) {
	e.cache.invalidate(id)
	if e.remote != nil {
		e.remote.InvalidateTemplate(ctx, id)
	}
}

// remoteKey is "<id>:<revision>:<digest>:<locale>". The id comes first so
// a cache can drop a template's entries by prefix.
func remoteKey(k cacheKey) string {
	return fmt.Sprintf("%s:%d:%016x:%s", k.id, k.revision, k.digest, k.locale)
}

// FileName returns the download name for an export of tpl, e.g.
// "spring-sale.html". Templates whose name has no usable characters are
// named "template".
func FileName(tpl *models.Template, ext string) string {
	name := slug.Generate(tpl.Name)
	if name == "" {
		name = "template"
	}
	return name + "." + ext
}
