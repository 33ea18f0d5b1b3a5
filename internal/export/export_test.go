// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mailforge/internal/locale"
	"mailforge/internal/models"
	"mailforge/internal/render"
)

func renderer(t *testing.T, code string) *render.Renderer {
	t.Helper()
	c, err := locale.Load("nl")
	if err != nil {
		t.Fatalf("locale.Load: %v", err)
	}
	return render.New(c.Get(code), nil)
}

func sample() *models.Template {
	return &models.Template{
		ID:   "tpl-1",
		Name: "Spring Sale!",
		Components: []models.Component{
			{ID: "h", Kind: models.KindHeader, Content: "Welcome", Styles: models.Styles{"fontSize": "24px"}},
			{ID: "b", Kind: models.KindButton, Content: "Shop", Styles: models.Styles{}},
		},
		UpdatedAt: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

// memCache records calls so tests can see which layer answered.
type memCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	gets  int
	drops []string
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, html []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = html
}

func (m *memCache) InvalidateTemplate(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drops = append(m.drops, id)
}

func TestHTMLDocument(t *testing.T) {
	e := New(nil, nil)
	html, err := e.HTML(context.Background(), renderer(t, "nl"), sample())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	s := string(html)
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="nl">`,
		"max-width: 600px",
		`<h1 style="font-size: 24px">Welcome</h1>`,
		`<a style="">Shop</a>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("export missing %q", want)
		}
	}
}

func TestHTMLCacheLayers(t *testing.T) {
	ctx := context.Background()
	remote := &memCache{}
	e := New(nil, remote)
	r := renderer(t, "nl")
	tpl := sample()

	first, err := e.HTML(ctx, r, tpl)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if len(remote.data) != 1 {
		t.Fatalf("remote cache has %d entries, want 1", len(remote.data))
	}

	// Second call is answered by L1 without touching the remote cache.
	gets := remote.gets
	second, _ := e.HTML(ctx, r, tpl)
	if !bytes.Equal(first, second) || remote.gets != gets {
		t.Error("second export should come from the in-process cache")
	}

	// A fresh exporter sharing the remote cache gets an L2 hit.
	other := New(nil, remote)
	third, _ := other.HTML(ctx, r, tpl)
	if !bytes.Equal(first, third) || other.cache.len() != 1 {
		t.Error("remote cache hit should populate L1")
	}

	// A save bumps updatedAt and misses both layers.
	tpl.UpdatedAt = tpl.UpdatedAt.Add(time.Second)
	tpl.Components[0].Content = "Changed"
	fourth, _ := e.HTML(ctx, r, tpl)
	if !strings.Contains(string(fourth), "Changed") {
		t.Error("stale export served after update")
	}
	if e.cache.len() != 1 {
		t.Errorf("older revision kept in L1: %d entries", e.cache.len())
	}

	e.Invalidate(ctx, tpl.ID)
	if e.cache.len() != 0 || len(remote.drops) != 1 {
		t.Error("Invalidate should clear both layers")
	}
}

// Hand-edited records keep their updatedAt; the export must still follow
// the tree.
func TestHTMLCacheFollowsContentWithoutNewRevision(t *testing.T) {
	ctx := context.Background()
	remote := &memCache{}
	e := New(nil, remote)
	r := renderer(t, "nl")
	tpl := sample()

	if _, err := e.HTML(ctx, r, tpl); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	tpl.Components[0].Content = "Second"
	html, err := e.HTML(ctx, r, tpl)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(html), "Second") || strings.Contains(string(html), "Welcome") {
		t.Errorf("stale export after edit: %s", html)
	}
	if e.cache.len() != 1 {
		t.Errorf("L1 has %d entries, want only the current content", e.cache.len())
	}

	tpl.Name = "Renamed"
	html, _ = e.HTML(ctx, r, tpl)
	if !strings.Contains(string(html), "<title>Renamed</title>") {
		t.Error("rename not reflected in the export title")
	}
	if len(remote.data) != 3 {
		t.Errorf("remote cache has %d entries, want one per content", len(remote.data))
	}
}

func TestHTMLCacheIsPerLocale(t *testing.T) {
	ctx := context.Background()
	e := New(nil, nil)
	tpl := sample()
	tpl.Components = []models.Component{{ID: "q", Kind: models.KindTestimonial, Content: "Top", Styles: models.Styles{}}}

	nl, _ := e.HTML(ctx, renderer(t, "nl"), tpl)
	en, _ := e.HTML(ctx, renderer(t, "en"), tpl)
	if !strings.Contains(string(nl), "Klant") || !strings.Contains(string(en), "Customer") {
		t.Errorf("locale leaked across cache entries:\nnl: %s\nen: %s", nl, en)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name, ext, want string
	}{
		{"Spring Sale!", "html", "spring-sale.html"},
		{"Nieuwsbrief Één", "pdf", "nieuwsbrief-een.pdf"},
		{"???", "html", "template.html"},
		{"", "pdf", "template.pdf"},
	}
	for _, tc := range tests {
		if got := FileName(&models.Template{Name: tc.name}, tc.ext); got != tc.want {
			t.Errorf("FileName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		height float64
		want   int
	}{
		{0, 1},
		{100, 1},
		{PageHeight, 1},
		{PageHeight + 0.5, 2},
		{3 * PageHeight, 3},
		{3*PageHeight + 1, 4},
	}
	for _, tc := range tests {
		got := Pages(tc.height)
		if len(got) != tc.want {
			t.Errorf("Pages(%v) = %d pages, want %d", tc.height, len(got), tc.want)
			continue
		}
		for i, y := range got {
			if y != -float64(i)*PageHeight {
				t.Errorf("Pages(%v)[%d] = %v", tc.height, i, y)
			}
		}
	}
}

func screenshot(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestAssemble(t *testing.T) {
	// 1200px wide at 210mm: 1 px = 0.175 mm, so 4000px is 700mm, three pages.
	doc, err := Assemble(screenshot(t, 1200, 4000), "Tall")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := doc.PageCount(); got != 3 {
		t.Errorf("PageCount = %d, want 3", got)
	}

	doc, err = Assemble(screenshot(t, 1200, 400), "Short")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := doc.PageCount(); got != 1 {
		t.Errorf("PageCount = %d, want 1", got)
	}

	if _, err := Assemble([]byte("not an image"), "x"); err == nil {
		t.Error("expected error for invalid screenshot")
	}
}

type stubRasterizer struct {
	png   []byte
	err   error
	width int
}

func (s *stubRasterizer) Rasterize(_ context.Context, html []byte, width, _ int) ([]byte, error) {
	s.width = width
	return s.png, s.err
}

func TestPDF(t *testing.T) {
	ctx := context.Background()
	r := renderer(t, "nl")

	if _, err := New(nil, nil).PDF(ctx, r, sample()); !errors.Is(err, ErrNoRasterizer) {
		t.Errorf("expected ErrNoRasterizer, got %v", err)
	}

	stub := &stubRasterizer{png: screenshot(t, 1200, 800)}
	out, err := New(stub, nil).PDF(ctx, r, sample())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
	if stub.width != RasterWidth {
		t.Errorf("rasterized at %dpx, want %d", stub.width, RasterWidth)
	}

	stub.err = errors.New("browser crashed")
	if _, err := New(stub, nil).PDF(ctx, r, sample()); err == nil {
		t.Error("expected rasterizer error to surface")
	}
}

func TestHTTPRasterizer(t *testing.T) {
	want := screenshot(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Query().Get("width") != "600" || r.URL.Query().Get("scale") != "2" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "<p>hi</p>" {
			t.Errorf("body = %q", body)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(want)
	}))
	defer srv.Close()

	got, err := NewHTTPRasterizer(srv.URL+"/screenshot").Rasterize(context.Background(), []byte("<p>hi</p>"), 600, 2)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("unexpected PNG body")
	}
}

func TestHTTPRasterizerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPRasterizer(srv.URL).Rasterize(context.Background(), []byte("x"), 600, 2)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status error, got %v", err)
	}
}
