// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory template store and session store, so
// no external services are needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mailforge/internal/export"
	"mailforge/internal/live"
	"mailforge/internal/locale"
	"mailforge/internal/middleware"
	"mailforge/internal/models"
	"mailforge/internal/session"
	"mailforge/internal/share"
	"mailforge/internal/store"
)

// stubRasterizer returns a fixed PNG.
type stubRasterizer struct {
	png []byte
	err error
}

func (s *stubRasterizer) Rasterize(_ context.Context, _ []byte, _, _ int) ([]byte, error) {
	return s.png, s.err
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Templates *store.MemoryStore
	Catalog   *locale.Catalog
	Hub       *live.Hub
	Raster    *stubRasterizer
	Session   *session.Data
	Locale    string
	Editor    *Editor
}

// newTestEnv creates an editor with in-memory backends. shareURL may be
// empty to leave sharing unconfigured.
func newTestEnv(t *testing.T, shareURL string) *testEnv {
	t.Helper()

	catalog, err := locale.Load("nl")
	if err != nil {
		t.Fatalf("locale.Load: %v", err)
	}
	raster := &stubRasterizer{png: screenshot(t, 1200, 800)}
	templates := store.NewMemoryStore()
	hub := live.NewHub()

	env := &testEnv{
		Templates: templates,
		Catalog:   catalog,
		Hub:       hub,
		Raster:    raster,
		Session:   &session.Data{},
		Locale:    "en",
	}
	env.Editor = NewEditor(Deps{
		Templates: templates,
		Sessions:  session.NewMemoryStore(false),
		Catalog:   catalog,
		Exporter:  export.New(raster, nil),
		Hub:       hub,
		Share:     share.NewSender(shareURL, 5*time.Second),
		MaxUpload: 1 << 20,
	})
	return env
}

// screenshot encodes a blank PNG of the given size.
func screenshot(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// params is a set of chi URL parameters.
type params map[string]string

// do runs handler with the env's session and locale in the context.
func (e *testEnv) do(t *testing.T, handler http.HandlerFunc, method, target string, body any, p params) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range p {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithSession(ctx, e.Session, e.Catalog.Get(e.Locale))

	rr := httptest.NewRecorder()
	handler(rr, req.WithContext(ctx))
	return rr
}

// seed stores a template built from tree and returns it.
func (e *testEnv) seed(t *testing.T, name string, tree ...models.Component) *models.Template {
	t.Helper()
	tpl := &models.Template{ID: "tpl-" + strings.ToLower(strings.ReplaceAll(name, " ", "-")), Name: name, Components: tree}
	if tpl.Components == nil {
		tpl.Components = []models.Component{}
	}
	if err := e.Templates.Save(context.Background(), tpl); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tpl
}

// stored reads a template back from the store.
func (e *testEnv) stored(t *testing.T, id string) *models.Template {
	t.Helper()
	tpl, err := e.Templates.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return tpl
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func node(id string, kind models.Kind, children ...models.Component) models.Component {
	c := models.Component{ID: id, Kind: kind, Content: id, Styles: models.Styles{}, Children: children}
	if kind == models.KindGrid {
		cols := 2
		c.GridColumns = &cols
	}
	return c
}

func ptr[T any](v T) *T { return &v }
