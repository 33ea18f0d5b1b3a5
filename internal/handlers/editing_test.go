// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"mailforge/internal/document"
	"mailforge/internal/editor"
	"mailforge/internal/models"
	"mailforge/internal/registry"
)

func TestPalette(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name      string
		locale    string
		query     string
		wantKinds []models.Kind
		wantEmpty bool
	}{
		{"all kinds", "en", "", models.Kinds, false},
		{"layout category", "en", "?category=layout", []models.Kind{models.KindGrid, models.KindCard, models.KindDivider, models.KindSpacer}, false},
		{"search ignores case", "en", "?q=BUTTON", []models.Kind{models.KindButton}, false},
		{"search localized", "nl", "?q=titel", []models.Kind{models.KindHeader}, false},
		{"no match", "en", "?q=carousel", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env.Locale = tc.locale
			rr := env.do(t, env.Editor.Palette, http.MethodGet, "/api/palette"+tc.query, nil, nil)
			wantStatus(t, rr, http.StatusOK)

			resp := decode[paletteResponse](t, rr)
			if len(resp.Items) != len(tc.wantKinds) {
				t.Fatalf("got %d items, want %d: %+v", len(resp.Items), len(tc.wantKinds), resp.Items)
			}
			for i, k := range tc.wantKinds {
				if resp.Items[i].Kind != k {
					t.Errorf("item %d = %s, want %s", i, resp.Items[i].Kind, k)
				}
			}
			if (resp.Empty != "") != tc.wantEmpty {
				t.Errorf("empty message = %q", resp.Empty)
			}
			if resp.DroppableID != "component-library" {
				t.Errorf("droppableId = %q", resp.DroppableID)
			}
			if len(resp.Categories) != len(registry.Categories())+1 {
				t.Errorf("got %d categories", len(resp.Categories))
			}
		})
	}
}

func dropJSON(kind, from string, fromIdx int, to string, toIdx int) map[string]any {
	return map[string]any{
		"draggableId": kind,
		"source":      map[string]any{"droppableId": from, "index": fromIdx},
		"destination": map[string]any{"droppableId": to, "index": toIdx},
	}
}

// A header dragged onto an empty canvas, then a button into a grid.
func TestGestureInsertsFromPalette(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Canvas")

	rr := env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("header", "component-library", 0, "template-canvas", 0), params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	resp := decode[gestureResponse](t, rr)
	if !resp.Applied || resp.Action != "insert-root" || resp.Inserted == "" {
		t.Fatalf("response = %+v", resp)
	}
	stored := env.stored(t, tpl.ID)
	if len(stored.Components) != 1 || stored.Components[0].Kind != models.KindHeader {
		t.Fatalf("stored tree = %+v", stored.Components)
	}
	if stored.Components[0].Content != registry.MustLookup(models.KindHeader).DefaultContent {
		t.Errorf("content = %q", stored.Components[0].Content)
	}

	rr = env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("grid", "component-library", 6, "template-canvas", 1), params{"id": tpl.ID})
	gridID := decode[gestureResponse](t, rr).Inserted

	rr = env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("button", "component-library", 5, "grid-"+gridID, 0), params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	if resp := decode[gestureResponse](t, rr); !resp.Applied || resp.Action != "insert-container" {
		t.Fatalf("grid insert = %+v", resp)
	}
	grid, _ := document.FindByID(env.stored(t, tpl.ID).Components, gridID)
	if len(grid.Children) != 1 || grid.Children[0].Kind != models.KindButton {
		t.Errorf("grid children = %+v", grid.Children)
	}
}

func TestGestureReorderAndNoOps(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Reorder",
		node("A", models.KindText),
		node("B", models.KindText),
		node("g", models.KindGrid, node("x", models.KindText)),
		node("c", models.KindCard),
	)
	rr := env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("A", "template-canvas", 0, "template-canvas", 2), params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	after := env.stored(t, tpl.ID)
	if ids := []string{after.Components[0].ID, after.Components[1].ID, after.Components[2].ID}; ids[0] != "B" || ids[1] != "g" || ids[2] != "A" {
		t.Errorf("root order = %v, want [B g A ...]", ids)
	}

	noops := map[string]map[string]any{
		"cross container":    dropJSON("x", "grid-g", 0, "card-c", 0),
		"container to root":  dropJSON("x", "grid-g", 0, "template-canvas", 0),
		"vanished container": dropJSON("text", "component-library", 0, "grid-gone", 0),
		"cancelled": {
			"draggableId": "A",
			"source":      map[string]any{"droppableId": "template-canvas", "index": 0},
			"destination": nil,
		},
	}
	for name, body := range noops {
		t.Run(name, func(t *testing.T) {
			prev := env.stored(t, tpl.ID)
			rr := env.do(t, env.Editor.Gesture, http.MethodPost, "/", body, params{"id": tpl.ID})
			wantStatus(t, rr, http.StatusOK)
			if resp := decode[gestureResponse](t, rr); resp.Applied {
				t.Errorf("gesture applied: %+v", resp)
			}
			cur := env.stored(t, tpl.ID)
			if !document.Equal(cur.Components, prev.Components) || !cur.UpdatedAt.Equal(prev.UpdatedAt) {
				t.Error("no-op gesture changed the stored template")
			}
		})
	}
}

func TestGestureBadRequests(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Bad")

	rr := env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("x", "sidebar", 0, "template-canvas", 0), params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, env.Editor.Gesture, http.MethodPost, "/", "", params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, env.Editor.Gesture, http.MethodPost, "/", dropJSON("text", "component-library", 0, "template-canvas", 0), params{"id": "missing"})
	wantStatus(t, rr, http.StatusNotFound)
}

func TestSelectAndPanel(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Select", node("h", models.KindHeader), node("g", models.KindGrid))

	rr := env.do(t, env.Editor.Select, http.MethodPut, "/", selectRequest{ID: "g"}, params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	state := decode[editorState](t, rr)
	if state.Selected != "g" || !state.Panel.ShowGrid || state.Panel.Columns != 2 {
		t.Errorf("state = %+v", state)
	}
	if env.Session.Selected(tpl.ID) != "g" {
		t.Error("selection not stored in the session")
	}

	rr = env.do(t, env.Editor.Panel, http.MethodGet, "/", nil, params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	if p := decode[editor.Panel](t, rr); p.Empty || p.Title != "Grid" {
		t.Errorf("panel = %+v", p)
	}

	// A stale id is accepted and resolves to the empty panel.
	rr = env.do(t, env.Editor.Select, http.MethodPut, "/", selectRequest{ID: "ghost"}, params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	if p := decode[editorState](t, rr).Panel; !p.Empty || p.Message == "" {
		t.Errorf("panel = %+v", p)
	}

	rr = env.do(t, env.Editor.Select, http.MethodPut, "/", selectRequest{}, params{"id": tpl.ID})
	wantStatus(t, rr, http.StatusOK)
	if env.Session.Selected(tpl.ID) != "" {
		t.Error("empty id should clear the selection")
	}
}

func TestComponentUpdate(t *testing.T) {
	env := newTestEnv(t, "")
	btn := node("b", models.KindButton)
	btn.Styles = models.Styles{"color": "#000", "zIndex": "2"}
	tpl := env.seed(t, "Edit", node("t", models.KindText), btn, node("g", models.KindGrid))

	tests := []struct {
		name   string
		target string
		patch  string
		want   int
	}{
		{"content", "t", `{"content":"Hello"}`, http.StatusOK},
		{"link on button", "b", `{"link":"https://example.com"}`, http.StatusOK},
		{"editable style", "b", `{"styles":{"color":"#fff"}}`, http.StatusOK},
		{"existing non-editable style", "b", `{"styles":{"zIndex":"3"}}`, http.StatusOK},
		{"grid columns", "g", `{"gridColumns":3}`, http.StatusOK},
		{"link on text", "t", `{"link":"https://example.com"}`, http.StatusUnprocessableEntity},
		{"columns on button", "b", `{"gridColumns":2}`, http.StatusUnprocessableEntity},
		{"unknown style", "t", `{"styles":{"float":"left"}}`, http.StatusUnprocessableEntity},
		{"missing node", "nope", `{"content":"x"}`, http.StatusNotFound},
		{"empty patch", "t", `{}`, http.StatusBadRequest},
		{"unknown field", "t", `{"colour":"red"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, env.Editor.ComponentUpdate, http.MethodPatch, "/", tc.patch, params{"id": tpl.ID, "componentID": tc.target})
			wantStatus(t, rr, tc.want)
		})
	}

	tree := env.stored(t, tpl.ID).Components
	text, _ := document.FindByID(tree, "t")
	button, _ := document.FindByID(tree, "b")
	grid, _ := document.FindByID(tree, "g")
	if text.Content != "Hello" || text.Link != nil {
		t.Errorf("text = %+v", text)
	}
	if button.LinkValue() != "https://example.com" || button.Styles["color"] != "#fff" || button.Styles["zIndex"] != "3" {
		t.Errorf("button = %+v", button)
	}
	if grid.Columns(0) != 3 {
		t.Errorf("grid columns = %d", grid.Columns(0))
	}
	if env.Session.Selected(tpl.ID) != "g" {
		t.Errorf("last edited node should be selected, got %q", env.Session.Selected(tpl.ID))
	}
}

func TestComponentUpdateClearsStyleAndClampsColumns(t *testing.T) {
	env := newTestEnv(t, "")
	g := node("g", models.KindGrid)
	g.Styles = models.Styles{"padding": "20px"}
	tpl := env.seed(t, "Clamp", g)

	rr := env.do(t, env.Editor.ComponentUpdate, http.MethodPatch, "/", `{"gridColumns":9,"styles":{"padding":""}}`, params{"id": tpl.ID, "componentID": "g"})
	wantStatus(t, rr, http.StatusOK)

	got, _ := document.FindByID(env.stored(t, tpl.ID).Components, "g")
	if got.Columns(0) != 6 {
		t.Errorf("columns = %d, want clamped to 6", got.Columns(0))
	}
	if _, ok := got.Styles["padding"]; ok {
		t.Error("empty style value should remove the key")
	}
}

func TestComponentDelete(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Delete", node("g", models.KindGrid, node("x", models.KindText)), node("t", models.KindText))
	env.Session.SetSelected(tpl.ID, "g")

	rr := env.do(t, env.Editor.ComponentDelete, http.MethodDelete, "/", nil, params{"id": tpl.ID, "componentID": "g"})
	wantStatus(t, rr, http.StatusOK)

	state := decode[editorState](t, rr)
	if state.Selected != "" || !state.Panel.Empty {
		t.Errorf("selection survived deletion: %+v", state)
	}
	tree := env.stored(t, tpl.ID).Components
	if _, ok := document.FindByID(tree, "x"); ok {
		t.Error("descendant survived deletion")
	}
	if document.Count(tree) != 1 {
		t.Errorf("tree has %d nodes, want 1", document.Count(tree))
	}

	rr = env.do(t, env.Editor.ComponentDelete, http.MethodDelete, "/", nil, params{"id": tpl.ID, "componentID": "g"})
	wantStatus(t, rr, http.StatusOK)
	if document.Count(env.stored(t, tpl.ID).Components) != 1 {
		t.Error("deleting a missing node changed the tree")
	}
}

func TestComponentDeleteClearsStaleSelection(t *testing.T) {
	env := newTestEnv(t, "")
	tpl := env.seed(t, "Stale", node("t", models.KindText))
	env.Session.SetSelected(tpl.ID, "gone")

	rr := env.do(t, env.Editor.ComponentDelete, http.MethodDelete, "/", nil, params{"id": tpl.ID, "componentID": "gone"})
	wantStatus(t, rr, http.StatusOK)

	state := decode[editorState](t, rr)
	if state.Selected != "" || !state.Panel.Empty {
		t.Errorf("stale selection survived: %+v", state)
	}
	if got := env.Session.Selected(tpl.ID); got != "" {
		t.Errorf("session selection = %q, want cleared", got)
	}
	if document.Count(env.stored(t, tpl.ID).Components) != 1 {
		t.Error("tree changed")
	}
}

func TestSetLocale(t *testing.T) {
	env := newTestEnv(t, "")

	rr := env.do(t, env.Editor.SetLocale, http.MethodPut, "/api/locale", localeRequest{Locale: "nl"}, nil)
	wantStatus(t, rr, http.StatusOK)
	if env.Session.Locale != "nl" {
		t.Errorf("session locale = %q", env.Session.Locale)
	}
	resp := decode[localeResponse](t, rr)
	if len(resp.Available) != 2 {
		t.Errorf("available = %v", resp.Available)
	}

	rr = env.do(t, env.Editor.SetLocale, http.MethodPut, "/api/locale", localeRequest{Locale: "fr"}, nil)
	wantStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, env.Editor.Locale, http.MethodGet, "/api/locale", nil, nil)
	wantStatus(t, rr, http.StatusOK)
	if got := decode[localeResponse](t, rr).Locale; got != "en" {
		t.Errorf("locale = %q, want the context locale", got)
	}
}

func TestPaletteReportsFeatures(t *testing.T) {
	env := newTestEnv(t, "http://hooks.example.com/share")

	rr := env.do(t, env.Editor.Palette, http.MethodGet, "/api/palette", nil, nil)
	wantStatus(t, rr, http.StatusOK)
	got := decode[paletteResponse](t, rr).Features
	want := features{PDF: true, Share: true}
	if got != want {
		t.Errorf("features = %+v, want %+v", got, want)
	}
}

func TestResetSession(t *testing.T) {
	env := newTestEnv(t, "")
	rr := env.do(t, env.Editor.ResetSession, http.MethodDelete, "/api/session", nil, nil)
	wantStatus(t, rr, http.StatusNoContent)
}
