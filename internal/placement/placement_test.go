// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package placement

import (
	"testing"

	"mailforge/internal/document"
	"mailforge/internal/models"
	"mailforge/internal/registry"
)

func leaf(id string, kind models.Kind) models.Component {
	return models.Component{ID: id, Kind: kind, Content: id, Styles: models.Styles{}}
}

func container(id string, kind models.Kind, children ...models.Component) models.Component {
	c := leaf(id, kind)
	c.Children = children
	if kind == models.KindGrid {
		cols := 2
		c.GridColumns = &cols
	}
	return c
}

func at(r Ref, i int) *Endpoint { return &Endpoint{Ref: r, Index: i} }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		g    Gesture
		want Action
	}{
		{"palette to root", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Root(), 0)}, InsertRoot},
		{"palette to container", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Container("g"), 0)}, InsertContainer},
		{"root to root", Gesture{Source: Endpoint{Ref: Root()}, Destination: at(Root(), 1)}, ReorderRoot},
		{"same container", Gesture{Source: Endpoint{Ref: Container("g")}, Destination: at(Container("g"), 1)}, ReorderContainer},
		{"cross container", Gesture{Source: Endpoint{Ref: Container("g")}, Destination: at(Container("c"), 0)}, NoOp},
		{"container to root", Gesture{Source: Endpoint{Ref: Container("g")}, Destination: at(Root(), 0)}, NoOp},
		{"root to container", Gesture{Source: Endpoint{Ref: Root()}, Destination: at(Container("g"), 0)}, NoOp},
		{"to palette", Gesture{Source: Endpoint{Ref: Root()}, Destination: at(Palette(), 0)}, NoOp},
		{"palette to palette", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Palette(), 2)}, NoOp},
		{"no destination", Gesture{Source: Endpoint{Ref: Palette()}}, NoOp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.g); got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

// Empty template, drag a header from the palette to the top of the canvas.
func TestApplyPaletteToEmptyRoot(t *testing.T) {
	res := Apply(nil, Gesture{
		Source:      Endpoint{Ref: Palette()},
		Destination: at(Root(), 0),
		Kind:        models.KindHeader,
	})
	if !res.Applied || res.Action != InsertRoot {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Tree) != 1 {
		t.Fatalf("root has %d nodes, want 1", len(res.Tree))
	}
	got := res.Tree[0]
	if got.Kind != models.KindHeader {
		t.Errorf("kind = %q, want header", got.Kind)
	}
	if got.Content != registry.MustLookup(models.KindHeader).DefaultContent {
		t.Errorf("content = %q", got.Content)
	}
	if got.ID == "" || got.ID != res.Inserted {
		t.Errorf("inserted id = %q, node id = %q", res.Inserted, got.ID)
	}
}

// A two-column empty grid receives a button from the palette.
func TestApplyPaletteIntoGrid(t *testing.T) {
	tree := []models.Component{container("g", models.KindGrid)}
	res := Apply(tree, Gesture{
		Source:      Endpoint{Ref: Palette()},
		Destination: at(Container("g"), 0),
		Kind:        models.KindButton,
	})
	if !res.Applied {
		t.Fatalf("not applied: %s", res.Reason)
	}
	g := res.Tree[0]
	if len(g.Children) != 1 || g.Children[0].Kind != models.KindButton {
		t.Fatalf("grid children = %+v", g.Children)
	}
	if g.Columns(0) != 2 {
		t.Errorf("grid columns = %d, want 2", g.Columns(0))
	}
	if len(tree[0].Children) != 0 {
		t.Error("input tree was mutated")
	}
}

func TestApplyPaletteIntoNestedCard(t *testing.T) {
	tree := []models.Component{
		container("g", models.KindGrid, container("c", models.KindCard, leaf("t", models.KindText))),
	}
	res := Apply(tree, Gesture{
		Source:      Endpoint{Ref: Palette()},
		Destination: at(Container("c"), 1),
		Kind:        models.KindDivider,
	})
	if !res.Applied {
		t.Fatalf("not applied: %s", res.Reason)
	}
	card := res.Tree[0].Children[0]
	if len(card.Children) != 2 || card.Children[1].Kind != models.KindDivider {
		t.Errorf("card children = %+v", card.Children)
	}
}

// Dragging between two different containers is not supported.
func TestApplyCrossContainerIsNoOp(t *testing.T) {
	tree := []models.Component{
		container("a", models.KindGrid, leaf("x", models.KindText)),
		container("b", models.KindCard),
	}
	res := Apply(tree, Gesture{
		Source:      Endpoint{Ref: Container("a"), Index: 0},
		Destination: at(Container("b"), 0),
	})
	if res.Applied || res.Action != NoOp {
		t.Fatalf("result = %+v", res)
	}
	if !document.Equal(res.Tree, tree) {
		t.Error("tree changed on a cross-container drag")
	}
	if res.Reason == "" {
		t.Error("no-op should carry a reason")
	}
}

func TestApplyReorders(t *testing.T) {
	tree := []models.Component{
		leaf("A", models.KindText),
		leaf("B", models.KindText),
		container("g", models.KindGrid, leaf("x", models.KindText), leaf("y", models.KindImage)),
	}

	res := Apply(tree, Gesture{Source: Endpoint{Ref: Root(), Index: 0}, Destination: at(Root(), 2)})
	if !res.Applied {
		t.Fatalf("root reorder: %s", res.Reason)
	}
	if got := [3]string{res.Tree[0].ID, res.Tree[1].ID, res.Tree[2].ID}; got != [3]string{"B", "g", "A"} {
		t.Errorf("root order = %v, want [B g A]", got)
	}

	res = Apply(tree, Gesture{Source: Endpoint{Ref: Container("g"), Index: 1}, Destination: at(Container("g"), 0)})
	if !res.Applied || res.Action != ReorderContainer {
		t.Fatalf("container reorder: %+v", res)
	}
	g := res.Tree[2]
	if g.Children[0].ID != "y" || g.Children[1].ID != "x" {
		t.Errorf("grid order = [%s %s], want [y x]", g.Children[0].ID, g.Children[1].ID)
	}
}

func TestApplyFailuresAreNoOps(t *testing.T) {
	tree := []models.Component{
		leaf("t", models.KindText),
		container("g", models.KindGrid, leaf("x", models.KindText)),
	}
	tests := []struct {
		name string
		g    Gesture
	}{
		{"container deleted mid-drag", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Container("gone"), 0), Kind: models.KindText}},
		{"target is not a container", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Container("t"), 0), Kind: models.KindText}},
		{"insert past end", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Root(), 9), Kind: models.KindText}},
		{"unknown kind", Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Root(), 0), Kind: "marquee"}},
		{"reorder out of range", Gesture{Source: Endpoint{Ref: Root(), Index: 5}, Destination: at(Root(), 0)}},
		{"reorder in vanished container", Gesture{Source: Endpoint{Ref: Container("gone")}, Destination: at(Container("gone"), 0)}},
		{"cancelled", Gesture{Source: Endpoint{Ref: Root(), Index: 0}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Apply(tree, tc.g)
			if res.Applied {
				t.Fatalf("gesture should not apply: %+v", res)
			}
			if !document.Equal(res.Tree, tree) {
				t.Error("tree changed")
			}
			if res.Reason == "" {
				t.Error("missing reason")
			}
		})
	}
}

func TestApplyAppendAtLength(t *testing.T) {
	tree := []models.Component{leaf("a", models.KindText), leaf("b", models.KindText)}
	res := Apply(tree, Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Root(), 2), Kind: models.KindSpacer})
	if !res.Applied || len(res.Tree) != 3 || res.Tree[2].Kind != models.KindSpacer {
		t.Fatalf("append failed: %+v", res)
	}
}

func TestRepeatedInsertsGetDistinctIDs(t *testing.T) {
	var tree []models.Component
	for range 200 {
		res := Apply(tree, Gesture{Source: Endpoint{Ref: Palette()}, Destination: at(Root(), 0), Kind: models.KindText})
		tree = res.Tree
	}
	if err := document.Validate(tree); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
