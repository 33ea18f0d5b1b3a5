// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package placement turns a finished drag-and-drop gesture into a single
// tree mutation. Gestures it does not support leave the tree untouched.
package placement

import (
	"fmt"
	"log/slog"

	"mailforge/internal/document"
	"mailforge/internal/models"
)

// Endpoint is one end of a gesture: a place and a position within it.
type Endpoint struct {
	Ref   Ref
	Index int
}

// Gesture is one complete drag from pick-up to drop. Destination is nil
// when the drag was cancelled or dropped outside every target. Kind names
// the dragged kind for palette drags.
type Gesture struct {
	Source      Endpoint
	Destination *Endpoint
	Kind        models.Kind
}

// Action is the mutation a gesture resolves to.
type Action int

const (
	NoOp Action = iota
	InsertRoot
	InsertContainer
	ReorderRoot
	ReorderContainer
)

func (a Action) String() string {
	switch a {
	case NoOp:
		return "noop"
	case InsertRoot:
		return "insert-root"
	case InsertContainer:
		return "insert-container"
	case ReorderRoot:
		return "reorder-root"
	case ReorderContainer:
		return "reorder-container"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Classify maps a gesture to an action. Rules are checked in order and the
// first match wins; anything unmatched, including moves between different
// containers, is NoOp.
func Classify(g Gesture) Action {
	if g.Destination == nil {
		return NoOp
	}
	src, dst := g.Source.Ref, g.Destination.Ref
	switch {
	case src.Where == AtPalette && dst.Where == AtRoot:
		return InsertRoot
	case src.Where == AtPalette && dst.Where == AtContainer:
		return InsertContainer
	case src.Where == AtRoot && dst.Where == AtRoot:
		return ReorderRoot
	case src.Where == AtContainer && dst.Where == AtContainer && src.ID == dst.ID:
		return ReorderContainer
	}
	return NoOp
}

// Result reports what Apply did. Tree is always usable: on any failure it
// is the input tree.
type Result struct {
	Tree     []models.Component
	Action   Action
	Applied  bool
	Inserted string // id of the node created by an insert
	Reason   string // why the gesture was dropped, when Applied is false
}

// Apply classifies g and performs the mutation. Every error from the tree
// model is absorbed here and reported as a no-op.
func Apply(tree []models.Component, g Gesture) Result {
	action := Classify(g)
	res, err := apply(tree, g, action)
	if err != nil {
		slog.Warn("drag gesture ignored",
			"action", action.String(),
			"source", g.Source.Ref.String(),
			"kind", string(g.Kind),
			"error", err,
		)
		return Result{Tree: tree, Action: action, Reason: err.Error()}
	}
	return res
}

func apply(tree []models.Component, g Gesture, action Action) (Result, error) {
	switch action {
	case InsertRoot, InsertContainer:
		path := document.Root
		if action == InsertContainer {
			p, ok := document.PathOf(tree, g.Destination.Ref.ID)
			if !ok {
				return Result{}, fmt.Errorf("container %q not found", g.Destination.Ref.ID)
			}
			path = p
		}
		node, err := document.New(g.Kind)
		if err != nil {
			return Result{}, fmt.Errorf("build node: %w", err)
		}
		out, err := document.InsertAt(tree, path, g.Destination.Index, node)
		if err != nil {
			return Result{}, fmt.Errorf("insert %s: %w", g.Kind, err)
		}
		return Result{Tree: out, Action: action, Applied: true, Inserted: node.ID}, nil

	case ReorderRoot, ReorderContainer:
		path := document.Root
		if action == ReorderContainer {
			p, ok := document.PathOf(tree, g.Destination.Ref.ID)
			if !ok {
				return Result{}, fmt.Errorf("container %q not found", g.Destination.Ref.ID)
			}
			path = p
		}
		out, err := document.MoveWithin(tree, path, g.Source.Index, g.Destination.Index)
		if err != nil {
			return Result{}, fmt.Errorf("reorder: %w", err)
		}
		return Result{Tree: out, Action: action, Applied: true}, nil
	}

	if g.Destination == nil {
		return Result{}, fmt.Errorf("no destination")
	}
	return Result{}, fmt.Errorf("unsupported move from %s to %s", g.Source.Ref, g.Destination.Ref)
}
