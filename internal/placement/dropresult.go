// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package placement

import (
	"fmt"

	"mailforge/internal/models"
)

// DraggableLocation is a droppable id plus an index, as reported by the
// browser drag library.
type DraggableLocation struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// DropResult is the payload the browser sends when a drag ends.
type DropResult struct {
	DraggableID string             `json:"draggableId"`
	Source      DraggableLocation  `json:"source"`
	Destination *DraggableLocation `json:"destination"`
	Reason      string             `json:"reason,omitempty"`
}

// Gesture decodes the drop result. A cancelled drop or an unknown
// destination yields a gesture with no destination. An unknown source is
// an error.
func (d DropResult) Gesture() (Gesture, error) {
	src, err := ParseRef(d.Source.DroppableID)
	if err != nil {
		return Gesture{}, fmt.Errorf("source: %w", err)
	}
	g := Gesture{Source: Endpoint{Ref: src, Index: d.Source.Index}}
	if src.Where == AtPalette {
		g.Kind = models.Kind(d.DraggableID)
	}
	if d.Destination == nil || d.Reason == "CANCEL" {
		return g, nil
	}
	dst, err := ParseRef(d.Destination.DroppableID)
	if err != nil {
		return g, nil
	}
	g.Destination = &Endpoint{Ref: dst, Index: d.Destination.Index}
	return g, nil
}
