// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package placement

import (
	"fmt"
	"strings"

	"mailforge/internal/models"
)

// Droppable ids used by the browser drag library.
const (
	PaletteDroppable = "component-library"
	RootDroppable    = "template-canvas"
)

// Where says which kind of place a Ref points at.
type Where int

const (
	AtPalette Where = iota
	AtRoot
	AtContainer
)

func (w Where) String() string {
	switch w {
	case AtPalette:
		return "palette"
	case AtRoot:
		return "root"
	case AtContainer:
		return "container"
	}
	return fmt.Sprintf("Where(%d)", int(w))
}

// Ref identifies one end of a gesture: the palette, the template root, or
// the container node with the given id.
type Ref struct {
	Where Where
	ID    string
}

// Palette refers to the component palette.
func Palette() Ref { return Ref{Where: AtPalette} }

// Root refers to the template's root sequence.
func Root() Ref { return Ref{Where: AtRoot} }

// Container refers to the grid or card with the given id.
func Container(id string) Ref { return Ref{Where: AtContainer, ID: id} }

func (r Ref) String() string {
	if r.Where == AtContainer {
		return "container(" + r.ID + ")"
	}
	return r.Where.String()
}

// ParseRef decodes a droppable id.
func ParseRef(droppableID string) (Ref, error) {
	switch droppableID {
	case PaletteDroppable:
		return Palette(), nil
	case RootDroppable:
		return Root(), nil
	}
	for _, k := range []models.Kind{models.KindGrid, models.KindCard} {
		if id, ok := strings.CutPrefix(droppableID, string(k)+"-"); ok && id != "" {
			return Container(id), nil
		}
	}
	return Ref{}, fmt.Errorf("unknown droppable %q", droppableID)
}

// DroppableID returns the droppable id a container node is rendered with.
func DroppableID(c models.Component) string {
	return string(c.Kind) + "-" + c.ID
}
