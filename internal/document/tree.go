// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package document implements the template component tree. Every operation
// is pure: it returns a new root slice and leaves its input untouched, while
// subtrees the operation does not touch are shared with the input.
package document

import (
	"slices"

	"mailforge/internal/models"
)

// Path addresses a container by child indices from the root. The empty path
// is the template root.
type Path []int

// Root is the path of the template's root sequence.
var Root = Path{}

// Patch is a partial update to a node. Nil fields are left alone.
type Patch struct {
	Content     *string       `json:"content,omitempty"`
	Link        *string       `json:"link,omitempty"`
	GridColumns *int          `json:"gridColumns,omitempty"`
	Styles      models.Styles `json:"styles,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Link == nil && p.GridColumns == nil && len(p.Styles) == 0
}

// InsertAt inserts node at index within the container addressed by path.
func InsertAt(tree []models.Component, path Path, index int, node models.Component) ([]models.Component, error) {
	return updateContainer(tree, path, func(children []models.Component) ([]models.Component, error) {
		if index < 0 || index > len(children) {
			return nil, &IndexOutOfRangeError{Index: index, Len: len(children)}
		}
		out := make([]models.Component, 0, len(children)+1)
		out = append(out, children[:index]...)
		out = append(out, node)
		return append(out, children[index:]...), nil
	})
}

// MoveWithin moves the node at from to position to inside one container.
// The node keeps its id. to is the position after removal, so moving the
// first of [A B C] to 2 yields [B C A]. A to equal to the container's
// length appends.
func MoveWithin(tree []models.Component, path Path, from, to int) ([]models.Component, error) {
	var unchanged bool
	out, err := updateContainer(tree, path, func(children []models.Component) ([]models.Component, error) {
		if from < 0 || from >= len(children) {
			return nil, &IndexOutOfRangeError{Index: from, Len: len(children)}
		}
		if to < 0 || to > len(children) {
			return nil, &IndexOutOfRangeError{Index: to, Len: len(children)}
		}
		to = min(to, len(children)-1)
		if from == to {
			unchanged = true
			return children, nil
		}
		moved := children[from]
		out := slices.Delete(slices.Clone(children), from, from+1)
		return slices.Insert(out, to, moved), nil
	})
	if err != nil {
		return nil, err
	}
	if unchanged {
		return tree, nil
	}
	return out, nil
}

// updateContainer rebuilds the spine from the root down to the container at
// path, replacing that container's children with fn's result.
func updateContainer(nodes []models.Component, path Path, fn func([]models.Component) ([]models.Component, error)) ([]models.Component, error) {
	out, err := descend(nodes, path, fn)
	if ic, ok := err.(*InvalidContainerError); ok {
		ic.Path = slices.Clone(path)
	}
	return out, err
}

func descend(nodes []models.Component, path Path, fn func([]models.Component) ([]models.Component, error)) ([]models.Component, error) {
	if len(path) == 0 {
		return fn(nodes)
	}
	i := path[0]
	if i < 0 || i >= len(nodes) {
		return nil, &InvalidContainerError{}
	}
	node := nodes[i]
	if !node.Kind.IsContainer() {
		return nil, &InvalidContainerError{Kind: node.Kind}
	}
	children, err := descend(node.Children, path[1:], fn)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(nodes)
	node.Children = children
	out[i] = node
	return out, nil
}

// FindByID searches the tree depth-first.
func FindByID(tree []models.Component, id string) (models.Component, bool) {
	for _, c := range tree {
		if c.ID == id {
			return c, true
		}
		if found, ok := FindByID(c.Children, id); ok {
			return found, true
		}
	}
	return models.Component{}, false
}

// PathOf returns the index path of the node with the given id. Used to turn
// a container id into the path InsertAt and MoveWithin expect.
func PathOf(tree []models.Component, id string) (Path, bool) {
	for i, c := range tree {
		if c.ID == id {
			return Path{i}, true
		}
		if sub, ok := PathOf(c.Children, id); ok {
			return append(Path{i}, sub...), true
		}
	}
	return nil, false
}

// UpdateByID merges patch into the node with the given id. Styles merge key
// by key, grid columns are clamped to [1, 6] and a textAlign outside
// left/center/right is ignored. The tree comes back unchanged with false
// when no node has that id.
func UpdateByID(tree []models.Component, id string, patch Patch) ([]models.Component, bool) {
	return mapByID(tree, id, func(c models.Component) models.Component {
		return applyPatch(c, patch)
	})
}

func applyPatch(c models.Component, p Patch) models.Component {
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.Link != nil {
		if *p.Link == "" {
			c.Link = nil
		} else {
			link := *p.Link
			c.Link = &link
		}
	}
	if p.GridColumns != nil {
		cols := models.ClampColumns(*p.GridColumns)
		c.GridColumns = &cols
	}
	if len(p.Styles) > 0 {
		styles := p.Styles
		if v, ok := styles[models.StyleTextAlign]; ok && v != "" && !models.ValidTextAlign(v) {
			styles = styles.Clone()
			delete(styles, models.StyleTextAlign)
		}
		c.Styles = c.Styles.Merge(styles)
	}
	return c
}

func mapByID(nodes []models.Component, id string, fn func(models.Component) models.Component) ([]models.Component, bool) {
	for i, c := range nodes {
		if c.ID == id {
			out := slices.Clone(nodes)
			out[i] = fn(c)
			return out, true
		}
		if children, ok := mapByID(c.Children, id, fn); ok {
			out := slices.Clone(nodes)
			c.Children = children
			out[i] = c
			return out, true
		}
	}
	return nodes, false
}

// DeleteByID removes the node with the given id, and its descendants, from
// whichever container holds it.
func DeleteByID(tree []models.Component, id string) ([]models.Component, bool) {
	for i, c := range tree {
		if c.ID == id {
			return slices.Delete(slices.Clone(tree), i, i+1), true
		}
		if children, ok := DeleteByID(c.Children, id); ok {
			out := slices.Clone(tree)
			c.Children = children
			out[i] = c
			return out, true
		}
	}
	return tree, false
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips that node's children.
func Walk(tree []models.Component, fn func(c models.Component, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []models.Component, depth int, fn func(models.Component, int) bool) {
	for _, c := range nodes {
		if fn(c, depth) {
			walk(c.Children, depth+1, fn)
		}
	}
}

// IDs returns every node id in depth-first order.
func IDs(tree []models.Component) []string {
	var ids []string
	Walk(tree, func(c models.Component, _ int) bool {
		ids = append(ids, c.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree.
func Count(tree []models.Component) int {
	n := 0
	Walk(tree, func(models.Component, int) bool {
		n++
		return true
	})
	return n
}
