// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor coordinates editing of one open template: the current
// selection, drag gestures, property edits and deletions.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"mailforge/internal/document"
	"mailforge/internal/locale"
	"mailforge/internal/models"
	"mailforge/internal/placement"
	"mailforge/internal/registry"
)

var (
	// ErrNoSelection is returned by selection-scoped edits when nothing is selected.
	ErrNoSelection = errors.New("no component selected")
	// ErrNodeNotFound is returned when an edit targets an id not in the tree.
	ErrNodeNotFound = errors.New("component not found")
)

// UnsupportedFieldError is returned when an edit touches a field the
// node's kind does not expose.
type UnsupportedFieldError struct {
	Kind  models.Kind
	Field string
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("%s components do not support %s", e.Kind, e.Field)
}

// Session is one template open in the editor.
type Session struct {
	Template  *models.Template
	Selection Selection
	Labels    locale.Labels
}

// NewSession opens tpl for editing with the given labels.
func NewSession(tpl *models.Template, labels locale.Labels) *Session {
	return &Session{Template: tpl, Labels: labels}
}

// ApplyGesture runs a drag gesture against the tree. Unsupported or failed
// gestures leave the tree as it was.
func (s *Session) ApplyGesture(g placement.Gesture) placement.Result {
	res := placement.Apply(s.Template.Components, g)
	s.Template.Components = res.Tree
	return res
}

// Select sets the selection.
func (s *Session) Select(id string) {
	s.Selection.Select(id)
}

// SelectedNode resolves the selection against the current tree.
func (s *Session) SelectedNode() (models.Component, bool) {
	id, ok := s.Selection.Selected()
	if !ok {
		return models.Component{}, false
	}
	return document.FindByID(s.Template.Components, id)
}

// UpdateSelected applies patch to the selected node.
func (s *Session) UpdateSelected(p document.Patch) error {
	id, ok := s.Selection.Selected()
	if !ok {
		return ErrNoSelection
	}
	return s.Update(id, p)
}

// Update applies patch to the node with the given id after checking the
// node's kind supports every field in it.
func (s *Session) Update(id string, p document.Patch) error {
	node, ok := document.FindByID(s.Template.Components, id)
	if !ok {
		return ErrNodeNotFound
	}
	schema, err := registry.Lookup(node.Kind)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if err := checkPatch(schema, node, p); err != nil {
		return err
	}
	tree, ok := document.UpdateByID(s.Template.Components, id, p)
	if !ok {
		slog.Warn("update target vanished", "template_id", s.Template.ID, "component_id", id)
		return ErrNodeNotFound
	}
	s.Template.Components = tree
	return nil
}

// checkPatch matches each patched field against the kind's capabilities.
// A style key outside the editable set is accepted only if the node
// already carries it.
func checkPatch(schema registry.Schema, node models.Component, p document.Patch) error {
	switch {
	case p.Content != nil && !schema.HasContent:
		return &UnsupportedFieldError{Kind: schema.Kind, Field: "content"}
	case p.Link != nil && !schema.HasLink:
		return &UnsupportedFieldError{Kind: schema.Kind, Field: "link"}
	case p.GridColumns != nil && !schema.HasGrid:
		return &UnsupportedFieldError{Kind: schema.Kind, Field: "gridColumns"}
	}
	keys := p.Styles.Keys()
	for _, k := range keys {
		if schema.Editable(k) {
			continue
		}
		if _, present := node.Styles[k]; present {
			continue
		}
		return &UnsupportedFieldError{Kind: schema.Kind, Field: "styles." + k}
	}
	return nil
}

// DeleteSelected removes the selected node and clears the selection. It
// reports whether the tree changed.
func (s *Session) DeleteSelected() (bool, error) {
	id, ok := s.Selection.Selected()
	if !ok {
		return false, ErrNoSelection
	}
	return s.Delete(id), nil
}

// Delete removes the node with the given id, along with its descendants,
// and reports whether the tree changed. Deleting an id that is not in the
// tree is a no-op. Either way the selection is cleared if it pointed at id.
func (s *Session) Delete(id string) bool {
	s.Selection.ClearOnDelete(id)
	tree, ok := document.DeleteByID(s.Template.Components, id)
	if !ok {
		return false
	}
	s.Template.Components = tree
	return true
}

// Rename changes the template's display name.
func (s *Session) Rename(name string) {
	s.Template.Name = name
}

// StyleField is one editable style property in the property panel.
type StyleField struct {
	Property string   `json:"property"`
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Options  []string `json:"options,omitempty"`
}

// Panel is the property panel for the current selection. When nothing
// resolves, Empty is set and Message holds the prompt to show instead.
type Panel struct {
	Empty       bool              `json:"empty"`
	Message     string            `json:"message,omitempty"`
	Component   *models.Component `json:"component,omitempty"`
	Title       string            `json:"title,omitempty"`
	Category    registry.Category `json:"category,omitempty"`
	ShowContent bool              `json:"showContent"`
	ShowLink    bool              `json:"showLink"`
	ShowGrid    bool              `json:"showGrid"`
	Columns     int               `json:"columns,omitempty"`
	Fields      []StyleField      `json:"fields,omitempty"`
	Extra       map[string]string `json:"extraStyles,omitempty"`
}

// Panel builds the property panel for the current selection.
func (s *Session) Panel() Panel {
	node, ok := s.SelectedNode()
	if !ok {
		return Panel{Empty: true, Message: s.Labels.Panel.SelectComponent}
	}
	schema, err := registry.Lookup(node.Kind)
	if err != nil {
		slog.Error("selected node has unknown kind", "component_id", node.ID, "error", err)
		return Panel{Empty: true, Message: s.Labels.Panel.SelectComponent}
	}

	p := Panel{
		Component:   &node,
		Title:       s.Labels.Kind(node.Kind).Name,
		Category:    schema.Category,
		ShowContent: schema.HasContent,
		ShowLink:    schema.HasLink,
		ShowGrid:    schema.HasGrid,
	}
	if schema.HasGrid {
		p.Columns = node.Columns(registry.DefaultGridColumns)
	}
	for _, prop := range schema.StyleProperties {
		f := StyleField{Property: prop, Label: s.Labels.Property(prop), Value: node.Styles[prop]}
		if prop == models.StyleTextAlign {
			f.Options = []string{"left", "center", "right"}
		}
		p.Fields = append(p.Fields, f)
	}
	for _, k := range node.Styles.Keys() {
		if slices.Contains(schema.StyleProperties, k) {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[k] = node.Styles[k]
	}
	return p
}
