// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

// Selection holds at most one selected node id. Selecting an id never
// checks that the node exists; a stale id simply resolves to nothing.
type Selection struct {
	id  string
	set bool
}

// Select makes id the current selection.
func (s *Selection) Select(id string) {
	s.id, s.set = id, true
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.id, s.set = "", false
}

// ClearOnDelete drops the selection if it points at the deleted node.
func (s *Selection) ClearOnDelete(deletedID string) {
	if s.set && s.id == deletedID {
		s.Clear()
	}
}

// Selected returns the selected id, if any.
func (s *Selection) Selected() (string, bool) {
	return s.id, s.set
}
