// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sync"

	"mailforge/internal/models"
)

// MemoryStore keeps encoded template records in a map. Records are encoded
// on save and decoded on read, so callers never share trees with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// List implements Collection.
func (s *MemoryStore) List(_ context.Context) ([]models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	templates := make([]models.Template, 0, len(s.records))
	for id, data := range s.records {
		t, err := models.UnmarshalRecord(data)
		if err != nil {
			return nil, fmt.Errorf("decode template %s: %w", id, err)
		}
		templates = append(templates, *t)
	}
	sortByUpdated(templates)
	return templates, nil
}

// Count returns the number of stored templates.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Get implements Collection.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	t, err := models.UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return t, nil
}

// Save implements Collection.
func (s *MemoryStore) Save(_ context.Context, t *models.Template) error {
	if t.ID == "" {
		return fmt.Errorf("save template: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.records[t.ID]; ok && t.CreatedAt.IsZero() {
		if old, err := models.UnmarshalRecord(prev); err == nil {
			t.CreatedAt = old.CreatedAt
		}
	}
	stamp(t)
	data, err := models.MarshalRecord(t)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	s.records[t.ID] = data
	return nil
}

// Delete implements Collection.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	delete(s.records, id)
	return ok, nil
}
