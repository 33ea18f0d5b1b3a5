// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the timestamp format used in persisted template records.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Template is an email template: a named, ordered sequence of root-level
// components. The template exclusively owns its tree.
type Template struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// record is the persisted JSON shape of a template.
type record struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

// MarshalRecord encodes a template into its persisted record form.
func MarshalRecord(t *Template) ([]byte, error) {
	components := t.Components
	if components == nil {
		components = []Component{}
	}
	data, err := json.Marshal(record{
		ID:         t.ID,
		Name:       t.Name,
		Components: components,
		CreatedAt:  t.CreatedAt.UTC().Format(TimeLayout),
		UpdatedAt:  t.UpdatedAt.UTC().Format(TimeLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal template %s: %w", t.ID, err)
	}
	return data, nil
}

// UnmarshalRecord decodes a persisted record. Timestamps written by other
// clients without milliseconds are accepted too.
func UnmarshalRecord(data []byte) (*Template, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	created, err := parseTime(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	updated, err := parseTime(rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updatedAt: %w", err)
	}
	return &Template{
		ID:         rec.ID,
		Name:       rec.Name,
		Components: rec.Components,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
