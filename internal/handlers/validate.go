// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mailforge/internal/document"
	"mailforge/internal/models"
)

// Validation limits for template input.
const (
	maxTemplateNameLen = 200
	maxImportSize      = 2 << 20
	maxImportNodes     = 2_000
	maxContentLen      = 20_000
)

// validationError is a client input problem; it maps to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// validateTemplateName trims name and checks it is present and short enough.
func validateTemplateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("Template name is required.")
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "", invalid("Template name is too long (max %d characters).", maxTemplateNameLen)
	}
	return name, nil
}

// validateImport checks a component tree coming from an imported record.
func validateImport(tree []models.Component) error {
	if n := document.Count(tree); n > maxImportNodes {
		return invalid("Template has %d components (max %d).", n, maxImportNodes)
	}
	if err := document.Validate(tree); err != nil {
		return invalid("Invalid template: %v", err)
	}
	var long string
	document.Walk(tree, func(c models.Component, _ int) bool {
		if long == "" && utf8.RuneCountInString(c.Content) > maxContentLen {
			long = c.ID
		}
		return true
	})
	if long != "" {
		return invalid("Component %s content is too long (max %d characters).", long, maxContentLen)
	}
	return nil
}

// validatePatch rejects oversized content in a property edit.
func validatePatch(p document.Patch) error {
	if p.IsEmpty() {
		return invalid("Nothing to update.")
	}
	if p.Content != nil && utf8.RuneCountInString(*p.Content) > maxContentLen {
		return invalid("Content is too long (max %d characters).", maxContentLen)
	}
	return nil
}
