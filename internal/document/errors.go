// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package document

import (
	"fmt"

	"mailforge/internal/models"
)

// InvalidContainerError is returned when a container path does not resolve
// to the root or to a grid or card node.
type InvalidContainerError struct {
	Path Path
	Kind models.Kind // empty when the path does not resolve at all
}

func (e *InvalidContainerError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("container path %v does not resolve", []int(e.Path))
	}
	return fmt.Sprintf("container path %v resolves to non-container kind %q", []int(e.Path), string(e.Kind))
}

// IndexOutOfRangeError is returned when an insert or move index falls
// outside the container's bounds.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for container of length %d", e.Index, e.Len)
}
