// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// Publication records one HTML export uploaded to object storage.
type Publication struct {
	ID          int64     `json:"id"`
	TemplateID  string    `json:"templateId"`
	ObjectKey   string    `json:"objectKey"`
	URL         string    `json:"url"`
	SizeBytes   int64     `json:"sizeBytes"`
	PublishedAt time.Time `json:"publishedAt"`
}

// HumanSize returns a human-readable size of the uploaded file.
func (p *Publication) HumanSize() string {
	return HumanSize(p.SizeBytes)
}

// HumanSize formats a byte count as B, KB or MB.
func HumanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.0f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// UploadableImageTypes lists the content types accepted for image blocks.
var UploadableImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// IsUploadableImage reports whether contentType may be uploaded for an
// image block. Parameters such as charset are ignored.
func IsUploadableImage(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(ct)
	for _, t := range UploadableImageTypes {
		if ct == t {
			return true
		}
	}
	return false
}
