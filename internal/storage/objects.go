// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PresignTTL is how long a published PDF link stays valid.
const PresignTTL = 7 * 24 * time.Hour

// Object describes an uploaded file.
type Object struct {
	Key  string
	URL  string
	Size int64
}

// ExportKey returns the object key of a published export, e.g.
// "exports/<template>/20260419T101500Z-spring-sale.html".
func ExportKey(templateID, filename string, at time.Time) string {
	return path.Join("exports", templateID, at.UTC().Format("20060102T150405Z")+"-"+filename)
}

// imageExtensions maps accepted image content types to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageKey returns a fresh object key for an uploaded image.
func ImageKey(contentType string) (string, error) {
	ct, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageExtensions[strings.TrimSpace(ct)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return "images/" + uuid.NewString() + ext, nil
}

// PublishHTML uploads an HTML export to the public bucket.
func (c *Client) PublishHTML(ctx context.Context, templateID, filename string, html []byte) (Object, error) {
	key := ExportKey(templateID, filename, time.Now())
	if err := c.Upload(ctx, c.publicBucket, key, "text/html; charset=utf-8", bytes.NewReader(html), int64(len(html))); err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: c.FileURL(key), Size: int64(len(html))}, nil
}

// PublishPDF uploads a PDF export to the private bucket and returns a
// presigned link to it.
func (c *Client) PublishPDF(ctx context.Context, templateID, filename string, pdf []byte) (Object, error) {
	key := ExportKey(templateID, filename, time.Now())
	if err := c.Upload(ctx, c.privateBucket, key, "application/pdf", bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		return Object{}, err
	}
	url, err := c.PresignedURL(ctx, c.privateBucket, key, PresignTTL)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: url, Size: int64(len(pdf))}, nil
}

// UploadImage stores an image for an image block in the public bucket.
func (c *Client) UploadImage(ctx context.Context, contentType string, body io.Reader, size int64) (Object, error) {
	key, err := ImageKey(contentType)
	if err != nil {
		return Object{}, err
	}
	if err := c.Upload(ctx, c.publicBucket, key, contentType, body, size); err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: c.FileURL(key), Size: size}, nil
}

// DeleteExports removes published export objects from both buckets.
// Missing objects are not an error on S3, so keys may be passed without
// knowing which bucket holds them.
func (c *Client) DeleteExports(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		bucket := c.publicBucket
		if strings.HasSuffix(key, ".pdf") {
			bucket = c.privateBucket
		}
		if err := c.Delete(ctx, bucket, key); err != nil {
			return err
		}
	}
	return nil
}
