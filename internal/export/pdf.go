// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"mailforge/internal/models"
	"mailforge/internal/render"
)

// ErrNoRasterizer is returned by PDF when no rasterizer is configured.
var ErrNoRasterizer = errors.New("pdf export: no rasterizer configured")

const (
	// RasterWidth is the CSS pixel width the document is laid out at.
	RasterWidth = 600
	// RasterScale is the device pixel ratio requested from the rasterizer.
	RasterScale = 2

	// PageWidth and PageHeight are the printable A4 area in millimetres.
	PageWidth  = 210.0
	PageHeight = 295.0
)

// Rasterizer turns an HTML document into a PNG screenshot.
type Rasterizer interface {
	Rasterize(ctx context.Context, html []byte, width, scale int) ([]byte, error)
}

// HTTPRasterizer posts HTML to a headless-browser rendering service and
// reads back a PNG.
type HTTPRasterizer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRasterizer creates a rasterizer for the service at endpoint.
func NewHTTPRasterizer(endpoint string) *HTTPRasterizer {
	return &HTTPRasterizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Rasterize implements Rasterizer.
func (h *HTTPRasterizer) Rasterize(ctx context.Context, html []byte, width, scale int) ([]byte, error) {
	u, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, fmt.Errorf("rasterizer url: %w", err)
	}
	q := u.Query()
	q.Set("width", strconv.Itoa(width))
	q.Set("scale", strconv.Itoa(scale))
	q.Set("background", "#ffffff")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("rasterizer request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("Accept", "image/png")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasterizer http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rasterizer read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rasterizer error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// PDF renders tpl to HTML, rasterizes it and lays the image out on A4 pages.
func (e *Exporter) PDF(ctx context.Context, r *render.Renderer, tpl *models.Template) ([]byte, error) {
	if e.raster == nil {
		return nil, ErrNoRasterizer
	}
	html, err := e.HTML(ctx, r, tpl)
	if err != nil {
		return nil, err
	}
	png, err := e.raster.Rasterize(ctx, html, RasterWidth, RasterScale)
	if err != nil {
		return nil, fmt.Errorf("rasterize template %s: %w", tpl.ID, err)
	}
	doc, err := Assemble(png, tpl.Name)
	if err != nil {
		return nil, fmt.Errorf("assemble pdf %s: %w", tpl.ID, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf %s: %w", tpl.ID, err)
	}
	return buf.Bytes(), nil
}

// Pages returns the vertical offset, in millimetres, at which the full
// image is drawn on each page. An image taller than one page is repeated
// on following pages shifted up by a page height, so each page shows the
// next slice.
func Pages(imageHeight float64) []float64 {
	n := max(1, int(math.Ceil(imageHeight/PageHeight-1e-9)))
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = -float64(i) * PageHeight
	}
	return offsets
}

// Assemble builds a portrait A4 document from a PNG screenshot scaled to
// the page width.
func Assemble(png []byte, title string) (*fpdf.Fpdf, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("screenshot is %s, want png", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, errors.New("screenshot is empty")
	}
	height := float64(cfg.Height) * PageWidth / float64(cfg.Width)

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(title, true)
	doc.SetCreator("mailforge", true)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("screenshot", opts, bytes.NewReader(png))
	for _, y := range Pages(height) {
		doc.AddPage()
		doc.ImageOptions("screenshot", 0, y, PageWidth, height, false, opts, 0, "")
	}
	if err := doc.Error(); err != nil {
		return nil, err
	}
	return doc, nil
}
