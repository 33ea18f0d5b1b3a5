// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailforge/internal/export"
	"mailforge/internal/models"
	"mailforge/internal/share"
	"mailforge/internal/storage"
)

// attachment builds a Content-Disposition header for an export of tpl.
func attachment(tpl *models.Template, ext string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(tpl, ext)})
}

// Preview renders the canvas fragment of a template. An empty template
// renders the localized empty-canvas prompt.
func (h *Editor) Preview(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.renderer(r).Canvas(tpl.Components).Render(r.Context(), &buf); err != nil {
		slog.Error("render preview failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// Live upgrades to a websocket that receives the rendered canvas after
// every change to the template.
func (h *Editor) Live(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	initial, err := h.previewMessage(r, tpl)
	if err != nil {
		slog.Warn("render initial preview", "template_id", tpl.ID, "error", err)
		initial = nil
	}
	h.hub.Serve(w, r, tpl.ID, initial)
}

// ExportHTML downloads the standalone HTML document of a template.
func (h *Editor) ExportHTML(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	html, err := h.exporter.HTML(r.Context(), h.renderer(r), tpl)
	if err != nil {
		slog.Error("html export failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export HTML")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(tpl, "html"))
	w.Write(html)
}

// ExportPDF downloads the template rasterized onto A4 pages.
func (h *Editor) ExportPDF(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	pdf, err := h.exporter.PDF(r.Context(), h.renderer(r), tpl)
	if err != nil {
		writeExportError(w, tpl.ID, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(tpl, "pdf"))
	w.Write(pdf)
}

func writeExportError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, export.ErrNoRasterizer) {
		writeError(w, http.StatusServiceUnavailable, "PDF export is not configured")
		return
	}
	slog.Error("pdf export failed", "template_id", id, "error", err)
	writeError(w, http.StatusBadGateway, "failed to export PDF")
}

type publishRequest struct {
	Format string `json:"format"`
}

type publishResponse struct {
	URL         string              `json:"url"`
	Key         string              `json:"key"`
	Size        string              `json:"size"`
	Publication *models.Publication `json:"publication,omitempty"`
}

// Publish uploads an export to object storage and returns its link. HTML
// goes to the public bucket; PDF to the private one behind a presigned URL.
func (h *Editor) Publish(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	req := publishRequest{Format: "html"}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Format != "html" && req.Format != "pdf" {
		writeError(w, http.StatusBadRequest, "format must be html or pdf")
		return
	}

	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ctx := r.Context()

	var obj storage.Object
	var err error
	switch req.Format {
	case "pdf":
		var pdf []byte
		pdf, err = h.exporter.PDF(ctx, h.renderer(r), tpl)
		if err != nil {
			writeExportError(w, tpl.ID, err)
			return
		}
		obj, err = h.storage.PublishPDF(ctx, tpl.ID, export.FileName(tpl, "pdf"), pdf)
	default:
		var html []byte
		html, err = h.exporter.HTML(ctx, h.renderer(r), tpl)
		if err != nil {
			slog.Error("html export failed", "template_id", tpl.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to export HTML")
			return
		}
		obj, err = h.storage.PublishHTML(ctx, tpl.ID, export.FileName(tpl, "html"), html)
	}
	if err != nil {
		slog.Error("publish upload failed", "template_id", tpl.ID, "format", req.Format, "error", err)
		writeError(w, http.StatusBadGateway, "failed to upload export")
		return
	}

	resp := publishResponse{URL: obj.URL, Key: obj.Key, Size: models.HumanSize(obj.Size)}
	if h.publications != nil {
		pub, err := h.publications.Create(ctx, &models.Publication{
			TemplateID: tpl.ID,
			ObjectKey:  obj.Key,
			URL:        obj.URL,
			SizeBytes:  obj.Size,
		})
		if err != nil {
			// The object is live; only the history entry is missing.
			slog.Error("record publication failed", "template_id", tpl.ID, "key", obj.Key, "error", err)
		} else {
			resp.Publication = pub
		}
	}
	slog.Info("template published", "template_id", tpl.ID, "format", req.Format, "key", obj.Key)
	writeJSON(w, http.StatusCreated, resp)
}

// Publications lists the publish history of a template. Without a
// PostgreSQL backend the history is always empty.
func (h *Editor) Publications(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if h.publications == nil {
		writeJSON(w, http.StatusOK, []models.Publication{})
		return
	}
	pubs, err := h.publications.ListByTemplate(r.Context(), tpl.ID)
	if err != nil {
		slog.Error("list publications failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list publications")
		return
	}
	writeJSON(w, http.StatusOK, pubs)
}

type shareRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Share hands the rendered template to the configured webhook for
// delivery. Subject and message default to the localized share texts.
func (h *Editor) Share(w http.ResponseWriter, r *http.Request) {
	if !h.share.Configured() {
		writeError(w, http.StatusServiceUnavailable, "sharing is not configured")
		return
	}
	var req shareRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	labels := h.labels(r)
	if req.Subject == "" {
		req.Subject = fmt.Sprintf(labels.Share.Subject, tpl.Name)
	}
	if req.Message == "" {
		req.Message = labels.Share.Message
	}
	html, err := h.exporter.HTML(r.Context(), h.renderer(r), tpl)
	if err != nil {
		slog.Error("html export failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render template")
		return
	}

	err = h.share.Send(r.Context(), share.Payload{
		To:           req.To,
		Subject:      req.Subject,
		Message:      req.Message,
		TemplateHTML: string(html),
		TemplateName: tpl.Name,
	})
	switch {
	case errors.Is(err, share.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("share failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to share template")
		return
	}
	slog.Info("template shared", "template_id", tpl.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
