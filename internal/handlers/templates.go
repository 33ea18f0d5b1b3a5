// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mailforge/internal/document"
	"mailforge/internal/editor"
	"mailforge/internal/live"
	"mailforge/internal/models"
	"mailforge/internal/store"
)

// templateSummary is one row of the template list.
type templateSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Components int       `json:"components"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type nameRequest struct {
	Name string `json:"name"`
}

// TemplatesList returns all templates, most recently updated first.
func (h *Editor) TemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	out := make([]templateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateSummary{
			ID:         t.ID,
			Name:       t.Name,
			Components: document.Count(t.Components),
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// TemplateCreate saves a new empty template. Without a name in the body
// the localized default name is used.
func (h *Editor) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Name == "" {
		req.Name = h.labels(r).Templates.NewName
	}
	name, err := validateTemplateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := store.Create(r.Context(), h.templates, name)
	if err != nil {
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	slog.Info("template created", "template_id", tpl.ID, "name", tpl.Name)

	data := sessionData(r)
	data.OpenTemplate = tpl.ID
	h.saveSession(w, r, data)

	writeJSON(w, http.StatusCreated, stateOf(h.openSession(r, tpl)))
}

// TemplateGet returns a template with its selection and property panel.
func (h *Editor) TemplateGet(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(h.openSession(r, tpl)))
}

// TemplateRename changes a template's name.
func (h *Editor) TemplateRename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := validateTemplateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		if es.Template.Name == name {
			return false, nil
		}
		es.Rename(name)
		return true, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(es))
}

// TemplateDelete removes a template and its published exports. Live
// subscribers are told so they can close the canvas.
func (h *Editor) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Publication rows cascade with the template, so collect keys first.
	published := h.publishedKeys(r, id)

	unlock := h.locks.Lock(id)
	deleted, err := h.templates.Delete(r.Context(), id)
	unlock()
	if err != nil {
		slog.Error("delete template failed", "template_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	slog.Info("template deleted", "template_id", id)

	if len(published) > 0 {
		if err := h.storage.DeleteExports(r.Context(), published...); err != nil {
			// The template is gone; orphaned objects only cost storage.
			slog.Warn("delete published exports failed", "template_id", id, "keys", len(published), "error", err)
		}
	}

	h.exporter.Invalidate(r.Context(), id)
	if h.hub != nil {
		h.hub.Publish(live.Message{Type: live.TypeDeleted, TemplateID: id, UpdatedAt: time.Now().UTC()})
	}

	data := sessionData(r)
	data.Forget(id)
	h.saveSession(w, r, data)

	w.WriteHeader(http.StatusNoContent)
}

// publishedKeys returns the object keys published for a template. It is
// empty without storage or a publication history.
func (h *Editor) publishedKeys(r *http.Request, id string) []string {
	if h.storage == nil || h.publications == nil {
		return nil
	}
	pubs, err := h.publications.ListByTemplate(r.Context(), id)
	if err != nil {
		slog.Warn("list publications for delete failed", "template_id", id, "error", err)
		return nil
	}
	keys := make([]string, 0, len(pubs))
	for _, p := range pubs {
		keys = append(keys, p.ObjectKey)
	}
	return keys
}

// TemplateDuplicate copies a template, giving every node a fresh id. The
// copy keeps the source name unless the body names it.
func (h *Editor) TemplateDuplicate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req nameRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Name == "" {
		src, ok := h.loadTemplate(w, r, id)
		if !ok {
			return
		}
		req.Name = src.Name
	}
	name, err := validateTemplateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := store.Duplicate(r.Context(), h.templates, id, name)
	if err != nil {
		slog.Error("duplicate template failed", "template_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to duplicate template")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusCreated, stateOf(h.openSession(r, tpl)))
}

// TemplateImport replaces a template's components with those of an
// exported record. The template keeps its id and name.
func (h *Editor) TemplateImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "import exceeds 2 MB")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read import")
		return
	}
	rec, err := models.UnmarshalRecord(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateImport(rec.Components); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		es.Template.Components = rec.Components
		if es.Template.Components == nil {
			es.Template.Components = []models.Component{}
		}
		es.Selection.Clear()
		return true, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(es))
}

// TemplateRecord downloads the persisted record of a template, the format
// TemplateImport reads back.
func (h *Editor) TemplateRecord(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	data, err := models.MarshalRecord(tpl)
	if err != nil {
		slog.Error("marshal record failed", "template_id", tpl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export record")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(tpl, "json"))
	w.Write(data)
}
