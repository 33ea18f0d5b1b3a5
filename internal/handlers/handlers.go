// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the mailforge editor API.
// Handlers receive their dependencies through the Editor struct and speak
// JSON, except for the preview and export routes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"mailforge/internal/editor"
	"mailforge/internal/export"
	"mailforge/internal/live"
	"mailforge/internal/locale"
	"mailforge/internal/middleware"
	"mailforge/internal/models"
	"mailforge/internal/render"
	"mailforge/internal/session"
	"mailforge/internal/share"
	"mailforge/internal/storage"
	"mailforge/internal/store"
)

// maxJSONBody bounds every JSON request body except imports.
const maxJSONBody = 64 << 10

// Deps lists what the editor handlers need. Publications, Storage and
// Share may be nil when the matching backend is not configured.
type Deps struct {
	Templates    store.Collection
	Publications *store.PublicationStore
	Sessions     *session.Store
	Catalog      *locale.Catalog
	Exporter     *export.Exporter
	Hub          *live.Hub
	Storage      *storage.Client
	Share        *share.Sender
	MaxUpload    int64
}

// Editor groups all editor API handlers and their dependencies.
type Editor struct {
	templates    store.Collection
	publications *store.PublicationStore
	sessions     *session.Store
	catalog      *locale.Catalog
	locks        *editor.Locker
	exporter     *export.Exporter
	hub          *live.Hub
	storage      *storage.Client
	share        *share.Sender
	maxUpload    int64
}

// NewEditor creates the editor handler group.
func NewEditor(d Deps) *Editor {
	if d.Share == nil {
		d.Share = share.NewSender("", 0)
	}
	if d.MaxUpload <= 0 {
		d.MaxUpload = 5 << 20
	}
	return &Editor{
		templates:    d.Templates,
		publications: d.Publications,
		sessions:     d.Sessions,
		catalog:      d.Catalog,
		locks:        editor.NewLocker(),
		exporter:     d.Exporter,
		hub:          d.Hub,
		storage:      d.Storage,
		share:        d.Share,
		maxUpload:    d.MaxUpload,
	}
}

// labels returns the locale resolved by the session middleware.
func (h *Editor) labels(r *http.Request) locale.Labels {
	if l, ok := middleware.LabelsFromCtx(r.Context()); ok {
		return l
	}
	return h.catalog.Match(r.Header.Get("Accept-Language"))
}

// sessionData returns the request's editor session, never nil.
func sessionData(r *http.Request) *session.Data {
	if d := middleware.SessionFromCtx(r.Context()); d != nil {
		return d
	}
	return &session.Data{}
}

// saveSession persists session changes. Failures are logged only: losing
// a selection is not worth failing an edit that already succeeded.
func (h *Editor) saveSession(w http.ResponseWriter, r *http.Request, data *session.Data) {
	if h.sessions == nil {
		return
	}
	if err := h.sessions.Save(r.Context(), w, r, data); err != nil {
		slog.Warn("save session", "error", err)
	}
}

// renderer builds a renderer for the request locale.
func (h *Editor) renderer(r *http.Request) *render.Renderer {
	return render.New(h.labels(r), nil)
}

// loadTemplate fetches a template and writes 404 or 500 when it cannot.
func (h *Editor) loadTemplate(w http.ResponseWriter, r *http.Request, id string) (*models.Template, bool) {
	tpl, err := h.templates.Get(r.Context(), id)
	if err != nil {
		slog.Error("get template failed", "template_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load template")
		return nil, false
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return nil, false
	}
	return tpl, true
}

// openSession wraps tpl in an editor session, restoring the selection the
// browser session remembers for it.
func (h *Editor) openSession(r *http.Request, tpl *models.Template) *editor.Session {
	es := editor.NewSession(tpl, h.labels(r))
	if id := sessionData(r).Selected(tpl.ID); id != "" {
		es.Select(id)
	}
	return es
}

// edit loads template id under its lock, runs fn, and saves the template
// when fn reports a change. After a save, cached exports are dropped and
// live subscribers get the new preview. The selection is written back to
// the browser session either way. ok is false when a response has already
// been written.
func (h *Editor) edit(w http.ResponseWriter, r *http.Request, id string, fn func(es *editor.Session) (changed bool, err error)) (es *editor.Session, ok bool) {
	unlock := h.locks.Lock(id)
	defer unlock()

	tpl, ok := h.loadTemplate(w, r, id)
	if !ok {
		return nil, false
	}
	es = h.openSession(r, tpl)

	changed, err := fn(es)
	if err != nil {
		writeEditError(w, err)
		return nil, false
	}

	if changed {
		if err := h.templates.Save(r.Context(), tpl); err != nil {
			slog.Error("save template failed", "template_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save template")
			return nil, false
		}
		h.exporter.Invalidate(r.Context(), id)
		h.broadcast(r, tpl)
	}

	data := sessionData(r)
	selected, _ := es.Selection.Selected()
	data.SetSelected(id, selected)
	data.OpenTemplate = id
	h.saveSession(w, r, data)
	return es, true
}

// broadcast pushes the rendered canvas to live subscribers of tpl.
func (h *Editor) broadcast(r *http.Request, tpl *models.Template) {
	if h.hub == nil || h.hub.Subscribers(tpl.ID) == 0 {
		return
	}
	msg, err := h.previewMessage(r, tpl)
	if err != nil {
		slog.Warn("render live preview", "template_id", tpl.ID, "error", err)
		return
	}
	h.hub.Publish(*msg)
}

func (h *Editor) previewMessage(r *http.Request, tpl *models.Template) (*live.Message, error) {
	html, err := h.renderer(r).Fragment(r.Context(), tpl.Components)
	if err != nil {
		return nil, err
	}
	return &live.Message{
		Type:       live.TypePreview,
		TemplateID: tpl.ID,
		UpdatedAt:  tpl.UpdatedAt,
		HTML:       html,
	}, nil
}

// editorState is the response of every editing call: the template, the
// selected node and the property panel for it.
type editorState struct {
	Template *models.Template `json:"template"`
	Selected string           `json:"selected,omitempty"`
	Panel    editor.Panel     `json:"panel"`
}

func stateOf(es *editor.Session) editorState {
	selected, _ := es.Selection.Selected()
	return editorState{Template: es.Template, Selected: selected, Panel: es.Panel()}
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are rejected
// so typos in property names surface as errors instead of silent no-ops.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEditError maps editor errors onto HTTP statuses.
func writeEditError(w http.ResponseWriter, err error) {
	var unsupported *editor.UnsupportedFieldError
	var invalid *validationError
	switch {
	case errors.Is(err, editor.ErrNodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrNoSelection):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &unsupported):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("edit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "edit failed")
	}
}
