// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"

	"mailforge/internal/document"
	"mailforge/internal/editor"
	"mailforge/internal/models"
	"mailforge/internal/placement"
	"mailforge/internal/registry"
)

// paletteItem is one draggable entry of the component library.
type paletteItem struct {
	Kind          models.Kind       `json:"kind"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      registry.Category `json:"category"`
	CategoryLabel string            `json:"categoryLabel"`
	Container     bool              `json:"container"`
}

type paletteCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// features tells the editor which optional backends are configured, so it
// can hide the matching buttons.
type features struct {
	PDF     bool `json:"pdf"`
	Publish bool `json:"publish"`
	Uploads bool `json:"uploads"`
	Share   bool `json:"share"`
}

type paletteResponse struct {
	DroppableID string            `json:"droppableId"`
	Categories  []paletteCategory `json:"categories"`
	Items       []paletteItem     `json:"items"`
	Empty       string            `json:"empty,omitempty"`
	Features    features          `json:"features"`
}

// Palette lists component kinds with localized names. category narrows to
// one palette category ("all" or empty for every kind); q keeps kinds whose
// name or description contains it, ignoring case.
func (h *Editor) Palette(w http.ResponseWriter, r *http.Request) {
	labels := h.labels(r)
	category := r.URL.Query().Get("category")
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(r.URL.Query().Get("q")))

	resp := paletteResponse{
		DroppableID: placement.PaletteDroppable,
		Categories:  []paletteCategory{{ID: "all", Label: labels.Category("all")}},
		Items:       []paletteItem{},
		Features: features{
			PDF:     h.exporter.CanPDF(),
			Publish: h.storage != nil,
			Uploads: h.storage != nil,
			Share:   h.share.Configured(),
		},
	}
	for _, c := range registry.Categories() {
		resp.Categories = append(resp.Categories, paletteCategory{ID: string(c), Label: labels.Category(string(c))})
	}

	if category == "all" {
		category = ""
	}
	for _, s := range registry.ByCategory(registry.Category(category)) {
		kl := labels.Kind(s.Kind)
		if q != "" && !strings.Contains(fold.String(kl.Name), q) && !strings.Contains(fold.String(kl.Description), q) {
			continue
		}
		resp.Items = append(resp.Items, paletteItem{
			Kind:          s.Kind,
			Name:          kl.Name,
			Description:   kl.Description,
			Category:      s.Category,
			CategoryLabel: labels.Category(string(s.Category)),
			Container:     s.Kind.IsContainer(),
		})
	}
	if len(resp.Items) == 0 {
		resp.Empty = labels.Palette.NoResults
	}
	writeJSON(w, http.StatusOK, resp)
}

// gestureResponse reports the outcome of a drop next to the new state.
type gestureResponse struct {
	editorState
	Applied  bool   `json:"applied"`
	Action   string `json:"action"`
	Inserted string `json:"inserted,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Gesture applies a drop result from the canvas. Drops that do not map to
// a supported move answer 200 with applied=false and leave the template
// untouched.
func (h *Editor) Gesture(w http.ResponseWriter, r *http.Request) {
	var drop placement.DropResult
	if err := decodeJSON(w, r, &drop, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := drop.Gesture()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var res placement.Result
	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		res = es.ApplyGesture(g)
		return res.Applied, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, gestureResponse{
		editorState: stateOf(es),
		Applied:     res.Applied,
		Action:      res.Action.String(),
		Inserted:    res.Inserted,
		Reason:      res.Reason,
	})
}

type selectRequest struct {
	ID string `json:"id"`
}

// Select sets the selected node of a template. An empty id clears the
// selection. Ids need not resolve; a stale one yields the empty panel.
func (h *Editor) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		if req.ID == "" {
			es.Selection.Clear()
		} else {
			es.Select(req.ID)
		}
		return false, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(es))
}

// Panel returns the property panel for the current selection.
func (h *Editor) Panel(w http.ResponseWriter, r *http.Request) {
	tpl, ok := h.loadTemplate(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.openSession(r, tpl).Panel())
}

// ComponentUpdate applies a partial update to one node. The node becomes
// the selection, as editing through the panel implies it is selected.
func (h *Editor) ComponentUpdate(w http.ResponseWriter, r *http.Request) {
	var patch document.Patch
	if err := decodeJSON(w, r, &patch, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePatch(patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	componentID := chi.URLParam(r, "componentID")
	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		if err := es.Update(componentID, patch); err != nil {
			return false, err
		}
		es.Select(componentID)
		return true, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(es))
}

// ComponentDelete removes a node and its descendants. The selection is
// cleared if it pointed at the node. Deleting a node that is already gone
// only clears the selection.
func (h *Editor) ComponentDelete(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	es, ok := h.edit(w, r, chi.URLParam(r, "id"), func(es *editor.Session) (bool, error) {
		return es.Delete(componentID), nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(es))
}

type localeRequest struct {
	Locale string `json:"locale"`
}

type localeResponse struct {
	Locale    string   `json:"locale"`
	Available []string `json:"available"`
}

// Locale reports the request locale and the bundled ones.
func (h *Editor) Locale(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, localeResponse{Locale: h.labels(r).Locale, Available: h.catalog.Locales()})
}

// SetLocale stores the editor language in the session.
func (h *Editor) SetLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.catalog.Has(req.Locale) {
		writeError(w, http.StatusBadRequest, "unsupported locale")
		return
	}
	data := sessionData(r)
	data.Locale = req.Locale
	h.saveSession(w, r, data)
	writeJSON(w, http.StatusOK, localeResponse{Locale: req.Locale, Available: h.catalog.Locales()})
}

// ResetSession forgets the editor session: open template, selections and
// locale. Templates are not touched.
func (h *Editor) ResetSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Error("destroy session failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to reset session")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
