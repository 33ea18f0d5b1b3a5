// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"mailforge/internal/document"
	"mailforge/internal/editor"
	"mailforge/internal/models"
)

type uploadResponse struct {
	URL   string       `json:"url"`
	Key   string       `json:"key"`
	Size  string       `json:"size"`
	Type  string       `json:"type"`
	State *editorState `json:"state,omitempty"`
}

// UploadImage stores an image for an image block. When the form names a
// template_id and component_id, that image node's source is set to the
// uploaded file in the same request.
func (h *Editor) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1024)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %s.", models.HumanSize(h.maxUpload)))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %s.", models.HumanSize(h.maxUpload)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	// Trust the bytes, not the client's Content-Type.
	contentType := http.DetectContentType(data)
	if !models.IsUploadableImage(contentType) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	obj, err := h.storage.UploadImage(r.Context(), contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("s3 upload failed", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to upload file.")
		return
	}
	slog.Info("image uploaded", "key", obj.Key, "size", obj.Size, "type", contentType)

	resp := uploadResponse{URL: obj.URL, Key: obj.Key, Size: models.HumanSize(obj.Size), Type: contentType}

	templateID, componentID := r.FormValue("template_id"), r.FormValue("component_id")
	if templateID != "" && componentID != "" {
		es, ok := h.edit(w, r, templateID, func(es *editor.Session) (bool, error) {
			node, found := document.FindByID(es.Template.Components, componentID)
			if !found {
				return false, editor.ErrNodeNotFound
			}
			if node.Kind != models.KindImage {
				return false, &editor.UnsupportedFieldError{Kind: node.Kind, Field: "image upload"}
			}
			url := obj.URL
			if err := es.Update(componentID, document.Patch{Content: &url}); err != nil {
				return false, err
			}
			es.Select(componentID)
			return true, nil
		})
		if !ok {
			return
		}
		state := stateOf(es)
		resp.State = &state
	}

	writeJSON(w, http.StatusCreated, resp)
}
