// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"github.com/a-h/templ"

	"mailforge/internal/models"
)

type documentView struct {
	Lang  string
	Title string
	Nodes []*nodeView
}

// Document wraps the rendered root sequence in a standalone HTML page with
// a centered container at most 600px wide.
func (r *Renderer) Document(tpl *models.Template) templ.Component {
	return component("document", func() (any, error) {
		nodes, err := r.views(tpl.Components)
		if err != nil {
			return nil, err
		}
		lang := r.labels.Locale
		if lang == "" {
			lang = "en"
		}
		return documentView{Lang: lang, Title: tpl.Name, Nodes: nodes}, nil
	})
}
