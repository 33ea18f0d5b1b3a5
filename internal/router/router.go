// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the
// editor API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailforge/internal/handlers"
	"mailforge/internal/locale"
	"mailforge/internal/middleware"
	"mailforge/internal/session"
)

// Options carries what the router needs besides the handlers.
type Options struct {
	Sessions      *session.Store
	Catalog       *locale.Catalog
	Limiter       *middleware.RateLimiter
	SecureCookies bool
}

// New creates the chi router with all middleware and routes wired up.
func New(opts Options, ed *handlers.Editor) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no session, no CSRF, no rate limit.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Use(middleware.LoadSession(opts.Sessions, opts.Catalog))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/palette", ed.Palette)
		r.Get("/locale", ed.Locale)
		r.Put("/locale", ed.SetLocale)
		r.Delete("/session", ed.ResetSession)
		r.Post("/uploads/images", ed.UploadImage)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", ed.TemplatesList)
			r.Post("/", ed.TemplateCreate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ed.TemplateGet)
				r.Put("/", ed.TemplateRename)
				r.Delete("/", ed.TemplateDelete)
				r.Post("/duplicate", ed.TemplateDuplicate)
				r.Post("/import", ed.TemplateImport)
				r.Get("/record", ed.TemplateRecord)

				// Editing
				r.Post("/gestures", ed.Gesture)
				r.Put("/selection", ed.Select)
				r.Get("/panel", ed.Panel)
				r.Patch("/components/{componentID}", ed.ComponentUpdate)
				r.Delete("/components/{componentID}", ed.ComponentDelete)

				// Output
				r.Get("/preview", ed.Preview)
				r.Get("/live", ed.Live)
				r.Get("/export.html", ed.ExportHTML)
				r.Get("/export.pdf", ed.ExportPDF)
				r.Post("/publish", ed.Publish)
				r.Get("/publications", ed.Publications)
				r.Post("/share", ed.Share)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
