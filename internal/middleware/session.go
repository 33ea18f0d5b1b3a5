// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"mailforge/internal/locale"
	"mailforge/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	sessionKey   contextKey = "session"
	labelsKey    contextKey = "labels"
	csrfTokenKey contextKey = "csrf_token"
)

// LoadSession loads the editor session into the request context and
// resolves the request locale. A visitor without a session gets a fresh,
// unsaved one; handlers persist it when they change something.
//
// The locale comes from the session when it names a bundled locale, then
// from Accept-Language, then the catalog fallback.
func LoadSession(store *session.Store, catalog *locale.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// A broken session store must not take the editor down.
				slog.Warn("load session", "error", err)
			}
			if data == nil {
				data = &session.Data{}
			}

			var labels locale.Labels
			if data.Locale != "" && catalog.Has(data.Locale) {
				labels = catalog.Get(data.Locale)
			} else {
				labels = catalog.Match(r.Header.Get("Accept-Language"))
			}

			ctx := context.WithValue(r.Context(), sessionKey, data)
			ctx = context.WithValue(ctx, labelsKey, labels)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromCtx returns the session loaded by LoadSession, or nil.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(sessionKey).(*session.Data)
	return data
}

// LabelsFromCtx returns the labels resolved by LoadSession. ok is false
// when the middleware did not run.
func LabelsFromCtx(ctx context.Context) (locale.Labels, bool) {
	l, ok := ctx.Value(labelsKey).(locale.Labels)
	return l, ok
}

// WithSession returns ctx carrying data and labels, as LoadSession does.
// Used by tests and by callers that resolve the session themselves.
func WithSession(ctx context.Context, data *session.Data, labels locale.Labels) context.Context {
	ctx = context.WithValue(ctx, sessionKey, data)
	return context.WithValue(ctx, labelsKey, labels)
}
