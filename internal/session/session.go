// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps per-browser editor state: the chosen locale, the
// template that is open and the selected node of each template. Sessions
// are identified by a cookie and stored as JSON with TTL expiry, in Valkey
// or in process.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "mf_session"

	// DefaultTTL is how long an idle session lives.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data is the session payload.
type Data struct {
	Locale       string            `json:"locale,omitempty"`
	OpenTemplate string            `json:"open_template,omitempty"`
	Selections   map[string]string `json:"selections,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Selected returns the node selected in a template, or "".
func (d *Data) Selected(templateID string) string {
	return d.Selections[templateID]
}

// SetSelected records the selected node of a template. An empty id clears
// the selection.
func (d *Data) SetSelected(templateID, nodeID string) {
	if nodeID == "" {
		delete(d.Selections, templateID)
		return
	}
	if d.Selections == nil {
		d.Selections = make(map[string]string)
	}
	d.Selections[templateID] = nodeID
}

// Forget drops all state about a deleted template.
func (d *Data) Forget(templateID string) {
	delete(d.Selections, templateID)
	if d.OpenTemplate == templateID {
		d.OpenTemplate = ""
	}
}

// backend is the key/value storage behind a Store. get returns nil, nil
// for a missing key.
type backend interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	del(ctx context.Context, key string) error
}

// Store manages session lifecycle.
type Store struct {
	kv     backend
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie Secure, for deployments behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{kv: valkeyBackend{client}, ttl: DefaultTTL, secure: secure}
}

// NewMemoryStore creates a session store that lives in this process. Used
// when no Valkey is configured.
func NewMemoryStore(secure bool) *Store {
	return &Store{kv: newMemoryBackend(), ttl: DefaultTTL, secure: secure}
}

// Create generates a new session, stores it and sets the session cookie on
// the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()
	if err := s.write(ctx, id, data); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return id, nil
}

// Get retrieves session data using the session ID from the request cookie.
// Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	payload, err := s.kv.get(ctx, keyPrefix+cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Update replaces the session data without changing the session ID or
// cookie. Resets the TTL.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return errors.New("session update: no cookie")
	}
	if err := s.write(ctx, cookie.Value, data); err != nil {
		return fmt.Errorf("session update: %w", err)
	}
	return nil
}

// Save updates the request's session, or creates one if the request has
// no session cookie.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) error {
	if _, err := r.Cookie(CookieName); err != nil {
		_, err := s.Create(ctx, w, data)
		return err
	}
	return s.Update(ctx, r, data)
}

// Destroy removes the session and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	if err := s.kv.del(ctx, keyPrefix+cookie.Value); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

func (s *Store) write(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return s.kv.set(ctx, keyPrefix+id, payload, s.ttl)
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
