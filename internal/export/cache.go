// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go is the in-process (L1) cache of exported HTML documents. Entries
// are keyed by template id, revision, a digest of the rendered fields and
// locale, so any change to the tree produces a miss without explicit
// invalidation, even when updatedAt is left as it was.
package export

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"

	"mailforge/internal/models"
)

type cacheKey struct {
	id       string
	revision int64 // updatedAt in unix milliseconds
	digest   uint64
	locale   string
}

func keyOf(tpl *models.Template, locale string) (cacheKey, error) {
	d := xxhash.New()
	d.WriteString(tpl.Name)
	d.Write([]byte{0})
	if err := json.NewEncoder(d).Encode(tpl.Components); err != nil {
		return cacheKey{}, err
	}
	return cacheKey{id: tpl.ID, revision: tpl.UpdatedAt.UnixMilli(), digest: d.Sum64(), locale: locale}, nil
}

type htmlCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]byte
}

func newHTMLCache() *htmlCache {
	return &htmlCache{entries: make(map[cacheKey][]byte)}
}

func (c *htmlCache) get(k cacheKey) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[k]
	return v, ok
}

func (c *htmlCache) put(k cacheKey, html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Older revisions of the same template, and other contents in this
	// locale, are dead weight once a newer one is rendered.
	for old := range c.entries {
		if old.id != k.id {
			continue
		}
		if old.revision < k.revision || (old.locale == k.locale && old.digest != k.digest) {
			delete(c.entries, old)
		}
	}
	c.entries[k] = html
	slog.Debug("export cached", "id", k.id, "locale", k.locale, "size", len(c.entries))
}

func (c *htmlCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("export cache invalidated", "id", id)
}

func (c *htmlCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
