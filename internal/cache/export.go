// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// export.go is the Valkey-backed cache of exported HTML (L2). It lets every
// instance behind a load balancer reuse an export rendered by another.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// exportKeyPrefix is the Valkey key prefix for cached exports.
	exportKeyPrefix = "export:"

	// DefaultExportTTL is how long an exported document stays cached.
	DefaultExportTTL = 30 * time.Minute
)

// ExportCache stores rendered HTML exports in Valkey. Keys handed in by the
// exporter start with the template id, which InvalidateTemplate relies on.
type ExportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportCache creates an export cache. A zero ttl uses DefaultExportTTL.
func NewExportCache(client *redis.Client, ttl time.Duration) *ExportCache {
	if ttl == 0 {
		ttl = DefaultExportTTL
	}
	return &ExportCache{client: client, ttl: ttl}
}

// Get returns cached HTML for key. Errors are logged and treated as a miss.
func (ec *ExportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := ec.client.Get(ctx, exportKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("export cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("export cache hit", "key", key)
	return val, true
}

// Set stores HTML under key with the configured TTL.
func (ec *ExportCache) Set(ctx context.Context, key string, html []byte) {
	if err := ec.client.Set(ctx, exportKeyPrefix+key, html, ec.ttl).Err(); err != nil {
		slog.Warn("export cache set error", "key", key, "error", err)
	}
}

// InvalidateTemplate removes every cached export of a template.
func (ec *ExportCache) InvalidateTemplate(ctx context.Context, id string) {
	n := ec.deleteMatching(ctx, exportKeyPrefix+id+":*")
	slog.Debug("export cache invalidated", "id", id, "deleted", n)
}

// InvalidateAll removes all cached exports. Used after a locale catalog or
// icon set changes, since every export could be affected.
func (ec *ExportCache) InvalidateAll(ctx context.Context) {
	if n := ec.deleteMatching(ctx, exportKeyPrefix+"*"); n > 0 {
		slog.Info("export cache fully cleared", "deleted", n)
	}
}

func (ec *ExportCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := ec.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("export cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := ec.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("export cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			return deleted
		}
	}
}
