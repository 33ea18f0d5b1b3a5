// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"mailforge/internal/models"
)

const (
	// templateKeyPrefix namespaces template records in Valkey.
	templateKeyPrefix = "template:"
	// templateIndexKey is a sorted set of template ids scored by updatedAt
	// in unix milliseconds.
	templateIndexKey = "templates:index"
)

// ValkeyStore keeps each template as a JSON record under "template:<id>"
// and lists them through the "templates:index" sorted set.
type ValkeyStore struct {
	client *redis.Client
}

// NewValkeyStore creates a store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

// TemplateKey returns the Valkey key for a template id.
func TemplateKey(id string) string {
	return templateKeyPrefix + id
}

// List implements Collection. Ids come from the index, newest first.
// Records that fail to decode are logged and skipped so one corrupt record
// does not hide the rest.
func (s *ValkeyStore) List(ctx context.Context) ([]models.Template, error) {
	ids, err := s.client.ZRevRange(ctx, templateIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list template index: %w", err)
	}
	templates := make([]models.Template, 0, len(ids))
	if len(ids) == 0 {
		return templates, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = TemplateKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// Indexed but gone, e.g. deleted by hand.
			slog.Warn("template index entry without record", "id", ids[i])
			continue
		}
		t, err := models.UnmarshalRecord([]byte(str))
		if err != nil {
			slog.Warn("skipping unreadable template record", "key", keys[i], "error", err)
			continue
		}
		templates = append(templates, *t)
	}
	// Ties on updatedAt are ordered the same way as the other backends.
	sortByUpdated(templates)
	return templates, nil
}

// Count returns the number of indexed templates.
func (s *ValkeyStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, templateIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return int(n), nil
}

// Get implements Collection. Returns nil if not found.
func (s *ValkeyStore) Get(ctx context.Context, id string) (*models.Template, error) {
	data, err := s.client.Get(ctx, TemplateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	t, err := models.UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return t, nil
}

// Save implements Collection. An existing record keeps its createdAt.
func (s *ValkeyStore) Save(ctx context.Context, t *models.Template) error {
	if t.ID == "" {
		return fmt.Errorf("save template: missing id")
	}
	if t.CreatedAt.IsZero() {
		prev, err := s.Get(ctx, t.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			t.CreatedAt = prev.CreatedAt
		}
	}
	stamp(t)
	data, err := models.MarshalRecord(t)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, TemplateKey(t.ID), data, 0)
		pipe.ZAdd(ctx, templateIndexKey, redis.Z{Score: float64(t.UpdatedAt.UnixMilli()), Member: t.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save template %s: %w", t.ID, err)
	}
	return nil
}

// Delete implements Collection.
func (s *ValkeyStore) Delete(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, TemplateKey(id))
		pipe.ZRem(ctx, templateIndexKey, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	return del.Val() > 0, nil
}
