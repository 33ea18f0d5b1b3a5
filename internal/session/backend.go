// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type valkeyBackend struct {
	client *redis.Client
}

func (v valkeyBackend) get(ctx context.Context, key string) ([]byte, error) {
	b, err := v.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (v valkeyBackend) set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return v.client.Set(ctx, key, val, ttl).Err()
}

func (v valkeyBackend) del(ctx context.Context, key string) error {
	return v.client.Del(ctx, key).Err()
}

type memoryEntry struct {
	val     []byte
	expires time.Time
}

// memoryBackend expires entries lazily on read and on every write.
type memoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *memoryBackend) get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, nil
	}
	return e.val, nil
}

func (m *memoryBackend) set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now()
	for k, e := range m.entries {
		if !t.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{val: val, expires: t.Add(ttl)}
	return nil
}

func (m *memoryBackend) del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
