// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package live pushes re-rendered canvas previews to every browser that has
// a template open. Each template is a topic; a mutation publishes one
// message to all of its subscribers.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	// writeWait bounds a single write to a peer.
	writeWait = 10 * time.Second

	// pingPeriod is how often idle connections are pinged.
	pingPeriod = 50 * time.Second

	// maxMessageSize is the largest message accepted from a peer. Clients
	// only send close frames and pongs.
	maxMessageSize = 512

	// sendBuffer is the per-subscriber queue length. A subscriber whose
	// queue is full is dropped rather than slowing the publisher.
	sendBuffer = 16
)

// Message is the JSON frame sent to subscribers.
type Message struct {
	Type       string    `json:"type"`
	TemplateID string    `json:"templateId"`
	UpdatedAt  time.Time `json:"updatedAt"`
	HTML       string    `json:"html,omitempty"`
}

// Message types.
const (
	TypePreview = "preview"
	TypeDeleted = "deleted"
)

type subscriber struct {
	topic string
	send  chan []byte
}

// Hub fans messages out to subscribers per template.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	origin []string
}

// NewHub creates a hub. originPatterns lists the hosts allowed to open a
// connection besides the server's own; see websocket.AcceptOptions.
func NewHub(originPatterns ...string) *Hub {
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		origin: originPatterns,
	}
}

func (h *Hub) subscribe(topic string) *subscriber {
	s := &subscriber{topic: topic, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*subscriber]struct{})
	}
	h.topics[topic][s] = struct{}{}
	slog.Debug("live subscriber joined", "template", topic, "subscribers", len(h.topics[topic]))
	return s
}

// unsubscribe removes s and closes its queue. Safe to call twice.
func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[s.topic]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.send)
	if len(subs) == 0 {
		delete(h.topics, s.topic)
	}
}

// Publish sends m to every subscriber of its template. It never blocks.
func (h *Hub) Publish(m Message) {
	payload, err := json.Marshal(m)
	if err != nil {
		slog.Error("live marshal failed", "template", m.TemplateID, "error", err)
		return
	}

	var slow []*subscriber
	h.mu.RLock()
	for s := range h.topics[m.TemplateID] {
		select {
		case s.send <- payload:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		slog.Warn("dropping slow live subscriber", "template", m.TemplateID)
		h.unsubscribe(s)
	}
}

// Subscribers returns the number of open connections for a template.
func (h *Hub) Subscribers(templateID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[templateID])
}

// Serve upgrades the request to a websocket subscribed to templateID and
// blocks until the connection ends. initial, when non-nil, is sent first so
// the client does not wait for the next mutation.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, templateID string, initial *Message) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origin,
	})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s := h.subscribe(templateID)
	defer h.unsubscribe(s)

	// CloseRead discards peer messages and cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if initial != nil {
		payload, err := json.Marshal(initial)
		if err == nil {
			err = write(ctx, conn, payload)
		}
		if err != nil {
			conn.Close(websocket.StatusInternalError, "initial frame failed")
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case payload, ok := <-s.send:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "too slow")
				return
			}
			if err := write(ctx, conn, payload); err != nil {
				if websocket.CloseStatus(err) == -1 {
					slog.Debug("websocket write failed", "template", templateID, "error", err)
				}
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
