// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package share hands an exported template to an external webhook (Zapier,
// Make or a custom mail relay) that takes care of delivery.
package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidPayload wraps every validation failure of a share request.
var ErrInvalidPayload = errors.New("invalid share request")

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("share webhook not configured")

const (
	maxSubjectLen = 200
	maxMessageLen = 5_000
	maxRecipients = 10
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	TemplateHTML string `json:"templateHTML"`
	TemplateName string `json:"templateName"`
	Timestamp    string `json:"timestamp"`
}

// Validate checks recipients and field lengths. To may hold a
// comma-separated list of addresses.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidPayload)
	}
	addrs, err := mail.ParseAddressList(p.To)
	if err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidPayload, err)
	}
	if len(addrs) > maxRecipients {
		return fmt.Errorf("%w: at most %d recipients", ErrInvalidPayload, maxRecipients)
	}
	if utf8.RuneCountInString(p.Subject) > maxSubjectLen {
		return fmt.Errorf("%w: subject is too long (max %d characters)", ErrInvalidPayload, maxSubjectLen)
	}
	if utf8.RuneCountInString(p.Message) > maxMessageLen {
		return fmt.Errorf("%w: message is too long (max %d characters)", ErrInvalidPayload, maxMessageLen)
	}
	if p.TemplateHTML == "" {
		return fmt.Errorf("%w: template HTML is empty", ErrInvalidPayload)
	}
	return nil
}

// Sender posts payloads to one webhook.
type Sender struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewSender creates a Sender. An empty url yields a Sender whose Send
// always returns ErrNotConfigured.
func NewSender(url string, timeout time.Duration) *Sender {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Sender{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Configured reports whether a webhook URL is set.
func (s *Sender) Configured() bool {
	return s.url != ""
}

// Send validates p, stamps it and posts it. Any non-2xx response is an error.
func (s *Sender) Send(ctx context.Context, p Payload) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.Timestamp = s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("share marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("share request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("share http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("share webhook error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	io.Copy(io.Discard, resp.Body)

	slog.Info("template shared", "template", p.TemplateName, "recipients", strings.Count(p.To, ",")+1)
	return nil
}
