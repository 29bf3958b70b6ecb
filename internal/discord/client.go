// Package discord is a minimal client for Discord's incoming-webhook API.
//
// A webhook message is a single JSON POST: {"content": "..."}. There is no
// retry or rate-limit handling here; callers get one attempt and an error
// that distinguishes transport failures from non-2xx responses.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxContentLen is Discord's hard cap on message content. Longer content is
// truncated client-side so an oversized template degrades instead of failing.
const MaxContentLen = 2000

// DefaultTimeout bounds a webhook POST so a hung network call cannot wedge
// a cron slot.
const DefaultTimeout = 10 * time.Second

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

type payload struct {
	Content string `json:"content"`
}

// Client posts messages to Discord webhooks. The zero value is not usable;
// construct with New.
type Client struct {
	httpc *http.Client
}

// New returns a Client. A nil httpc gets a default client with DefaultTimeout.
func New(httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpc: httpc}
}

// Send posts content to webhookURL. Content beyond MaxContentLen is truncated.
func (c *Client) Send(ctx context.Context, webhookURL, content string) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return fmt.Errorf("webhook url required")
	}
	// Discord's cap counts characters, not bytes, so truncate on rune
	// boundaries.
	if r := []rune(content); len(r) > MaxContentLen {
		content = string(r[:MaxContentLen-1]) + "…"
	}

	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep a short body excerpt for the error webhook / logs.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}
