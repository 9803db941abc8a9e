// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package translate provides the machine-translation backends used by the clone
pipeline.

The pipeline only depends on [Translator]. The production wiring is a
LibreTranslate-compatible HTTP [Client] wrapped in a [CachedTranslator] so
that repeated titles (weekly series, feast days) cost a single upstream call.
*/
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Translator turns text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512

	// maxResponseBody caps a provider answer; a title translation is far smaller.
	maxResponseBody = 1 << 20
)

// ErrEmptyTranslation is returned when the provider answers with no text.
var ErrEmptyTranslation = errors.New("translate: empty translation")

// ErrResponseTooLarge is returned when the provider answer exceeds the read cap.
var ErrResponseTooLarge = errors.New("translate: response too large")

// Client calls a LibreTranslate-compatible /translate endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the [Client].
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey sets the provider key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a translation client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

/*
Translate sends one text to the provider.

Description: Waits on the rate limiter first, so a cancelled context aborts
before any request is made. The source language is auto-detected.

Returns:
  - string: translated text, trimmed
  - error: transport, HTTP status, provider or decoding failures
*/
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("translate: rate limit: %w", err)
		}
	}

	endpoint, err := url.JoinPath(c.baseURL, "/translate")
	if err != nil {
		return "", fmt.Errorf("translate: build url: %w", err)
	}

	encoded, err := json.Marshal(translateRequest{
		Q:      text,
		Source: "auto",
		Target: targetLang,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("translate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("translate: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}
	if len(body) > maxResponseBody {
		return "", fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, maxResponseBody)
	}

	var decoded translateResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode >= http.StatusMultipleChoices {
		if decodeErr == nil && decoded.Error != "" {
			return "", fmt.Errorf("translate: http %d: %s", resp.StatusCode, decoded.Error)
		}
		return "", fmt.Errorf("translate: http %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), maxErrorBody))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("translate: decode response: %w", decodeErr)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("translate: provider error: %s", decoded.Error)
	}

	translated := strings.TrimSpace(decoded.TranslatedText)
	if translated == "" {
		return "", ErrEmptyTranslation
	}

	return translated, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
