// Package gemini owns the process-wide handle to the Gemini text generation API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// ErrClosed is returned when Generate is called after Close.
var ErrClosed = errors.New("gemini client closed")

// ErrEmptyResponse is returned when the model answers without text.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Config configures the lazily constructed upstream client.
type Config struct {
	APIKey  string
	Timeout time.Duration
}

// Client lazily builds a single genai.Client on first use and reuses it for
// every request until Close. A failed construction is retried on the next call.
type Client struct {
	cfg        Config
	httpClient *http.Client
	newClient  func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error)

	mu     sync.Mutex
	client *genai.Client
	closed bool
}

// New returns an unconnected client; no network activity happens until the
// first Generate call.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		newClient:  genai.NewClient,
	}
}

func (c *Client) handle(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.client != nil {
		return c.client, nil
	}

	client, err := c.newClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.client = client
	return client, nil
}

// Generate sends prompt to model with an optional system instruction and
// returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, model, systemInstruction, prompt string) (string, error) {
	client, err := c.handle(ctx)
	if err != nil {
		return "", err
	}

	var genCfg *genai.GenerateContentConfig
	if systemInstruction != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// IsModelNotFound reports whether err is an upstream 404 for the model id.
func IsModelNotFound(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusNotFound
	}
	return false
}

// Close releases pooled connections; later Generate calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client = nil
	c.httpClient.CloseIdleConnections()
	return nil
}
