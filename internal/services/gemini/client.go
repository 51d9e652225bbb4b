// Package gemini adapts the Google GenAI SDK to the services.Generator
// contract. It is the default backend for metadata autocompletion.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"varologs/internal/services"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the settings needed to build a Gemini API client.
type Config struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint. Tests point it at httptest.
	BaseURL        string
	TimeoutSeconds int
}

// Client issues single generateContent calls through the GenAI SDK.
type Client struct {
	sdk *genai.Client
}

// Option customizes the client.
type Option func(*genai.ClientConfig)

// WithHTTPClient overrides the HTTP client handed to the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *genai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewClient builds a Gemini API client. No request is made; an invalid key
// only surfaces on the first Generate call.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "api key required", nil)
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	for _, opt := range opts {
		opt(clientCfg)
	}
	sdk, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "", err)
	}
	return &Client{sdk: sdk}, nil
}

var _ services.Generator = (*Client)(nil)

// Generate sends one prompt to one model. It never retries.
func (c *Client) Generate(ctx context.Context, req services.GenerateRequest) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "generate", "model required", nil)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "generate", "prompt required", nil)
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	resp, err := c.sdk.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "gemini", model, "request timed out", err)
		}
		return "", services.Wrap(services.ErrExternal, "gemini", model, "generate content", err)
	}
	text, finishReason := responseText(resp)
	if text == "" {
		return "", services.Wrap(services.ErrExternal, "gemini", model,
			fmt.Sprintf("empty content (finish_reason=%q)", finishReason), nil)
	}
	return text, nil
}

// responseText concatenates the non-thought text parts of the first candidate
// that carries any.
func responseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil {
		return "", ""
	}
	var finishReason string
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if finishReason == "" {
			finishReason = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text, finishReason
		}
	}
	if finishReason == "" && resp.PromptFeedback != nil {
		finishReason = string(resp.PromptFeedback.BlockReason)
	}
	return "", finishReason
}
