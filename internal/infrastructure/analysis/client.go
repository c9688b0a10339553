// Package analysis invokes the external vision model that turns a screenshot
// into a raw UX critique.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultAnalysisTimeout = 60 * time.Second

// Result is a successful analysis outcome: the raw model text plus
// provenance the caller persists alongside the audit.
type Result struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Config holds analysis client settings
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client calls the model endpoint under a hard deadline and extracts the raw
// text from the provider envelope. It never interprets the text; that is the
// validator's job.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates an analysis client from configuration
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultAnalysisTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.model
}

// request mirrors the provider's generateContent payload: one system
// instruction plus one user turn carrying the prompt and the inlined image.
type request struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Analyze sends the image and prompt to the model endpoint. Failures are one
// of exactly three types: *RequestError, *TimeoutError, *OutputError.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType, systemPrompt, userPrompt string) (*Result, error) {
	start := time.Now()

	payload, err := json.Marshal(request{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: userPrompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	})
	if err != nil {
		return nil, &RequestError{Message: "failed to encode analysis request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Message: "failed to build analysis request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Cause: err}
		}
		var urlTimeout interface{ Timeout() bool }
		if errors.As(err, &urlTimeout) && urlTimeout.Timeout() {
			return nil, &TimeoutError{Cause: err}
		}
		return nil, &RequestError{Message: "analysis endpoint unreachable", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &RequestError{Message: "failed to read analysis response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: string(truncate(body, 256))}
	}

	text, err := extractText(body)
	if err != nil {
		return nil, err
	}

	latency := time.Since(start)
	c.logger.Info("analysis complete",
		zap.String("model", c.model),
		zap.Duration("latency", latency),
		zap.Int("output_chars", len(text)))

	return &Result{
		Text:      text,
		Model:     c.model,
		LatencyMs: latency.Milliseconds(),
	}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
