package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fishmeister1/iris/internal/httpc"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

// Client is the HTTP-based Analyzer.
type Client struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a new vision client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := cfg.HTTPClient
	if h == nil {
		h = httpc.NewClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config: cfg,
		http:   h,
		logger: logger.With("component", "vision.client"),
	}, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Analyze sends one image and returns the parsed description.
// Exactly one HTTP attempt is made.
func (c *Client) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	start := time.Now()

	body, err := json.Marshal(c.buildRequest(image))
	if err != nil {
		return nil, fmt.Errorf("vision: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	c.logger.Debug("sending analysis request", "bytes", len(image))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("analysis response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		te := &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
		c.logger.Warn("analysis request rejected",
			"status", te.StatusCode,
			"server_error", te.IsServerError(),
			"rate_limited", te.IsRateLimited(),
			"body", truncate(te.Body, 200),
		)
		return nil, te
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	if out.Completion == nil || *out.Completion == "" {
		return nil, fmt.Errorf("%w: no completion", ErrMalformedResponse)
	}

	parsed := ParseCompletion(*out.Completion)
	if parsed.Kind == PlainText {
		c.logger.Debug("completion is plain text")
	}

	result := parsed.Result()
	result.LatencyMs = time.Since(start).Milliseconds()
	return result, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) buildRequest(image []byte) completionRequest {
	return completionRequest{
		Messages: []message{
			{Role: "system", Content: c.config.SystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: c.config.Prompt},
				{Type: "image", Image: base64.StdEncoding.EncodeToString(image)},
			}},
		},
	}
}

// Wire types.
type completionRequest struct {
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type completionResponse struct {
	Completion *string `json:"completion"`
}

// Verify Client implements Analyzer at compile time.
var _ Analyzer = (*Client)(nil)
