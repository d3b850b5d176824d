package vision

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultEndpoint is the hosted completion endpoint the app talks to.
const DefaultEndpoint = "https://toolkit.rork.com/text/llm/"

// DefaultPrompt is the user turn sent with every image.
const DefaultPrompt = "What do you see in this image?"

// DefaultSystemPrompt instructs the model how to describe the image and when to
// answer with researched sources.
const DefaultSystemPrompt = `You are an AI vision assistant called Iris. Analyze the image and provide a clear, concise, and informative description of what you see. Focus on the main subject, important details, colors, and context. If you identify specific objects, animals, plants, landmarks, artworks, or anything that would benefit from additional research or verification, please conduct web research to provide more accurate and detailed information. When you use research, format your response as JSON with this structure: {"description": "your description here", "sources": [{"title": "source title", "url": "source url"}]}. If no research is needed, just return the description as plain text. Keep descriptions under 150 words and make them engaging and informative.`

// Config holds client configuration.
type Config struct {
	Endpoint     string
	APIKey       string // optional bearer token
	SystemPrompt string
	Prompt       string
	Timeout      time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithEndpoint sets the completion endpoint URL.
func WithEndpoint(url string) Option {
	return func(c *Config) { c.Endpoint = url }
}

// WithAPIKey sets a bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithSystemPrompt replaces the system instruction.
func WithSystemPrompt(p string) Option {
	return func(c *Config) { c.SystemPrompt = p }
}

// WithPrompt replaces the user question.
func WithPrompt(p string) Option {
	return func(c *Config) { c.Prompt = p }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Config) { c.HTTPClient = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns the configuration used by the app.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     DefaultEndpoint,
		SystemPrompt: DefaultSystemPrompt,
		Prompt:       DefaultPrompt,
		Timeout:      60 * time.Second,
		Logger:       slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	return nil
}
