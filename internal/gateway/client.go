// Package gateway implements the remote generation boundary on top of
// the Google GenAI SDK: prompt generation, image visualization, image
// editing, and random templates. Each call issues exactly one request;
// failures are surfaced for classification, never retried here.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"larchstudio/internal/config"
	"larchstudio/internal/logging"
)

const defaultAspectRatio = "16:9"

// Client talks to the Gemini API. It implements types.Gateway.
type Client struct {
	client *genai.Client

	promptModel   string
	imageModel    string
	templateModel string
	aspectRatio   string

	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a gateway client from config.
func New(cfg config.GatewayConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gateway API key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	aspect := cfg.AspectRatio
	if aspect == "" {
		aspect = defaultAspectRatio
	}

	return &Client{
		client:        client,
		promptModel:   cfg.PromptModel,
		imageModel:    cfg.ImageModel,
		templateModel: cfg.TemplateModel,
		aspectRatio:   aspect,
	}, nil
}

// DefaultAspectRatio returns the aspect ratio used when a caller passes
// an empty one.
func (c *Client) DefaultAspectRatio() string {
	return c.aspectRatio
}

// throttle enforces a minimum spacing between outbound requests.
func (c *Client) throttle() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// generate is the single choke point for model calls.
func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	c.throttle()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		logging.GatewayError("[Gateway] %s call failed after %v: %v", model, time.Since(start), err)
		return nil, err
	}
	logging.GatewayDebug("[Gateway] %s call completed in %v", model, time.Since(start))
	return resp, nil
}
