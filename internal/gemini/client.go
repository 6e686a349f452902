package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const defaultTimeout = 2 * time.Minute

var (
	ErrNoAPIKeys     = errors.New("no gemini api keys configured")
	ErrKeysExhausted = errors.New("all gemini api keys exhausted")
)

type Config struct {
	APIKeys []string
	BaseURL string
	Timeout time.Duration
}

// Generator is the subset of the Gemini models API the pipeline depends on.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client holds one genai client per API key and rotates on quota errors.
type Client struct {
	clients []*genai.Client
	logger  *slog.Logger

	mu      sync.Mutex
	current int
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	var clients []*genai.Client
	for _, key := range cfg.APIKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		})
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, ErrNoAPIKeys
	}

	return &Client{
		clients: clients,
		logger:  logger.With("component", "gemini"),
	}, nil
}

func (c *Client) KeyCount() int {
	return len(c.clients)
}

func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for range len(c.clients) {
		idx, client := c.active()

		resp, err := client.Models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsQuotaError(err) {
			return nil, fmt.Errorf("generate content: %w", err)
		}

		c.logger.Warn("api key rate limited, rotating", "key", idx+1, "model", model)
		c.rotate(idx)
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %w", ErrKeysExhausted, lastErr)
}

// CheckModel confirms the active key can see model.
func (c *Client) CheckModel(ctx context.Context, model string) error {
	_, client := c.active()
	if _, err := client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", model, err)
	}
	return nil
}

func (c *Client) active() (int, *genai.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.clients[c.current]
}

// rotate advances past idx unless another caller already has.
func (c *Client) rotate(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == idx {
		c.current = (c.current + 1) % len(c.clients)
	}
}

func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
