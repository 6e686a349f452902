package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/sightguide/internal/gemini"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTimeout     = 3 * time.Minute
	defaultInlineLimit = 18 * 1024 * 1024
)

type Client struct {
	gen         gemini.Generator
	uploader    gemini.Uploader
	model       string
	timeout     time.Duration
	inlineLimit int
	logger      *slog.Logger
}

// NewClient builds a scene describer. uploader may be nil, in which case every video is sent inline.
func NewClient(gen gemini.Generator, uploader gemini.Uploader, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	inlineLimit := cfg.InlineLimit
	if inlineLimit == 0 {
		inlineLimit = defaultInlineLimit
	}

	return &Client{
		gen:         gen,
		uploader:    uploader,
		model:       model,
		timeout:     timeout,
		inlineLimit: inlineLimit,
		logger:      logger.With("component", "vision"),
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) DescribeScenes(ctx context.Context, req DescribeRequest) ([]SceneDescription, error) {
	if len(req.Video.Data) == 0 {
		return nil, ErrNoVideo
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("scene count must be positive, got %d", req.Count)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	videoPart, cleanup, err := c.videoPart(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			videoPart,
			genai.NewPartFromText(buildPrompt(req)),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, generateConfig())
	if err != nil {
		return nil, fmt.Errorf("describe scenes: %w", err)
	}

	scenes, err := parseScenes(gemini.Text(resp))
	if err != nil {
		if reason := gemini.FinishReason(resp); reason != "" && reason != genai.FinishReasonStop {
			return nil, fmt.Errorf("%w (finish reason %s)", err, reason)
		}
		return nil, err
	}

	c.logger.Debug("scenes described",
		"model", c.model,
		"requested", req.Count,
		"returned", len(scenes),
		"duration_ms", time.Since(start).Milliseconds())

	return scenes, nil
}

func (c *Client) videoPart(ctx context.Context, req DescribeRequest) (*genai.Part, func(), error) {
	noop := func() {}
	if c.uploader == nil || len(req.Video.Data) <= c.inlineLimit {
		return genai.NewPartFromBytes(req.Video.Data, req.Video.MIMEType), noop, nil
	}

	file, err := c.uploader.Upload(ctx, req.Video.Data, req.Video.MIMEType)
	if err != nil {
		return nil, noop, fmt.Errorf("upload video: %w", err)
	}

	cleanup := func() {
		delCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.uploader.Delete(delCtx, file.Name); err != nil {
			c.logger.Warn("failed to delete uploaded video", "name", file.Name, "error", err)
		}
	}
	return genai.NewPartFromURI(file.URI, req.Video.MIMEType), cleanup, nil
}

func parseScenes(text string) ([]SceneDescription, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, ErrEmptyResponse
	}

	var scenes []SceneDescription
	if err := json.Unmarshal([]byte(text), &scenes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	for i := range scenes {
		scenes[i].Summary = strings.TrimSpace(scenes[i].Summary)
	}
	return scenes, nil
}
