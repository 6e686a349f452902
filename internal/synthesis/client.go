package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/sightguide/internal/gemini"
	"github.com/eleven-am/sightguide/internal/media"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Algenib"

	defaultTimeout = 90 * time.Second
	maxInputLength = 4096
)

var (
	ErrEmptyText   = errors.New("text is required")
	ErrTextTooLong = fmt.Errorf("text exceeds %d characters", maxInputLength)
)

type Client struct {
	gen     gemini.Generator
	model   string
	voice   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(gen gemini.Generator, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		gen:     gen,
		model:   model,
		voice:   voice,
		timeout: timeout,
		logger:  logger.With("component", "synthesis"),
	}
}

func (c *Client) Model() string {
	return c.model
}

// Synthesize returns nil media when the model answers without audio.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Media, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len([]rune(text)) > maxInputLength {
		return nil, ErrTextTooLong
	}

	model := req.ModelID
	if model == "" {
		model = c.model
	}
	voice := req.VoiceID
	if voice == "" {
		voice = c.voice
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, model, genai.Text(text), speechConfig(voice))
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	blob := gemini.InlineData(resp)
	if blob == nil {
		c.logger.Warn("no audio in response", "model", model, "finish_reason", gemini.FinishReason(resp))
		return nil, nil
	}

	contentType := blob.MIMEType
	if contentType == "" {
		contentType = "audio/L16;codec=pcm;rate=24000"
	}

	c.logger.Debug("speech synthesized",
		"model", model,
		"voice", voice,
		"text_length", len(text),
		"audio_bytes", len(blob.Data),
		"duration_ms", time.Since(start).Milliseconds())

	return &Media{
		URL:         media.DataURI(contentType, blob.Data),
		ContentType: contentType,
	}, nil
}

func speechConfig(voice string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
}
