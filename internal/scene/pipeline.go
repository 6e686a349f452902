package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/media"
	"github.com/eleven-am/sightguide/internal/metrics"
	"github.com/eleven-am/sightguide/internal/synthesis"
	"github.com/eleven-am/sightguide/internal/vision"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "scene"

type Pipeline struct {
	describer Describer
	synth     Synthesizer
	cfg       Config
	logger    *slog.Logger
}

func NewPipeline(describer Describer, synth Synthesizer, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if cfg.Voice == "" {
		cfg.Voice = defaults.Voice
	}
	if cfg.SceneInterval <= 0 {
		cfg.SceneInterval = defaults.SceneInterval
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.Format == (audio.Format{}) {
		cfg.Format = defaults.Format
	}

	return &Pipeline{
		describer: describer,
		synth:     synth,
		cfg:       cfg,
		logger:    logger.With("component", "scene"),
	}
}

// Summarize describes FixedSceneCount scenes spaced SceneInterval seconds apart and narrates each.
func (p *Pipeline) Summarize(ctx context.Context, videoDataURI string) (*AnalysisResult, error) {
	video, err := parseVideo(videoDataURI)
	if err != nil {
		return nil, err
	}
	return p.SummarizeVideo(ctx, video)
}

func (p *Pipeline) SummarizeVideo(ctx context.Context, video media.Video) (*AnalysisResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Pipeline.Summarize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("video.bytes", video.Size()),
		attribute.String("video.mime_type", video.MIMEType),
	)

	scenes, err := p.describe(ctx, vision.DescribeRequest{
		Video:    video,
		Count:    FixedSceneCount,
		Interval: p.cfg.SceneInterval,
	})
	if err != nil {
		return nil, p.fail(span, "summarize", err)
	}
	for i := range scenes {
		scenes[i].Timestamp = float64(i) * p.cfg.SceneInterval
	}

	summaries, err := p.narrateAll(ctx, scenes)
	if err != nil {
		return nil, p.fail(span, "summarize", err)
	}

	metrics.AnalysesTotal.WithLabelValues("summarize", "success").Inc()
	return &AnalysisResult{Summaries: summaries}, nil
}

// Navigate describes count scenes at the timestamps the model picks and narrates each.
func (p *Pipeline) Navigate(ctx context.Context, videoDataURI string, count int) ([]Summary, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if count == 0 {
		return []Summary{}, nil
	}

	video, err := parseVideo(videoDataURI)
	if err != nil {
		return nil, err
	}
	return p.NavigateVideo(ctx, video, count)
}

func (p *Pipeline) NavigateVideo(ctx context.Context, video media.Video, count int) ([]Summary, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if count == 0 {
		return []Summary{}, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Pipeline.Navigate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("scene.count", count),
		attribute.Int("video.bytes", video.Size()),
	)

	scenes, err := p.describe(ctx, vision.DescribeRequest{Video: video, Count: count})
	if err != nil {
		return nil, p.fail(span, "navigate", err)
	}

	summaries, err := p.narrateAll(ctx, scenes)
	if err != nil {
		return nil, p.fail(span, "navigate", err)
	}

	metrics.AnalysesTotal.WithLabelValues("navigate", "success").Inc()
	return summaries, nil
}

// Narrate turns one piece of text into a WAV data URI.
func (p *Pipeline) Narrate(ctx context.Context, text string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Pipeline.Narrate")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return "", p.fail(span, "narrate", fmt.Errorf("%w: text is required", ErrInvalidInput))
	}

	uri, err := p.narrate(ctx, text, ErrInvalidInput)
	if err != nil {
		return "", p.fail(span, "narrate", err)
	}

	metrics.AnalysesTotal.WithLabelValues("narrate", "success").Inc()
	return uri, nil
}

func (p *Pipeline) describe(ctx context.Context, req vision.DescribeRequest) ([]vision.SceneDescription, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "describe_scenes")
	defer span.End()

	start := time.Now()
	scenes, err := p.describer.DescribeScenes(ctx, req)
	metrics.StageDuration.WithLabelValues("describe").Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, vision.ErrEmptyResponse) || errors.Is(err, vision.ErrInvalidResponse) {
			return nil, fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
		}
		return nil, fmt.Errorf("%w: describe scenes: %w", ErrUpstream, err)
	}

	if len(scenes) < req.Count {
		return nil, fmt.Errorf("%w: wanted %d scenes, model returned %d", ErrSummarizationFailed, req.Count, len(scenes))
	}
	scenes = scenes[:req.Count]

	for i, s := range scenes {
		if s.Summary == "" {
			return nil, fmt.Errorf("%w: scene %d has no summary", ErrSummarizationFailed, i)
		}
		// fixed-interval timestamps are replaced by the caller
		if req.Interval > 0 {
			continue
		}
		if s.Timestamp < 0 || math.IsNaN(s.Timestamp) || math.IsInf(s.Timestamp, 0) {
			return nil, fmt.Errorf("%w: scene %d has invalid timestamp %v", ErrSummarizationFailed, i, s.Timestamp)
		}
	}

	p.logger.Info("scenes described", "count", len(scenes), "duration_ms", time.Since(start).Milliseconds())
	return scenes, nil
}

// narrateAll keeps generation order; the first failure discards every result.
func (p *Pipeline) narrateAll(ctx context.Context, scenes []vision.SceneDescription) ([]Summary, error) {
	summaries := make([]Summary, len(scenes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, s := range scenes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ctx, span := otel.Tracer(tracerName).Start(gctx, "narrate_scene")
			defer span.End()
			span.SetAttributes(attribute.Int("scene.index", i))

			uri, err := p.narrate(ctx, s.Summary, ErrSummarizationFailed)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			summaries[i] = Summary{
				Timestamp: s.Timestamp,
				Text:      s.Summary,
				Narration: uri,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// narrate wraps text the synthesizer refuses in rejected, so callers decide
// whether the text came from the client or from the model.
func (p *Pipeline) narrate(ctx context.Context, text string, rejected error) (string, error) {
	start := time.Now()
	m, err := p.synth.Synthesize(ctx, synthesis.Request{Text: text, VoiceID: p.cfg.Voice})
	metrics.StageDuration.WithLabelValues("synthesize").Observe(time.Since(start).Seconds())
	if errors.Is(err, synthesis.ErrEmptyText) || errors.Is(err, synthesis.ErrTextTooLong) {
		return "", fmt.Errorf("%w: %w", rejected, err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: synthesize: %w", ErrUpstream, err)
	}
	if m == nil || m.URL == "" {
		return "", fmt.Errorf("%w: no media returned", ErrSynthesisFailed)
	}

	pcm, err := media.DecodePayload(m.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	uri, err := audio.EncodeDataURI(pcm, p.cfg.Format)
	if err != nil {
		return "", err
	}

	metrics.ScenesNarratedTotal.Inc()
	metrics.NarrationAudioSeconds.Add(p.cfg.Format.Duration(len(pcm)).Seconds())
	return uri, nil
}

func (p *Pipeline) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.AnalysesTotal.WithLabelValues(operation, outcome(err)).Inc()
	p.logger.Error("analysis failed", "operation", operation, "error", err)
	return err
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrSummarizationFailed):
		return "summarization_failed"
	case errors.Is(err, ErrSynthesisFailed):
		return "synthesis_failed"
	case errors.Is(err, audio.ErrMalformedAudio), errors.Is(err, audio.ErrInvalidFormat):
		return "malformed_audio"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "upstream_error"
	}
}

func parseVideo(uri string) (media.Video, error) {
	video, err := media.ParseVideo(uri)
	if err != nil {
		return media.Video{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return video, nil
}

func validateCount(count int) error {
	if count < 0 || count > MaxNavigationCount {
		return fmt.Errorf("%w: number of summaries must be between 0 and %d, got %d", ErrInvalidInput, MaxNavigationCount, count)
	}
	return nil
}
