package bootstrap

import (
	"log/slog"

	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/gemini"
	"github.com/eleven-am/sightguide/internal/scene"
	"github.com/eleven-am/sightguide/internal/session"
	"github.com/eleven-am/sightguide/internal/synthesis"
	"github.com/eleven-am/sightguide/internal/vision"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideVisionClient(client *gemini.Client, cfg *Config, logger *slog.Logger) *vision.Client {
	return vision.NewClient(client, client, vision.Config{
		Model:       cfg.VisionModel,
		Timeout:     cfg.GeminiTimeout,
		InlineLimit: cfg.InlineVideoLimit,
	}, logger)
}

func ProvideSynthesisClient(client *gemini.Client, cfg *Config, logger *slog.Logger) *synthesis.Client {
	return synthesis.NewClient(client, synthesis.Config{
		Model:   cfg.SpeechModel,
		Voice:   cfg.Voice,
		Timeout: cfg.GeminiTimeout,
	}, logger)
}

func ProvidePipeline(describer *vision.Client, client *synthesis.Client, redisClient *redis.Client, cfg *Config, logger *slog.Logger) *scene.Pipeline {
	var synth scene.Synthesizer = client
	if cfg.NarrationCacheTTL > 0 {
		synth = synthesis.NewCache(client, redisClient, cfg.NarrationCacheTTL, client.Model(), cfg.Voice, logger)
	}

	return scene.NewPipeline(describer, synth, scene.Config{
		Voice:         cfg.Voice,
		SceneInterval: cfg.SceneInterval,
		Concurrency:   cfg.NarrationConcurrency,
		Format:        audio.DefaultFormat(),
	}, logger)
}

func ProvideSessionStore(redisClient *redis.Client) *session.Store {
	return session.NewStore(redisClient)
}

func ProvideGuard(redisClient *redis.Client, cfg *Config, logger *slog.Logger) *session.Guard {
	return session.NewGuard(redisClient, cfg.GuardTTL, logger)
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideVisionClient,
		ProvideSynthesisClient,
		ProvidePipeline,
		ProvideSessionStore,
		ProvideGuard,
	),
)
