package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/sightguide/internal/gemini"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideGeminiClient(cfg *Config, logger *slog.Logger) (*gemini.Client, error) {
	return gemini.New(context.Background(), gemini.Config{
		APIKeys: cfg.GeminiAPIKeys,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	}, logger)
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideGeminiClient,
	),
	fx.Invoke(StartTracing),
)
