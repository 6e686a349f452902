package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/gateway"
	"github.com/eleven-am/sightguide/internal/media"
	"github.com/eleven-am/sightguide/internal/metrics"
	"github.com/eleven-am/sightguide/internal/scene"
	"github.com/eleven-am/sightguide/internal/session"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

// maxRequestBytes fits a base64 encoded MaxVideoBytes video plus JSON framing.
const maxRequestBytes = media.MaxVideoBytes/3*4 + 64*1024

type HandlerParams struct {
	fx.In

	Lifecycle      fx.Lifecycle
	SceneHandler   *scene.Handler
	AudioHandler   *audio.Handler
	SessionHandler *session.Handler
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	ctx, cancel := context.WithCancel(context.Background())
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})

	api := e.Group("/api/v1")
	api.Use(gateway.BodyLimit(maxRequestBytes))

	limiter := gateway.RateLimiter(ctx, gateway.RateLimiterConfig{
		RequestsPerSecond: params.Config.RateLimitRPS,
		Burst:             params.Config.RateLimitBurst,
	})
	params.SceneHandler.RegisterRoutes(api.Group("", limiter))

	params.AudioHandler.RegisterRoutes(api.Group("/audio"))
	params.SessionHandler.RegisterRoutes(api)

	metrics.RegisterRoutes(e)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideSceneHandler(pipeline *scene.Pipeline, guard *session.Guard, store *session.Store, logger *slog.Logger) *scene.Handler {
	return scene.NewHandler(pipeline, guard, store, logger)
}

func ProvideAudioHandler(logger *slog.Logger) *audio.Handler {
	return audio.NewHandler(logger)
}

func ProvideSessionHandler(store *session.Store, logger *slog.Logger) *session.Handler {
	return session.NewHandler(store, logger.With("handler", "stats"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideSceneHandler,
		ProvideAudioHandler,
		ProvideSessionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
