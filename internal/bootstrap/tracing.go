package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/fx"
)

func InitTracer(ctx context.Context, endpoint, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// StartTracing exports spans when OTLP_ENDPOINT is set; otherwise the global no-op provider stays in place.
func StartTracing(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) error {
	if cfg.OTLPEndpoint == "" {
		logger.Info("tracing disabled, OTLP_ENDPOINT not set")
		return nil
	}

	tp, err := InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	logger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}
