package bootstrap

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	GRPCAddr   string `env:"GRPC_ADDR"   envDefault:":50051"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`

	GeminiAPIKeys []string      `env:"GEMINI_API_KEYS" envSeparator:","`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT"  envDefault:"2m"`
	VisionModel   string        `env:"VISION_MODEL"    envDefault:"gemini-2.5-flash"`
	SpeechModel   string        `env:"SPEECH_MODEL"    envDefault:"gemini-2.5-flash-preview-tts"`
	Voice         string        `env:"NARRATION_VOICE" envDefault:"Algenib"`

	SceneInterval        float64 `env:"SCENE_INTERVAL_SECONDS"   envDefault:"10"`
	NarrationConcurrency int     `env:"NARRATION_CONCURRENCY"    envDefault:"1"`
	InlineVideoLimit     int     `env:"INLINE_VIDEO_LIMIT_BYTES" envDefault:"18874368"`

	// NarrationCacheTTL of zero disables the Redis narration cache.
	NarrationCacheTTL time.Duration `env:"NARRATION_CACHE_TTL" envDefault:"24h"`

	RedisAddr     string        `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"       envDefault:"0"`
	GuardTTL      time.Duration `env:"GUARD_TTL"      envDefault:"5m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"0.5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"3"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"sightguide"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.GeminiAPIKey != "" && !slices.Contains(cfg.GeminiAPIKeys, cfg.GeminiAPIKey) {
		cfg.GeminiAPIKeys = append([]string{cfg.GeminiAPIKey}, cfg.GeminiAPIKeys...)
	}

	if cfg.NarrationConcurrency < 1 {
		return nil, fmt.Errorf("NARRATION_CONCURRENCY must be at least 1, got %d", cfg.NarrationConcurrency)
	}
	if cfg.SceneInterval <= 0 {
		return nil, fmt.Errorf("SCENE_INTERVAL_SECONDS must be positive, got %v", cfg.SceneInterval)
	}
	return cfg, nil
}
