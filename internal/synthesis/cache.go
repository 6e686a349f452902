package synthesis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 24 * time.Hour

// Cache keeps synthesized audio in Redis so repeated narrations of the same
// text skip the model. Cache errors are logged and never fail a request.
type Cache struct {
	next   Synthesizer
	redis  *redis.Client
	ttl    time.Duration
	model  string
	voice  string
	logger *slog.Logger
}

func NewCache(next Synthesizer, redisClient *redis.Client, ttl time.Duration, model, voice string, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		next:   next,
		redis:  redisClient,
		ttl:    ttl,
		model:  model,
		voice:  voice,
		logger: logger.With("component", "synthesis_cache"),
	}
}

func (c *Cache) Synthesize(ctx context.Context, req Request) (*Media, error) {
	key := c.key(req)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var m Media
		if jerr := json.Unmarshal(data, &m); jerr == nil && m.URL != "" {
			return &m, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache lookup failed", "error", err)
	}

	m, err := c.next.Synthesize(ctx, req)
	if err != nil || m == nil {
		return m, err
	}

	if data, err := json.Marshal(m); err == nil {
		if err := c.redis.Set(context.WithoutCancel(ctx), key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache store failed", "error", err)
		}
	}
	return m, nil
}

func (c *Cache) key(req Request) string {
	model := req.ModelID
	if model == "" {
		model = c.model
	}
	voice := req.VoiceID
	if voice == "" {
		voice = c.voice
	}

	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(voice))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(req.Text)))
	return "sightguide:tts:" + hex.EncodeToString(h.Sum(nil))
}
