package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/redis/go-redis/v9"
)

const DefaultGuardTTL = 5 * time.Minute

var ErrInFlight = errors.New("an analysis is already running for this client")

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard allows one analysis at a time per client key. Locks expire after ttl
// so a crashed request cannot block its client forever.
type Guard struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewGuard(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Guard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With("component", "guard"),
	}
}

// Acquire returns a release func, or ErrInFlight when clientKey already holds the lock.
// When Redis is unreachable the request proceeds unguarded.
func (g *Guard) Acquire(ctx context.Context, clientKey string) (func(), error) {
	key := GuardRedisKey(clientKey)
	token := shared.NewID("run_")

	ok, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		g.logger.Warn("guard unavailable, proceeding without lock", "client", clientKey, "error", err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrInFlight
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.redis, []string{key}, token).Err(); err != nil {
			g.logger.Warn("failed to release guard", "client", clientKey, "error", err)
		}
	}, nil
}
