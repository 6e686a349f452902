package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.RequestsPerSecond != 0.5 {
		t.Errorf("RequestsPerSecond = %f, want 0.5", cfg.RequestsPerSecond)
	}
	if cfg.Burst != 3 {
		t.Errorf("Burst = %d, want 3", cfg.Burst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestRateLimiterStore_GetLimiter(t *testing.T) {
	store := newRateLimiterStore(DefaultRateLimiterConfig())

	a := store.getLimiter("1.1.1.1")
	if a != store.getLimiter("1.1.1.1") {
		t.Error("expected the same limiter for the same key")
	}
	if a == store.getLimiter("2.2.2.2") {
		t.Error("expected distinct limiters for distinct keys")
	}
	if store.size() != 2 {
		t.Errorf("size = %d, want 2", store.size())
	}
}

func TestRateLimiterStore_EvictIdle(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	store := newRateLimiterStore(cfg)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.getLimiter("old")

	now = now.Add(cfg.IdleTimeout / 2)
	store.getLimiter("fresh")

	now = now.Add(cfg.IdleTimeout/2 + time.Second)
	if evicted := store.evictIdle(); evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if store.size() != 1 {
		t.Errorf("size = %d, want 1", store.size())
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mw := RateLimiter(ctx, RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2})
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e := echo.New()
	call := func(remote string) error {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/summaries", nil)
		req.RemoteAddr = remote
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	for i := 0; i < 2; i++ {
		if err := call("10.0.0.1:1000"); err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
	}

	err := call("10.0.0.1:1001")
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", he.Code)
	}

	if err := call("10.0.0.2:1000"); err != nil {
		t.Errorf("other client should not be limited: %v", err)
	}
}

func TestBodyLimit(t *testing.T) {
	mw := BodyLimit(8)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large"))
	err := handler(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("code = %d, want 413", he.Code)
	}
}
