package session

import (
	"context"
	"strconv"
	"time"

	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	metricsTTL      = 7 * 24 * time.Hour
	MaxMetricsHours = 7 * 24
)

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) IncrementMetric(ctx context.Context, field string, value int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// RecordRejection counts one request turned away by the in-flight guard.
func (s *Store) RecordRejection(ctx context.Context) error {
	return s.IncrementMetric(ctx, "guard_rejections", 1)
}

// RecordAnalysis bumps the counters for one finished request in the current hour bucket.
func (s *Store) RecordAnalysis(ctx context.Context, stage shared.Stage, scenes int, latency time.Duration, failed bool) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, stageField(stage), 1)
	if scenes > 0 {
		pipe.HIncrBy(ctx, key, "scenes", int64(scenes))
	}
	pipe.HIncrBy(ctx, key, "total_latency_ms", latency.Milliseconds())
	pipe.HIncrBy(ctx, key, "latency_count", 1)
	if failed {
		pipe.HIncrBy(ctx, key, "error_count", 1)
	}
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) GetMetrics(ctx context.Context, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	metrics := []*Metrics{}

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}

		m := &Metrics{
			Date:        t.Format("2006-01-02"),
			Hour:        t.Hour(),
			Summaries:   parseCount(data, "summaries"),
			Navigations: parseCount(data, "navigations"),
			Narrations:  parseCount(data, "narrations"),
			Scenes:      parseCount(data, "scenes"),
			ErrorCount:  parseCount(data, "error_count"),
			Rejections:  parseCount(data, "guard_rejections"),
		}

		totalLatency := parseCount(data, "total_latency_ms")
		latencyCount := parseCount(data, "latency_count")
		if latencyCount > 0 {
			m.AvgLatencyMs = totalLatency / latencyCount
		}

		metrics = append(metrics, m)
	}

	return metrics, nil
}

func (s *Store) GetSummary(ctx context.Context) (*SummaryResponse, error) {
	metrics, err := s.GetMetrics(ctx, MaxMetricsHours)
	if err != nil {
		return nil, err
	}

	summary := &SummaryResponse{Period: "7d"}
	var totalLatency, latencyCount, errorCount int64
	for _, m := range metrics {
		summary.TotalSummaries += m.Summaries
		summary.TotalNavigations += m.Navigations
		summary.TotalNarrations += m.Narrations
		summary.TotalScenes += m.Scenes
		errorCount += m.ErrorCount
		summary.TotalRejections += m.Rejections
		if m.AvgLatencyMs > 0 {
			totalLatency += m.AvgLatencyMs
			latencyCount++
		}
	}

	if latencyCount > 0 {
		summary.AvgLatencyMs = totalLatency / latencyCount
	}
	if requests := summary.TotalSummaries + summary.TotalNavigations + summary.TotalNarrations; requests > 0 {
		summary.ErrorRate = float64(errorCount) / float64(requests) * 100
	}
	return summary, nil
}

func parseCount(data map[string]string, field string) int64 {
	v, _ := strconv.ParseInt(data[field], 10, 64)
	return v
}
