package session

import (
	"strconv"

	"github.com/eleven-am/sightguide/internal/shared"
)

const keyPrefix = "sightguide:"

// Metrics is one hour bucket of analysis counters.
type Metrics struct {
	Date         string `json:"date"`
	Hour         int    `json:"hour"`
	Summaries    int64  `json:"summaries"`
	Navigations  int64  `json:"navigations"`
	Narrations   int64  `json:"narrations"`
	Scenes       int64  `json:"scenes"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
	ErrorCount   int64  `json:"error_count"`
	Rejections   int64  `json:"guard_rejections"`
}

type MetricsListResponse struct {
	Hours   int        `json:"hours"`
	Metrics []*Metrics `json:"metrics"`
}

type SummaryResponse struct {
	Period           string  `json:"period"`
	TotalSummaries   int64   `json:"total_summaries"`
	TotalNavigations int64   `json:"total_navigations"`
	TotalNarrations  int64   `json:"total_narrations"`
	TotalScenes      int64   `json:"total_scenes"`
	AvgLatencyMs     int64   `json:"avg_latency_ms"`
	TotalRejections  int64   `json:"total_guard_rejections"`
	ErrorRate        float64 `json:"error_rate"`
}

func MetricsRedisKey(date string, hour int) string {
	return keyPrefix + "metrics:" + date + ":" + strconv.Itoa(hour)
}

func GuardRedisKey(clientKey string) string {
	return keyPrefix + "inflight:" + clientKey
}

func stageField(stage shared.Stage) string {
	switch stage {
	case shared.StageSummarize:
		return "summaries"
	case shared.StageNavigate:
		return "navigations"
	case shared.StageNarrate:
		return "narrations"
	default:
		return stage.String()
	}
}
