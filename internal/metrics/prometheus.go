package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sightguide_analyses_total",
		Help: "Total number of video analyses, by operation and outcome",
	}, []string{"operation", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sightguide_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	ScenesNarratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sightguide_scenes_narrated_total",
		Help: "Total number of scene narrations produced",
	})

	NarrationAudioSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sightguide_narration_audio_seconds_total",
		Help: "Total seconds of narration audio produced",
	})

	InFlightAnalyses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sightguide_in_flight_analyses",
		Help: "Number of analyses currently running",
	})

	GuardRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sightguide_guard_rejections_total",
		Help: "Requests rejected because an analysis was already running for the client",
	})
)
