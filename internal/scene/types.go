package scene

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/synthesis"
	"github.com/eleven-am/sightguide/internal/vision"
)

const (
	FixedSceneCount        = 3
	DefaultSceneInterval   = 10
	DefaultNavigationCount = 10
	MaxNavigationCount     = 50
)

var (
	ErrSynthesisFailed     = errors.New("synthesis failed")
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrUpstream            = errors.New("upstream service error")
	ErrInvalidInput        = errors.New("invalid input")
)

type Describer interface {
	DescribeScenes(ctx context.Context, req vision.DescribeRequest) ([]vision.SceneDescription, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) (*synthesis.Media, error)
}

type Config struct {
	Voice string
	// SceneInterval spaces the fixed-count scenes, in seconds.
	SceneInterval float64
	// Concurrency bounds parallel narration; 1 runs scenes sequentially.
	Concurrency int
	Format      audio.Format
}

func DefaultConfig() Config {
	return Config{
		Voice:         synthesis.DefaultVoice,
		SceneInterval: DefaultSceneInterval,
		Concurrency:   1,
		Format:        audio.DefaultFormat(),
	}
}

// Summary is one described scene with its spoken narration.
type Summary struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"summary"`
	Narration string  `json:"narration"`
}

type AnalysisResult struct {
	Summaries []Summary `json:"scene_summaries"`
}

// SortByTimestamp returns a copy ordered by ascending timestamp; ties keep their original order.
func SortByTimestamp(summaries []Summary) []Summary {
	sorted := slices.Clone(summaries)
	slices.SortStableFunc(sorted, func(a, b Summary) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return sorted
}
