package vision

import (
	"errors"
	"time"

	"github.com/eleven-am/sightguide/internal/media"
)

var (
	ErrEmptyResponse   = errors.New("model returned no scene text")
	ErrInvalidResponse = errors.New("model returned unparseable scenes")
	ErrNoVideo         = errors.New("no video data provided")
)

type Config struct {
	Model   string
	Timeout time.Duration
	// InlineLimit is the largest video sent inline; bigger ones go through the Files API.
	InlineLimit int
}

type DescribeRequest struct {
	Video media.Video
	Count int
	// Interval pins scene i to i*Interval seconds when positive.
	Interval float64
}

type SceneDescription struct {
	Timestamp float64 `json:"timestamp"`
	Summary   string  `json:"summary"`
}
