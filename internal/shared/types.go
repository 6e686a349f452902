package shared

import (
	"strings"

	"github.com/google/uuid"
)

func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

type Stage string

const (
	StageSummarize Stage = "summarize"
	StageNavigate  Stage = "navigate"
	StageNarrate   Stage = "narrate"
)

func (s Stage) String() string {
	return string(s)
}
