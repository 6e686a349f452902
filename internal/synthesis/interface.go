package synthesis

import "context"

type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Media, error)
}
