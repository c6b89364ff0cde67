package player

//go:generate mockgen -source=output.go -destination=mocks/output_mock.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

var (
	ErrNoSource            = errors.New("no audio source loaded")
	ErrClosed              = errors.New("output closed")
	ErrAnalysisUnsupported = errors.New("audio analysis unsupported")
)

// Output is the single media resource behind the engine. Implementations
// load asynchronously: Load returns as soon as the fetch has started and a
// Play issued while loading takes effect once the source is ready.
type Output interface {
	Load(ctx context.Context, track *types.Track) error
	Unload()
	Play() error
	Pause()
	Seek(pos time.Duration) error
	SetVolume(level float64)
	Position() time.Duration
	// Duration is zero while unknown.
	Duration() time.Duration
	OnEnded(fn func())
	Analyser() (Analyser, error)
	Close() error
}

// Analyser exposes frequency-domain data of whatever the output is playing.
type Analyser interface {
	// ByteFrequencyData fills dst with magnitudes scaled to 0..255 and
	// returns the number of bins written.
	ByteFrequencyData(dst []byte) int
	Close() error
}
