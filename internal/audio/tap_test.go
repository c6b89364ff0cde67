package audio

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampStreamer emits i on both channels for the i-th sample.
type rampStreamer struct {
	next int
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{float64(r.next), float64(r.next)}
		r.next++
	}
	return len(samples), true
}

func (r *rampStreamer) Err() error { return nil }

func TestTap_PassesThroughAndRecordsMono(t *testing.T) {
	tap := NewTap(4)
	s := tap.Wrap(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 0}
		}
		return len(samples), true
	}))

	buf := make([][2]float64, 3)
	n, ok := s.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 3, n)
	assert.Equal(t, [2]float64{1, 0}, buf[0])

	out := make([]float64, 3)
	assert.Equal(t, 3, tap.Samples(out))
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, out)
}

func TestTap_RingKeepsMostRecent(t *testing.T) {
	tap := NewTap(4)
	s := tap.Wrap(&rampStreamer{})

	s.Stream(make([][2]float64, 6))

	out := make([]float64, 4)
	tap.Samples(out)
	assert.Equal(t, []float64{2, 3, 4, 5}, out)

	// asking for more than the ring holds is capped
	big := make([]float64, 10)
	assert.Equal(t, 4, tap.Samples(big))
	assert.Equal(t, []float64{2, 3, 4, 5}, big[:4])
}

func TestTap_ResetClears(t *testing.T) {
	tap := NewTap(4)
	tap.Wrap(&rampStreamer{next: 1}).Stream(make([][2]float64, 4))

	tap.Reset()

	out := make([]float64, 4)
	tap.Samples(out)
	assert.Equal(t, make([]float64, 4), out)
}
