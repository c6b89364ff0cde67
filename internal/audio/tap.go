package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Tap keeps a ring buffer of the most recent mono samples of whatever
// source it wraps. One Tap outlives many sources; each loaded source is
// wrapped again.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

func NewTap(size int) *Tap {
	return &Tap{
		buf:  make([]float64, size),
		size: size,
	}
}

// Wrap returns a streamer that passes s through unchanged while feeding
// the ring buffer.
func (t *Tap) Wrap(s beep.Streamer) beep.Streamer {
	return &tapped{s: s, tap: t}
}

func (t *Tap) write(samples [][2]float64) {
	t.mu.Lock()
	for i := range samples {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
}

// Samples copies the most recent len(dst) samples into dst, oldest first.
func (t *Tap) Samples(dst []float64) int {
	n := min(len(dst), t.size)

	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		dst[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()

	return n
}

// Reset zeroes the buffer so a new source does not show the old one.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.buf)
	t.pos = 0
	t.mu.Unlock()
}

type tapped struct {
	s   beep.Streamer
	tap *Tap
}

func (s *tapped) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.s.Stream(samples)
	s.tap.write(samples[:n])
	return n, ok
}

func (s *tapped) Err() error {
	return s.s.Err()
}
