package audio

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
)

// Analyzer turns the tap's recent samples into byte magnitudes per
// frequency bin: Blackman window, real FFT, exponential smoothing over
// time, then decibels mapped linearly from [minDB,maxDB] onto 0..255.
type Analyzer struct {
	tap       *Tap
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	mu       sync.Mutex
	window   []float64
	samples  []float64
	smoothed []float64
	closed   bool
}

var _ player.Analyser = (*Analyzer)(nil)

func NewAnalyzer(tap *Tap, fftSize int, smoothing, minDB, maxDB float64) *Analyzer {
	return &Analyzer{
		tap:       tap,
		fftSize:   fftSize,
		smoothing: math.Max(0, math.Min(1, smoothing)),
		minDB:     minDB,
		maxDB:     maxDB,
		window:    window.Blackman(fftSize),
		samples:   make([]float64, fftSize),
		smoothed:  make([]float64, fftSize/2),
	}
}

// FrequencyBinCount is half the FFT size.
func (a *Analyzer) FrequencyBinCount() int {
	return a.fftSize / 2
}

func (a *Analyzer) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0
	}

	a.update()

	n := min(len(dst), len(a.smoothed))
	scale := 255 / (a.maxDB - a.minDB)

	for i := 0; i < n; i++ {
		db := 20 * math.Log10(a.smoothed[i])
		v := scale * (db - a.minDB)
		switch {
		case math.IsNaN(v) || v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = byte(v)
		}
	}

	return n
}

func (a *Analyzer) update() {
	a.tap.Samples(a.samples)
	for i := range a.samples {
		a.samples[i] *= a.window[i]
	}

	coeffs := fft.FFTReal(a.samples)
	norm := 1 / float64(a.fftSize)

	for k := range a.smoothed {
		mag := math.Hypot(real(coeffs[k]), imag(coeffs[k])) * norm
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
	}
}

func (a *Analyzer) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return nil
}
