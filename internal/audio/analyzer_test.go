package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillSine(tap *Tap, bin, fftSize int, amplitude float64) {
	step := 2 * math.Pi * float64(bin) / float64(fftSize)
	i := 0
	tap.Wrap(streamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := amplitude * math.Sin(step*float64(i))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})).Stream(make([][2]float64, fftSize))
}

type streamerFunc func([][2]float64) (int, bool)

func (f streamerFunc) Stream(s [][2]float64) (int, bool) { return f(s) }
func (f streamerFunc) Err() error                        { return nil }

func TestAnalyzer_PeakAtToneBin(t *testing.T) {
	tap := NewTap(64)
	fillSine(tap, 4, 64, 0.01)

	a := NewAnalyzer(tap, 64, 0, -100, -30)
	require.Equal(t, 32, a.FrequencyBinCount())

	dst := make([]byte, 32)
	require.Equal(t, 32, a.ByteFrequencyData(dst))

	peak := 0
	for i := range dst {
		if dst[i] > dst[peak] {
			peak = i
		}
	}
	assert.Equal(t, 4, peak)
	assert.Greater(t, dst[4], dst[12])
}

func TestAnalyzer_SilenceIsZero(t *testing.T) {
	a := NewAnalyzer(NewTap(64), 64, 0.8, -100, -30)

	dst := make([]byte, 16)
	assert.Equal(t, 16, a.ByteFrequencyData(dst))
	assert.Equal(t, make([]byte, 16), dst)
}

func TestAnalyzer_LoudToneSaturates(t *testing.T) {
	tap := NewTap(64)
	fillSine(tap, 8, 64, 1)

	a := NewAnalyzer(tap, 64, 0, -100, -30)
	dst := make([]byte, 16)
	a.ByteFrequencyData(dst)

	assert.Equal(t, byte(255), dst[8])
}

func TestAnalyzer_SmoothingRisesGradually(t *testing.T) {
	tap := NewTap(64)
	fillSine(tap, 4, 64, 0.01)

	a := NewAnalyzer(tap, 64, 0.8, -100, -30)
	first := make([]byte, 16)
	a.ByteFrequencyData(first)

	var later []byte
	for range 20 {
		later = make([]byte, 16)
		a.ByteFrequencyData(later)
	}

	assert.Less(t, first[4], later[4])
}

func TestAnalyzer_ClosedReturnsNothing(t *testing.T) {
	a := NewAnalyzer(NewTap(64), 64, 0.8, -100, -30)
	require.NoError(t, a.Close())

	assert.Zero(t, a.ByteFrequencyData(make([]byte, 16)))
}
