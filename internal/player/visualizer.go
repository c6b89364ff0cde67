package player

import (
	"time"
)

// Visualizer samples the engine's analyser into normalised band values.
// Without an analyser it publishes silence.
type Visualizer struct {
	bands   int
	source  func() Analyser
	loop    *Loop
	buf     []byte
	frame   []float64
	onFrame func([]float64)
}

func NewVisualizer(bands int, interval time.Duration, dispatch Dispatcher, source func() Analyser) *Visualizer {
	if bands <= 0 {
		bands = DefaultBands
	}

	v := &Visualizer{
		bands:  bands,
		source: source,
		buf:    make([]byte, bands),
		frame:  make([]float64, bands),
	}
	v.loop = NewLoop(interval, dispatch, v.tick)
	return v
}

// OnFrame registers the receiver of each published frame. The slice is
// reused between frames.
func (v *Visualizer) OnFrame(fn func([]float64)) {
	v.onFrame = fn
}

func (v *Visualizer) Start() {
	v.loop.Start()
}

// Stop cancels sampling and publishes a silent frame.
func (v *Visualizer) Stop() {
	wasRunning := v.loop.Running()
	v.loop.Stop()

	if wasRunning {
		clear(v.frame)
		v.publish()
	}
}

func (v *Visualizer) Active() bool {
	return v.loop.Running()
}

// Sample reads the latest magnitudes and returns the current frame.
func (v *Visualizer) Sample() []float64 {
	clear(v.buf)

	var a Analyser
	if v.source != nil {
		a = v.source()
	}

	n := 0
	if a != nil {
		n = a.ByteFrequencyData(v.buf)
	}

	for i := range v.frame {
		if i < n {
			v.frame[i] = float64(v.buf[i]) / 255
		} else {
			v.frame[i] = 0
		}
	}
	return v.frame
}

func (v *Visualizer) tick() {
	v.Sample()
	v.publish()
}

func (v *Visualizer) publish() {
	if v.onFrame != nil {
		v.onFrame(v.frame)
	}
}
