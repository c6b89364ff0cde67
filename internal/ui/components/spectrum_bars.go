package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/Alexander-D-Karpov/sonicflow/internal/ui/themes"
)

// spectrumBars draws one vertical bar per visualizer band.
type spectrumBars struct {
	widget.BaseWidget
	frame []float64 // 0..1 per band
	bands int
}

func newSpectrumBars(bands int) *spectrumBars {
	s := &spectrumBars{bands: bands, frame: make([]float64, bands)}
	s.ExtendBaseWidget(s)
	return s
}

// SetFrame copies the frame; values outside 0..1 are clamped when drawn.
func (s *spectrumBars) SetFrame(frame []float64) {
	if len(s.frame) != len(frame) {
		s.frame = make([]float64, len(frame))
	}
	copy(s.frame, frame)
	s.Refresh()
}

// Clear drops the bars back to the baseline.
func (s *spectrumBars) Clear() {
	for i := range s.frame {
		s.frame[i] = 0
	}
	s.Refresh()
}

func (s *spectrumBars) MinSize() fyne.Size { return fyne.NewSize(float32(s.bands)*3, 16) }

type spectrumRenderer struct {
	s       *spectrumBars
	bars    []*canvas.Rectangle
	objects []fyne.CanvasObject
	barGap  float32
}

func (s *spectrumBars) CreateRenderer() fyne.WidgetRenderer {
	return &spectrumRenderer{s: s, barGap: 2}
}

func (r *spectrumRenderer) MinSize() fyne.Size           { return r.s.MinSize() }
func (r *spectrumRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *spectrumRenderer) Destroy()                     {}

func (r *spectrumRenderer) Refresh() {
	r.Layout(r.s.Size())
	for _, b := range r.bars {
		canvas.Refresh(b)
	}
}

func (r *spectrumRenderer) Layout(size fyne.Size) {
	count := len(r.s.frame)
	for len(r.bars) < count {
		rect := canvas.NewRectangle(themes.Accent)
		rect.CornerRadius = 1
		r.bars = append(r.bars, rect)
		r.objects = append(r.objects, rect)
	}
	for i := count; i < len(r.bars); i++ {
		r.bars[i].Hide()
	}
	if count == 0 || size.Width <= 0 || size.Height <= 0 {
		return
	}

	step := size.Width / float32(count)
	bw := step - r.barGap
	if bw < 1 {
		bw = 1
	}

	for i, v := range r.s.frame {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		h := float32(v) * size.Height
		if h < 2 {
			h = 2
		}

		bar := r.bars[i]
		if i%2 == 1 {
			bar.FillColor = themes.Secondary
		}
		bar.Show()
		bar.Resize(fyne.NewSize(bw, h))
		bar.Move(fyne.NewPos(float32(i)*step, size.Height-h))
	}
}
