// Package player holds the floating player widget logic: where the widget
// sits, what it plays, what is queued and what the visualizer shows. It is
// toolkit independent apart from fyne's geometry types, so it can be driven
// and tested without a running window.
package player

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
)

const (
	DefaultDragThreshold = 5
	DefaultPadding       = 10
	DefaultBands         = 16
	DefaultVolume        = 0.8
)

// Options collapses the three historical widget variants into flags.
type Options struct {
	HasVisualizer    bool
	DefaultMinimized bool
	HasCloseButton   bool

	DragThreshold float32
	Padding       float32
	MinimizedSize fyne.Size
	ExpandedSize  fyne.Size

	Bands              int
	FrameInterval      time.Duration
	TimeUpdateInterval time.Duration
	DefaultVolume      float64
}

func DefaultOptions() Options {
	return Options{
		HasVisualizer:    true,
		DefaultMinimized: false,
		HasCloseButton:   true,
		DragThreshold:    DefaultDragThreshold,
		Padding:          DefaultPadding,
		MinimizedSize:    fyne.NewSize(64, 64),
		ExpandedSize:     fyne.NewSize(320, 200),
		Bands:            DefaultBands,
		FrameInterval:    time.Second / 30,
		DefaultVolume:    DefaultVolume,

		TimeUpdateInterval: 250 * time.Millisecond,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	p := cfg.Player
	opts.HasVisualizer = p.HasVisualizer
	opts.DefaultMinimized = p.DefaultMinimized
	opts.HasCloseButton = p.HasCloseButton

	if p.DragThreshold > 0 {
		opts.DragThreshold = p.DragThreshold
	}
	if p.Padding >= 0 {
		opts.Padding = p.Padding
	}
	if p.MinimizedSize > 0 {
		opts.MinimizedSize = fyne.NewSize(p.MinimizedSize, p.MinimizedSize)
	}
	if p.ExpandedWidth > 0 && p.ExpandedHeight > 0 {
		opts.ExpandedSize = fyne.NewSize(p.ExpandedWidth, p.ExpandedHeight)
	}
	if p.VisualizerBands > 0 {
		opts.Bands = p.VisualizerBands
	}
	if p.FrameRate > 0 {
		opts.FrameInterval = time.Second / time.Duration(p.FrameRate)
	}
	if p.TimeUpdateInterval > 0 {
		opts.TimeUpdateInterval = time.Duration(p.TimeUpdateInterval) * time.Millisecond
	}
	if v := cfg.Audio.DefaultVolume; v >= 0 && v <= 1 {
		opts.DefaultVolume = v
	}

	return opts
}

// widgetSize returns the bounding box for the given view mode.
func (o Options) widgetSize(minimized bool) fyne.Size {
	if minimized {
		return o.MinimizedSize
	}
	return o.ExpandedSize
}

// EndPolicy decides what the host does when a track finishes.
type EndPolicy string

const (
	EndQueueThenCatalog EndPolicy = config.EndPolicyQueueThenCatalog
	EndQueueOnly        EndPolicy = config.EndPolicyQueueOnly
)

// ParseEndPolicy falls back to EndQueueThenCatalog for unknown values.
func ParseEndPolicy(s string) EndPolicy {
	if EndPolicy(s) == EndQueueOnly {
		return EndQueueOnly
	}
	return EndQueueThenCatalog
}
