package player

import (
	"time"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// Input is what the host supplies on every state change.
type Input struct {
	CurrentTrack *types.Track
	IsPlaying    bool
	Queue        []*types.Track
}

// Callbacks are the requests the widget sends back to the host.
type Callbacks struct {
	OnPlayPause       func()
	OnNext            func()
	OnPrev            func()
	OnRemoveFromQueue func(index int)
	OnClose           func()
	// OnEnded defaults to OnNext.
	OnEnded func()
}

// State is a snapshot for rendering.
type State struct {
	CurrentTrack *types.Track
	IsPlaying    bool
	Progress     float64
	Volume       float64
	IsMinimized  bool
	IsQueueOpen  bool
	Position     fyne.Position
	Size         fyne.Size
	Queue        []*types.Track
	Elapsed      time.Duration
	Total        time.Duration
}

func (s State) Visible() bool {
	return s.CurrentTrack != nil
}

type Controller struct {
	opts   Options
	logger *zap.Logger

	position   *PositionController
	engine     *Engine
	visualizer *Visualizer
	clock      *Loop

	cb        Callbacks
	input     Input
	queueOpen bool

	onChange func(State)
	onFrame  func([]float64)
}

func NewController(opts Options, out Output, viewport fyne.Size, cb Callbacks, dispatch Dispatcher, logger *zap.Logger) *Controller {
	logger = logging.OrNop(logger)

	c := &Controller{
		opts:     opts,
		logger:   logger.Named("widget"),
		position: NewPositionController(opts, viewport),
		engine:   NewEngine(out, opts.DefaultVolume, logger),
		cb:       cb,
	}

	c.position.OnMove(func(fyne.Position) { c.notify() })
	c.position.OnToggle(func(bool) { c.notify() })

	c.engine.OnEnded(c.ended)
	c.clock = NewLoop(opts.TimeUpdateInterval, dispatch, c.timeUpdate)

	if opts.HasVisualizer {
		c.engine.EnableAnalysis(true)
		c.visualizer = NewVisualizer(opts.Bands, opts.FrameInterval, dispatch, c.engine.Analyser)
		c.visualizer.OnFrame(func(frame []float64) {
			if c.onFrame != nil {
				c.onFrame(frame)
			}
		})
	}

	return c
}

func (c *Controller) OnChange(fn func(State))       { c.onChange = fn }
func (c *Controller) OnFrame(fn func([]float64))    { c.onFrame = fn }
func (c *Controller) Options() Options              { return c.opts }
func (c *Controller) Position() *PositionController { return c.position }
func (c *Controller) Engine() *Engine               { return c.engine }

// Render applies a new host input.
func (c *Controller) Render(in Input) {
	prev := c.input.CurrentTrack
	next := in.CurrentTrack

	if prev == nil && next != nil {
		c.position.SetMinimized(c.opts.DefaultMinimized)
		c.queueOpen = false
	}

	if !next.SameAs(prev) {
		c.stopLoops()
		c.engine.SetTrack(next)
	}

	playing := in.IsPlaying && next != nil
	replay := playing && c.engine.Finished()
	if playing != c.engine.Playing() || !next.SameAs(prev) || replay {
		c.engine.SetPlaying(playing)
	}

	c.input = Input{
		CurrentTrack: next,
		IsPlaying:    in.IsPlaying,
		Queue:        append([]*types.Track(nil), in.Queue...),
	}

	c.syncLoops()
	c.notify()
}

func (c *Controller) State() State {
	return State{
		CurrentTrack: c.input.CurrentTrack,
		IsPlaying:    c.input.IsPlaying,
		Progress:     c.engine.Progress(),
		Volume:       c.engine.Volume(),
		IsMinimized:  c.position.Minimized(),
		IsQueueOpen:  c.queueOpen,
		Position:     c.position.Position(),
		Size:         c.position.Size(),
		Queue:        c.input.Queue,
		Elapsed:      c.engine.Elapsed(),
		Total:        c.engine.Total(),
	}
}

func (c *Controller) PointerDown(p fyne.Position, interactive bool) bool {
	return c.position.PointerDown(p, interactive)
}

func (c *Controller) PointerMove(p fyne.Position) {
	c.position.PointerMove(p)
}

func (c *Controller) PointerUp() bool {
	return c.position.PointerUp()
}

func (c *Controller) Resize(viewport fyne.Size) {
	c.position.Resize(viewport)
}

// ToggleMinimized is ignored while a drag session is open.
func (c *Controller) ToggleMinimized() {
	if c.position.Dragging() {
		return
	}
	c.position.SetMinimized(!c.position.Minimized())
}

func (c *Controller) ToggleQueue() {
	c.queueOpen = !c.queueOpen
	c.notify()
}

func (c *Controller) PlayPause() {
	if c.input.CurrentTrack == nil {
		return
	}
	call(c.cb.OnPlayPause)
}

func (c *Controller) Next() { call(c.cb.OnNext) }
func (c *Controller) Prev() { call(c.cb.OnPrev) }

// RemoveFromQueue forwards valid indices only.
func (c *Controller) RemoveFromQueue(index int) {
	if index < 0 || index >= len(c.input.Queue) {
		return
	}
	if c.cb.OnRemoveFromQueue != nil {
		c.cb.OnRemoveFromQueue(index)
	}
}

// Close is only honoured when the close button is enabled.
func (c *Controller) Close() {
	if !c.opts.HasCloseButton {
		return
	}
	call(c.cb.OnClose)
}

func (c *Controller) Seek(percent float64) {
	c.engine.Seek(percent)
	c.notify()
}

func (c *Controller) SetVolume(level float64) {
	c.engine.SetVolume(level)
	c.notify()
}

// Dispose stops every loop and releases the output.
func (c *Controller) Dispose() {
	c.stopLoops()
	if err := c.engine.Close(); err != nil {
		c.logger.Debug("close output", zap.Error(err))
	}
}

func (c *Controller) timeUpdate() {
	c.engine.TimeUpdate()
	c.notify()
}

func (c *Controller) ended() {
	c.stopLoops()

	if c.cb.OnEnded != nil {
		c.cb.OnEnded()
		return
	}
	call(c.cb.OnNext)
}

func (c *Controller) syncLoops() {
	if c.input.CurrentTrack == nil || !c.input.IsPlaying {
		c.stopLoops()
		return
	}

	c.clock.Start()
	if c.visualizer != nil {
		c.visualizer.Start()
	}
}

func (c *Controller) stopLoops() {
	c.clock.Stop()
	if c.visualizer != nil {
		c.visualizer.Stop()
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.State())
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
