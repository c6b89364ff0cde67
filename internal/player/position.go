package player

import (
	"fyne.io/fyne/v2"
)

// dragSession lives from pointer down to pointer up.
type dragSession struct {
	pointerOrigin fyne.Position
	widgetOrigin  fyne.Position
	moved         bool
}

// PositionController turns pointer gestures into widget moves and taps into
// minimize/expand toggles.
type PositionController struct {
	opts      Options
	viewport  fyne.Size
	pos       fyne.Position
	minimized bool
	session   *dragSession

	onMove   func(fyne.Position)
	onToggle func(minimized bool)
}

func NewPositionController(opts Options, viewport fyne.Size) *PositionController {
	pc := &PositionController{
		opts:      opts,
		viewport:  viewport,
		minimized: opts.DefaultMinimized,
	}

	// centred on the expanded width, near the bottom edge
	pc.pos = pc.clamp(fyne.NewPos(
		viewport.Width/2-opts.ExpandedSize.Width/2,
		viewport.Height-280,
	))

	return pc
}

func (pc *PositionController) OnMove(fn func(fyne.Position))   { pc.onMove = fn }
func (pc *PositionController) OnToggle(fn func(minimized bool)) { pc.onToggle = fn }

func (pc *PositionController) Position() fyne.Position { return pc.pos }
func (pc *PositionController) Viewport() fyne.Size     { return pc.viewport }
func (pc *PositionController) Minimized() bool         { return pc.minimized }
func (pc *PositionController) Dragging() bool          { return pc.session != nil }

// Moved reports whether the active gesture has crossed the drag threshold.
func (pc *PositionController) Moved() bool {
	return pc.session != nil && pc.session.moved
}

// Size is the widget's current bounding box.
func (pc *PositionController) Size() fyne.Size {
	return pc.opts.widgetSize(pc.minimized)
}

// PointerDown starts a drag session unless the pointer landed on an
// interactive control. It reports whether the gesture was captured.
func (pc *PositionController) PointerDown(p fyne.Position, interactive bool) bool {
	if interactive {
		return false
	}

	pc.session = &dragSession{
		pointerOrigin: p,
		widgetOrigin:  pc.pos,
	}
	return true
}

func (pc *PositionController) PointerMove(p fyne.Position) {
	s := pc.session
	if s == nil {
		return
	}

	dx := p.X - s.pointerOrigin.X
	dy := p.Y - s.pointerOrigin.Y

	if !s.moved && (abs32(dx) > pc.opts.DragThreshold || abs32(dy) > pc.opts.DragThreshold) {
		s.moved = true
	}
	if !s.moved {
		return
	}

	pc.setPosition(pc.clamp(s.widgetOrigin.AddXY(dx, dy)))
}

// PointerUp ends the gesture. A gesture that never crossed the threshold
// counts as a tap and toggles the minimized state. It reports whether the
// state was toggled.
func (pc *PositionController) PointerUp() bool {
	s := pc.session
	if s == nil {
		return false
	}
	pc.session = nil

	if s.moved {
		return false
	}

	pc.SetMinimized(!pc.minimized)
	return true
}

// Cancel drops an active gesture without treating it as a tap.
func (pc *PositionController) Cancel() {
	pc.session = nil
}

// SetMinimized switches the view mode. The anchor stays put; the next move
// or resize clamps the new box.
func (pc *PositionController) SetMinimized(minimized bool) {
	if pc.minimized == minimized {
		return
	}
	pc.minimized = minimized

	if pc.onToggle != nil {
		pc.onToggle(minimized)
	}
}

// Resize re-clamps the current position into the new viewport.
func (pc *PositionController) Resize(viewport fyne.Size) {
	pc.viewport = viewport
	pc.setPosition(pc.clamp(pc.pos))
}

// Bounds returns the allowed range for the top-left anchor.
func (pc *PositionController) Bounds() (min, max fyne.Position) {
	size := pc.Size()
	pad := pc.opts.Padding

	min = fyne.NewPos(pad, pad)
	max = fyne.NewPos(
		pc.viewport.Width-size.Width-pad,
		pc.viewport.Height-size.Height-pad,
	)
	return min, max
}

func (pc *PositionController) clamp(p fyne.Position) fyne.Position {
	lo, hi := pc.Bounds()
	// the lower bound wins when the viewport is too small
	return fyne.NewPos(
		max32(lo.X, min32(p.X, hi.X)),
		max32(lo.Y, min32(p.Y, hi.Y)),
	)
}

func (pc *PositionController) setPosition(p fyne.Position) {
	if p == pc.pos {
		return
	}
	pc.pos = p
	if pc.onMove != nil {
		pc.onMove(p)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
