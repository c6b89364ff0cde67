package player

import (
	"math/rand"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPosition(t *testing.T, at fyne.Position) *PositionController {
	t.Helper()

	pc := NewPositionController(DefaultOptions(), fyne.NewSize(1200, 800))
	pc.pos = at
	return pc
}

func TestPositionController_InitialPosition(t *testing.T) {
	pc := NewPositionController(DefaultOptions(), fyne.NewSize(1200, 800))

	assert.Equal(t, fyne.NewPos(440, 520), pc.Position())
	assert.False(t, pc.Minimized())
}

func TestPositionController_InitialPositionClampedOnSmallViewport(t *testing.T) {
	pc := NewPositionController(DefaultOptions(), fyne.NewSize(300, 150))

	assert.Equal(t, fyne.NewPos(10, 10), pc.Position())
}

func TestPositionController_TapTogglesMinimized(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	require.True(t, pc.PointerDown(fyne.NewPos(500, 500), false))
	pc.PointerMove(fyne.NewPos(503, 503))
	assert.False(t, pc.Moved())

	assert.True(t, pc.PointerUp())
	assert.True(t, pc.Minimized())
	assert.Equal(t, fyne.NewPos(400, 400), pc.Position())
	assert.False(t, pc.Dragging())
}

func TestPositionController_DragMovesWithoutToggle(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	require.True(t, pc.PointerDown(fyne.NewPos(500, 500), false))
	pc.PointerMove(fyne.NewPos(550, 560))
	assert.True(t, pc.Moved())

	assert.False(t, pc.PointerUp())
	assert.False(t, pc.Minimized())
	assert.Equal(t, fyne.NewPos(450, 460), pc.Position())
}

func TestPositionController_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		to     fyne.Position
		moved  bool
		toggle bool
	}{
		{name: "no movement", to: fyne.NewPos(500, 500), moved: false, toggle: true},
		{name: "exactly threshold", to: fyne.NewPos(505, 495), moved: false, toggle: true},
		{name: "just above on x", to: fyne.NewPos(505.5, 500), moved: true, toggle: false},
		{name: "just above on y", to: fyne.NewPos(500, 494), moved: true, toggle: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := newTestPosition(t, fyne.NewPos(400, 400))

			pc.PointerDown(fyne.NewPos(500, 500), false)
			pc.PointerMove(tt.to)
			assert.Equal(t, tt.moved, pc.Moved())

			toggled := pc.PointerUp()
			assert.Equal(t, tt.toggle, toggled)
			assert.Equal(t, tt.toggle, pc.Minimized())

			if !tt.moved {
				assert.Equal(t, fyne.NewPos(400, 400), pc.Position())
			}
		})
	}
}

func TestPositionController_MovedFlagIsSticky(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	pc.PointerDown(fyne.NewPos(500, 500), false)
	pc.PointerMove(fyne.NewPos(520, 500))
	pc.PointerMove(fyne.NewPos(501, 500))

	assert.False(t, pc.PointerUp())
	assert.False(t, pc.Minimized())
	assert.Equal(t, fyne.NewPos(401, 400), pc.Position())
}

func TestPositionController_InteractiveTargetIgnored(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	assert.False(t, pc.PointerDown(fyne.NewPos(500, 500), true))
	pc.PointerMove(fyne.NewPos(600, 600))

	assert.False(t, pc.PointerUp())
	assert.False(t, pc.Minimized())
	assert.Equal(t, fyne.NewPos(400, 400), pc.Position())
}

func TestPositionController_MoveWithoutSessionIsNoop(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	pc.PointerMove(fyne.NewPos(900, 900))
	assert.False(t, pc.PointerUp())
	assert.Equal(t, fyne.NewPos(400, 400), pc.Position())
}

func TestPositionController_DragClampsToViewport(t *testing.T) {
	tests := []struct {
		name string
		to   fyne.Position
		want fyne.Position
	}{
		{name: "past bottom right", to: fyne.NewPos(5000, 5000), want: fyne.NewPos(870, 590)},
		{name: "past top left", to: fyne.NewPos(-3000, -3000), want: fyne.NewPos(10, 10)},
		{name: "past top only", to: fyne.NewPos(520, -800), want: fyne.NewPos(420, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := newTestPosition(t, fyne.NewPos(400, 400))

			pc.PointerDown(fyne.NewPos(500, 500), false)
			pc.PointerMove(tt.to)
			pc.PointerUp()

			assert.Equal(t, tt.want, pc.Position())
		})
	}
}

func TestPositionController_ResizeKeepsWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	for i := 0; i < 500; i++ {
		if rng.Intn(4) == 0 {
			pc.SetMinimized(!pc.Minimized())
		}

		vp := fyne.NewSize(float32(350+rng.Intn(2000)), float32(230+rng.Intn(1500)))
		pc.Resize(vp)

		size := pc.Size()
		p := pc.Position()
		assert.GreaterOrEqual(t, p.X, float32(10))
		assert.GreaterOrEqual(t, p.Y, float32(10))
		assert.LessOrEqual(t, p.X, vp.Width-size.Width-10)
		assert.LessOrEqual(t, p.Y, vp.Height-size.Height-10)
	}
}

func TestPositionController_ResizeDoesNotReset(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	pc.Resize(fyne.NewSize(1600, 1000))
	assert.Equal(t, fyne.NewPos(400, 400), pc.Position())

	pc.Resize(fyne.NewSize(600, 500))
	assert.Equal(t, fyne.NewPos(270, 290), pc.Position())
}

func TestPositionController_TinyViewportUsesLowerBound(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	pc.Resize(fyne.NewSize(100, 50))
	assert.Equal(t, fyne.NewPos(10, 10), pc.Position())
}

func TestPositionController_TapAtEdgeKeepsPosition(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))
	pc.SetMinimized(true)

	pc.PointerDown(fyne.NewPos(420, 420), false)
	pc.PointerMove(fyne.NewPos(5000, 5000))
	pc.PointerUp()
	require.Equal(t, fyne.NewPos(1126, 726), pc.Position())

	pc.PointerDown(fyne.NewPos(1150, 750), false)
	require.True(t, pc.PointerUp())

	assert.False(t, pc.Minimized())
	assert.Equal(t, fyne.NewPos(1126, 726), pc.Position())

	// the next resize brings the expanded box back inside
	pc.Resize(fyne.NewSize(1200, 800))
	assert.Equal(t, fyne.NewPos(870, 590), pc.Position())
}

func TestPositionController_Callbacks(t *testing.T) {
	pc := newTestPosition(t, fyne.NewPos(400, 400))

	var moves []fyne.Position
	var toggles []bool
	pc.OnMove(func(p fyne.Position) { moves = append(moves, p) })
	pc.OnToggle(func(m bool) { toggles = append(toggles, m) })

	pc.PointerDown(fyne.NewPos(500, 500), false)
	pc.PointerMove(fyne.NewPos(502, 502))
	pc.PointerMove(fyne.NewPos(510, 500))
	pc.PointerUp()

	assert.Equal(t, []fyne.Position{fyne.NewPos(410, 400)}, moves)
	assert.Empty(t, toggles)

	pc.PointerDown(fyne.NewPos(500, 500), false)
	pc.PointerUp()
	assert.Equal(t, []bool{true}, toggles)
}
