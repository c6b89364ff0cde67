package components

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
	"github.com/Alexander-D-Karpov/sonicflow/internal/ui/themes"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// FloatingPlayer renders a player.Controller. It lives in a layout-free
// overlay and positions itself from the controller state.
type FloatingPlayer struct {
	widget.BaseWidget

	ctrl   *player.Controller
	opts   player.Options
	logger *zap.Logger

	root     *fyne.Container
	bg       *canvas.Rectangle
	mini     *fyne.Container
	expanded *fyne.Container
	nowBody  *fyne.Container
	queueBox *fyne.Container

	miniCover     *URLImage
	cover         *URLImage
	miniSpectrum  *spectrumBars
	spectrum      *spectrumBars
	titleLabel    *widget.Label
	artistLabel   *widget.Label
	elapsedLabel  *widget.Label
	totalLabel    *widget.Label
	playBtn       *widget.Button
	prevBtn       *widget.Button
	nextBtn       *widget.Button
	queueBtn      *widget.Button
	minimizeBtn   *widget.Button
	closeBtn      *widget.Button
	seekBar       *widget.Slider
	volumeBar     *widget.Slider
	buffer        *bufferBar
	queueList     *widget.List
	queueEmpty    *widget.Label
	interactive   []fyne.CanvasObject
	queue         []*types.Track
	current       *types.Track
	lastMinimized bool

	seekingProgrammatically bool
	userSeeking             bool

	dragging    bool
	dragIgnored bool
}

func NewFloatingPlayer(ctrl *player.Controller, images ImageSource, logger *zap.Logger) *FloatingPlayer {
	fp := &FloatingPlayer{
		ctrl:   ctrl,
		opts:   ctrl.Options(),
		logger: logging.OrNop(logger).Named("floating_player"),
	}

	fp.setupWidgets(images)
	fp.setupLayout()

	fp.ExtendBaseWidget(fp)
	fp.Hide()
	return fp
}

func (fp *FloatingPlayer) setupWidgets(images ImageSource) {
	fp.bg = canvas.NewRectangle(themes.Surface)
	fp.bg.CornerRadius = 16
	fp.bg.StrokeColor = withAlpha(themes.Accent, 90)
	fp.bg.StrokeWidth = 1

	fp.miniCover = NewURLImage(images, theme.MediaMusicIcon(), fp.opts.MinimizedSize, fp.logger)
	fp.miniCover.SetFillMode(canvas.ImageFillStretch)
	fp.cover = NewURLImage(images, theme.MediaMusicIcon(), fyne.NewSize(48, 48), fp.logger)

	fp.miniSpectrum = newSpectrumBars(fp.opts.Bands)
	fp.spectrum = newSpectrumBars(fp.opts.Bands)

	fp.titleLabel = widget.NewLabel("")
	fp.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	fp.titleLabel.Truncation = fyne.TextTruncateEllipsis
	fp.artistLabel = widget.NewLabel("")
	fp.artistLabel.Truncation = fyne.TextTruncateEllipsis

	fp.elapsedLabel = widget.NewLabel("0:00")
	fp.elapsedLabel.TextStyle = fyne.TextStyle{Monospace: true}
	fp.totalLabel = widget.NewLabel("--:--")
	fp.totalLabel.TextStyle = fyne.TextStyle{Monospace: true}

	fp.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), fp.ctrl.PlayPause)
	fp.playBtn.Importance = widget.HighImportance
	fp.prevBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), fp.ctrl.Prev)
	fp.prevBtn.Importance = widget.LowImportance
	fp.nextBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), fp.ctrl.Next)
	fp.nextBtn.Importance = widget.LowImportance
	fp.queueBtn = widget.NewButtonWithIcon("", theme.ListIcon(), fp.ctrl.ToggleQueue)
	fp.queueBtn.Importance = widget.LowImportance
	fp.minimizeBtn = widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), fp.ctrl.ToggleMinimized)
	fp.minimizeBtn.Importance = widget.LowImportance
	fp.closeBtn = widget.NewButtonWithIcon("", theme.CancelIcon(), fp.ctrl.Close)
	fp.closeBtn.Importance = widget.LowImportance
	if !fp.opts.HasCloseButton {
		fp.closeBtn.Hide()
	}

	fp.seekBar = widget.NewSlider(0, 100)
	fp.seekBar.Step = 0.1
	fp.seekBar.OnChanged = fp.onSeekChanged
	fp.seekBar.OnChangeEnded = fp.onSeekEnded

	fp.volumeBar = widget.NewSlider(0, 100)
	fp.volumeBar.OnChanged = fp.onVolumeChange

	fp.buffer = newBufferBar()

	fp.queueEmpty = widget.NewLabel("Queue is empty")
	fp.queueEmpty.Alignment = fyne.TextAlignCenter
	fp.queueList = widget.NewList(
		func() int { return len(fp.queue) },
		func() fyne.CanvasObject {
			title := widget.NewLabel("")
			title.Truncation = fyne.TextTruncateEllipsis
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.Importance = widget.LowImportance
			return container.NewBorder(nil, nil, nil, remove, title)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(fp.queue) {
				return
			}
			row := obj.(*fyne.Container)
			title := row.Objects[0].(*widget.Label)
			remove := row.Objects[1].(*widget.Button)

			t := fp.queue[id]
			title.SetText(fmt.Sprintf("%d. %s - %s", id+1, t.Title, t.Artist))
			remove.OnTapped = func() { fp.ctrl.RemoveFromQueue(id) }
		},
	)

	fp.interactive = []fyne.CanvasObject{
		fp.playBtn, fp.prevBtn, fp.nextBtn, fp.queueBtn, fp.minimizeBtn, fp.closeBtn,
		fp.seekBar, fp.volumeBar, fp.queueList,
	}
}

func (fp *FloatingPlayer) setupLayout() {
	fp.mini = container.NewStack(
		fp.miniCover,
		container.NewBorder(nil, container.NewPadded(fp.miniSpectrum), nil, nil),
	)

	header := container.NewBorder(
		nil, nil,
		fp.cover,
		container.NewHBox(fp.minimizeBtn, fp.closeBtn),
		container.NewVBox(fp.titleLabel, fp.artistLabel),
	)

	seekRow := container.NewBorder(
		nil, nil,
		fp.elapsedLabel, fp.totalLabel,
		container.NewStack(container.NewBorder(nil, fp.buffer, nil, nil), fp.seekBar),
	)

	if !fp.opts.HasVisualizer {
		fp.spectrum.Hide()
		fp.miniSpectrum.Hide()
	}
	fp.nowBody = container.NewBorder(nil, seekRow, nil, nil, fp.spectrum)
	fp.queueBox = container.NewStack(fp.queueEmpty, fp.queueList)
	fp.queueBox.Hide()

	controls := container.NewBorder(
		nil, nil,
		container.NewHBox(fp.prevBtn, fp.playBtn, fp.nextBtn),
		fp.queueBtn,
		container.NewPadded(fp.volumeBar),
	)

	fp.expanded = container.NewPadded(container.NewBorder(
		header, controls, nil, nil,
		container.NewStack(fp.nowBody, fp.queueBox),
	))

	fp.root = container.NewStack(fp.bg, fp.mini, fp.expanded)
}

func (fp *FloatingPlayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(fp.root)
}

func (fp *FloatingPlayer) MinSize() fyne.Size {
	return fp.opts.MinimizedSize
}

// Apply renders a controller snapshot. Called on the UI goroutine.
func (fp *FloatingPlayer) Apply(s player.State) {
	if !s.Visible() {
		fp.current = nil
		fp.miniSpectrum.Clear()
		fp.spectrum.Clear()
		fp.Hide()
		return
	}

	fp.Move(s.Position)
	fp.Resize(s.Size)

	if !s.CurrentTrack.SameAs(fp.current) {
		fp.setTrack(s.CurrentTrack)
	}

	if s.IsPlaying {
		fp.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		fp.playBtn.SetIcon(theme.MediaPlayIcon())
		fp.miniSpectrum.Clear()
		fp.spectrum.Clear()
	}

	if !fp.userSeeking {
		fp.seekingProgrammatically = true
		fp.seekBar.SetValue(s.Progress)
		fp.seekingProgrammatically = false
		fp.elapsedLabel.SetText(formatDuration(s.Elapsed))
	}
	if s.Total > 0 {
		fp.totalLabel.SetText(formatDuration(s.Total))
	} else {
		fp.totalLabel.SetText("--:--")
	}

	fp.seekingProgrammatically = true
	fp.volumeBar.SetValue(s.Volume * 100)
	fp.seekingProgrammatically = false

	fp.queue = s.Queue
	fp.queueList.Refresh()
	if len(s.Queue) > 0 {
		fp.queueEmpty.Hide()
	} else {
		fp.queueEmpty.Show()
	}
	fp.queueBtn.SetText(queueLabel(len(s.Queue)))

	if s.IsQueueOpen {
		fp.nowBody.Hide()
		fp.queueBox.Show()
	} else {
		fp.queueBox.Hide()
		fp.nowBody.Show()
	}

	if s.IsMinimized != fp.lastMinimized || !fp.Visible() {
		fp.lastMinimized = s.IsMinimized
		if s.IsMinimized {
			fp.expanded.Hide()
			fp.mini.Show()
			fp.bg.CornerRadius = s.Size.Width / 2
		} else {
			fp.mini.Hide()
			fp.expanded.Show()
			fp.bg.CornerRadius = 16
		}
		fp.bg.Refresh()
	}

	fp.Show()
}

// SetFrame shows one visualizer frame in whichever view is visible.
func (fp *FloatingPlayer) SetFrame(frame []float64) {
	if fp.lastMinimized {
		fp.miniSpectrum.SetFrame(frame)
		return
	}
	fp.spectrum.SetFrame(frame)
}

// SetBuffered shows how much of the current source has downloaded.
func (fp *FloatingPlayer) SetBuffered(fraction float64) {
	fp.buffer.SetValue(fraction)
}

func (fp *FloatingPlayer) setTrack(t *types.Track) {
	fp.current = t
	fp.titleLabel.SetText(t.Title)
	fp.artistLabel.SetText(t.Artist)
	fp.miniCover.SetURL(t.Cover)
	fp.cover.SetURL(t.Cover)
	fp.buffer.SetValue(0)
	fp.userSeeking = false
}

func (fp *FloatingPlayer) onSeekChanged(value float64) {
	if fp.seekingProgrammatically {
		return
	}
	fp.userSeeking = true

	if total := fp.ctrl.State().Total; total > 0 {
		fp.elapsedLabel.SetText(formatDuration(time.Duration(float64(total) * value / 100)))
	}
}

func (fp *FloatingPlayer) onSeekEnded(value float64) {
	fp.userSeeking = false
	if fp.seekingProgrammatically {
		return
	}
	fp.ctrl.Seek(value)
}

func (fp *FloatingPlayer) onVolumeChange(v float64) {
	if fp.seekingProgrammatically {
		return
	}
	fp.ctrl.SetVolume(v / 100)
}

// Tapped only reaches the player for taps outside its buttons and sliders;
// those toggle between the minimised and expanded views.
func (fp *FloatingPlayer) Tapped(ev *fyne.PointEvent) {
	if fp.dragging {
		return
	}
	abs := fp.Position().Add(ev.Position)
	if fp.ctrl.PointerDown(abs, fp.hitsInteractive(ev.AbsolutePosition)) {
		fp.ctrl.PointerUp()
	}
}

func (fp *FloatingPlayer) Dragged(ev *fyne.DragEvent) {
	if fp.dragIgnored {
		return
	}
	if !fp.dragging {
		start := ev.Position.Subtract(ev.Dragged)
		startAbs := ev.AbsolutePosition.Subtract(ev.Dragged)
		if !fp.ctrl.PointerDown(fp.Position().Add(start), fp.hitsInteractive(startAbs)) {
			fp.dragIgnored = true
			return
		}
		fp.dragging = true
	}
	fp.ctrl.PointerMove(fp.Position().Add(ev.Position))
}

func (fp *FloatingPlayer) DragEnd() {
	if fp.dragging {
		fp.ctrl.PointerUp()
	}
	fp.dragging = false
	fp.dragIgnored = false
}

// hitsInteractive reports whether abs (canvas coordinates) falls on one of
// the player's buttons, sliders or the queue list.
func (fp *FloatingPlayer) hitsInteractive(abs fyne.Position) bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	driver := app.Driver()

	for _, obj := range fp.interactive {
		if !obj.Visible() || !isShown(obj, fp) {
			continue
		}
		origin := driver.AbsolutePositionForObject(obj)
		size := obj.Size()
		if abs.X >= origin.X && abs.X <= origin.X+size.Width &&
			abs.Y >= origin.Y && abs.Y <= origin.Y+size.Height {
			return true
		}
	}
	return false
}

// isShown checks the containers between obj and the player for hidden views.
func isShown(obj fyne.CanvasObject, fp *FloatingPlayer) bool {
	switch obj {
	case fp.queueList:
		return fp.expanded.Visible() && fp.queueBox.Visible()
	case fp.seekBar:
		return fp.expanded.Visible() && fp.nowBody.Visible()
	default:
		return fp.expanded.Visible()
	}
}

func queueLabel(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
