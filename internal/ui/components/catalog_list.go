package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// CatalogList shows catalog tracks with play and add-to-queue actions.
type CatalogList struct {
	widget.BaseWidget

	tracks  []*types.Track
	current string
	images  ImageSource

	onPlay    func(*types.Track)
	onEnqueue func(*types.Track)

	root *fyne.Container
}

func NewCatalogList(images ImageSource) *CatalogList {
	cl := &CatalogList{images: images, root: container.NewVBox()}
	cl.ExtendBaseWidget(cl)
	return cl
}

func (cl *CatalogList) CreateRenderer() fyne.WidgetRenderer {
	return &catalogListRenderer{cl: cl}
}

func (cl *CatalogList) SetTracks(tracks []*types.Track) {
	cl.tracks = tracks
	cl.Refresh()
}

func (cl *CatalogList) Tracks() []*types.Track { return cl.tracks }

// SetCurrent highlights the row of the playing track.
func (cl *CatalogList) SetCurrent(track *types.Track) {
	id := ""
	if track != nil {
		id = track.ID
	}
	if id == cl.current {
		return
	}
	cl.current = id
	cl.Refresh()
}

func (cl *CatalogList) OnPlay(cb func(*types.Track))    { cl.onPlay = cb }
func (cl *CatalogList) OnEnqueue(cb func(*types.Track)) { cl.onEnqueue = cb }

type catalogListRenderer struct {
	cl *CatalogList
}

func (r *catalogListRenderer) Layout(size fyne.Size) { r.cl.root.Resize(size) }
func (r *catalogListRenderer) MinSize() fyne.Size    { return r.cl.root.MinSize() }
func (r *catalogListRenderer) Destroy()              {}
func (r *catalogListRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.cl.root}
}

func (r *catalogListRenderer) Refresh() {
	r.cl.root.Objects = nil

	if len(r.cl.tracks) == 0 {
		r.cl.root.Add(widget.NewLabel("No tracks"))
		r.cl.root.Refresh()
		return
	}

	for _, t := range r.cl.tracks {
		r.cl.root.Add(r.makeRow(t))
	}
	r.cl.root.Refresh()
}

func (r *catalogListRenderer) makeRow(t *types.Track) fyne.CanvasObject {
	icon := theme.MediaPlayIcon()
	if t.ID == r.cl.current {
		icon = theme.VolumeUpIcon()
	}
	playBtn := widget.NewButtonWithIcon("", icon, func() {
		if r.cl.onPlay != nil {
			r.cl.onPlay(t)
		}
	})
	if !t.HasAudio() {
		playBtn.Disable()
	}

	cover := NewURLImage(r.cl.images, theme.MediaMusicIcon(), fyne.NewSize(40, 40), nil)
	cover.SetURL(t.Cover)

	title := widget.NewLabelWithStyle(orDefault(t.Title, "Untitled"), fyne.TextAlignLeading, fyne.TextStyle{Bold: t.ID == r.cl.current})
	title.Truncation = fyne.TextTruncateEllipsis

	sub := widget.NewLabel(joinNonEmpty(" · ", t.Artist, t.Genre, t.Location))
	sub.Truncation = fyne.TextTruncateEllipsis

	dur := widget.NewLabel(orDefault(t.Duration, "-"))
	dur.TextStyle = fyne.TextStyle{Monospace: true}

	queueBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		if r.cl.onEnqueue != nil {
			r.cl.onEnqueue(t)
		}
	})
	queueBtn.Importance = widget.LowImportance
	if !t.HasAudio() {
		queueBtn.Disable()
	}

	return container.NewBorder(
		nil, nil,
		container.NewHBox(playBtn, cover),
		container.NewHBox(dur, queueBtn),
		container.NewVBox(title, sub),
	)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
