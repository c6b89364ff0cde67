package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
)

// ImageSource resolves cover URLs; callbacks arrive on the UI goroutine.
type ImageSource interface {
	GetResourceAsync(url string, callback func(fyne.Resource, error))
}

// URLImage is a cover image that swaps in the remote picture once loaded.
type URLImage struct {
	widget.BaseWidget

	loader      ImageSource
	image       *canvas.Image
	url         string
	placeholder fyne.Resource
	defaultSize fyne.Size
	logger      *zap.Logger
}

func NewURLImage(loader ImageSource, placeholder fyne.Resource, size fyne.Size, logger *zap.Logger) *URLImage {
	img := &URLImage{
		loader:      loader,
		placeholder: placeholder,
		defaultSize: size,
		logger:      logging.OrNop(logger).Named("cover"),
	}

	img.image = canvas.NewImageFromResource(placeholder)
	img.image.FillMode = canvas.ImageFillContain
	img.image.ScaleMode = canvas.ImageScaleSmooth
	img.image.SetMinSize(size)

	img.ExtendBaseWidget(img)
	return img
}

func (i *URLImage) CreateRenderer() fyne.WidgetRenderer {
	return &urlImageRenderer{image: i}
}

type urlImageRenderer struct {
	image *URLImage
}

func (r *urlImageRenderer) Layout(size fyne.Size)        { r.image.image.Resize(size) }
func (r *urlImageRenderer) MinSize() fyne.Size           { return r.image.defaultSize }
func (r *urlImageRenderer) Refresh()                     { r.image.image.Refresh() }
func (r *urlImageRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.image.image} }
func (r *urlImageRenderer) Destroy()                     {}

// SetURL must be called on the UI goroutine. Results for a URL that has
// since been replaced are dropped.
func (i *URLImage) SetURL(url string) {
	if i.url == url {
		return
	}
	i.url = url

	if url == "" || i.loader == nil {
		i.apply(i.placeholder)
		return
	}

	i.loader.GetResourceAsync(url, func(res fyne.Resource, err error) {
		if i.url != url {
			return
		}
		if err != nil || res == nil {
			i.logger.Debug("cover unavailable", zap.String("url", url), zap.Error(err))
			res = i.placeholder
		}
		i.apply(res)
	})
}

func (i *URLImage) URL() string { return i.url }

// SetFillMode switches between contain and cover style scaling.
func (i *URLImage) SetFillMode(mode canvas.ImageFill) {
	i.image.FillMode = mode
	i.image.Refresh()
}

func (i *URLImage) Reset() {
	i.url = ""
	i.apply(i.placeholder)
}

func (i *URLImage) apply(res fyne.Resource) {
	i.image.Resource = res
	i.image.SetMinSize(i.defaultSize)
	i.image.Refresh()
}
