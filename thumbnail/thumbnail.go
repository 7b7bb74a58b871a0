// Package thumbnail sizes and produces page thumbnails, deferring
// requests for pages that have not arrived yet.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/observability"
)

const (
	MinDevicePixelRatio = 0.25
	MaxDevicePixelRatio = 2

	// Widths in pixels at a device pixel ratio of 1.
	MaxLandscapeWidth = 140
	MaxPortraitWidth  = 108

	// DefaultMaxBytes caps the RGBA buffer of one thumbnail.
	DefaultMaxBytes = 255 * 1024

	// supersample renders this many times larger before scaling down.
	supersample = 2
)

var ErrRedundantRequest = errors.New("thumbnail: request already pending for page")

// Thumbnail is an RGBA image with a stride of width*4.
type Thumbnail struct {
	Image            *image.RGBA
	DevicePixelRatio float32
}

// Callback receives the thumbnail exactly once.
type Callback func(Thumbnail, error)

// Source renders pages with their saved content only.
type Source interface {
	// PageSize returns the rotated page size in points.
	PageSize(page int) (coords.SizeF, error)
	RenderPage(page int, size coords.Size) (*image.RGBA, error)
}

// ClampDevicePixelRatio bounds dpr to the supported range.
func ClampDevicePixelRatio(dpr float32) float32 {
	return min(max(dpr, MinDevicePixelRatio), MaxDevicePixelRatio)
}

// ImageSize computes the thumbnail size for a page of the given size in
// points, using the default byte cap.
func ImageSize(page coords.SizeF, dpr float32) coords.Size {
	return imageSize(page, dpr, DefaultMaxBytes)
}

func imageSize(page coords.SizeF, dpr float32, maxBytes int) coords.Size {
	if page.Width <= 0 || page.Height <= 0 {
		return coords.Size{}
	}
	d := float64(ClampDevicePixelRatio(dpr))
	maxWidth := float64(MaxPortraitWidth)
	if page.Width >= page.Height {
		maxWidth = MaxLandscapeWidth
	}
	scale := maxWidth * d / page.Width
	size := coords.Size{
		Width:  max(int(math.Round(page.Width*scale)), 1),
		Height: max(int(math.Round(page.Height*scale)), 1),
	}
	maxArea := float64(maxBytes) / 4
	if area := float64(size.Width * size.Height); area > maxArea {
		f := math.Sqrt(maxArea / area)
		size.Width = max(int(math.Floor(float64(size.Width)*f)), 1)
		size.Height = max(int(math.Floor(float64(size.Height)*f)), 1)
	}
	return size
}

type Option func(*Generator)

func WithLogger(l observability.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func WithTracer(t observability.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxBytes = n
		}
	}
}

type pending struct {
	dpr float32
	cb  Callback
}

// Generator keeps at most one pending request per page.
type Generator struct {
	log      observability.Logger
	tracer   observability.Tracer
	src      Source
	maxBytes int
	pending  map[int]pending
}

func NewGenerator(src Source, opts ...Option) *Generator {
	g := &Generator{
		log:      observability.NopLogger{},
		tracer:   observability.NopTracer(),
		src:      src,
		maxBytes: DefaultMaxBytes,
		pending:  make(map[int]pending),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request renders now when the page is available and otherwise parks
// the callback until PageAvailable. A second request for a parked page
// is refused.
func (g *Generator) Request(page int, dpr float32, available bool, cb Callback) error {
	if _, ok := g.pending[page]; ok {
		return fmt.Errorf("%w: %d", ErrRedundantRequest, page)
	}
	if !available {
		g.pending[page] = pending{dpr: dpr, cb: cb}
		g.log.Debug("thumbnail deferred", observability.Int("page", page))
		return nil
	}
	g.generate(page, dpr, cb)
	return nil
}

// IsPending reports whether a request for page waits on availability.
func (g *Generator) IsPending(page int) bool {
	_, ok := g.pending[page]
	return ok
}

// PageAvailable fires the parked request for page, if any.
func (g *Generator) PageAvailable(page int) {
	p, ok := g.pending[page]
	if !ok {
		return
	}
	delete(g.pending, page)
	g.generate(page, p.dpr, p.cb)
}

func (g *Generator) generate(page int, dpr float32, cb Callback) {
	t, err := g.Generate(page, dpr)
	if err != nil {
		g.log.Warn("thumbnail failed", observability.Int("page", page), observability.Error("error", err))
	}
	cb(t, err)
}

// Generate renders the thumbnail of page synchronously.
func (g *Generator) Generate(page int, dpr float32) (Thumbnail, error) {
	_, span := g.tracer.StartSpan(context.Background(), observability.MetricThumbnailTime)
	defer span.Finish()
	span.SetTag("page", page)

	dpr = ClampDevicePixelRatio(dpr)
	pageSize, err := g.src.PageSize(page)
	if err != nil {
		span.SetError(err)
		return Thumbnail{DevicePixelRatio: dpr}, err
	}
	size := imageSize(pageSize, dpr, g.maxBytes)
	if size.IsEmpty() {
		return Thumbnail{Image: image.NewRGBA(image.Rect(0, 0, 0, 0)), DevicePixelRatio: dpr}, nil
	}
	big, err := g.src.RenderPage(page, coords.Size{Width: size.Width * supersample, Height: size.Height * supersample})
	if err != nil {
		span.SetError(err)
		return Thumbnail{DevicePixelRatio: dpr}, err
	}
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(img, img.Bounds(), big, big.Bounds(), draw.Src, nil)
	return Thumbnail{Image: img, DevicePixelRatio: dpr}, nil
}
