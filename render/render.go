// Package render rasterizes pages of the native document model.
package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

var ErrEmptySize = errors.New("render: empty output size")

// Request describes one rasterization.
type Request struct {
	// Size is the output size in pixels.
	Size coords.Size
	// Rotation is the total clockwise rotation, page and view combined.
	Rotation coords.Rotation
	// Overlay paths are drawn last, in user space. Interactive renders
	// pass the stroke being drawn here.
	Overlay []*document.Path
	// FormHighlight fills form widgets when its alpha is non-zero.
	FormHighlight color.NRGBA
	// Highlights are user-space boxes filled with HighlightColor under
	// the page content.
	Highlights []coords.Box
}

// HighlightColor marks text found through a link to a text fragment.
var HighlightColor = color.NRGBA{R: 255, G: 150, A: 100}

type Option func(*Renderer)

func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

func WithFontFace(f font.Face) Option {
	return func(r *Renderer) { r.face = f }
}

type Renderer struct {
	log  observability.Logger
	face font.Face
}

func New(opts ...Option) *Renderer {
	r := &Renderer{log: observability.NopLogger{}, face: basicfont.Face7x13}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderPage draws p onto a white image of req.Size.
func (r *Renderer) RenderPage(p *document.Page, req Request) (*image.RGBA, error) {
	if req.Size.IsEmpty() {
		return nil, ErrEmptySize
	}
	m := coords.DeviceFromPage(p.MediaBox, req.Rotation, req.Size)
	scale := math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))

	dc := gg.NewContext(req.Size.Width, req.Size.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(r.face)

	for _, a := range p.Annotations {
		switch {
		case a.Subtype == document.AnnotHighlight:
			fillBox(dc, m, a.Rect, a.Color)
		case a.Subtype == document.AnnotWidget && req.FormHighlight.A > 0:
			fillBox(dc, m, a.Rect, req.FormHighlight)
		}
	}
	for _, box := range req.Highlights {
		fillBox(dc, m, box, HighlightColor)
	}
	for _, o := range p.Objects {
		switch o.Kind {
		case document.TextObject:
			if o.Text != nil {
				r.drawText(dc, m, scale, req.Rotation, o.Text)
			}
		case document.PathObject:
			if o.Path != nil {
				drawPath(dc, m, scale, o.Path)
			}
		}
	}
	for _, path := range req.Overlay {
		drawPath(dc, m, scale, path)
	}
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, errors.New("render: unexpected image type")
	}
	return img, nil
}

func fillBox(dc *gg.Context, m coords.Matrix, box coords.Box, c color.NRGBA) {
	b := m.TransformBox(box)
	dc.SetColor(c)
	dc.DrawRectangle(b.LLX, b.LLY, b.Width(), b.Height())
	dc.Fill()
}

func drawPath(dc *gg.Context, m coords.Matrix, scale float64, p *document.Path) {
	dc.SetColor(p.Color)
	dc.SetLineWidth(math.Max(p.LineWidth*scale, 1))
	dc.SetLineCap(lineCap(p.Cap))
	dc.SetLineJoin(lineJoin(p.Join))
	for _, sp := range p.Subpaths {
		for i, pt := range sp.Points {
			d := m.Transform(pt)
			if i == 0 {
				dc.MoveTo(d.X, d.Y)
			} else {
				dc.LineTo(d.X, d.Y)
			}
		}
		if sp.Closed {
			dc.ClosePath()
		}
	}
	if p.Fill {
		dc.FillPreserve()
	}
	dc.Stroke()
}

// drawText scales the bitmap face to the run's size and turns it with
// the page.
func (r *Renderer) drawText(dc *gg.Context, m coords.Matrix, scale float64, rot coords.Rotation, t *document.TextRun) {
	origin := m.Transform(coords.Point{X: t.X, Y: t.Y})
	em := float64(r.face.Metrics().Height.Round())
	if em <= 0 {
		return
	}
	dc.Push()
	dc.SetRGB(0, 0, 0)
	dc.Translate(origin.X, origin.Y)
	dc.Rotate(gg.Radians(float64(rot.Degrees())))
	s := t.FontSize * scale / em
	dc.Scale(s, s)
	dc.DrawString(t.Text, 0, 0)
	dc.Pop()
}

func lineCap(c document.LineCap) gg.LineCap {
	switch c {
	case document.LineCapRound:
		return gg.LineCapRound
	case document.LineCapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

func lineJoin(j document.LineJoin) gg.LineJoin {
	if j == document.LineJoinRound {
		return gg.LineJoinRound
	}
	return gg.LineJoinBevel
}
