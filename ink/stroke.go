package ink

import (
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
)

// StrokeID is assigned by the host, per page.
type StrokeID int

// ShapeID names a stroke found in the document. Shape ids never collide
// with stroke ids because they live in a separate table.
type ShapeID int

type BrushType int

const (
	Pen BrushType = iota
	Highlighter
)

func (b BrushType) String() string {
	if b == Highlighter {
		return "highlighter"
	}
	return "pen"
}

// HighlighterAlpha is the opacity highlighter strokes are written with.
const HighlighterAlpha = 102

type Brush struct {
	Type  BrushType
	Color color.NRGBA
	// Size is the stroke width in points.
	Size float64
}

// InputPoint is a sample in canonical page space: points from the
// top-left corner of the unrotated page.
type InputPoint struct {
	Point coords.Point
	Time  time.Duration
}

type Stroke struct {
	Brush  Brush
	Inputs []InputPoint
}

// markNamespace seeds the NM of every ink mark.
var markNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/wudi/pdfengine/ink"))

// markName derives a stable NM from the stroke and where it lives, so
// saving the same strokes always writes the same bytes.
func markName(page int, id StrokeID, s Stroke) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(page))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(int(id)))
	b.WriteByte('/')
	b.WriteString(s.Brush.Type.String())
	for _, in := range s.Inputs {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(in.Point.X, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(in.Point.Y, 'g', -1, 64))
	}
	return uuid.NewSHA1(markNamespace, []byte(b.String())).String()
}

// toPath converts a stroke to user space on a page with media box box.
func toPath(s Stroke, box coords.Box) *document.Path {
	m := CanonicalToPage(box)
	pts := make([]coords.Point, 0, max(len(s.Inputs), 2))
	for _, in := range s.Inputs {
		pts = append(pts, m.Transform(in.Point))
	}
	if len(pts) == 1 {
		pts = append(pts, pts[0])
	}
	c := s.Brush.Color
	if s.Brush.Type == Highlighter {
		c.A = HighlighterAlpha
	}
	return &document.Path{
		Subpaths:  []document.Subpath{{Points: pts}},
		Color:     c,
		LineWidth: s.Brush.Size,
		Cap:       document.LineCapRound,
		Join:      document.LineJoinRound,
	}
}

// CanonicalToPage maps canonical page space back to user space.
func CanonicalToPage(box coords.Box) coords.Matrix {
	return coords.Matrix{1, 0, 0, -1, box.LLX, box.URY}
}

func newObject(page int, id StrokeID, s Stroke, box coords.Box) *document.PageObject {
	return &document.PageObject{
		Kind: document.PathObject,
		Path: toPath(s, box),
		Mark: &document.Mark{
			Tag:   document.InkMarkV2,
			Props: map[string]string{"NM": markName(page, id, s)},
		},
	}
}
