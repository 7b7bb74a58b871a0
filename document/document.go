// Package document is the native document model the engine drives: pages,
// their text and path objects, annotations and form fields, plus a
// deterministic writer and a reader for the files it produces.
package document

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/wudi/pdfengine/coords"
)

// InkMarkV2 tags marked content that holds an ink stroke. Readers treat
// any path inside a sequence with this tag as an ink shape.
const InkMarkV2 = "PDFENGINE_INK_V2"

var (
	ErrPageOutOfRange = errors.New("document: page index out of range")
	ErrPageNotLoaded  = errors.New("document: page not loaded")
	ErrObjectNotFound = errors.New("document: object not on page")
)

// LetterSize is used for pages whose size is not known yet.
var LetterSize = coords.SizeF{Width: 612, Height: 792}

type Document struct {
	Info Info
	// Dests maps destination names to views.
	Dests map[string]Destination
	// Pages holds one slot per page. A nil slot is a page that has not been
	// loaded yet.
	Pages []*Page
}

// Info is the document information dictionary. Zero dates are absent.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	Created  time.Time
	Modified time.Time
}

// Destination is a named view of a page: a fit type such as XYZ and its
// parameters. A NaN parameter is null and leaves that part of the view
// unchanged.
type Destination struct {
	Page   int
	View   string
	Params []float64
}

// New returns an empty document.
func New() *Document { return &Document{} }

type Page struct {
	MediaBox    coords.Box
	Rotate      coords.Rotation
	Objects     []*PageObject
	Annotations []*Annotation
}

// Size returns the unrotated page size in points.
func (p *Page) Size() coords.SizeF { return p.MediaBox.Size() }

// RotatedSize returns the page size after applying /Rotate.
func (p *Page) RotatedSize() coords.SizeF {
	if p.Rotate.Transposes() {
		return p.Size().Transpose()
	}
	return p.Size()
}

// TextRuns returns the page's text objects in content order.
func (p *Page) TextRuns() []*TextRun {
	var out []*TextRun
	for _, o := range p.Objects {
		if o.Kind == TextObject && o.Text != nil {
			out = append(out, o.Text)
		}
	}
	return out
}

type ObjectKind int

const (
	TextObject ObjectKind = iota
	PathObject
)

func (k ObjectKind) String() string {
	switch k {
	case TextObject:
		return "text"
	case PathObject:
		return "path"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// PageObject is one drawable element of a page's content.
type PageObject struct {
	Kind ObjectKind
	Text *TextRun
	Path *Path
	// Mark is the marked-content sequence enclosing the object, if any.
	Mark *Mark
}

// HasMark reports whether the object sits in a sequence tagged tag.
func (o *PageObject) HasMark(tag string) bool { return o.Mark != nil && o.Mark.Tag == tag }

// TextRun is a single line of text set in MonoFont.
type TextRun struct {
	// X, Y is the baseline origin in user space.
	X, Y     float64
	FontSize float64
	Text     string
}

type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Subpath is a polyline in user space.
type Subpath struct {
	Points []coords.Point
	Closed bool
}

// Path is a stroked and optionally filled polyline set. The alpha channel
// of Color is written as the stroke opacity.
type Path struct {
	Subpaths  []Subpath
	Color     color.NRGBA
	LineWidth float64
	Cap       LineCap
	Join      LineJoin
	Fill      bool
}

// Bounds returns the user-space bounds of the path including half the line
// width.
func (p *Path) Bounds() coords.Box {
	first := true
	var b coords.Box
	for _, sp := range p.Subpaths {
		for _, pt := range sp.Points {
			pb := coords.Box{LLX: pt.X, LLY: pt.Y, URX: pt.X, URY: pt.Y}
			if first {
				b = pb
				first = false
				continue
			}
			b = b.Union(pb)
		}
	}
	return b.Expand(p.LineWidth / 2)
}

// Mark is a marked-content tag with a flat property list.
type Mark struct {
	Tag   string
	Props map[string]string
}

type AnnotSubtype string

const (
	AnnotLink      AnnotSubtype = "Link"
	AnnotWidget    AnnotSubtype = "Widget"
	AnnotHighlight AnnotSubtype = "Highlight"
)

// Focusable reports whether keyboard focus can land on the subtype.
func (s AnnotSubtype) Focusable() bool {
	switch s {
	case AnnotLink, AnnotWidget, AnnotHighlight:
		return true
	}
	return false
}

type Annotation struct {
	Subtype AnnotSubtype
	Rect    coords.Box
	// URI is the target of a link annotation.
	URI      string
	Contents string
	Color    color.NRGBA
	Field    *Field
}

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldPushButton
	FieldCheckBox
	FieldComboBox
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldPushButton:
		return "button"
	case FieldCheckBox:
		return "checkbox"
	case FieldComboBox:
		return "combobox"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Editable reports whether the field takes typed text.
func (k FieldKind) Editable() bool { return k == FieldText || k == FieldComboBox }

type Field struct {
	Name     string
	Kind     FieldKind
	Value    string
	ReadOnly bool
	// FocusScript is JavaScript run when the field gains focus.
	FocusScript string
}

// FieldByName searches loaded pages for a widget named name.
func (d *Document) FieldByName(name string) *Field {
	for _, p := range d.Pages {
		if p == nil {
			continue
		}
		for _, a := range p.Annotations {
			if a.Field != nil && a.Field.Name == name {
				return a.Field
			}
		}
	}
	return nil
}

// Page returns the loaded page at index.
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, index)
	}
	if d.Pages[index] == nil {
		return nil, fmt.Errorf("%w: %d", ErrPageNotLoaded, index)
	}
	return d.Pages[index], nil
}

// Loaded reports whether every page slot is filled.
func (d *Document) Loaded() bool {
	for _, p := range d.Pages {
		if p == nil {
			return false
		}
	}
	return true
}
