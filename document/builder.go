package document

import (
	"image/color"

	"github.com/wudi/pdfengine/coords"
)

// Builder assembles documents in code. Coordinates are user space with
// the origin at the bottom-left of the media box.
type Builder struct {
	doc  *Document
	page *Page
}

func NewBuilder() *Builder { return &Builder{doc: New()} }

// Title sets the document title.
func (b *Builder) Title(t string) *Builder {
	b.doc.Info.Title = t
	return b
}

// Info replaces the whole information dictionary.
func (b *Builder) Info(info Info) *Builder {
	b.doc.Info = info
	return b
}

// Destination names a view of page.
func (b *Builder) Destination(name string, page int, view string, params ...float64) *Builder {
	if b.doc.Dests == nil {
		b.doc.Dests = make(map[string]Destination)
	}
	b.doc.Dests[name] = Destination{Page: page, View: view, Params: params}
	return b
}

// AddPage starts a new page of the given size in points.
func (b *Builder) AddPage(size coords.SizeF) *Builder {
	return b.AddRotatedPage(size, coords.Rotate0)
}

func (b *Builder) AddRotatedPage(size coords.SizeF, rot coords.Rotation) *Builder {
	b.page = &Page{MediaBox: coords.Box{URX: size.Width, URY: size.Height}, Rotate: rot}
	b.doc.Pages = append(b.doc.Pages, b.page)
	return b
}

func (b *Builder) current() *Page {
	if b.page == nil {
		b.AddPage(LetterSize)
	}
	return b.page
}

// Text places one line of text with its baseline at (x, y).
func (b *Builder) Text(x, y, size float64, s string) *Builder {
	p := b.current()
	p.Objects = append(p.Objects, &PageObject{Kind: TextObject, Text: &TextRun{X: x, Y: y, FontSize: size, Text: s}})
	return b
}

// Line strokes a straight segment.
func (b *Builder) Line(from, to coords.Point, width float64, c color.NRGBA) *Builder {
	p := b.current()
	p.Objects = append(p.Objects, &PageObject{Kind: PathObject, Path: &Path{
		Subpaths:  []Subpath{{Points: []coords.Point{from, to}}},
		Color:     c,
		LineWidth: width,
	}})
	return b
}

// Link adds a URI link annotation over rect.
func (b *Builder) Link(rect coords.Box, uri string) *Builder {
	p := b.current()
	p.Annotations = append(p.Annotations, &Annotation{Subtype: AnnotLink, Rect: rect, URI: uri})
	return b
}

// TextField adds a text widget.
func (b *Builder) TextField(rect coords.Box, name, value string) *Builder {
	return b.Field(rect, &Field{Name: name, Kind: FieldText, Value: value})
}

// Button adds a push button widget.
func (b *Builder) Button(rect coords.Box, name string) *Builder {
	return b.Field(rect, &Field{Name: name, Kind: FieldPushButton})
}

// Field adds a widget for f.
func (b *Builder) Field(rect coords.Box, f *Field) *Builder {
	p := b.current()
	p.Annotations = append(p.Annotations, &Annotation{Subtype: AnnotWidget, Rect: rect, Field: f})
	return b
}

// Highlight adds a highlight annotation.
func (b *Builder) Highlight(rect coords.Box, c color.NRGBA) *Builder {
	p := b.current()
	p.Annotations = append(p.Annotations, &Annotation{Subtype: AnnotHighlight, Rect: rect, Color: c})
	return b
}

// Object appends a prepared page object.
func (b *Builder) Object(o *PageObject) *Builder {
	p := b.current()
	p.Objects = append(p.Objects, o)
	return b
}

func (b *Builder) Document() *Document { return b.doc }
