// Package layout places pages in document space for one-up and two-up
// spreads. All geometry is in device pixels at zoom 1.
package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/observability"
)

// SpreadMode selects how many pages share a row.
type SpreadMode int

const (
	OneUp SpreadMode = iota
	// TwoUpOdd pairs pages (0,1), (2,3), ... so odd indexes sit on the right.
	TwoUpOdd
)

var ErrUnknownSpread = errors.New("layout: unknown spread mode")

func (m SpreadMode) String() string {
	switch m {
	case OneUp:
		return "one-up"
	case TwoUpOdd:
		return "two-up-odd"
	default:
		return fmt.Sprintf("SpreadMode(%d)", int(m))
	}
}

// ParseSpreadMode accepts the names produced by String.
func ParseSpreadMode(s string) (SpreadMode, error) {
	switch s {
	case "", "one-up":
		return OneUp, nil
	case "two-up-odd":
		return TwoUpOdd, nil
	}
	return OneUp, fmt.Errorf("%w: %q", ErrUnknownSpread, s)
}

// Options is a value type; equal options always produce equal layouts.
type Options struct {
	DefaultRotation coords.Rotation
	Spread          SpreadMode
}

func (o *Options) RotateClockwise()        { o.DefaultRotation = o.DefaultRotation.Clockwise() }
func (o *Options) RotateCounterclockwise() { o.DefaultRotation = o.DefaultRotation.Counterclockwise() }

var (
	// SingleViewInsets surround every page in one-up mode.
	SingleViewInsets = coords.Insets{Top: 3, Left: 5, Bottom: 7, Right: 5}
	// BottomSeparator is the gap between consecutive one-up pages.
	BottomSeparator = 4
	// HorizontalSeparator replaces the inner inset of a two-up pair.
	HorizontalSeparator = 1
)

// PageLayout holds a page's rect with and without its insets.
type PageLayout struct {
	Outer coords.Rect
	Inner coords.Rect
}

type Option func(*Layout)

func WithLogger(l observability.Logger) Option {
	return func(d *Layout) { d.log = l }
}

// WithOptions sets the initial options without marking the layout dirty.
func WithOptions(o Options) Option {
	return func(d *Layout) { d.options = o }
}

// Layout owns every page rect. Rects are recomputed from scratch by
// ComputeLayout and never edited in place.
type Layout struct {
	log     observability.Logger
	options Options
	dirty   bool
	size    coords.Size
	pages   []PageLayout
}

func New(opts ...Option) *Layout {
	d := &Layout{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Layout) Options() Options { return d.options }

// SetOptions marks the layout dirty only when o differs.
func (d *Layout) SetOptions(o Options) {
	if o == d.options {
		return
	}
	d.options = o
	d.dirty = true
}

// Dirty reports whether the host has not yet seen the current layout.
func (d *Layout) Dirty() bool { return d.dirty }
func (d *Layout) MarkClean()  { d.dirty = false }

func (d *Layout) Size() coords.Size { return d.size }
func (d *Layout) PageCount() int    { return len(d.pages) }

// Page returns the layout of page i, or a zero value when out of range.
func (d *Layout) Page(i int) PageLayout {
	if i < 0 || i >= len(d.pages) {
		return PageLayout{}
	}
	return d.pages[i]
}

// Pages returns a copy of every page layout.
func (d *Layout) Pages() []PageLayout { return slices.Clone(d.pages) }

// PageAt returns the page whose inner rect contains p, or -1.
func (d *Layout) PageAt(p coords.Point) int {
	for i, pl := range d.pages {
		if pl.Inner.Contains(p) {
			return i
		}
	}
	return -1
}

// ComputeLayout lays out pages of the given unrotated pixel sizes.
func (d *Layout) ComputeLayout(sizes []coords.Size) {
	rotated := make([]coords.Size, len(sizes))
	for i, s := range sizes {
		if d.options.DefaultRotation.Transposes() {
			s = s.Transpose()
		}
		rotated[i] = s
	}
	var (
		pages []PageLayout
		size  coords.Size
	)
	switch d.options.Spread {
	case TwoUpOdd:
		pages, size = twoUp(rotated)
	default:
		pages, size = oneUp(rotated)
	}
	if !slices.Equal(pages, d.pages) {
		d.pages = pages
		d.dirty = true
	}
	if size != d.size {
		d.size = size
		d.dirty = true
	}
	if d.dirty {
		d.log.Debug("layout computed",
			observability.Int("pages", len(pages)),
			observability.Int("width", size.Width),
			observability.Int("height", size.Height),
			observability.String("spread", d.options.Spread.String()))
	}
}

func oneUp(sizes []coords.Size) ([]PageLayout, coords.Size) {
	in := SingleViewInsets
	var doc coords.Size
	pages := make([]PageLayout, len(sizes))
	for i, s := range sizes {
		if i > 0 {
			doc.Height += BottomSeparator
		}
		outer := coords.Rect{Y: doc.Height, Width: s.Width + in.Width(), Height: s.Height + in.Height()}
		doc.Width = max(doc.Width, outer.Width)
		doc.Height += outer.Height
		pages[i].Outer = outer
	}
	for i := range pages {
		pages[i].Outer.X = (doc.Width - pages[i].Outer.Width) / 2
		pages[i].Inner = pages[i].Outer.Inset(in)
	}
	return pages, doc
}

func twoUp(sizes []coords.Size) ([]PageLayout, coords.Size) {
	insets := make([]coords.Insets, len(sizes))
	half := 0
	for i, s := range sizes {
		insets[i] = twoUpInsets(i, len(sizes))
		half = max(half, s.Width+insets[i].Width())
	}
	var doc coords.Size
	pages := make([]PageLayout, len(sizes))
	for i := 0; i < len(sizes); i += 2 {
		rowHeight := 0
		for j := i; j < min(i+2, len(sizes)); j++ {
			outer := coords.Rect{
				Y:      doc.Height,
				Width:  sizes[j].Width + insets[j].Width(),
				Height: sizes[j].Height + insets[j].Height(),
			}
			if j%2 == 0 {
				outer.X = half - outer.Width
			} else {
				outer.X = half
			}
			pages[j] = PageLayout{Outer: outer, Inner: outer.Inset(insets[j])}
			rowHeight = max(rowHeight, outer.Height)
		}
		doc.Height += rowHeight
	}
	if len(sizes) > 0 {
		doc.Width = 2 * half
	}
	return pages, doc
}

// twoUpInsets swaps the inner side for the separator. A trailing odd page
// keeps the single view insets.
func twoUpInsets(i, n int) coords.Insets {
	in := SingleViewInsets
	switch {
	case i == n-1 && n%2 == 1:
	case i%2 == 0:
		in.Right = HorizontalSeparator
	default:
		in.Left = HorizontalSeparator
	}
	return in
}
