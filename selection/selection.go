// Package selection keeps the text selection of a document: an anchor
// and a focus char, the extracted text and the highlight rects.
package selection

import (
	"runtime"
	"slices"
	"strings"
	"unicode"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/textindex"
)

// Source gives the selection read access to page text and geometry.
type Source interface {
	PageCount() int
	// TextIndex returns nil while the page is not loaded.
	TextIndex(page int) *textindex.Index
	// PageToDevice maps page user space to page-local pixels.
	PageToDevice(page int) coords.Matrix
}

// Pos addresses a char, or the gap before it when used as a range end.
type Pos struct {
	Page int
	Char int
}

func (p Pos) Less(o Pos) bool {
	if p.Page != o.Page {
		return p.Page < o.Page
	}
	return p.Char < o.Char
}

func minPos(a, b Pos) Pos {
	if b.Less(a) {
		return b
	}
	return a
}

func maxPos(a, b Pos) Pos {
	if a.Less(b) {
		return b
	}
	return a
}

// Range is the half-open span [Start, End) in document order.
type Range struct {
	Start Pos
	End   Pos
}

func (r Range) IsEmpty() bool { return !r.Start.Less(r.End) }

// PageRect is a highlight rect in page-local pixels.
type PageRect struct {
	Page int
	Rect coords.Rect
}

// PlatformLineSeparator is what GetSelectedText puts between lines.
func PlatformLineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

type Option func(*Engine)

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTolerance sets the hit distance in points.
func WithTolerance(pts float64) Option {
	return func(e *Engine) { e.tolerance = pts }
}

// WithLineSeparator overrides PlatformLineSeparator.
func WithLineSeparator(sep string) Option {
	return func(e *Engine) { e.sep = sep }
}

// Engine owns the selection state. Every mutation records the rects
// that need repainting; TakeInvalidation hands them out.
type Engine struct {
	log       observability.Logger
	src       Source
	tolerance float64
	sep       string

	active bool
	// The clicked char, word or line. collapsed marks a single click,
	// which selects nothing until extended.
	anchorStart, anchorEnd Pos
	collapsed              bool
	focus                  Pos
	extended               bool

	rects   []PageRect
	pending []PageRect
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		log:       observability.NopLogger{},
		src:       src,
		tolerance: textindex.DefaultTolerance,
		sep:       PlatformLineSeparator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) LineSeparator() string { return e.sep }

func (e *Engine) resolve(page int, p coords.Point) (*textindex.Index, int) {
	if page < 0 || page >= e.src.PageCount() {
		return nil, -1
	}
	x := e.src.TextIndex(page)
	if x == nil || x.WidgetAt(p) != nil {
		return nil, -1
	}
	return x, x.CharIndexAt(p, e.tolerance)
}

// SetAnchorAtPoint starts a selection at p, given in the page's user
// space. Two clicks select the word and three the line. It returns
// false, leaving the selection untouched, when p hits no text or a
// double click hits a char outside any word.
func (e *Engine) SetAnchorAtPoint(page int, p coords.Point, clicks int) bool {
	x, i := e.resolve(page, p)
	if i < 0 {
		return false
	}
	start, end := i, i+1
	switch {
	case clicks == 2:
		s, t, ok := x.WordAt(i)
		if !ok {
			return false
		}
		start, end = s, t
	case clicks >= 3:
		s, t, ok := x.LineAt(i)
		if !ok {
			return false
		}
		start, end = s, t
	}
	e.active = true
	e.anchorStart = Pos{page, start}
	e.anchorEnd = Pos{page, end}
	e.collapsed = clicks <= 1
	e.extended = false
	e.log.Debug("selection anchor", observability.Int("page", page), observability.Int("char", i), observability.Int("clicks", clicks))
	e.update()
	return true
}

// ExtendSelectionTo moves the focus to the char at p. The anchor and
// focus chars are both included whichever way the selection runs.
func (e *Engine) ExtendSelectionTo(page int, p coords.Point) bool {
	if !e.active {
		return false
	}
	_, i := e.resolve(page, p)
	if i < 0 {
		return false
	}
	e.focus = Pos{page, i}
	e.extended = true
	e.update()
	return true
}

// SetRange selects r directly.
func (e *Engine) SetRange(r Range) {
	if r.IsEmpty() {
		e.Clear()
		return
	}
	e.active = true
	e.anchorStart, e.anchorEnd = r.Start, r.End
	e.collapsed = false
	e.extended = false
	e.update()
}

func (e *Engine) SelectAll() {
	n := e.src.PageCount()
	if n == 0 {
		return
	}
	end := Pos{Page: n - 1}
	if x := e.src.TextIndex(n - 1); x != nil {
		end.Char = x.CharCount()
	}
	e.SetRange(Range{Start: Pos{}, End: end})
}

func (e *Engine) Clear() {
	if !e.active {
		return
	}
	e.active = false
	e.update()
}

// IsActive reports whether an anchor has been set, even a collapsed one.
func (e *Engine) IsActive() bool { return e.active }

// IsForward reports whether the focus is not before the anchor.
func (e *Engine) IsForward() bool {
	return !e.extended || !e.focus.Less(e.anchorStart)
}

// Range returns the selected span. It is empty after a single click.
func (e *Engine) Range() Range {
	switch {
	case !e.active:
		return Range{}
	case e.extended:
		return Range{
			Start: minPos(e.anchorStart, e.focus),
			End:   maxPos(e.anchorEnd, Pos{e.focus.Page, e.focus.Char + 1}),
		}
	case e.collapsed:
		return Range{Start: e.anchorStart, End: e.anchorStart}
	default:
		return Range{Start: e.anchorStart, End: e.anchorEnd}
	}
}

func (e *Engine) HasSelection() bool { return !e.Range().IsEmpty() }

// pageSpan clips r to page. ok is false when the page holds nothing of r.
func (e *Engine) pageSpan(r Range, page int) (x *textindex.Index, start, end int, ok bool) {
	x = e.src.TextIndex(page)
	if x == nil {
		return nil, 0, 0, false
	}
	start, end = 0, x.CharCount()
	if page == r.Start.Page {
		start = r.Start.Char
	}
	if page == r.End.Page {
		end = min(end, r.End.Char)
	}
	return x, start, end, start < end
}

// GetSelectedText joins the text of each spanned page with the line
// separator. Pages without selected chars add nothing.
func (e *Engine) GetSelectedText() string {
	r := e.Range()
	if r.IsEmpty() {
		return ""
	}
	var parts []string
	for page := r.Start.Page; page <= r.End.Page; page++ {
		x, start, end, ok := e.pageSpan(r, page)
		if !ok {
			continue
		}
		if s := NormalizeText(x.Text(start, end), e.sep); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, e.sep)
}

// GetSelectionRects returns one rect per selected line, by page then
// reading order.
func (e *Engine) GetSelectionRects() []PageRect {
	return slices.Clone(e.rects)
}

// TakeInvalidation returns the rects changed since the last call.
func (e *Engine) TakeInvalidation() []PageRect {
	out := e.pending
	e.pending = nil
	return out
}

// Refresh recomputes rects after page geometry changed.
func (e *Engine) Refresh() { e.update() }

func (e *Engine) update() {
	next := e.computeRects()
	e.pending = append(e.pending, diff(e.rects, next)...)
	e.rects = next
}

func (e *Engine) computeRects() []PageRect { return e.RangeRects(e.Range()) }

// RangeRects returns one page-local rect per line of r, whether or not r
// is the selection.
func (e *Engine) RangeRects(r Range) []PageRect {
	if r.IsEmpty() {
		return nil
	}
	var out []PageRect
	for page := r.Start.Page; page <= r.End.Page; page++ {
		x, start, end, ok := e.pageSpan(r, page)
		if !ok {
			continue
		}
		m := e.src.PageToDevice(page)
		for _, box := range x.LineBoxes(start, end) {
			out = append(out, PageRect{Page: page, Rect: coords.EnclosingRect(m.TransformBox(box))})
		}
	}
	return out
}

// diff returns the rects present in exactly one of a and b.
func diff(a, b []PageRect) []PageRect {
	seen := make(map[PageRect]int, len(a)+len(b))
	for _, r := range a {
		seen[r] |= 1
	}
	for _, r := range b {
		seen[r] |= 2
	}
	var out []PageRect
	for _, r := range slices.Concat(a, b) {
		if v, ok := seen[r]; ok && v != 3 {
			out = append(out, r)
			delete(seen, r)
		}
	}
	return out
}

// NormalizeText turns every line ending into sep and drops control
// chars other than tab.
func NormalizeText(s, sep string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return '\n'
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if sep != "\n" {
		s = strings.ReplaceAll(s, "\n", sep)
	}
	return s
}
