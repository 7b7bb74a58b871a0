// Package textindex gives the chars of a page an order, a box and a
// spatial index, and finds word and line boundaries around them.
package textindex

import (
	"slices"
	"sort"

	"github.com/go-text/typesetting/segmenter"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
)

// DefaultTolerance is how far, in points, a point may miss a char box
// and still hit it.
const DefaultTolerance = 20.0

const treeCapacity = 16

// Char is one entry of a page's text. The line break between two runs
// is a synthetic "\r\n" pair with no box and Run -1.
type Char struct {
	Rune      rune
	Box       coords.Box
	Run       int
	Synthetic bool
}

// Run is one text object of the page, as a char span.
type Run struct {
	Start    int
	Len      int
	Box      coords.Box
	FontSize float64
}

type span struct{ start, end int }

// Index is built once per loaded page and is read-only afterwards.
type Index struct {
	chars   []Char
	runes   []rune
	runs    []Run
	words   []span
	lines   []span
	tree    *quadTree
	links   []*document.Annotation
	widgets []*document.Annotation
}

// Build indexes the text runs and annotations of p.
func Build(p *document.Page) *Index {
	x := &Index{}
	bounds := p.MediaBox
	for ri, tr := range p.TextRuns() {
		if ri > 0 {
			x.chars = append(x.chars, Char{Rune: '\r', Run: -1, Synthetic: true}, Char{Rune: '\n', Run: -1, Synthetic: true})
		}
		boxes := tr.CharBoxes()
		run := Run{Start: len(x.chars), Len: len(boxes), Box: tr.Bounds(), FontSize: tr.FontSize}
		for i, r := range []rune(tr.Text) {
			x.chars = append(x.chars, Char{Rune: r, Box: boxes[i], Run: ri})
		}
		x.runs = append(x.runs, run)
		bounds = bounds.Union(run.Box)
	}
	x.runes = make([]rune, len(x.chars))
	x.tree = newQuadTree(bounds, treeCapacity)
	for i, c := range x.chars {
		x.runes[i] = c.Rune
		if !c.Synthetic {
			x.tree.insert(c.Box, i)
		}
	}
	for _, a := range p.Annotations {
		switch a.Subtype {
		case document.AnnotLink:
			x.links = append(x.links, a)
		case document.AnnotWidget:
			x.widgets = append(x.widgets, a)
		}
	}
	x.segment()
	return x
}

func (x *Index) segment() {
	if len(x.runes) == 0 {
		return
	}
	var seg segmenter.Segmenter
	seg.Init(x.runes)
	words := seg.WordIterator()
	for words.Next() {
		w := words.Word()
		x.words = append(x.words, span{w.Offset, w.Offset + len(w.Text)})
	}

	lines := seg.LineIterator()
	start := 0
	for lines.Next() {
		l := lines.Line()
		end := l.Offset + len(l.Text)
		if !l.IsMandatoryBreak && end < len(x.runes) {
			continue
		}
		trimmed := end
		for trimmed > start && isBreak(x.runes[trimmed-1]) {
			trimmed--
		}
		x.lines = append(x.lines, span{start, trimmed})
		start = end
	}
}

func isBreak(r rune) bool { return r == '\r' || r == '\n' }

func (x *Index) CharCount() int { return len(x.chars) }

func (x *Index) Char(i int) Char { return x.chars[i] }

// Text returns the raw page text of chars [start, end).
func (x *Index) Text(start, end int) string {
	start = max(start, 0)
	end = min(end, len(x.runes))
	if start >= end {
		return ""
	}
	return string(x.runes[start:end])
}

// TextRunAt returns the run holding char i.
func (x *Index) TextRunAt(i int) (Run, bool) {
	if i < 0 || i >= len(x.chars) || x.chars[i].Synthetic {
		return Run{}, false
	}
	return x.runs[x.chars[i].Run], true
}

func (x *Index) Runs() []Run { return slices.Clone(x.runs) }

// CharIndexAt resolves a user-space point to a char. A char whose box
// contains p wins; otherwise the nearest box within tolerance does.
// It returns -1 when nothing is close enough.
func (x *Index) CharIndexAt(p coords.Point, tolerance float64) int {
	if len(x.chars) == 0 {
		return -1
	}
	area := coords.Box{LLX: p.X, LLY: p.Y, URX: p.X, URY: p.Y}.Expand(tolerance)
	candidates := x.tree.query(area, nil)
	sort.Ints(candidates)
	for _, i := range candidates {
		if x.chars[i].Box.Contains(p) {
			return i
		}
	}
	best, bestDist := -1, tolerance
	for _, i := range candidates {
		if d := x.chars[i].Box.Distance(p); d <= bestDist && (best < 0 || d < bestDist) {
			best, bestDist = i, d
		}
	}
	return best
}

// WordAt returns the word holding char i as [start, end).
func (x *Index) WordAt(i int) (start, end int, ok bool) {
	return find(x.words, i)
}

// LineAt returns the line holding char i, without its break chars.
func (x *Index) LineAt(i int) (start, end int, ok bool) {
	return find(x.lines, i)
}

func find(spans []span, i int) (int, int, bool) {
	k := sort.Search(len(spans), func(k int) bool { return spans[k].end > i })
	if k == len(spans) || spans[k].start > i {
		return 0, 0, false
	}
	return spans[k].start, spans[k].end, true
}

// LineBoxes returns one box per run touched by chars [start, end), in
// reading order. Each box covers only the selected chars of its run.
func (x *Index) LineBoxes(start, end int) []coords.Box {
	var out []coords.Box
	run := -1
	for i := max(start, 0); i < min(end, len(x.chars)); i++ {
		c := x.chars[i]
		if c.Synthetic {
			continue
		}
		if c.Run != run {
			out = append(out, c.Box)
			run = c.Run
			continue
		}
		out[len(out)-1] = out[len(out)-1].Union(c.Box)
	}
	return out
}

// LinkAt returns the link annotation under p.
func (x *Index) LinkAt(p coords.Point) *document.Annotation {
	for _, a := range x.links {
		if a.Rect.Contains(p) {
			return a
		}
	}
	return nil
}

// WidgetAt returns the form widget under p.
func (x *Index) WidgetAt(p coords.Point) *document.Annotation {
	for _, a := range x.widgets {
		if a.Rect.Contains(p) {
			return a
		}
	}
	return nil
}

// IsSelectableTextOrLinkArea is false over widgets and true over text
// within tolerance or inside a link.
func (x *Index) IsSelectableTextOrLinkArea(p coords.Point, tolerance float64) bool {
	if x.WidgetAt(p) != nil {
		return false
	}
	return x.CharIndexAt(p, tolerance) >= 0 || x.LinkAt(p) != nil
}
