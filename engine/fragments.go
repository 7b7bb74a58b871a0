package engine

import (
	"slices"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/search"
	"github.com/wudi/pdfengine/selection"
)

// HighlightTextFragments replaces the text fragment highlights with the
// first match of each fragment and scrolls the first highlight into
// view. Fragments that do not parse or do not match are skipped. An
// empty list clears the highlights.
func (e *Engine) HighlightTextFragments(fragments []string) {
	old := e.TextFragmentRects()
	e.fragments = nil
	texts := e.pageTexts()
	for _, s := range fragments {
		f, err := search.ParseFragment(s)
		if err != nil {
			e.log.Debug("text fragment skipped", observability.String("fragment", s), observability.Error("error", err))
			continue
		}
		if m, ok := e.searcher.FindFragment(texts, f); ok {
			e.fragments = append(e.fragments, m)
		}
	}
	rects := e.TextFragmentRects()
	e.invalidateRects(slices.Concat(old, rects))
	e.scrollToRects(rects)
}

// TextFragmentRects returns the page-local rects of every highlighted
// fragment, one per line.
func (e *Engine) TextFragmentRects() []selection.PageRect {
	var out []selection.PageRect
	for _, m := range e.fragments {
		out = append(out, e.selection.RangeRects(matchRange(m))...)
	}
	return out
}

// fragmentBoxes returns the user-space line boxes highlighted on page.
func (e *Engine) fragmentBoxes(page int) []coords.Box {
	x := e.TextIndex(page)
	if x == nil {
		return nil
	}
	var out []coords.Box
	for _, m := range e.fragments {
		if m.Page == page {
			out = append(out, x.LineBoxes(m.Start, m.End)...)
		}
	}
	return out
}
