package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/textindex"
)

// NotifyDataArrived stores chunk at offset. Pages whose bytes are now
// complete are loaded and announced with PageAvailable, after any layout
// change they cause.
func (e *Engine) NotifyDataArrived(offset int64, chunk []byte) {
	if offset < 0 || len(chunk) == 0 {
		return
	}
	end := offset + int64(len(chunk))
	if end > int64(len(e.data)) {
		e.data = slices.Grow(e.data, int(end)-len(e.data))[:end]
	}
	copy(e.data[offset:end], chunk)

	pages := e.tracker.NotifyDataArrived(document.Range{Start: offset, End: end})
	if !e.tracker.PageCountKnown() {
		e.tryHints()
		return
	}
	e.pagesArrived(pages)
}

// tryHints installs the page table once the hint dictionary has fully
// arrived.
func (e *Engine) tryHints() bool {
	h, err := document.ParseHints(e.data[:e.tracker.CoveredPrefix()])
	if err != nil {
		if !errors.Is(err, document.ErrNoHints) {
			e.log.Warn("malformed hints", observability.Error("error", err))
		}
		return false
	}
	e.doc.Pages = make([]*document.Page, len(h.Pages))
	e.indexes = make([]*textindex.Index, len(h.Pages))
	e.log.Info("page count known", observability.Int("pages", len(h.Pages)))
	e.pagesArrived(e.tracker.SetHints(h))
	return true
}

func (e *Engine) pagesArrived(pages []int) {
	var loaded []int
	for _, page := range pages {
		if _, err := e.loadPage(page); err != nil {
			e.log.Warn("page failed to load", observability.Int("page", page), observability.Error("error", err))
			continue
		}
		loaded = append(loaded, page)
	}
	e.relayout()
	for _, page := range loaded {
		e.emit(PageAvailable{Page: page})
		e.thumbs.PageAvailable(page)
	}
}

// FinishLoading is called once the whole file has arrived. Every page
// not yet announced becomes available.
func (e *Engine) FinishLoading() error {
	if !e.tracker.PageCountKnown() && !e.tryHints() {
		return fmt.Errorf("engine: %w", document.ErrNoHints)
	}
	e.pagesArrived(e.tracker.Finish())
	e.emit(DocumentLoadComplete{})
	return nil
}

func (e *Engine) IsPageAvailable(page int) bool {
	if page < 0 || page >= len(e.doc.Pages) {
		return false
	}
	return e.doc.Pages[page] != nil || e.tracker.IsAvailable(page)
}

// LoadProgress is the fraction of file bytes received.
func (e *Engine) LoadProgress() float64 { return e.tracker.Progress() }

// loadPage parses page from the received bytes unless it is loaded.
func (e *Engine) loadPage(page int) (*document.Page, error) {
	if page < 0 || page >= len(e.doc.Pages) {
		return nil, fmt.Errorf("%w: %d", document.ErrPageOutOfRange, page)
	}
	if p := e.doc.Pages[page]; p != nil {
		return p, nil
	}
	if !e.tracker.IsAvailable(page) {
		return nil, fmt.Errorf("%w: %d", ErrPageNotAvailable, page)
	}
	h, _ := e.tracker.Hints()
	p, err := document.ParsePage(e.data, h, page)
	if err != nil {
		return nil, fmt.Errorf("engine: page %d: %w", page, err)
	}
	e.doc.Pages[page] = p
	e.indexes[page] = textindex.Build(p)
	return p, nil
}

// UnloadPage drops the parsed content of page. It is parsed again from
// the received bytes when next needed. Pages holding ink are refused
// with ErrPagePinned.
func (e *Engine) UnloadPage(page int) error {
	if page < 0 || page >= len(e.doc.Pages) {
		return e.violation(fmt.Errorf("%w: %d", document.ErrPageOutOfRange, page))
	}
	if e.ink.IsPinned(page) {
		return fmt.Errorf("%w: %d", ErrPagePinned, page)
	}
	if !e.tracker.IsAvailable(page) {
		// Appended blank pages have no bytes to come back from.
		return nil
	}
	e.doc.Pages[page] = nil
	e.indexes[page] = nil
	e.log.Debug("page unloaded", observability.Int("page", page))
	return nil
}

// IsPageLoaded reports whether page is parsed and in memory.
func (e *Engine) IsPageLoaded(page int) bool {
	return page >= 0 && page < len(e.doc.Pages) && e.doc.Pages[page] != nil
}

// AppendBlankPages adds n empty pages the size of the last page. The
// document must have finished loading.
func (e *Engine) AppendBlankPages(n int) error {
	if !e.tracker.Finished() {
		return e.violation(ErrLoading)
	}
	size := document.LetterSize
	if k := len(e.doc.Pages); k > 0 && e.doc.Pages[k-1] != nil {
		size = e.doc.Pages[k-1].Size()
	}
	for range n {
		p := &document.Page{MediaBox: coords.Box{URX: size.Width, URY: size.Height}}
		e.doc.Pages = append(e.doc.Pages, p)
		e.indexes = append(e.indexes, textindex.Build(p))
	}
	e.relayout()
	return nil
}
