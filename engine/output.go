package engine

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/render"
	"github.com/wudi/pdfengine/search"
	"github.com/wudi/pdfengine/selection"
	"github.com/wudi/pdfengine/thumbnail"
)

// RenderPage rasterizes page at its laid out size times the zoom. Active
// ink is materialized first. Interactive renders also draw the stroke
// still being drawn and the form highlight.
func (e *Engine) RenderPage(page int, interactive bool) (*image.RGBA, error) {
	_, span := e.tracer.StartSpan(context.Background(), observability.MetricRenderTime)
	defer span.Finish()
	size := e.layout.Page(page).Inner.ScaleToEnclosing(e.zoom).Size()
	img, err := e.render(page, size, interactive)
	if err != nil {
		span.SetError(err)
	}
	return img, err
}

func (e *Engine) render(page int, size coords.Size, interactive bool) (*image.RGBA, error) {
	p, err := e.loadPage(page)
	if err != nil {
		if errors.Is(err, document.ErrPageOutOfRange) {
			return nil, e.violation(err)
		}
		return nil, err
	}
	if err := e.materialize(page); err != nil {
		return nil, err
	}
	req := render.Request{Size: size, Rotation: e.rotation(p)}
	if interactive {
		if path, ok := e.ink.TransientPath(page); ok {
			req.Overlay = append(req.Overlay, path)
		}
		if e.formOn && !e.readOnly {
			req.FormHighlight = e.formColor
		}
		req.Highlights = e.fragmentBoxes(page)
	}
	return e.renderer.RenderPage(p, req)
}

// thumbSource renders thumbnails without the view rotation, the
// transient stroke or the form highlight.
type thumbSource struct{ e *Engine }

func (s thumbSource) PageSize(page int) (coords.SizeF, error) {
	p, err := s.e.loadPage(page)
	if err != nil {
		return coords.SizeF{}, err
	}
	return p.RotatedSize(), nil
}

func (s thumbSource) RenderPage(page int, size coords.Size) (*image.RGBA, error) {
	p, err := s.e.loadPage(page)
	if err != nil {
		return nil, err
	}
	if err := s.e.materialize(page); err != nil {
		return nil, err
	}
	return s.e.renderer.RenderPage(p, render.Request{Size: size, Rotation: p.Rotate})
}

// RequestThumbnail produces a thumbnail of page now if it is available,
// or once it arrives. cb runs exactly once; with a nil cb the result is
// queued as ThumbnailReady. A second request for a page still waiting
// is a contract violation.
func (e *Engine) RequestThumbnail(page int, dpr float32, cb thumbnail.Callback) error {
	if page < 0 || page >= len(e.doc.Pages) {
		return e.violation(fmt.Errorf("%w: %d", document.ErrPageOutOfRange, page))
	}
	if cb == nil {
		cb = func(t thumbnail.Thumbnail, err error) {
			e.emit(ThumbnailReady{Page: page, Thumbnail: t, Err: err})
		}
	}
	if err := e.thumbs.Request(page, dpr, e.IsPageAvailable(page), cb); err != nil {
		return e.violation(err)
	}
	return nil
}

// GetSaveData writes the document with its active ink. Output depends
// only on content, so saving twice yields the same bytes.
func (e *Engine) GetSaveData() ([]byte, error) {
	_, span := e.tracer.StartSpan(context.Background(), observability.MetricSaveTime)
	defer span.Finish()

	for page := range e.doc.Pages {
		if _, err := e.loadPage(page); err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("engine: save: %w", err)
		}
	}
	if err := e.loadHeader(); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("engine: save: %w", err)
	}
	if err := e.ink.MaterializeAll(); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("engine: save: %w", err)
	}
	data, _, err := e.doc.Bytes(document.Config{})
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("engine: save: %w", err)
	}
	span.SetTag("bytes", len(data))
	e.log.Info("document saved", observability.Int("bytes", len(data)), observability.Int("pages", len(e.doc.Pages)))
	return data, nil
}

// GetPageText returns the text of page with lines joined by the line
// separator.
func (e *Engine) GetPageText(page int) string {
	x := e.TextIndex(page)
	if x == nil {
		return ""
	}
	return selection.NormalizeText(x.Text(0, x.CharCount()), e.selection.LineSeparator())
}

// pageTexts returns the raw text of every page, empty for pages not
// loaded. Char offsets line up with the text indexes.
func (e *Engine) pageTexts() []string {
	texts := make([]string, len(e.doc.Pages))
	for page := range texts {
		if x := e.TextIndex(page); x != nil {
			texts[page] = x.Text(0, x.CharCount())
		}
	}
	return texts
}

// GetPageSizeInPoints returns the rotated size of page.
func (e *Engine) GetPageSizeInPoints(page int) (coords.SizeF, error) {
	p, err := e.loadPage(page)
	if err != nil {
		return coords.SizeF{}, err
	}
	return p.RotatedSize(), nil
}

// Find searches the text of every available page and remembers the
// matches for SelectFindResult.
func (e *Engine) Find(term string, caseSensitive bool) []search.Match {
	e.findResults = e.searcher.Find(e.pageTexts(), term, caseSensitive)
	return e.findResults
}

// SelectFindResult selects match i of the last Find and scrolls it into
// view.
func (e *Engine) SelectFindResult(i int) error {
	if i < 0 || i >= len(e.findResults) {
		return e.violation(fmt.Errorf("%w: %d", ErrNoFindResult, i))
	}
	e.selection.SetRange(matchRange(e.findResults[i]))
	e.flushSelection()
	e.scrollToRects(e.selection.GetSelectionRects())
	return nil
}

func matchRange(m search.Match) selection.Range {
	return selection.Range{
		Start: selection.Pos{Page: m.Page, Char: m.Start},
		End:   selection.Pos{Page: m.Page, Char: m.End},
	}
}

// scrollToRects brings the first of rects into view.
func (e *Engine) scrollToRects(rects []selection.PageRect) {
	if len(rects) == 0 {
		return
	}
	inner := e.layout.Page(rects[0].Page).Inner
	e.scrollIntoView(rects[0].Rect.Offset(inner.X, inner.Y))
}
