package engine

import (
	"context"
	"math"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/layout"
	"github.com/wudi/pdfengine/observability"
)

// PluginSizeUpdated records the viewport size in screen pixels. An empty
// size is accepted and changes nothing else.
func (e *Engine) PluginSizeUpdated(size coords.Size) {
	e.pluginSize = size
	e.tracker.SetViewportSize(size)
}

func (e *Engine) ScrolledToXPosition(x int) { e.scroll.X = float64(x) }
func (e *Engine) ScrolledToYPosition(y int) { e.scroll.Y = float64(y) }

// SetZoom sets the scale from layout pixels to screen pixels.
func (e *Engine) SetZoom(zoom float64) {
	if zoom <= 0 || zoom == e.zoom {
		return
	}
	e.zoom = zoom
	e.invalidateAll()
}

func (e *Engine) Zoom() float64 { return e.zoom }

// LayoutOptions returns the options of the current layout.
func (e *Engine) LayoutOptions() layout.Options { return e.layout.Options() }

// DocumentSize is the laid out size at zoom 1.
func (e *Engine) DocumentSize() coords.Size { return e.layout.Size() }

// PageLayout returns the rects of page at zoom 1.
func (e *Engine) PageLayout(page int) layout.PageLayout { return e.layout.Page(page) }

// ProposeLayout applies o and returns the document size. The host hears
// about the layout through DocumentLayoutChanged, once per change. The
// page count must be known, though a document without pages is fine.
func (e *Engine) ProposeLayout(o layout.Options) (coords.Size, error) {
	if !e.tracker.PageCountKnown() {
		return coords.Size{}, e.violation(ErrPageCountUnknown)
	}
	e.layout.SetOptions(o)
	if len(e.doc.Pages) == 0 {
		return coords.Size{}, nil
	}
	e.relayout()
	return e.layout.Size(), nil
}

func (e *Engine) RotateClockwise() error {
	o := e.layout.Options()
	o.RotateClockwise()
	_, err := e.ProposeLayout(o)
	return err
}

func (e *Engine) RotateCounterclockwise() error {
	o := e.layout.Options()
	o.RotateCounterclockwise()
	_, err := e.ProposeLayout(o)
	return err
}

// relayout lays the pages out again and tells the host if anything
// moved. Pages that have not arrived take the size of the first loaded
// page.
func (e *Engine) relayout() {
	if len(e.doc.Pages) == 0 {
		return
	}
	_, span := e.tracer.StartSpan(context.Background(), observability.MetricLayoutTime)
	defer span.Finish()

	placeholder := document.LetterSize
	for _, p := range e.doc.Pages {
		if p != nil {
			placeholder = p.RotatedSize()
			break
		}
	}
	sizes := make([]coords.Size, len(e.doc.Pages))
	for i, p := range e.doc.Pages {
		s := placeholder
		if p != nil {
			s = p.RotatedSize()
		}
		sizes[i] = s.ToPixels()
	}
	e.layout.ComputeLayout(sizes)
	if !e.layout.Dirty() {
		return
	}
	e.layout.MarkClean()
	e.selection.Refresh()
	e.selection.TakeInvalidation()
	e.emit(DocumentLayoutChanged{Size: e.layout.Size(), Pages: e.layout.Pages()})
	e.invalidateAll()
}

// rotation is the total clockwise rotation of page on screen.
func (e *Engine) rotation(p *document.Page) coords.Rotation {
	return p.Rotate.Add(e.layout.Options().DefaultRotation)
}

// PageToDevice maps the user space of page to pixels relative to the
// page's inner rect at zoom 1. Pages not loaded map to the identity.
func (e *Engine) PageToDevice(page int) coords.Matrix {
	if !e.IsPageLoaded(page) {
		return coords.Identity()
	}
	p := e.doc.Pages[page]
	return coords.DeviceFromPage(p.MediaBox, e.rotation(p), e.layout.Page(page).Inner.Size())
}

// ScreenToPage finds the page under a screen point and returns the
// point in that page's user space. ok is false between pages and over
// pages that are not loaded.
func (e *Engine) ScreenToPage(p coords.Point) (page int, pt coords.Point, ok bool) {
	lp := coords.Point{X: (p.X + e.scroll.X) / e.zoom, Y: (p.Y + e.scroll.Y) / e.zoom}
	page = e.layout.PageAt(lp)
	if page < 0 {
		return -1, coords.Point{}, false
	}
	if _, err := e.loadPage(page); err != nil {
		return page, coords.Point{}, false
	}
	inner := e.layout.Page(page).Inner
	inv, err := e.PageToDevice(page).Inverse()
	if err != nil {
		return page, coords.Point{}, false
	}
	local := coords.Point{X: lp.X - float64(inner.X), Y: lp.Y - float64(inner.Y)}
	return page, inv.Transform(local), true
}

// PageToScreen maps a point in the user space of page to the screen.
func (e *Engine) PageToScreen(page int, pt coords.Point) (coords.Point, bool) {
	if !e.IsPageLoaded(page) {
		return coords.Point{}, false
	}
	inner := e.layout.Page(page).Inner
	local := e.PageToDevice(page).Transform(pt)
	return coords.Point{
		X: (local.X+float64(inner.X))*e.zoom - e.scroll.X,
		Y: (local.Y+float64(inner.Y))*e.zoom - e.scroll.Y,
	}, true
}

// pageRectToScreen maps a page-local pixel rect to the screen.
func (e *Engine) pageRectToScreen(page int, r coords.Rect) coords.Rect {
	inner := e.layout.Page(page).Inner
	return e.layoutRectToScreen(r.Offset(inner.X, inner.Y))
}

func (e *Engine) layoutRectToScreen(r coords.Rect) coords.Rect {
	return r.ScaleToEnclosing(e.zoom).Offset(-int(math.Round(e.scroll.X)), -int(math.Round(e.scroll.Y)))
}

func (e *Engine) invalidatePage(page int) {
	e.emit(Invalidate{Rect: e.layoutRectToScreen(e.layout.Page(page).Inner)})
}

func (e *Engine) invalidateAll() {
	if e.layout.PageCount() == 0 {
		return
	}
	e.emit(Invalidate{Rect: e.layoutRectToScreen(coords.Rect{Width: e.layout.Size().Width, Height: e.layout.Size().Height})})
}

// scrollIntoView scrolls so r, a rect in layout pixels, starts at the
// viewport origin unless it is already fully visible. Nothing scrolls
// before the viewport size is known.
func (e *Engine) scrollIntoView(r coords.Rect) {
	if e.pluginSize.IsEmpty() {
		return
	}
	screen := e.layoutRectToScreen(r)
	view := coords.Rect{Width: e.pluginSize.Width, Height: e.pluginSize.Height}
	if view.ContainsRect(screen) {
		return
	}
	zoomed := r.ScaleToEnclosing(e.zoom)
	e.scroll = coords.Point{X: float64(zoomed.X), Y: float64(zoomed.Y)}
	e.emit(ScrollToY{Y: zoomed.Y})
	e.emit(ScrollToX{X: zoomed.X})
}
