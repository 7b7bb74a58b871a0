package engine

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/ink"
)

// inkError classifies a stroke manager error. Broken preconditions are
// contract violations; anything else passes through.
func (e *Engine) inkError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ink.ErrEmptyStroke),
		errors.Is(err, ink.ErrStrokeIDInUse),
		errors.Is(err, ink.ErrStrokeNotFound),
		errors.Is(err, ink.ErrShapeNotFound),
		errors.Is(err, document.ErrPageOutOfRange):
		return e.violation(err)
	}
	return err
}

// inkPage makes sure page is loaded before the stroke manager edits it.
func (e *Engine) inkPage(page int) error {
	if _, err := e.loadPage(page); err != nil {
		if errors.Is(err, ErrPageNotAvailable) || errors.Is(err, document.ErrPageOutOfRange) {
			return e.violation(err)
		}
		return err
	}
	return nil
}

// ApplyStroke adds an active stroke under a host-chosen id. The id must
// be new or discarded. The page is pinned until its ink is discarded.
func (e *Engine) ApplyStroke(page int, id ink.StrokeID, s ink.Stroke) error {
	if err := e.inkPage(page); err != nil {
		return err
	}
	if err := e.inkError(e.ink.ApplyStroke(page, id, s)); err != nil {
		return err
	}
	e.invalidatePage(page)
	return nil
}

// UpdateStrokeActive hides or shows a stroke: undo and redo.
func (e *Engine) UpdateStrokeActive(page int, id ink.StrokeID, active bool) error {
	if err := e.inkError(e.ink.UpdateStrokeActive(page, id, active)); err != nil {
		return err
	}
	e.invalidatePage(page)
	return nil
}

// DiscardStroke drops a stroke for good. Discarding twice is an error.
func (e *Engine) DiscardStroke(page int, id ink.StrokeID) error {
	if err := e.inkError(e.ink.DiscardStroke(page, id)); err != nil {
		return err
	}
	e.invalidatePage(page)
	return nil
}

// LoadShapesForPage returns the ink already saved on page, by shape id.
func (e *Engine) LoadShapesForPage(page int) (map[ink.ShapeID]document.Path, error) {
	if err := e.inkPage(page); err != nil {
		return nil, err
	}
	shapes, err := e.ink.LoadShapesForPage(page)
	if err != nil {
		return nil, e.inkError(err)
	}
	return shapes, nil
}

func (e *Engine) UpdateShapeActive(page int, id ink.ShapeID, active bool) error {
	if err := e.inkError(e.ink.UpdateShapeActive(page, id, active)); err != nil {
		return err
	}
	e.invalidatePage(page)
	return nil
}

// SetTransientStroke shows the stroke being drawn in interactive renders.
func (e *Engine) SetTransientStroke(page int, s ink.Stroke) error {
	if err := e.inkPage(page); err != nil {
		return err
	}
	if err := e.inkError(e.ink.SetTransientStroke(page, s)); err != nil {
		return err
	}
	e.invalidatePage(page)
	return nil
}

func (e *Engine) ClearTransientStroke() { e.ink.ClearTransientStroke() }

// IsPagePinned reports whether page holds ink that blocks unloading.
func (e *Engine) IsPagePinned(page int) bool { return e.ink.IsPinned(page) }

// ContainsInkV2Marks reports whether the loaded pages carry saved ink.
func (e *Engine) ContainsInkV2Marks() bool { return ink.ContainsInkV2(e.doc) }

// StrokeIDs lists the live strokes of page.
func (e *Engine) StrokeIDs(page int) []ink.StrokeID { return e.ink.StrokeIDs(page) }

func (e *Engine) materialize(page int) error {
	if err := e.ink.Materialize(page); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
