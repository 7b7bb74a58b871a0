package engine

import (
	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/focus"
	"github.com/wudi/pdfengine/input"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/selection"
	"github.com/wudi/pdfengine/textindex"
)

// TextIndex returns the char index of page, parsing the page again if
// it was unloaded. It is nil for pages that have not arrived.
func (e *Engine) TextIndex(page int) *textindex.Index {
	if _, err := e.loadPage(page); err != nil {
		return nil
	}
	return e.indexes[page]
}

// Focusable lists the annotations of page that take keyboard focus.
func (e *Engine) Focusable(page int) []int {
	p, err := e.loadPage(page)
	if err != nil {
		return nil
	}
	var out []int
	for i, a := range p.Annotations {
		if a.Subtype.Focusable() {
			out = append(out, i)
		}
	}
	return out
}

func (e *Engine) annotation(a focus.Annot) *document.Annotation {
	p, err := e.loadPage(a.Page)
	if err != nil || a.Index < 0 || a.Index >= len(p.Annotations) {
		return nil
	}
	return p.Annotations[a.Index]
}

// HandleInputEvent dispatches a host input event. It returns true when
// the engine consumed the event.
func (e *Engine) HandleInputEvent(ev input.Event) bool {
	switch ev.Type {
	case input.MouseDown:
		return e.mouseDown(ev)
	case input.MouseMove:
		return e.mouseMove(ev)
	case input.MouseUp:
		was := e.selecting
		e.selecting = false
		return was
	case input.KeyDown:
		switch ev.Key {
		case input.KeyTab:
			return e.HandleTab(ev.Modifiers)
		case input.KeyEscape:
			if !e.selection.HasSelection() {
				return false
			}
			e.ClearTextSelection()
			return true
		}
	}
	return false
}

func (e *Engine) mouseDown(ev input.Event) bool {
	page, pt, ok := e.ScreenToPage(ev.Point)
	if !ok {
		e.ClearTextSelection()
		return false
	}
	if e.annotMode {
		// The ink tool owns pointer input while annotating.
		return false
	}
	if i, a := e.annotationAt(page, pt); a != nil {
		e.applyFocusEffects(e.focus.Focus(focus.Annot{Page: page, Index: i}))
		return true
	}
	if ev.Modifiers.Has(input.ModShift) && e.selection.IsActive() {
		return e.ExtendSelectionTo(page, pt)
	}
	if !e.SetAnchorAtPoint(page, pt, max(ev.ClickCount, 1)) {
		e.ClearTextSelection()
		e.applyFocusEffects(e.focus.Focus(focus.Document{}))
		return false
	}
	e.applyFocusEffects(e.focus.Focus(focus.Document{}))
	e.selecting = true
	return true
}

func (e *Engine) mouseMove(ev input.Event) bool {
	page, pt, ok := e.ScreenToPage(ev.Point)
	if ev.Pressed && e.selecting {
		return ok && e.ExtendSelectionTo(page, pt)
	}
	url := ""
	if ok {
		if l := e.indexes[page].LinkAt(pt); l != nil {
			url = l.URI
		}
	}
	if url != e.hoverLink {
		e.hoverLink = url
		e.emit(SetLinkUnderCursor{URL: url})
	}
	return false
}

// annotationAt returns the topmost focusable annotation under pt.
func (e *Engine) annotationAt(page int, pt coords.Point) (int, *document.Annotation) {
	p := e.doc.Pages[page]
	for i := len(p.Annotations) - 1; i >= 0; i-- {
		a := p.Annotations[i]
		if (a.Subtype == document.AnnotWidget || a.Subtype == document.AnnotLink) && a.Rect.Contains(pt) {
			return i, a
		}
	}
	return -1, nil
}

// SetAnchorAtPoint starts a selection at a point in the user space of
// page. See selection.Engine.SetAnchorAtPoint.
func (e *Engine) SetAnchorAtPoint(page int, pt coords.Point, clicks int) bool {
	ok := e.selection.SetAnchorAtPoint(page, pt, clicks)
	e.flushSelection()
	return ok
}

func (e *Engine) ExtendSelectionTo(page int, pt coords.Point) bool {
	ok := e.selection.ExtendSelectionTo(page, pt)
	e.flushSelection()
	return ok
}

func (e *Engine) SelectAll() {
	e.selection.SelectAll()
	e.flushSelection()
}

func (e *Engine) ClearTextSelection() {
	e.selection.Clear()
	e.flushSelection()
}

func (e *Engine) GetSelectedText() string { return e.selection.GetSelectedText() }

// GetSelectionRects returns page-local pixel rects at zoom 1.
func (e *Engine) GetSelectionRects() []selection.PageRect { return e.selection.GetSelectionRects() }

func (e *Engine) HasSelection() bool { return e.selection.HasSelection() }

// IsSelectableTextOrLinkArea tells whether a screen point is over text
// or a link.
func (e *Engine) IsSelectableTextOrLinkArea(p coords.Point) bool {
	page, pt, ok := e.ScreenToPage(p)
	if !ok {
		return false
	}
	return e.indexes[page].IsSelectableTextOrLinkArea(pt, e.cfg.HitTolerance)
}

// GetLinkAtPoint returns the URI of the link under a screen point.
func (e *Engine) GetLinkAtPoint(p coords.Point) string {
	page, pt, ok := e.ScreenToPage(p)
	if !ok {
		return ""
	}
	if l := e.indexes[page].LinkAt(pt); l != nil {
		return l.URI
	}
	return ""
}

// flushSelection turns the selection's changed rects into one
// invalidation.
func (e *Engine) flushSelection() { e.invalidateRects(e.selection.TakeInvalidation()) }

// invalidateRects emits one Invalidate covering every rect.
func (e *Engine) invalidateRects(changed []selection.PageRect) {
	if len(changed) == 0 {
		return
	}
	r := e.pageRectToScreen(changed[0].Page, changed[0].Rect)
	for _, c := range changed[1:] {
		r = r.Union(e.pageRectToScreen(c.Page, c.Rect))
	}
	e.emit(Invalidate{Rect: r})
}

// HandleTab moves keyboard focus. It returns false when focus left the
// document or the key belongs to the host.
func (e *Engine) HandleTab(mods input.Modifiers) bool {
	ok, effects := e.focus.HandleTab(mods)
	e.applyFocusEffects(effects)
	return ok
}

// UpdateFocus tells the engine whether the viewer has host focus.
func (e *Engine) UpdateFocus(has bool) {
	e.applyFocusEffects(e.focus.UpdateFocus(has))
}

// FocusElement is the element holding keyboard focus.
func (e *Engine) FocusElement() focus.Element { return e.focus.Current() }

// CanEditText reports whether a text field has focus and may be edited.
func (e *Engine) CanEditText() bool { return e.fieldFocus == TextFocus }

func (e *Engine) applyFocusEffects(effects []focus.Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case focus.DocumentFocusChanged:
			e.emit(DocumentFocusChanged{Focused: eff.Focused})
		case focus.AnnotBlurred:
			if _, ok := e.focus.Current().(focus.Annot); !ok {
				e.setFieldFocus(NoFocus, false)
			}
		case focus.AnnotFocused:
			e.annotFocused(eff.Annot, eff.Restored)
		}
	}
}

func (e *Engine) annotFocused(ref focus.Annot, restored bool) {
	a := e.annotation(ref)
	if a == nil {
		return
	}
	e.scrollIntoView(e.boxToLayout(ref.Page, a.Rect))
	e.emit(SetLinkUnderCursor{URL: a.URI})

	kind := NoFocus
	if a.Subtype == document.AnnotWidget && a.Field != nil {
		kind = NonTextFocus
		if a.Field.Kind.Editable() && !a.Field.ReadOnly {
			kind = TextFocus
		}
	}
	if e.readOnly || e.annotMode {
		kind = NoFocus
	}
	e.setFieldFocus(kind, restored)
	if kind == TextFocus {
		e.ClearTextSelection()
	}
	if !restored && a.Field != nil && a.Field.FocusScript != "" {
		e.runScript(a.Field.FocusScript)
	}
}

// setFieldFocus reports a field focus change. Restores always report,
// even when the kind is unchanged.
func (e *Engine) setFieldFocus(kind FieldFocus, force bool) {
	if kind == e.fieldFocus && !force {
		return
	}
	e.fieldFocus = kind
	e.emit(FormFieldFocusChange{Kind: kind})
}

func (e *Engine) boxToLayout(page int, b coords.Box) coords.Rect {
	return coords.EnclosingRect(e.PageToDevice(page).TransformBox(b)).Offset(e.layout.Page(page).Inner.X, e.layout.Page(page).Inner.Y)
}

// SetReadOnly stops form fields from taking text focus.
func (e *Engine) SetReadOnly(on bool) {
	if on == e.readOnly {
		return
	}
	e.readOnly = on
	e.log.Debug("read-only mode", observability.Bool("on", on))
	if on {
		e.ClearTextSelection()
		e.setFieldFocus(NoFocus, true)
	}
}

// SetAnnotationMode hands pointer input to the ink tool.
func (e *Engine) SetAnnotationMode(on bool) {
	if on == e.annotMode {
		return
	}
	e.annotMode = on
	e.log.Debug("annotation mode", observability.Bool("on", on))
	if on {
		e.ClearTextSelection()
		e.setFieldFocus(NoFocus, true)
	}
}

// SetFormHighlight turns the fill behind form widgets on or off.
func (e *Engine) SetFormHighlight(on bool) {
	if on == e.formOn {
		return
	}
	e.formOn = on
	e.invalidateAll()
}
