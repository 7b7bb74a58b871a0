package engine

import (
	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/layout"
	"github.com/wudi/pdfengine/thumbnail"
)

// Event is a notification for the host. Events queue up during a call
// and are handed out, in order, by DrainEvents.
type Event interface{ isEvent() }

// DocumentLayoutChanged carries a new document size and page rects, in
// pixels at zoom 1.
type DocumentLayoutChanged struct {
	Size  coords.Size
	Pages []layout.PageLayout
}

// ScrollToX and ScrollToY ask the host to scroll, in screen pixels.
type ScrollToX struct{ X int }

type ScrollToY struct{ Y int }

// Invalidate asks for a repaint of a screen rect.
type Invalidate struct{ Rect coords.Rect }

// SetLinkUnderCursor reports the link under the mouse or keyboard focus.
// URL is empty when there is none.
type SetLinkUnderCursor struct{ URL string }

// DocumentFocusChanged fires on real edges only.
type DocumentFocusChanged struct{ Focused bool }

// FieldFocus is the kind of form field that holds focus.
type FieldFocus int

const (
	NoFocus FieldFocus = iota
	TextFocus
	NonTextFocus
)

func (k FieldFocus) String() string {
	switch k {
	case TextFocus:
		return "text"
	case NonTextFocus:
		return "non-text"
	}
	return "none"
}

type FormFieldFocusChange struct{ Kind FieldFocus }

type PageAvailable struct{ Page int }

// ThumbnailReady delivers a thumbnail requested without a callback.
type ThumbnailReady struct {
	Page      int
	Thumbnail thumbnail.Thumbnail
	Err       error
}

// Alert is raised by app.alert in a field script.
type Alert struct{ Message string }

type DocumentLoadComplete struct{}

func (DocumentLayoutChanged) isEvent() {}
func (ScrollToX) isEvent()             {}
func (ScrollToY) isEvent()             {}
func (Invalidate) isEvent()            {}
func (SetLinkUnderCursor) isEvent()    {}
func (DocumentFocusChanged) isEvent()  {}
func (FormFieldFocusChange) isEvent()  {}
func (PageAvailable) isEvent()         {}
func (ThumbnailReady) isEvent()        {}
func (Alert) isEvent()                 {}
func (DocumentLoadComplete) isEvent()  {}

func (e *Engine) emit(ev Event) { e.events = append(e.events, ev) }

// DrainEvents returns the queued events and empties the queue.
func (e *Engine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}
