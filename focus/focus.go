// Package focus walks keyboard focus through a document: the document
// itself, then every focusable annotation in page order.
package focus

import (
	"fmt"

	"github.com/wudi/pdfengine/input"
	"github.com/wudi/pdfengine/observability"
)

// Element is what holds keyboard focus: None, Document or Annot.
type Element interface {
	isElement()
	String() string
}

type None struct{}

type Document struct{}

// Annot is an annotation, by page and by index into that page's
// annotation list.
type Annot struct {
	Page  int
	Index int
}

func (None) isElement()     {}
func (Document) isElement() {}
func (Annot) isElement()    {}

func (None) String() string     { return "none" }
func (Document) String() string { return "document" }
func (a Annot) String() string  { return fmt.Sprintf("page %d annot %d", a.Page, a.Index) }

// Effect is a consequence of a focus change the engine reports to the host.
type Effect interface{ isEffect() }

// DocumentFocusChanged fires on edges into and out of Document only.
type DocumentFocusChanged struct{ Focused bool }

// AnnotFocused fires when an annotation gains focus. Restored is set
// when the focus came back from a blur rather than from navigation.
type AnnotFocused struct {
	Annot    Annot
	Restored bool
}

type AnnotBlurred struct{ Annot Annot }

func (DocumentFocusChanged) isEffect() {}
func (AnnotFocused) isEffect()         {}
func (AnnotBlurred) isEffect()         {}

// Annotations lists the focusable annotations of each page.
type Annotations interface {
	PageCount() int
	// Focusable returns annotation indexes of page in tab order.
	Focusable(page int) []int
}

type Option func(*Machine)

func WithLogger(l observability.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// Machine is the single owner of focus state. The snapshot taken on
// blur only drives the next restore.
type Machine struct {
	log      observability.Logger
	annots   Annotations
	current  Element
	snapshot Element
}

func New(annots Annotations, opts ...Option) *Machine {
	m := &Machine{log: observability.NopLogger{}, annots: annots, current: None{}, snapshot: None{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Current() Element { return m.current }

// Snapshot is the element a restore would return to.
func (m *Machine) Snapshot() Element { return m.snapshot }

func (m *Machine) order() []Annot {
	var out []Annot
	for p := 0; p < m.annots.PageCount(); p++ {
		for _, i := range m.annots.Focusable(p) {
			out = append(out, Annot{Page: p, Index: i})
		}
	}
	return out
}

// HandleTab advances focus, backwards when Shift is held. Ctrl and Alt
// leave focus alone and return false. Running off either end moves
// focus to None and returns false.
func (m *Machine) HandleTab(mods input.Modifiers) (bool, []Effect) {
	if mods.IsAccelerator() {
		return false, nil
	}
	order := m.order()
	var next Element
	if mods.Has(input.ModShift) {
		next = m.previous(order)
	} else {
		next = m.next(order)
	}
	effects := m.transition(next, false)
	_, none := next.(None)
	return !none, effects
}

func (m *Machine) next(order []Annot) Element {
	switch cur := m.current.(type) {
	case None:
		return Document{}
	case Document:
		if len(order) == 0 {
			return None{}
		}
		return order[0]
	case Annot:
		i := position(order, cur)
		if i < 0 || i+1 >= len(order) {
			return None{}
		}
		return order[i+1]
	}
	return None{}
}

func (m *Machine) previous(order []Annot) Element {
	switch cur := m.current.(type) {
	case None:
		if len(order) == 0 {
			return Document{}
		}
		return order[len(order)-1]
	case Document:
		return None{}
	case Annot:
		i := position(order, cur)
		if i <= 0 {
			return Document{}
		}
		return order[i-1]
	}
	return None{}
}

func position(order []Annot, a Annot) int {
	for i, o := range order {
		if o == a {
			return i
		}
	}
	return -1
}

// Focus moves focus straight to el, as a click does.
func (m *Machine) Focus(el Element) []Effect {
	return m.transition(el, false)
}

// UpdateFocus reacts to the host focusing or blurring the whole viewer.
// A blur remembers the element and sets None; a focus restores it
// without walking the order. Redundant calls produce nothing.
func (m *Machine) UpdateFocus(has bool) []Effect {
	if !has {
		if _, none := m.current.(None); none {
			return nil
		}
		m.snapshot = m.current
		return m.transition(None{}, false)
	}
	if _, none := m.current.(None); !none {
		return nil
	}
	restore := m.snapshot
	m.snapshot = None{}
	return m.transition(restore, true)
}

func (m *Machine) transition(next Element, restored bool) []Effect {
	prev := m.current
	if prev == next {
		return nil
	}
	m.current = next
	var effects []Effect
	if a, ok := prev.(Annot); ok {
		effects = append(effects, AnnotBlurred{Annot: a})
	}
	_, wasDoc := prev.(Document)
	_, isDoc := next.(Document)
	if wasDoc != isDoc {
		effects = append(effects, DocumentFocusChanged{Focused: isDoc})
	}
	if a, ok := next.(Annot); ok {
		effects = append(effects, AnnotFocused{Annot: a, Restored: restored})
	}
	m.log.Debug("focus changed", observability.String("from", prev.String()), observability.String("to", next.String()))
	return effects
}
