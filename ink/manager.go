// Package ink owns the ink strokes drawn on a document and the ink
// shapes already saved in it, and writes the active ones back into the
// native page content.
package ink

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

var (
	ErrEmptyStroke    = errors.New("ink: stroke has no input points")
	ErrStrokeIDInUse  = errors.New("ink: stroke id in use")
	ErrStrokeNotFound = errors.New("ink: stroke not found")
	ErrShapeNotFound  = errors.New("ink: shape not found")
)

// NativePages edits the native page content. *document.Document
// implements it.
type NativePages interface {
	PageCount() int
	PageBox(page int) (coords.Box, error)
	MarkedObjects(page int, tag string) ([]*document.PageObject, error)
	InsertObject(page int, obj *document.PageObject) error
	RemoveObject(page int, obj *document.PageObject) error
}

type slotState int

const (
	slotEmpty slotState = iota
	slotActive
	slotInactive
)

// slot is one arena entry. The native object is built once when the
// stroke is applied and reused on every materialization.
type slot struct {
	state  slotState
	stroke Stroke
	obj    *document.PageObject
}

type shape struct {
	id     ShapeID
	obj    *document.PageObject
	active bool
}

type pageInk struct {
	strokes      map[StrokeID]*slot
	shapes       []*shape
	shapesLoaded bool
}

func (p *pageInk) liveStrokes() int {
	n := 0
	for _, s := range p.strokes {
		if s.state != slotEmpty {
			n++
		}
	}
	return n
}

type Option func(*Manager)

func WithLogger(l observability.Logger) Option {
	return func(m *Manager) { m.log = l }
}

type transient struct {
	page   int
	stroke Stroke
}

// Manager is the only writer of ink state and of ink marks in the
// native content.
type Manager struct {
	log       observability.Logger
	native    NativePages
	pages     map[int]*pageInk
	nextShape ShapeID
	transient *transient
}

func NewManager(native NativePages, opts ...Option) *Manager {
	m := &Manager{log: observability.NopLogger{}, native: native, pages: make(map[int]*pageInk)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) page(page int) *pageInk {
	p, ok := m.pages[page]
	if !ok {
		p = &pageInk{strokes: make(map[StrokeID]*slot)}
		m.pages[page] = p
	}
	return p
}

func (m *Manager) checkPage(page int) error {
	if page < 0 || page >= m.native.PageCount() {
		return fmt.Errorf("%w: %d", document.ErrPageOutOfRange, page)
	}
	return nil
}

// ApplyStroke records a new active stroke under id. The id must be
// unused or discarded. The page stays pinned until its strokes and
// shapes are all discarded.
func (m *Manager) ApplyStroke(page int, id StrokeID, s Stroke) error {
	if err := m.checkPage(page); err != nil {
		return err
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("%w: page %d id %d", ErrEmptyStroke, page, id)
	}
	p := m.page(page)
	if sl, ok := p.strokes[id]; ok && sl.state != slotEmpty {
		return fmt.Errorf("%w: page %d id %d", ErrStrokeIDInUse, page, id)
	}
	box, err := m.native.PageBox(page)
	if err != nil {
		return err
	}
	s.Inputs = slices.Clone(s.Inputs)
	p.strokes[id] = &slot{state: slotActive, stroke: s, obj: newObject(page, id, s, box)}
	m.log.Debug("stroke applied", observability.Int("page", page), observability.Int("id", int(id)), observability.Int("inputs", len(s.Inputs)))
	return nil
}

// UpdateStrokeActive is undo and redo. The stroke's data is kept either way.
func (m *Manager) UpdateStrokeActive(page int, id StrokeID, active bool) error {
	sl, err := m.liveSlot(page, id)
	if err != nil {
		return err
	}
	if active {
		sl.state = slotActive
	} else {
		sl.state = slotInactive
	}
	return nil
}

// DiscardStroke drops the stroke for good and removes it from the
// native content if it was materialized.
func (m *Manager) DiscardStroke(page int, id StrokeID) error {
	sl, err := m.liveSlot(page, id)
	if err != nil {
		return err
	}
	if err := m.remove(page, sl.obj); err != nil {
		return err
	}
	*sl = slot{}
	m.log.Debug("stroke discarded", observability.Int("page", page), observability.Int("id", int(id)))
	return nil
}

func (m *Manager) liveSlot(page int, id StrokeID) (*slot, error) {
	if p, ok := m.pages[page]; ok {
		if sl, ok := p.strokes[id]; ok && sl.state != slotEmpty {
			return sl, nil
		}
	}
	return nil, fmt.Errorf("%w: page %d id %d", ErrStrokeNotFound, page, id)
}

// Stroke returns the stroke under id and whether it is active.
func (m *Manager) Stroke(page int, id StrokeID) (Stroke, bool, error) {
	sl, err := m.liveSlot(page, id)
	if err != nil {
		return Stroke{}, false, err
	}
	return sl.stroke, sl.state == slotActive, nil
}

// StrokeIDs lists the live stroke ids of page in ascending order.
func (m *Manager) StrokeIDs(page int) []StrokeID {
	p, ok := m.pages[page]
	if !ok {
		return nil
	}
	var ids []StrokeID
	for id, sl := range p.strokes {
		if sl.state != slotEmpty {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// LoadShapesForPage reads the ink marks of page once and returns them by
// shape id. Later calls return the same shapes and change nothing.
func (m *Manager) LoadShapesForPage(page int) (map[ShapeID]document.Path, error) {
	if err := m.checkPage(page); err != nil {
		return nil, err
	}
	p := m.page(page)
	if !p.shapesLoaded {
		objs, err := m.native.MarkedObjects(page, document.InkMarkV2)
		if err != nil {
			return nil, err
		}
		for _, o := range objs {
			if o.Kind != document.PathObject || o.Path == nil {
				continue
			}
			m.nextShape++
			p.shapes = append(p.shapes, &shape{id: m.nextShape, obj: o, active: true})
		}
		p.shapesLoaded = true
		m.log.Debug("shapes loaded", observability.Int("page", page), observability.Int("shapes", len(p.shapes)))
	}
	out := make(map[ShapeID]document.Path, len(p.shapes))
	for _, s := range p.shapes {
		out[s.id] = *s.obj.Path
	}
	return out, nil
}

func (m *Manager) UpdateShapeActive(page int, id ShapeID, active bool) error {
	if p, ok := m.pages[page]; ok {
		for _, s := range p.shapes {
			if s.id == id {
				s.active = active
				return nil
			}
		}
	}
	return fmt.Errorf("%w: page %d shape %d", ErrShapeNotFound, page, id)
}

// IsPinned reports whether page holds strokes or loaded shapes, in which
// case its native content must not be unloaded.
func (m *Manager) IsPinned(page int) bool {
	p, ok := m.pages[page]
	return ok && (p.liveStrokes() > 0 || len(p.shapes) > 0)
}

// PinnedPages lists pinned pages in ascending order.
func (m *Manager) PinnedPages() []int {
	var out []int
	for _, page := range slices.Sorted(maps.Keys(m.pages)) {
		if m.IsPinned(page) {
			out = append(out, page)
		}
	}
	return out
}

// Materialize rewrites the ink of page in the native content: managed
// objects are removed, then active shapes are appended in load order and
// active strokes in id order.
func (m *Manager) Materialize(page int) error {
	p, ok := m.pages[page]
	if !ok {
		return nil
	}
	var active []*document.PageObject
	for _, s := range p.shapes {
		if err := m.remove(page, s.obj); err != nil {
			return err
		}
		if s.active {
			active = append(active, s.obj)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(p.strokes)) {
		sl := p.strokes[id]
		if sl.state == slotEmpty {
			continue
		}
		if err := m.remove(page, sl.obj); err != nil {
			return err
		}
		if sl.state == slotActive {
			active = append(active, sl.obj)
		}
	}
	for _, o := range active {
		if err := m.native.InsertObject(page, o); err != nil {
			return fmt.Errorf("ink: materialize page %d: %w", page, err)
		}
	}
	return nil
}

func (m *Manager) MaterializeAll() error {
	for _, page := range slices.Sorted(maps.Keys(m.pages)) {
		if err := m.Materialize(page); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) remove(page int, obj *document.PageObject) error {
	err := m.native.RemoveObject(page, obj)
	if err != nil && !errors.Is(err, document.ErrObjectNotFound) {
		return fmt.Errorf("ink: remove from page %d: %w", page, err)
	}
	return nil
}

// SetTransientStroke holds the stroke still being drawn. It is shown by
// interactive renders only and never materialized.
func (m *Manager) SetTransientStroke(page int, s Stroke) error {
	if err := m.checkPage(page); err != nil {
		return err
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("%w: transient on page %d", ErrEmptyStroke, page)
	}
	m.transient = &transient{page: page, stroke: s}
	return nil
}

func (m *Manager) ClearTransientStroke() { m.transient = nil }

// TransientPath returns the in-progress stroke of page in user space.
func (m *Manager) TransientPath(page int) (*document.Path, bool) {
	if m.transient == nil || m.transient.page != page {
		return nil, false
	}
	box, err := m.native.PageBox(page)
	if err != nil {
		return nil, false
	}
	return toPath(m.transient.stroke, box), true
}

// ContainsInkV2 reports whether a document carries ink marks.
func ContainsInkV2(d interface{ HasMarks(tag string) bool }) bool {
	return d.HasMarks(document.InkMarkV2)
}
