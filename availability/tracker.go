// Package availability tracks which pages have enough bytes to be laid
// out and rendered while a document streams in.
package availability

import (
	"sort"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

type Option func(*Tracker)

func WithLogger(l observability.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// Tracker merges arrived byte ranges and reports pages whose hint ranges
// are fully covered. Availability is monotonic.
type Tracker struct {
	log       observability.Logger
	covered   []document.Range // sorted, non-touching
	hints     *document.Hints
	available []bool
	remaining int
	viewport  coords.Size
	finished  bool
}

func New(opts ...Option) *Tracker {
	t := &Tracker{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetHints installs the page byte ranges once they are known and returns
// the pages already covered by data received so far.
func (t *Tracker) SetHints(h document.Hints) []int {
	if t.hints != nil {
		return nil
	}
	t.hints = &h
	t.available = make([]bool, len(h.Pages))
	t.remaining = len(h.Pages)
	t.log.Debug("page count known", observability.Int("pages", len(h.Pages)), observability.Int64("length", h.Length))
	if t.finished {
		return t.markAll()
	}
	return t.scan()
}

// NotifyDataArrived records r and returns the pages that became available
// because of it, ascending. Each page is reported once per tracker.
func (t *Tracker) NotifyDataArrived(r document.Range) []int {
	if r.IsEmpty() {
		return nil
	}
	t.add(r)
	if t.hints == nil {
		return nil
	}
	return t.scan()
}

// SetViewportSize records the host viewport. Availability never depends
// on it, so an empty viewport set before any data does not stall pages.
func (t *Tracker) SetViewportSize(s coords.Size) {
	t.viewport = s
	t.log.Debug("viewport size", observability.Int("width", s.Width), observability.Int("height", s.Height))
}

func (t *Tracker) ViewportSize() coords.Size { return t.viewport }

// Finish is called when the whole document has arrived. Every page not
// yet reported becomes available and is returned.
func (t *Tracker) Finish() []int {
	t.finished = true
	if t.hints == nil {
		return nil
	}
	t.add(document.Range{Start: 0, End: t.hints.Length})
	return t.markAll()
}

func (t *Tracker) Finished() bool { return t.finished }

func (t *Tracker) PageCountKnown() bool { return t.hints != nil }

// PageCount is zero until the hints are known.
func (t *Tracker) PageCount() int { return len(t.available) }

// Hints returns the installed hints.
func (t *Tracker) Hints() (document.Hints, bool) {
	if t.hints == nil {
		return document.Hints{}, false
	}
	return *t.hints, true
}

func (t *Tracker) IsAvailable(page int) bool {
	return page >= 0 && page < len(t.available) && t.available[page]
}

// AllAvailable reports whether every page is available.
func (t *Tracker) AllAvailable() bool { return t.hints != nil && t.remaining == 0 }

// IsCovered reports whether every byte of r has arrived.
func (t *Tracker) IsCovered(r document.Range) bool {
	if r.IsEmpty() {
		return true
	}
	i := sort.Search(len(t.covered), func(i int) bool { return t.covered[i].End >= r.End })
	return i < len(t.covered) && t.covered[i].Contains(r)
}

// CoveredPrefix is the length of the contiguous run of bytes from 0.
func (t *Tracker) CoveredPrefix() int64 {
	if len(t.covered) == 0 || t.covered[0].Start > 0 {
		return 0
	}
	return t.covered[0].End
}

// Progress is the covered fraction of the file, or 0 before the length
// is known.
func (t *Tracker) Progress() float64 {
	if t.hints == nil || t.hints.Length == 0 {
		return 0
	}
	var n int64
	for _, c := range t.covered {
		n += c.Len()
	}
	return float64(n) / float64(t.hints.Length)
}

func (t *Tracker) add(r document.Range) {
	merged := make([]document.Range, 0, len(t.covered)+1)
	placed := false
	for _, c := range t.covered {
		switch {
		case c.End < r.Start:
			merged = append(merged, c)
		case r.End < c.Start:
			if !placed {
				merged = append(merged, r)
				placed = true
			}
			merged = append(merged, c)
		default:
			r = document.Range{Start: min(r.Start, c.Start), End: max(r.End, c.End)}
		}
	}
	if !placed {
		merged = append(merged, r)
	}
	t.covered = merged
}

func (t *Tracker) scan() []int {
	if t.remaining == 0 || !t.IsCovered(t.hints.Header) {
		return nil
	}
	var out []int
	for i, r := range t.hints.Pages {
		if t.available[i] || !t.IsCovered(r) {
			continue
		}
		t.available[i] = true
		t.remaining--
		out = append(out, i)
	}
	return out
}

func (t *Tracker) markAll() []int {
	var out []int
	for i := range t.available {
		if !t.available[i] {
			t.available[i] = true
			out = append(out, i)
		}
	}
	t.remaining = 0
	return out
}
