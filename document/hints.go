package document

import "fmt"

// Range is a half-open byte range [Start, End).
type Range struct {
	Start, End int64
}

func (r Range) Len() int64     { return r.End - r.Start }
func (r Range) IsEmpty() bool  { return r.End <= r.Start }
func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Contains reports whether o lies inside r.
func (r Range) Contains(o Range) bool { return o.Start >= r.Start && o.End <= r.End }

// Touches reports whether r and o overlap or abut.
func (r Range) Touches(o Range) bool { return r.Start <= o.End && o.Start <= r.End }

// Hints locate the bytes each page needs, in the manner of linearization
// page-offset hints. Header covers the objects every page shares.
type Hints struct {
	Length int64
	Header Range
	Pages  []Range
}

// PageRanges returns every range page index depends on.
func (h Hints) PageRanges(index int) []Range {
	if index < 0 || index >= len(h.Pages) {
		return nil
	}
	return []Range{h.Header, h.Pages[index]}
}
