package document

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/wudi/pdfengine/coords"
)

// ErrNoHints is returned for files that do not start with a hint
// dictionary, or whose hint dictionary has not fully arrived.
var ErrNoHints = errors.New("document: hint dictionary unavailable")

// ParseHints reads the hint dictionary from a prefix of a file. It fails
// with ErrNoHints until the whole dictionary is present.
func ParseHints(prefix []byte) (Hints, error) {
	lx := newLexer(prefix)
	p := &objectParser{lx: lx}
	ind, err := p.parseIndirect()
	if err != nil {
		return Hints{}, fmt.Errorf("%w: %v", ErrNoHints, err)
	}
	d, ok := ind.obj.(*DictObj)
	if !ok || ind.ref.Num != hintObj {
		return Hints{}, ErrNoHints
	}
	if _, ok := d.Number("Linearized"); !ok {
		return Hints{}, ErrNoHints
	}
	l, _ := d.Number("L")
	n, _ := d.Number("N")
	e, _ := d.Number("E")
	arr, ok := d.Array("P")
	if !ok {
		return Hints{}, fmt.Errorf("%w: missing page ranges", ErrMalformed)
	}
	vals, ok := arr.Floats()
	if !ok || len(vals) != 2*int(n.Int()) {
		return Hints{}, fmt.Errorf("%w: page range count", ErrMalformed)
	}
	h := Hints{Length: l.Int(), Header: Range{Start: 0, End: e.Int()}, Pages: make([]Range, n.Int())}
	for i := range h.Pages {
		h.Pages[i] = Range{Start: int64(vals[2*i]), End: int64(vals[2*i+1])}
	}
	return h, nil
}

// Parse reads a complete file written by Write.
func Parse(data []byte) (*Document, error) {
	objs, err := scanObjects(data, 0, len(data))
	if err != nil {
		return nil, err
	}
	r := &resolver{objs: objs}
	catalog, err := r.findCatalog()
	if err != nil {
		return nil, err
	}
	pagesRef, ok := catalog.Ref("Pages")
	if !ok {
		return nil, fmt.Errorf("%w: catalog without /Pages", ErrMalformed)
	}
	pages, ok := r.dict(pagesRef)
	if !ok {
		return nil, fmt.Errorf("%w: missing page tree", ErrMalformed)
	}
	kids, _ := pages.Array("Kids")
	doc := New()
	r.header(doc, catalog, kids)
	if kids == nil {
		return doc, nil
	}
	for _, k := range kids.Items {
		ref, ok := k.(RefObj)
		if !ok {
			return nil, fmt.Errorf("%w: page tree kid", ErrMalformed)
		}
		page, err := r.page(ref.R)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// ParseHeader reads the document-wide parts of a file from its header
// range: the information dictionary and named destinations. Page slots
// are left nil.
func ParseHeader(data []byte, h Hints) (*Document, error) {
	if h.Header.End > int64(len(data)) {
		return nil, fmt.Errorf("%w: header bytes missing", ErrMalformed)
	}
	objs, err := scanObjects(data, int(h.Header.Start), int(h.Header.End))
	if err != nil {
		return nil, err
	}
	r := &resolver{objs: objs}
	catalog, err := r.findCatalog()
	if err != nil {
		return nil, err
	}
	var kids *ArrayObj
	if ref, ok := catalog.Ref("Pages"); ok {
		if pages, ok := r.dict(ref); ok {
			kids, _ = pages.Array("Kids")
		}
	}
	doc := New()
	doc.Pages = make([]*Page, len(h.Pages))
	r.header(doc, catalog, kids)
	return doc, nil
}

// ParseVersion returns the version in a file's header line, such as
// "1.7", or "" when the header is missing or malformed.
func ParseVersion(data []byte) string {
	const prefix = "%PDF-"
	if len(data) < len(prefix)+3 || string(data[:len(prefix)]) != prefix {
		return ""
	}
	v := data[len(prefix) : len(prefix)+3]
	if v[0] < '1' || v[0] > '2' || v[1] != '.' || v[2] < '0' || v[2] > '9' {
		return ""
	}
	return string(v)
}

// header fills the information dictionary and destinations of doc.
func (r *resolver) header(doc *Document, catalog *DictObj, kids *ArrayObj) {
	if info, ok := r.infoDict(); ok {
		doc.Info = readInfo(info)
	}
	dests, ok := catalog.Dict("Dests")
	if !ok {
		return
	}
	index := map[int]int{}
	count := 0
	if kids != nil {
		count = len(kids.Items)
		for i, k := range kids.Items {
			if ref, ok := k.(RefObj); ok {
				index[ref.R.Num] = i
			}
		}
	}
	for name, v := range dests.KV {
		arr, ok := v.(*ArrayObj)
		if !ok {
			continue
		}
		if dest, ok := readDestination(arr, index, count); ok {
			if doc.Dests == nil {
				doc.Dests = make(map[string]Destination)
			}
			doc.Dests[name] = dest
		}
	}
}

func readInfo(d *DictObj) Info {
	var info Info
	info.Title, _ = d.String("Title")
	info.Author, _ = d.String("Author")
	info.Subject, _ = d.String("Subject")
	info.Keywords, _ = d.String("Keywords")
	info.Creator, _ = d.String("Creator")
	info.Producer, _ = d.String("Producer")
	if s, ok := d.String("CreationDate"); ok {
		info.Created, _ = parseDate(s)
	}
	if s, ok := d.String("ModDate"); ok {
		info.Modified, _ = parseDate(s)
	}
	return info
}

// readDestination resolves the page of a destination array. A page
// object outside the page tree, or a page number out of range, makes
// the destination invalid.
func readDestination(arr *ArrayObj, index map[int]int, count int) (Destination, bool) {
	if len(arr.Items) < 2 {
		return Destination{}, false
	}
	var dest Destination
	switch p := arr.Items[0].(type) {
	case RefObj:
		i, ok := index[p.R.Num]
		if !ok {
			return Destination{}, false
		}
		dest.Page = i
	case NumberObj:
		dest.Page = int(p.Int())
		if dest.Page < 0 || dest.Page >= count {
			return Destination{}, false
		}
	default:
		return Destination{}, false
	}
	view, ok := arr.Items[1].(NameObj)
	if !ok {
		return Destination{}, false
	}
	dest.View = view.Val
	for _, it := range arr.Items[2:] {
		switch n := it.(type) {
		case NumberObj:
			dest.Params = append(dest.Params, n.Float())
		case NullObj:
			dest.Params = append(dest.Params, math.NaN())
		default:
			return Destination{}, false
		}
	}
	return dest, true
}

// ParsePage builds page index from the bytes its hint range covers.
// Bytes outside the header and that range are never read.
func ParsePage(data []byte, h Hints, index int) (*Page, error) {
	if index < 0 || index >= len(h.Pages) {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, index)
	}
	rng := h.Pages[index]
	if rng.End > int64(len(data)) {
		return nil, fmt.Errorf("%w: page %d bytes missing", ErrMalformed, index)
	}
	objs, err := scanObjects(data, int(rng.Start), int(rng.End))
	if err != nil {
		return nil, err
	}
	r := &resolver{objs: objs}
	// The page dictionary is the first object of its range.
	first := -1
	for _, num := range sortedInts(objs) {
		if first < 0 || objs[num].offset < objs[first].offset {
			first = num
		}
	}
	if first < 0 {
		return nil, fmt.Errorf("%w: empty page range %d", ErrMalformed, index)
	}
	return r.page(ObjectRef{Num: first})
}

type resolver struct {
	objs map[int]indirect
}

func (r *resolver) dict(ref ObjectRef) (*DictObj, bool) {
	ind, ok := r.objs[ref.Num]
	if !ok {
		return nil, false
	}
	d, ok := ind.obj.(*DictObj)
	return d, ok
}

func (r *resolver) findCatalog() (*DictObj, error) {
	for _, num := range sortedInts(r.objs) {
		if d, ok := r.objs[num].obj.(*DictObj); ok {
			if t, _ := d.Name("Type"); t == "Catalog" {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no catalog", ErrMalformed)
}

func (r *resolver) infoDict() (*DictObj, bool) { return r.dict(ObjectRef{Num: infoObj}) }

func (r *resolver) page(ref ObjectRef) (*Page, error) {
	d, ok := r.dict(ref)
	if !ok {
		return nil, fmt.Errorf("%w: page object %d", ErrMalformed, ref.Num)
	}
	if t, _ := d.Name("Type"); t != "Page" {
		return nil, fmt.Errorf("%w: object %d is not a page", ErrMalformed, ref.Num)
	}
	page := &Page{}
	box, ok := readBox(d, "MediaBox")
	if !ok {
		return nil, fmt.Errorf("%w: page %d media box", ErrMalformed, ref.Num)
	}
	page.MediaBox = box
	if rot, ok := d.Number("Rotate"); ok {
		page.Rotate = coords.RotationFromDegrees(int(rot.Int()))
	}
	alphas := map[string]uint8{}
	if res, ok := d.Dict("Resources"); ok {
		if states, ok := res.Dict("ExtGState"); ok {
			for name, v := range states.KV {
				gs, ok := v.(*DictObj)
				if !ok {
					continue
				}
				if ca, ok := gs.Number("CA"); ok {
					alphas[name] = uint8(math.Round(ca.Float() * 255))
				}
			}
		}
	}
	if cref, ok := d.Ref("Contents"); ok {
		ind, ok := r.objs[cref.Num]
		if !ok {
			return nil, fmt.Errorf("%w: contents %d", ErrMalformed, cref.Num)
		}
		stream, ok := ind.obj.(*StreamObj)
		if !ok {
			return nil, fmt.Errorf("%w: contents %d is not a stream", ErrMalformed, cref.Num)
		}
		objs, err := decodeContent(stream.Data, alphas)
		if err != nil {
			return nil, err
		}
		page.Objects = objs
	}
	if annots, ok := d.Array("Annots"); ok {
		for _, it := range annots.Items {
			aref, ok := it.(RefObj)
			if !ok {
				continue
			}
			ad, ok := r.dict(aref.R)
			if !ok {
				return nil, fmt.Errorf("%w: annotation %d", ErrMalformed, aref.R.Num)
			}
			if a := readAnnotation(ad); a != nil {
				page.Annotations = append(page.Annotations, a)
			}
		}
	}
	return page, nil
}

func readBox(d *DictObj, key string) (coords.Box, bool) {
	arr, ok := d.Array(key)
	if !ok {
		return coords.Box{}, false
	}
	v, ok := arr.Floats()
	if !ok || len(v) != 4 {
		return coords.Box{}, false
	}
	return coords.Box{LLX: v[0], LLY: v[1], URX: v[2], URY: v[3]}, true
}

// readAnnotation returns nil for subtypes the engine does not model.
func readAnnotation(d *DictObj) *Annotation {
	sub, _ := d.Name("Subtype")
	a := &Annotation{Subtype: AnnotSubtype(sub)}
	a.Rect, _ = readBox(d, "Rect")
	a.Contents, _ = d.String("Contents")
	switch a.Subtype {
	case AnnotLink:
		if act, ok := d.Dict("A"); ok {
			a.URI, _ = act.String("URI")
		}
	case AnnotHighlight:
		a.Color = color.NRGBA{A: 255}
		if c, ok := d.Array("C"); ok {
			if v, ok := c.Floats(); ok && len(v) == 3 {
				a.Color.R, a.Color.G, a.Color.B = component(v[0]), component(v[1]), component(v[2])
			}
		}
		if ca, ok := d.Number("CA"); ok {
			a.Color.A = component(ca.Float())
		}
	case AnnotWidget:
		a.Field = readField(d)
	default:
		return nil
	}
	return a
}

func readField(d *DictObj) *Field {
	f := &Field{}
	f.Name, _ = d.String("T")
	f.Value, _ = d.String("V")
	flags := 0
	if n, ok := d.Number("Ff"); ok {
		flags = int(n.Int())
	}
	f.ReadOnly = flags&flagReadOnly != 0
	ft, _ := d.Name("FT")
	switch {
	case ft == "Btn" && flags&flagPushButton != 0:
		f.Kind = FieldPushButton
	case ft == "Btn":
		f.Kind = FieldCheckBox
	case ft == "Ch":
		f.Kind = FieldComboBox
	default:
		f.Kind = FieldText
	}
	if aa, ok := d.Dict("AA"); ok {
		if fo, ok := aa.Dict("Fo"); ok {
			f.FocusScript, _ = fo.String("JS")
		}
	}
	return f
}
