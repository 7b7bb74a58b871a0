package document

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/wudi/pdfengine/coords"
)

// hintWidth is the fixed digit count of every number in the hint
// dictionary, so the dictionary can be rewritten in place.
const hintWidth = 10

// Reserved object numbers of the document header.
const (
	hintObj = iota + 1
	catalogObj
	pagesObj
	fontObj
	infoObj
	firstPageObj
)

var ErrIncomplete = errors.New("document: not every page is loaded")

// Config controls the writer.
type Config struct {
	Producer string
}

// pageRefs is the object numbering of one page.
type pageRefs struct {
	page    int
	content int
	annots  []int
}

// Write serializes d. Output depends only on d and cfg: writing the same
// document twice yields the same bytes.
func Write(w io.Writer, d *Document, cfg Config) (Hints, error) {
	if !d.Loaded() {
		return Hints{}, ErrIncomplete
	}
	refs := make([]pageRefs, len(d.Pages))
	next := firstPageObj
	var fields []Object
	for i, p := range d.Pages {
		refs[i].page = next
		refs[i].content = next + 1
		next += 2
		for _, a := range p.Annotations {
			refs[i].annots = append(refs[i].annots, next)
			if a.Subtype == AnnotWidget {
				fields = append(fields, Ref(next, 0))
			}
			next++
		}
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make(map[int]int64)
	put := func(num int, obj Object) {
		offsets[num] = int64(buf.Len())
		buf.WriteString(strconv.Itoa(num) + " 0 obj\n")
		buf.Write(serializePrimitive(obj))
		buf.WriteString("\nendobj\n")
	}

	hints := Hints{Pages: make([]Range, len(d.Pages))}
	put(hintObj, hintDict(hints))

	catalog := Dict()
	catalog.Set("Type", NameLiteral("Catalog"))
	catalog.Set("Pages", Ref(pagesObj, 0))
	if len(fields) > 0 {
		form := Dict()
		form.Set("Fields", NewArray(fields...))
		catalog.Set("AcroForm", form)
	}
	if len(d.Dests) > 0 {
		catalog.Set("Dests", destsDict(d.Dests, refs))
	}
	put(catalogObj, catalog)

	kids := NewArray()
	for _, r := range refs {
		kids.Append(Ref(r.page, 0))
	}
	pages := Dict()
	pages.Set("Type", NameLiteral("Pages"))
	pages.Set("Count", NumberInt(int64(len(d.Pages))))
	pages.Set("Kids", kids)
	put(pagesObj, pages)

	font := Dict()
	font.Set("Type", NameLiteral("Font"))
	font.Set("Subtype", NameLiteral("Type1"))
	font.Set("BaseFont", NameLiteral(MonoFont.BaseFont))
	put(fontObj, font)

	put(infoObj, infoDict(d.Info, cfg))
	hints.Header = Range{Start: 0, End: int64(buf.Len())}

	for i, p := range d.Pages {
		start := int64(buf.Len())
		content, alphas := encodeContent(p.Objects)
		put(refs[i].page, pageDict(p, refs[i], alphas))
		put(refs[i].content, NewStream(Dict(), content))
		for j, a := range p.Annotations {
			put(refs[i].annots[j], annotDict(a, refs[i].page))
		}
		hints.Pages[i] = Range{Start: start, End: int64(buf.Len())}
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", next)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < next; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	trailer := Dict()
	trailer.Set("Size", NumberInt(int64(next)))
	trailer.Set("Root", Ref(catalogObj, 0))
	trailer.Set("Info", Ref(infoObj, 0))
	buf.WriteString("trailer\n")
	buf.Write(serializePrimitive(trailer))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	hints.Length = int64(buf.Len())

	// The hint dictionary has a fixed width, so patching it leaves every
	// offset valid.
	var patched bytes.Buffer
	patched.WriteString(strconv.Itoa(hintObj) + " 0 obj\n")
	patched.Write(serializePrimitive(hintDict(hints)))
	out := buf.Bytes()
	copy(out[offsets[hintObj]:], patched.Bytes())

	if _, err := w.Write(out); err != nil {
		return Hints{}, err
	}
	return hints, nil
}

// Bytes writes d to memory.
func (d *Document) Bytes(cfg Config) ([]byte, Hints, error) {
	var buf bytes.Buffer
	h, err := Write(&buf, d, cfg)
	if err != nil {
		return nil, Hints{}, err
	}
	return buf.Bytes(), h, nil
}

// infoDict leaves out empty entries. A producer in cfg wins over the
// one the document carries.
func infoDict(info Info, cfg Config) *DictObj {
	d := Dict()
	for _, kv := range []struct{ key, val string }{
		{"Title", info.Title},
		{"Author", info.Author},
		{"Subject", info.Subject},
		{"Keywords", info.Keywords},
		{"Creator", info.Creator},
		{"Producer", cmp.Or(cfg.Producer, info.Producer)},
	} {
		if kv.val != "" {
			d.Set(kv.key, Str(kv.val))
		}
	}
	if !info.Created.IsZero() {
		d.Set("CreationDate", Str(formatDate(info.Created)))
	}
	if !info.Modified.IsZero() {
		d.Set("ModDate", Str(formatDate(info.Modified)))
	}
	return d
}

// destsDict points each destination at its page object. A page index
// outside the document is written as a bare number.
func destsDict(dests map[string]Destination, refs []pageRefs) *DictObj {
	d := Dict()
	for name, dest := range dests {
		arr := NewArray()
		if dest.Page >= 0 && dest.Page < len(refs) {
			arr.Append(Ref(refs[dest.Page].page, 0))
		} else {
			arr.Append(NumberInt(int64(dest.Page)))
		}
		arr.Append(NameLiteral(dest.View))
		for _, v := range dest.Params {
			if math.IsNaN(v) {
				arr.Append(NullObj{})
				continue
			}
			arr.Append(NumberFloat(v))
		}
		d.Set(name, arr)
	}
	return d
}

func hintDict(h Hints) *DictObj {
	d := Dict()
	d.Set("Linearized", NumberInt(1))
	d.Set("L", NumberPadded(h.Length, hintWidth))
	d.Set("N", NumberPadded(int64(len(h.Pages)), hintWidth))
	d.Set("E", NumberPadded(h.Header.End, hintWidth))
	ranges := NewArray()
	for _, r := range h.Pages {
		ranges.Append(NumberPadded(r.Start, hintWidth))
		ranges.Append(NumberPadded(r.End, hintWidth))
	}
	d.Set("P", ranges)
	return d
}

func boxArray(b coords.Box) *ArrayObj {
	return NewArray(NumberFloat(b.LLX), NumberFloat(b.LLY), NumberFloat(b.URX), NumberFloat(b.URY))
}

func pageDict(p *Page, r pageRefs, alphas []uint8) *DictObj {
	d := Dict()
	d.Set("Type", NameLiteral("Page"))
	d.Set("Parent", Ref(pagesObj, 0))
	d.Set("MediaBox", boxArray(p.MediaBox))
	if deg := p.Rotate.Degrees(); deg != 0 {
		d.Set("Rotate", NumberInt(int64(deg)))
	}
	fonts := Dict()
	fonts.Set(MonoFont.Resource, Ref(fontObj, 0))
	res := Dict()
	res.Set("Font", fonts)
	if len(alphas) > 0 {
		states := Dict()
		for _, a := range alphas {
			gs := Dict()
			gs.Set("Type", NameLiteral("ExtGState"))
			gs.Set("CA", NumberFloat(float64(a)/255))
			gs.Set("ca", NumberFloat(float64(a)/255))
			states.Set(opacityResource(a), gs)
		}
		res.Set("ExtGState", states)
	}
	d.Set("Resources", res)
	d.Set("Contents", Ref(r.content, 0))
	if len(r.annots) > 0 {
		annots := NewArray()
		for _, n := range r.annots {
			annots.Append(Ref(n, 0))
		}
		d.Set("Annots", annots)
	}
	return d
}

// Field flag bits.
const (
	flagReadOnly   = 1 << 0
	flagPushButton = 1 << 16
	flagCombo      = 1 << 17
)

func annotDict(a *Annotation, page int) *DictObj {
	d := Dict()
	d.Set("Type", NameLiteral("Annot"))
	d.Set("Subtype", NameLiteral(string(a.Subtype)))
	d.Set("Rect", boxArray(a.Rect))
	d.Set("P", Ref(page, 0))
	if a.Contents != "" {
		d.Set("Contents", Str(a.Contents))
	}
	switch a.Subtype {
	case AnnotLink:
		act := Dict()
		act.Set("S", NameLiteral("URI"))
		act.Set("URI", Str(a.URI))
		d.Set("A", act)
		d.Set("Border", NewArray(NumberInt(0), NumberInt(0), NumberInt(0)))
	case AnnotHighlight:
		r, g, b := float64(a.Color.R)/255, float64(a.Color.G)/255, float64(a.Color.B)/255
		d.Set("C", NewArray(NumberFloat(r), NumberFloat(g), NumberFloat(b)))
		if a.Color.A != 255 {
			d.Set("CA", NumberFloat(float64(a.Color.A)/255))
		}
	case AnnotWidget:
		if f := a.Field; f != nil {
			writeField(d, f)
		}
	}
	return d
}

func writeField(d *DictObj, f *Field) {
	flags := 0
	switch f.Kind {
	case FieldText:
		d.Set("FT", NameLiteral("Tx"))
	case FieldPushButton:
		d.Set("FT", NameLiteral("Btn"))
		flags |= flagPushButton
	case FieldCheckBox:
		d.Set("FT", NameLiteral("Btn"))
	case FieldComboBox:
		d.Set("FT", NameLiteral("Ch"))
		flags |= flagCombo
	}
	if f.ReadOnly {
		flags |= flagReadOnly
	}
	if flags != 0 {
		d.Set("Ff", NumberInt(int64(flags)))
	}
	d.Set("T", Str(f.Name))
	if f.Value != "" {
		d.Set("V", Str(f.Value))
	}
	if f.FocusScript != "" {
		js := Dict()
		js.Set("S", NameLiteral("JavaScript"))
		js.Set("JS", Str(f.FocusScript))
		aa := Dict()
		aa.Set("Fo", js)
		d.Set("AA", aa)
	}
}

// sortedInts is used where map iteration must be stable.
func sortedInts(m map[int]indirect) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
