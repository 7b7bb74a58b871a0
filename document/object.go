package document

import "fmt"

// Object is a parsed or to-be-written PDF object. The set is the subset
// the engine reads and writes.
type Object interface {
	Type() string
}

// ObjectRef identifies an indirect object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

type NameObj struct{ Val string }

func (n NameObj) Type() string { return "name" }

type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
	// Pad zero-pads integers to a fixed width so their byte length is
	// known before the value is.
	Pad int
}

func (n NumberObj) Type() string { return "number" }
func (n NumberObj) Int() int64 {
	if n.IsInt {
		return n.I
	}
	return int64(n.F)
}
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

type BoolObj struct{ V bool }

func (b BoolObj) Type() string { return "boolean" }

type NullObj struct{}

func (NullObj) Type() string { return "null" }

type StringObj struct {
	Bytes []byte
	Hex   bool
}

func (s StringObj) Type() string { return "string" }

type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Type() string    { return "array" }
func (a *ArrayObj) Len() int        { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// Floats returns the numeric items; non-numbers make ok false.
func (a *ArrayObj) Floats() (out []float64, ok bool) {
	out = make([]float64, 0, len(a.Items))
	for _, it := range a.Items {
		n, isNum := it.(NumberObj)
		if !isNum {
			return nil, false
		}
		out = append(out, n.Float())
	}
	return out, true
}

type DictObj struct{ KV map[string]Object }

func (d *DictObj) Type() string { return "dict" }
func (d *DictObj) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}
func (d *DictObj) Get(key string) (Object, bool) {
	if d == nil {
		return nil, false
	}
	o, ok := d.KV[key]
	return o, ok
}

func (d *DictObj) Name(key string) (string, bool) {
	o, _ := d.Get(key)
	n, ok := o.(NameObj)
	return n.Val, ok
}

func (d *DictObj) Number(key string) (NumberObj, bool) {
	o, _ := d.Get(key)
	n, ok := o.(NumberObj)
	return n, ok
}

func (d *DictObj) String(key string) (string, bool) {
	o, _ := d.Get(key)
	s, ok := o.(StringObj)
	return string(s.Bytes), ok
}

func (d *DictObj) Array(key string) (*ArrayObj, bool) {
	o, _ := d.Get(key)
	a, ok := o.(*ArrayObj)
	return a, ok
}

func (d *DictObj) Dict(key string) (*DictObj, bool) {
	o, _ := d.Get(key)
	v, ok := o.(*DictObj)
	return v, ok
}

func (d *DictObj) Ref(key string) (ObjectRef, bool) {
	o, _ := d.Get(key)
	r, ok := o.(RefObj)
	return r.R, ok
}

type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) Type() string { return "stream" }

type RefObj struct{ R ObjectRef }

func (r RefObj) Type() string { return "ref" }

// Helpers
func NameLiteral(v string) NameObj                    { return NameObj{Val: v} }
func NumberInt(i int64) NumberObj                     { return NumberObj{I: i, IsInt: true} }
func NumberPadded(i int64, width int) NumberObj       { return NumberObj{I: i, IsInt: true, Pad: width} }
func NumberFloat(f float64) NumberObj                 { return NumberObj{F: f} }
func Bool(v bool) BoolObj                             { return BoolObj{V: v} }
func Str(s string) StringObj                          { return StringObj{Bytes: []byte(s)} }
func NewArray(items ...Object) *ArrayObj              { return &ArrayObj{Items: items} }
func Dict() *DictObj                                  { return &DictObj{KV: make(map[string]Object)} }
func NewStream(dict *DictObj, data []byte) *StreamObj { return &StreamObj{Dict: dict, Data: data} }
func Ref(num, gen int) RefObj                         { return RefObj{R: ObjectRef{Num: num, Gen: gen}} }
