package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var ErrMalformed = errors.New("document: malformed file")

// objectParser builds Objects from lexer tokens.
type objectParser struct {
	lx *lexer
}

func (p *objectParser) parseObject() (Object, error) {
	tok, err := p.lx.next()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

func (p *objectParser) parseFrom(tok token) (Object, error) {
	switch tok.typ {
	case tokenDict:
		return p.parseDict()
	case tokenArray:
		return p.parseArray()
	case tokenName:
		return NameLiteral(tok.value.(string)), nil
	case tokenString:
		return tok.value.(StringObj), nil
	case tokenNumber:
		return tok.value.(NumberObj), nil
	case tokenBoolean:
		return Bool(tok.value.(bool)), nil
	case tokenNull:
		return NullObj{}, nil
	case tokenRef:
		return RefObj{R: tok.value.(ObjectRef)}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %v at %d", ErrMalformed, tok.value, tok.pos)
	}
}

func (p *objectParser) parseDict() (*DictObj, error) {
	d := Dict()
	for {
		tok, err := p.lx.next()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated dictionary", ErrMalformed)
		}
		if tok.typ == tokenKeyword && tok.value == ">>" {
			return d, nil
		}
		if tok.typ != tokenName {
			return nil, fmt.Errorf("%w: dictionary key at %d", ErrMalformed, tok.pos)
		}
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		d.Set(tok.value.(string), val)
	}
}

func (p *objectParser) parseArray() (*ArrayObj, error) {
	a := NewArray()
	for {
		tok, err := p.lx.next()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated array", ErrMalformed)
		}
		if tok.typ == tokenKeyword && tok.value == "]" {
			return a, nil
		}
		val, err := p.parseFrom(tok)
		if err != nil {
			return nil, err
		}
		a.Append(val)
	}
}

// indirect is one "n g obj ... endobj" block and where it sits in the file.
type indirect struct {
	ref    ObjectRef
	obj    Object
	offset int
	end    int
}

// parseIndirect reads the indirect object that starts at the lexer
// position.
func (p *objectParser) parseIndirect() (indirect, error) {
	numTok, err := p.lx.next()
	if err != nil {
		return indirect{}, err
	}
	start := numTok.pos
	num, ok := numTok.value.(NumberObj)
	if numTok.typ != tokenNumber || !ok || !num.IsInt {
		return indirect{}, fmt.Errorf("%w: expected object number at %d", ErrMalformed, numTok.pos)
	}
	genTok, err := p.lx.next()
	if err != nil || genTok.typ != tokenNumber {
		return indirect{}, fmt.Errorf("%w: expected generation at %d", ErrMalformed, numTok.pos)
	}
	kw, err := p.lx.next()
	if err != nil || kw.typ != tokenKeyword || kw.value != "obj" {
		return indirect{}, fmt.Errorf("%w: expected obj at %d", ErrMalformed, numTok.pos)
	}
	obj, err := p.parseObject()
	if err != nil {
		return indirect{}, err
	}
	kw, err = p.lx.next()
	if err != nil {
		return indirect{}, fmt.Errorf("%w: missing endobj", ErrMalformed)
	}
	if kw.typ == tokenKeyword && kw.value == "stream" {
		dict, ok := obj.(*DictObj)
		if !ok {
			return indirect{}, fmt.Errorf("%w: stream without dictionary", ErrMalformed)
		}
		data, err := p.readStream(dict)
		if err != nil {
			return indirect{}, err
		}
		obj = NewStream(dict, data)
		kw, err = p.lx.next()
		if err != nil {
			return indirect{}, fmt.Errorf("%w: missing endobj", ErrMalformed)
		}
	}
	if kw.typ != tokenKeyword || kw.value != "endobj" {
		return indirect{}, fmt.Errorf("%w: expected endobj at %d", ErrMalformed, kw.pos)
	}
	gen := genTok.value.(NumberObj)
	return indirect{
		ref:    ObjectRef{Num: int(num.I), Gen: int(gen.I)},
		obj:    obj,
		offset: start,
		end:    p.lx.pos,
	}, nil
}

func (p *objectParser) readStream(dict *DictObj) ([]byte, error) {
	l := p.lx
	if l.pos < len(l.data) && l.data[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\n' {
		l.pos++
	}
	n, ok := dict.Number("Length")
	if !ok || n.Int() < 0 || l.pos+int(n.Int()) > len(l.data) {
		return nil, fmt.Errorf("%w: bad stream length", ErrMalformed)
	}
	data := append([]byte(nil), l.data[l.pos:l.pos+int(n.Int())]...)
	l.pos += int(n.Int())
	tok, err := l.next()
	if err != nil || tok.typ != tokenKeyword || tok.value != "endstream" {
		return nil, fmt.Errorf("%w: missing endstream", ErrMalformed)
	}
	return data, nil
}

// scanObjects parses every indirect object in data[from:to]. Scanning
// stops at the first xref or trailer keyword.
func scanObjects(data []byte, from, to int) (map[int]indirect, error) {
	if to > len(data) {
		to = len(data)
	}
	lx := newLexer(data[:to])
	lx.pos = from
	p := &objectParser{lx: lx}
	out := make(map[int]indirect)
	for {
		lx.skipWSAndComments()
		if lx.pos >= to || bytes.HasPrefix(data[lx.pos:], []byte("xref")) || bytes.HasPrefix(data[lx.pos:], []byte("trailer")) {
			return out, nil
		}
		ind, err := p.parseIndirect()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out[ind.ref.Num] = ind
	}
}
