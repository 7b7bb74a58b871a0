package document

import (
	"bytes"
	"errors"
	"io"
)

// MarkedContent returns the raw bytes of every marked-content sequence
// tagged tag in the page content streams of data, from the BDC operator
// through its EMC, in page order.
func MarkedContent(data []byte, tag string) ([][]byte, error) {
	h, err := ParseHints(data)
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for i := range h.Pages {
		objs, err := scanObjects(data, int(h.Pages[i].Start), int(h.Pages[i].End))
		if err != nil {
			return nil, err
		}
		for _, num := range sortedInts(objs) {
			s, ok := objs[num].obj.(*StreamObj)
			if !ok {
				continue
			}
			seqs, err := markedSequences(s.Data, tag)
			if err != nil {
				return nil, err
			}
			out = append(out, seqs...)
		}
	}
	return out, nil
}

func markedSequences(content []byte, tag string) ([][]byte, error) {
	lx := newLexer(content)
	var (
		out     [][]byte
		lastTag string
		tagPos  = -1
		start   = -1
		depth   int
	)
	for {
		tok, err := lx.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenName:
			lastTag, tagPos = tok.value.(string), tok.pos
		case tokenDict:
			// skip the property list so its keys are not taken as tags
			p := &objectParser{lx: lx}
			if _, err := p.parseDict(); err != nil {
				return nil, err
			}
		case tokenKeyword:
			switch tok.value {
			case "BDC", "BMC":
				depth++
				if depth == 1 && lastTag == tag {
					start = tagPos
				}
			case "EMC":
				if depth == 1 && start >= 0 {
					out = append(out, bytes.Clone(content[start:lx.pos]))
					start = -1
				}
				if depth > 0 {
					depth--
				}
			}
		}
	}
}
