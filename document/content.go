package document

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/wudi/pdfengine/coords"
)

// opacityResource names the ExtGState entry for a stroke alpha.
func opacityResource(a uint8) string { return "GS" + strconv.Itoa(int(a)) }

// encodeContent writes objs as a content stream. It returns the set of
// alpha values referenced through ExtGState resources.
func encodeContent(objs []*PageObject) ([]byte, []uint8) {
	var b bytes.Buffer
	alphas := map[uint8]bool{}
	var open *Mark
	for _, o := range objs {
		if o.Mark != open {
			if open != nil {
				b.WriteString("EMC\n")
			}
			open = o.Mark
			if open != nil {
				b.WriteString("/" + pdfNameLiteral(open.Tag) + " ")
				b.Write(serializePrimitive(markProps(open)))
				b.WriteString(" BDC\n")
			}
		}
		switch o.Kind {
		case TextObject:
			if o.Text != nil {
				encodeTextRun(&b, o.Text)
			}
		case PathObject:
			if o.Path != nil {
				if o.Path.Color.A != 255 {
					alphas[o.Path.Color.A] = true
				}
				encodePath(&b, o.Path)
			}
		}
	}
	if open != nil {
		b.WriteString("EMC\n")
	}
	out := make([]uint8, 0, len(alphas))
	for a := range alphas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return b.Bytes(), out
}

func markProps(m *Mark) *DictObj {
	d := Dict()
	for k, v := range m.Props {
		d.Set(k, Str(v))
	}
	return d
}

func encodeTextRun(b *bytes.Buffer, t *TextRun) {
	b.WriteString("BT\n")
	fmt.Fprintf(b, "/%s %s Tf\n", MonoFont.Resource, formatNumber(t.FontSize))
	fmt.Fprintf(b, "%s %s Td\n", formatNumber(t.X), formatNumber(t.Y))
	b.Write(escapeLiteralString(encodeLatin1(t.Text)))
	b.WriteString(" Tj\nET\n")
}

func encodePath(b *bytes.Buffer, p *Path) {
	b.WriteString("q\n")
	r, g, bl := colorComponents(p.Color)
	fmt.Fprintf(b, "%s %s %s RG\n", r, g, bl)
	if p.Fill {
		fmt.Fprintf(b, "%s %s %s rg\n", r, g, bl)
	}
	fmt.Fprintf(b, "%s w\n%d J\n%d j\n", formatNumber(p.LineWidth), p.Cap, p.Join)
	if p.Color.A != 255 {
		fmt.Fprintf(b, "/%s gs\n", opacityResource(p.Color.A))
	}
	for _, sp := range p.Subpaths {
		for i, pt := range sp.Points {
			op := "l"
			if i == 0 {
				op = "m"
			}
			fmt.Fprintf(b, "%s %s %s\n", formatNumber(pt.X), formatNumber(pt.Y), op)
		}
		if sp.Closed {
			b.WriteString("h\n")
		}
	}
	if p.Fill {
		b.WriteString("B\n")
	} else {
		b.WriteString("S\n")
	}
	b.WriteString("Q\n")
}

func colorComponents(c color.NRGBA) (string, string, string) {
	return formatNumber(float64(c.R) / 255), formatNumber(float64(c.G) / 255), formatNumber(float64(c.B) / 255)
}

func component(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

var errContent = errors.New("document: malformed content stream")

// graphicsState is the subset of PDF graphics state the decoder tracks.
type graphicsState struct {
	color     color.NRGBA
	lineWidth float64
	cap       LineCap
	join      LineJoin
}

// decodeContent rebuilds page objects from a content stream. alphas maps
// ExtGState resource names to stroke alpha.
func decodeContent(data []byte, alphas map[string]uint8) ([]*PageObject, error) {
	lx := newLexer(data)
	p := &objectParser{lx: lx}
	var (
		out      []*PageObject
		operands []Object
		gs       = graphicsState{color: color.NRGBA{A: 255}, lineWidth: 1}
		stack    []graphicsState
		mark     *Mark
		path     *Path
		text     *TextRun
		inText   bool
	)
	num := func(i int) float64 {
		if i < len(operands) {
			if n, ok := operands[i].(NumberObj); ok {
				return n.Float()
			}
		}
		return 0
	}
	for {
		tok, err := lx.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if tok.typ != tokenKeyword {
			obj, err := p.parseFrom(tok)
			if err != nil {
				return nil, err
			}
			operands = append(operands, obj)
			continue
		}
		switch op := tok.value.(string); op {
		case "q":
			stack = append(stack, gs)
		case "Q":
			if len(stack) > 0 {
				gs = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		case "RG":
			gs.color = color.NRGBA{R: component(num(0)), G: component(num(1)), B: component(num(2)), A: gs.color.A}
		case "w":
			gs.lineWidth = num(0)
		case "J":
			gs.cap = LineCap(num(0))
		case "j":
			gs.join = LineJoin(num(0))
		case "gs":
			if len(operands) == 1 {
				if n, ok := operands[0].(NameObj); ok {
					if a, ok := alphas[n.Val]; ok {
						gs.color.A = a
					}
				}
			}
		case "m":
			if path == nil {
				path = &Path{}
			}
			path.Subpaths = append(path.Subpaths, Subpath{Points: []coords.Point{{X: num(0), Y: num(1)}}})
		case "l":
			if path == nil || len(path.Subpaths) == 0 {
				return nil, fmt.Errorf("%w: lineto without moveto", errContent)
			}
			sp := &path.Subpaths[len(path.Subpaths)-1]
			sp.Points = append(sp.Points, coords.Point{X: num(0), Y: num(1)})
		case "h":
			if path != nil && len(path.Subpaths) > 0 {
				path.Subpaths[len(path.Subpaths)-1].Closed = true
			}
		case "S", "B", "f":
			if path != nil {
				path.Color = gs.color
				path.LineWidth = gs.lineWidth
				path.Cap = gs.cap
				path.Join = gs.join
				path.Fill = op != "S"
				out = append(out, &PageObject{Kind: PathObject, Path: path, Mark: mark})
				path = nil
			}
		case "BT":
			inText = true
			text = &TextRun{}
		case "Tf":
			if inText {
				text.FontSize = num(1)
			}
		case "Td":
			if inText {
				text.X, text.Y = num(0), num(1)
			}
		case "Tj":
			if inText && len(operands) == 1 {
				if s, ok := operands[0].(StringObj); ok {
					text.Text += decodeLatin1(s.Bytes)
				}
			}
		case "ET":
			if inText {
				out = append(out, &PageObject{Kind: TextObject, Text: text, Mark: mark})
			}
			inText = false
			text = nil
		case "BDC", "BMC":
			if len(operands) == 0 {
				return nil, fmt.Errorf("%w: %s without tag", errContent, op)
			}
			tag, ok := operands[0].(NameObj)
			if !ok {
				return nil, fmt.Errorf("%w: %s tag", errContent, op)
			}
			mark = &Mark{Tag: tag.Val, Props: map[string]string{}}
			if len(operands) > 1 {
				if d, ok := operands[1].(*DictObj); ok {
					for k, v := range d.KV {
						if s, ok := v.(StringObj); ok {
							mark.Props[k] = string(s.Bytes)
						}
					}
				}
			}
		case "EMC":
			mark = nil
		}
		operands = operands[:0]
	}
	return out, nil
}
