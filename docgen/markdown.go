package docgen

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/pdfengine/document"
)

const listIndent = 15.0

// FromMarkdown lays out CommonMark source. A thematic break starts a new
// page, and link text becomes link annotations.
func FromMarkdown(src []byte, opts ...Option) (*document.Document, error) {
	g := newGenerator(opts...)
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	if err := g.walkMarkdown(root, src, g.Margins.Left); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	g.ensurePage()
	return g.document(), nil
}

func (g *Generator) walkMarkdown(node ast.Node, src []byte, x float64) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			g.heading(inlineWords(n, src), n.Level)
		case *ast.Paragraph, *ast.TextBlock:
			g.paragraph(inlineWords(n, src), x, g.FontSize)
		case *ast.List:
			if err := g.walkMarkdown(n, src, x); err != nil {
				return err
			}
		case *ast.ListItem:
			g.checkPageBreak(g.FontSize * g.LineHeight)
			g.b.Text(x, g.cursorY-g.FontSize, g.FontSize, "-")
			if err := g.walkMarkdown(n, src, x+listIndent); err != nil {
				return err
			}
		case *ast.Blockquote:
			if err := g.walkMarkdown(n, src, x+listIndent); err != nil {
				return err
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			g.literal(string(blockLines(n, src)))
		case *ast.ThematicBreak:
			g.pageBreak()
		case *ast.HTMLBlock:
			// raw HTML is not laid out
		default:
			return fmt.Errorf("unsupported block %s", n.Kind())
		}
	}
	return nil
}

func blockLines(n ast.Node, src []byte) []byte {
	var out []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, seg.Value(src)...)
	}
	return out
}

// inlineWords flattens the inline children of n. Words inside links carry
// the link destination.
func inlineWords(n ast.Node, src []byte) []word {
	var out []word
	var walk func(ast.Node, string)
	walk = func(node ast.Node, url string) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				ws := splitWords(string(t.Segment.Value(src)), url)
				if t.HardLineBreak() && len(ws) > 0 {
					ws = append(ws, word{br: true})
				}
				out = append(out, ws...)
			case *ast.String:
				out = append(out, splitWords(string(t.Value), url)...)
			case *ast.Link:
				walk(t, string(t.Destination))
			case *ast.AutoLink:
				out = append(out, splitWords(string(t.Label(src)), string(t.URL(src)))...)
			default:
				walk(c, url)
			}
		}
	}
	walk(n, "")
	return mergeBreaks(out)
}

// mergeBreaks folds break markers into the flag of the following word.
func mergeBreaks(ws []word) []word {
	out := ws[:0]
	pending := false
	for _, w := range ws {
		if w.text == "" {
			pending = true
			continue
		}
		w.br = w.br || pending
		pending = false
		out = append(out, w)
	}
	return out
}
