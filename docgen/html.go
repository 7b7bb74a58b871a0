package docgen

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

// Widget sizes for form inputs, in points.
const (
	textFieldWidth  = 200.0
	buttonWidth     = 80.0
	widgetLineScale = 1.6
)

// FromHTML lays out a subset of HTML: headings, paragraphs, list items,
// anchors, br, and hr as a page break. Text inputs and buttons become
// form widgets; an onfocus attribute becomes the field's focus script.
func FromHTML(src []byte, opts ...Option) (*document.Document, error) {
	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	g := newGenerator(opts...)
	g.walkHTML(root)
	g.ensurePage()
	return g.document(), nil
}

func (g *Generator) walkHTML(n *html.Node) {
	if n.Type == html.TextNode {
		g.paragraph(splitWords(n.Data, ""), g.Margins.Left, g.FontSize)
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Title, atom.Script, atom.Style:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			g.heading(htmlWords(n), headingLevel(n.DataAtom))
			return
		case atom.P, atom.Div:
			if !hasBlockChild(n) {
				g.paragraph(htmlWords(n), g.Margins.Left, g.FontSize)
				return
			}
		case atom.Li:
			g.checkPageBreak(g.FontSize * g.LineHeight)
			g.b.Text(g.Margins.Left, g.cursorY-g.FontSize, g.FontSize, "-")
			g.paragraph(htmlWords(n), g.Margins.Left+listIndent, g.FontSize)
			return
		case atom.Pre:
			g.literal(textContent(n))
			return
		case atom.Hr:
			g.pageBreak()
			return
		case atom.Input, atom.Button:
			g.input(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		g.walkHTML(c)
	}
}

func (g *Generator) input(n *html.Node) {
	f := &document.Field{
		Name:        attr(n, "name"),
		Value:       attr(n, "value"),
		FocusScript: attr(n, "onfocus"),
	}
	_, f.ReadOnly = attrOK(n, "readonly")
	width := textFieldWidth
	kind := attr(n, "type")
	switch {
	case n.DataAtom == atom.Button || kind == "button" || kind == "submit":
		f.Kind = document.FieldPushButton
		width = buttonWidth
		if f.Value == "" {
			f.Value = strings.TrimSpace(textContent(n))
		}
	case kind == "checkbox":
		f.Kind = document.FieldCheckBox
		width = g.FontSize
	case kind == "" || kind == "text":
		f.Kind = document.FieldText
	default:
		g.log.Debug("input type not laid out", observability.String("type", kind))
		return
	}
	g.widget(width, g.FontSize*widgetLineScale, f)
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	}
	return 3
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Li, atom.Hr, atom.Pre, atom.Input, atom.Button,
			atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return true
		}
	}
	return false
}

// htmlWords collects inline text. Words inside an anchor carry its href
// and br forces a line break.
func htmlWords(n *html.Node) []word {
	var out []word
	var walk func(*html.Node, string)
	walk = func(n *html.Node, url string) {
		switch {
		case n.Type == html.TextNode:
			out = append(out, splitWords(n.Data, url)...)
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			out = append(out, word{br: true})
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.A:
			if href := attr(n, "href"); href != "" {
				url = href
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, url)
		}
	}
	walk(n, "")
	return mergeBreaks(out)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
