// Package docgen lays out Markdown and HTML sources as documents. Text
// is set in the monospace metrics of document.MonoFont.
package docgen

import (
	"strings"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

// Margins defines page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithFontSize sets the body text size.
func WithFontSize(size float64) Option {
	return func(g *Generator) { g.FontSize = size }
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(height float64) Option {
	return func(g *Generator) { g.LineHeight = height }
}

func WithMargins(m Margins) Option {
	return func(g *Generator) { g.Margins = m }
}

// WithPageSize sets the page size in points.
func WithPageSize(size coords.SizeF) Option {
	return func(g *Generator) { g.pageSize = size }
}

func WithTitle(title string) Option {
	return func(g *Generator) { g.b.Title(title) }
}

func WithLogger(l observability.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// Generator places blocks top to bottom and starts a new page when the
// bottom margin is reached.
type Generator struct {
	FontSize   float64
	LineHeight float64
	Margins    Margins

	log      observability.Logger
	b        *document.Builder
	pageSize coords.SizeF
	hasPage  bool
	cursorY  float64
	pages    int
}

func newGenerator(opts ...Option) *Generator {
	g := &Generator{
		FontSize:   12,
		LineHeight: document.MonoFont.LineHeight,
		Margins:    Margins{Top: 50, Bottom: 50, Left: 50, Right: 50},
		log:        observability.NopLogger{},
		b:          document.NewBuilder(),
		pageSize:   document.LetterSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) ensurePage() {
	if !g.hasPage {
		g.newPage()
	}
}

func (g *Generator) newPage() {
	g.b.AddPage(g.pageSize)
	g.hasPage = true
	g.pages++
	g.cursorY = g.pageSize.Height - g.Margins.Top
}

// pageBreak forces the next block onto a fresh page, leaving the
// current one blank if nothing was drawn yet.
func (g *Generator) pageBreak() {
	if !g.hasPage {
		g.newPage()
	}
	g.hasPage = false
}

func (g *Generator) checkPageBreak(height float64) {
	g.ensurePage()
	if g.cursorY-height < g.Margins.Bottom {
		g.newPage()
	}
}

func (g *Generator) heading(words []word, level int) {
	size := g.FontSize * 2
	switch {
	case level == 2:
		size = g.FontSize * 1.5
	case level >= 3:
		size = g.FontSize * 1.25
	}
	g.paragraph(words, g.Margins.Left, size)
}

// word is a whitespace-free piece of inline text. url is set for link
// text. br marks a forced line break before the word.
type word struct {
	text string
	url  string
	br   bool
}

// splitWords breaks text into words that share url.
func splitWords(text, url string) []word {
	var out []word
	for _, f := range strings.Fields(text) {
		out = append(out, word{text: f, url: url})
	}
	return out
}

// paragraph wraps words at the right margin starting at x. Runs of link
// words on one line get one link annotation.
func (g *Generator) paragraph(words []word, x, size float64) {
	if len(words) == 0 {
		return
	}
	maxWidth := g.pageSize.Width - g.Margins.Right - x
	var line []word
	flush := func() {
		if len(line) > 0 {
			g.line(line, x, size)
			line = nil
		}
	}
	for _, w := range words {
		if w.br {
			flush()
		}
		candidate := append(line, w)
		if len(line) > 0 && document.TextWidth(joinWords(candidate), size) > maxWidth {
			flush()
			candidate = []word{w}
		}
		line = candidate
	}
	flush()
	g.cursorY -= size * g.LineHeight / 2
}

func joinWords(ws []word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

func (g *Generator) line(ws []word, x, size float64) {
	height := size * g.LineHeight
	g.checkPageBreak(height)
	baseline := g.cursorY - size
	g.b.Text(x, baseline, size, joinWords(ws))

	advance := document.MonoFont.Advance * size
	col := 0
	for i := 0; i < len(ws); {
		if ws[i].url == "" {
			col += len([]rune(ws[i].text)) + 1
			i++
			continue
		}
		start, url := col, ws[i].url
		j := i
		for j < len(ws) && ws[j].url == url {
			col += len([]rune(ws[j].text)) + 1
			j++
		}
		end := col - 1
		g.b.Link(coords.Box{
			LLX: x + float64(start)*advance,
			LLY: baseline - document.MonoFont.Descent*size,
			URX: x + float64(end)*advance,
			URY: baseline + document.MonoFont.Ascent*size,
		}, url)
		i = j
	}
	g.cursorY -= height
}

// literal places each line of text as is, without wrapping.
func (g *Generator) literal(text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		g.checkPageBreak(g.FontSize * g.LineHeight)
		g.b.Text(g.Margins.Left, g.cursorY-g.FontSize, g.FontSize, l)
		g.cursorY -= g.FontSize * g.LineHeight
	}
}

// widget reserves a box of the given size at the cursor.
func (g *Generator) widget(width, height float64, f *document.Field) {
	g.checkPageBreak(height)
	box := coords.Box{
		LLX: g.Margins.Left,
		LLY: g.cursorY - height,
		URX: g.Margins.Left + width,
		URY: g.cursorY,
	}
	g.b.Field(box, f)
	g.cursorY -= height + g.FontSize*g.LineHeight/2
}

func (g *Generator) document() *document.Document {
	doc := g.b.Document()
	g.log.Debug("document generated", observability.Int("pages", len(doc.Pages)))
	return doc
}
