package document

import (
	"unicode/utf8"

	"github.com/wudi/pdfengine/coords"
)

// MonoFont is the one font documents are written with: Courier, a fixed
// advance of 0.6 em. Char boxes span from the descent to the ascent so
// that lines set at LineHeight do not overlap.
var MonoFont = struct {
	BaseFont   string
	Resource   string
	Advance    float64
	Ascent     float64
	Descent    float64
	LineHeight float64
}{
	BaseFont:   "Courier",
	Resource:   "F1",
	Advance:    0.6,
	Ascent:     0.8,
	Descent:    0.2,
	LineHeight: 1.2,
}

// TextWidth is the advance of s at size in points.
func TextWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * MonoFont.Advance * size
}

// CharBoxes returns one user-space box per rune of the run.
func (t *TextRun) CharBoxes() []coords.Box {
	n := utf8.RuneCountInString(t.Text)
	out := make([]coords.Box, n)
	adv := MonoFont.Advance * t.FontSize
	lly := t.Y - MonoFont.Descent*t.FontSize
	ury := t.Y + MonoFont.Ascent*t.FontSize
	for i := range out {
		x := t.X + float64(i)*adv
		out[i] = coords.Box{LLX: x, LLY: lly, URX: x + adv, URY: ury}
	}
	return out
}

// Bounds returns the box covering the whole run.
func (t *TextRun) Bounds() coords.Box {
	return coords.Box{
		LLX: t.X,
		LLY: t.Y - MonoFont.Descent*t.FontSize,
		URX: t.X + TextWidth(t.Text, t.FontSize),
		URY: t.Y + MonoFont.Ascent*t.FontSize,
	}
}
