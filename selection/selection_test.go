package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/textindex"
)

type fakeSource struct {
	doc   *document.Document
	index []*textindex.Index
}

func newFakeSource(doc *document.Document) *fakeSource {
	s := &fakeSource{doc: doc}
	for _, p := range doc.Pages {
		s.index = append(s.index, textindex.Build(p))
	}
	return s
}

func (s *fakeSource) PageCount() int                      { return len(s.index) }
func (s *fakeSource) TextIndex(page int) *textindex.Index { return s.index[page] }
func (s *fakeSource) PageToDevice(page int) coords.Matrix {
	p := s.doc.Pages[page]
	return coords.DeviceFromPage(p.MediaBox, p.Rotate, p.Size().ToPixels())
}

// Courier 10pt: chars are 6pt wide, boxes span y-2 to y+8.
func threePages() *document.Document {
	size := coords.SizeF{Width: 150, Height: 150}
	return document.NewBuilder().
		AddPage(size).
		Text(10, 100, 10, "Hello, world!").
		Text(10, 80, 10, "Goodbye, world!").
		AddPage(size).
		AddPage(size).
		Text(10, 100, 10, "Hello, there.").
		TextField(coords.Box{LLX: 10, LLY: 10, URX: 100, URY: 30}, "f", "").
		Document()
}

func charPoint(x, y float64, i int) coords.Point {
	return coords.Point{X: x + 6*float64(i) + 3, Y: y + 2}
}

func TestSingleClickSelectsNothing(t *testing.T) {
	e := New(newFakeSource(threePages()), WithLineSeparator("\n"))
	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 100, 2), 1))
	assert.True(t, e.IsActive())
	assert.False(t, e.HasSelection())
	assert.Equal(t, "", e.GetSelectedText())
	assert.Empty(t, e.GetSelectionRects())
}

func TestWordAndLineClicks(t *testing.T) {
	e := New(newFakeSource(threePages()), WithLineSeparator("\n"))
	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 80, 3), 2))
	assert.Equal(t, "Goodbye", e.GetSelectedText())

	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 100, 1), 3))
	assert.Equal(t, "Hello, world!", e.GetSelectedText())

	assert.False(t, e.SetAnchorAtPoint(0, charPoint(10, 80, 7), 2), "comma")
	assert.Equal(t, "Hello, world!", e.GetSelectedText(), "selection untouched")
}

func TestExtendAcrossBlankPage(t *testing.T) {
	e := New(newFakeSource(threePages()), WithLineSeparator("\n"))
	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 80, 0), 2))
	require.True(t, e.ExtendSelectionTo(2, charPoint(10, 100, 5)))
	assert.Equal(t, "Goodbye, world!\nHello,", e.GetSelectedText())

	rects := e.GetSelectionRects()
	require.Len(t, rects, 2)
	assert.Equal(t, 0, rects[0].Page)
	assert.Equal(t, 2, rects[1].Page)
}

func TestSelectionDirectionInvariance(t *testing.T) {
	src := newFakeSource(threePages())
	points := []struct {
		page int
		p    coords.Point
	}{
		{0, charPoint(10, 100, 4)},
		{0, charPoint(10, 80, 12)},
		{2, charPoint(10, 100, 0)},
		{2, charPoint(10, 100, 9)},
	}
	for i, a := range points {
		for j, b := range points {
			fwd := New(src, WithLineSeparator("\r\n"))
			require.True(t, fwd.SetAnchorAtPoint(a.page, a.p, 1))
			require.True(t, fwd.ExtendSelectionTo(b.page, b.p))

			back := New(src, WithLineSeparator("\r\n"))
			require.True(t, back.SetAnchorAtPoint(b.page, b.p, 1))
			require.True(t, back.ExtendSelectionTo(a.page, a.p))

			assert.Equal(t, fwd.GetSelectedText(), back.GetSelectedText(), "%d -> %d", i, j)
			assert.Equal(t, fwd.GetSelectionRects(), back.GetSelectionRects(), "%d -> %d", i, j)
		}
	}
}

func TestLineEndingsUseSeparator(t *testing.T) {
	e := New(newFakeSource(threePages()), WithLineSeparator("\r\n"))
	e.SelectAll()
	assert.Equal(t, "Hello, world!\r\nGoodbye, world!\r\nHello, there.", e.GetSelectedText())
	assert.Len(t, e.GetSelectionRects(), 3)
}

func TestExtendRejectsNonText(t *testing.T) {
	e := New(newFakeSource(threePages()))
	assert.False(t, e.ExtendSelectionTo(0, charPoint(10, 100, 0)), "no anchor yet")
	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 100, 0), 2))
	before := e.Range()

	assert.False(t, e.ExtendSelectionTo(1, coords.Point{X: 70, Y: 70}), "blank page")
	assert.False(t, e.ExtendSelectionTo(2, coords.Point{X: 50, Y: 20}), "widget")
	assert.False(t, e.ExtendSelectionTo(7, coords.Point{}), "no such page")
	assert.Equal(t, before, e.Range())
	assert.False(t, e.SetAnchorAtPoint(2, coords.Point{X: 50, Y: 20}, 1))
}

func TestInvalidationIsSymmetricDifference(t *testing.T) {
	e := New(newFakeSource(threePages()))
	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 100, 0), 3))
	first := e.TakeInvalidation()
	require.Len(t, first, 1)

	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 100, 5), 3))
	assert.Empty(t, e.TakeInvalidation(), "same line selected again")

	require.True(t, e.SetAnchorAtPoint(0, charPoint(10, 80, 0), 2))
	changed := e.TakeInvalidation()
	assert.Len(t, changed, 2)
	assert.Contains(t, changed, first[0])

	e.Clear()
	assert.Equal(t, e.TakeInvalidation(), []PageRect{changed[1]})
	assert.Empty(t, e.TakeInvalidation())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\nc\td", NormalizeText("a\rb\r\nc\td\x07", "\r\n"))
	assert.Equal(t, "a\nb", NormalizeText("a\r\nb", "\n"))
}
