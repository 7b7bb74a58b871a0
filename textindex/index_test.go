package textindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
)

// Courier at 10pt: 6pt per char, boxes from y-2 to y+8.
func samplePage() *document.Page {
	doc := document.NewBuilder().
		AddPage(coords.SizeF{Width: 200, Height: 200}).
		Text(10, 150, 10, "Hello, world!").
		Text(10, 130, 10, "Goodbye, world!").
		Link(coords.Box{LLX: 10, LLY: 60, URX: 60, URY: 80}, "https://example.com/").
		TextField(coords.Box{LLX: 100, LLY: 20, URX: 180, URY: 40}, "name", "").
		Document()
	return doc.Pages[0]
}

func TestBuildJoinsRunsWithBreaks(t *testing.T) {
	x := Build(samplePage())
	require.Equal(t, 13+2+15, x.CharCount())
	assert.Equal(t, "Hello, world!\r\nGoodbye, world!", x.Text(0, x.CharCount()))
	assert.True(t, x.Char(13).Synthetic)
	assert.Equal(t, -1, x.Char(14).Run)

	run, ok := x.TextRunAt(20)
	require.True(t, ok)
	assert.Equal(t, 15, run.Start)
	assert.Equal(t, 15, run.Len)
	_, ok = x.TextRunAt(13)
	assert.False(t, ok)
}

func TestCharIndexAt(t *testing.T) {
	x := Build(samplePage())
	cases := []struct {
		name string
		p    coords.Point
		want int
	}{
		{"inside H", coords.Point{X: 12, Y: 152}, 0},
		{"inside G", coords.Point{X: 13, Y: 132}, 15},
		{"left of line within tolerance", coords.Point{X: 2, Y: 152}, 0},
		{"right of line within tolerance", coords.Point{X: 100, Y: 132}, 29},
		{"far away", coords.Point{X: 150, Y: 60}, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, x.CharIndexAt(tc.p, DefaultTolerance))
		})
	}
	assert.Equal(t, -1, Build(&document.Page{MediaBox: coords.Box{URX: 10, URY: 10}}).CharIndexAt(coords.Point{}, 20))
}

func TestWordAndLineBoundaries(t *testing.T) {
	x := Build(samplePage())

	start, end, ok := x.WordAt(17)
	require.True(t, ok)
	assert.Equal(t, "Goodbye", x.Text(start, end))

	_, _, ok = x.WordAt(22)
	assert.False(t, ok, "comma is not a word")

	start, end, ok = x.LineAt(3)
	require.True(t, ok)
	assert.Equal(t, "Hello, world!", x.Text(start, end))
	start, end, ok = x.LineAt(29)
	require.True(t, ok)
	assert.Equal(t, "Goodbye, world!", x.Text(start, end))
}

func TestLineBoxes(t *testing.T) {
	x := Build(samplePage())
	boxes := x.LineBoxes(7, 22)
	require.Len(t, boxes, 2)
	assert.InDelta(t, 52.0, boxes[0].LLX, 1e-9)
	assert.InDelta(t, 88.0, boxes[0].URX, 1e-9)
	assert.InDelta(t, 10.0, boxes[1].LLX, 1e-9)
	assert.InDelta(t, 52.0, boxes[1].URX, 1e-9)
	assert.Empty(t, x.LineBoxes(13, 15))
}

func TestSelectableAreas(t *testing.T) {
	x := Build(samplePage())
	assert.True(t, x.IsSelectableTextOrLinkArea(coords.Point{X: 12, Y: 152}, DefaultTolerance))
	assert.True(t, x.IsSelectableTextOrLinkArea(coords.Point{X: 40, Y: 65}, DefaultTolerance))
	assert.False(t, x.IsSelectableTextOrLinkArea(coords.Point{X: 150, Y: 30}, DefaultTolerance))
	assert.False(t, x.IsSelectableTextOrLinkArea(coords.Point{X: 190, Y: 190}, DefaultTolerance))
	assert.NotNil(t, x.WidgetAt(coords.Point{X: 150, Y: 30}))
	assert.Equal(t, "https://example.com/", x.LinkAt(coords.Point{X: 40, Y: 65}).URI)
}

func TestQuadTreeHandlesStackedBoxes(t *testing.T) {
	qt := newQuadTree(coords.Box{URX: 100, URY: 100}, 2)
	for i := 0; i < 50; i++ {
		require.True(t, qt.insert(coords.Box{LLX: 10, LLY: 10, URX: 10, URY: 10}, i))
	}
	got := qt.query(coords.Box{LLX: 9, LLY: 9, URX: 11, URY: 11}, nil)
	assert.Len(t, got, 50)
	assert.False(t, qt.insert(coords.Box{LLX: 200, LLY: 200, URX: 210, URY: 210}, 99))
}
