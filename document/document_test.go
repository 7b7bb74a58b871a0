package document

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/coords"
)

func sampleDocument() *Document {
	b := NewBuilder().Title("sample")
	b.AddPage(coords.SizeF{Width: 200, Height: 250}).
		Text(20, 200, 12, "Hello, world!").
		Text(20, 180, 12, "Goodbye, world!").
		Link(coords.Box{LLX: 20, LLY: 150, URX: 120, URY: 165}, "https://example.com/").
		TextField(coords.Box{LLX: 20, LLY: 100, URX: 180, URY: 120}, "name", "Ada")
	b.AddRotatedPage(coords.SizeF{Width: 250, Height: 200}, coords.Rotate90).
		Line(coords.Point{X: 10, Y: 10}, coords.Point{X: 100, Y: 50}, 2, color.NRGBA{R: 255, A: 255}).
		Highlight(coords.Box{LLX: 5, LLY: 5, URX: 50, URY: 20}, color.NRGBA{R: 255, G: 255, A: 128}).
		Field(coords.Box{LLX: 60, LLY: 60, URX: 120, URY: 80}, &Field{
			Name: "ok", Kind: FieldPushButton, FocusScript: "app.alert('focus (ok)');",
		})
	b.AddPage(coords.SizeF{Width: 200, Height: 250})
	ink := &PageObject{
		Kind: PathObject,
		Mark: &Mark{Tag: InkMarkV2, Props: map[string]string{"NM": "stroke-1"}},
		Path: &Path{
			Subpaths:  []Subpath{{Points: []coords.Point{{X: 1.5, Y: 2.25}, {X: 3, Y: 4}, {X: 10.125, Y: 7}}}},
			Color:     color.NRGBA{B: 255, A: 102},
			LineWidth: 3,
			Cap:       LineCapRound,
			Join:      LineJoinRound,
		},
	}
	b.Object(ink)
	return b.Document()
}

func TestWriteParseRoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, hints, err := doc.Bytes(Config{Producer: "pdfengine"})
	require.NoError(t, err)
	require.Len(t, hints.Pages, 3)
	assert.Equal(t, int64(len(data)), hints.Length)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "sample", got.Info.Title)
	require.Len(t, got.Pages, 3)
	assert.Equal(t, doc.Pages[0].MediaBox, got.Pages[0].MediaBox)
	assert.Equal(t, coords.Rotate90, got.Pages[1].Rotate)

	runs := got.Pages[0].TextRuns()
	require.Len(t, runs, 2)
	assert.Equal(t, "Hello, world!", runs[0].Text)
	assert.Equal(t, 12.0, runs[1].FontSize)

	require.Len(t, got.Pages[0].Annotations, 2)
	assert.Equal(t, "https://example.com/", got.Pages[0].Annotations[0].URI)
	field := got.Pages[0].Annotations[1].Field
	require.NotNil(t, field)
	assert.Equal(t, FieldText, field.Kind)
	assert.Equal(t, "Ada", field.Value)

	btn := got.Pages[1].Annotations[1].Field
	assert.Equal(t, FieldPushButton, btn.Kind)
	assert.Equal(t, "app.alert('focus (ok)');", btn.FocusScript)
	assert.Equal(t, uint8(128), got.Pages[1].Annotations[0].Color.A)

	marked, err := got.MarkedObjects(2, InkMarkV2)
	require.NoError(t, err)
	require.Len(t, marked, 1)
	assert.Equal(t, "stroke-1", marked[0].Mark.Props["NM"])
	assert.Equal(t, doc.Pages[2].Objects[0].Path, marked[0].Path)

	again, _, err := got.Bytes(Config{Producer: "pdfengine"})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, again), "re-saving a parsed document must be byte-identical")
}

func TestParsePageUsesOnlyItsRange(t *testing.T) {
	data, hints, err := sampleDocument().Bytes(Config{})
	require.NoError(t, err)

	// Blank out everything except the header and page 1.
	sparse := make([]byte, len(data))
	copy(sparse[hints.Header.Start:hints.Header.End], data[hints.Header.Start:hints.Header.End])
	r := hints.Pages[1]
	copy(sparse[r.Start:r.End], data[r.Start:r.End])

	page, err := ParsePage(sparse, hints, 1)
	require.NoError(t, err)
	assert.Equal(t, coords.Rotate90, page.Rotate)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, PathObject, page.Objects[0].Kind)

	_, err = ParsePage(sparse, hints, 7)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestParseHintsNeedsWholeDictionary(t *testing.T) {
	data, hints, err := sampleDocument().Bytes(Config{})
	require.NoError(t, err)

	_, err = ParseHints(data[:40])
	assert.ErrorIs(t, err, ErrNoHints)

	got, err := ParseHints(data[:hints.Header.End])
	require.NoError(t, err)
	assert.Equal(t, hints, got)
}

func TestMarkedContentIsStable(t *testing.T) {
	data, _, err := sampleDocument().Bytes(Config{})
	require.NoError(t, err)
	marks, err := MarkedContent(data, InkMarkV2)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.True(t, bytes.HasPrefix(marks[0], []byte("/"+InkMarkV2+" <</NM (stroke-1)>> BDC")))
	assert.True(t, bytes.HasSuffix(marks[0], []byte("EMC")))
}

func TestWriteRequiresLoadedPages(t *testing.T) {
	doc := &Document{Pages: []*Page{nil}}
	_, _, err := doc.Bytes(Config{})
	assert.True(t, errors.Is(err, ErrIncomplete))
}

func TestNativeObjectEditing(t *testing.T) {
	doc := sampleDocument()
	obj := &PageObject{Kind: PathObject, Path: &Path{LineWidth: 1, Color: color.NRGBA{A: 255}}}
	require.NoError(t, doc.InsertObject(0, obj))
	assert.Len(t, doc.Pages[0].Objects, 3)
	require.NoError(t, doc.RemoveObject(0, obj))
	assert.ErrorIs(t, doc.RemoveObject(0, obj), ErrObjectNotFound)
	assert.True(t, doc.HasMarks(InkMarkV2))

	doc.Pages[1] = nil
	_, err := doc.PageBox(1)
	assert.ErrorIs(t, err, ErrPageNotLoaded)
}

func TestCharBoxes(t *testing.T) {
	run := &TextRun{X: 10, Y: 100, FontSize: 10, Text: "abc"}
	boxes := run.CharBoxes()
	require.Len(t, boxes, 3)
	assert.InDelta(t, 16.0, boxes[1].LLX, 1e-9)
	assert.InDelta(t, 98.0, boxes[1].LLY, 1e-9)
	assert.InDelta(t, 108.0, boxes[2].URY, 1e-9)
	assert.InDelta(t, 28.0, run.Bounds().URX, 1e-9)
}
