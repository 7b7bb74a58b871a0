package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/config"
	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/ink"
	"github.com/wudi/pdfengine/input"
	"github.com/wudi/pdfengine/layout"
	"github.com/wudi/pdfengine/thumbnail"
)

var pageSize = coords.SizeF{Width: 200, Height: 250}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.LineSeparator = "\n"
	return cfg
}

func open(t *testing.T, doc *document.Document) *Engine {
	t.Helper()
	e, err := FromDocument(doc, testConfig())
	require.NoError(t, err)
	e.DrainEvents()
	return e
}

func eventsOf[T Event](evs []Event) []T {
	var out []T
	for _, ev := range evs {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Courier 10pt: chars are 6pt wide, boxes span y-2 to y+8.
func charPoint(x, y float64, i int) coords.Point {
	return coords.Point{X: x + 6*float64(i) + 3, Y: y + 2}
}

func fivePages() *document.Document {
	return document.NewBuilder().
		AddPage(pageSize).Text(20, 200, 10, "Goodbye, world!").
		AddPage(pageSize).Text(20, 200, 10, "Hello, world!").
		AddPage(pageSize).Text(20, 200, 10, "Page three").
		AddPage(pageSize).Text(20, 200, 10, "Page four").
		AddPage(pageSize).Text(20, 200, 10, "Page five").
		Document()
}

func pen() ink.Stroke {
	return ink.Stroke{
		Brush: ink.Brush{Type: ink.Pen, Color: color.NRGBA{R: 255, A: 255}, Size: 4},
		Inputs: []ink.InputPoint{
			{Point: coords.Point{X: 20, Y: 20}},
			{Point: coords.Point{X: 100, Y: 120}, Time: 8 * time.Millisecond},
			{Point: coords.Point{X: 180, Y: 230}, Time: 16 * time.Millisecond},
		},
	}
}

func screenPoint(t *testing.T, e *Engine, page int, pt coords.Point) coords.Point {
	t.Helper()
	p, ok := e.PageToScreen(page, pt)
	require.True(t, ok)
	return p
}

func TestProposeLayoutIdempotent(t *testing.T) {
	e := open(t, fivePages())

	size, err := e.ProposeLayout(e.LayoutOptions())
	require.NoError(t, err)
	assert.Equal(t, e.DocumentSize(), size)
	assert.Empty(t, eventsOf[DocumentLayoutChanged](e.DrainEvents()), "unchanged options")

	o := layout.Options{Spread: layout.TwoUpOdd}
	first, err := e.ProposeLayout(o)
	require.NoError(t, err)
	second, err := e.ProposeLayout(o)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changes := eventsOf[DocumentLayoutChanged](e.DrainEvents())
	require.Len(t, changes, 1)
	assert.Equal(t, first, changes[0].Size)
	assert.Len(t, changes[0].Pages, 5)
}

func TestProposeLayoutNeedsPageCount(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)
	size, err := e.ProposeLayout(layout.Options{})
	assert.ErrorIs(t, err, ErrPageCountUnknown)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.True(t, size.IsEmpty())

	empty := open(t, document.New())
	assert.True(t, empty.PageCountKnown())
	size, err = empty.ProposeLayout(layout.Options{Spread: layout.TwoUpOdd})
	assert.NoError(t, err)
	assert.Equal(t, coords.Size{}, size)
}

func TestProposeLayoutWithoutPagesKeepsOptions(t *testing.T) {
	e := open(t, document.New())
	_, err := e.ProposeLayout(layout.Options{Spread: layout.TwoUpOdd})
	require.NoError(t, err)
	assert.Equal(t, layout.TwoUpOdd, e.LayoutOptions().Spread)

	require.NoError(t, e.AppendBlankPages(2))
	left, right := e.PageLayout(0), e.PageLayout(1)
	assert.Equal(t, left.Outer.Y, right.Outer.Y, "pages share a row")
	assert.Equal(t, left.Outer.Right(), right.Outer.X)
}

func TestStrictContractsPanic(t *testing.T) {
	cfg := testConfig()
	cfg.StrictContracts = true
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = e.ProposeLayout(layout.Options{}) })
}

func TestRotationRoundTrip(t *testing.T) {
	e := open(t, fivePages())
	pages := func() []layout.PageLayout {
		out := make([]layout.PageLayout, e.PageCount())
		for i := range out {
			out[i] = e.PageLayout(i)
		}
		return out
	}
	before, size := pages(), e.DocumentSize()

	require.NoError(t, e.RotateClockwise())
	assert.NotEqual(t, size, e.DocumentSize())
	assert.Equal(t, coords.Rotate90, e.LayoutOptions().DefaultRotation)
	require.NoError(t, e.RotateCounterclockwise())

	assert.Equal(t, before, pages())
	assert.Equal(t, size, e.DocumentSize())
	assert.Len(t, eventsOf[DocumentLayoutChanged](e.DrainEvents()), 2)
}

func TestSelectionDirectionInvariance(t *testing.T) {
	e := open(t, fivePages())
	points := []struct {
		page int
		pt   coords.Point
	}{
		{0, charPoint(20, 200, 3)},
		{0, charPoint(20, 200, 14)},
		{1, charPoint(20, 200, 0)},
		{3, charPoint(20, 200, 6)},
	}
	for i, a := range points {
		for j, b := range points {
			require.True(t, e.SetAnchorAtPoint(a.page, a.pt, 1))
			require.True(t, e.ExtendSelectionTo(b.page, b.pt))
			fwdText, fwdRects := e.GetSelectedText(), e.GetSelectionRects()

			require.True(t, e.SetAnchorAtPoint(b.page, b.pt, 1))
			require.True(t, e.ExtendSelectionTo(a.page, a.pt))
			assert.Equal(t, fwdText, e.GetSelectedText(), "%d -> %d", i, j)
			assert.Equal(t, fwdRects, e.GetSelectionRects(), "%d -> %d", i, j)
		}
	}
}

func TestGoodbyeHelloScenario(t *testing.T) {
	e := open(t, fivePages())
	e.PluginSizeUpdated(coords.Size{Width: 400, Height: 2000})

	down := screenPoint(t, e, 0, charPoint(20, 200, 2))
	require.True(t, e.HandleInputEvent(input.Event{Type: input.MouseDown, Point: down, ClickCount: 2}))
	assert.Equal(t, "Goodbye", e.GetSelectedText())

	move := screenPoint(t, e, 1, charPoint(20, 200, 5))
	require.True(t, e.HandleInputEvent(input.Event{Type: input.MouseMove, Point: move, Pressed: true}))
	assert.True(t, e.HandleInputEvent(input.Event{Type: input.MouseUp, Point: move}))
	assert.Equal(t, "Goodbye, world!\nHello,", e.GetSelectedText())

	rects := e.GetSelectionRects()
	require.Len(t, rects, 2)
	assert.Equal(t, 0, rects[0].Page)
	assert.Equal(t, 1, rects[1].Page)
	assert.NotEmpty(t, eventsOf[Invalidate](e.DrainEvents()))

	assert.False(t, e.HandleInputEvent(input.Event{Type: input.MouseMove, Point: down}), "move without button")
	assert.Equal(t, "Goodbye, world!\nHello,", e.GetSelectedText())
}

func TestStrokeUndoRedoIdempotent(t *testing.T) {
	once := open(t, fivePages())
	require.NoError(t, once.ApplyStroke(0, 1, pen()))

	toggled := open(t, fivePages())
	require.NoError(t, toggled.ApplyStroke(0, 1, pen()))
	require.NoError(t, toggled.UpdateStrokeActive(0, 1, false))

	plain := open(t, fivePages())
	hiddenSave, err := toggled.GetSaveData()
	require.NoError(t, err)
	plainSave, err := plain.GetSaveData()
	require.NoError(t, err)
	assert.Equal(t, plainSave, hiddenSave, "inactive strokes are not saved")

	require.NoError(t, toggled.UpdateStrokeActive(0, 1, true))

	want, err := once.RenderPage(0, false)
	require.NoError(t, err)
	got, err := toggled.RenderPage(0, false)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, got.Pix)

	wantSave, err := once.GetSaveData()
	require.NoError(t, err)
	gotSave, err := toggled.GetSaveData()
	require.NoError(t, err)
	assert.Equal(t, wantSave, gotSave)
	assert.NotEqual(t, plainSave, gotSave)
}

func TestSaveTwiceIdenticalMarks(t *testing.T) {
	e := open(t, fivePages())
	require.NoError(t, e.ApplyStroke(1, 7, pen()))

	first, err := e.GetSaveData()
	require.NoError(t, err)
	second, err := e.GetSaveData()
	require.NoError(t, err)

	marks, err := document.MarkedContent(first, document.InkMarkV2)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	again, err := document.MarkedContent(second, document.InkMarkV2)
	require.NoError(t, err)
	assert.Equal(t, marks, again)
	assert.Equal(t, first, second)

	reloaded, err := Open(first, testConfig())
	require.NoError(t, err)
	assert.True(t, reloaded.ContainsInkV2Marks())
	third, err := reloaded.GetSaveData()
	require.NoError(t, err)
	resaved, err := document.MarkedContent(third, document.InkMarkV2)
	require.NoError(t, err)
	assert.Equal(t, marks, resaved)
}

func TestStreamingLoad(t *testing.T) {
	data, hints, err := fivePages().Bytes(document.Config{})
	require.NoError(t, err)
	e, err := New(testConfig())
	require.NoError(t, err)

	e.NotifyDataArrived(0, data[:hints.Header.End])
	require.True(t, e.PageCountKnown())
	assert.Equal(t, 5, e.PageCount())
	evs := e.DrainEvents()
	assert.Len(t, eventsOf[DocumentLayoutChanged](evs), 1)
	assert.Empty(t, eventsOf[PageAvailable](evs))

	var thumbs []thumbnail.Thumbnail
	cb := func(th thumbnail.Thumbnail, err error) {
		require.NoError(t, err)
		thumbs = append(thumbs, th)
	}
	require.NoError(t, e.RequestThumbnail(3, 1, cb))
	err = e.RequestThumbnail(3, 1, cb)
	assert.ErrorIs(t, err, thumbnail.ErrRedundantRequest)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Empty(t, thumbs)

	r := hints.Pages[3]
	e.NotifyDataArrived(r.Start, data[r.Start:r.End])
	assert.Equal(t, []PageAvailable{{Page: 3}}, eventsOf[PageAvailable](e.DrainEvents()))
	require.Len(t, thumbs, 1)
	assert.Equal(t, 108, thumbs[0].Image.Bounds().Dx())
	assert.Equal(t, 135, thumbs[0].Image.Bounds().Dy())
	assert.True(t, e.IsPageAvailable(3))
	assert.False(t, e.IsPageAvailable(2))
	assert.Equal(t, "Page four", e.GetPageText(3))
	assert.Equal(t, "", e.GetPageText(2))

	e.NotifyDataArrived(0, data)
	assert.Equal(t, []PageAvailable{{Page: 0}, {Page: 1}, {Page: 2}, {Page: 4}}, eventsOf[PageAvailable](e.DrainEvents()))
	require.NoError(t, e.FinishLoading())
	evs = e.DrainEvents()
	assert.Empty(t, eventsOf[PageAvailable](evs))
	assert.Len(t, eventsOf[DocumentLoadComplete](evs), 1)
	assert.Len(t, thumbs, 1, "callback fires once")
	assert.InDelta(t, 1.0, e.LoadProgress(), 1e-9)
}

func TestThumbnailWithoutCallbackIsQueued(t *testing.T) {
	e := open(t, fivePages())
	require.NoError(t, e.RequestThumbnail(0, 2, nil))
	ready := eventsOf[ThumbnailReady](e.DrainEvents())
	require.Len(t, ready, 1)
	assert.NoError(t, ready[0].Err)
	assert.Equal(t, float32(2), ready[0].Thumbnail.DevicePixelRatio)
	assert.Equal(t, 216, ready[0].Thumbnail.Image.Bounds().Dx())

	err := e.RequestThumbnail(9, 1, nil)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Forms.HighlightColor = "blue"
	_, err := New(cfg)
	assert.Error(t, err)

	c, err := parseHexColor("#0000ff22")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0x22}, c)
}
