package engine

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/focus"
	"github.com/wudi/pdfengine/input"
	"github.com/wudi/pdfengine/thumbnail"
)

var (
	linkBox   = coords.Box{LLX: 20, LLY: 180, URX: 100, URY: 195}
	fieldBox  = coords.Box{LLX: 20, LLY: 100, URX: 120, URY: 120}
	buttonBox = coords.Box{LLX: 20, LLY: 100, URX: 80, URY: 120}
)

// formPages has four focusable annotations on pages 0 and 2.
func formPages() *document.Document {
	return document.NewBuilder().
		AddPage(pageSize).
		Text(20, 200, 10, "Hello, world!").
		Link(linkBox, "https://example.test").
		Field(fieldBox, &document.Field{
			Name:        "name",
			Kind:        document.FieldText,
			Value:       "x",
			FocusScript: "app.alert('hi ' + getField('name').value); getField('name').value = 'set';",
		}).
		AddPage(pageSize).
		Text(20, 200, 10, "Nothing to focus").
		AddPage(pageSize).
		Button(buttonBox, "go").
		Highlight(coords.Box{LLX: 20, LLY: 190, URX: 120, URY: 210}, color.NRGBA{R: 255, G: 255, A: 128}).
		Document()
}

func center(b coords.Box) coords.Point {
	return coords.Point{X: (b.LLX + b.URX) / 2, Y: (b.LLY + b.URY) / 2}
}

func TestTabOrderClosure(t *testing.T) {
	e := open(t, formPages())
	const k = 4
	var forward []focus.Element
	for i := 0; i < k+2; i++ {
		assert.Equal(t, i < k+1, e.HandleTab(input.ModNone), "tab %d", i)
		forward = append(forward, e.FocusElement())
	}
	assert.Equal(t, []focus.Element{
		focus.Document{},
		focus.Annot{Page: 0, Index: 0},
		focus.Annot{Page: 0, Index: 1},
		focus.Annot{Page: 2, Index: 0},
		focus.Annot{Page: 2, Index: 1},
		focus.None{},
	}, forward)

	var backward []focus.Element
	for i := 0; i < k+2; i++ {
		assert.Equal(t, i < k+1, e.HandleTab(input.ModShift), "shift-tab %d", i)
		backward = append(backward, e.FocusElement())
	}
	for i := 0; i < k+1; i++ {
		assert.Equal(t, forward[k-i], backward[i])
	}
	assert.Equal(t, focus.None{}, backward[k+1])

	assert.False(t, e.HandleInputEvent(input.Event{Type: input.KeyDown, Key: input.KeyTab, Modifiers: input.ModCtrl}))
	assert.Equal(t, focus.None{}, e.FocusElement())
}

func TestTabFocusEvents(t *testing.T) {
	e := open(t, formPages())
	e.PluginSizeUpdated(coords.Size{Width: 400, Height: 300})

	require.True(t, e.HandleTab(input.ModNone))
	assert.Equal(t, []Event{DocumentFocusChanged{Focused: true}}, e.DrainEvents())

	require.True(t, e.HandleTab(input.ModNone))
	evs := e.DrainEvents()
	assert.Equal(t, []DocumentFocusChanged{{Focused: false}}, eventsOf[DocumentFocusChanged](evs))
	assert.Equal(t, []SetLinkUnderCursor{{URL: "https://example.test"}}, eventsOf[SetLinkUnderCursor](evs))
	assert.Empty(t, eventsOf[ScrollToY](evs), "link is on screen")
	assert.Empty(t, eventsOf[FormFieldFocusChange](evs), "links are not fields")

	require.True(t, e.HandleTab(input.ModNone))
	evs = e.DrainEvents()
	assert.Equal(t, []FormFieldFocusChange{{Kind: TextFocus}}, eventsOf[FormFieldFocusChange](evs))
	assert.True(t, e.CanEditText())

	require.True(t, e.HandleTab(input.ModNone))
	evs = e.DrainEvents()
	var order []string
	for _, ev := range evs {
		switch ev.(type) {
		case ScrollToY:
			order = append(order, "y")
		case ScrollToX:
			order = append(order, "x")
		case FormFieldFocusChange:
			order = append(order, "field")
		}
	}
	assert.Equal(t, []string{"y", "x", "field"}, order, "off-screen button scrolls first")
	assert.Greater(t, eventsOf[ScrollToY](evs)[0].Y, 300)
	assert.Equal(t, []FormFieldFocusChange{{Kind: NonTextFocus}}, eventsOf[FormFieldFocusChange](evs))
	assert.False(t, e.CanEditText())
}

func TestFocusScriptRunsOnce(t *testing.T) {
	e := open(t, formPages())
	e.HandleTab(input.ModNone)
	e.HandleTab(input.ModNone)
	e.HandleTab(input.ModNone)
	assert.Equal(t, []Alert{{Message: "hi x"}}, eventsOf[Alert](e.DrainEvents()))
	assert.Equal(t, "set", e.Document().FieldByName("name").Value)

	e.UpdateFocus(false)
	e.UpdateFocus(true)
	assert.Empty(t, eventsOf[Alert](e.DrainEvents()), "restores do not rerun scripts")
}

func TestScriptingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Scripting.Enabled = false
	e, err := FromDocument(formPages(), cfg)
	require.NoError(t, err)
	e.HandleTab(input.ModNone)
	e.HandleTab(input.ModNone)
	e.HandleTab(input.ModNone)
	assert.Empty(t, eventsOf[Alert](e.DrainEvents()))
	assert.Equal(t, "x", e.Document().FieldByName("name").Value)
}

func TestUpdateFocusRestores(t *testing.T) {
	e := open(t, formPages())
	for range 3 {
		e.HandleTab(input.ModNone)
	}
	e.DrainEvents()

	e.UpdateFocus(false)
	assert.Equal(t, focus.None{}, e.FocusElement())
	assert.Equal(t, []Event{FormFieldFocusChange{Kind: NoFocus}}, e.DrainEvents())
	e.UpdateFocus(false)
	assert.Empty(t, e.DrainEvents(), "redundant blur")

	e.UpdateFocus(true)
	assert.Equal(t, focus.Annot{Page: 0, Index: 1}, e.FocusElement())
	evs := e.DrainEvents()
	assert.Equal(t, []FormFieldFocusChange{{Kind: TextFocus}}, eventsOf[FormFieldFocusChange](evs))
	assert.Empty(t, eventsOf[DocumentFocusChanged](evs))
	e.UpdateFocus(true)
	assert.Empty(t, e.DrainEvents(), "redundant restore")
}

func TestReadOnlyForcesNoFieldFocus(t *testing.T) {
	e := open(t, formPages())
	e.SetReadOnly(true)
	assert.Equal(t, []Event{FormFieldFocusChange{Kind: NoFocus}}, e.DrainEvents())

	for range 3 {
		e.HandleTab(input.ModNone)
	}
	assert.Equal(t, focus.Annot{Page: 0, Index: 1}, e.FocusElement(), "widgets still take page focus")
	assert.False(t, e.CanEditText())

	e.UpdateFocus(false)
	e.DrainEvents()
	e.UpdateFocus(true)
	assert.Equal(t, []FormFieldFocusChange{{Kind: NoFocus}}, eventsOf[FormFieldFocusChange](e.DrainEvents()))
}

func TestClickFocusesWidget(t *testing.T) {
	e := open(t, formPages())
	require.True(t, e.SetAnchorAtPoint(0, charPoint(20, 200, 0), 3))
	require.True(t, e.HasSelection())

	p := screenPoint(t, e, 0, center(fieldBox))
	assert.False(t, e.IsSelectableTextOrLinkArea(p))
	require.True(t, e.HandleInputEvent(input.Event{Type: input.MouseDown, Point: p, ClickCount: 1}))
	assert.Equal(t, focus.Annot{Page: 0, Index: 1}, e.FocusElement())
	assert.True(t, e.CanEditText())
	assert.False(t, e.HasSelection(), "text fields clear the selection")

	text := screenPoint(t, e, 0, charPoint(20, 200, 1))
	require.True(t, e.HandleInputEvent(input.Event{Type: input.MouseDown, Point: text, ClickCount: 2}))
	assert.Equal(t, focus.Document{}, e.FocusElement())
	assert.Equal(t, "Hello", e.GetSelectedText())
	assert.True(t, e.HandleInputEvent(input.Event{Type: input.KeyDown, Key: input.KeyEscape}))
	assert.False(t, e.HasSelection())
}

func TestHoverLink(t *testing.T) {
	e := open(t, formPages())
	p := screenPoint(t, e, 0, center(linkBox))
	assert.True(t, e.IsSelectableTextOrLinkArea(p))
	assert.Equal(t, "https://example.test", e.GetLinkAtPoint(p))

	e.HandleInputEvent(input.Event{Type: input.MouseMove, Point: p})
	e.HandleInputEvent(input.Event{Type: input.MouseMove, Point: p})
	assert.Equal(t, []Event{SetLinkUnderCursor{URL: "https://example.test"}}, e.DrainEvents())

	e.HandleInputEvent(input.Event{Type: input.MouseMove, Point: coords.Point{X: -5, Y: -5}})
	assert.Equal(t, []Event{SetLinkUnderCursor{}}, e.DrainEvents())
	assert.Equal(t, "", e.GetLinkAtPoint(coords.Point{X: -5, Y: -5}))
}

func TestAnnotationModeIgnoresClicks(t *testing.T) {
	e := open(t, formPages())
	e.SetAnnotationMode(true)
	assert.Equal(t, []Event{FormFieldFocusChange{Kind: NoFocus}}, e.DrainEvents())
	p := screenPoint(t, e, 0, charPoint(20, 200, 1))
	assert.False(t, e.HandleInputEvent(input.Event{Type: input.MouseDown, Point: p, ClickCount: 2}))
	assert.False(t, e.HasSelection())
}

func TestFindSelectsMatch(t *testing.T) {
	e := open(t, fivePages())
	matches := e.Find("WORLD", false)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Page)
	assert.Equal(t, 1, matches[1].Page)
	assert.Empty(t, e.Find("WORLD", true))

	e.Find("hello", false)
	require.NoError(t, e.SelectFindResult(0))
	assert.Equal(t, "Hello", e.GetSelectedText())
	assert.ErrorIs(t, e.SelectFindResult(3), ErrNoFindResult)
}

func TestUnloadPinnedPage(t *testing.T) {
	e := open(t, fivePages())
	require.NoError(t, e.ApplyStroke(2, 1, pen()))
	assert.True(t, e.IsPagePinned(2))
	assert.ErrorIs(t, e.UnloadPage(2), ErrPagePinned)

	require.NoError(t, e.UpdateStrokeActive(2, 1, false))
	assert.ErrorIs(t, e.UnloadPage(2), ErrPagePinned, "inactive strokes still pin")

	require.NoError(t, e.DiscardStroke(2, 1))
	assert.False(t, e.IsPagePinned(2))
	require.NoError(t, e.UnloadPage(2))
	assert.False(t, e.IsPageLoaded(2))
	assert.Equal(t, "Page three", e.GetPageText(2))
	assert.True(t, e.IsPageLoaded(2))

	err := e.DiscardStroke(2, 1)
	assert.ErrorIs(t, err, ErrContractViolation)
	require.NoError(t, e.ApplyStroke(2, 1, pen()), "discarded ids may be reused")
	assert.ErrorIs(t, e.ApplyStroke(2, 1, pen()), ErrContractViolation)
	empty := pen()
	empty.Inputs = nil
	assert.ErrorIs(t, e.ApplyStroke(0, 2, empty), ErrContractViolation)
}

func TestLoadShapesPinsOnce(t *testing.T) {
	e := open(t, fivePages())
	require.NoError(t, e.ApplyStroke(0, 1, pen()))
	saved, err := e.GetSaveData()
	require.NoError(t, err)

	r, err := Open(saved, testConfig())
	require.NoError(t, err)
	assert.False(t, r.IsPagePinned(0))
	shapes, err := r.LoadShapesForPage(0)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.True(t, r.IsPagePinned(0))
	again, err := r.LoadShapesForPage(0)
	require.NoError(t, err)
	assert.Equal(t, shapes, again)

	for id := range shapes {
		require.NoError(t, r.UpdateShapeActive(0, id, false))
	}
	out, err := r.GetSaveData()
	require.NoError(t, err)
	marks, err := document.MarkedContent(out, document.InkMarkV2)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestTransientStrokeSkipsThumbnails(t *testing.T) {
	drawing := open(t, fivePages())
	still := open(t, fivePages())
	require.NoError(t, drawing.SetTransientStroke(0, pen()))

	live, err := drawing.RenderPage(0, true)
	require.NoError(t, err)
	plain, err := drawing.RenderPage(0, false)
	require.NoError(t, err)
	assert.NotEqual(t, plain.Pix, live.Pix)

	var got, want thumbnail.Thumbnail
	require.NoError(t, drawing.RequestThumbnail(0, 1, func(th thumbnail.Thumbnail, err error) { got = th }))
	require.NoError(t, still.RequestThumbnail(0, 1, func(th thumbnail.Thumbnail, err error) { want = th }))
	assert.Equal(t, want.Image.Pix, got.Image.Pix)

	drawing.ClearTransientStroke()
	cleared, err := drawing.RenderPage(0, true)
	require.NoError(t, err)
	assert.Equal(t, plain.Pix, cleared.Pix)
}

func TestAppendBlankPages(t *testing.T) {
	e := open(t, fivePages())
	require.NoError(t, e.AppendBlankPages(2))
	assert.Equal(t, 7, e.PageCount())
	assert.True(t, e.IsPageAvailable(6))
	assert.Len(t, eventsOf[DocumentLayoutChanged](e.DrainEvents()), 1)
	require.NoError(t, e.UnloadPage(6))
	assert.True(t, e.IsPageLoaded(6))
	size, err := e.GetPageSizeInPoints(6)
	require.NoError(t, err)
	assert.Equal(t, pageSize, size)
}

func TestReadOnlyClearsSelection(t *testing.T) {
	e := open(t, fivePages())
	e.SelectAll()
	require.NotEmpty(t, e.GetSelectedText())
	e.DrainEvents()

	e.SetReadOnly(true)
	assert.Empty(t, e.GetSelectedText())
	assert.False(t, e.HasSelection())
	evs := e.DrainEvents()
	assert.Len(t, eventsOf[Invalidate](evs), 1, "old selection repainted")
	assert.Equal(t, []FormFieldFocusChange{{Kind: NoFocus}}, eventsOf[FormFieldFocusChange](evs))
}

func TestNonTextFocusKeepsSelection(t *testing.T) {
	e := open(t, formPages())
	require.True(t, e.SetAnchorAtPoint(0, charPoint(20, 200, 0), 3))
	require.Equal(t, "Hello, world!", e.GetSelectedText())
	e.DrainEvents()

	e.HandleTab(input.ModShift)
	e.HandleTab(input.ModShift)
	require.Equal(t, focus.Annot{Page: 2, Index: 0}, e.FocusElement())
	assert.Equal(t, []FormFieldFocusChange{{Kind: NonTextFocus}}, eventsOf[FormFieldFocusChange](e.DrainEvents()))
	assert.True(t, e.HasSelection())
	assert.Equal(t, "Hello, world!", e.GetSelectedText())
}

func TestRestoredFocusScrollsBack(t *testing.T) {
	e := open(t, formPages())
	e.PluginSizeUpdated(coords.Size{Width: 400, Height: 300})
	for range 3 {
		e.HandleTab(input.ModNone)
	}
	require.Equal(t, focus.Annot{Page: 0, Index: 1}, e.FocusElement())
	e.DrainEvents()

	e.UpdateFocus(false)
	e.ScrolledToYPosition(900)
	e.DrainEvents()

	e.UpdateFocus(true)
	evs := e.DrainEvents()
	var order []string
	for _, ev := range evs {
		switch ev.(type) {
		case ScrollToY:
			order = append(order, "y")
		case ScrollToX:
			order = append(order, "x")
		case SetLinkUnderCursor:
			order = append(order, "link")
		case FormFieldFocusChange:
			order = append(order, "field")
		}
	}
	assert.Equal(t, []string{"y", "x", "link", "field"}, order)
	assert.Less(t, eventsOf[ScrollToY](evs)[0].Y, 900)
	assert.Equal(t, []SetLinkUnderCursor{{URL: ""}}, eventsOf[SetLinkUnderCursor](evs))
	assert.Equal(t, []FormFieldFocusChange{{Kind: TextFocus}}, eventsOf[FormFieldFocusChange](evs))

	e.UpdateFocus(false)
	e.UpdateFocus(true)
	assert.Empty(t, eventsOf[ScrollToY](e.DrainEvents()), "field is on screen now")
}
