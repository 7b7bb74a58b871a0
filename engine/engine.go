// Package engine is the document engine a host embeds: one Engine per
// open document. It owns every component, translates host input into
// component calls and queues the resulting notifications as events.
//
// An Engine is not safe for concurrent use. Hosts call it from one
// goroutine and drain events after each call.
package engine

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/wudi/pdfengine/availability"
	"github.com/wudi/pdfengine/config"
	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/focus"
	"github.com/wudi/pdfengine/ink"
	"github.com/wudi/pdfengine/layout"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/render"
	"github.com/wudi/pdfengine/scripting"
	"github.com/wudi/pdfengine/search"
	"github.com/wudi/pdfengine/selection"
	"github.com/wudi/pdfengine/textindex"
	"github.com/wudi/pdfengine/thumbnail"
)

var (
	// ErrContractViolation wraps every error caused by a caller breaking
	// an API precondition. Under StrictContracts these panic instead.
	ErrContractViolation = errors.New("engine: contract violation")
	ErrPageCountUnknown  = errors.New("engine: page count not known yet")
	ErrPagePinned        = errors.New("engine: page holds unsaved ink")
	ErrPageNotAvailable  = errors.New("engine: page not available")
	ErrNoFindResult      = errors.New("engine: no such find result")
	ErrLoading           = errors.New("engine: document still loading")
)

type Option func(*Engine)

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithTracer(t observability.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithScriptEngine replaces the goja runtime used for field scripts.
func WithScriptEngine(s scripting.Engine) Option {
	return func(e *Engine) { e.scripts = s }
}

func WithRenderer(r *render.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// Engine is the single owner of a document's view state. Each field is
// written only through the component that owns it.
type Engine struct {
	cfg    config.Config
	log    observability.Logger
	tracer observability.Tracer

	data    []byte
	doc     *document.Document
	indexes []*textindex.Index

	tracker   *availability.Tracker
	layout    *layout.Layout
	selection *selection.Engine
	focus     *focus.Machine
	ink       *ink.Manager
	renderer  *render.Renderer
	thumbs    *thumbnail.Generator
	searcher  *search.Searcher

	scripts    scripting.Engine
	domBound   bool
	formColor  color.NRGBA
	formOn     bool
	readOnly   bool
	annotMode  bool
	fieldFocus FieldFocus

	zoom       float64
	scroll     coords.Point
	pluginSize coords.Size

	selecting   bool
	hoverLink   string
	findResults []search.Match
	fragments   []search.Match
	// headerLoaded is set once Info and Dests have been read.
	headerLoaded bool

	events []Event
}

// New returns an engine with no document bytes yet.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	spread, err := layout.ParseSpreadMode(cfg.Layout.Spread)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	formColor, err := parseHexColor(cfg.Forms.HighlightColor)
	if err != nil {
		return nil, fmt.Errorf("engine: form highlight color: %w", err)
	}
	e := &Engine{
		cfg:       cfg,
		log:       observability.NopLogger{},
		tracer:    observability.NopTracer(),
		doc:       document.New(),
		formColor: formColor,
		formOn:    cfg.Forms.Highlight,
		zoom:      1,
		searcher:  search.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = render.New(render.WithLogger(e.log))
	}
	e.tracker = availability.New(availability.WithLogger(e.log))
	e.layout = layout.New(layout.WithLogger(e.log), layout.WithOptions(layout.Options{
		DefaultRotation: coords.RotationFromDegrees(cfg.Layout.Rotation),
		Spread:          spread,
	}))
	selOpts := []selection.Option{selection.WithLogger(e.log), selection.WithTolerance(cfg.HitTolerance)}
	if cfg.LineSeparator != "" {
		selOpts = append(selOpts, selection.WithLineSeparator(cfg.LineSeparator))
	}
	e.selection = selection.New(e, selOpts...)
	e.focus = focus.New(e, focus.WithLogger(e.log))
	e.ink = ink.NewManager(e.doc, ink.WithLogger(e.log))
	e.thumbs = thumbnail.NewGenerator(thumbSource{e},
		thumbnail.WithLogger(e.log),
		thumbnail.WithTracer(e.tracer),
		thumbnail.WithMaxBytes(cfg.Thumbnail.MaxBytes))
	return e, nil
}

// Open loads a complete file.
func Open(data []byte, cfg config.Config, opts ...Option) (*Engine, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	e.NotifyDataArrived(0, data)
	if err := e.FinishLoading(); err != nil {
		return nil, err
	}
	return e, nil
}

// FromDocument writes doc and opens the result.
func FromDocument(doc *document.Document, cfg config.Config, opts ...Option) (*Engine, error) {
	data, _, err := doc.Bytes(document.Config{})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return Open(data, cfg, opts...)
}

// violation reports a broken caller contract.
func (e *Engine) violation(err error) error {
	err = fmt.Errorf("%w: %w", ErrContractViolation, err)
	e.log.Error("contract violation", observability.Error("error", err))
	if e.cfg.StrictContracts {
		panic(err)
	}
	return err
}

func (e *Engine) Config() config.Config { return e.cfg }

// Document exposes the native document. Pages that have not arrived are
// nil.
func (e *Engine) Document() *document.Document { return e.doc }

// PageCount is zero until the page count is known.
func (e *Engine) PageCount() int { return len(e.doc.Pages) }

func (e *Engine) PageCountKnown() bool { return e.tracker.PageCountKnown() }

// parseHexColor reads #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
