package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/pdfengine/config"
	"github.com/wudi/pdfengine/coords"
	"github.com/wudi/pdfengine/docgen"
	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/engine"
	"github.com/wudi/pdfengine/focus"
	"github.com/wudi/pdfengine/ink"
	"github.com/wudi/pdfengine/input"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/thumbnail"
)

var modes = []string{"gen", "text", "select", "tab", "thumb", "save", "find"}

type options struct {
	mode       string
	input      string
	out        string
	configPath string
	page       int
	x, y       float64
	clicks     int
	toPage     int
	toX, toY   float64
	dpr        float64
	stroke     string
	term       string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfview: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pdfview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pdfview", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdfview -mode <%s> [flags] <input>\n", strings.Join(modes, "|"))
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.mode, "mode", "text", "What to do with the input")
	fs.StringVar(&opts.out, "out", "", "Output file for gen, thumb and save")
	fs.StringVar(&opts.configPath, "config", "", "TOML configuration file")
	fs.IntVar(&opts.page, "page", 0, "Page index")
	fs.Float64Var(&opts.x, "x", 0, "Point x in page user space")
	fs.Float64Var(&opts.y, "y", 0, "Point y in page user space")
	fs.IntVar(&opts.clicks, "clicks", 2, "Click count for select")
	fs.IntVar(&opts.toPage, "to-page", -1, "Page to extend the selection to")
	fs.Float64Var(&opts.toX, "to-x", 0, "Extension point x")
	fs.Float64Var(&opts.toY, "to-y", 0, "Extension point y")
	fs.Float64Var(&opts.dpr, "dpr", 1, "Device pixel ratio for thumb")
	fs.StringVar(&opts.stroke, "stroke", "", "Ink stroke for save as x1,y1,x2,y2,... in canonical page points")
	fs.StringVar(&opts.term, "term", "", "Search term for find")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("missing input file")
	}
	opts.input = fs.Arg(0)
	if !containsMode(opts.mode) {
		return options{}, fmt.Errorf("unknown mode %q", opts.mode)
	}
	switch opts.mode {
	case "gen", "thumb", "save":
		if opts.out == "" {
			return options{}, fmt.Errorf("-out is required for %s", opts.mode)
		}
	case "find":
		if opts.term == "" {
			return options{}, errors.New("-term is required for find")
		}
	}
	return opts, nil
}

func containsMode(m string) bool {
	for _, v := range modes {
		if v == m {
			return true
		}
	}
	return false
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func run(opts options, w io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	log := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: observability.ParseLevel(cfg.LogLevel),
	})))

	if opts.mode == "gen" {
		return generate(opts, log)
	}

	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	e, err := engine.Open(data, cfg, engine.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.input, err)
	}
	e.DrainEvents()

	switch opts.mode {
	case "text":
		for page := range e.PageCount() {
			fmt.Fprintf(w, "--- page %d ---\n%s\n", page, e.GetPageText(page))
		}
	case "select":
		return selectText(e, opts, w)
	case "tab":
		return tabWalk(e, w)
	case "thumb":
		return writeThumbnail(e, opts)
	case "save":
		return save(e, opts)
	case "find":
		for _, m := range e.Find(opts.term, false) {
			fmt.Fprintf(w, "page %d chars [%d,%d)\n", m.Page, m.Start, m.End)
		}
	}
	return nil
}

func generate(opts options, log observability.Logger) error {
	src, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	genOpts := []docgen.Option{docgen.WithLogger(log), docgen.WithTitle(strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input)))}
	var doc *document.Document
	switch strings.ToLower(filepath.Ext(opts.input)) {
	case ".html", ".htm":
		doc, err = docgen.FromHTML(src, genOpts...)
	default:
		doc, err = docgen.FromMarkdown(src, genOpts...)
	}
	if err != nil {
		return err
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if _, err := document.Write(f, doc, document.Config{Producer: "pdfview"}); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	return f.Close()
}

func selectText(e *engine.Engine, opts options, w io.Writer) error {
	if !e.SetAnchorAtPoint(opts.page, coords.Point{X: opts.x, Y: opts.y}, opts.clicks) {
		return fmt.Errorf("no text at page %d (%g, %g)", opts.page, opts.x, opts.y)
	}
	if opts.toPage >= 0 && !e.ExtendSelectionTo(opts.toPage, coords.Point{X: opts.toX, Y: opts.toY}) {
		return fmt.Errorf("no text at page %d (%g, %g)", opts.toPage, opts.toX, opts.toY)
	}
	fmt.Fprintln(w, e.GetSelectedText())
	for _, r := range e.GetSelectionRects() {
		fmt.Fprintf(w, "page %d rect %d,%d %dx%d\n", r.Page, r.Rect.X, r.Rect.Y, r.Rect.Width, r.Rect.Height)
	}
	return nil
}

func tabWalk(e *engine.Engine, w io.Writer) error {
	for {
		ok := e.HandleTab(input.ModNone)
		fmt.Fprintln(w, e.FocusElement())
		for _, ev := range e.DrainEvents() {
			fmt.Fprintf(w, "  %T %+v\n", ev, ev)
		}
		if !ok {
			break
		}
	}
	if _, none := e.FocusElement().(focus.None); !none {
		return errors.New("tab walk did not end on none")
	}
	return nil
}

func writeThumbnail(e *engine.Engine, opts options) error {
	var (
		thumb thumbnail.Thumbnail
		err   error
	)
	if reqErr := e.RequestThumbnail(opts.page, float32(opts.dpr), func(t thumbnail.Thumbnail, genErr error) {
		thumb, err = t, genErr
	}); reqErr != nil {
		return reqErr
	}
	if err != nil {
		return err
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, thumb.Image); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func save(e *engine.Engine, opts options) error {
	if opts.stroke != "" {
		s, err := parseStroke(opts.stroke)
		if err != nil {
			return err
		}
		if err := e.ApplyStroke(opts.page, 1, s); err != nil {
			return err
		}
	}
	data, err := e.GetSaveData()
	if err != nil {
		return err
	}
	return os.WriteFile(opts.out, data, 0o644)
}

func parseStroke(s string) (ink.Stroke, error) {
	var vals []float64
	for _, f := range strings.Split(s, ",") {
		var v float64
		if _, err := fmt.Sscan(strings.TrimSpace(f), &v); err != nil {
			return ink.Stroke{}, fmt.Errorf("stroke %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	if len(vals) < 2 || len(vals)%2 != 0 {
		return ink.Stroke{}, fmt.Errorf("stroke %q: need x,y pairs", s)
	}
	stroke := ink.Stroke{Brush: ink.Brush{Type: ink.Pen, Size: 2}}
	stroke.Brush.Color.A = 255
	for i := 0; i < len(vals); i += 2 {
		stroke.Inputs = append(stroke.Inputs, ink.InputPoint{Point: coords.Point{X: vals[i], Y: vals[i+1]}})
	}
	return stroke, nil
}
