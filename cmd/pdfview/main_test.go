package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/pdfengine/document"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-mode", "select", "-page", "1", "-x", "12.5", "doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "select", opts.mode)
	assert.Equal(t, 1, opts.page)
	assert.Equal(t, 12.5, opts.x)
	assert.Equal(t, "doc.pdf", opts.input)

	_, err = parseFlags([]string{"-mode", "thumb", "doc.pdf"})
	assert.ErrorContains(t, err, "-out")
	_, err = parseFlags([]string{"-mode", "bogus", "doc.pdf"})
	assert.ErrorContains(t, err, "unknown mode")
	_, err = parseFlags(nil)
	assert.Error(t, err)
}

func TestParseStroke(t *testing.T) {
	s, err := parseStroke("1,2, 3,4")
	require.NoError(t, err)
	require.Len(t, s.Inputs, 2)
	assert.Equal(t, 3.0, s.Inputs[1].Point.X)
	_, err = parseStroke("1,2,3")
	assert.Error(t, err)
}

func TestGenThenInspect(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "in.md")
	require.NoError(t, os.WriteFile(md, []byte("# Notes\n\nGoodbye, world!\n\n---\n\nHello, world!\n"), 0o644))
	pdf := filepath.Join(dir, "out.pdf")
	require.NoError(t, run(options{mode: "gen", input: md, out: pdf}, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, run(options{mode: "text", input: pdf}, &out))
	assert.Contains(t, out.String(), "--- page 1 ---\nHello, world!")

	saved := filepath.Join(dir, "saved.pdf")
	require.NoError(t, run(options{mode: "save", input: pdf, out: saved, stroke: "10,10,50,50"}, &out))
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	marks, err := document.MarkedContent(data, document.InkMarkV2)
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	out.Reset()
	require.NoError(t, run(options{mode: "tab", input: pdf}, &out))
	assert.Contains(t, out.String(), "document\n")

	thumb := filepath.Join(dir, "t.png")
	require.NoError(t, run(options{mode: "thumb", input: pdf, out: thumb, dpr: 1}, &out))
	_, err = os.Stat(thumb)
	assert.NoError(t, err)
}
