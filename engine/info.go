package engine

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
)

var ErrHeaderNotAvailable = errors.New("engine: document header has not arrived")

// DocumentMetadata describes the file as a whole.
type DocumentMetadata struct {
	// Version is the header version such as "1.7", empty if unknown.
	Version   string
	SizeBytes int64
	Info      document.Info
}

// loadHeader reads the information dictionary and named destinations
// once the header bytes are in.
func (e *Engine) loadHeader() error {
	if e.headerLoaded {
		return nil
	}
	h, ok := e.tracker.Hints()
	if !ok {
		return ErrPageCountUnknown
	}
	if !e.tracker.IsCovered(h.Header) {
		return ErrHeaderNotAvailable
	}
	head, err := document.ParseHeader(e.data, h)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.doc.Info = head.Info
	e.doc.Dests = head.Dests
	e.headerLoaded = true
	e.log.Debug("header loaded", observability.Int("dests", len(head.Dests)))
	return nil
}

func (e *Engine) GetDocumentMetadata() (DocumentMetadata, error) {
	if err := e.loadHeader(); err != nil {
		return DocumentMetadata{}, err
	}
	h, _ := e.tracker.Hints()
	return DocumentMetadata{
		Version:   document.ParseVersion(e.data),
		SizeBytes: h.Length,
		Info:      e.doc.Info,
	}, nil
}

// GetNamedDestination looks up a destination by name. Destinations whose
// page is not in the document are not found.
func (e *Engine) GetNamedDestination(name string) (document.Destination, bool) {
	if err := e.loadHeader(); err != nil {
		return document.Destination{}, false
	}
	d, ok := e.doc.Dests[name]
	if !ok || d.Page < 0 || d.Page >= len(e.doc.Pages) {
		return document.Destination{}, false
	}
	return d, true
}
