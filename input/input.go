// Package input describes the raw events a host delivers to the engine.
package input

import (
	"strings"

	"github.com/wudi/pdfengine/coords"
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModNone  Modifiers = 0
	ModShift Modifiers = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Has(mod Modifiers) bool { return m&mod != 0 }

// IsAccelerator reports whether Ctrl or Alt is held. Those combinations
// belong to the host.
func (m Modifiers) IsAccelerator() bool { return m.Has(ModCtrl) || m.Has(ModAlt) }

func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// Type tags an Event.
type Type int

const (
	MouseDown Type = iota
	MouseMove
	MouseUp
	KeyDown
)

// Key names the keys the engine reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyTab
	KeyEscape
)

// Event is one host input event. Point is in screen pixels relative to
// the plugin origin.
type Event struct {
	Type       Type
	Point      coords.Point
	ClickCount int
	// Pressed is true for moves with the primary button held.
	Pressed   bool
	Key       Key
	Modifiers Modifiers
}
