// Package scripting runs the JavaScript actions attached to form fields.
package scripting

import (
	"context"
)

// Engine runs scripts against a document.
type Engine interface {
	// Execute runs script until it ends or ctx is done.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDOM exposes dom to later scripts.
	RegisterDOM(dom DocumentDOM) error
}

// DocumentDOM is the slice of the document scripts may see.
type DocumentDOM interface {
	// GetField returns a form field by its fully qualified name.
	GetField(name string) (FieldProxy, error)

	// PageCount backs the numPages global.
	PageCount() int

	// Alert shows a message through the host.
	Alert(message string)
}

// FieldProxy is a form field as scripts see it.
type FieldProxy interface {
	Value() string
	SetValue(value string)
}
