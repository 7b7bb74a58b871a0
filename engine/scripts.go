package engine

import (
	"context"
	"fmt"

	"github.com/wudi/pdfengine/document"
	"github.com/wudi/pdfengine/observability"
	"github.com/wudi/pdfengine/scripting"
)

// fieldProxy lets scripts read and write one form field.
type fieldProxy struct {
	e     *Engine
	field *document.Field
}

func (f fieldProxy) Value() string { return f.field.Value }

func (f fieldProxy) SetValue(v string) {
	if v == f.field.Value {
		return
	}
	f.field.Value = v
	f.e.invalidateField(f.field)
}

// GetField implements scripting.DocumentDOM over loaded pages.
func (e *Engine) GetField(name string) (scripting.FieldProxy, error) {
	f := e.doc.FieldByName(name)
	if f == nil {
		return nil, fmt.Errorf("engine: no field named %q", name)
	}
	return fieldProxy{e: e, field: f}, nil
}

func (e *Engine) Alert(message string) { e.emit(Alert{Message: message}) }

func (e *Engine) invalidateField(f *document.Field) {
	for i, p := range e.doc.Pages {
		if p == nil {
			continue
		}
		for _, a := range p.Annotations {
			if a.Field == f {
				e.emit(Invalidate{Rect: e.layoutRectToScreen(e.boxToLayout(i, a.Rect))})
			}
		}
	}
}

// runScript runs a field action. Script failures are logged and never
// reach the host.
func (e *Engine) runScript(src string) {
	if !e.cfg.Scripting.Enabled {
		return
	}
	if e.scripts == nil {
		e.scripts = scripting.NewEngine()
	}
	if !e.domBound {
		if err := e.scripts.RegisterDOM(e); err != nil {
			e.log.Warn("script setup failed", observability.Error("error", err))
			return
		}
		e.domBound = true
	}
	ctx, span := e.tracer.StartSpan(context.Background(), observability.MetricScriptTime)
	defer span.Finish()
	if d := e.cfg.Scripting.Timeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if _, err := e.scripts.Execute(ctx, src); err != nil {
		span.SetError(err)
		e.log.Warn("field script failed", observability.Error("error", err))
	}
}
