package scripting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

// Execute interrupts the runtime when ctx ends. The watchdog goroutine
// is joined before Execute returns.
func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	defer func() {
		close(done)
		<-stopped
		e.vm.ClearInterrupt()
	}()

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("scripting: %w", err)
	}
	if val == nil {
		return nil, nil
	}
	return val.Export(), nil
}

func (e *GojaEngine) RegisterDOM(dom DocumentDOM) error {
	app := e.vm.NewObject()
	if err := app.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		dom.Alert(msg)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := e.vm.Set("app", app); err != nil {
		return err
	}
	if err := e.vm.Set("numPages", dom.PageCount()); err != nil {
		return err
	}

	return e.vm.Set("getField", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		field, err := dom.GetField(call.Arguments[0].String())
		if err != nil || field == nil {
			return goja.Null()
		}

		obj := e.vm.NewObject()
		err = obj.DefineAccessorProperty("value",
			e.vm.ToValue(func(goja.FunctionCall) goja.Value {
				return e.vm.ToValue(field.Value())
			}),
			e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
				if len(call.Arguments) > 0 {
					field.SetValue(call.Arguments[0].String())
				}
				return goja.Undefined()
			}),
			goja.FLAG_TRUE,
			goja.FLAG_TRUE,
		)
		if err != nil {
			panic(e.vm.NewGoError(err))
		}
		return obj
	})
}
