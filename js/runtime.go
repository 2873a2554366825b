// Package js provides JavaScript execution for binding scripts.
// It uses the goja JavaScript engine (pure Go ES5.1+ implementation).
package js

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Runtime wraps a goja JavaScript runtime. A goja runtime is not safe for
// concurrent use; all calls into a Runtime, including binding accessors it
// produced, must come from one goroutine.
type Runtime struct {
	vm     *goja.Runtime
	logger *slog.Logger

	mu      sync.Mutex
	errors  []error
	onError func(error)
}

// NewRuntime creates a new JavaScript runtime. Script console output is
// written to logger, or slog.Default() when logger is nil.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runtime{
		vm:     goja.New(),
		logger: logger,
	}
	r.setupConsole()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript compiles and runs code attributed to src in error messages.
// Scripts run in sloppy mode unless they opt into strict mode themselves.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}

	if _, err = r.vm.RunProgram(program); err != nil {
		r.recordError(err)
	}
	return err
}

// ParseJSON parses JSON text into a native JavaScript value.
func (r *Runtime) ParseJSON(text string) (goja.Value, error) {
	parse, ok := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
	if !ok {
		return nil, fmt.Errorf("JSON.parse is not callable")
	}
	return r.call(parse, goja.Undefined(), r.vm.ToValue(text))
}

// call invokes fn, turning goja panics into errors.
func (r *Runtime) call(fn goja.Callable, this goja.Value, args ...goja.Value) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script call panic: %v", p)
		}
	}()
	return fn(this, args...)
}

func (r *Runtime) recordError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()

	if handler != nil {
		handler(err)
	}
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// setupConsole creates a console object whose methods log through slog.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	logAt := func(level slog.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			r.logger.Log(context.Background(), level, formatArgs(call.Arguments), "source", "console")
			return goja.Undefined()
		}
	}

	console.Set("log", logAt(slog.LevelInfo))
	console.Set("info", logAt(slog.LevelInfo))
	console.Set("debug", logAt(slog.LevelDebug))
	console.Set("warn", logAt(slog.LevelWarn))
	console.Set("error", logAt(slog.LevelError))

	r.vm.Set("console", console)
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
