// Package jsbind exposes seht to JavaScript running in a goja runtime.
// Installation is explicit: nothing is defined in a runtime until Install is
// called on it.
package jsbind

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime wraps a goja runtime with a console and error bookkeeping.
type Runtime struct {
	vm     *goja.Runtime
	logger *zap.Logger
	binder *binder
	mu     sync.Mutex // serializes use of vm

	errMu   sync.Mutex
	errors  []error
	onError func(error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. console.* output and listener exceptions are
// written to it.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRuntime creates a runtime with a console object.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		vm:     goja.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("jsbind")
	r.setupConsole()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetOnError sets a callback for script errors.
// The handler runs after the failing script has returned, so it may use
// the runtime.
func (r *Runtime) SetOnError(handler func(error)) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.onError = handler
}

func (r *Runtime) recordError(err error) {
	r.errMu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.errMu.Unlock()

	if handler != nil {
		handler(err)
	}
}

// run calls fn with the VM locked and turns a panic into an error.
func (r *Runtime) run(what string, fn func() (goja.Value, error)) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: %v", what, p)
		}
	}()
	return fn()
}

// Execute runs code and returns its completion value.
func (r *Runtime) Execute(code string) (goja.Value, error) {
	result, err := r.run("script execution panic", func() (goja.Value, error) {
		return r.vm.RunString(code)
	})
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript compiles and runs code named src, in sloppy mode. A failing
// script does not affect later ones.
func (r *Runtime) ExecuteScript(code, src string) error {
	_, err := r.run("script panic in "+src, func() (goja.Value, error) {
		program, err := goja.Compile(src, code, false)
		if err != nil {
			return nil, err
		}
		return r.vm.RunProgram(program)
	})
	if err != nil {
		r.recordError(err)
	}
	return err
}

// Errors returns all errors recorded so far.
func (r *Runtime) Errors() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errors = r.errors[:0]
}

// setupConsole defines console.log, info, warn, error and debug, writing to
// the logger under the "console" name.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	logger := r.logger.Named("console")

	levels := map[string]func(string, ...zap.Field){
		"log":   logger.Info,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
		"debug": logger.Debug,
		"trace": logger.Debug,
	}
	for name, write := range levels {
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			write(formatArgs(call.Arguments))
			return goja.Undefined()
		})
	}

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "Assertion failed"
			if len(call.Arguments) > 1 {
				msg += ": " + formatArgs(call.Arguments[1:])
			}
			logger.Error(msg)
		}
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// formatArgs joins console arguments with spaces.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
