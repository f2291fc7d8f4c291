// Package jsbridge runs the report's client-side section helpers against a
// parsed document, so inline handlers such as toggleElement('errorsPanel')
// can be replayed and checked without a browser.
package jsbridge

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/reportsections/pkg/logger"
)

// Script is the helper script embedded in every generated report.
//
//go:embed toggle.js
var Script string

// ErrClosed is returned by an engine after Close.
var ErrClosed = errors.New("engine closed")

// Engine wraps a goja runtime with a console and an optional document binding.
type Engine struct {
	runtime *goja.Runtime
	closed  bool
	mu      sync.Mutex
}

// New creates a new JS engine instance
func New() *Engine {
	e := &Engine{
		runtime: goja.New(),
	}

	e.setupConsole()
	return e
}

// setupConsole adds console.log, console.error and console.warn, routed to the log file.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(log func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = fmt.Sprintf("%v", arg.Export())
			}
			log("[JS] %s", strings.Join(args, " "))
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(logger.Info))
	console.Set("error", makeConsoleFunc(logger.Error))
	console.Set("warn", makeConsoleFunc(logger.Warn))
	e.runtime.Set("console", console)
}

// Eval evaluates a JavaScript expression and returns the result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}

	return result.Export(), nil
}

// RunScript runs a script for its side effects.
func (e *Engine) RunScript(script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	_, err := e.runtime.RunString(script)
	if err != nil {
		return fmt.Errorf("JS runtime error: %w", err)
	}

	return nil
}

// HelperNames are the functions report markup calls from inline handlers.
var HelperNames = []string{"toggleElement", "show", "hide", "isVisible"}

// LoadHelpers defines the section helper functions in the runtime.
func (e *Engine) LoadHelpers() error {
	return e.RunScript(Script)
}

// LoadMissingHelpers defines only the helpers the runtime lacks, keeping any
// the page already provides. It returns the names it loaded.
func (e *Engine) LoadMissingHelpers() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	own := make(map[string]goja.Value)
	var missing []string
	for _, name := range HelperNames {
		v := e.runtime.Get(name)
		if _, ok := goja.AssertFunction(v); ok {
			own[name] = v
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	if _, err := e.runtime.RunString(Script); err != nil {
		return nil, fmt.Errorf("JS runtime error: %w", err)
	}
	for name, v := range own {
		if err := e.runtime.Set(name, v); err != nil {
			return nil, err
		}
	}
	return missing, nil
}

// call invokes a global function with string arguments.
func (e *Engine) call(name string, args ...string) (goja.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	fn, ok := goja.AssertFunction(e.runtime.Get(name))
	if !ok {
		return nil, fmt.Errorf("%s is not a function", name)
	}

	values := make([]goja.Value, len(args))
	for i, a := range args {
		values[i] = e.runtime.ToValue(a)
	}

	result, err := fn(goja.Undefined(), values...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	return result, nil
}

// IsVisible calls the script's isVisible(id).
func (e *Engine) IsVisible(id string) (bool, error) {
	v, err := e.call("isVisible", id)
	if err != nil {
		return false, err
	}
	return v.ToBoolean(), nil
}

// Show calls the script's show(id).
func (e *Engine) Show(id string) error {
	_, err := e.call("show", id)
	return err
}

// Hide calls the script's hide(id).
func (e *Engine) Hide(id string) error {
	_, err := e.call("hide", id)
	return err
}

// Toggle calls the script's toggleElement(id).
func (e *Engine) Toggle(id string) error {
	_, err := e.call("toggleElement", id)
	return err
}

// Replay evaluates inline event handler expressions in order, stopping at the
// first error. It returns the value of each handler; handlers such as
// toggleElement('id') yield nil, isVisible('id') yields a bool.
func (e *Engine) Replay(handlers []string) ([]interface{}, error) {
	results := make([]interface{}, 0, len(handlers))
	for i, h := range handlers {
		logger.Debug("replay handler %d: %s", i, h)
		v, err := e.Eval(h)
		if err != nil {
			return results, fmt.Errorf("handler %d (%s): %w", i, h, err)
		}
		results = append(results, v)
	}
	return results, nil
}

// Close interrupts any running script and rejects further calls.
// Safe to call multiple times.
func (e *Engine) Close() {
	e.runtime.Interrupt("engine closed")

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
