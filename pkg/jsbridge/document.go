package jsbridge

import (
	"github.com/dop251/goja"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

// BindOptions controls which document surfaces are exposed to scripts.
type BindOptions struct {
	// Legacy also exposes document.layers and document.all.
	Legacy bool
}

// BindDocument exposes doc to scripts as the global document object.
func (e *Engine) BindDocument(doc *dom.Document, opts BindOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vm := e.runtime
	jsDoc := vm.NewObject()

	byID := doc.ByID()
	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		id := visibility.ElementID(call.Arguments[0].String())
		s, ok := byID.Resolve(id)
		if !ok {
			return goja.Null()
		}
		return e.wrapElement(id, s, true)
	})

	if opts.Legacy {
		jsDoc.Set("all", vm.NewDynamicObject(&collection{engine: e, resolver: doc.All(), nested: true}))
		jsDoc.Set("layers", vm.NewDynamicObject(&collection{engine: e, resolver: doc.Layers()}))
	}

	vm.Set("document", jsDoc)
}

// wrapElement builds the JS view of a resolved element. With nested set the
// display property sits on element.style, otherwise on the element itself.
func (e *Engine) wrapElement(id visibility.ElementID, s visibility.Style, nested bool) *goja.Object {
	vm := e.runtime

	el := vm.NewObject()
	el.Set("id", string(id))

	target := el
	if nested {
		target = vm.NewObject()
		el.Set("style", target)
	}

	getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(s.Display())
	})
	setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		s.SetDisplay(displayArg(call.Argument(0)))
		return goja.Undefined()
	})
	target.DefineAccessorProperty("display", getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)

	return el
}

// displayArg converts an assigned display value to a string. Like a browser,
// null and undefined clear the property.
func displayArg(v goja.Value) string {
	if goja.IsNull(v) || goja.IsUndefined(v) {
		return ""
	}
	return v.String()
}

// collection is an indexed element collection such as document.all.
// Reads resolve on every access; writes are ignored.
type collection struct {
	engine   *Engine
	resolver visibility.Resolver
	nested   bool
}

func (c *collection) Get(key string) goja.Value {
	id := visibility.ElementID(key)
	if id.Validate() != nil {
		return nil
	}
	s, ok := c.resolver.Resolve(id)
	if !ok {
		return nil
	}
	return c.engine.wrapElement(id, s, c.nested)
}

func (c *collection) Set(key string, val goja.Value) bool {
	return false
}

func (c *collection) Has(key string) bool {
	id := visibility.ElementID(key)
	if id.Validate() != nil {
		return false
	}
	_, ok := c.resolver.Resolve(id)
	return ok
}

func (c *collection) Delete(key string) bool {
	return false
}

func (c *collection) Keys() []string {
	return nil
}
