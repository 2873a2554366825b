package js

import (
	"github.com/dop251/goja"

	"github.com/chrisuehlinger/elementbind/binding"
)

// BindRegistry installs a global object named name that lets scripts
// attach bindings to elements out of band:
//
//	bindings.setBinding(element, {text: function () { return {text: this.name} }})
//	bindings.setBinding({'.row': rowBinding, '#title': titleBinding}, container)
//	bindings.setBindingByClassName('row', rowBinding, container)
//	bindings.setBindingById('title', titleBinding)
//	bindings.hasBinding(element)
//	bindings.getBindings(element, data)
//	bindings.clear(element)
//
// Lookups that match nothing and undefined or null bindings are silent no-ops.
func (b *DOMBinder) BindRegistry(name string, reg *binding.Registry) *goja.Object {
	vm := b.runtime.vm
	api := vm.NewObject()

	api.Set("setBinding", func(call goja.FunctionCall) goja.Value {
		target := call.Argument(0)
		if node := b.GoNode(target); node != nil {
			if spec, ok := b.specArg(call.Argument(1)); ok {
				_ = reg.SetBinding(node, spec)
			}
			return goja.Undefined()
		}

		selectors, ok := target.(*goja.Object)
		if !ok {
			b.runtime.logger.Debug("setBinding ignored", "target", formatValue(target))
			return goja.Undefined()
		}
		container := b.GoNode(call.Argument(1))
		for _, selector := range selectors.Keys() {
			spec, ok := b.specArg(selectors.Get(selector))
			if !ok {
				continue
			}
			// Unmatched and unprefixed selectors are logged by the registry.
			_ = reg.ApplySelector(selector, spec, container)
		}
		return goja.Undefined()
	})

	api.Set("setBindingByClassName", func(call goja.FunctionCall) goja.Value {
		spec, ok := b.specArg(call.Argument(1))
		if !ok {
			return vm.ToValue(0)
		}
		count := reg.SetBindingByClassName(call.Argument(0).String(), spec, b.GoNode(call.Argument(2)))
		return vm.ToValue(count)
	})

	api.Set("setBindingById", func(call goja.FunctionCall) goja.Value {
		if spec, ok := b.specArg(call.Argument(1)); ok {
			_ = reg.SetBindingById(call.Argument(0).String(), spec)
		}
		return goja.Undefined()
	})

	api.Set("hasBinding", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(reg.HasBinding(b.GoNode(call.Argument(0))))
	})

	api.Set("getBindings", func(call goja.FunctionCall) goja.Value {
		node := b.GoNode(call.Argument(0))
		if node == nil {
			return goja.Null()
		}
		spec, err := reg.Resolve(node, binding.NewContext(call.Argument(1)))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return b.runtime.ToValue(spec)
	})

	api.Set("clear", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(reg.Clear(b.GoNode(call.Argument(0))))
	})

	vm.Set(name, api)
	return api
}

// specArg converts a script binding argument, panicking with a TypeError
// when it is not an object. A missing, undefined or null binding reports
// false and binds nothing.
func (b *DOMBinder) specArg(v goja.Value) (*binding.Spec, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	spec, err := b.runtime.SpecFromValue(v)
	if err != nil {
		panic(b.runtime.vm.NewTypeError(err.Error()))
	}
	return spec, true
}
