package js

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/elementbind/binding"
)

// Handler is a JavaScript function carried as a binding value, such as a
// click handler. It is data to the resolver, not an accessor.
type Handler struct {
	rt    *Runtime
	fn    goja.Callable
	value goja.Value
}

// Call invokes the handler with this bound to thisArg.
func (h Handler) Call(thisArg any, args ...any) (any, error) {
	values := make([]goja.Value, len(args))
	for i, a := range args {
		values[i] = h.rt.vm.ToValue(a)
	}
	result, err := h.rt.call(h.fn, h.rt.vm.ToValue(thisArg), values...)
	if err != nil {
		return nil, err
	}
	return result.Export(), nil
}

// String implements fmt.Stringer.
func (h Handler) String() string {
	return "function"
}

// MarshalYAML renders the handler as a placeholder.
func (h Handler) MarshalYAML() (any, error) {
	return "<function>", nil
}

// MarshalText renders the handler as a placeholder.
func (h Handler) MarshalText() ([]byte, error) {
	return []byte("<function>"), nil
}

// SpecFromValue converts a JavaScript binding object into a binding.Spec.
// Function-valued properties become accessors that run with this bound to
// the context's current data; other properties are exported as Go values.
// Property order is preserved.
func (r *Runtime) SpecFromValue(v goja.Value) (*binding.Spec, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return binding.NewSpec(), nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("binding must be an object, got %s", formatValue(v))
	}

	spec := binding.NewSpec()
	for _, key := range obj.Keys() {
		prop := obj.Get(key)
		if fn, ok := goja.AssertFunction(prop); ok {
			spec.Set(key, r.accessor(key, fn))
			continue
		}
		spec.Set(key, r.export(prop))
	}
	return spec, nil
}

// accessor wraps a binding function as a binding.Accessor.
func (r *Runtime) accessor(key string, fn goja.Callable) binding.Accessor {
	return func(data any) (*binding.Spec, error) {
		result, err := r.call(fn, r.vm.ToValue(data))
		if err != nil {
			return nil, fmt.Errorf("binding function %q: %w", key, err)
		}
		return r.resultSpec(result)
	}
}

// resultSpec converts the object returned by an accessor or a binding
// attribute. Functions in it are values and become Handlers.
func (r *Runtime) resultSpec(v goja.Value) (*binding.Spec, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("binding function must return an object, got %s", formatValue(v))
	}
	spec := binding.NewSpec()
	for _, key := range obj.Keys() {
		spec.Set(key, r.export(obj.Get(key)))
	}
	return spec, nil
}

// export converts a JavaScript value into a Go binding value.
func (r *Runtime) export(v goja.Value) any {
	if fn, ok := goja.AssertFunction(v); ok {
		return Handler{rt: r, fn: fn, value: v}
	}
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}

// ToValue converts a resolved binding.Spec into a JavaScript object.
func (r *Runtime) ToValue(spec *binding.Spec) goja.Value {
	if spec == nil {
		return goja.Null()
	}
	obj := r.vm.NewObject()
	for _, key := range spec.Keys() {
		value, _ := spec.Get(key)
		switch v := value.(type) {
		case Handler:
			obj.Set(key, v.value)
		case *binding.Spec:
			obj.Set(key, r.ToValue(v))
		default:
			obj.Set(key, v)
		}
	}
	return obj
}
