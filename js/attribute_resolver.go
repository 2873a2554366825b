package js

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/elementbind/binding"
	"github.com/chrisuehlinger/elementbind/dom"
)

// DefaultBindingAttribute is the markup attribute read by AttributeResolver.
const DefaultBindingAttribute = "data-bind"

// AttributeResolver is the default, markup-based resolver. It reads a
// binding attribute such as data-bind="text: name, visible: items.length > 0"
// and evaluates it as an object literal with the context's data in scope.
// $data, $root, $parent and $element are also available to the expression;
// $element is the binder's object for the element, the one scripts see.
type AttributeResolver struct {
	binder    *DOMBinder
	rt        *Runtime
	attribute string
	compiled  map[string]goja.Callable
}

// NewAttributeResolver creates a resolver evaluating in binder's runtime and
// reading attribute, or DefaultBindingAttribute when attribute is empty.
func NewAttributeResolver(binder *DOMBinder, attribute string) *AttributeResolver {
	if attribute == "" {
		attribute = DefaultBindingAttribute
	}
	return &AttributeResolver{
		binder:    binder,
		rt:        binder.Runtime(),
		attribute: strings.ToLower(attribute),
		compiled:  make(map[string]goja.Callable),
	}
}

// Attribute returns the attribute name the resolver reads.
func (a *AttributeResolver) Attribute() string {
	return a.attribute
}

// CanResolve reports whether node is an element with a non-blank binding attribute.
func (a *AttributeResolver) CanResolve(node *dom.Node) bool {
	_, ok := a.source(node)
	return ok
}

// Resolve evaluates the node's binding attribute against ctx.
func (a *AttributeResolver) Resolve(node *dom.Node, ctx *binding.Context) (*binding.Spec, error) {
	src, ok := a.source(node)
	if !ok {
		return nil, nil
	}
	fn, err := a.compile(src)
	if err != nil {
		return nil, err
	}

	vm := a.rt.vm
	var data, root, parent any
	if ctx != nil {
		data = ctx.Data
		root = ctx.Root()
		if ctx.Parent != nil {
			parent = ctx.Parent.Data
		}
	}
	scope := vm.NewObject()
	scope.Set("$data", data)
	scope.Set("$root", root)
	scope.Set("$parent", parent)

	var element goja.Value = goja.Null()
	if el := node.AsElement(); el != nil {
		element = a.binder.BindElement(el)
	}

	result, err := a.rt.call(fn, goja.Undefined(), scope, vm.ToValue(data), element)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s=%q: %w", a.attribute, src, err)
	}
	return a.rt.resultSpec(result)
}

func (a *AttributeResolver) source(node *dom.Node) (string, bool) {
	el := node.AsElement()
	if el == nil {
		return "", false
	}
	src, ok := el.LookupAttribute(a.attribute)
	if !ok || strings.TrimSpace(src) == "" {
		return "", false
	}
	return src, true
}

// compile turns a binding attribute into a function of the context scope.
// Compiled functions are cached per attribute text.
func (a *AttributeResolver) compile(src string) (fn goja.Callable, err error) {
	if fn, ok := a.compiled[src]; ok {
		return fn, nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parsing %s=%q: %v", a.attribute, src, p)
		}
	}()

	code := "(function ($context, $data, $element) {" +
		" with ($context) { with ($data || {}) { return {" + src + "\n}; } } })"
	value, err := a.rt.vm.RunScript(a.attribute, code)
	if err != nil {
		return nil, fmt.Errorf("parsing %s=%q: %w", a.attribute, src, err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("parsing %s=%q: not a function", a.attribute, src)
	}
	a.compiled[src] = fn
	return fn, nil
}
