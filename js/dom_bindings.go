package js

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/elementbind/dom"
)

// DOMBinder exposes document nodes to JavaScript. The same Go node always
// maps to the same JavaScript object, so scripts can compare nodes by identity.
type DOMBinder struct {
	runtime  *Runtime
	nodeMap  map[*dom.Node]*goja.Object
	document *dom.Document
}

// NewDOMBinder creates a new DOM binder for the given runtime.
func NewDOMBinder(runtime *Runtime) *DOMBinder {
	return &DOMBinder{
		runtime: runtime,
		nodeMap: make(map[*dom.Node]*goja.Object),
	}
}

// Runtime returns the runtime the binder installs objects into.
func (b *DOMBinder) Runtime() *Runtime {
	return b.runtime
}

// Document returns the currently bound document.
func (b *DOMBinder) Document() *dom.Document {
	return b.document
}

// BindDocument creates the JavaScript document object and installs it as
// the global "document".
func (b *DOMBinder) BindDocument(doc *dom.Document) *goja.Object {
	vm := b.runtime.vm
	b.document = doc

	jsDoc := vm.NewObject()
	b.nodeMap[doc.AsNode()] = jsDoc
	jsDoc.Set("_goNode", doc.AsNode())
	jsDoc.Set("nodeType", int(dom.DocumentNode))
	jsDoc.Set("nodeName", "#document")

	jsDoc.DefineAccessorProperty("documentElement", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.elementValue(doc.DocumentElement())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsDoc.DefineAccessorProperty("body", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.elementValue(doc.Body())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		return b.elementValue(doc.GetElementById(call.Arguments[0].String()))
	})

	jsDoc.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.NewArray()
		}
		return b.elementArray(doc.GetElementsByClassName(call.Arguments[0].String()))
	})

	jsDoc.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.NewArray()
		}
		return b.elementArray(doc.GetElementsByTagName(call.Arguments[0].String()))
	})

	jsDoc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("createElement requires a tag name"))
		}
		return b.BindElement(doc.CreateElement(call.Arguments[0].String()))
	})

	jsDoc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		data := ""
		if len(call.Arguments) > 0 {
			data = call.Arguments[0].String()
		}
		return b.BindNode(doc.CreateTextNode(data))
	})

	vm.Set("document", jsDoc)
	return jsDoc
}

// BindNode returns the JavaScript object for any node.
func (b *DOMBinder) BindNode(node *dom.Node) *goja.Object {
	if node == nil {
		return nil
	}
	if el := node.AsElement(); el != nil {
		return b.BindElement(el)
	}
	if jsObj, ok := b.nodeMap[node]; ok {
		return jsObj
	}

	vm := b.runtime.vm
	jsNode := vm.NewObject()
	jsNode.Set("_goNode", node)
	jsNode.Set("nodeType", int(node.NodeType()))
	jsNode.Set("nodeName", node.NodeName())
	b.bindTreeAccessors(jsNode, node)
	b.nodeMap[node] = jsNode
	return jsNode
}

// BindElement returns the JavaScript object for an element.
func (b *DOMBinder) BindElement(el *dom.Element) *goja.Object {
	if el == nil {
		return nil
	}
	node := el.AsNode()
	if jsObj, ok := b.nodeMap[node]; ok {
		return jsObj
	}

	vm := b.runtime.vm
	jsEl := vm.NewObject()
	jsEl.Set("_goNode", node)
	jsEl.Set("nodeType", int(dom.ElementNode))
	jsEl.Set("nodeName", el.TagName())
	jsEl.Set("tagName", el.TagName())
	jsEl.Set("localName", el.LocalName())

	jsEl.DefineAccessorProperty("id", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(el.Id())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			el.SetId(call.Arguments[0].String())
		}
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsEl.DefineAccessorProperty("className", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(el.ClassName())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			el.SetClassName(call.Arguments[0].String())
		}
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsEl.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		value, ok := el.LookupAttribute(call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(value)
	})

	jsEl.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("setAttribute requires 2 arguments"))
		}
		el.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
		return goja.Undefined()
	})

	jsEl.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.NewArray()
		}
		return b.elementArray(el.GetElementsByClassName(call.Arguments[0].String()))
	})

	jsEl.Set("insertAdjacentHTML", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("insertAdjacentHTML requires 2 arguments"))
		}
		if err := b.insertAdjacentHTML(el, call.Arguments[0].String(), call.Arguments[1].String()); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	jsEl.Set("remove", func(call goja.FunctionCall) goja.Value {
		el.Remove()
		return goja.Undefined()
	})

	b.bindTreeAccessors(jsEl, node)
	b.nodeMap[node] = jsEl
	return jsEl
}

// bindTreeAccessors adds the tree navigation and mutation members shared by all nodes.
func (b *DOMBinder) bindTreeAccessors(obj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm

	obj.DefineAccessorProperty("parentNode", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.nodeValue(node.ParentNode())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("isConnected", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(node.IsConnected())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("textContent", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(node.TextContent())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0)
		if child == nil {
			panic(vm.NewTypeError("appendChild requires a node"))
		}
		if _, err := node.AppendChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Arguments[0]
	})

	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0)
		if _, err := node.RemoveChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Arguments[0]
	})
}

// insertAdjacentHTML parses markup and inserts the resulting nodes relative
// to el at one of beforebegin, afterbegin, beforeend or afterend.
func (b *DOMBinder) insertAdjacentHTML(el *dom.Element, position, markup string) error {
	node := el.AsNode()
	doc := node.OwnerDocument()
	if doc == nil {
		doc = b.document
	}

	var parent, ref *dom.Node
	switch strings.ToLower(position) {
	case "beforebegin":
		parent, ref = node.ParentNode(), node
	case "afterbegin":
		parent, ref = node, node.FirstChild()
	case "beforeend":
		parent = node
	case "afterend":
		parent, ref = node.ParentNode(), node.NextSibling()
	default:
		return &dom.DOMError{Name: "SyntaxError", Message: "invalid position " + position}
	}
	if parent == nil {
		return &dom.DOMError{Name: "NoModificationAllowedError", Message: "element has no parent"}
	}

	nodes, err := dom.ParseHTMLFragment(doc, markup)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if _, err := parent.InsertBefore(n, ref); err != nil {
			return err
		}
	}
	return nil
}

// GoNode returns the Go node behind a JavaScript value, or nil if the value
// is not a bound node.
func (b *DOMBinder) GoNode(v goja.Value) *dom.Node {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	goNode := obj.Get("_goNode")
	if goNode == nil || goja.IsUndefined(goNode) {
		return nil
	}
	node, _ := goNode.Export().(*dom.Node)
	return node
}

func (b *DOMBinder) nodeArg(call goja.FunctionCall, i int) *dom.Node {
	if len(call.Arguments) <= i {
		return nil
	}
	return b.GoNode(call.Arguments[i])
}

func (b *DOMBinder) nodeValue(node *dom.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return b.BindNode(node)
}

func (b *DOMBinder) elementValue(el *dom.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	return b.BindElement(el)
}

// elementArray snapshots a collection into a JavaScript array.
func (b *DOMBinder) elementArray(collection *dom.HTMLCollection) goja.Value {
	elements := collection.ToSlice()
	values := make([]any, len(elements))
	for i, el := range elements {
		values[i] = b.BindElement(el)
	}
	return b.runtime.vm.NewArray(values...)
}
