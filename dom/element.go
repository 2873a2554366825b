package dom

import (
	"strings"
)

// Element represents an element in the DOM tree.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the uppercase tag name of the element.
func (e *Element) TagName() string {
	return e.nodeName
}

// LocalName returns the lowercase local name of the element.
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// Id returns the element's id attribute.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// SetId sets the element's id attribute.
func (e *Element) SetId(id string) {
	e.SetAttribute("id", id)
}

// ClassName returns the element's class attribute.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the element's class attribute.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// ClassList returns the element's class tokens in attribute order, without duplicates.
func (e *Element) ClassList() []string {
	var classes []string
	seen := make(map[string]bool)
	for _, c := range strings.Fields(e.ClassName()) {
		if !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}
	return classes
}

// HasClass reports whether the class attribute contains the given token.
func (e *Element) HasClass(className string) bool {
	for _, c := range strings.Fields(e.ClassName()) {
		if c == className {
			return true
		}
	}
	return false
}

// Attributes returns a copy of the element's attributes in source order.
func (e *Element) Attributes() []Attribute {
	return append([]Attribute(nil), e.elementData.attributes...)
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	value, _ := e.LookupAttribute(name)
	return value
}

// LookupAttribute returns the value of the named attribute and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, attr := range e.elementData.attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

// SetAttribute sets an attribute value, creating it if it doesn't exist.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	attrs := e.elementData.attributes
	for i := range attrs {
		if attrs[i].Name == name {
			oldValue := attrs[i].Value
			attrs[i].Value = value
			notifyAttributeMutation(e.AsNode(), name, oldValue)
			return
		}
	}
	e.elementData.attributes = append(attrs, Attribute{Name: name, Value: value})
	notifyAttributeMutation(e.AsNode(), name, "")
}

// RemoveAttribute removes the named attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	attrs := e.elementData.attributes
	for i, attr := range attrs {
		if attr.Name == name {
			e.elementData.attributes = append(attrs[:i], attrs[i+1:]...)
			notifyAttributeMutation(e.AsNode(), name, attr.Value)
			return
		}
	}
}

// AppendChild appends a node to the element's children.
func (e *Element) AppendChild(child *Node) (*Node, error) {
	return e.AsNode().AppendChild(child)
}

// Remove detaches the element from its parent, if it has one.
func (e *Element) Remove() {
	n := e.AsNode()
	if n.parentNode != nil {
		_, _ = n.parentNode.RemoveChild(n)
	}
}

// GetElementsByClassName returns a live collection of descendant elements
// carrying all of the given class names.
func (e *Element) GetElementsByClassName(classNames string) *HTMLCollection {
	return NewHTMLCollectionByClassName(e.AsNode(), classNames)
}

// TextContent returns the text content of the element and its descendants.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// Descriptor returns a CSS-like description of the element, e.g. "div#main.card.wide".
func (e *Element) Descriptor() string {
	var sb strings.Builder
	sb.WriteString(e.LocalName())
	if id := e.Id(); id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}
	for _, c := range e.ClassList() {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	return sb.String()
}
