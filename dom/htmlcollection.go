package dom

import "strings"

// HTMLCollection represents a live collection of elements. The contents are
// recomputed from the tree on every access.
type HTMLCollection struct {
	root   *Node
	filter func(*Element) bool
}

func newHTMLCollection(root *Node, filter func(*Element) bool) *HTMLCollection {
	return &HTMLCollection{
		root:   root,
		filter: filter,
	}
}

// NewHTMLCollectionByTagName creates an HTMLCollection of elements with the given tag name.
func NewHTMLCollectionByTagName(root *Node, tagName string) *HTMLCollection {
	tagName = strings.ToUpper(tagName)
	return newHTMLCollection(root, func(el *Element) bool {
		return tagName == "*" || el.TagName() == tagName
	})
}

// NewHTMLCollectionByClassName creates an HTMLCollection of elements with the given class name(s).
// An empty class list matches nothing.
func NewHTMLCollectionByClassName(root *Node, classNames string) *HTMLCollection {
	classes := strings.Fields(classNames)
	return newHTMLCollection(root, func(el *Element) bool {
		if len(classes) == 0 {
			return false
		}
		for _, class := range classes {
			if !el.HasClass(class) {
				return false
			}
		}
		return true
	})
}

// collectElements traverses the subtree below root and collects matching elements.
func (hc *HTMLCollection) collectElements() []*Element {
	var elements []*Element
	if hc.root == nil {
		return nil
	}
	for c := hc.root.firstChild; c != nil; c = c.nextSibling {
		c.Walk(func(n *Node) bool {
			if n.nodeType != ElementNode {
				return false
			}
			if el := (*Element)(n); hc.filter(el) {
				elements = append(elements, el)
			}
			return true
		})
	}
	return elements
}

// Length returns the number of elements in the collection.
func (hc *HTMLCollection) Length() int {
	return len(hc.collectElements())
}

// Item returns the element at the given index, or nil if out of bounds.
func (hc *HTMLCollection) Item(index int) *Element {
	elements := hc.collectElements()
	if index < 0 || index >= len(elements) {
		return nil
	}
	return elements[index]
}

// ToSlice returns a snapshot of the collection.
func (hc *HTMLCollection) ToSlice() []*Element {
	return hc.collectElements()
}
