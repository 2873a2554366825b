package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document represents the entire HTML document.
type Document Node

// NewDocument creates a new empty HTML Document.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// NodeType returns DocumentNode.
func (d *Document) NodeType() NodeType {
	return DocumentNode
}

// NodeName returns "#document".
func (d *Document) NodeName() string {
	return "#document"
}

// DocumentElement returns the root element of the document.
func (d *Document) DocumentElement() *Element {
	for c := d.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// Body returns the body element of the document, or nil.
func (d *Document) Body() *Element {
	return d.childOfRoot("BODY")
}

// Head returns the head element of the document, or nil.
func (d *Document) Head() *Element {
	return d.childOfRoot("HEAD")
}

func (d *Document) childOfRoot(tagName string) *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for c := root.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode && c.nodeName == tagName {
			return (*Element)(c)
		}
	}
	return nil
}

// CreateElement creates a new, detached element with the given tag name.
func (d *Document) CreateElement(tagName string) *Element {
	node := newNode(ElementNode, strings.ToUpper(tagName), d)
	node.elementData = &elementData{
		localName: strings.ToLower(tagName),
	}
	return (*Element)(node)
}

// CreateTextNode creates a new, detached Text node.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.data = data
	return node
}

// CreateComment creates a new, detached Comment node.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.data = data
	return node
}

// GetElementById returns the first element in tree order with the given id.
// Per DOM spec, returns nil if id is the empty string.
func (d *Document) GetElementById(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.AsNode().Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.nodeType == ElementNode && (*Element)(n).Id() == id {
			found = (*Element)(n)
			return false
		}
		return true
	})
	return found
}

// GetElementsByTagName returns a live collection of elements with the given tag name.
func (d *Document) GetElementsByTagName(tagName string) *HTMLCollection {
	return NewHTMLCollectionByTagName(d.AsNode(), tagName)
}

// GetElementsByClassName returns a live collection of elements with the given class name(s).
func (d *Document) GetElementsByClassName(classNames string) *HTMLCollection {
	return NewHTMLCollectionByClassName(d.AsNode(), classNames)
}

// ParseHTML parses an HTML string and returns a Document.
func ParseHTML(htmlContent string) (*Document, error) {
	return ParseHTMLReader(strings.NewReader(htmlContent))
}

// ParseHTMLReader parses HTML from r and returns a Document.
func ParseHTMLReader(r io.Reader) (*Document, error) {
	netDoc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	convertHTMLTree(netDoc, doc.AsNode(), doc)
	return doc, nil
}

// ParseHTMLFragment parses markup in the context of a body element and
// returns the resulting detached nodes, owned by doc.
func ParseHTMLFragment(doc *Document, fragment string) ([]*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	netNodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, err
	}
	holder := doc.CreateElement("template").AsNode()
	for _, nn := range netNodes {
		wrapper := &html.Node{Type: html.DocumentNode}
		wrapper.AppendChild(nn)
		convertHTMLTree(wrapper, holder, doc)
	}
	nodes := holder.ChildNodes()
	for _, n := range nodes {
		holder.unlink(n)
	}
	return nodes, nil
}

// convertHTMLTree converts an html.Node tree to our DOM tree.
// Nodes are linked without mutation notifications; parsing is not a mutation.
func convertHTMLTree(src *html.Node, parent *Node, doc *Document) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		var node *Node

		switch c.Type {
		case html.TextNode:
			node = doc.CreateTextNode(c.Data)

		case html.ElementNode:
			el := doc.CreateElement(c.Data)
			for _, attr := range c.Attr {
				el.elementData.attributes = append(el.elementData.attributes,
					Attribute{Name: strings.ToLower(attr.Key), Value: attr.Val})
			}
			node = el.AsNode()

		case html.CommentNode:
			node = doc.CreateComment(c.Data)

		case html.DoctypeNode:
			node = newNode(DocumentTypeNode, c.Data, doc)

		case html.DocumentNode:
			convertHTMLTree(c, parent, doc)
			continue

		default:
			continue
		}

		parent.link(node, nil)
		if c.Type == html.ElementNode {
			convertHTMLTree(c, node, doc)
		}
	}
}
