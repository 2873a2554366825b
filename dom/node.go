package dom

import (
	"strings"
)

// Node is a node in the document tree. Element and Document share its
// layout so a *Node converts to either without copying; node identity is
// pointer identity.
type Node struct {
	nodeType   NodeType
	nodeName   string
	ownerDoc   *Document
	parentNode *Node

	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// data holds the character data of Text and Comment nodes.
	data string

	elementData *elementData
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName  string
	attributes []Attribute
}

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase; text nodes report
// "#text", comments "#comment" and documents "#document".
func (n *Node) NodeName() string {
	return n.nodeName
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildNodes returns a snapshot of the node's children.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// IsElement reports whether the node is an Element.
func (n *Node) IsElement() bool {
	return n.nodeType == ElementNode
}

// AsElement returns the node as an Element, or nil if it is not one.
func (n *Node) AsElement() *Element {
	if n == nil || n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// GetRootNode returns the topmost ancestor of the node.
func (n *Node) GetRootNode() *Node {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root
}

// IsConnected returns true if the node is connected to a document.
// A node is connected if its root is a document.
func (n *Node) IsConnected() bool {
	root := n.GetRootNode()
	return root != nil && root.nodeType == DocumentNode
}

// Contains returns true if other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for current := other; current != nil; current = current.parentNode {
		if current == n {
			return true
		}
	}
	return false
}

// Walk visits the node and its descendants in tree order. Returning false
// from fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.firstChild; c != nil; {
		// fn may detach c; capture the sibling first.
		next := c.nextSibling
		c.Walk(fn)
		c = next
	}
}

// TextContent returns the text content of the node and its descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return ""
	case TextNode, CommentNode:
		return n.data
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.data)
		case ElementNode:
			child.collectTextContent(sb)
		}
	}
}

// AppendChild adds a node to the end of the list of children of this node.
func (n *Node) AppendChild(child *Node) (*Node, error) {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) InsertBefore(newChild, refChild *Node) (*Node, error) {
	if err := n.validatePreInsertion(newChild, refChild); err != nil {
		return nil, err
	}
	if newChild == refChild {
		return newChild, nil
	}

	// Moving a node is a removal followed by an insertion.
	if newChild.parentNode != nil {
		if _, err := newChild.parentNode.RemoveChild(newChild); err != nil {
			return nil, err
		}
	}

	prevSib := n.lastChild
	if refChild != nil {
		prevSib = refChild.prevSibling
	}

	n.link(newChild, refChild)
	notifyChildListMutation(n, []*Node{newChild}, nil, prevSib, refChild)
	return newChild, nil
}

// validatePreInsertion implements the pre-insertion validation steps from the DOM spec.
// https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) validatePreInsertion(node, child *Node) error {
	if node == nil {
		return ErrHierarchyRequest("The node to be inserted is null.")
	}
	if !n.canHaveChildren() {
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if node.Contains(n) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if child != nil && child.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	switch node.nodeType {
	case DocumentNode:
		return ErrHierarchyRequest("Documents cannot be inserted.")
	case TextNode:
		if n.nodeType == DocumentNode {
			return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
		}
	case DocumentTypeNode:
		if n.nodeType != DocumentNode {
			return ErrHierarchyRequest("DocumentType nodes can only be children of Document.")
		}
	case ElementNode:
		if n.nodeType == DocumentNode && n.hasElementChild() {
			return ErrHierarchyRequest("Document already has a document element.")
		}
	}
	return nil
}

func (n *Node) canHaveChildren() bool {
	return n.nodeType == DocumentNode || n.nodeType == ElementNode
}

func (n *Node) hasElementChild() bool {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return true
		}
	}
	return false
}

// link splices newChild into the child list without validation or notification.
func (n *Node) link(newChild, refChild *Node) {
	newChild.parentNode = n

	doc := n.ownerDoc
	if n.nodeType == DocumentNode {
		doc = (*Document)(n)
	}
	if doc != nil && newChild.ownerDoc != doc {
		adoptNode(newChild, doc)
	}

	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
		return
	}

	newChild.prevSibling = refChild.prevSibling
	newChild.nextSibling = refChild
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = newChild
	} else {
		n.firstChild = newChild
	}
	refChild.prevSibling = newChild
}

// adoptNode sets the owner document of node and all of its descendants.
func adoptNode(node *Node, doc *Document) {
	node.Walk(func(d *Node) bool {
		d.ownerDoc = doc
		return true
	})
}

// RemoveChild removes a child node from this node.
// Returns an error if the child is not a child of this node.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil {
		return nil, ErrNotFound("The node to be removed is null.")
	}
	if child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}

	prevSib := child.prevSibling
	nextSib := child.nextSibling
	n.unlink(child)

	notifyChildListMutation(n, nil, []*Node{child}, prevSib, nextSib)
	return child, nil
}

// unlink detaches child without validation or notification.
func (n *Node) unlink(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}
