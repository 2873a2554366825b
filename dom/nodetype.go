// Package dom provides the document model that bindings are attached to:
// a node tree with element lookups and mutation notifications, modeled on
// the DOM Living Standard (https://dom.spec.whatwg.org/).
package dom

// NodeType represents the type of a Node as defined in the DOM specification.
type NodeType uint16

const (
	// ElementNode represents an Element node.
	ElementNode NodeType = 1
	// TextNode represents a Text node.
	TextNode NodeType = 3
	// CommentNode represents a Comment node.
	CommentNode NodeType = 8
	// DocumentNode represents a Document node.
	DocumentNode NodeType = 9
	// DocumentTypeNode represents a DocumentType node.
	DocumentTypeNode NodeType = 10
)

// String returns the string representation of the NodeType.
func (nt NodeType) String() string {
	switch nt {
	case ElementNode:
		return "ELEMENT_NODE"
	case TextNode:
		return "TEXT_NODE"
	case CommentNode:
		return "COMMENT_NODE"
	case DocumentNode:
		return "DOCUMENT_NODE"
	case DocumentTypeNode:
		return "DOCUMENT_TYPE_NODE"
	default:
		return "UNKNOWN_NODE"
	}
}
