package binding

import "errors"

// Lookup failures are informational: the registry is left unchanged and
// callers that want the fail-open behavior may ignore them.
var (
	// ErrNilNode is returned when a binding is set on a nil node.
	ErrNilNode = errors.New("binding: nil node")
	// ErrElementNotFound is returned when an id lookup matches no element.
	ErrElementNotFound = errors.New("binding: element not found")
	// ErrInvalidSelector is returned for selector keys that start with neither '.' nor '#'.
	ErrInvalidSelector = errors.New("binding: invalid selector")
)
