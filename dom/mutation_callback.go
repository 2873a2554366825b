package dom

// MutationCallback is an interface for receiving notifications about DOM mutations.
type MutationCallback interface {
	// OnChildListMutation is called when children are added to or removed from target.
	OnChildListMutation(
		target *Node,
		addedNodes []*Node,
		removedNodes []*Node,
		previousSibling *Node,
		nextSibling *Node,
	)

	// OnAttributeMutation is called when an attribute is changed.
	OnAttributeMutation(
		target *Node,
		attributeName string,
		oldValue string,
	)
}

// mutationCallbacks stores registered mutation callbacks per document.
// Access is unsynchronized: documents are mutated from a single goroutine.
var mutationCallbacks = make(map[*Document][]MutationCallback)

// RegisterMutationCallback registers a callback to receive mutation notifications for a document.
func RegisterMutationCallback(doc *Document, callback MutationCallback) {
	if doc == nil || callback == nil {
		return
	}
	mutationCallbacks[doc] = append(mutationCallbacks[doc], callback)
}

// UnregisterMutationCallback removes a callback from a document.
func UnregisterMutationCallback(doc *Document, callback MutationCallback) {
	if doc == nil {
		return
	}
	callbacks := mutationCallbacks[doc]
	for i, cb := range callbacks {
		if cb == callback {
			mutationCallbacks[doc] = append(callbacks[:i:i], callbacks[i+1:]...)
			if len(mutationCallbacks[doc]) == 0 {
				delete(mutationCallbacks, doc)
			}
			return
		}
	}
}

// ClearMutationCallbacks removes all callbacks for a document.
func ClearMutationCallbacks(doc *Document) {
	delete(mutationCallbacks, doc)
}

// notifyChildListMutation notifies all registered callbacks about a childList mutation.
func notifyChildListMutation(
	target *Node,
	addedNodes []*Node,
	removedNodes []*Node,
	previousSibling *Node,
	nextSibling *Node,
) {
	doc := documentOf(target)
	if doc == nil {
		return
	}
	// Copy so callbacks may unregister themselves while being notified.
	callbacks := append([]MutationCallback(nil), mutationCallbacks[doc]...)
	for _, cb := range callbacks {
		cb.OnChildListMutation(target, addedNodes, removedNodes, previousSibling, nextSibling)
	}
}

// notifyAttributeMutation notifies all registered callbacks about an attribute mutation.
func notifyAttributeMutation(target *Node, attributeName string, oldValue string) {
	doc := documentOf(target)
	if doc == nil {
		return
	}
	callbacks := append([]MutationCallback(nil), mutationCallbacks[doc]...)
	for _, cb := range callbacks {
		cb.OnAttributeMutation(target, attributeName, oldValue)
	}
}

func documentOf(n *Node) *Document {
	if n == nil {
		return nil
	}
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}
