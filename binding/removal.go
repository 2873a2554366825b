package binding

import (
	"weak"

	"github.com/chrisuehlinger/elementbind/dom"
)

// removalWatcher releases registry entries for nodes that leave a document.
type removalWatcher struct {
	r *Registry
}

// watch makes sure removals from doc are observed.
func (r *Registry) watch(doc *dom.Document) {
	if !r.watchRemoval {
		r.warnNoWatch.Do(func() {
			r.logger.Debug("removal notifications disabled; bindings are kept until cleared or collected")
		})
		return
	}
	if doc == nil {
		return
	}

	r.mu.Lock()
	if _, ok := r.watchers[doc]; ok {
		r.mu.Unlock()
		return
	}
	w := &removalWatcher{r: r}
	r.watchers[doc] = w
	r.mu.Unlock()

	dom.RegisterMutationCallback(doc, w)
}

// OnChildListMutation implements dom.MutationCallback. Removing a node from
// a connected parent detaches its whole subtree from the document, so every
// bound node in that subtree is released. Removals inside detached trees are
// not removals from the document and are ignored.
func (w *removalWatcher) OnChildListMutation(
	target *dom.Node,
	addedNodes []*dom.Node,
	removedNodes []*dom.Node,
	previousSibling *dom.Node,
	nextSibling *dom.Node,
) {
	if len(removedNodes) == 0 || !target.IsConnected() {
		return
	}
	for _, removed := range removedNodes {
		removed.Walk(func(n *dom.Node) bool {
			w.release(n)
			return true
		})
	}
}

// OnAttributeMutation implements dom.MutationCallback.
func (w *removalWatcher) OnAttributeMutation(
	target *dom.Node,
	attributeName string,
	oldValue string,
) {
	// Attribute changes never detach a node.
}

func (w *removalWatcher) release(n *dom.Node) {
	key := weak.Make(n)
	w.r.mu.Lock()
	e, ok := w.r.entries[key]
	w.r.mu.Unlock()
	if ok {
		w.r.release(key, e)
	}
}
