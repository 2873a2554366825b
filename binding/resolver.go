// Package binding resolves which binding specification applies to a DOM
// node. Bindings may live out of band in a Registry keyed by node identity,
// and several resolution strategies can be consulted in priority order
// through a Composite.
package binding

import "github.com/chrisuehlinger/elementbind/dom"

// Resolver answers, for a node, whether it has bindings and what they are.
// Resolve returns a nil Spec when the node is not the resolver's; callers
// treat that as "skip", not as an error.
type Resolver interface {
	CanResolve(node *dom.Node) bool
	Resolve(node *dom.Node, ctx *Context) (*Spec, error)
}
