package binding

import "github.com/chrisuehlinger/elementbind/dom"

// Composite consults an ordered list of resolvers. The first resolver that
// can resolve a node wins outright; later resolvers are never merged in.
type Composite struct {
	resolvers []Resolver
}

// NewComposite composes resolvers in priority order. Nil resolvers are skipped.
func NewComposite(resolvers ...Resolver) *Composite {
	c := &Composite{}
	for _, r := range resolvers {
		if r != nil {
			c.resolvers = append(c.resolvers, r)
		}
	}
	return c
}

// Resolvers returns the composed resolvers in priority order.
func (c *Composite) Resolvers() []Resolver {
	return append([]Resolver(nil), c.resolvers...)
}

// CanResolve reports whether any composed resolver can resolve node.
func (c *Composite) CanResolve(node *dom.Node) bool {
	for _, r := range c.resolvers {
		if r.CanResolve(node) {
			return true
		}
	}
	return false
}

// Resolve delegates to the first resolver that can resolve node and returns
// its result unchanged. It returns nil when no resolver matches.
func (c *Composite) Resolve(node *dom.Node, ctx *Context) (*Spec, error) {
	for _, r := range c.resolvers {
		if r.CanResolve(node) {
			return r.Resolve(node, ctx)
		}
	}
	return nil, nil
}
