package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chrisuehlinger/elementbind/binding"
	"github.com/chrisuehlinger/elementbind/dom"
)

// ErrNoProvider is returned by ApplyBindings when no resolver is active.
var ErrNoProvider = errors.New("no binding provider installed")

// Applied is a node together with the bindings resolved for it.
type Applied struct {
	Node     *dom.Node
	Bindings *binding.Spec
}

// Describe returns a CSS-like descriptor of the node, such as "div#main.card".
func (a Applied) Describe() string {
	return Describe(a.Node)
}

// Describe returns a CSS-like descriptor for elements and the node name otherwise.
func Describe(n *dom.Node) string {
	if n == nil {
		return ""
	}
	if el := n.AsElement(); el != nil {
		return el.Descriptor()
	}
	return n.NodeName()
}

// Option configures ApplyBindings.
type Option func(*applyOptions)

type applyOptions struct {
	logger   *slog.Logger
	resolver binding.Resolver
}

// WithLogger sets the logger for per-node failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *applyOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolver uses r instead of the active provider.
func WithResolver(r binding.Resolver) Option {
	return func(o *applyOptions) {
		o.resolver = r
	}
}

// ApplyBindings visits root and its descendants in document order and asks
// the resolver for each node's bindings. Nodes without bindings are
// skipped. A node whose resolution fails or panics is logged and left out;
// the walk continues and the failures are returned joined together.
func ApplyBindings(root *dom.Node, ctx *binding.Context, opts ...Option) ([]Applied, error) {
	o := applyOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = Provider()
	}
	if o.resolver == nil {
		return nil, ErrNoProvider
	}
	if root == nil {
		return nil, binding.ErrNilNode
	}

	// Resolution may run scripts that change the tree; walk a snapshot.
	var nodes []*dom.Node
	root.Walk(func(n *dom.Node) bool {
		nodes = append(nodes, n)
		return true
	})

	var (
		applied []Applied
		errs    []error
	)
	for _, n := range nodes {
		spec, err := resolveNode(o.resolver, n, ctx)
		if err != nil {
			o.logger.Warn("resolving bindings failed", "node", Describe(n), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", Describe(n), err))
			continue
		}
		if spec == nil {
			continue
		}
		applied = append(applied, Applied{Node: n, Bindings: spec})
	}
	o.logger.Debug("applied bindings", "nodes", len(nodes), "bound", len(applied), "failed", len(errs))
	return applied, errors.Join(errs...)
}

func resolveNode(r binding.Resolver, n *dom.Node, ctx *binding.Context) (spec *binding.Spec, err error) {
	defer func() {
		if p := recover(); p != nil {
			spec = nil
			err = fmt.Errorf("resolver panic: %v", p)
		}
	}()
	if !r.CanResolve(n) {
		return nil, nil
	}
	return r.Resolve(n, ctx)
}
