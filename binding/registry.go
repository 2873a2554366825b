package binding

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"weak"

	"github.com/chrisuehlinger/elementbind/dom"
)

// Registry stores binding specifications out of band, keyed by node
// identity. It implements Resolver.
//
// Keys are weak: the registry never keeps a node alive, and an entry is
// dropped once its node is garbage collected. Entries are also released
// when their node is removed from its document, or explicitly with Clear.
type Registry struct {
	doc          *dom.Document
	logger       *slog.Logger
	watchRemoval bool

	// mu guards entries and watchers. Documents are single-threaded, but
	// garbage-collection cleanups run on their own goroutine.
	mu       sync.Mutex
	entries  map[weak.Pointer[dom.Node]]*entry
	watchers map[*dom.Document]*removalWatcher

	warnNoWatch sync.Once
}

// entry is one node's binding specification plus its one-shot release hook.
type entry struct {
	spec    *Spec
	cleanup runtime.Cleanup
	once    sync.Once
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for fail-open diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutRemovalWatch disables removal notifications. Entries then live
// until Clear is called or their node is garbage collected.
func WithoutRemovalWatch() Option {
	return func(r *Registry) {
		r.watchRemoval = false
	}
}

// NewRegistry creates a registry whose id and default class lookups search doc.
func NewRegistry(doc *dom.Document, opts ...Option) *Registry {
	r := &Registry{
		doc:          doc,
		logger:       slog.Default(),
		watchRemoval: true,
		entries:      make(map[weak.Pointer[dom.Node]]*entry),
		watchers:     make(map[*dom.Document]*removalWatcher),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns the document searched by id and default class lookups.
func (r *Registry) Document() *dom.Document {
	return r.doc
}

// HasBinding reports whether node currently has a stored specification.
func (r *Registry) HasBinding(node *dom.Node) bool {
	if node == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[weak.Make(node)]
	return ok
}

// CanResolve implements Resolver.
func (r *Registry) CanResolve(node *dom.Node) bool {
	return r.HasBinding(node)
}

// Binding returns a copy of the stored, unevaluated specification for node.
func (r *Registry) Binding(node *dom.Node) (*Spec, bool) {
	if node == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[weak.Make(node)]
	if !ok {
		return nil, false
	}
	return e.spec.Clone(), true
}

// Resolve evaluates the stored specification for node against ctx. Literal
// entries are copied; Accessor entries are invoked with the context's
// current data and their results merged in at that point, later keys
// winning. The stored specification is never modified. Resolve returns nil
// for nodes without bindings.
func (r *Registry) Resolve(node *dom.Node, ctx *Context) (*Spec, error) {
	stored, ok := r.Binding(node)
	if !ok {
		return nil, nil
	}

	result := NewSpec()
	data := ctx.data()
	for _, key := range stored.keys {
		value := stored.values[key]
		accessor, ok := accessorOf(value)
		if !ok {
			result.Set(key, value)
			continue
		}
		produced, err := accessor(data)
		if err != nil {
			return nil, fmt.Errorf("evaluating binding %q: %w", key, err)
		}
		result.Merge(produced)
	}
	return result, nil
}

// SetBinding merges spec into the specification stored for node: keys in
// spec overwrite same-named keys, other stored keys are kept. The first
// call for a node registers a one-shot hook that releases the entry when
// the node is removed from its document.
func (r *Registry) SetBinding(node *dom.Node, spec *Spec) error {
	if node == nil {
		return ErrNilNode
	}

	key := weak.Make(node)

	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		merged := e.spec.Clone().Merge(spec)
		e.spec = merged
		r.mu.Unlock()
		return nil
	}

	e = &entry{spec: spec.Clone()}
	e.cleanup = runtime.AddCleanup(node, func(k weak.Pointer[dom.Node]) {
		r.release(k, e)
	}, key)
	r.entries[key] = e
	doc := node.OwnerDocument()
	r.mu.Unlock()

	r.watch(doc)
	return nil
}

// Clear releases the entry for node. It reports whether one existed.
// Clearing an unbound node is a no-op.
func (r *Registry) Clear(node *dom.Node) bool {
	if node == nil {
		return false
	}
	key := weak.Make(node)
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.release(key, e)
}

// release drops e if it is still the entry stored under key. It runs at
// most once per entry, whichever of removal, Clear or collection comes first.
func (r *Registry) release(key weak.Pointer[dom.Node], e *entry) bool {
	released := false
	e.once.Do(func() {
		r.mu.Lock()
		if r.entries[key] == e {
			delete(r.entries, key)
			released = true
		}
		r.mu.Unlock()
		e.cleanup.Stop()
	})
	return released
}

// Len returns the number of nodes with stored bindings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// SetBindingByClassName applies spec to every element carrying className
// under container, or under the registry's document when container is nil.
// Elements added afterwards are not bound. It returns the number of
// elements bound; zero matches is not an error.
func (r *Registry) SetBindingByClassName(className string, spec *Spec, container *dom.Node) int {
	if container == nil {
		if r.doc == nil {
			return 0
		}
		container = r.doc.AsNode()
	}
	elements := dom.NewHTMLCollectionByClassName(container, className).ToSlice()
	for _, el := range elements {
		_ = r.SetBinding(el.AsNode(), spec)
	}
	r.logger.Debug("bound elements by class", "class", className, "count", len(elements))
	return len(elements)
}

// SetBindingById applies spec to the element with the given id in the
// registry's document. When no such element exists nothing is bound and
// ErrElementNotFound is returned.
func (r *Registry) SetBindingById(id string, spec *Spec) error {
	var el *dom.Element
	if r.doc != nil {
		el = r.doc.GetElementById(id)
	}
	if el == nil {
		err := fmt.Errorf("%w: #%s", ErrElementNotFound, id)
		r.logger.Debug("binding skipped", "id", id, "error", err)
		return err
	}
	return r.SetBinding(el.AsNode(), spec)
}

// ApplySelector binds spec by selector: ".name" binds every element with
// class name under container, "#id" binds the element with that id in the
// registry's document (container is ignored, ids are document-unique).
// Other selectors bind nothing and return ErrInvalidSelector.
func (r *Registry) ApplySelector(selector string, spec *Spec, container *dom.Node) error {
	switch {
	case strings.HasPrefix(selector, "."):
		r.SetBindingByClassName(selector[1:], spec, container)
		return nil
	case strings.HasPrefix(selector, "#"):
		return r.SetBindingById(selector[1:], spec)
	default:
		err := fmt.Errorf("%w: %q", ErrInvalidSelector, selector)
		r.logger.Debug("binding skipped", "selector", selector, "error", err)
		return err
	}
}

// SetBindings applies a selector map in sorted selector order. Failed
// lookups and invalid selectors are skipped; their errors are joined in
// the result for callers that want them.
func (r *Registry) SetBindings(selectors map[string]*Spec, container *dom.Node) error {
	keys := make([]string, 0, len(selectors))
	for k := range selectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := r.ApplySelector(k, selectors[k], container); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops listening for removals. Stored entries are kept.
func (r *Registry) Close() {
	r.mu.Lock()
	watchers := r.watchers
	r.watchers = make(map[*dom.Document]*removalWatcher)
	r.mu.Unlock()

	for doc, w := range watchers {
		dom.UnregisterMutationCallback(doc, w)
	}
}
