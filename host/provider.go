// Package host connects binding resolvers to the document traversal that
// applies them. It owns the process-wide active resolver slot, installs
// registries into it, and walks documents asking the active resolver for
// each node's bindings.
package host

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chrisuehlinger/elementbind/binding"
)

var (
	providerMu sync.RWMutex
	provider   binding.Resolver
)

// Provider returns the active resolver, or nil if none is installed.
func Provider() binding.Resolver {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// SetProvider makes r the active resolver and returns the one it replaced.
func SetProvider(r binding.Resolver) binding.Resolver {
	providerMu.Lock()
	defer providerMu.Unlock()
	previous := provider
	provider = r
	return previous
}

// Order places a registry relative to the provider it wraps.
type Order int

const (
	// RegistryLast consults the previous provider first; the registry only
	// answers for nodes the previous provider does not claim.
	RegistryLast Order = iota
	// RegistryFirst lets registry bindings win over the previous provider.
	RegistryFirst
)

func (o Order) String() string {
	switch o {
	case RegistryLast:
		return "registry-last"
	case RegistryFirst:
		return "registry-first"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder parses "registry-last" or "registry-first". The empty string
// is RegistryLast.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "registry-last", "last":
		return RegistryLast, nil
	case "registry-first", "first":
		return RegistryFirst, nil
	default:
		return RegistryLast, fmt.Errorf("unknown resolver order %q", s)
	}
}

// Install wraps the active provider and reg in a Composite ordered by
// order, and makes the composite the active provider. The returned restore
// function puts the previous provider back if the composite is still
// active; a provider installed after it is left in place.
func Install(reg binding.Resolver, order Order) (c *binding.Composite, restore func()) {
	providerMu.Lock()
	defer providerMu.Unlock()

	previous := provider
	switch order {
	case RegistryFirst:
		c = binding.NewComposite(reg, previous)
	default:
		c = binding.NewComposite(previous, reg)
	}
	provider = c

	var once sync.Once
	restore = func() {
		once.Do(func() {
			providerMu.Lock()
			defer providerMu.Unlock()
			if provider == binding.Resolver(c) {
				provider = previous
			}
		})
	}
	return c, restore
}
