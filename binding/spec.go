package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Accessor produces bindings from the data in scope for a node. It stands in
// for a function-valued binding entry; data is the context's current data.
type Accessor func(data any) (*Spec, error)

// Spec is a binding specification: binding keys mapped to literal values or
// Accessors. Keys keep their insertion order; overwriting a key keeps its
// original position. The zero value is empty and ready to use.
type Spec struct {
	keys   []string
	values map[string]any
}

// NewSpec returns an empty specification.
func NewSpec() *Spec {
	return &Spec{}
}

// SpecFromMap builds a specification from m with keys in sorted order.
func SpecFromMap(m map[string]any) *Spec {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := NewSpec()
	for _, k := range keys {
		s.Set(k, m[k])
	}
	return s
}

// Set stores value under key and returns s for chaining.
func (s *Spec) Set(key string, value any) *Spec {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// Get returns the value stored under key.
func (s *Spec) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the binding keys in order.
func (s *Spec) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Len returns the number of binding keys.
func (s *Spec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns a shallow copy of s. Values are shared.
func (s *Spec) Clone() *Spec {
	c := NewSpec()
	if s == nil {
		return c
	}
	for _, k := range s.keys {
		c.Set(k, s.values[k])
	}
	return c
}

// Merge copies every key of other into s, overwriting keys both share.
// It returns s.
func (s *Spec) Merge(other *Spec) *Spec {
	if other == nil {
		return s
	}
	for _, k := range other.keys {
		s.Set(k, other.values[k])
	}
	return s
}

// Map returns the bindings as a plain map.
func (s *Spec) Map() map[string]any {
	m := make(map[string]any, s.Len())
	if s == nil {
		return m
	}
	for _, k := range s.keys {
		m[k] = s.values[k]
	}
	return m
}

// Equal reports whether s and other hold the same keys in the same order
// with deeply equal values. Accessors never compare equal.
func (s *Spec) Equal(other *Spec) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, k := range s.Keys() {
		if other.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(s.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// String renders the specification in key order, e.g. "{text: Ada, visible: true}".
func (s *Spec) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteString(", ")
		}
		v := s.values[k]
		if isAccessor(v) {
			v = "<accessor>"
		}
		fmt.Fprintf(&buf, "%s: %v", k, v)
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalYAML encodes the specification as a mapping in key order.
func (s *Spec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range s.Keys() {
		var value yaml.Node
		v := s.values[k]
		if isAccessor(v) {
			v = "<accessor>"
		}
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding binding %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value)
	}
	return node, nil
}

// MarshalJSON encodes the specification as an object in key order.
func (s *Spec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		v := s.values[k]
		if isAccessor(v) {
			v = "<accessor>"
		}
		value, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding binding %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// accessorOf returns the Accessor held by v, if any.
func accessorOf(v any) (Accessor, bool) {
	switch fn := v.(type) {
	case Accessor:
		return fn, fn != nil
	case func(any) (*Spec, error):
		return fn, fn != nil
	default:
		return nil, false
	}
}

func isAccessor(v any) bool {
	_, ok := accessorOf(v)
	return ok
}
