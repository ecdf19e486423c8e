// Package symbol implements the content-addressed pool of interned
// type descriptors that backs the whole-program symbol graph. Two
// Types are the same type if and only if they are the same pointer;
// no descriptor string is ever compared for identity outside this
// package.
package symbol

import "sync"

// shardCount controls how many independent lock buckets the pool
// uses. Every read takes its shard's read lock, so readers never
// block one another; writes take the shard's write lock and contend
// only with access to the same shard.
const shardCount = 64

// Type is an interned reference-type or primitive-type descriptor,
// e.g. "Lcom/example/Foo;", "[I", "I", "V". Types carry no mutable
// state; the mapping from a Type to its ClassDefinition lives on the
// application view, not here.
type Type struct {
	descriptor string
}

// String returns the JVM-style descriptor this Type was interned
// from.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.descriptor
}

// IsArray reports whether the descriptor names an array type.
func (t *Type) IsArray() bool {
	return len(t.descriptor) > 0 && t.descriptor[0] == '['
}

// IsPrimitive reports whether the descriptor names a JVM primitive
// (including void).
func (t *Type) IsPrimitive() bool {
	switch t.descriptor {
	case "V", "Z", "B", "C", "S", "I", "J", "F", "D":
		return true
	default:
		return false
	}
}

type shard struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// Pool is the shared, process-lifetime interner. It is safe for
// concurrent use by every pass running over the application view;
// the driver constructs exactly one Pool and threads it explicitly
// into every component that needs to mint or resolve a Type, rather
// than reaching for ambient/process-global state.
type Pool struct {
	shards [shardCount]*shard
}

// NewPool creates an empty, ready-to-use interner.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.shards {
		p.shards[i] = &shard{types: make(map[string]*Type, 256)}
	}
	return p
}

func (p *Pool) shardFor(descriptor string) *shard {
	var h uint32 = 2166136261
	for i := 0; i < len(descriptor); i++ {
		h ^= uint32(descriptor[i])
		h *= 16777619
	}
	return p.shards[h%shardCount]
}

// Intern returns the canonical *Type for descriptor, minting one if
// this is the first time the pool has seen it. Once a shard is warm,
// the common case (the type already exists) is satisfied by a
// read-lock only.
func (p *Pool) Intern(descriptor string) *Type {
	s := p.shardFor(descriptor)

	s.mu.RLock()
	if t, ok := s.types[descriptor]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.types[descriptor]; ok {
		return t
	}
	t := &Type{descriptor: descriptor}
	s.types[descriptor] = t
	return t
}

// Lookup returns the Type for descriptor if it has already been
// interned, without minting a new one.
func (p *Pool) Lookup(descriptor string) (*Type, bool) {
	s := p.shardFor(descriptor)
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[descriptor]
	return t, ok
}
