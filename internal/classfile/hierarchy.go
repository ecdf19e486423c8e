package classfile

import "shrinker/internal/symbol"

// Hierarchy resolves a Type to its ClassDefinition and answers
// subtype queries. Classes reference each other via Type handles, not
// pointers (spec.md §9: "this breaks ownership cycles cleanly: the
// table owns definitions; everything else holds handles").
type Hierarchy struct {
	defs map[*symbol.Type]*ClassDefinition
}

// NewHierarchy builds a hierarchy table from every program and
// library class known to the view.
func NewHierarchy(classes []*ClassDefinition) *Hierarchy {
	h := &Hierarchy{defs: make(map[*symbol.Type]*ClassDefinition, len(classes))}
	for _, c := range classes {
		h.defs[c.Type] = c
	}
	return h
}

// Lookup resolves t to its definition, if known.
func (h *Hierarchy) Lookup(t *symbol.Type) (*ClassDefinition, bool) {
	c, ok := h.defs[t]
	return c, ok
}

// All returns every class definition the hierarchy knows about, in no
// particular order; callers that need determinism sort by descriptor.
func (h *Hierarchy) All() []*ClassDefinition {
	out := make([]*ClassDefinition, 0, len(h.defs))
	for _, c := range h.defs {
		out = append(out, c)
	}
	return out
}

// IsSubtype reports whether sub is sub's-or-equal to super by walking
// the superclass chain and implemented interfaces. Unknown/library
// gaps in the chain terminate the walk without erroring, matching the
// "unresolved reference" tolerance of spec.md §7.
func (h *Hierarchy) IsSubtype(sub, super *symbol.Type) bool {
	if sub == super {
		return true
	}
	seen := make(map[*symbol.Type]bool)
	var walk func(*symbol.Type) bool
	walk = func(t *symbol.Type) bool {
		if t == nil || seen[t] {
			return false
		}
		seen[t] = true
		def, ok := h.defs[t]
		if !ok {
			return false
		}
		for _, iface := range def.Interfaces {
			if iface == super || walk(iface) {
				return true
			}
		}
		if def.Super == super {
			return true
		}
		return walk(def.Super)
	}
	return walk(sub)
}

// DirectlyExtendsRoot reports whether c's superclass is the given
// root object type, the structural constraint spec.md §4.4 imposes on
// class-inlining candidates.
func (h *Hierarchy) DirectlyExtendsRoot(c *ClassDefinition, root *symbol.Type) bool {
	return c.Super == root
}
