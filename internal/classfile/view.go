package classfile

import (
	"fmt"

	"shrinker/internal/symbol"
)

// View is the snapshot of the symbol graph visible to one pass
// (spec.md §3's ApplicationView). The driver rebuilds a fresh View
// after every lens-producing pass; within a pass it is shared
// read-only across every worker.
type View struct {
	Pool      *symbol.Pool
	Hierarchy *Hierarchy
	Root      *symbol.Type // java.lang.Object, or the target runtime's equivalent

	program map[*symbol.Type]*ClassDefinition
	library map[*symbol.Type]*ClassDefinition
}

// NewView builds a view from disjoint program and library class
// sets. It panics if the two sets overlap, since "program ∩ library =
// ∅" is a data-model invariant the reader (an external collaborator)
// is responsible for upholding before the view is ever constructed.
func NewView(pool *symbol.Pool, root *symbol.Type, program, library []*ClassDefinition) *View {
	v := &View{
		Pool:    pool,
		Root:    root,
		program: make(map[*symbol.Type]*ClassDefinition, len(program)),
		library: make(map[*symbol.Type]*ClassDefinition, len(library)),
	}
	for _, c := range program {
		v.program[c.Type] = c
	}
	for _, c := range library {
		if _, ok := v.program[c.Type]; ok {
			panic(fmt.Sprintf("classfile: %s is both a program and a library class", c.Type))
		}
		v.library[c.Type] = c
	}
	all := make([]*ClassDefinition, 0, len(program)+len(library))
	all = append(all, program...)
	all = append(all, library...)
	v.Hierarchy = NewHierarchy(all)
	return v
}

// ProgramClass resolves t to a mutable program class, if t names one.
func (v *View) ProgramClass(t *symbol.Type) (*ClassDefinition, bool) {
	c, ok := v.program[t]
	return c, ok
}

// LibraryClass resolves t to an immutable library class, if t names
// one.
func (v *View) LibraryClass(t *symbol.Type) (*ClassDefinition, bool) {
	c, ok := v.library[t]
	return c, ok
}

// IsProgram reports whether t names a program (mutable) class.
func (v *View) IsProgram(t *symbol.Type) bool {
	_, ok := v.program[t]
	return ok
}

// ProgramClasses returns every program class, in no particular order.
func (v *View) ProgramClasses() []*ClassDefinition {
	out := make([]*ClassDefinition, 0, len(v.program))
	for _, c := range v.program {
		out = append(out, c)
	}
	return out
}

// RemoveProgramClass deletes t from the program set outright — used
// when a class has no remaining members and is not pinned (spec.md
// §8).
func (v *View) RemoveProgramClass(t *symbol.Type) {
	delete(v.program, t)
}

// AddProgramClass inserts or replaces a program class, used by the
// horizontal merger to install a fused target and by the inliner's
// sibling passes that synthesize new classes (companions, lambdas).
func (v *View) AddProgramClass(c *ClassDefinition) {
	v.program[c.Type] = c
	v.Hierarchy.defs[c.Type] = c
}
