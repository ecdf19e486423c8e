package classfile

import (
	"shrinker/internal/ir"
	"shrinker/internal/symbol"
)

// InnerClassEntry mirrors one row of a class's InnerClasses
// attribute: an inner class descriptor plus its enclosing/host
// relationship, kept whole (not modeled further) because the
// horizontal merger's NoInnerClasses policy only needs to know
// whether the list is non-empty.
type InnerClassEntry struct {
	Inner      *symbol.Type
	Outer      *symbol.Type
	Name       string
	AccessFlags AccessFlags
}

// FieldDefinition is one declared field.
type FieldDefinition struct {
	Ref    symbol.FieldReference
	Access AccessFlags
}

// MethodDefinition owns a method's reference, access flags, optional
// IR body, and the monotonically-refined OptimizationInfo a pass may
// populate (spec.md §3).
type MethodDefinition struct {
	Ref    symbol.MethodReference
	Access AccessFlags

	// Code is nil for abstract/native methods.
	Code *ir.Graph

	ParameterAnnotations [][]string
	GenericSignature     string

	Info *OptimizationInfo
}

// IsStatic reports whether the method has no receiver.
func (m *MethodDefinition) IsStatic() bool { return m.Access.IsStatic() }

// RefineInfo joins newInfo onto the method's existing OptimizationInfo
// without ever discarding a fact the existing record already held
// (spec.md §3: "monotonically refined — never weakened").
func (m *MethodDefinition) RefineInfo(newInfo *OptimizationInfo) {
	m.Info = m.Info.Join(newInfo)
}

// ClassDefinition is one class or interface in the program or
// library. It is created by the (out-of-scope) reader, mutated by
// passes that add/remove/replace/rename members, and destroyed only
// when the application is finalized for writing.
type ClassDefinition struct {
	Type       *symbol.Type
	Super      *symbol.Type
	Interfaces []*symbol.Type
	Access     AccessFlags

	Fields  []*FieldDefinition
	Methods []*MethodDefinition

	InnerClasses []InnerClassEntry

	// KotlinMetadata is an opaque blob carried verbatim unless a pass
	// explicitly knows how to rewrite it; nil for non-Kotlin classes.
	KotlinMetadata []byte

	// Library is true for classes supplied as immutable library
	// input; Program is the complement. A class is never both
	// (spec.md §3: "program ∩ library = ∅").
	Library bool

	// VerticallyMergedIntoSubtype is set by the vertical-merging pass
	// (spec.md §4.5 step 2, upstream of this module) when this class
	// has already been folded into one of its subclasses; the
	// horizontal merger's NotVerticallyMergedIntoSubtype policy reads
	// it to avoid re-merging a class that's already a merge source.
	VerticallyMergedIntoSubtype bool
}

// FindMethod returns the method declared with the given signature, if
// any.
func (c *ClassDefinition) FindMethod(sig symbol.MethodSignature) *MethodDefinition {
	for _, m := range c.Methods {
		if m.Ref.Signature.Equal(sig) {
			return m
		}
	}
	return nil
}

// FindField returns the field declared with the given name, if any.
func (c *ClassDefinition) FindField(name string) *FieldDefinition {
	for _, f := range c.Fields {
		if f.Ref.Name == name {
			return f
		}
	}
	return nil
}

// RemoveMethod deletes a method by reference. A no-op if absent.
func (c *ClassDefinition) RemoveMethod(ref symbol.MethodReference) {
	out := c.Methods[:0]
	for _, m := range c.Methods {
		if !m.Ref.Equal(ref) {
			out = append(out, m)
		}
	}
	c.Methods = out
}

// IsEmpty reports whether the class has no remaining members —
// spec.md §8's "a class with no remaining members after optimization
// is removed outright unless pinned" boundary.
func (c *ClassDefinition) IsEmpty() bool {
	return len(c.Fields) == 0 && len(c.Methods) == 0
}
