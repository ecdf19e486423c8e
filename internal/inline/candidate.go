// Package inline implements the class inliner (spec.md §4.4): it
// eliminates short-lived local objects whose identity never escapes a
// method, replacing field reads/writes on the allocation with the
// values a local value-flow analysis can prove statically.
package inline

import (
	"shrinker/internal/classfile"
	"shrinker/internal/ir"
	"shrinker/internal/keep"
	"shrinker/internal/symbol"
)

// classEligible reports whether c may ever serve as a class-inlining
// target, independent of any particular allocation site (spec.md
// §4.4's class-eligibility bullets).
func classEligible(c *classfile.ClassDefinition, hierarchy *classfile.Hierarchy, root *symbol.Type, oracle *keep.Oracle, className func(*symbol.Type) string) bool {
	if c == nil || c.Library {
		return false
	}
	if c.Access.IsAbstract() || c.Access.IsInterface() {
		return false
	}
	if !hierarchy.DirectlyExtendsRoot(c, root) {
		return false
	}
	if declaresFinalizer(c) {
		return false
	}
	name := c.Type.String()
	if className != nil {
		name = className(c.Type)
	}
	constraint := oracle.Query(c.Type, name)
	if constraint.Pinned || !constraint.MayInline() {
		return false
	}
	return true
}

func declaresFinalizer(c *classfile.ClassDefinition) bool {
	for _, m := range c.Methods {
		if m.Ref.Signature.Name == "finalize" && len(m.Ref.Signature.Params) == 0 {
			return true
		}
	}
	return false
}

func findClinit(c *classfile.ClassDefinition) *classfile.MethodDefinition {
	for _, m := range c.Methods {
		if m.Ref.Signature.Name == "<clinit>" {
			return m
		}
	}
	return nil
}

// AnalyzeTrivialInitializer detects spec.md §4.4's "trivial class
// initializer" shape for class c: a static initializer that does
// nothing but allocate one instance of c, call its constructor with
// constant (or, left for a future pass, class-literal) arguments, and
// store the result into one of c's own static final fields. The
// result is cached on the initializer's OptimizationInfo so repeated
// queries from different candidate sites don't re-walk the graph.
func AnalyzeTrivialInitializer(c *classfile.ClassDefinition) *symbol.FieldReference {
	clinit := findClinit(c)
	if clinit == nil || clinit.Code == nil {
		return nil
	}
	if clinit.Info != nil && clinit.Info.TrivialInitializerField != nil {
		return clinit.Info.TrivialInitializerField
	}

	var alloc *ir.Instruction
	var sawOwnConstructor bool
	var field *symbol.FieldReference

	clinit.Code.Walk(func(instr *ir.Instruction) {
		if field != nil {
			return // already found a match; remaining instructions don't affect the verdict here
		}
		switch instr.Op {
		case ir.OpNew:
			if instr.TypeRef == c.Type {
				alloc = instr
			}
		case ir.OpInvokeConstructor:
			if alloc == nil || instr.MethodRef == nil || instr.MethodRef.Holder != c.Type {
				return
			}
			if !instructionArgsAreConstantOrReceiver(instr, alloc) {
				return
			}
			sawOwnConstructor = true
		case ir.OpStaticPut:
			if !sawOwnConstructor || instr.FieldRef == nil || instr.FieldRef.Holder != c.Type {
				return
			}
			if len(instr.Args) != 1 || instr.Args[0].Def != alloc {
				return
			}
			fld := *instr.FieldRef
			field = &fld
		}
	})

	if field != nil {
		clinit.RefineInfo(&classfile.OptimizationInfo{TrivialInitializerField: field})
	}
	return field
}

// instructionArgsAreConstantOrReceiver reports whether every argument
// to a constructor call is either the allocation being constructed
// (the receiver) or a compile-time constant.
func instructionArgsAreConstantOrReceiver(call, alloc *ir.Instruction) bool {
	for i, a := range call.Args {
		if i == 0 {
			if a.Def != alloc {
				return false
			}
			continue
		}
		if a.Kind != ir.ValueConst {
			return false
		}
	}
	return true
}
