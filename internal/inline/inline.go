package inline

import (
	"shrinker/internal/classfile"
	"shrinker/internal/diagnostics"
	"shrinker/internal/ir"
	"shrinker/internal/keep"
	"shrinker/internal/symbol"
)

// Budget bounds how large a candidate's forced-inline bodies may sum
// to before the candidate is skipped (spec.md §4.4's size budget).
// Synthetic Kotlin lambda bodies are exempt from the ceiling.
type Budget struct {
	Ceiling            int
	KotlinLambdaExempt map[*symbol.Type]bool
}

func (b Budget) exempt(t *symbol.Type) bool {
	return b.KotlinLambdaExempt != nil && b.KotlinLambdaExempt[t]
}

// Inliner runs the class inliner over one method's IR at a time,
// per spec.md §5's per-method work-item model — callers dispatch one
// Run call per method across the worker pool.
type Inliner struct {
	View   *classfile.View
	Oracle *keep.Oracle
	Sink   *diagnostics.Sink
	Budget Budget
	// ClassName resolves a Type to the name keep rules are written
	// against; nil falls back to the raw descriptor.
	ClassName func(*symbol.Type) string
}

// Run inlines every eligible allocation root found in m's graph,
// owned by class owner, and returns how many roots were inlined. A
// root that fails any eligibility or transformation check is left
// untouched (spec.md §4.4's "failure semantics": silent skip, method
// unchanged).
func (in *Inliner) Run(owner *classfile.ClassDefinition, m *classfile.MethodDefinition) int {
	if m.Code == nil {
		return 0
	}
	inlined := 0
	for _, block := range m.Code.Blocks {
		for _, instr := range block.Instructions {
			if instr.Removed {
				continue
			}
			target, isNew, ok := in.rootFor(instr)
			if !ok {
				continue
			}
			if in.inlineRoot(owner, m, instr, target, isNew) {
				inlined++
			}
		}
	}
	return inlined
}

// rootFor classifies instr as an allocation root, if it is one:
// either a new-T site whose T is class-eligible, or a static-get of a
// field a trivial class initializer populated with exactly one
// instance of an eligible class.
func (in *Inliner) rootFor(instr *ir.Instruction) (target *classfile.ClassDefinition, isNew bool, ok bool) {
	switch instr.Op {
	case ir.OpNew:
		c, found := in.View.Hierarchy.Lookup(instr.TypeRef)
		if !found || !classEligible(c, in.View.Hierarchy, in.View.Root, in.Oracle, in.ClassName) {
			return nil, false, false
		}
		return c, true, true

	case ir.OpStaticGet:
		if instr.FieldRef == nil {
			return nil, false, false
		}
		holder, found := in.View.Hierarchy.Lookup(instr.FieldRef.Holder)
		if !found {
			return nil, false, false
		}
		trivialField := AnalyzeTrivialInitializer(holder)
		if trivialField == nil || !trivialField.Equal(*instr.FieldRef) {
			return nil, false, false
		}
		t, found := in.View.Hierarchy.Lookup(instr.FieldRef.Type)
		if !found || !classEligible(t, in.View.Hierarchy, in.View.Root, in.Oracle, in.ClassName) {
			return nil, false, false
		}
		return t, false, true

	default:
		return nil, false, false
	}
}

// inlineRoot attempts the full spec.md §4.4 transformation for one
// root. isNew distinguishes a `new T` root (whose own constructor
// call must be among its usages) from a static singleton root (whose
// construction already happened in <clinit>, outside this method).
func (in *Inliner) inlineRoot(owner *classfile.ClassDefinition, m *classfile.MethodDefinition, root *ir.Instruction, target *classfile.ClassDefinition, isNew bool) bool {
	g := m.Code
	usages := collectUsages(g, root)

	// The value-flow fold below resolves a field read by walking
	// g.Blocks in a single flat pass and tracking the last write seen
	// per field, which is only sound when every write and read it
	// sees executes in the program order that flat walk visits them
	// in — true within one straight-line block, not in general once
	// control flow can reach a read from more than one write along
	// different paths (spec.md §4.4 step 3's block-level phi merge).
	// Rather than risk folding a read to whichever predecessor's write
	// the flat scan happened to see last, a root touched across more
	// than one block is skipped outright, the same silent-skip
	// eligibility failure spec.md §4.4's failure semantics already
	// describe for any other ineligible candidate.
	rootBlocks := map[*ir.BasicBlock]bool{root.Block: true}
	for _, u := range usages {
		rootBlocks[u.Block] = true
	}
	if len(rootBlocks) > 1 {
		return false
	}

	var ctorCall *ir.Instruction
	var methodCalls []*ir.Instruction
	for _, u := range usages {
		switch u.Op {
		case ir.OpInvokeConstructor:
			if !isNew || u.MethodRef == nil || u.MethodRef.Holder != target.Type || ctorCall != nil {
				return false
			}
			ctorCall = u
		case ir.OpGetField, ir.OpPutField:
			if u.FieldRef == nil || u.FieldRef.Holder != target.Type {
				return false
			}
		case ir.OpInvokeVirtual, ir.OpInvokeInterface, ir.OpInvokeDirect:
			if u.MethodRef == nil || u.MethodRef.Holder != target.Type {
				return false
			}
			methodCalls = append(methodCalls, u)
		default:
			return false
		}
	}
	if isNew && ctorCall == nil {
		return false
	}

	var ctorDef *classfile.MethodDefinition
	estimate := 0
	if ctorCall != nil {
		ctorDef = target.FindMethod(ctorCall.MethodRef.Signature)
		if ctorDef == nil {
			return false
		}
		estimate += liveInstructionCount(ctorDef.Code)
	}
	callees := make([]*classfile.MethodDefinition, len(methodCalls))
	for i, call := range methodCalls {
		callee := target.FindMethod(call.MethodRef.Signature)
		if callee == nil {
			return false
		}
		callees[i] = callee
		estimate += liveInstructionCount(callee.Code)
	}
	if !in.Budget.exempt(target.Type) && estimate > in.Budget.Ceiling {
		in.Sink.Report(diagnostics.NewBudgetExceeded(in.location(owner, m), estimate, in.Budget.Ceiling))
		return false
	}

	if ctorCall != nil {
		spliced, _, ok := forceInline(g, ctorDef, ctorCall.Args)
		if !ok {
			return false
		}
		insertBefore(ctorCall.Block, ctorCall, spliced)
		ctorCall.Removed = true
	}
	for i, call := range methodCalls {
		spliced, result, ok := forceInline(g, callees[i], call.Args)
		if !ok {
			return false
		}
		insertBefore(call.Block, call, spliced)
		replaceUses(g, call, result)
		call.Removed = true
	}

	// Every remaining live reference to the root is now a plain field
	// access on target's own type; fold them with a sequential
	// value-flow pass seeded by the field writes just spliced in.
	values := map[string]*ir.Value{}
	for _, b := range g.Blocks {
		for _, instr := range b.Instructions {
			if instr.Removed || instr.FieldRef == nil || instr.FieldRef.Holder != target.Type {
				continue
			}
			switch instr.Op {
			case ir.OpPutField:
				values[instr.FieldRef.Key()] = instr.Args[1]
				instr.Removed = true
			case ir.OpGetField:
				replaceUses(g, instr, values[instr.FieldRef.Key()])
				instr.Removed = true
			}
		}
	}

	root.Removed = true
	return true
}

func (in *Inliner) location(owner *classfile.ClassDefinition, m *classfile.MethodDefinition) diagnostics.Location {
	name := owner.Type.String()
	if in.ClassName != nil {
		name = in.ClassName(owner.Type)
	}
	return diagnostics.Location{Class: name, Member: m.Ref.Signature.String()}
}
