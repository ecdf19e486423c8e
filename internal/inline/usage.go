package inline

import (
	"shrinker/internal/classfile"
	"shrinker/internal/ir"
)

// collectUsages returns every live instruction, anywhere in g, that
// reads root's result as an operand.
func collectUsages(g *ir.Graph, root *ir.Instruction) []*ir.Instruction {
	var out []*ir.Instruction
	g.Walk(func(instr *ir.Instruction) {
		if instr == root {
			return
		}
		for _, a := range instr.Args {
			if a.Kind == ir.ValueInstruction && a.Def == root {
				out = append(out, instr)
				return
			}
		}
	})
	return out
}

// replaceUses rewrites every live operand across g that reads
// oldInstr's result to read newValue instead. A nil newValue is a
// no-op, since a void call has nothing to substitute.
func replaceUses(g *ir.Graph, oldInstr *ir.Instruction, newValue *ir.Value) {
	if newValue == nil {
		return
	}
	g.Walk(func(instr *ir.Instruction) {
		for i, a := range instr.Args {
			if a.Kind == ir.ValueInstruction && a.Def == oldInstr {
				instr.Args[i] = newValue
			}
		}
	})
}

// liveInstructionCount estimates a method's inlined-instruction cost
// for spec.md §4.4's size budget.
func liveInstructionCount(g *ir.Graph) int {
	if g == nil {
		return 0
	}
	n := 0
	g.Walk(func(*ir.Instruction) { n++ })
	return n
}

// forceInline splices callee's body in place of a call, substituting
// callee's declared argument slots (slot 0 is always the receiver,
// matching how this package builds call-site Args) with callArgs, and
// reports the value a caller should now use in place of the call's
// result (nil for a void callee).
//
// This stands in for spec.md §4.4 step 2's "standard inliner": it
// only knows how to splice a callee whose body is straight-line field
// writes followed by a single return, which is exactly the shape a
// trivial constructor or an eligibility-annotated accessor has. A
// callee outside that shape is reported as not ok, and the candidate
// that needed it is skipped rather than partially transformed.
func forceInline(g *ir.Graph, callee *classfile.MethodDefinition, callArgs []*ir.Value) (spliced []*ir.Instruction, result *ir.Value, ok bool) {
	if callee == nil || callee.Code == nil {
		return nil, nil, false
	}
	for _, block := range callee.Code.Blocks {
		for _, src := range block.Instructions {
			if src.Removed {
				continue
			}
			switch src.Op {
			case ir.OpPutField:
				clone := g.NewInstruction(ir.OpPutField)
				ref := *src.FieldRef
				clone.FieldRef = &ref
				clone.Args = substituteArgs(src.Args, callArgs)
				spliced = append(spliced, clone)
			case ir.OpReturn:
				result = substituteValue(src.Args[0], callArgs)
			case ir.OpReturnVoid, ir.OpInvokeConstructor, ir.OpArgument:
				// A void return ends the body; the callee's own
				// super-constructor call carries no state this pass
				// needs to preserve once its writes are spliced in.
			default:
				return nil, nil, false
			}
		}
	}
	return spliced, result, true
}

func substituteArgs(args []*ir.Value, callArgs []*ir.Value) []*ir.Value {
	out := make([]*ir.Value, len(args))
	for i, a := range args {
		out[i] = substituteValue(a, callArgs)
	}
	return out
}

func substituteValue(v *ir.Value, callArgs []*ir.Value) *ir.Value {
	if v.Kind == ir.ValueArgument && v.ArgIndex < len(callArgs) {
		return callArgs[v.ArgIndex]
	}
	return v
}

// insertBefore splices instrs into block immediately before marker,
// preserving order. A marker not found in block appends instrs at the
// end.
func insertBefore(block *ir.BasicBlock, marker *ir.Instruction, instrs []*ir.Instruction) {
	if len(instrs) == 0 {
		return
	}
	idx := -1
	for i, ins := range block.Instructions {
		if ins == marker {
			idx = i
			break
		}
	}
	if idx < 0 {
		block.Instructions = append(block.Instructions, instrs...)
	} else {
		out := make([]*ir.Instruction, 0, len(block.Instructions)+len(instrs))
		out = append(out, block.Instructions[:idx]...)
		out = append(out, instrs...)
		out = append(out, block.Instructions[idx:]...)
		block.Instructions = out
	}
	for _, ins := range instrs {
		ins.Block = block
	}
}
