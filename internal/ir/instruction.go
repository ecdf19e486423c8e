// Package ir implements the per-method SSA-form basic-block graph
// that the class inliner's value-flow analysis operates over, and
// that every lens-producing pass rewrites in place. Instructions are
// small value objects; a BasicBlock owns an ordered instruction list
// plus the CFG edges to its successors.
package ir

import "shrinker/internal/symbol"

// Opcode identifies an instruction's operation. Only the subset of a
// real bytecode's instruction set that the lens, merger, and inliner
// need to reason about is modeled; everything else in a method body
// is opaque "Other" instructions that reference no rewritable symbol.
type Opcode int

const (
	OpOther Opcode = iota
	OpNew             // dst = new T (allocation only, constructor call follows)
	OpInvokeConstructor
	OpInvokeVirtual
	OpInvokeInterface
	OpInvokeStatic
	OpInvokeDirect // private/constructor calls resolved statically
	OpGetField
	OpPutField
	OpStaticGet
	OpStaticPut
	OpInstanceOf
	OpCheckCast
	OpReturn
	OpReturnVoid
	OpConstNull
	OpConstInt
	OpPhi
	OpArgument
)

func (op Opcode) String() string {
	switch op {
	case OpNew:
		return "new"
	case OpInvokeConstructor:
		return "invoke-constructor"
	case OpInvokeVirtual:
		return "invoke-virtual"
	case OpInvokeInterface:
		return "invoke-interface"
	case OpInvokeStatic:
		return "invoke-static"
	case OpInvokeDirect:
		return "invoke-direct"
	case OpGetField:
		return "iget"
	case OpPutField:
		return "iput"
	case OpStaticGet:
		return "sget"
	case OpStaticPut:
		return "sput"
	case OpInstanceOf:
		return "instance-of"
	case OpCheckCast:
		return "check-cast"
	case OpReturn:
		return "return"
	case OpReturnVoid:
		return "return-void"
	case OpConstNull:
		return "const-null"
	case OpConstInt:
		return "const"
	case OpPhi:
		return "phi"
	case OpArgument:
		return "argument"
	default:
		return "other"
	}
}

// InvokeKind distinguishes how a call resolves; the lens's
// invoke-kind translation (spec.md §4.1) can promote a Virtual call
// to Static when a pass moves an instance method to a companion
// class and statifies it.
type InvokeKind int

const (
	InvokeUnknown InvokeKind = iota
	InvokeVirtual
	InvokeInterface
	InvokeStatic
	InvokeDirect
	InvokeSuper
)

// Value is anything an instruction can read: the result of an earlier
// instruction, a block argument (phi), a formal parameter, or a
// constant. Values are compared by pointer identity.
type Value struct {
	Def  *Instruction // nil for Argument/Const values defined elsewhere
	Kind ValueKind
	// Const holds the constant payload when Kind == ValueConst.
	Const interface{}
	// ArgIndex holds the parameter index when Kind == ValueArgument.
	ArgIndex int
	Type     *symbol.Type
}

type ValueKind int

const (
	ValueInstruction ValueKind = iota
	ValueArgument
	ValueConst
)

// Instruction is one SSA operation. Exactly one of MethodRef/FieldRef/
// TypeRef is meaningful, selected by Op; a lens rewrite visits
// whichever field Op implies. For OpGetField/OpPutField, Args[0] is
// always the receiver; OpPutField additionally carries the stored
// value at Args[1]. Static field and invoke opcodes carry no implicit
// receiver slot.
type Instruction struct {
	ID    int
	Block *BasicBlock
	Op    Opcode

	TypeRef   *symbol.Type
	MethodRef *symbol.MethodReference
	FieldRef  *symbol.FieldReference
	Invoke    InvokeKind

	Args []*Value // operands, in evaluation order
	Uses []*Instruction

	// ConstValue is populated for OpConstInt/OpConstNull.
	ConstValue interface{}

	// Removed marks an instruction the inliner or DCE has deleted;
	// removed instructions are skipped by every later pass but kept
	// in the slice until the next compaction to keep indices stable
	// mid-transformation.
	Removed bool
}

// AsValue returns the Value representing this instruction's result,
// for use as another instruction's operand.
func (i *Instruction) AsValue() *Value {
	return &Value{Def: i, Kind: ValueInstruction, Type: i.TypeRef}
}

// ReferencesDirectly reports whether val is one of this instruction's
// own operands (pointer equality against Args). Flow through other
// instructions, such as a chain of field accesses, is not followed;
// callers needing transitive escape analysis walk Args explicitly.
func (i *Instruction) ReferencesDirectly(val *Value) bool {
	for _, a := range i.Args {
		if a == val {
			return true
		}
	}
	return false
}
