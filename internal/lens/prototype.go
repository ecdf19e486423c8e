package lens

import "shrinker/internal/symbol"

// ArgEdit describes what happened to one original argument slot
// under a prototype change.
type ArgEdit struct {
	// Removed is true when the argument slot no longer exists in the
	// rewritten signature.
	Removed bool
	// NewType is non-nil when the slot survives but its type was
	// rewritten (e.g. enum unboxing turning an enum-typed argument
	// into int).
	NewType *symbol.Type
}

// ConstParam is one trailing parameter appended to a rewritten
// signature whose value is fixed by the rewrite itself, rather than
// always being a literal null the way ExtraNullParams's slots are.
// Horizontal merging's class-id parameter is the motivating case: each
// pre-merge constructor reference keeps its own PrototypeChange entry,
// so each one can carry the specific dense class-id constant that
// reference's call sites must now pass (spec.md §4.3 step 4).
type ConstParam struct {
	Type  *symbol.Type
	Value interface{}
}

// PrototypeChange is the structured edit to a method's signature that
// spec.md §3 requires the lens to carry alongside a plain rename:
// argument removal, argument type rewrites, a return-type rewrite,
// a count of trailing null parameters appended purely to dodge a
// signature collision with an unrelated method, and trailing
// parameters whose value the rewrite itself fixes.
type PrototypeChange struct {
	// ArgEdits is indexed by the ORIGINAL (pre-change) argument
	// position.
	ArgEdits []ArgEdit
	// NewReturn is non-nil when the return type was rewritten.
	NewReturn *symbol.Type
	// ExtraNullParams counts trailing parameters appended after every
	// real argument, present purely so the new signature doesn't
	// collide with an existing overload; call sites pass a literal
	// null for each. NullParamType is the interned type used for
	// those slots (conventionally java.lang.Object), supplied by the
	// pass that constructs the change since it alone has the pool.
	ExtraNullParams int
	NullParamType   *symbol.Type
	// ExtraConstParams appends after ExtraNullParams: trailing
	// parameters a call site must pass the given fixed constant for,
	// rather than null.
	ExtraConstParams []ConstParam
}

// IsEmpty reports whether the change is a no-op, used to enforce the
// "at most one lens carries a non-empty prototype change per method"
// invariant without treating a present-but-trivial record as a
// violation.
func (p *PrototypeChange) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.NewReturn != nil || p.ExtraNullParams != 0 || len(p.ExtraConstParams) != 0 {
		return false
	}
	for _, e := range p.ArgEdits {
		if e.Removed || e.NewType != nil {
			return false
		}
	}
	return true
}

// Apply rewrites a pre-change signature into its post-change form.
func (p *PrototypeChange) Apply(sig symbol.MethodSignature) symbol.MethodSignature {
	if p.IsEmpty() {
		return sig
	}
	out := symbol.MethodSignature{Name: sig.Name, Return: sig.Return}
	if p.NewReturn != nil {
		out.Return = p.NewReturn
	}
	for i, param := range sig.Params {
		if i < len(p.ArgEdits) {
			edit := p.ArgEdits[i]
			if edit.Removed {
				continue
			}
			if edit.NewType != nil {
				out.Params = append(out.Params, edit.NewType)
				continue
			}
		}
		out.Params = append(out.Params, param)
	}
	for i := 0; i < p.ExtraNullParams; i++ {
		out.Params = append(out.Params, p.NullParamType)
	}
	for _, c := range p.ExtraConstParams {
		out.Params = append(out.Params, c.Type)
	}
	return out
}
