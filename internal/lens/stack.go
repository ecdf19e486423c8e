package lens

import (
	"fmt"

	"shrinker/internal/ir"
	"shrinker/internal/symbol"
)

// Stack is the ordered chain of Lens records described in spec.md
// §3/§4.1. Queries compose left-to-right: index 0 holds the earliest
// rewriting, and a query folds successive lenses onto the result of
// the previous one. A Stack is appended to by exactly one writer (the
// driver, between passes) and read concurrently by every pass.
type Stack struct {
	lenses []*Lens
	// protoOwner tracks, for each FINAL (fully composed) method
	// identity, which lens (by origin) currently owns a non-empty
	// prototype change for it — used to enforce spec.md §4.1's "at
	// most one lens on the stack carries a non-empty prototype change
	// for any given method".
	protoOwner map[symbol.MethodReference]string
}

// NewStack returns an empty lens stack.
func NewStack() *Stack {
	return &Stack{protoOwner: make(map[symbol.MethodReference]string)}
}

// Push appends lens to the stack. lens MUST have been built against
// the view as it existed before this call; Push never retroactively
// rewrites an already-pushed lens.
//
// Push rejects a lens that would give a second lens on the stack a
// non-empty prototype change for the same ultimate method (spec.md
// §8 property 5): the caller must instead rewrite the earlier lens's
// target, not stack a second prototype change on top of it.
func (s *Stack) Push(l *Lens) error {
	for pre, proto := range l.protoChanges {
		if proto.IsEmpty() {
			continue
		}
		final, _ := s.MapMethod(pre)
		if owner, ok := s.protoOwner[final]; ok {
			return fmt.Errorf("lens %q: method %s already has a prototype change owned by lens %q; cannot stack a second one",
				l.origin, final, owner)
		}
	}
	for pre, proto := range l.protoChanges {
		if proto.IsEmpty() {
			continue
		}
		final, _ := s.MapMethod(pre)
		post, _ := l.mapMethod(pre)
		delete(s.protoOwner, final)
		s.protoOwner[post] = l.origin
	}
	s.lenses = append(s.lenses, l)
	return nil
}

// Len reports how many lenses are currently on the stack.
func (s *Stack) Len() int { return len(s.lenses) }

// MapType folds every lens in order; an unresolved type maps to
// itself (lens queries are total and infallible).
func (s *Stack) MapType(t *symbol.Type) *symbol.Type {
	for _, l := range s.lenses {
		t = l.mapType(t)
	}
	return t
}

// MapField folds every lens in order.
func (s *Stack) MapField(f symbol.FieldReference) symbol.FieldReference {
	for _, l := range s.lenses {
		f = l.mapField(f)
	}
	return f
}

// MapMethod folds every lens in order and returns the composed
// method reference plus the (at most one, per the stacking
// invariant) non-empty prototype change found along the way.
func (s *Stack) MapMethod(m symbol.MethodReference) (symbol.MethodReference, *PrototypeChange) {
	var composed *PrototypeChange
	for _, l := range s.lenses {
		next, proto := l.mapMethod(m)
		if !proto.IsEmpty() {
			composed = proto
		}
		m = next
	}
	return m, composed
}

// InvokeKind resolves the invoke kind for a call site whose
// pre-rewrite target was pre and whose kind was old, folding every
// lens's override in order.
func (s *Stack) InvokeKind(pre symbol.MethodReference, old ir.InvokeKind) ir.InvokeKind {
	cur := pre
	kind := old
	for _, l := range s.lenses {
		if l.invokeKind != nil {
			kind = l.invokeKind(cur, kind)
		}
		cur, _ = l.mapMethod(cur)
	}
	return kind
}

// RewriteGraph rewrites every type/field/method reference an IR
// graph's instructions carry through the stack, and adjusts call-site
// argument lists for any composed prototype change. It is used after
// a lens-producing pass to bring already-compiled method bodies in
// line with the new names before the next pass runs.
func RewriteGraph(g *ir.Graph, s *Stack) {
	g.Walk(func(instr *ir.Instruction) {
		if instr.TypeRef != nil {
			instr.TypeRef = s.MapType(instr.TypeRef)
		}
		if instr.FieldRef != nil {
			mapped := s.MapField(*instr.FieldRef)
			instr.FieldRef = &mapped
		}
		if instr.MethodRef != nil {
			mapped, proto := s.MapMethod(*instr.MethodRef)
			instr.Invoke = s.InvokeKind(*instr.MethodRef, instr.Invoke)
			instr.MethodRef = &mapped
			if proto != nil {
				instr.Args = applyPrototypeChangeToArgs(instr.Args, proto)
			}
		}
	})
}

// applyPrototypeChangeToArgs drops removed argument values, leaves
// type-rewritten slots' values untouched (the value's own type was
// already rewritten upstream by whichever pass produced it), appends
// literal-null values for synthesized trailing parameters, and
// appends the fixed constant each ExtraConstParams slot carries (e.g.
// horizontal merging's per-source class-id argument).
func applyPrototypeChangeToArgs(args []*ir.Value, proto *PrototypeChange) []*ir.Value {
	out := make([]*ir.Value, 0, len(args)+proto.ExtraNullParams+len(proto.ExtraConstParams))
	for i, a := range args {
		if i < len(proto.ArgEdits) && proto.ArgEdits[i].Removed {
			continue
		}
		out = append(out, a)
	}
	for i := 0; i < proto.ExtraNullParams; i++ {
		out = append(out, &ir.Value{Kind: ir.ValueConst, Const: nil, Type: proto.NullParamType})
	}
	for _, c := range proto.ExtraConstParams {
		out = append(out, &ir.Value{Kind: ir.ValueConst, Const: c.Value, Type: c.Type})
	}
	return out
}
