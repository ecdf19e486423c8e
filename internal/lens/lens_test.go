package lens

import (
	"testing"

	"shrinker/internal/ir"
	"shrinker/internal/symbol"
)

func TestMapUnknownReferenceIsIdentity(t *testing.T) {
	pool := symbol.NewPool()
	s := NewStack()
	x := pool.Intern("Lcom/example/X;")
	if got := s.MapType(x); got != x {
		t.Fatalf("empty stack must map unknown type to itself, got %s", got)
	}
}

func TestScenarioD_LensCompositionWithPrototypeChange(t *testing.T) {
	pool := symbol.NewPool()
	intT := pool.Intern("I")
	enumT := pool.Intern("Lcom/example/E;")
	voidT := pool.Intern("V")
	xT := pool.Intern("Lcom/example/X;")

	fooRef := symbol.MethodReference{
		Holder:    xT,
		Signature: symbol.MethodSignature{Name: "foo", Params: []*symbol.Type{enumT, intT}, Return: voidT},
	}
	barRef := fooRef.WithSignature(symbol.MethodSignature{Name: "bar", Params: []*symbol.Type{enumT, intT}, Return: voidT})

	s := NewStack()

	// Pass 1: rename foo(LE;I)V -> bar(LE;I)V, no prototype change.
	b1 := NewBuilder("rename-pass")
	b1.MapMethod(fooRef, barRef, nil)
	l1, err := b1.Build()
	if err != nil {
		t.Fatalf("build lens1: %v", err)
	}
	if err := s.Push(l1); err != nil {
		t.Fatalf("push lens1: %v", err)
	}

	// Pass 2: enum-unboxing changes bar's first parameter from E to int.
	barWithEnumArg := barRef
	barWithEnumArg.Signature.Params = []*symbol.Type{enumT, intT}
	proto := &PrototypeChange{ArgEdits: []ArgEdit{{NewType: intT}, {}}}
	b2 := NewBuilder("enum-unboxing")
	b2.MapMethod(barWithEnumArg, barWithEnumArg, proto)
	l2, err := b2.Build()
	if err != nil {
		t.Fatalf("build lens2: %v", err)
	}
	if err := s.Push(l2); err != nil {
		t.Fatalf("push lens2: %v", err)
	}

	got, gotProto := s.MapMethod(fooRef)
	if got.Signature.Name != "bar" {
		t.Fatalf("expected composed reference to be named bar, got %s", got.Signature.Name)
	}
	if gotProto == nil || gotProto.IsEmpty() {
		t.Fatalf("expected a non-empty composed prototype change")
	}
	if len(gotProto.ArgEdits) != 2 || gotProto.ArgEdits[0].NewType != intT {
		t.Fatalf("expected arg0 rewritten to int, got %+v", gotProto.ArgEdits)
	}
}

func TestPushRejectsSecondPrototypeChangeForSameMethod(t *testing.T) {
	pool := symbol.NewPool()
	intT := pool.Intern("I")
	voidT := pool.Intern("V")
	xT := pool.Intern("Lcom/example/X;")
	ref := symbol.MethodReference{Holder: xT, Signature: symbol.MethodSignature{Name: "m", Params: []*symbol.Type{intT}, Return: voidT}}

	s := NewStack()
	proto1 := &PrototypeChange{ArgEdits: []ArgEdit{{Removed: true}}}
	b1 := NewBuilder("pass1")
	b1.MapMethod(ref, ref, proto1)
	l1, _ := b1.Build()
	if err := s.Push(l1); err != nil {
		t.Fatalf("push lens1: %v", err)
	}

	proto2 := &PrototypeChange{NewReturn: intT}
	b2 := NewBuilder("pass2")
	b2.MapMethod(ref, ref, proto2)
	l2, _ := b2.Build()
	if err := s.Push(l2); err == nil {
		t.Fatalf("expected Push to reject a second prototype change for the same method")
	}
}

func TestInjectivityRejected(t *testing.T) {
	pool := symbol.NewPool()
	a := pool.Intern("La;")
	b := pool.Intern("Lb;")
	target := pool.Intern("Lc;")

	bd := NewBuilder("collide")
	bd.MapType(a, target)
	bd.MapType(b, target)
	if _, err := bd.Build(); err == nil {
		t.Fatalf("expected Build to reject a non-injective type map")
	}
}

func TestRewriteGraphUpdatesCallSites(t *testing.T) {
	pool := symbol.NewPool()
	intT := pool.Intern("I")
	voidT := pool.Intern("V")
	xT := pool.Intern("Lcom/example/X;")

	fooRef := symbol.MethodReference{Holder: xT, Signature: symbol.MethodSignature{Name: "foo", Params: []*symbol.Type{intT, intT}, Return: voidT}}
	barRef := fooRef.WithSignature(symbol.MethodSignature{Name: "bar", Params: []*symbol.Type{intT}, Return: voidT})

	g := ir.NewGraph()
	call := g.NewInstruction(ir.OpInvokeStatic)
	call.MethodRef = &fooRef
	call.Args = []*ir.Value{
		{Kind: ir.ValueArgument, ArgIndex: 0, Type: intT},
		{Kind: ir.ValueArgument, ArgIndex: 1, Type: intT},
	}
	g.Entry.AddInstruction(call)

	s := NewStack()
	proto := &PrototypeChange{ArgEdits: []ArgEdit{{}, {Removed: true}}}
	bld := NewBuilder("drop-unused-arg")
	bld.MapMethod(fooRef, barRef, proto)
	l, _ := bld.Build()
	if err := s.Push(l); err != nil {
		t.Fatalf("push: %v", err)
	}

	RewriteGraph(g, s)

	if call.MethodRef.Signature.Name != "bar" {
		t.Fatalf("expected call site rewritten to bar, got %s", call.MethodRef.Signature.Name)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected dropped argument to shrink the call site's args to 1, got %d", len(call.Args))
	}
}
