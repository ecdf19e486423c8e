package mapping

import (
	"strings"
	"testing"

	"shrinker/internal/classfile"
	"shrinker/internal/lens"
	"shrinker/internal/symbol"
)

// TestFormat_ScenarioD mirrors spec.md §8 Scenario D: a method renamed
// by one lens and given a prototype change by another must render
// with its obfuscated name and its original parameter types.
func TestFormat_ScenarioD(t *testing.T) {
	pool := symbol.NewPool()
	x := pool.Intern("Lcom/example/X;")
	intT := pool.Intern("I")
	enumT := pool.Intern("Lcom/example/E;")
	voidT := pool.Intern("V")

	fooRef := symbol.MethodReference{
		Holder:    x,
		Signature: symbol.MethodSignature{Name: "foo", Params: []*symbol.Type{intT, enumT}, Return: voidT},
	}
	barRef := symbol.MethodReference{
		Holder:    x,
		Signature: symbol.MethodSignature{Name: "bar", Params: []*symbol.Type{intT, enumT}, Return: voidT},
	}
	bazRef := symbol.MethodReference{
		Holder:    x,
		Signature: symbol.MethodSignature{Name: "bar", Params: []*symbol.Type{intT, intT}, Return: voidT},
	}

	b1 := lens.NewBuilder("rename-pass")
	b1.MapMethod(fooRef, barRef, nil)
	l1, err := b1.Build()
	if err != nil {
		t.Fatalf("build rename lens: %v", err)
	}

	b2 := lens.NewBuilder("enum-unboxing")
	proto := &lens.PrototypeChange{ArgEdits: []lens.ArgEdit{{}, {NewType: intT}}}
	b2.MapMethod(barRef, bazRef, proto)
	l2, err := b2.Build()
	if err != nil {
		t.Fatalf("build proto-change lens: %v", err)
	}

	stack := lens.NewStack()
	if err := stack.Push(l1); err != nil {
		t.Fatalf("push rename lens: %v", err)
	}
	if err := stack.Push(l2); err != nil {
		t.Fatalf("push proto-change lens: %v", err)
	}

	owner := &classfile.ClassDefinition{
		Type: x,
		Methods: []*classfile.MethodDefinition{
			{Ref: fooRef},
		},
	}

	out := Format([]*classfile.ClassDefinition{owner}, stack)

	if !strings.Contains(out, "com.example.X -> com.example.X:") {
		t.Errorf("expected unrenamed class header, got:\n%s", out)
	}
	if !strings.Contains(out, "void foo(int,com.example.E) -> bar") {
		t.Errorf("expected original signature mapped to renamed method, got:\n%s", out)
	}
}

func TestJavaTypeName(t *testing.T) {
	pool := symbol.NewPool()
	cases := []struct {
		desc string
		want string
	}{
		{"I", "int"},
		{"V", "void"},
		{"Lcom/example/Foo;", "com.example.Foo"},
		{"[I", "int[]"},
		{"[[Lcom/example/Foo;", "com.example.Foo[][]"},
	}
	for _, c := range cases {
		got := javaTypeName(pool.Intern(c.desc))
		if got != c.want {
			t.Errorf("javaTypeName(%q) = %q, want %q", c.desc, got, c.want)
		}
	}
}
