package symbol

import (
	"sync"
	"testing"
)

func TestInternIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"same descriptor interns to one pointer", "Lcom/example/Foo;", "Lcom/example/Foo;", true},
		{"different descriptors are distinct", "Lcom/example/Foo;", "Lcom/example/Bar;", false},
		{"array descriptor", "[Lcom/example/Foo;", "[Lcom/example/Foo;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool()
			a := p.Intern(tt.a)
			b := p.Intern(tt.b)
			if (a == b) != tt.same {
				t.Errorf("Intern(%q) == Intern(%q): got %v, want %v", tt.a, tt.b, a == b, tt.same)
			}
		})
	}
}

func TestInternConcurrent(t *testing.T) {
	p := NewPool()
	const n = 200
	var wg sync.WaitGroup
	results := make([]*Type, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Intern("Lcom/example/Shared;")
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent Intern produced distinct pointers for the same descriptor")
		}
	}
}

func TestLookupMissing(t *testing.T) {
	p := NewPool()
	if _, ok := p.Lookup("Lcom/example/Never;"); ok {
		t.Fatalf("Lookup found a type that was never interned")
	}
	p.Intern("Lcom/example/Never;")
	if _, ok := p.Lookup("Lcom/example/Never;"); !ok {
		t.Fatalf("Lookup did not find a type that was interned")
	}
}

func TestMethodSignatureEqual(t *testing.T) {
	p := NewPool()
	intT := p.Intern("I")
	voidT := p.Intern("V")

	a := MethodSignature{Name: "foo", Params: []*Type{intT, intT}, Return: voidT}
	b := MethodSignature{Name: "foo", Params: []*Type{intT, intT}, Return: voidT}
	c := MethodSignature{Name: "foo", Params: []*Type{intT}, Return: voidT}

	if !a.Equal(b) {
		t.Errorf("expected structurally identical signatures to be equal")
	}
	if a.Equal(c) {
		t.Errorf("expected signatures with different arity to be unequal")
	}
	if a.Key() != b.Key() {
		t.Errorf("Key() mismatch for equal signatures: %q vs %q", a.Key(), b.Key())
	}
}
