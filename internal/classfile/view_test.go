package classfile

import (
	"testing"

	"shrinker/internal/symbol"
)

func newTestClass(pool *symbol.Pool, name string, super *symbol.Type) *ClassDefinition {
	return &ClassDefinition{Type: pool.Intern(name), Super: super}
}

func TestViewProgramLibrarySeparation(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	prog := newTestClass(pool, "Lcom/example/App;", root)
	lib := newTestClass(pool, "Ljava/util/List;", root)

	v := NewView(pool, root, []*ClassDefinition{prog}, []*ClassDefinition{lib})

	if !v.IsProgram(prog.Type) {
		t.Errorf("expected App to be a program class")
	}
	if v.IsProgram(lib.Type) {
		t.Errorf("expected List to not be a program class")
	}
	if _, ok := v.LibraryClass(prog.Type); ok {
		t.Errorf("App must not resolve as a library class")
	}
}

func TestViewRejectsOverlap(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	c := newTestClass(pool, "Lcom/example/Dup;", root)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected NewView to panic on program/library overlap")
		}
	}()
	NewView(pool, root, []*ClassDefinition{c}, []*ClassDefinition{c})
}

func TestHierarchyIsSubtype(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	base := newTestClass(pool, "Lcom/example/Base;", root)
	mid := newTestClass(pool, "Lcom/example/Mid;", base.Type)
	leaf := newTestClass(pool, "Lcom/example/Leaf;", mid.Type)

	h := NewHierarchy([]*ClassDefinition{base, mid, leaf})

	if !h.IsSubtype(leaf.Type, root) {
		t.Errorf("expected Leaf to be a subtype of the root")
	}
	if h.IsSubtype(base.Type, leaf.Type) {
		t.Errorf("did not expect Base to be a subtype of Leaf")
	}
	if !h.DirectlyExtendsRoot(base, root) {
		t.Errorf("expected Base to directly extend the root")
	}
	if h.DirectlyExtendsRoot(leaf, root) {
		t.Errorf("did not expect Leaf to directly extend the root")
	}
}

func TestClassEmptyAndRemoveMethod(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	c := newTestClass(pool, "Lcom/example/C;", root)
	voidT := pool.Intern("V")
	ref := symbol.MethodReference{Holder: c.Type, Signature: symbol.MethodSignature{Name: "m", Return: voidT}}
	c.Methods = append(c.Methods, &MethodDefinition{Ref: ref})

	if c.IsEmpty() {
		t.Fatalf("class with a method must not be empty")
	}
	c.RemoveMethod(ref)
	if !c.IsEmpty() {
		t.Fatalf("expected class to be empty after removing its only method")
	}
}
