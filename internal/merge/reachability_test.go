package merge

import (
	"shrinker/internal/classfile"
	"shrinker/internal/keep"
	"shrinker/internal/keeprules"
	"shrinker/internal/symbol"
	"testing"
)

// TestExpandRuntimeCheckedClosure builds root <- Base <- Mid <- Leaf
// plus an unrelated Other class, and checks that seeding Base pulls
// in every transitive subtype (Mid, Leaf) but leaves Other and the
// root itself untouched.
func TestExpandRuntimeCheckedClosure(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	base := pool.Intern("Lcom/example/Base;")
	mid := pool.Intern("Lcom/example/Mid;")
	leaf := pool.Intern("Lcom/example/Leaf;")
	other := pool.Intern("Lcom/example/Other;")

	classes := []*classfile.ClassDefinition{
		{Type: base, Super: root},
		{Type: mid, Super: base},
		{Type: leaf, Super: mid},
		{Type: other, Super: root},
	}
	h := classfile.NewHierarchy(classes)

	seeds := map[*symbol.Type]bool{base: true}
	closure := ExpandRuntimeCheckedClosure(h, seeds)

	for _, want := range []*symbol.Type{base, mid, leaf} {
		if !closure[want] {
			t.Errorf("closure missing %s", want)
		}
	}
	if closure[other] {
		t.Errorf("closure must not include the unrelated sibling Other")
	}
	if closure[root] {
		t.Errorf("closure must not include the root type itself")
	}
}

// TestNewContextWithRuntimeCheckedSeeds confirms the constructor
// installs the expanded closure, not the bare seed set, onto the
// returned Context.
func TestNewContextWithRuntimeCheckedSeeds(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	base := pool.Intern("Lcom/example/Base;")
	mid := pool.Intern("Lcom/example/Mid;")

	classes := []*classfile.ClassDefinition{
		{Type: base, Super: root},
		{Type: mid, Super: base},
	}
	view := classfile.NewView(pool, root, classes, nil)

	rules, err := keeprules.Parse("")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	oracle := keep.NewOracle(rules, keep.Options{Minify: true})

	ctx := NewContextWithRuntimeCheckedSeeds(view, oracle, map[*symbol.Type]bool{base: true}, nil)

	if !ctx.runtimeChecked(base) {
		t.Errorf("expected the seed itself to be marked runtime-checked")
	}
	if !ctx.runtimeChecked(mid) {
		t.Errorf("expected Mid, a subtype of the seed, to be pulled into the closure")
	}
}

func TestExpandRuntimeCheckedClosure_EmptySeeds(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	base := pool.Intern("Lcom/example/Base;")
	h := classfile.NewHierarchy([]*classfile.ClassDefinition{{Type: base, Super: root}})

	closure := ExpandRuntimeCheckedClosure(h, nil)
	if len(closure) != 0 {
		t.Errorf("expected an empty closure for an empty seed set, got %v", closure)
	}
}
