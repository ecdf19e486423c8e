package driver

import (
	"context"
	"strings"
	"testing"

	"shrinker/internal/classfile"
	"shrinker/internal/diagnostics"
	"shrinker/internal/inline"
	"shrinker/internal/ir"
	"shrinker/internal/keep"
	"shrinker/internal/keeprules"
	"shrinker/internal/mapping"
	"shrinker/internal/merge"
	"shrinker/internal/symbol"
)

func dottedName(t *symbol.Type) string {
	s := t.String()
	if len(s) >= 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "/", ".")
}

// buildValueHolder mirrors merge_test.go's helper: a one-field class
// directly extending root, its sole constructor storing its argument.
func buildValueHolder(pool *symbol.Pool, root *symbol.Type, name, fieldName string) *classfile.ClassDefinition {
	ty := pool.Intern("L" + name + ";")
	intT := pool.Intern("I")
	voidT := pool.Intern("V")

	ctorRef := symbol.MethodReference{
		Holder:    ty,
		Signature: symbol.MethodSignature{Name: "<init>", Params: []*symbol.Type{intT}, Return: voidT},
	}
	g := ir.NewGraph()
	put := g.NewInstruction(ir.OpPutField)
	fieldRef := symbol.FieldReference{Holder: ty, Name: fieldName, Type: intT}
	put.FieldRef = &fieldRef
	put.Args = []*ir.Value{
		{Kind: ir.ValueArgument, ArgIndex: 0, Type: ty},
		{Kind: ir.ValueArgument, ArgIndex: 1, Type: intT},
	}
	g.Entry.AddInstruction(put)
	g.Entry.AddInstruction(g.NewInstruction(ir.OpReturnVoid))

	return &classfile.ClassDefinition{
		Type:  ty,
		Super: root,
		Fields: []*classfile.FieldDefinition{
			{Ref: fieldRef, Access: classfile.AccFinal},
		},
		Methods: []*classfile.MethodDefinition{
			{Ref: ctorRef, Code: g},
		},
	}
}

// TestDriver_MergeThenInline runs the fixed pass ordering end-to-end
// over spec.md §8 Scenario C's two value holders, then checks that
// the driver's merge pass produced a lens and dropped the emptied
// source class itself (so the finalize step finds nothing further to
// remove), and the mapping writer renders a consistent class record
// for what remains.
func TestDriver_MergeThenInline(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")

	a := buildValueHolder(pool, root, "com/example/A", "x")
	b := buildValueHolder(pool, root, "com/example/B", "y")
	view := classfile.NewView(pool, root, []*classfile.ClassDefinition{a, b}, nil)

	originalSnapshot := []*classfile.ClassDefinition{
		{Type: a.Type, Methods: a.Methods},
		{Type: b.Type, Methods: b.Methods},
	}

	rules, err := keeprules.Parse("")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	oracle := keep.NewOracle(rules, keep.Options{Minify: true})
	sink := diagnostics.NewSink()

	mergeCtx := &merge.Context{View: view, Oracle: oracle, ClassName: dottedName}
	mergePass := &MergePass{Merger: merge.NewMerger(pool), Ctx: mergeCtx}

	inliner := &inline.Inliner{View: view, Oracle: oracle, Sink: sink, Budget: inline.Budget{Ceiling: 1000}, ClassName: dottedName}
	inlinePass := &InlinePass{Inliner: inliner}

	d := New(oracle, sink, Options{Minify: true, WorkerPoolSize: 4}, mergePass, inlinePass)

	stack, summary, err := d.Run(context.Background(), view)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stack.Len() == 0 {
		t.Fatalf("expected the merge pass to push a lens onto the stack")
	}
	// The merge pass itself removes its source class from the program
	// set as part of fusion (merge.Merger.Run), so the driver's own
	// finalize step — which only catches classes left empty AFTER
	// every pass has run — has nothing further to remove here.
	if summary.ClassesRemoved != 0 {
		t.Errorf("expected finalize to find nothing further to remove, got %d", summary.ClassesRemoved)
	}

	rewrittenB := stack.MapType(b.Type)
	if rewrittenB != a.Type {
		t.Errorf("expected B to be rewritten onto the merge target A, got %s", rewrittenB)
	}
	if _, stillProgram := view.ProgramClass(b.Type); stillProgram {
		t.Errorf("expected B to no longer be a program class after merging and finalization")
	}

	out := mapping.Format(originalSnapshot, stack)
	if !strings.Contains(out, "com.example.A -> com.example.A:") {
		t.Errorf("expected A's mapping header to show the unrenamed (no minification of this scenario's types) class, got:\n%s", out)
	}
	if !strings.Contains(out, "com.example.B -> com.example.A:") {
		t.Errorf("expected B's mapping header to point at the merge target, got:\n%s", out)
	}
}

// TestDriver_SkipsDisabledPass confirms a toggled-off pass neither
// runs nor contributes to the summary's pass list.
func TestDriver_SkipsDisabledPass(t *testing.T) {
	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	view := classfile.NewView(pool, root, nil, nil)

	rules, _ := keeprules.Parse("")
	oracle := keep.NewOracle(rules, keep.Options{Minify: true})
	sink := diagnostics.NewSink()

	mergeCtx := &merge.Context{View: view, Oracle: oracle, ClassName: dottedName}
	mergePass := &MergePass{Merger: merge.NewMerger(pool), Ctx: mergeCtx}
	inlinePass := &InlinePass{Inliner: &inline.Inliner{View: view, Oracle: oracle, Sink: sink, Budget: inline.Budget{Ceiling: 100}}}

	d := New(oracle, sink, Options{PassToggles: map[string]bool{"horizontal-merge": false}}, mergePass, inlinePass)

	_, summary, err := d.Run(context.Background(), view)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range summary.PassesRun {
		if name == "horizontal-merge" {
			t.Errorf("expected horizontal-merge to be skipped, but it ran")
		}
	}
	if len(summary.PassesSkipped) != 1 || summary.PassesSkipped[0] != "horizontal-merge" {
		t.Errorf("expected PassesSkipped to report [horizontal-merge], got %v", summary.PassesSkipped)
	}
}
