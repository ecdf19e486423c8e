// Command shrinker is the thin entry point that wires the core
// pipeline (internal/symbol, internal/classfile, internal/lens,
// internal/merge, internal/inline, internal/driver) into a runnable
// batch job. The real CLI surface — subcommands, flag parsing for a
// class-file reader, a Dalvik writer, and a retracer — is the
// external collaborator spec.md §1 scopes out of this core; what's
// here only exercises the pipeline against a small embedded program,
// the way a smoke-test binary would, and is not meant to replace that
// front end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"shrinker/internal/classfile"
	"shrinker/internal/diagnostics"
	"shrinker/internal/driver"
	"shrinker/internal/inline"
	"shrinker/internal/ir"
	"shrinker/internal/keep"
	"shrinker/internal/keeprules"
	"shrinker/internal/mapping"
	"shrinker/internal/merge"
	"shrinker/internal/symbol"
)

func main() {
	minify := flag.Bool("minify", true, "enable symbol renaming")
	rulesPath := flag.String("rules", "", "path to a keep-rule file (keep/keepclassmembers/dontwarn, one per line)")
	poolSize := flag.Int("workers", 0, "worker pool size (0 = GOMAXPROCS)")
	flag.Parse()

	rulesText := ""
	if *rulesPath != "" {
		b, err := os.ReadFile(*rulesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shrinker: reading rules: %v\n", err)
			os.Exit(1)
		}
		rulesText = string(b)
	}

	if err := run(*minify, rulesText, *poolSize); err != nil {
		fmt.Fprintf(os.Stderr, "shrinker: %v\n", err)
		os.Exit(1)
	}
}

func run(minify bool, rulesText string, poolSize int) error {
	rules, err := keeprules.Parse(rulesText)
	if err != nil {
		return fmt.Errorf("parsing keep rules: %w", err)
	}

	pool := symbol.NewPool()
	root := pool.Intern("Ljava/lang/Object;")
	program := buildDemoProgram(pool, root)

	originalSnapshot := snapshot(program)
	view := classfile.NewView(pool, root, program, nil)

	oracle := keep.NewOracle(rules, keep.Options{Minify: minify})
	sink := diagnostics.NewSink()

	mergeCtx := &merge.Context{View: view, Oracle: oracle, ClassName: dottedName}
	mergePass := &driver.MergePass{Merger: merge.NewMerger(pool), Ctx: mergeCtx}

	inliner := &inline.Inliner{
		View:      view,
		Oracle:    oracle,
		Sink:      sink,
		Budget:    inline.Budget{Ceiling: 4096},
		ClassName: dottedName,
	}
	inlinePass := &driver.InlinePass{Inliner: inliner}

	d := driver.New(oracle, sink, driver.Options{Minify: minify, WorkerPoolSize: poolSize}, mergePass, inlinePass)

	stack, summary, err := d.Run(context.Background(), view)
	for _, diag := range sink.All() {
		fmt.Fprintln(os.Stderr, diag.Error())
	}
	if err != nil {
		return err
	}
	if sink.HasFatal() {
		return fmt.Errorf("compilation aborted: fatal diagnostics reported")
	}

	fmt.Println(summary.String())
	fmt.Print(mapping.Format(originalSnapshot, stack))
	return nil
}

// buildDemoProgram constructs spec.md §8 Scenario C's two value
// holders — two final classes directly extending the root type, each
// with one constructor storing its sole argument — since this binary
// has no reader collaborator wired in to load a real class-file set.
func buildDemoProgram(pool *symbol.Pool, root *symbol.Type) []*classfile.ClassDefinition {
	return []*classfile.ClassDefinition{
		valueHolder(pool, root, "com/example/A", "x"),
		valueHolder(pool, root, "com/example/B", "y"),
	}
}

func valueHolder(pool *symbol.Pool, root *symbol.Type, name, fieldName string) *classfile.ClassDefinition {
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
		Type:   ty,
		Super:  root,
		Access: classfile.AccFinal,
		Fields: []*classfile.FieldDefinition{
			{Ref: fieldRef, Access: classfile.AccFinal},
		},
		Methods: []*classfile.MethodDefinition{
			{Ref: ctorRef, Code: g},
		},
	}
}

// snapshot copies each class's Type and Methods slice header (not a
// deep clone of the IR) so the mapping writer can report against the
// program as it existed before any pass ran, even though the passes
// below mutate the ClassDefinition values in place.
func snapshot(program []*classfile.ClassDefinition) []*classfile.ClassDefinition {
	out := make([]*classfile.ClassDefinition, len(program))
	for i, c := range program {
		methods := make([]*classfile.MethodDefinition, len(c.Methods))
		for j, m := range c.Methods {
			mc := *m
			methods[j] = &mc
		}
		out[i] = &classfile.ClassDefinition{Type: c.Type, Methods: methods}
	}
	return out
}

func dottedName(t *symbol.Type) string {
	s := t.String()
	if len(s) >= 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "/", ".")
}
