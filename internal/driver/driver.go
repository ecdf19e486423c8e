package driver

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"shrinker/internal/classfile"
	"shrinker/internal/diagnostics"
	"shrinker/internal/keep"
	"shrinker/internal/lens"
)

// Driver sequences passes in the fixed order spec.md §4.5 requires,
// rebuilds the application view after each lens-producing pass, and
// invalidates nothing this core caches beyond the oracle's own
// per-symbol cache (which is keyed on the pre-existing *symbol.Type
// pointer and stays valid: renaming never mints a new Type for an
// existing symbol, it only points the lens at a different one).
type Driver struct {
	Oracle  *keep.Oracle
	Sink    *diagnostics.Sink
	Options Options

	// passes is the fixed order from spec.md §4.5. Only horizontal
	// merging and the class inliner are this core's in-scope
	// algorithms; the rest are stubPass placeholders that preserve the
	// ordering contract (see pass.go).
	passes []Pass
}

// New builds a driver over the fixed pass ordering, with the concrete
// merge and inline passes supplied by the caller (they need a
// fully-built merge.Context and inline.Inliner, which depend on the
// view the driver doesn't own) and every other pass stubbed.
func New(oracle *keep.Oracle, sink *diagnostics.Sink, opts Options, mergePass, inlinePass Pass) *Driver {
	return &Driver{
		Oracle:  oracle,
		Sink:    sink,
		Options: opts,
		passes: []Pass{
			NewStubPass("tree-shaking"),
			NewStubPass("vertical-merge"),
			mergePass,
			NewStubPass("enum-unboxing"),
			NewStubPass("proto-normalization"),
			inlinePass,
			NewStubPass("minification"),
		},
	}
}

// Summary reports the counts an end-of-run diagnostic surfaces to the
// user (spec.md §7: diagnostics accumulate; this is the driver's own
// bookkeeping, not a fatal/warning diagnostic itself).
type Summary struct {
	PassesRun      []string
	PassesSkipped  []string
	ClassesRemoved int
	MethodsRemoved int
}

// String renders the summary the way a batch compiler reports its
// work at the end of a run, using humanize for the comma-grouped
// counts the way a CLI's final println would.
func (s Summary) String() string {
	return fmt.Sprintf("passes: %s (skipped: %s); removed %s classes, %s methods",
		fmt.Sprint(s.PassesRun),
		fmt.Sprint(s.PassesSkipped),
		humanize.Comma(int64(s.ClassesRemoved)),
		humanize.Comma(int64(s.MethodsRemoved)),
	)
}

// Run executes every pass in order against view, composing each
// lens-producing pass's output onto stack and rebuilding already-
// compiled method bodies to reference the post-rename symbols before
// the next pass runs (spec.md §4.5: "the driver atomically rebuilds
// the application view with the new lens composed onto the top of the
// stack"). It aborts, discarding in-flight results, the moment any
// pass reports a fatal diagnostic (spec.md §5's cancellation model:
// "abort the whole driver").
func (d *Driver) Run(ctx context.Context, view *classfile.View) (*lens.Stack, Summary, error) {
	stack := lens.NewStack()
	sched := NewScheduler(d.Options.WorkerPoolSize)
	skipped := d.Options.DisabledPasses()

	var ran []string
	for _, p := range d.passes {
		if !d.Options.passEnabled(p.Name()) {
			continue
		}
		l, err := p.Run(ctx, view, sched)
		if err != nil {
			return stack, Summary{PassesRun: ran, PassesSkipped: skipped}, errors.Wrapf(err, "driver: pass %q failed", p.Name())
		}
		ran = append(ran, p.Name())

		if l != nil {
			if err := stack.Push(l); err != nil {
				d.Sink.Report(diagnostics.WrapInvariantViolation(err,
					fmt.Sprintf("pass %q produced a lens that could not be composed onto the stack", p.Name()),
					diagnostics.Location{}))
				return stack, Summary{PassesRun: ran, PassesSkipped: skipped}, errors.Wrapf(err, "driver: pass %q: lens composition", p.Name())
			}
			rebuildView(view, stack)
		}

		if d.Sink.HasFatal() {
			return stack, Summary{PassesRun: ran, PassesSkipped: skipped}, fmt.Errorf("driver: pass %q reported a fatal diagnostic", p.Name())
		}
	}

	classesRemoved, methodsRemoved := d.finalize(view)
	return stack, Summary{PassesRun: ran, PassesSkipped: skipped, ClassesRemoved: classesRemoved, MethodsRemoved: methodsRemoved}, nil
}

// rebuildView walks every surviving program method's IR and rewrites
// every reference through the now-current lens stack, the per-pass
// step spec.md §4.5 requires before the next pass is allowed to run.
func rebuildView(view *classfile.View, stack *lens.Stack) {
	classes := view.ProgramClasses()
	slices.SortFunc(classes, func(a, b *classfile.ClassDefinition) int {
		switch {
		case a.Type.String() < b.Type.String():
			return -1
		case a.Type.String() > b.Type.String():
			return 1
		default:
			return 0
		}
	})
	for _, c := range classes {
		for _, m := range c.Methods {
			if m.Code != nil {
				lens.RewriteGraph(m.Code, stack)
			}
		}
	}
}

// finalize applies spec.md §8's two boundary removals: a method with
// zero live instructions is dropped outright, and a class left with
// no members is dropped unless pinned. Both checks run once, after
// every pass, rather than per-pass, since an inlined allocation's
// owning class might only become empty after the inliner's own pass
// finishes with it.
func (d *Driver) finalize(view *classfile.View) (classesRemoved, methodsRemoved int) {
	for _, c := range view.ProgramClasses() {
		live := c.Methods[:0]
		for _, m := range c.Methods {
			if m.Code != nil && m.Code.IsEmpty() {
				methodsRemoved++
				continue
			}
			live = append(live, m)
		}
		c.Methods = live

		if c.IsEmpty() {
			name := c.Type.String()
			if !d.Oracle.Query(c.Type, name).Pinned {
				view.RemoveProgramClass(c.Type)
				classesRemoved++
			}
		}
	}
	return classesRemoved, methodsRemoved
}
