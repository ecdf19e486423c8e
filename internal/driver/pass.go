package driver

import (
	"context"

	"shrinker/internal/classfile"
	"shrinker/internal/lens"
)

// Pass is the uniform capability every stage of the fixed ordering in
// spec.md §4.5 implements, matching the "dynamic dispatch among
// optimization passes" design note in spec.md §9: the driver treats
// passes as an ordered list of this one capability, with no runtime
// reflection involved.
type Pass interface {
	// Name identifies the pass for diagnostics, toggles, and the
	// end-of-run summary.
	Name() string
	// Run executes the pass against view, optionally using sched to
	// dispatch per-item work, and returns the lens it produced. A pass
	// that renames, moves, or reshapes no symbol returns a nil lens
	// (spec.md §4.5: "does not emit lens").
	Run(ctx context.Context, view *classfile.View, sched *Scheduler) (*lens.Lens, error)
}

// stubPass stands in for a pass named by spec.md §4.5's fixed
// ordering whose full algorithm is outside this core's scope (tree
// shaking, vertical merging, enum unboxing, proto normalization,
// minification each warrant their own subsystem at the scale this
// repo budgets for the lens/merger/inliner stack alone). It upholds
// the ordering contract — the driver still invokes it at its fixed
// position and would compose any lens it produced — without
// asserting a specific rewriting.
type stubPass struct {
	name string
}

// NewStubPass builds a placeholder for an out-of-core-scope pass that
// still needs a slot in the fixed ordering.
func NewStubPass(name string) Pass { return stubPass{name: name} }

func (s stubPass) Name() string { return s.name }

func (s stubPass) Run(context.Context, *classfile.View, *Scheduler) (*lens.Lens, error) {
	return nil, nil
}
