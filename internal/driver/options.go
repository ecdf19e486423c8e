// Package driver implements the whole-program driver (spec.md §4.5,
// §5): it sequences optimization passes in a fixed order, rebuilds
// the application view after each lens-producing pass, and dispatches
// per-method and per-class work onto a bounded worker pool. Its
// dispatch primitives are a direct generalization of the teacher's
// hand-rolled ConcurrencyModule (internal/concurrency/concurrency.go
// in sentra-language-sentra) onto golang.org/x/sync's errgroup and
// semaphore, the ecosystem's version of the same "run N independent
// work-items, fail fast, wait for all" shape.
package driver

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options mirrors spec.md §6's option bag: the toggles every pass
// consults to decide how aggressively it may rewrite the program.
type Options struct {
	// Minify enables renaming; without it, merging and inlining still
	// run (neither requires choosing a new name for anything), but no
	// lens in the run introduces a shortened name.
	Minify bool

	// TargetAPILevel gates API-level-sensitive rewrites; unused by
	// the merger and inliner themselves but threaded through so a
	// future pass (enum unboxing, proto normalization) can consult it
	// without changing the Options shape again.
	TargetAPILevel int

	// MainDexRules is true when the run must keep every optimized
	// class assignable to a dex partition compatible with its
	// sources. Nothing in the driver reads it; the merger's
	// MainDexCompatible policy reads merge.Context.MainDexPartition.
	MainDexRules bool

	// Desugaring reports whether the input already went through
	// desugaring; carried for parity with spec.md §6's option bag
	// even though no pass in this core branches on it yet.
	Desugaring bool

	// PassToggles disables an individual pass by name
	// ("vertical-merge", "horizontal-merge", "enum-unboxing",
	// "proto-normalization", "class-inline", "minification"). A pass
	// absent from the map runs.
	PassToggles map[string]bool

	// WorkerPoolSize bounds how many work-items run concurrently per
	// pass (spec.md §5's "worker pool sized from configuration").
	// Zero means GOMAXPROCS-equivalent; the Scheduler treats <=0 as
	// "use runtime.GOMAXPROCS(0)".
	WorkerPoolSize int

	// InlineBudget is carried in the option bag; nothing in the
	// driver reads it. The class inliner's combined forced-inline
	// size ceiling is inline.Inliner.Budget.
	InlineBudget int
}

func (o Options) passEnabled(name string) bool {
	if o.PassToggles == nil {
		return true
	}
	enabled, explicit := o.PassToggles[name]
	return !explicit || enabled
}

// DisabledPasses reports every pass explicitly turned off in
// PassToggles, sorted for a stable config-summary line regardless of
// map iteration order.
func (o Options) DisabledPasses() []string {
	var out []string
	for name := range maps.Keys(o.PassToggles) {
		if !o.PassToggles[name] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
