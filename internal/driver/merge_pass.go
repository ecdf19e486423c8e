package driver

import (
	"context"

	"shrinker/internal/classfile"
	"shrinker/internal/lens"
	"shrinker/internal/merge"
)

// MergePass wraps the horizontal class merger (spec.md §4.3) as a
// driver Pass. Fusion mutates a single shared lens.Builder across
// every merge group in the run (merge.Fuse's contract), which is not
// safe to shard across goroutines the way the class inliner's
// per-method work is; the concurrency unit spec.md §5 names for
// horizontal merging — "the region is the entire merge group" — is
// upheld here by running grouping-and-fusion as one pass-wide
// work-item rather than by parallelizing across groups, since the
// groups themselves are computed from, and mutate, the same shared
// Builder. See DESIGN.md for the tradeoff.
type MergePass struct {
	Merger *merge.Merger
	Ctx    *merge.Context
}

func (p *MergePass) Name() string { return "horizontal-merge" }

func (p *MergePass) Run(ctx context.Context, view *classfile.View, sched *Scheduler) (*lens.Lens, error) {
	item := NewWorkItem("horizontal-merge:whole-program")
	var result *merge.Result
	err := Dispatch(ctx, sched, []WorkItem{item}, func(_ context.Context, _ WorkItem) error {
		r, err := p.Merger.Run(view, p.Ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result.Lens, nil
}
