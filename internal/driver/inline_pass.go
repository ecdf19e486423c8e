package driver

import (
	"context"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"shrinker/internal/classfile"
	"shrinker/internal/inline"
	"shrinker/internal/lens"
)

// methodWorkItem pairs a method with its declaring class, the unit
// spec.md §5 dispatches one per method for per-method IR work: "the
// region is the method's IR plus its optimization-info slot."
type methodWorkItem struct {
	Owner  *classfile.ClassDefinition
	Method *classfile.MethodDefinition
}

// InlinePass wraps the class inliner (spec.md §4.4) as a driver Pass.
// It never emits a lens (spec.md §4.5 step 6: "does not emit lens")
// but does require one to be in effect for reading already-renamed
// references, which the driver guarantees by running it after every
// earlier lens-producing pass's view rebuild.
type InlinePass struct {
	Inliner *inline.Inliner
	// Inlined counts allocations eliminated across the whole pass,
	// read after Run returns; driven by an atomic counter since every
	// work-item runs concurrently.
	Inlined int64
}

func (p *InlinePass) Name() string { return "class-inline" }

func (p *InlinePass) Run(ctx context.Context, view *classfile.View, sched *Scheduler) (*lens.Lens, error) {
	var items []methodWorkItem
	for _, c := range view.ProgramClasses() {
		for _, m := range c.Methods {
			if m.Code != nil {
				items = append(items, methodWorkItem{Owner: c, Method: m})
			}
		}
	}
	// Sorted by (class descriptor, method key) so a run's diagnostic
	// ordering and the end-of-run summary are deterministic regardless
	// of map iteration order or goroutine scheduling (spec.md §6:
	// "determinism is achieved by sorted iteration orders").
	slices.SortFunc(items, func(a, b methodWorkItem) int {
		ak, bk := a.Owner.Type.String()+"#"+a.Method.Ref.Key(), b.Owner.Type.String()+"#"+b.Method.Ref.Key()
		switch {
		case ak < bk:
			return -1
		case ak > bk:
			return 1
		default:
			return 0
		}
	})

	var inlined int64
	err := Dispatch(ctx, sched, items, func(_ context.Context, it methodWorkItem) error {
		n := p.Inliner.Run(it.Owner, it.Method)
		if n > 0 {
			atomic.AddInt64(&inlined, int64(n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Inlined = inlined
	return nil, nil
}
