package merge

import (
	"shrinker/internal/classfile"
	"shrinker/internal/lens"
	"shrinker/internal/symbol"
)

// Merger is the horizontal-class-merging pass entry point (spec.md
// §4.3): candidates are filtered by the single-class policy pipeline,
// bucketed structurally, split further by the multi-class policy
// pipeline, and every surviving group of two or more is fused into
// one target class.
type Merger struct {
	Pool             *symbol.Pool
	SingleClassRules []SingleClassPolicy
	MultiClassRules  []MultiClassPolicy
}

// NewMerger builds a Merger running the default policy pipelines.
func NewMerger(pool *symbol.Pool) *Merger {
	return &Merger{
		Pool:             pool,
		SingleClassRules: DefaultSingleClassPolicies(),
		MultiClassRules:  DefaultMultiClassPolicies(),
	}
}

// Result is one Merger invocation's outcome.
type Result struct {
	Lens    *lens.Lens
	Fusions []*Fusion
}

// Run evaluates every program class in view against the policy
// pipeline, fuses the surviving groups, and folds every fusion's
// rewrites into the single lens the pass produces (spec.md §4.5: one
// lens per pass).
func (mg *Merger) Run(view *classfile.View, ctx *Context) (*Result, error) {
	var candidates []*classfile.ClassDefinition
	for _, c := range view.ProgramClasses() {
		if c.Library || c.IsEmpty() {
			continue
		}
		if mg.allSingleClassPoliciesAllow(c, ctx) {
			candidates = append(candidates, c)
		}
	}
	sortByDescriptor(candidates)

	var groups [][]*classfile.ClassDefinition
	for _, bucket := range Bucket(candidates) {
		groups = append(groups, mg.split(bucket, ctx)...)
	}

	b := lens.NewBuilder("horizontal-merge")
	var fusions []*Fusion
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		fusion, err := Fuse(group, mg.Pool, b)
		if err != nil {
			return nil, err
		}
		fusions = append(fusions, fusion)
	}

	if len(fusions) == 0 {
		return &Result{}, nil
	}

	built, err := b.Build()
	if err != nil {
		return nil, err
	}

	for _, fusion := range fusions {
		for _, src := range fusion.Sources {
			view.RemoveProgramClass(src.Type)
		}
		view.AddProgramClass(fusion.Target)
	}

	return &Result{Lens: built, Fusions: fusions}, nil
}

func (mg *Merger) allSingleClassPoliciesAllow(c *classfile.ClassDefinition, ctx *Context) bool {
	for _, p := range mg.SingleClassRules {
		if !p.Allows(c, ctx) {
			return false
		}
	}
	return true
}

// split applies every multi-class policy to bucket, in order, each
// one free to shatter the groups the previous policy produced.
func (mg *Merger) split(bucket []*classfile.ClassDefinition, ctx *Context) [][]*classfile.ClassDefinition {
	groups := [][]*classfile.ClassDefinition{bucket}
	for _, p := range mg.MultiClassRules {
		var next [][]*classfile.ClassDefinition
		for _, g := range groups {
			next = append(next, p.Partition(g, ctx)...)
		}
		groups = next
	}
	return groups
}
