package merge

import "shrinker/internal/classfile"

// SingleClassPolicy is a pure predicate over one class. A candidate
// that fails any policy in the pipeline, in order, is rejected
// outright (spec.md §4.3).
type SingleClassPolicy interface {
	Name() string
	Allows(c *classfile.ClassDefinition, ctx *Context) bool
}

// MultiClassPolicy is a pure predicate over an unordered set of
// classes that have already survived every single-class policy and
// been bucketed together. It may split the bucket into smaller
// compatible groups; a policy that finds the whole bucket compatible
// returns it as a single-element slice containing the input group
// unchanged.
type MultiClassPolicy interface {
	Name() string
	Partition(group []*classfile.ClassDefinition, ctx *Context) [][]*classfile.ClassDefinition
}

// DefaultSingleClassPolicies returns the pipeline spec.md §4.3 names,
// in the fixed order the spec requires (later policies may assume
// earlier ones already filtered out ineligible cases).
func DefaultSingleClassPolicies() []SingleClassPolicy {
	return []SingleClassPolicy{
		notPinnedPolicy{},
		noInnerClassesPolicy{},
		notVerticallyMergedPolicy{},
		noDirectRuntimeTypeChecksPolicy{},
	}
}

// DefaultMultiClassPolicies returns the multi-class stage of the
// pipeline.
func DefaultMultiClassPolicies() []MultiClassPolicy {
	return []MultiClassPolicy{
		mainDexCompatiblePolicy{},
	}
}

type notPinnedPolicy struct{}

func (notPinnedPolicy) Name() string { return "NotPinned" }
func (notPinnedPolicy) Allows(c *classfile.ClassDefinition, ctx *Context) bool {
	return !ctx.constraint(c.Type).Pinned && ctx.constraint(c.Type).MayMerge()
}

type noInnerClassesPolicy struct{}

func (noInnerClassesPolicy) Name() string { return "NoInnerClasses" }
func (noInnerClassesPolicy) Allows(c *classfile.ClassDefinition, _ *Context) bool {
	return len(c.InnerClasses) == 0
}

type notVerticallyMergedPolicy struct{}

func (notVerticallyMergedPolicy) Name() string { return "NotVerticallyMergedIntoSubtype" }
func (notVerticallyMergedPolicy) Allows(c *classfile.ClassDefinition, _ *Context) bool {
	return !c.VerticallyMergedIntoSubtype
}

type noDirectRuntimeTypeChecksPolicy struct{}

func (noDirectRuntimeTypeChecksPolicy) Name() string { return "NoDirectRuntimeTypeChecks" }
func (noDirectRuntimeTypeChecksPolicy) Allows(c *classfile.ClassDefinition, ctx *Context) bool {
	return !ctx.runtimeChecked(c.Type)
}

// mainDexCompatiblePolicy splits a bucket by required dex partition:
// only classes sharing the same partition requirement may merge
// together, since the result must land in a single dex file.
type mainDexCompatiblePolicy struct{}

func (mainDexCompatiblePolicy) Name() string { return "MainDexCompatible" }
func (mainDexCompatiblePolicy) Partition(group []*classfile.ClassDefinition, ctx *Context) [][]*classfile.ClassDefinition {
	buckets := make(map[string][]*classfile.ClassDefinition)
	var order []string
	for _, c := range group {
		key := ctx.mainDexPartition(c.Type)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], c)
	}
	out := make([][]*classfile.ClassDefinition, 0, len(buckets))
	for _, key := range order {
		out = append(out, buckets[key])
	}
	return out
}
