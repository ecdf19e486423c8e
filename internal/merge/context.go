// Package merge implements the policy-driven horizontal class merger
// (spec.md §4.3): an ordered battery of single-class and multi-class
// policies partitions candidate classes into merge groups, and the
// fusion step rewrites each group into one target class plus a lens.
package merge

import (
	"shrinker/internal/classfile"
	"shrinker/internal/keep"
	"shrinker/internal/symbol"
)

// Context carries everything a policy needs to decide whether a
// class, or a candidate group, is eligible. It is built once per
// merge pass invocation and shared read-only across every policy and
// every worker evaluating a bucket concurrently.
type Context struct {
	View   *classfile.View
	Oracle *keep.Oracle

	// RuntimeCheckedTypes holds every type that live bytecode somewhere
	// subjects to instanceof/checkcast or reflective-name lookup; the
	// NoDirectRuntimeTypeChecks policy rejects any class in this set.
	RuntimeCheckedTypes map[*symbol.Type]bool

	// MainDexPartition assigns each class its required dex partition
	// (e.g. "main" or "secondary"); MainDexCompatible rejects merging
	// classes assigned to different partitions.
	MainDexPartition map[*symbol.Type]string

	// ClassName resolves a Type to the dotted name the Keep Oracle's
	// rule patterns are written against.
	ClassName func(*symbol.Type) string
}

func (ctx *Context) className(t *symbol.Type) string {
	if ctx.ClassName != nil {
		return ctx.ClassName(t)
	}
	return t.String()
}

func (ctx *Context) constraint(t *symbol.Type) keep.Constraint {
	return ctx.Oracle.Query(t, ctx.className(t))
}

func (ctx *Context) mainDexPartition(t *symbol.Type) string {
	if ctx.MainDexPartition == nil {
		return ""
	}
	return ctx.MainDexPartition[t]
}

func (ctx *Context) runtimeChecked(t *symbol.Type) bool {
	return ctx.RuntimeCheckedTypes != nil && ctx.RuntimeCheckedTypes[t]
}
