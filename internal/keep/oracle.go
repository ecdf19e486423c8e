// Package keep implements the Keep/Pinning Oracle (spec.md §4.2): a
// pure function of (symbol, option set, rule set) that the lens
// stack, horizontal merger, and class inliner all consult before
// touching a symbol's identity.
package keep

import (
	"sync"

	"shrinker/internal/keeprules"
	"shrinker/internal/symbol"
)

// Options is the subset of spec.md §6's option bag the oracle's
// decisions depend on.
type Options struct {
	// Minify disables every rename when false; merging and inlining
	// remain possible even without minification, since they don't by
	// themselves require choosing new names (spec.md's merge target
	// keeps one of the original descriptors).
	Minify bool
}

// Constraint is the oracle's answer for one symbol: Pinned is the
// strongest guarantee ("retain identity, prototype, and presence");
// the three weaker flags can be set independently of each other and
// of Pinned is false.
type Constraint struct {
	Pinned     bool
	NoRename   bool
	NoMerge    bool
	NoInline   bool
}

// MayRename reports whether the symbol may be given a new name.
func (c Constraint) MayRename() bool { return !c.Pinned && !c.NoRename }

// MayMerge reports whether the class may participate in horizontal
// merging.
func (c Constraint) MayMerge() bool { return !c.Pinned && !c.NoMerge }

// MayInline reports whether the class may be eliminated by the class
// inliner.
func (c Constraint) MayInline() bool { return !c.Pinned && !c.NoInline }

// Oracle evaluates keep rules against class names. It never mutates
// state beyond its own result cache, which is safe for concurrent use
// from every pass; two goroutines racing to populate the same cache
// entry simply compute the same pure answer twice.
type Oracle struct {
	rules []keeprules.Rule
	opts  Options

	cache sync.Map // *symbol.Type -> Constraint
}

// NewOracle builds an oracle from a parsed rule set and the active
// options.
func NewOracle(rules []keeprules.Rule, opts Options) *Oracle {
	return &Oracle{rules: rules, opts: opts}
}

// Query returns the constraint for class t, named name in the rule
// language's dotted or slashed notation (typically t.String() with
// the leading 'L'/trailing ';' stripped by the caller, or the raw
// descriptor — MatchClassPattern normalizes both forms).
func (o *Oracle) Query(t *symbol.Type, name string) Constraint {
	if cached, ok := o.cache.Load(t); ok {
		return cached.(Constraint)
	}

	c := Constraint{}
	for _, r := range o.rules {
		if !r.Matches(name) {
			continue
		}
		switch r.Kind {
		case keeprules.KeepClass:
			c.Pinned = true
		case keeprules.KeepClassMembers:
			c.NoInline = true
		}
	}
	if !o.opts.Minify {
		c.NoRename = true
	}

	o.cache.Store(t, c)
	return c
}

// DontWarn reports whether any dontwarn rule covers name. No driver
// or pass in this core calls it; the driver does not report
// references that resolve to neither program nor library.
func (o *Oracle) DontWarn(name string) bool {
	for _, r := range o.rules {
		if r.Kind == keeprules.DontWarn && r.Matches(name) {
			return true
		}
	}
	return false
}
