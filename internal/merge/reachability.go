package merge

import (
	"sort"

	"golang.org/x/tools/container/intsets"

	"shrinker/internal/classfile"
	"shrinker/internal/keep"
	"shrinker/internal/symbol"
)

// ExpandRuntimeCheckedClosure takes the set of types a bytecode scan
// found under direct instanceof/checkcast/reflective-name lookup and
// grows it to every subtype of each seed: a check against Foo is
// satisfied by any instance of a class that extends or implements
// Foo, so merging one of those subtypes into an unrelated class is
// just as observable as merging Foo itself would be. NoDirectRuntimeTypeChecks
// must reject the whole closure, not only the exact types a checked
// bytecode instruction names.
//
// Classes get dense ids (lexicographic on descriptor, for determinism)
// and the subtype relation is walked breadth-first with intsets.Sparse
// membership sets, the technique the retrieved SSA-lifting pass uses
// for its dominance-frontier worklist.
func ExpandRuntimeCheckedClosure(h *classfile.Hierarchy, seeds map[*symbol.Type]bool) map[*symbol.Type]bool {
	all := h.All()
	sort.Slice(all, func(i, j int) bool { return all[i].Type.String() < all[j].Type.String() })

	idOf := make(map[*symbol.Type]int, len(all))
	typeOf := make([]*symbol.Type, len(all))
	for i, c := range all {
		idOf[c.Type] = i
		typeOf[i] = c.Type
	}

	// children[i] holds the dense ids of every class directly
	// extending or implementing class i.
	children := make([]intsets.Sparse, len(all))
	for i, c := range all {
		if c.Super != nil {
			if si, ok := idOf[c.Super]; ok {
				children[si].Insert(i)
			}
		}
		for _, iface := range c.Interfaces {
			if si, ok := idOf[iface]; ok {
				children[si].Insert(i)
			}
		}
	}

	var visited, frontier intsets.Sparse
	for t := range seeds {
		if !seeds[t] {
			continue
		}
		if id, ok := idOf[t]; ok {
			frontier.Insert(id)
		}
	}
	visited.Copy(&frontier)

	for !frontier.IsEmpty() {
		var next intsets.Sparse
		frontier.Do(func(i int) {
			var reachable intsets.Sparse
			reachable.Copy(&children[i])
			reachable.DifferenceWith(&visited)
			next.UnionWith(&reachable)
		})
		if next.IsEmpty() {
			break
		}
		visited.UnionWith(&next)
		frontier.Copy(&next)
	}

	out := make(map[*symbol.Type]bool, visited.Len())
	visited.Do(func(i int) { out[typeOf[i]] = true })
	return out
}

// NewContextWithRuntimeCheckedSeeds builds a Context whose
// RuntimeCheckedTypes is the full subtype closure of seeds, the form
// the NoDirectRuntimeTypeChecks policy expects rather than the bare
// scan result a reader would hand in.
func NewContextWithRuntimeCheckedSeeds(view *classfile.View, oracle *keep.Oracle, seeds map[*symbol.Type]bool, className func(*symbol.Type) string) *Context {
	return &Context{
		View:                view,
		Oracle:              oracle,
		RuntimeCheckedTypes: ExpandRuntimeCheckedClosure(view.Hierarchy, seeds),
		ClassName:           className,
	}
}
