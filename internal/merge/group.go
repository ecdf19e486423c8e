package merge

import (
	"sort"
	"strconv"
	"strings"

	"shrinker/internal/classfile"
)

// bucketKey computes the initial equivalence-class key for a class:
// classes sharing a superclass, interface set, access-modifier
// equivalence, and instance-field-layout compatibility are bucketed
// together before the multi-class policy stage splits buckets
// further (spec.md §4.3).
func bucketKey(c *classfile.ClassDefinition) string {
	var b strings.Builder
	b.WriteString(c.Super.String())
	b.WriteByte('|')

	ifaces := make([]string, len(c.Interfaces))
	for i, iface := range c.Interfaces {
		ifaces[i] = iface.String()
	}
	sort.Strings(ifaces)
	b.WriteString(strings.Join(ifaces, ","))
	b.WriteByte('|')

	b.WriteString(accessEquivalenceClass(c.Access))
	b.WriteByte('|')

	b.WriteString(fieldLayoutKey(c))
	return b.String()
}

// accessEquivalenceClass buckets access flags coarsely: visibility
// (public vs not), finality, abstractness and interface-ness matter
// for whether two classes can share one merged representation; the
// synthetic flag and every other flag are ignored.
func accessEquivalenceClass(flags classfile.AccessFlags) string {
	var b strings.Builder
	if flags.Has(classfile.AccPublic) {
		b.WriteByte('P')
	}
	if flags.IsFinal() {
		b.WriteByte('F')
	}
	if flags.IsAbstract() {
		b.WriteByte('A')
	}
	if flags.IsInterface() {
		b.WriteByte('I')
	}
	return b.String()
}

// fieldLayoutKey summarizes a class's instance-field type sequence
// followed by its method count; two classes that declare the same
// instance-field types in the same order and the same number of
// methods get the same key.
func fieldLayoutKey(c *classfile.ClassDefinition) string {
	var b strings.Builder
	for _, f := range c.Fields {
		if f.Access.IsStatic() {
			continue
		}
		b.WriteString(f.Ref.Type.String())
		b.WriteByte(',')
	}
	b.WriteByte('#')
	b.WriteString(strconv.Itoa(len(c.Methods)))
	return b.String()
}

// Bucket groups candidates by bucketKey, returning buckets in a
// deterministic order (lexicographic on the bucket's lexicographically
// smallest member descriptor) so the merger's output never depends on
// iteration-order nondeterminism.
func Bucket(candidates []*classfile.ClassDefinition) [][]*classfile.ClassDefinition {
	buckets := make(map[string][]*classfile.ClassDefinition)
	for _, c := range candidates {
		key := bucketKey(c)
		buckets[key] = append(buckets[key], c)
	}
	out := make([][]*classfile.ClassDefinition, 0, len(buckets))
	for _, group := range buckets {
		sortByDescriptor(group)
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][0].Type.String() < out[j][0].Type.String()
	})
	return out
}

// sortByDescriptor orders a group lexicographically by class
// descriptor, the fixed tie-break spec.md §6 requires ("sorted
// iteration orders and fixed tie-breaks, lexicographic on
// descriptor").
func sortByDescriptor(classes []*classfile.ClassDefinition) {
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Type.String() < classes[j].Type.String()
	})
}
