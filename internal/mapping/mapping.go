// Package mapping renders the residual rename map the driver hands to
// the writer collaborator (spec.md §6): the composition of every
// lens still in effect, serialized as the standard line-oriented
// proguard-style text format:
//
//	originalClass -> obfuscated:
//	    returnType originalMethod(params) -> obfuscated
//
// with optional line-number ranges, which this core never has (it
// operates on classfile.MethodDefinition bodies, not source lines;
// reconstructing ranges is the writer's job once it lowers to a
// target format that carries them).
package mapping

import (
	"sort"
	"strconv"
	"strings"

	"shrinker/internal/classfile"
	"shrinker/internal/lens"
	"shrinker/internal/symbol"
)

// Format renders the mapping for originalProgram — a snapshot of the
// program classes as they existed BEFORE any pass ran — against
// stack, the fully-composed lens stack a completed driver run
// produced. Classes are emitted in lexicographic order by original
// descriptor and methods within a class in lexicographic order by
// original signature key, the fixed tie-break spec.md §6 requires.
func Format(originalProgram []*classfile.ClassDefinition, stack *lens.Stack) string {
	classes := make([]*classfile.ClassDefinition, len(originalProgram))
	copy(classes, originalProgram)
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Type.String() < classes[j].Type.String()
	})

	var b strings.Builder
	for _, c := range classes {
		writeClass(&b, c, stack)
	}
	return b.String()
}

func writeClass(b *strings.Builder, c *classfile.ClassDefinition, stack *lens.Stack) {
	obfuscated := stack.MapType(c.Type)
	b.WriteString(dottedName(c.Type))
	b.WriteString(" -> ")
	b.WriteString(dottedName(obfuscated))
	b.WriteString(":\n")

	methods := make([]*classfile.MethodDefinition, len(c.Methods))
	copy(methods, c.Methods)
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Ref.Signature.Key() < methods[j].Ref.Signature.Key()
	})

	for _, m := range methods {
		writeMethod(b, m, stack)
	}
}

func writeMethod(b *strings.Builder, m *classfile.MethodDefinition, stack *lens.Stack) {
	mapped, proto := stack.MapMethod(m.Ref)

	returnType := m.Ref.Signature.Return
	if proto != nil && proto.NewReturn != nil {
		returnType = proto.NewReturn
	}

	params := make([]string, 0, len(m.Ref.Signature.Params))
	for _, p := range m.Ref.Signature.Params {
		params = append(params, javaTypeName(p))
	}

	b.WriteString("    ")
	b.WriteString(javaTypeName(returnType))
	b.WriteByte(' ')
	b.WriteString(m.Ref.Signature.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ","))
	b.WriteString(") -> ")
	b.WriteString(mapped.Signature.Name)
	b.WriteByte('\n')
}

// dottedName converts a "Lcom/example/Foo;" descriptor into the
// dotted notation the mapping format and the rest of the diagnostic
// surface use; non-class descriptors (primitives, arrays) pass
// through javaTypeName instead since a type in class position is
// always a reference type here.
func dottedName(t *symbol.Type) string {
	s := t.String()
	if len(s) >= 2 && s[0] == 'L' && s[len(s)-1] == ';' {
		return strings.ReplaceAll(s[1:len(s)-1], "/", ".")
	}
	return s
}

// javaTypeName converts a JVM-style type descriptor into the source-
// level spelling the mapping format uses for parameter and return
// types ("int" not "I", "com.example.Foo[]" not "[Lcom/example/Foo;").
func javaTypeName(t *symbol.Type) string {
	desc := t.String()
	dims := 0
	for len(desc) > 0 && desc[0] == '[' {
		dims++
		desc = desc[1:]
	}
	name := primitiveName(desc)
	if name == "" {
		if len(desc) >= 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
			name = strings.ReplaceAll(desc[1:len(desc)-1], "/", ".")
		} else {
			name = desc
		}
	}
	return name + strings.Repeat("[]", dims)
}

func primitiveName(desc string) string {
	switch desc {
	case "V":
		return "void"
	case "Z":
		return "boolean"
	case "B":
		return "byte"
	case "C":
		return "char"
	case "S":
		return "short"
	case "I":
		return "int"
	case "J":
		return "long"
	case "F":
		return "float"
	case "D":
		return "double"
	default:
		return ""
	}
}

// LineRange is carried for forward compatibility with the format's
// optional line-number prefix ("12:34:returnType name(...)"); this
// core never populates one since it has no source-line information,
// but a writer composing this output with its own can prepend one
// per method using FormatLineRange.
type LineRange struct {
	Start, End int
}

// FormatLineRange renders a line-range prefix the way the proguard
// format puts it before the member signature, e.g. "12:34:".
func (r LineRange) FormatLineRange() string {
	if r.Start == 0 && r.End == 0 {
		return ""
	}
	return strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End) + ":"
}
