package lens

import (
	"fmt"

	"shrinker/internal/ir"
	"shrinker/internal/symbol"
)

// InvokeKindFunc overrides the invoke-kind translation for the
// methods a Lens rewrites (spec.md §4.1: "some rewritings promote
// virtual calls to static"). It receives the pre-lens method
// reference and the invoke kind as resolved by every earlier lens,
// and returns the kind a caller should now use.
type InvokeKindFunc func(pre symbol.MethodReference, old ir.InvokeKind) ir.InvokeKind

// Builder accumulates the rewrite maps for one pass before the pass
// finishes and the driver calls Build. A Builder is built against a
// single, fixed pre-push ApplicationView; it is never handed an
// already-pushed lens to mutate further.
type Builder struct {
	types        map[*symbol.Type]*symbol.Type
	fields       map[symbol.FieldReference]symbol.FieldReference
	methods      map[symbol.MethodReference]symbol.MethodReference
	protoChanges map[symbol.MethodReference]*PrototypeChange
	invokeKind   InvokeKindFunc
	origin       string
}

// NewBuilder starts a lens under construction. origin names the pass
// producing it (e.g. "horizontal-merge", "enum-unboxing") and is
// carried through purely for diagnostics.
func NewBuilder(origin string) *Builder {
	return &Builder{
		types:        make(map[*symbol.Type]*symbol.Type),
		fields:       make(map[symbol.FieldReference]symbol.FieldReference),
		methods:      make(map[symbol.MethodReference]symbol.MethodReference),
		protoChanges: make(map[symbol.MethodReference]*PrototypeChange),
		origin:       origin,
	}
}

// MapType records a type rename.
func (b *Builder) MapType(from, to *symbol.Type) { b.types[from] = to }

// MapField records a field rename/relocation.
func (b *Builder) MapField(from, to symbol.FieldReference) { b.fields[from] = to }

// MapMethod records a method rename/relocation. If proto is non-nil
// and non-empty, it is attached to the rewrite. Build does not check
// it against other lenses; Stack.Push rejects the lens if more than
// one entry across the WHOLE composed stack would then carry a
// non-empty prototype change for the same ultimate method (spec.md
// §4.1, §8 property 5).
func (b *Builder) MapMethod(from, to symbol.MethodReference, proto *PrototypeChange) {
	b.methods[from] = to
	if !proto.IsEmpty() {
		b.protoChanges[from] = proto
	}
}

// SetInvokeKind installs the invoke-kind override function for this
// lens. At most one is active per lens; later calls replace it.
func (b *Builder) SetInvokeKind(f InvokeKindFunc) { b.invokeKind = f }

// injectiveTypes reports whether m contains no two keys mapping to the
// same value — spec.md §4.1's build-time injectivity check.
func injectiveTypes(m map[*symbol.Type]*symbol.Type) error {
	seen := make(map[*symbol.Type]*symbol.Type, len(m))
	for k, v := range m {
		if prior, ok := seen[v]; ok && prior != k {
			return fmt.Errorf("lens type map is not injective: %s and %s both map to %s", prior, k, v)
		}
		seen[v] = k
	}
	return nil
}

func injectiveFields(m map[symbol.FieldReference]symbol.FieldReference) error {
	seen := make(map[symbol.FieldReference]symbol.FieldReference, len(m))
	for k, v := range m {
		if prior, ok := seen[v]; ok && prior != k {
			return fmt.Errorf("lens field map is not injective: %s and %s both map to %s", prior, k, v)
		}
		seen[v] = k
	}
	return nil
}

func injectiveMethods(m map[symbol.MethodReference]symbol.MethodReference) error {
	seen := make(map[symbol.MethodReference]symbol.MethodReference, len(m))
	for k, v := range m {
		if prior, ok := seen[v]; ok && prior != k {
			return fmt.Errorf("lens method map is not injective: %s and %s both map to %s", prior, k, v)
		}
		seen[v] = k
	}
	return nil
}

// Build validates the accumulated maps and freezes them into an
// immutable Lens. It does not check the single-prototype-change
// invariant across the whole stack — that check happens in
// Stack.Push, which has the full history.
func (b *Builder) Build() (*Lens, error) {
	if err := injectiveTypes(b.types); err != nil {
		return nil, err
	}
	if err := injectiveFields(b.fields); err != nil {
		return nil, err
	}
	if err := injectiveMethods(b.methods); err != nil {
		return nil, err
	}
	return &Lens{
		origin:       b.origin,
		types:        b.types,
		fields:       b.fields,
		methods:      b.methods,
		protoChanges: b.protoChanges,
		invokeKind:   b.invokeKind,
	}, nil
}

// Lens is one immutable symbol-rewriting record, built against a
// single pre-push view. It is the ONLY mechanism by which a pass
// communicates renames to the rest of the pipeline (spec.md §4.1).
type Lens struct {
	origin       string
	types        map[*symbol.Type]*symbol.Type
	fields       map[symbol.FieldReference]symbol.FieldReference
	methods      map[symbol.MethodReference]symbol.MethodReference
	protoChanges map[symbol.MethodReference]*PrototypeChange
	invokeKind   InvokeKindFunc
}

// Origin names the pass that produced this lens.
func (l *Lens) Origin() string { return l.origin }

func (l *Lens) mapType(t *symbol.Type) *symbol.Type {
	if to, ok := l.types[t]; ok {
		return to
	}
	return t
}

func (l *Lens) mapField(f symbol.FieldReference) symbol.FieldReference {
	f.Holder = l.mapType(f.Holder)
	if to, ok := l.fields[f]; ok {
		return to
	}
	return f
}

func (l *Lens) mapMethod(m symbol.MethodReference) (symbol.MethodReference, *PrototypeChange) {
	rewritten := m
	rewritten.Holder = l.mapType(m.Holder)
	params := make([]*symbol.Type, len(m.Signature.Params))
	for i, p := range m.Signature.Params {
		params[i] = l.mapType(p)
	}
	rewritten.Signature = symbol.MethodSignature{
		Name:   m.Signature.Name,
		Params: params,
		Return: l.mapType(m.Signature.Return),
	}
	if to, ok := l.methods[m]; ok {
		return to, l.protoChanges[m]
	}
	return rewritten, l.protoChanges[m]
}
