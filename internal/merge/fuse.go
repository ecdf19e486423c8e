package merge

import (
	"fmt"

	"shrinker/internal/classfile"
	"shrinker/internal/ir"
	"shrinker/internal/lens"
	"shrinker/internal/symbol"
)

// mergeIDFieldName is the synthetic instance field a fusion installs
// on its target: a dense, per-source index that tags which original
// class a given instance stood in for (spec.md §4.3's "dispatcher
// constructor keyed on a dense class-id parameter").
const mergeIDFieldName = "$mergeId"

// Fusion is the result of folding one group of classes into a single
// target class definition, mutated in place.
type Fusion struct {
	Target  *classfile.ClassDefinition
	Sources []*classfile.ClassDefinition
}

// Fuse merges group into group[0] (the lexicographically smallest
// descriptor, the tie-break Bucket already sorted by). Every other
// member is a source folded into the target: its instance fields
// relocate onto the target under collision-avoiding names, and its
// methods relocate either verbatim (no signature collision on the
// target) or under a per-source alias when a signature is already
// occupied — the common case for the very virtual methods that made
// the classes structurally similar enough to bucket together.
//
// Every rewrite is recorded on b, the shared Builder the caller will
// Build once after fusing every group in a pass, so the pass as a
// whole produces exactly one lens (spec.md §4.5).
func Fuse(group []*classfile.ClassDefinition, pool *symbol.Pool, b *lens.Builder) (*Fusion, error) {
	if len(group) < 2 {
		return nil, fmt.Errorf("merge: Fuse requires at least two classes, got %d", len(group))
	}

	target := group[0]
	sources := group[1:]

	idField := symbol.FieldReference{
		Holder: target.Type,
		Name:   mergeIDFieldName,
		Type:   pool.Intern("I"),
	}
	if target.FindField(mergeIDFieldName) == nil {
		target.Fields = append(target.Fields, &classfile.FieldDefinition{
			Ref:    idField,
			Access: classfile.AccPrivate | classfile.AccFinal | classfile.AccSynthetic,
		})
	}

	occupiedFields := fieldNameSet(target)
	occupiedSigs := methodSigSet(target)

	// The target is member 0 of the group (spec.md §4.3 step 2: "the
	// class-id is assigned densely starting from 0 for the target").
	// Its own constructors must stamp that id explicitly too, not rely
	// on the field's implicit zero-value default, and gain the same
	// trailing class-id parameter every relocated source constructor
	// gains below.
	for _, m := range target.Methods {
		if !isConstructor(m) {
			continue
		}
		relocateConstructor(b, target, m, 0, occupiedSigs, idField)
	}

	for i, src := range sources {
		srcIdx := i
		classID := i + 1
		b.MapType(src.Type, target.Type)

		for _, f := range src.Fields {
			newName := f.Ref.Name
			if occupiedFields[newName] {
				newName = fmt.Sprintf("%s$m%d", f.Ref.Name, srcIdx)
			}
			occupiedFields[newName] = true
			relocated := f.Ref.WithHolder(target.Type).WithName(newName)
			b.MapField(f.Ref, relocated)
			target.Fields = append(target.Fields, &classfile.FieldDefinition{Ref: relocated, Access: f.Access})
		}

		for _, m := range src.Methods {
			relocateMethod(b, target, m, classID, occupiedSigs, idField)
		}
	}

	return &Fusion{Target: target, Sources: sources}, nil
}

func fieldNameSet(c *classfile.ClassDefinition) map[string]bool {
	out := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		out[f.Ref.Name] = true
	}
	return out
}

func methodSigSet(c *classfile.ClassDefinition) map[string]bool {
	out := make(map[string]bool, len(c.Methods))
	for _, m := range c.Methods {
		out[m.Ref.Signature.Key()] = true
	}
	return out
}

// relocateMethod moves one source method onto the target, recording
// the rename on b. A free signature moves over under the target's own
// name; an occupied one (virtual methods the merged classes override
// in their own way, most commonly) gets a per-source alias so the
// target can hold every variant's body side by side. Resolving which
// alias a given merged instance's virtual call should land on, using
// $mergeId, is left to the code generator that lowers this graph —
// this package guarantees every call site still resolves, through the
// lens, to a reachable method body, not that the dispatch is wired as
// bytecode here. A constructor additionally gains the trailing
// class-id parameter spec.md §4.3 step 2/4 describes; see
// relocateConstructor for the shared machinery.
func relocateMethod(b *lens.Builder, target *classfile.ClassDefinition, m *classfile.MethodDefinition, classID int, occupied map[string]bool, idField symbol.FieldReference) {
	if isConstructor(m) {
		relocateConstructor(b, target, m, classID, occupied, idField)
		return
	}

	key := m.Ref.Signature.Key()

	var newRef symbol.MethodReference
	if occupied[key] {
		newRef = symbol.MethodReference{
			Holder: target.Type,
			Signature: symbol.MethodSignature{
				Name:   fmt.Sprintf("%s$m%d", m.Ref.Signature.Name, classID),
				Params: m.Ref.Signature.Params,
				Return: m.Ref.Signature.Return,
			},
		}
	} else {
		newRef = m.Ref.WithHolder(target.Type)
		occupied[key] = true
	}

	b.MapMethod(m.Ref, newRef, nil)
	m.Ref = newRef
	target.Methods = append(target.Methods, m)
}

// relocateConstructor gives one constructor — the target's own
// (classID 0) or a relocated source's (classID srcIdx+1) — the
// trailing integer class-id parameter spec.md §4.3 step 2 specifies
// ("a dispatcher constructor taking an extra integer class-id
// parameter") and records the matching prototype-change on b (step
// 4: "prototype-change descriptions for constructors that gained the
// class-id parameter"). The target's own constructor keeps its name;
// a relocated source constructor whose original signature is already
// occupied on the target is additionally given the same per-source
// alias relocateMethod uses for colliding virtual methods, so distinct
// sources with identical constructor signatures never collide with
// each other once every constructor carries the same appended type.
// The body itself still stamps a literal class-id constant (below)
// rather than reading the new parameter — this package relocates and
// aliases bodies side by side, the way it does for virtual methods,
// and leaves wiring the dispatch bytecode that reads the parameter to
// the code generator that lowers this graph.
func relocateConstructor(b *lens.Builder, target *classfile.ClassDefinition, m *classfile.MethodDefinition, classID int, occupied map[string]bool, idField symbol.FieldReference) {
	oldRef := m.Ref
	key := oldRef.Signature.Key()
	name := oldRef.Signature.Name

	// The target's own constructor (classID 0) always keeps its own
	// name — it cannot collide with itself. A relocated source
	// constructor (classID != 0) gets the same per-source alias
	// relocateMethod uses for colliding virtual methods whenever the
	// target (or an earlier source) already occupies its original
	// signature, which — since every constructor in the group ends up
	// carrying the identical appended class-id type below — is true
	// for every source whose un-appended signature the target itself
	// declares, the overwhelmingly common case.
	if classID != 0 {
		if occupied[key] {
			name = fmt.Sprintf("%s$m%d", name, classID)
		} else {
			occupied[key] = true
		}
	}

	params := make([]*symbol.Type, len(oldRef.Signature.Params)+1)
	copy(params, oldRef.Signature.Params)
	params[len(oldRef.Signature.Params)] = idField.Type

	newRef := symbol.MethodReference{
		Holder: target.Type,
		Signature: symbol.MethodSignature{
			Name:   name,
			Params: params,
			Return: oldRef.Signature.Return,
		},
	}

	proto := &lens.PrototypeChange{
		ExtraConstParams: []lens.ConstParam{{Type: idField.Type, Value: classID}},
	}
	b.MapMethod(oldRef, newRef, proto)
	m.Ref = newRef
	stampMergeID(m, idField, classID)
	if classID != 0 {
		target.Methods = append(target.Methods, m)
	}
}

func isConstructor(m *classfile.MethodDefinition) bool {
	return m.Ref.Signature.Name == "<init>"
}

// stampMergeID prepends a field write to a constructor's entry block
// that records the dense class-id into the discriminator field, so
// every instance knows which original class it stands in for.
func stampMergeID(m *classfile.MethodDefinition, idField symbol.FieldReference, classID int) {
	if m.Code == nil || m.Code.Entry == nil {
		return
	}
	stamp := m.Code.NewInstruction(ir.OpPutField)
	ref := idField
	stamp.FieldRef = &ref
	stamp.Args = []*ir.Value{
		{Kind: ir.ValueArgument, ArgIndex: 0, Type: idField.Holder},
		{Kind: ir.ValueConst, Const: classID, Type: idField.Type},
	}
	entry := m.Code.Entry
	stamp.Block = entry
	entry.Instructions = append([]*ir.Instruction{stamp}, entry.Instructions...)
}
