package symbol

// FieldReference is the (holder Type, name, Type) triple spec.md §3
// defines for fields.
type FieldReference struct {
	Holder *Type
	Name   string
	Type   *Type
}

// Equal reports structural equality.
func (f FieldReference) Equal(o FieldReference) bool {
	return f.Holder == o.Holder && f.Name == o.Name && f.Type == o.Type
}

func (f FieldReference) Key() string {
	return f.Holder.String() + "->" + f.Name + ":" + f.Type.String()
}

func (f FieldReference) String() string { return f.Key() }

// WithHolder returns a copy of the reference rebound to a new holder.
func (f FieldReference) WithHolder(holder *Type) FieldReference {
	f.Holder = holder
	return f
}

// WithName returns a copy of the reference renamed, used for
// collision avoidance when relocating fields onto a merge target.
func (f FieldReference) WithName(name string) FieldReference {
	f.Name = name
	return f
}
