package classfile

import "shrinker/internal/symbol"

// OptimizationInfo is the fixed-shape record of facts an optimization
// pass accumulates about a method, per spec.md §3 and §9: each field
// is a small lattice whose "top" (least informative) value is its
// Go zero value (nil slice/pointer, false bool). Readers never
// assume a field is populated; absence means "nothing proven yet",
// never "proven false". Passes refine a method's info by Join-ing a
// new record onto the old one; Join never discards a fact the old
// record already held.
type OptimizationInfo struct {
	// UnusedParameters marks, by parameter index (0 = receiver for
	// instance methods is NOT included; indices run over the declared
	// parameter list), parameters that are never read on any path.
	// nil means "unknown"; a false entry means "not proven unused",
	// not "proven used".
	UnusedParameters []bool

	// ReturnsReceiver records that every return statement returns
	// the receiver unmodified ("this method returns its receiver").
	ReturnsReceiver bool

	// DoesNotLeakReceiver records that no path stores the receiver
	// into a field, array, or escapes it to a call that itself leaks
	// it.
	DoesNotLeakReceiver bool

	// TrivialInitializerField is non-nil when this method is a class
	// initializer (<clinit>) that does nothing but allocate one
	// instance of its own class with constant arguments and store it
	// into the named static final field (spec.md §4.4's "trivial
	// class initializer").
	TrivialInitializerField *symbol.FieldReference
}

// Join merges other onto info, keeping every fact either side has
// already established. It never removes a fact present in info, and
// it never weakens ReturnsReceiver/DoesNotLeakReceiver from true back
// to false.
func (info *OptimizationInfo) Join(other *OptimizationInfo) *OptimizationInfo {
	if info == nil {
		info = &OptimizationInfo{}
	}
	if other == nil {
		return info
	}
	out := *info
	if out.UnusedParameters == nil {
		out.UnusedParameters = other.UnusedParameters
	} else if other.UnusedParameters != nil {
		for i := range out.UnusedParameters {
			if i < len(other.UnusedParameters) {
				out.UnusedParameters[i] = out.UnusedParameters[i] || other.UnusedParameters[i]
			}
		}
	}
	out.ReturnsReceiver = out.ReturnsReceiver || other.ReturnsReceiver
	out.DoesNotLeakReceiver = out.DoesNotLeakReceiver || other.DoesNotLeakReceiver
	if out.TrivialInitializerField == nil {
		out.TrivialInitializerField = other.TrivialInitializerField
	}
	return &out
}

// ParameterUnused reports whether parameter index idx is known unused.
// Absence of information (nil slice, or idx out of range) reports
// false — the conservative "not proven unused" answer.
func (info *OptimizationInfo) ParameterUnused(idx int) bool {
	if info == nil || idx < 0 || idx >= len(info.UnusedParameters) {
		return false
	}
	return info.UnusedParameters[idx]
}
