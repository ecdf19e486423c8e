// Package diagnostics implements the Diagnostic sink collaborator
// sketched in spec.md §6/§7: a structured error/warning type plus an
// accumulating sink the driver consults at the end of each pass. Its
// shape is adapted directly from the teacher's SentraError (a typed
// error carrying a source location and a renderable Error() string);
// here the "location" is a symbol reference rather than a source
// line, since the core operates after parsing, not during it.
package diagnostics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Kind enumerates the five error kinds spec.md §7 defines.
type Kind string

const (
	InvariantViolation Kind = "InvariantViolation"
	UnresolvedReference Kind = "UnresolvedReference"
	RuleConflict        Kind = "RuleConflict"
	BudgetExceeded      Kind = "BudgetExceeded"
	FormatLimit         Kind = "FormatLimit"
)

// Severity distinguishes fatal diagnostics (which abort the driver)
// from warnings (which are collected and emitted at the end
// regardless).
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Location identifies where a diagnostic applies: a class, a method,
// or a field, expressed by its descriptor string so the sink doesn't
// need to import the symbol package just to print one.
type Location struct {
	Class  string
	Member string
}

func (l Location) String() string {
	if l.Member == "" {
		return l.Class
	}
	return l.Class + "." + l.Member
}

// Diagnostic is a single reported condition, carrying enough context
// to render a human-readable message the way SentraError did for
// source-level errors.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Location Location
	// Cause wraps the underlying Go error, if any, preserving its
	// stack trace via github.com/pkg/errors; Unwrap exposes it, so a
	// fatal InvariantViolation can be unwound with errors.Unwrap,
	// errors.Is or errors.As in tests and top-level error logging.
	Cause error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Severity, d.Kind, d.Message)
	if d.Location.Class != "" {
		fmt.Fprintf(&b, " (at %s)", d.Location)
	}
	if d.Cause != nil {
		fmt.Fprintf(&b, ": %v", d.Cause)
	}
	return b.String()
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (d *Diagnostic) Unwrap() error { return d.Cause }

// NewInvariantViolation builds a fatal diagnostic for an internal
// assertion failure.
func NewInvariantViolation(message string, loc Location) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Kind: InvariantViolation, Message: message, Location: loc}
}

// WrapInvariantViolation wraps cause with a stack trace and a fatal
// InvariantViolation diagnostic.
func WrapInvariantViolation(cause error, message string, loc Location) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Kind:     InvariantViolation,
		Message:  message,
		Location: loc,
		Cause:    errors.WithStack(cause),
	}
}

// NewUnresolvedReference builds a diagnostic for a live reference to
// neither a program nor a library symbol. sev should be
// SeverityWarning when a dontWarn rule suppresses the error form.
func NewUnresolvedReference(sev Severity, reference string, loc Location) *Diagnostic {
	return &Diagnostic{Severity: sev, Kind: UnresolvedReference, Message: "unresolved reference: " + reference, Location: loc}
}

// NewRuleConflict builds a pre-optimization error diagnostic for two
// keep rules demanding incompatible treatment of the same symbol.
func NewRuleConflict(message string, loc Location) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Kind: RuleConflict, Message: message, Location: loc}
}

// NewBudgetExceeded builds a silent (warning-severity, normally not
// even surfaced) diagnostic recording that the class inliner skipped
// a candidate because its inlined-instruction estimate exceeded the
// configured ceiling.
func NewBudgetExceeded(loc Location, estimate, ceiling int) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Kind:     BudgetExceeded,
		Message:  fmt.Sprintf("estimated inlined size %d exceeds ceiling %d", estimate, ceiling),
		Location: loc,
	}
}

// NewFormatLimit builds a post-optimization error diagnostic for a
// writer that can't represent the optimized program.
func NewFormatLimit(message string, loc Location) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Kind: FormatLimit, Message: message, Location: loc}
}

// Sink accumulates diagnostics across a whole driver run. Diagnostics
// reported to the sink never throw (spec.md §6); the driver decides
// at the end of each pass whether any fatal diagnostic has been
// raised.
type Sink struct {
	mu    sync.Mutex
	items []*Diagnostic
}

// NewSink creates an empty sink.
func NewSink() *Sink { return &Sink{} }

// Report appends d to the sink. Safe for concurrent use by every
// worker in a pass.
func (s *Sink) Report(d *Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// HasFatal reports whether any diagnostic reported so far is an
// error-severity diagnostic.
func (s *Sink) HasFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []*Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Errors returns only the error-severity diagnostics.
func (s *Sink) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range s.All() {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
