package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which layer operation produced the error
type Phase string

const (
	PhaseRegister  Phase = "register"  // type and descriptor registration
	PhaseLookup    Phase = "lookup"    // registry queries
	PhaseConstruct Phase = "construct" // constructor invocation
	PhaseDestruct  Phase = "destruct"  // destructor invocation
	PhaseAccess    Phase = "access"    // property get/set, value reads
	PhaseInvoke    Phase = "invoke"    // member/static function calls
	PhaseCast      Phase = "cast"      // pointer removal and conversions
	PhaseScope     Phase = "scope"     // ownership table operations
	PhaseScript    Phase = "script"    // scenario scripts
)

// Kind categorizes the error.
// A Kind is itself an error so callers can match on it alone:
//
//	errors.Is(err, errors.KindNotRegistered)
type Kind string

const (
	KindNotRegistered      Kind = "not_registered"
	KindAlreadyRegistered  Kind = "already_registered"
	KindAlreadyReflected   Kind = "already_reflected"
	KindInvalidArguments   Kind = "invalid_arguments"
	KindNoMatchingOverload Kind = "no_matching_overload"
	KindUseAfterDestruct   Kind = "use_after_destruct"
	KindCapabilityMissing  Kind = "capability_missing"
	KindTypeMismatch       Kind = "type_mismatch"
	KindNilPointer         Kind = "nil_pointer"
	KindNotOwned           Kind = "not_owned"
	KindEmptyValue         Kind = "empty_value"
	KindFrozen             Kind = "frozen"
	KindFinalType          Kind = "final_type"
	KindInvocation         Kind = "invocation"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindClosed             Kind = "closed"
	KindBorrowed           Kind = "borrowed"
	KindExpectation        Kind = "expectation_failed"
)

// Error implements the error interface so a Kind can be used as an errors.Is target
func (k Kind) Error() string {
	return string(k)
}

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Member string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" at ")
		b.WriteString(e.Type)
		if e.Member != "" {
			b.WriteString("::")
			b.WriteString(e.Member)
		}
	} else if e.Member != "" {
		b.WriteString(" at ")
		b.WriteString(e.Member)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// *Error targets match on Phase and Kind, Kind targets on Kind only.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Phase == t.Phase && e.Kind == t.Kind
	case Kind:
		return e.Kind == t
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the registered type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Member sets the descriptor name (property, function)
func (b *Builder) Member(name string) *Builder {
	b.err.Member = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotRegistered creates an error for a lookup of an unknown type name
func NotRegistered(name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindNotRegistered,
		Type:   name,
		Detail: fmt.Sprintf("type %q is not registered", name),
	}
}

// AlreadyRegistered creates an error for a duplicate type name
func AlreadyRegistered(name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindAlreadyRegistered,
		Type:   name,
		Detail: fmt.Sprintf("type %q is already registered", name),
	}
}

// AlreadyReflected creates an error for a descriptor added twice to a type
func AlreadyReflected(typeName, what string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindAlreadyReflected,
		Type:   typeName,
		Detail: fmt.Sprintf("%s has already been added", what),
	}
}

// InvalidArguments creates an argument count or type mismatch error
func InvalidArguments(phase Phase, typeName, member, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArguments,
		Type:   typeName,
		Member: member,
		Detail: detail,
	}
}

// NoMatchingOverload creates an error for a call no registered signature accepts
func NoMatchingOverload(phase Phase, typeName, member string, argTypes []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNoMatchingOverload,
		Type:   typeName,
		Member: member,
		Detail: fmt.Sprintf("no overload accepts (%s)", strings.Join(argTypes, ", ")),
	}
}

// UseAfterDestruct creates an error for an operation on a destructed value
func UseAfterDestruct(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUseAfterDestruct,
		Type:   typeName,
		Detail: "value has been destructed",
	}
}

// CapabilityMissing creates an error for an operation the type never registered
func CapabilityMissing(phase Phase, typeName, capability string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapabilityMissing,
		Type:   typeName,
		Detail: fmt.Sprintf("type has no %s", capability),
	}
}

// TypeMismatch creates a Go type mismatch error
func TypeMismatch(phase Phase, typeName, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   typeName,
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Type:   typeName,
		Detail: "nil pointer",
	}
}

// NotOwned creates an error for releasing a value the box only borrows
func NotOwned(phase Phase, typeName, mode string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotOwned,
		Type:   typeName,
		Detail: fmt.Sprintf("%s value does not own its payload", mode),
	}
}

// Frozen creates an error for a mutation attempted after the registry was frozen
func Frozen(typeName, what string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindFrozen,
		Type:   typeName,
		Detail: fmt.Sprintf("registry is frozen, cannot %s", what),
	}
}

// Invocation wraps an error or recovered panic raised by native code
func Invocation(phase Phase, typeName, member string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvocation,
		Type:   typeName,
		Member: member,
		Detail: "native call failed",
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
