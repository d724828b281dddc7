package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseInvoke,
				Kind:   KindInvalidArguments,
				Type:   "Counter",
				Member: "multiply",
				Detail: "argument 0: want int, got float32",
			},
			contains: []string{"[invoke]", "invalid_arguments", "Counter::multiply", "want int"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLookup,
				Kind:  KindNotRegistered,
			},
			contains: []string{"[lookup]", "not_registered"},
		},
		{
			name: "member without type",
			err: &Error{
				Phase:  PhaseScript,
				Kind:   KindNotFound,
				Member: "c",
			},
			contains: []string{"[script]", "not_found at c"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseInvoke,
				Kind:   KindInvocation,
				Detail: "native call failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[invoke]", "invocation", "native call failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseConstruct,
		Kind:  KindInvocation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseAccess,
		Kind:  KindTypeMismatch,
		Type:  "Counter",
	}

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseInvoke, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseAccess, Kind: KindNilPointer}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseAccess, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestError_IsKind(t *testing.T) {
	err := NotRegistered("Missing")

	if !errors.Is(err, KindNotRegistered) {
		t.Error("errors.Is should match on Kind alone")
	}
	if errors.Is(err, KindAlreadyRegistered) {
		t.Error("errors.Is should not match a different Kind")
	}

	wrapped := Wrap(PhaseScript, KindInvalidInput, err, "line 3")
	if !errors.Is(wrapped, KindNotRegistered) {
		t.Error("errors.Is should find Kind through the cause chain")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseInvoke, KindInvalidArguments).
		Type("Counter").
		Member("multiply").
		Value(42).
		Cause(cause).
		Detail("argument %d: want %s", 0, "int").
		Build()

	if err.Phase != PhaseInvoke {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseInvoke)
	}
	if err.Kind != KindInvalidArguments {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArguments)
	}
	if err.Type != "Counter" {
		t.Errorf("Type = %v, want 'Counter'", err.Type)
	}
	if err.Member != "multiply" {
		t.Errorf("Member = %v, want 'multiply'", err.Member)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "argument 0: want int" {
		t.Errorf("Detail = %v, want 'argument 0: want int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"NotRegistered", NotRegistered("T"), PhaseLookup, KindNotRegistered},
		{"AlreadyRegistered", AlreadyRegistered("T"), PhaseRegister, KindAlreadyRegistered},
		{"AlreadyReflected", AlreadyReflected("T", "destructor"), PhaseRegister, KindAlreadyReflected},
		{"InvalidArguments", InvalidArguments(PhaseConstruct, "T", "", "arity"), PhaseConstruct, KindInvalidArguments},
		{"NoMatchingOverload", NoMatchingOverload(PhaseInvoke, "T", "f", []string{"int"}), PhaseInvoke, KindNoMatchingOverload},
		{"UseAfterDestruct", UseAfterDestruct(PhaseDestruct, "T"), PhaseDestruct, KindUseAfterDestruct},
		{"CapabilityMissing", CapabilityMissing(PhaseDestruct, "T", "destructor"), PhaseDestruct, KindCapabilityMissing},
		{"TypeMismatch", TypeMismatch(PhaseAccess, "T", "int", "string"), PhaseAccess, KindTypeMismatch},
		{"NilPointer", NilPointer(PhaseCast, "T*"), PhaseCast, KindNilPointer},
		{"NotOwned", NotOwned(PhaseDestruct, "T", "referenced"), PhaseDestruct, KindNotOwned},
		{"Frozen", Frozen("T", "add constructor"), PhaseRegister, KindFrozen},
		{"Invocation", Invocation(PhaseInvoke, "T", "f", errors.New("boom")), PhaseInvoke, KindInvocation},
		{"InvalidInput", InvalidInput(PhaseScript, "bad"), PhaseScript, KindInvalidInput},
		{"NotFound", NotFound(PhaseScript, "variable", "c"), PhaseScript, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	t.Run("NoMatchingOverload lists argument types", func(t *testing.T) {
		err := NoMatchingOverload(PhaseInvoke, "Counter", "multiply", []string{"float32", "int"})
		if !strings.Contains(err.Detail, "(float32, int)") {
			t.Errorf("Detail = %q, should list argument types", err.Detail)
		}
	})
}

func TestKindOf(t *testing.T) {
	err := Wrap(PhaseScript, KindInvalidInput, UseAfterDestruct(PhaseAccess, "Counter"), "step 3")
	if got := KindOf(err); got != KindInvalidInput {
		t.Errorf("KindOf = %q, want %q", got, KindInvalidInput)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
	if !Is(err, KindUseAfterDestruct) {
		t.Error("Is should see kinds through the cause chain")
	}
	var e *Error
	if !As(err, &e) || e.Phase != PhaseScript {
		t.Error("As should find the outer *Error")
	}
}
