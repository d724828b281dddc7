package meta

import (
	"reflect"
	"sync"
	"testing"

	"github.com/wippyai/reflect-runtime/errors"
)

func TestRegistry_DistinctLookups(t *testing.T) {
	r := NewRegistry()
	a, err := r.Register("A")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Register("B")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("distinct names must yield distinct types")
	}

	got, err := r.Lookup("A")
	if err != nil || got != a {
		t.Fatalf("Lookup(A) = %v, %v", got, err)
	}
	got, err = r.Lookup("B")
	if err != nil || got != b {
		t.Fatalf("Lookup(B) = %v, %v", got, err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if types := r.Types(); types[0] != a || types[1] != b {
		t.Fatal("Types() must keep registration order")
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("missing")
	if !errors.Is(err, errors.KindNotRegistered) {
		t.Fatalf("expected not_registered, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustLookup should panic")
		}
	}()
	r.MustLookup("missing")
}

func TestRegistry_Duplicate(t *testing.T) {
	r := NewRegistry()
	first, _ := r.Register("A")
	_, err := r.Register("A")
	if !errors.Is(err, errors.KindAlreadyRegistered) {
		t.Fatalf("expected already_registered, got %v", err)
	}
	if got := r.MustLookup("A"); got != first {
		t.Fatal("first registration must survive")
	}

	if _, err := r.Register(""); !errors.Is(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid_input for empty name, got %v", err)
	}
}

func TestRegistry_TypeFor(t *testing.T) {
	fx := newFixture(t)
	got, err := fx.r.TypeFor(reflect.TypeOf((*counter)(nil)).Elem())
	if err != nil {
		t.Fatal(err)
	}
	if got != fx.counter {
		t.Fatalf("TypeFor(counter) = %s, want Counter", got)
	}
	got, err = fx.r.TypeFor(reflect.TypeOf((**counter)(nil)).Elem())
	if err != nil || got != fx.ptr {
		t.Fatalf("TypeFor(*counter) = %v, %v", got, err)
	}
	if _, err := fx.r.TypeFor(reflect.TypeOf((*complex64)(nil)).Elem()); !errors.Is(err, errors.KindNotRegistered) {
		t.Fatalf("expected not_registered, got %v", err)
	}
}

func TestRegistry_LinkPointer(t *testing.T) {
	fx := newFixture(t)
	if fx.counter.AddPointer() != fx.ptr {
		t.Fatal("AddPointer should return the pointer variant")
	}
	if fx.counter.AddPointer().RemovePointer() != fx.counter {
		t.Fatal("RemovePointer(AddPointer(T)) != T")
	}
	if fx.ptr.RemovePointer().AddPointer() != fx.ptr {
		t.Fatal("AddPointer(RemovePointer(T*)) != T*")
	}
	if fx.counter.Caster() != nil {
		t.Fatal("value type should have no caster")
	}
	if c := fx.ptr.Caster(); c == nil || c.From() != fx.ptr || c.To() != fx.counter {
		t.Fatal("pointer type should cast to its pointee")
	}

	// Unlinked derivations are reported as absent.
	other, _ := fx.r.Register("Other")
	if other.AddPointer() != nil || other.RemovePointer() != nil {
		t.Fatal("unlinked type should report nil links")
	}

	extra, _ := fx.r.Register("Counter**")
	if err := fx.r.LinkPointer(fx.counter, extra); !errors.Is(err, errors.KindAlreadyReflected) {
		t.Fatalf("expected already_reflected, got %v", err)
	}
}

func TestRegistry_LinkPointerGoTypes(t *testing.T) {
	r := NewRegistry()
	base, _ := Declare[int](r, "int")
	wrong, _ := Declare[*string](r, "int*")
	err := r.LinkPointer(base, wrong)
	if !errors.Is(err, errors.KindTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
	if base.AddPointer() != nil {
		t.Fatal("failed link must not be recorded")
	}

	opaque, _ := r.Register("Opaque")
	notPtr, _ := r.Register("Opaque*", WithGoType(reflect.TypeOf((*int)(nil)).Elem()), WithKind(TypePointer))
	if err := r.LinkPointer(opaque, notPtr); !errors.Is(err, errors.KindTypeMismatch) {
		t.Fatalf("non-pointer Go type: expected type_mismatch, got %v", err)
	}
	if opaque.AddPointer() != nil || notPtr.Caster() != nil {
		t.Fatal("failed link must not be recorded")
	}

	foreign, _ := NewRegistry().Register("x*")
	if err := r.LinkPointer(base, foreign); !errors.Is(err, errors.KindInvalidArguments) {
		t.Fatalf("expected invalid_arguments, got %v", err)
	}
}

func TestRegistry_FinalType(t *testing.T) {
	r := NewRegistry()
	base, _ := Declare[int](r, "Sealed", Final())
	if !base.IsFinal() {
		t.Fatal("expected final type")
	}
	if _, err := DeclarePointer(r, base); !errors.Is(err, errors.KindFinalType) {
		t.Fatalf("expected final_type, got %v", err)
	}

	ptr, _ := Declare[*int](r, "Sealed*")
	if err := r.LinkPointer(base, ptr); !errors.Is(err, errors.KindFinalType) {
		t.Fatalf("expected final_type, got %v", err)
	}
}

func TestRegistry_Freeze(t *testing.T) {
	fx := newFixture(t)
	fx.r.Freeze()
	fx.r.Freeze()
	if !fx.r.Frozen() {
		t.Fatal("expected frozen registry")
	}

	if _, err := fx.r.Register("Late"); !errors.Is(err, errors.KindFrozen) {
		t.Fatalf("Register: expected frozen, got %v", err)
	}
	if _, err := fx.counter.DefineFunction("again", (*counter).Increment, nil); !errors.Is(err, errors.KindFrozen) {
		t.Fatalf("DefineFunction: expected frozen, got %v", err)
	}
	if _, err := fx.intT.DefineDestructor(func(*int) {}); !errors.Is(err, errors.KindFrozen) {
		t.Fatalf("DefineDestructor: expected frozen, got %v", err)
	}

	// Reads stay available and can run concurrently.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fx.r.Lookup("Counter"); err != nil {
				t.Error(err)
			}
			if fx.counter.Function("increment") == nil {
				t.Error("increment missing")
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_Default(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default must return the same registry")
	}
}

func TestTypeKind(t *testing.T) {
	tests := []struct {
		kind TypeKind
		name string
		ref  bool
	}{
		{TypeValue, "value", false},
		{TypePointer, "pointer", false},
		{TypeRef, "ref", true},
		{TypeConstRef, "const-ref", true},
		{TypeRvalueRef, "rvalue-ref", true},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name {
			t.Errorf("%d: String() = %q, want %q", tt.kind, tt.kind.String(), tt.name)
		}
		if tt.kind.IsReference() != tt.ref {
			t.Errorf("%s: IsReference() = %v", tt.name, tt.kind.IsReference())
		}
	}

	if PointerName("T") != "T*" || RefName("T") != "T&" || ConstRefName("T") != "const T&" || RvalueRefName("T") != "T&&" {
		t.Fatal("unexpected variant names")
	}
}
