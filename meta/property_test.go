package meta

import (
	"testing"

	"github.com/wippyai/reflect-runtime/errors"
)

func TestMemberProperty_RoundTrip(t *testing.T) {
	fx := newFixture(t)
	v := fx.newCounter(t)

	for _, n := range []int{0, -3, 12, 1 << 20} {
		if err := fx.a.Set(v, fx.boxInt(t, n)); err != nil {
			t.Fatal(err)
		}
		if got := fx.readA(t, v); got != n {
			t.Fatalf("get after set(%d) = %d", n, got)
		}
	}
}

func TestMemberProperty_GetIsLive(t *testing.T) {
	fx := newFixture(t)
	v := fx.newCounter(t)
	got, err := fx.a.Get(v)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ownership() != Referenced {
		t.Fatalf("Get ownership = %s, want referenced", got.Ownership())
	}
	p, _ := AsRef[int](got)
	*p = 77
	if fx.readA(t, v) != 77 {
		t.Fatal("Get must reference the live field")
	}
}

func TestMemberProperty_Accessor(t *testing.T) {
	fx := newFixture(t)
	v := fx.newCounter(t)
	inner := &counter{A: 1}
	pv, _ := Pointer(fx.ptr, inner)
	if err := fx.b.Set(v, pv); err != nil {
		t.Fatal(err)
	}
	got, err := fx.b.Get(v)
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := As[*counter](got); p != inner {
		t.Fatal("b should hold the pointer that was set")
	}
	if fx.b.Name() != "b" || fx.b.Type() != fx.ptr || fx.b.Owner() != fx.counter {
		t.Fatal("unexpected descriptor metadata")
	}
}

func TestMemberProperty_ThroughReference(t *testing.T) {
	fx := newFixture(t)
	c := counter{A: 5}
	ref, _ := Ref(fx.ref, &c)
	if err := fx.a.Set(ref, fx.boxInt(t, 11)); err != nil {
		t.Fatal(err)
	}
	if c.A != 11 {
		t.Fatalf("a = %d, want 11", c.A)
	}
}

func TestMemberProperty_Errors(t *testing.T) {
	fx := newFixture(t)
	v := fx.newCounter(t)
	f, _ := Box(fx.float, float32(1))

	if err := fx.a.Set(v, f); !errors.Is(err, errors.KindInvalidArguments) {
		t.Fatalf("wrong value type: expected invalid_arguments, got %v", err)
	}
	if _, err := fx.a.Get(f); !errors.Is(err, errors.KindInvalidArguments) {
		t.Fatalf("wrong instance type: expected invalid_arguments, got %v", err)
	}

	tests := []struct {
		name  string
		field string
		typ   *Type
		kind  errors.Kind
	}{
		{"missing field", "Z", fx.intT, errors.KindNotFound},
		{"wrong field type", "A", fx.float, errors.KindTypeMismatch},
		{"unexported", "hidden", fx.intT, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFieldProperty(fx.counter, "x", tt.typ, tt.field)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	if _, err := NewMemberProperty(fx.counter, "a", fx.intT, func(c *counter) *float32 { return nil }); !errors.Is(err, errors.KindTypeMismatch) {
		t.Fatalf("bad accessor: expected type_mismatch, got %v", err)
	}
	if _, err := NewMemberProperty(fx.counter, "", fx.intT, func(c *counter) *int { return &c.A }); !errors.Is(err, errors.KindInvalidInput) {
		t.Fatalf("empty name: expected invalid_input, got %v", err)
	}
}

func TestStaticProperty(t *testing.T) {
	fx := newFixture(t)
	got := fx.f.Get()
	if f, _ := As[float32](got); f != 0.5 {
		t.Fatalf("f = %v, want 0.5", f)
	}

	nv, _ := Box(fx.float, float32(2.25))
	if err := fx.f.Set(nv); err != nil {
		t.Fatal(err)
	}
	if counterF != 2.25 {
		t.Fatalf("counterF = %v, want 2.25", counterF)
	}
	// Earlier Get results alias the variable.
	if f, _ := As[float32](got); f != 2.25 {
		t.Fatalf("aliased f = %v, want 2.25", f)
	}

	if err := fx.f.Set(fx.boxInt(t, 1)); !errors.Is(err, errors.KindInvalidArguments) {
		t.Fatalf("expected invalid_arguments, got %v", err)
	}
	if _, err := NewStaticProperty(fx.counter, "g", fx.float, (*float32)(nil)); !errors.Is(err, errors.KindTypeMismatch) {
		t.Fatalf("nil pointer: expected type_mismatch, got %v", err)
	}
}
