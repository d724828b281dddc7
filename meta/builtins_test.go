package meta

import (
	"testing"

	"github.com/wippyai/reflect-runtime/errors"
)

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}

	names := []string{
		"bool", "string",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			typ, err := r.Lookup(name)
			if err != nil {
				t.Fatal(err)
			}
			if typ.DefaultConstructor() == nil {
				t.Error("missing default constructor")
			}
			if typ.CopyConstructor() == nil {
				t.Error("missing copy constructor")
			}
			if typ.MoveConstructor() == nil {
				t.Error("missing move constructor")
			}
			if typ.AddPointer() == nil || typ.AddPointer().Name() != PointerName(name) {
				t.Error("missing pointer variant")
			}
			for _, ref := range []string{RefName(name), ConstRefName(name), RvalueRefName(name)} {
				if rt, err := r.Lookup(ref); err != nil || rt.Referent() != typ {
					t.Errorf("missing reference variant %s", ref)
				}
			}
		})
	}

	if _, err := r.Lookup("float64"); err != nil {
		t.Fatal(err)
	}
	if err := RegisterBuiltins(r); !errors.Is(err, errors.KindAlreadyRegistered) {
		t.Fatalf("second call: expected already_registered, got %v", err)
	}
}

func TestBuiltins_Constructors(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}
	intT := r.MustLookup("int")

	zero, err := intT.New()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := As[int](zero); got != 0 {
		t.Fatalf("int() = %d", got)
	}

	n := 7
	src, _ := Ref(r.MustLookup(ConstRefName("int")), &n)
	dup, err := intT.New(src)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := As[int](dup); got != 7 || n != 7 {
		t.Fatalf("copy = %d, source = %d", got, n)
	}

	mv, _ := Ref(r.MustLookup(RvalueRefName("int")), &n)
	moved, err := intT.New(mv)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := As[int](moved); got != 7 || n != 0 {
		t.Fatalf("move = %d, source = %d", got, n)
	}

	s := "text"
	sv, _ := Ref(r.MustLookup(RvalueRefName("string")), &s)
	if _, err := r.MustLookup("string").New(sv); err != nil || s != "" {
		t.Fatalf("string move left %q, err %v", s, err)
	}
}

func TestBuiltins_Conversions(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}
	f64 := r.MustLookup("float64")

	tests := []struct {
		name string
		v    any
		want float64
	}{
		{"int", int(-3), -3},
		{"int8", int8(8), 8},
		{"uint16", uint16(65535), 65535},
		{"uint64", uint64(1 << 40), 1 << 40},
		{"float32", float32(0.5), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := r.MustLookup(tt.name)
			v, err := Box(typ, tt.v)
			if err != nil {
				t.Fatal(err)
			}
			out, err := typ.Convert(v, f64)
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := As[float64](out); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	if r.MustLookup("bool").Conversion(f64) != nil || f64.Conversion(f64) != nil {
		t.Fatal("bool and float64 have no float64 conversion")
	}
}
