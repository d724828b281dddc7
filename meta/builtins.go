package meta

import (
	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// RegisterBuiltins declares bool, string and the numeric kinds with their
// pointer and reference variants. Each gets a zero-value default constructor,
// copy and move constructors, and numeric kinds a conversion to float64.
func RegisterBuiltins(r *Registry) error {
	decls := []func(*Registry) error{
		declareBuiltin[bool]("bool"),
		declareBuiltin[string]("string"),
		declareBuiltin[int]("int"),
		declareBuiltin[int8]("int8"),
		declareBuiltin[int16]("int16"),
		declareBuiltin[int32]("int32"),
		declareBuiltin[int64]("int64"),
		declareBuiltin[uint]("uint"),
		declareBuiltin[uint8]("uint8"),
		declareBuiltin[uint16]("uint16"),
		declareBuiltin[uint32]("uint32"),
		declareBuiltin[uint64]("uint64"),
		declareBuiltin[float32]("float32"),
		declareBuiltin[float64]("float64"),
	}
	for _, decl := range decls {
		if err := decl(r); err != nil {
			return err
		}
	}

	// Conversions need every target registered first.
	convs := []func(*Registry) error{
		numericConversion[int]("int"),
		numericConversion[int8]("int8"),
		numericConversion[int16]("int16"),
		numericConversion[int32]("int32"),
		numericConversion[int64]("int64"),
		numericConversion[uint]("uint"),
		numericConversion[uint8]("uint8"),
		numericConversion[uint16]("uint16"),
		numericConversion[uint32]("uint32"),
		numericConversion[uint64]("uint64"),
		numericConversion[float32]("float32"),
	}
	for _, conv := range convs {
		if err := conv(r); err != nil {
			return err
		}
	}
	return nil
}

func declareBuiltin[T any](name string) func(*Registry) error {
	return func(r *Registry) error {
		t, err := Declare[T](r, name)
		if err != nil {
			return err
		}
		if err := DeclareReferences(r, t); err != nil {
			return err
		}
		if _, err := DeclarePointer(r, t); err != nil {
			return err
		}
		if _, err := t.DefineConstructor(func() T {
			var zero T
			return zero
		}); err != nil {
			return err
		}
		if _, err := t.DefineConstructor(func(src *T) T {
			return *src
		}, r.MustLookup(ConstRefName(name))); err != nil {
			return err
		}
		_, err = t.DefineConstructor(func(src *T) T {
			v := *src
			var zero T
			*src = zero
			return v
		}, r.MustLookup(RvalueRefName(name)))
		return err
	}
}

func numericConversion[T number](name string) func(*Registry) error {
	return func(r *Registry) error {
		from, err := r.Lookup(name)
		if err != nil {
			return err
		}
		to, err := r.Lookup("float64")
		if err != nil {
			return err
		}
		_, err = from.DefineConversion(to, func(v T) float64 {
			return float64(v)
		})
		return err
	}
}
