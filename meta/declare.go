package meta

import (
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// Declare registers name bound to the Go type T.
func Declare[T any](r *Registry, name string, opts ...TypeOption) (*Type, error) {
	return r.Register(name, append(opts, WithGoType(reflect.TypeOf((*T)(nil)).Elem()), WithKind(TypeValue))...)
}

// DeclarePointer registers "T*" bound to *T and links it to base.
func DeclarePointer(r *Registry, base *Type) (*Type, error) {
	gt, err := boundGoType(errors.PhaseRegister, base)
	if err != nil {
		return nil, err
	}
	if base.final {
		return nil, errors.New(errors.PhaseRegister, errors.KindFinalType).
			Type(base.name).
			Detail("final type cannot derive a pointer type").
			Build()
	}
	ptr, err := r.Register(PointerName(base.name), WithGoType(reflect.PointerTo(gt)), WithKind(TypePointer))
	if err != nil {
		return nil, err
	}
	if err := r.LinkPointer(base, ptr); err != nil {
		return nil, err
	}
	return ptr, nil
}

// DeclareReferences registers the "T&", "const T&" and "T&&" variants of
// base. They share base's Go type and alias its storage.
func DeclareReferences(r *Registry, base *Type) error {
	gt, err := boundGoType(errors.PhaseRegister, base)
	if err != nil {
		return err
	}
	variants := []struct {
		name string
		kind TypeKind
	}{
		{RefName(base.name), TypeRef},
		{ConstRefName(base.name), TypeConstRef},
		{RvalueRefName(base.name), TypeRvalueRef},
	}
	for _, v := range variants {
		if _, err := r.Register(v.name, WithGoType(gt), WithKind(v.kind), WithReferent(base)); err != nil {
			return err
		}
	}
	return nil
}

// TypeOf returns the type bound to the Go type T.
func TypeOf[T any](r *Registry) (*Type, error) {
	return r.TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// ValueOf boxes a copy of v under the type bound to T.
func ValueOf[T any](r *Registry, v T) (*Value, error) {
	t, err := TypeOf[T](r)
	if err != nil {
		return nil, err
	}
	return Box(t, v)
}

// RefOf borrows *p under the type bound to T.
func RefOf[T any](r *Registry, p *T) (*Value, error) {
	t, err := TypeOf[T](r)
	if err != nil {
		return nil, err
	}
	return Ref(t, p)
}

// PointerOf boxes the pointer p under the type bound to *T.
func PointerOf[T any](r *Registry, p *T) (*Value, error) {
	t, err := TypeOf[*T](r)
	if err != nil {
		return nil, err
	}
	return Pointer(t, p)
}
