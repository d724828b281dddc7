package meta

import (
	"fmt"
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// Constructor creates Owned values of its owner type.
type Constructor struct {
	owner *Type
	fn    reflect.Value
	sig   signature
}

// NewConstructor captures fn as a constructor of owner. fn takes one input per
// parameter type and returns T, *T, (T, error) or (*T, error) where T is the
// owner's Go type. A *T result is adopted without copying.
func NewConstructor(owner *Type, fn any, params ...*Type) (*Constructor, error) {
	if owner == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "constructor owner cannot be nil")
	}
	rv, err := funcValue(owner, "constructor", fn)
	if err != nil {
		return nil, err
	}
	if rv.Type().NumOut() == 0 {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member("constructor").
			Detail("constructor must return %s", owner.name).
			Build()
	}
	sig, err := newSignature(errors.PhaseRegister, owner, "constructor", rv.Type(), 0, owner, params)
	if err != nil {
		return nil, err
	}
	return &Constructor{owner: owner, fn: rv, sig: sig}, nil
}

func (c *Constructor) Owner() *Type { return c.owner }

// Params returns the parameter types in order.
func (c *Constructor) Params() []*Type {
	return append([]*Type(nil), c.sig.params...)
}

func (c *Constructor) Arity() int { return len(c.sig.params) }

// Matches reports whether the parameter types equal argTypes exactly.
func (c *Constructor) Matches(argTypes ...*Type) bool {
	return c.sig.matches(argTypes)
}

// Construct creates a new Owned value from args, which must match the
// parameter types exactly.
func (c *Constructor) Construct(args ...*Value) (*Value, error) {
	in, err := c.sig.bind(errors.PhaseConstruct, c.owner, "constructor", args)
	if err != nil {
		return nil, err
	}
	out, err := c.sig.call(errors.PhaseConstruct, c.owner, "constructor", c.fn, in)
	if err != nil {
		return nil, err
	}
	rv := out[0]
	if !c.sig.resultPtr {
		return newOwned(c.owner, rv), nil
	}
	if rv.IsNil() {
		return nil, errors.NilPointer(errors.PhaseConstruct, c.owner.name)
	}
	return &Value{typ: c.owner, ptr: rv, mode: Owned}, nil
}

func (c *Constructor) String() string {
	return c.owner.name + c.sig.String()
}

// Destructor releases Owned values of its owner type.
type Destructor struct {
	owner    *Type
	fn       reflect.Value
	hasError bool
}

// NewDestructor captures fn as the release logic of owner. fn is
// func(*T) or func(*T) error.
func NewDestructor(owner *Type, fn any) (*Destructor, error) {
	if owner == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "destructor owner cannot be nil")
	}
	rv, err := funcValue(owner, "destructor", fn)
	if err != nil {
		return nil, err
	}
	gt, err := boundGoType(errors.PhaseRegister, owner)
	if err != nil {
		return nil, err
	}
	ft := rv.Type()
	valid := ft.NumIn() == 1 && ft.In(0) == reflect.PointerTo(gt) &&
		(ft.NumOut() == 0 || (ft.NumOut() == 1 && ft.Out(0) == errorType))
	if !valid {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member("destructor").
			Detail("want func(*%s) [error], got %s", gt, ft).
			Build()
	}
	return &Destructor{owner: owner, fn: rv, hasError: ft.NumOut() == 1}, nil
}

func (d *Destructor) Owner() *Type { return d.owner }

// Destruct runs the release logic on an Owned value and marks it Destructed.
// Borrowed values are rejected with KindNotOwned; a second call fails with
// KindUseAfterDestruct. A value whose release logic fails or panics is still
// marked Destructed and the error is returned; release is never retried.
func (d *Destructor) Destruct(v *Value) error {
	if err := v.usable(errors.PhaseDestruct); err != nil {
		return err
	}
	if v.typ != d.owner {
		return errors.InvalidArguments(errors.PhaseDestruct, d.owner.name, "destructor",
			fmt.Sprintf("want %s, got %s", d.owner.name, v.typ.name))
	}
	if v.mode != Owned {
		return errors.NotOwned(errors.PhaseDestruct, d.owner.name, v.mode.String())
	}

	sig := signature{hasError: d.hasError}
	_, err := sig.call(errors.PhaseDestruct, d.owner, "destructor", d.fn, []reflect.Value{v.ptr})
	v.release()
	return err
}

func funcValue(owner *Type, member string, fn any) (reflect.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		got := "nil"
		if fn != nil {
			got = reflect.TypeOf(fn).String()
		}
		return reflect.Value{}, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member(member).
			Detail("want a function, got %s", got).
			Build()
	}
	return rv, nil
}
