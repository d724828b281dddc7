package meta

import (
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// Conversion is an explicit cast from one registered type to another.
type Conversion struct {
	from  *Type
	to    *Type
	fn    reflect.Value
	sig   signature
	byPtr bool
}

// NewConversion captures fn as a cast from one type to another. fn is
// func(F) T or func(*F) T, optionally returning a trailing error.
func NewConversion(from, to *Type, fn any) (*Conversion, error) {
	if from == nil || to == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "conversion needs source and target types")
	}
	rv, err := funcValue(from, "conversion to "+to.name, fn)
	if err != nil {
		return nil, err
	}
	fgt, err := boundGoType(errors.PhaseRegister, from)
	if err != nil {
		return nil, err
	}
	ft := rv.Type()
	if ft.NumIn() != 1 || (ft.In(0) != fgt && ft.In(0) != reflect.PointerTo(fgt)) {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(from.name).
			Member("conversion to "+to.name).
			Detail("want func(%s) or func(*%s), got %s", fgt, fgt, ft).
			Build()
	}
	// The source is bound like a receiver, so only the result is checked here.
	sig, err := newSignature(errors.PhaseRegister, from, "conversion to "+to.name, ft, 1, to, nil)
	if err != nil {
		return nil, err
	}
	return &Conversion{from: from, to: to, fn: rv, sig: sig, byPtr: ft.In(0) != fgt}, nil
}

func (c *Conversion) From() *Type { return c.from }
func (c *Conversion) To() *Type   { return c.to }

// Convert produces an Owned value of the target type from v.
func (c *Conversion) Convert(v *Value) (*Value, error) {
	member := "conversion to " + c.to.name
	src, err := instance(errors.PhaseCast, c.from, member, v)
	if err != nil {
		return nil, err
	}
	if !c.byPtr {
		src = src.Elem()
	}
	out, err := c.sig.call(errors.PhaseCast, c.from, member, c.fn, []reflect.Value{src})
	if err != nil {
		return nil, err
	}
	return c.sig.wrap(errors.PhaseCast, out)
}
