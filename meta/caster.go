package meta

import (
	"fmt"
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// Caster converts values of a pointer-derived type to its pointee type.
// Only the removal direction exists; pointer values are boxed at the call
// site with Pointer.
type Caster struct {
	from *Type // pointer type
	to   *Type // pointee type
}

func (c *Caster) From() *Type { return c.from }
func (c *Caster) To() *Type   { return c.to }

// RemovePointer dereferences a value of the pointer type. The result is a
// Referenced value aliasing the pointee storage, not a copy.
func (c *Caster) RemovePointer(v *Value) (*Value, error) {
	if err := v.usable(errors.PhaseCast); err != nil {
		return nil, err
	}
	if v.typ != c.from {
		return nil, errors.InvalidArguments(errors.PhaseCast, c.from.name, "remove_pointer",
			fmt.Sprintf("want %s, got %s", c.from.name, v.typ.name))
	}
	p := v.ptr.Elem()
	if p.Kind() != reflect.Pointer {
		return nil, errors.TypeMismatch(errors.PhaseCast, c.from.name, "pointer type", p.Type().String())
	}
	if p.IsNil() {
		return nil, errors.NilPointer(errors.PhaseCast, c.from.name)
	}
	if c.to.goType != nil && p.Type().Elem() != c.to.goType {
		return nil, errors.TypeMismatch(errors.PhaseCast, c.to.name, c.to.goType.String(), p.Type().Elem().String())
	}
	return newRef(c.to, p), nil
}
