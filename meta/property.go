package meta

import (
	"fmt"
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// MemberProperty is a get/set accessor bound to a field of an instance.
type MemberProperty struct {
	owner *Type
	typ   *Type
	field func(inst reflect.Value) reflect.Value // *Owner -> *Field
	name  string
}

// NewMemberProperty captures accessor, a func(*T) *F returning the address of
// the field inside an instance. F must be the property type's Go type.
func NewMemberProperty(owner *Type, name string, t *Type, accessor any) (*MemberProperty, error) {
	ogt, fgt, err := propertyTypes(owner, name, t)
	if err != nil {
		return nil, err
	}
	rv, err := funcValue(owner, name, accessor)
	if err != nil {
		return nil, err
	}
	ft := rv.Type()
	if ft.NumIn() != 1 || ft.In(0) != reflect.PointerTo(ogt) || ft.NumOut() != 1 || ft.Out(0) != reflect.PointerTo(fgt) {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member(name).
			Detail("want func(*%s) *%s, got %s", ogt, fgt, ft).
			Build()
	}

	return &MemberProperty{
		owner: owner,
		typ:   t,
		name:  name,
		field: func(inst reflect.Value) reflect.Value {
			return rv.Call([]reflect.Value{inst})[0]
		},
	}, nil
}

// NewFieldProperty binds the exported struct field named field by reflection.
func NewFieldProperty(owner *Type, name string, t *Type, field string) (*MemberProperty, error) {
	ogt, fgt, err := propertyTypes(owner, name, t)
	if err != nil {
		return nil, err
	}
	if ogt.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseRegister, owner.name, "struct", ogt.String())
	}
	sf, ok := ogt.FieldByName(field)
	if !ok {
		return nil, errors.New(errors.PhaseRegister, errors.KindNotFound).
			Type(owner.name).
			Member(name).
			Detail("struct %s has no field %s", ogt, field).
			Build()
	}
	if !sf.IsExported() {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(owner.name).
			Member(name).
			Detail("field %s is not exported", field).
			Build()
	}
	if sf.Type != fgt {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member(name).
			Detail("field %s is %s, property type %s binds %s", field, sf.Type, t.name, fgt).
			Build()
	}

	index := sf.Index
	return &MemberProperty{
		owner: owner,
		typ:   t,
		name:  name,
		field: func(inst reflect.Value) reflect.Value {
			return inst.Elem().FieldByIndex(index).Addr()
		},
	}, nil
}

func (p *MemberProperty) Owner() *Type { return p.owner }
func (p *MemberProperty) Name() string { return p.name }
func (p *MemberProperty) Type() *Type  { return p.typ }

// Get returns a Referenced value pointing at the live field inside instance.
func (p *MemberProperty) Get(instance *Value) (*Value, error) {
	inst, err := p.bind(instance)
	if err != nil {
		return nil, err
	}
	return newRef(p.typ, p.field(inst)), nil
}

// Set copies value into the field inside instance. value's type must equal
// the property type.
func (p *MemberProperty) Set(instance *Value, value *Value) error {
	inst, err := p.bind(instance)
	if err != nil {
		return err
	}
	src, err := propertyValue(p.owner, p.name, p.typ, value)
	if err != nil {
		return err
	}
	p.field(inst).Elem().Set(src)
	return nil
}

func (p *MemberProperty) bind(v *Value) (reflect.Value, error) {
	return instance(errors.PhaseAccess, p.owner, p.name, v)
}

// StaticProperty is a get/set accessor bound to a package-level variable.
type StaticProperty struct {
	owner *Type
	typ   *Type
	ptr   reflect.Value
	name  string
}

// NewStaticProperty binds ptr, a non-nil *F where F is the property type's Go type.
func NewStaticProperty(owner *Type, name string, t *Type, ptr any) (*StaticProperty, error) {
	_, fgt, err := propertyTypes(owner, name, t)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(ptr)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(fgt) || rv.IsNil() {
		got := "nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member(name).
			Detail("want non-nil *%s, got %s", fgt, got).
			Build()
	}
	return &StaticProperty{owner: owner, typ: t, ptr: rv, name: name}, nil
}

func (p *StaticProperty) Owner() *Type { return p.owner }
func (p *StaticProperty) Name() string { return p.name }
func (p *StaticProperty) Type() *Type  { return p.typ }

// Get returns a Referenced value pointing at the variable.
func (p *StaticProperty) Get() *Value {
	return newRef(p.typ, p.ptr)
}

// Set copies value into the variable.
func (p *StaticProperty) Set(value *Value) error {
	src, err := propertyValue(p.owner, p.name, p.typ, value)
	if err != nil {
		return err
	}
	p.ptr.Elem().Set(src)
	return nil
}

func propertyTypes(owner *Type, name string, t *Type) (reflect.Type, reflect.Type, error) {
	if owner == nil || t == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("property %q needs owner and value types", name))
	}
	if name == "" {
		return nil, nil, errors.InvalidInput(errors.PhaseRegister, "property name cannot be empty")
	}
	ogt, err := boundGoType(errors.PhaseRegister, owner)
	if err != nil {
		return nil, nil, err
	}
	fgt, err := boundGoType(errors.PhaseRegister, t)
	if err != nil {
		return nil, nil, err
	}
	return ogt, fgt, nil
}

func propertyValue(owner *Type, name string, t *Type, value *Value) (reflect.Value, error) {
	if err := value.usable(errors.PhaseAccess); err != nil {
		return reflect.Value{}, err
	}
	if value.typ != t {
		return reflect.Value{}, errors.InvalidArguments(errors.PhaseAccess, owner.name, name,
			fmt.Sprintf("want %s, got %s", t.name, value.typ.name))
	}
	return value.ptr.Elem(), nil
}
