package meta

import (
	"fmt"
	"reflect"

	"github.com/wippyai/reflect-runtime/errors"
)

// Ownership records how a Value relates to its payload.
type Ownership uint8

const (
	// Owned values hold storage they are responsible for releasing.
	Owned Ownership = iota
	// Referenced values borrow storage owned elsewhere.
	Referenced
	// RawPointer values hold a pointer value as their payload.
	RawPointer
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Referenced:
		return "referenced"
	case RawPointer:
		return "raw-pointer"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a Value.
type State uint8

const (
	StateEmpty State = iota
	StateOwned
	StateReferenced
	StateRawPointer
	StateDestructed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOwned:
		return "owned"
	case StateReferenced:
		return "referenced"
	case StateRawPointer:
		return "raw-pointer"
	case StateDestructed:
		return "destructed"
	default:
		return "unknown"
	}
}

// Value is a type-erased box for one instance of a registered Type.
//
// The zero Value is Empty. Values are created by the construction helpers
// (Box, Adopt, Ref, Pointer), by constructors, property getters and function
// calls. An Owned value becomes Destructed after Close or a Destructor call;
// that state is terminal.
type Value struct {
	typ        *Type
	ptr        reflect.Value // pointer to storage of typ.goType
	mode       Ownership
	destructed bool
}

// Type returns the value's registered type, nil for an Empty value.
func (v *Value) Type() *Type {
	if v == nil {
		return nil
	}
	return v.typ
}

// Ownership returns how the value relates to its payload.
func (v *Value) Ownership() Ownership { return v.mode }

// State returns the lifecycle state.
func (v *Value) State() State {
	switch {
	case v == nil || v.typ == nil:
		return StateEmpty
	case v.destructed:
		return StateDestructed
	case v.mode == Referenced:
		return StateReferenced
	case v.mode == RawPointer:
		return StateRawPointer
	default:
		return StateOwned
	}
}

// Interface returns a copy of the payload.
func (v *Value) Interface() (any, error) {
	elem, err := v.elem(errors.PhaseAccess)
	if err != nil {
		return nil, err
	}
	return elem.Interface(), nil
}

// Addr returns a pointer to the payload storage as an interface value.
func (v *Value) Addr() (any, error) {
	if err := v.usable(errors.PhaseAccess); err != nil {
		return nil, err
	}
	return v.ptr.Interface(), nil
}

// Close releases an Owned value, running the type's destructor if one is
// registered. Borrowed and already released values are left untouched, so
// Close is safe to defer on any value.
func (v *Value) Close() error {
	if v.State() != StateOwned {
		return nil
	}
	if d := v.typ.destructor; d != nil {
		return d.Destruct(v)
	}
	v.release()
	return nil
}

func (v *Value) String() string {
	switch v.State() {
	case StateEmpty:
		return "<empty>"
	case StateDestructed:
		return fmt.Sprintf("<%s destructed>", v.typ.name)
	}
	return fmt.Sprintf("%v", v.ptr.Elem().Interface())
}

func (v *Value) release() {
	v.destructed = true
	v.ptr = reflect.Value{}
}

func (v *Value) usable(phase errors.Phase) error {
	switch v.State() {
	case StateEmpty:
		return errors.New(phase, errors.KindEmptyValue).Detail("value is empty").Build()
	case StateDestructed:
		return errors.UseAfterDestruct(phase, v.typ.name)
	}
	return nil
}

func (v *Value) elem(phase errors.Phase) (reflect.Value, error) {
	if err := v.usable(phase); err != nil {
		return reflect.Value{}, err
	}
	return v.ptr.Elem(), nil
}

// Construction helpers

// Box copies v into new storage owned by the returned value. Values of a
// pointer-typed Type are boxed as RawPointer.
func Box(t *Type, v any) (*Value, error) {
	gt, err := boundGoType(errors.PhaseAccess, t)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		if !nillable(gt) {
			return nil, errors.TypeMismatch(errors.PhaseAccess, t.name, gt.String(), "nil")
		}
		rv = reflect.Zero(gt)
	}
	if rv.Type() != gt {
		return nil, errors.TypeMismatch(errors.PhaseAccess, t.name, gt.String(), rv.Type().String())
	}
	return newOwned(t, rv), nil
}

// Adopt takes ownership of the storage p points to without copying it.
func Adopt(t *Type, p any) (*Value, error) {
	rv, err := storagePointer(t, p)
	if err != nil {
		return nil, err
	}
	return &Value{typ: t, ptr: rv, mode: Owned}, nil
}

// Ref borrows the storage p points to. The returned value never releases it.
func Ref(t *Type, p any) (*Value, error) {
	rv, err := storagePointer(t, p)
	if err != nil {
		return nil, err
	}
	return newRef(t, rv), nil
}

// Pointer boxes the pointer value p under a pointer-kind Type.
func Pointer(t *Type, p any) (*Value, error) {
	gt, err := boundGoType(errors.PhaseAccess, t)
	if err != nil {
		return nil, err
	}
	if gt.Kind() != reflect.Pointer {
		return nil, errors.TypeMismatch(errors.PhaseAccess, t.name, "pointer type", gt.String())
	}
	rv := reflect.ValueOf(p)
	if !rv.IsValid() {
		rv = reflect.Zero(gt)
	}
	if rv.Type() != gt {
		return nil, errors.TypeMismatch(errors.PhaseAccess, t.name, gt.String(), rv.Type().String())
	}
	return newOwned(t, rv), nil
}

// As returns a copy of the payload as T.
func As[T any](v *Value) (T, error) {
	var zero T
	elem, err := v.elem(errors.PhaseAccess)
	if err != nil {
		return zero, err
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	if elem.Type() != want {
		return zero, errors.TypeMismatch(errors.PhaseAccess, v.typ.name, want.String(), elem.Type().String())
	}
	return elem.Interface().(T), nil
}

// AsRef returns a pointer to the payload storage as *T.
func AsRef[T any](v *Value) (*T, error) {
	if err := v.usable(errors.PhaseAccess); err != nil {
		return nil, err
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	if v.ptr.Type().Elem() != want {
		return nil, errors.TypeMismatch(errors.PhaseAccess, v.typ.name, want.String(), v.ptr.Type().Elem().String())
	}
	return v.ptr.Interface().(*T), nil
}

// newOwned copies rv into fresh storage.
func newOwned(t *Type, rv reflect.Value) *Value {
	storage := reflect.New(rv.Type())
	storage.Elem().Set(rv)
	mode := Owned
	if rv.Kind() == reflect.Pointer {
		mode = RawPointer
	}
	return &Value{typ: t, ptr: storage, mode: mode}
}

func newRef(t *Type, ptr reflect.Value) *Value {
	return &Value{typ: t, ptr: ptr, mode: Referenced}
}

func boundGoType(phase errors.Phase, t *Type) (reflect.Type, error) {
	if t == nil {
		return nil, errors.InvalidInput(phase, "type cannot be nil")
	}
	if t.goType == nil {
		return nil, errors.CapabilityMissing(phase, t.name, "Go type binding")
	}
	return t.goType, nil
}

func storagePointer(t *Type, p any) (reflect.Value, error) {
	gt, err := boundGoType(errors.PhaseAccess, t)
	if err != nil {
		return reflect.Value{}, err
	}
	rv := reflect.ValueOf(p)
	want := reflect.PointerTo(gt)
	if !rv.IsValid() {
		return reflect.Value{}, errors.NilPointer(errors.PhaseAccess, t.name)
	}
	if rv.Type() != want {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseAccess, t.name, want.String(), rv.Type().String())
	}
	if rv.IsNil() {
		return reflect.Value{}, errors.NilPointer(errors.PhaseAccess, t.name)
	}
	return rv, nil
}

func nillable(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
