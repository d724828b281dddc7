package meta

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/reflect-runtime/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// signature is the capability table captured from a typed Go func at
// registration: how each boxed argument is passed and how results come back.
type signature struct {
	params    []*Type
	byPointer []bool // pass the argument's storage pointer instead of a copy
	result    *Type
	resultPtr bool // native result is *R for result type R
	hasError  bool // trailing error result
}

// newSignature validates fnType against the declared parameter and result
// types. offset skips leading inputs bound by the caller (the receiver).
func newSignature(phase errors.Phase, owner *Type, member string, fnType reflect.Type, offset int, result *Type, params []*Type) (signature, error) {
	sig := signature{
		params:    append([]*Type(nil), params...),
		byPointer: make([]bool, len(params)),
		result:    result,
	}

	if fnType.NumIn()-offset != len(params) {
		return sig, errors.New(phase, errors.KindTypeMismatch).
			Type(owner.name).
			Member(member).
			Detail("function takes %d parameters, %d declared", fnType.NumIn()-offset, len(params)).
			Build()
	}
	if fnType.IsVariadic() {
		return sig, errors.New(phase, errors.KindTypeMismatch).
			Type(owner.name).
			Member(member).
			Detail("variadic functions are not supported").
			Build()
	}

	for i, p := range params {
		if p == nil {
			return sig, errors.InvalidInput(phase, fmt.Sprintf("%s: parameter %d type is nil", member, i))
		}
		in := fnType.In(i + offset)
		byPtr, err := paramPassing(p, in)
		if err != nil {
			return sig, errors.New(phase, errors.KindTypeMismatch).
				Type(owner.name).
				Member(member).
				Detail("parameter %d: %v", i, err).
				Build()
		}
		sig.byPointer[i] = byPtr
	}

	outs := fnType.NumOut()
	if outs > 0 && fnType.Out(outs-1) == errorType {
		sig.hasError = true
		outs--
	}

	switch {
	case result == nil && outs == 0:
	case result == nil:
		return sig, errors.New(phase, errors.KindTypeMismatch).
			Type(owner.name).
			Member(member).
			Detail("function returns %s but no result type is declared", fnType.Out(0)).
			Build()
	case outs != 1:
		return sig, errors.New(phase, errors.KindTypeMismatch).
			Type(owner.name).
			Member(member).
			Detail("function must return one %s", result.name).
			Build()
	default:
		gt, err := boundGoType(phase, result)
		if err != nil {
			return sig, err
		}
		switch fnType.Out(0) {
		case gt:
		case reflect.PointerTo(gt):
			sig.resultPtr = true
		default:
			return sig, errors.New(phase, errors.KindTypeMismatch).
				Type(owner.name).
				Member(member).
				Detail("result: want %s or %s, got %s", gt, reflect.PointerTo(gt), fnType.Out(0)).
				Build()
		}
	}

	return sig, nil
}

// paramPassing reports whether a native parameter of Go type in receives the
// argument by pointer. Only reference-kind parameters may do so.
func paramPassing(p *Type, in reflect.Type) (bool, error) {
	if p.goType == nil {
		return false, fmt.Errorf("%s has no Go type binding", p.name)
	}
	if in == p.goType {
		return false, nil
	}
	if p.kind.IsReference() && in == reflect.PointerTo(p.goType) {
		return true, nil
	}
	return false, fmt.Errorf("%s binds %s, function takes %s", p.name, p.goType, in)
}

func (s *signature) matches(types []*Type) bool {
	if len(types) != len(s.params) {
		return false
	}
	for i, p := range s.params {
		if types[i] != p {
			return false
		}
	}
	return true
}

// bind checks args against the parameters and produces native inputs.
func (s *signature) bind(phase errors.Phase, owner *Type, member string, args []*Value) ([]reflect.Value, error) {
	if len(args) != len(s.params) {
		return nil, errors.InvalidArguments(phase, owner.name, member,
			fmt.Sprintf("want %d arguments, got %d", len(s.params), len(args)))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if err := a.usable(phase); err != nil {
			return nil, err
		}
		if a.typ != s.params[i] {
			return nil, errors.InvalidArguments(phase, owner.name, member,
				fmt.Sprintf("argument %d: want %s, got %s", i, s.params[i].name, a.typ.name))
		}
		if s.byPointer[i] {
			in[i] = a.ptr
		} else {
			in[i] = a.ptr.Elem()
		}
	}
	return in, nil
}

// call invokes fn, converting panics and returned errors into Invocation errors.
func (s *signature) call(phase errors.Phase, owner *Type, member string, fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			owner.registry.logger.Warn("recovered panic in native call",
				zapType(owner),
				zapMember(member),
				zap.Any("panic", r))
			err = errors.Invocation(phase, owner.name, member, fmt.Errorf("panic: %v", r))
		}
	}()

	out = fn.Call(in)
	if s.hasError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, errors.Invocation(phase, owner.name, member, e.Interface().(error))
		}
		out = out[:len(out)-1]
	}
	return out, nil
}

// wrap boxes the native result. Pointer results of reference types are
// Referenced; other pointer results are copied into an Owned value.
func (s *signature) wrap(phase errors.Phase, out []reflect.Value) (*Value, error) {
	if s.result == nil {
		return nil, nil
	}
	rv := out[0]
	if !s.resultPtr {
		return newOwned(s.result, rv), nil
	}
	if rv.IsNil() {
		return nil, errors.NilPointer(phase, s.result.name)
	}
	if s.result.kind.IsReference() {
		return newRef(s.result, rv), nil
	}
	return newOwned(s.result, rv.Elem()), nil
}

func (s *signature) String() string {
	return "(" + strings.Join(typeNames(s.params), ", ") + ")"
}

// argTypes collects the types of boxed arguments for overload resolution.
func argTypes(phase errors.Phase, args []*Value) ([]*Type, error) {
	types := make([]*Type, len(args))
	for i, a := range args {
		if err := a.usable(phase); err != nil {
			return nil, err
		}
		types[i] = a.typ
	}
	return types, nil
}

func typeNames(types []*Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = t.name
	}
	return names
}

// instance validates the bound receiver of a member call or property access.
func instance(phase errors.Phase, owner *Type, member string, v *Value) (reflect.Value, error) {
	if err := v.usable(phase); err != nil {
		return reflect.Value{}, err
	}
	if !owner.accepts(v.typ) {
		return reflect.Value{}, errors.InvalidArguments(phase, owner.name, member,
			fmt.Sprintf("instance: want %s, got %s", owner.name, v.typ.name))
	}
	return v.ptr, nil
}
