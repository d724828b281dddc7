package meta

import (
	"reflect"
	"unicode"

	"go.uber.org/zap"

	"github.com/wippyai/reflect-runtime/errors"
)

// MemberFunction is an invocable bound to an instance of its owner.
// Several member functions may share a name; they are overloads.
type MemberFunction struct {
	owner       *Type
	fn          reflect.Value
	name        string
	sig         signature
	recvByValue bool
}

// NewMemberFunction captures fn, whose first input is the receiver (*T or T)
// followed by one input per parameter type. Method expressions such as
// (*Counter).Increment fit directly. result is nil for functions without a
// result; a trailing error result is allowed.
func NewMemberFunction(owner *Type, name string, fn any, result *Type, params ...*Type) (*MemberFunction, error) {
	if owner == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "function owner cannot be nil")
	}
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "function name cannot be empty")
	}
	rv, err := funcValue(owner, name, fn)
	if err != nil {
		return nil, err
	}
	gt, err := boundGoType(errors.PhaseRegister, owner)
	if err != nil {
		return nil, err
	}

	ft := rv.Type()
	if ft.NumIn() == 0 || (ft.In(0) != gt && ft.In(0) != reflect.PointerTo(gt)) {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Type(owner.name).
			Member(name).
			Detail("first parameter must be the receiver *%s or %s, got %s", gt, gt, ft).
			Build()
	}

	sig, err := newSignature(errors.PhaseRegister, owner, name, ft, 1, result, params)
	if err != nil {
		return nil, err
	}
	return &MemberFunction{
		owner:       owner,
		fn:          rv,
		name:        name,
		sig:         sig,
		recvByValue: ft.In(0) == gt,
	}, nil
}

func (f *MemberFunction) Owner() *Type    { return f.owner }
func (f *MemberFunction) Name() string    { return f.name }
func (f *MemberFunction) Params() []*Type { return append([]*Type(nil), f.sig.params...) }
func (f *MemberFunction) Result() *Type   { return f.sig.result }
func (f *MemberFunction) Arity() int      { return len(f.sig.params) }

// Matches reports whether the parameter types equal argTypes exactly.
func (f *MemberFunction) Matches(argTypes ...*Type) bool {
	return f.sig.matches(argTypes)
}

// Invoke calls the function on instance. The result is nil for functions
// without a result, Owned for by-value results and Referenced for reference
// results returned by pointer.
func (f *MemberFunction) Invoke(inst *Value, args ...*Value) (*Value, error) {
	recv, err := instance(errors.PhaseInvoke, f.owner, f.name, inst)
	if err != nil {
		return nil, err
	}
	in, err := f.sig.bind(errors.PhaseInvoke, f.owner, f.name, args)
	if err != nil {
		return nil, err
	}
	if f.recvByValue {
		recv = recv.Elem()
	}
	out, err := f.sig.call(errors.PhaseInvoke, f.owner, f.name, f.fn, append([]reflect.Value{recv}, in...))
	if err != nil {
		return nil, err
	}
	return f.sig.wrap(errors.PhaseInvoke, out)
}

func (f *MemberFunction) String() string {
	return signatureString(f.name, f.sig)
}

// StaticFunction is an invocable bound to its owner type only.
type StaticFunction struct {
	owner *Type
	fn    reflect.Value
	name  string
	sig   signature
}

// NewStaticFunction captures fn, which takes one input per parameter type.
func NewStaticFunction(owner *Type, name string, fn any, result *Type, params ...*Type) (*StaticFunction, error) {
	if owner == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "function owner cannot be nil")
	}
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "function name cannot be empty")
	}
	rv, err := funcValue(owner, name, fn)
	if err != nil {
		return nil, err
	}
	sig, err := newSignature(errors.PhaseRegister, owner, name, rv.Type(), 0, result, params)
	if err != nil {
		return nil, err
	}
	return &StaticFunction{owner: owner, fn: rv, name: name, sig: sig}, nil
}

func (f *StaticFunction) Owner() *Type    { return f.owner }
func (f *StaticFunction) Name() string    { return f.name }
func (f *StaticFunction) Params() []*Type { return append([]*Type(nil), f.sig.params...) }
func (f *StaticFunction) Result() *Type   { return f.sig.result }
func (f *StaticFunction) Arity() int      { return len(f.sig.params) }

// Matches reports whether the parameter types equal argTypes exactly.
func (f *StaticFunction) Matches(argTypes ...*Type) bool {
	return f.sig.matches(argTypes)
}

// Invoke calls the function with args.
func (f *StaticFunction) Invoke(args ...*Value) (*Value, error) {
	in, err := f.sig.bind(errors.PhaseInvoke, f.owner, f.name, args)
	if err != nil {
		return nil, err
	}
	out, err := f.sig.call(errors.PhaseInvoke, f.owner, f.name, f.fn, in)
	if err != nil {
		return nil, err
	}
	return f.sig.wrap(errors.PhaseInvoke, out)
}

func (f *StaticFunction) String() string {
	return signatureString(f.name, f.sig)
}

func signatureString(name string, sig signature) string {
	s := name + sig.String()
	if sig.result != nil {
		s += " " + sig.result.name
	}
	return s
}

// BindMethods registers every exported method of *T whose parameter and
// result Go types all resolve through the registry. Method names are
// converted to lowerCamel case ("Increment" becomes "increment"). It returns
// the number of functions added.
func BindMethods(t *Type) (int, error) {
	gt, err := boundGoType(errors.PhaseRegister, t)
	if err != nil {
		return 0, err
	}
	r := t.registry
	pt := reflect.PointerTo(gt)

	bound := 0
	for i := 0; i < pt.NumMethod(); i++ {
		method := pt.Method(i)
		if !method.IsExported() {
			continue
		}
		mt := method.Type // receiver first

		params := make([]*Type, 0, mt.NumIn()-1)
		resolved := true
		for j := 1; j < mt.NumIn() && resolved; j++ {
			p, err := r.TypeFor(mt.In(j))
			if err != nil {
				resolved = false
				break
			}
			params = append(params, p)
		}

		var result *Type
		outs := mt.NumOut()
		if outs > 0 && mt.Out(outs-1) == errorType {
			outs--
		}
		switch {
		case outs > 1:
			resolved = false
		case outs == 1 && resolved:
			result, err = r.TypeFor(mt.Out(0))
			if err != nil {
				resolved = false
			}
		}

		if !resolved || mt.IsVariadic() {
			r.logger.Debug("skip unbindable method",
				zapType(t),
				zap.String("method", method.Name),
				zap.Stringer("signature", mt))
			continue
		}

		if _, err := t.DefineFunction(LowerCamel(method.Name), method.Func.Interface(), result, params...); err != nil {
			return bound, err
		}
		bound++
	}
	return bound, nil
}

// LowerCamel converts an exported Go identifier to the member naming used by
// BindMethods: "Increment" becomes "increment", "URLPath" becomes "urlPath".
func LowerCamel(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		// Keep the last upper rune of an acronym run when a lower rune follows.
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
		i++
	}
	return string(runes)
}
