package script

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/wippyai/reflect-runtime/errors"
	"github.com/wippyai/reflect-runtime/meta"
)

// arguments are the literal and variable inputs of one invocation.
// Variables follow literals positionally.
type arguments struct {
	lits []cty.Value
	refs []*meta.Value
	desc []string
}

func (a arguments) count() int { return len(a.lits) + len(a.refs) }

func (s *session) arguments(args cty.Value, refs []string) (arguments, error) {
	var a arguments
	if isSet(args) {
		ty := args.Type()
		if ty.IsTupleType() || ty.IsListType() {
			it := args.ElementIterator()
			for it.Next() {
				_, v := it.Element()
				a.lits = append(a.lits, v)
				a.desc = append(a.desc, v.Type().FriendlyName())
			}
		} else {
			a.lits = append(a.lits, args)
			a.desc = append(a.desc, ty.FriendlyName())
		}
	}
	for _, name := range refs {
		v, err := s.lookup(name)
		if err != nil {
			return a, err
		}
		a.refs = append(a.refs, v)
		a.desc = append(a.desc, v.Type().Name())
	}
	return a, nil
}

// bound is a converted argument list. Values created from literals are
// released by close.
type bound struct {
	values []*meta.Value
	temps  []*meta.Value
}

func (b bound) close() {
	for _, v := range b.temps {
		v.Close()
	}
}

// bind converts a to the parameter list params.
func (s *session) bind(params []*meta.Type, a arguments) (bound, error) {
	var b bound
	if len(params) != a.count() {
		return b, errors.New(errors.PhaseScript, errors.KindInvalidArguments).
			Detail("want %d arguments, got %d", len(params), a.count()).
			Build()
	}
	for i, lit := range a.lits {
		v, err := literal(params[i], lit)
		if err != nil {
			b.close()
			return bound{}, err
		}
		b.values = append(b.values, v)
		b.temps = append(b.temps, v)
	}
	for i, ref := range a.refs {
		v, err := reference(params[len(a.lits)+i], ref)
		if err != nil {
			b.close()
			return bound{}, err
		}
		b.values = append(b.values, v)
	}
	return b, nil
}

// resolve selects the first parameter list in candidates that a converts to.
// A non-empty signature selects by exact parameter type names instead.
func (s *session) resolve(owner *meta.Type, member string, candidates [][]*meta.Type, signature []string, a arguments) (int, bound, error) {
	if signature != nil {
		want, err := s.types(signature)
		if err != nil {
			return -1, bound{}, err
		}
		for i, params := range candidates {
			if sameTypes(params, want) {
				b, err := s.bind(params, a)
				return i, b, err
			}
		}
		return -1, bound{}, errors.NoMatchingOverload(errors.PhaseScript, owner.Name(), member, signature)
	}

	for i, params := range candidates {
		if len(params) != a.count() {
			continue
		}
		if b, err := s.bind(params, a); err == nil {
			return i, b, nil
		}
	}
	return -1, bound{}, errors.NoMatchingOverload(errors.PhaseScript, owner.Name(), member, a.desc)
}

func (s *session) types(names []string) ([]*meta.Type, error) {
	out := make([]*meta.Type, len(names))
	for i, n := range names {
		t, err := s.registry.Lookup(n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func sameTypes(a, b []*meta.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// literal converts an HCL value into a new value of type t. Reference types
// get a Referenced value over fresh storage.
func literal(t *meta.Type, lit cty.Value) (*meta.Value, error) {
	gt := t.GoType()
	if gt == nil {
		return nil, errors.CapabilityMissing(errors.PhaseScript, t.Name(), "Go type binding")
	}
	ptr := reflect.New(gt)
	if err := gocty.FromCtyValue(lit, ptr.Interface()); err != nil {
		return nil, errors.New(errors.PhaseScript, errors.KindTypeMismatch).
			Type(t.Name()).
			Cause(err).
			Detail("cannot use %s literal as %s", lit.Type().FriendlyName(), t.Name()).
			Build()
	}
	if t.Kind().IsReference() {
		return meta.Ref(t, ptr.Interface())
	}
	return meta.Box(t, ptr.Elem().Interface())
}

// ParseLiteral evaluates src as an HCL expression without variables and
// converts the result to a new value of type t. The caller owns the value.
func ParseLiteral(t *meta.Type, src string) (*meta.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "literal", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, diags, "parse literal")
	}
	lit, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, diags, "evaluate literal")
	}
	return literal(t, lit)
}

// reference passes a variable as parameter type t. A value binds to a
// reference parameter of its own type by aliasing its storage.
func reference(t *meta.Type, v *meta.Value) (*meta.Value, error) {
	if v.Type() == t {
		return v, nil
	}
	if t.Referent() != nil && t.Referent() == v.Type() {
		addr, err := v.Addr()
		if err != nil {
			return nil, err
		}
		return meta.Ref(t, addr)
	}
	return nil, errors.New(errors.PhaseScript, errors.KindInvalidArguments).
		Type(t.Name()).
		Detail("cannot pass %s as %s", v.Type().Name(), t.Name()).
		Build()
}

// equal reports whether the payload of v equals the literal want.
func equal(v *meta.Value, want cty.Value) (bool, string, error) {
	got, err := v.Interface()
	if err != nil {
		return false, "", err
	}
	expected := reflect.New(reflect.TypeOf(got))
	if err := gocty.FromCtyValue(want, expected.Interface()); err != nil {
		return false, "", errors.New(errors.PhaseScript, errors.KindTypeMismatch).
			Type(v.Type().Name()).
			Cause(err).
			Detail("cannot compare with %s literal", want.Type().FriendlyName()).
			Build()
	}
	exp := expected.Elem().Interface()
	return reflect.DeepEqual(got, exp), fmt.Sprintf("%v", exp), nil
}

// isSet reports whether an optional attribute was given. Absent
// attributes decode to cty.NilVal, which is null.
func isSet(v cty.Value) bool {
	return !v.IsNull()
}

func signatureString(params []*meta.Type) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
