package meta

import (
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/wippyai/reflect-runtime/errors"
)

// TypeKind distinguishes a type from its pointer and reference variants.
type TypeKind uint8

const (
	TypeValue     TypeKind = iota // T
	TypePointer                   // T*
	TypeRef                       // T&
	TypeConstRef                  // const T&
	TypeRvalueRef                 // T&&
)

func (k TypeKind) String() string {
	switch k {
	case TypeValue:
		return "value"
	case TypePointer:
		return "pointer"
	case TypeRef:
		return "ref"
	case TypeConstRef:
		return "const-ref"
	case TypeRvalueRef:
		return "rvalue-ref"
	default:
		return "unknown"
	}
}

// IsReference reports whether k is one of the reference kinds.
func (k TypeKind) IsReference() bool {
	return k == TypeRef || k == TypeConstRef || k == TypeRvalueRef
}

// Conventional names for the variants of a type.

func PointerName(name string) string   { return name + "*" }
func RefName(name string) string       { return name + "&" }
func ConstRefName(name string) string  { return "const " + name + "&" }
func RvalueRefName(name string) string { return name + "&&" }

// Type describes one registered type.
type Type struct {
	goType           reflect.Type
	registry         *Registry
	referent         *Type
	destructor       *Destructor
	pointer          *Type
	pointee          *Type
	caster           *Caster
	name             string
	constructors     []*Constructor
	memberProperties []*MemberProperty
	memberFunctions  []*MemberFunction
	staticProperties []*StaticProperty
	staticFunctions  []*StaticFunction
	conversions      []*Conversion
	kind             TypeKind
	final            bool
}

func (t *Type) Name() string         { return t.name }
func (t *Type) String() string       { return t.name }
func (t *Type) IsFinal() bool        { return t.final }
func (t *Type) Kind() TypeKind       { return t.kind }
func (t *Type) GoType() reflect.Type { return t.goType }
func (t *Type) Registry() *Registry  { return t.registry }

// Referent returns the type a reference variant aliases, or nil.
func (t *Type) Referent() *Type { return t.referent }

// AddPointer returns the linked "one more pointer level" type, or nil.
func (t *Type) AddPointer() *Type { return t.pointer }

// RemovePointer returns the linked "one less pointer level" type, or nil.
func (t *Type) RemovePointer() *Type { return t.pointee }

// Caster returns the caster of a pointer-derived type, or nil.
func (t *Type) Caster() *Caster { return t.caster }

// Destructor returns the registered destructor, or nil.
func (t *Type) Destructor() *Destructor { return t.destructor }

// accepts reports whether a value of type v may be bound as an instance of t.
// Reference variants alias the storage of their referent.
func (t *Type) accepts(v *Type) bool {
	return v == t || (v != nil && v.referent == t)
}

// Registration

func (t *Type) AddConstructor(c *Constructor) error {
	if err := t.checkAdd(c == nil, c != nil && c.owner != t, "add constructor"); err != nil {
		return err
	}
	if slices.Contains(t.constructors, c) {
		return errors.AlreadyReflected(t.name, "constructor "+c.String())
	}
	t.constructors = append(t.constructors, c)
	t.registry.logger.Debug("add constructor", zapType(t), zapMember(c.String()))
	return nil
}

func (t *Type) SetDestructor(d *Destructor) error {
	if err := t.checkAdd(d == nil, d != nil && d.owner != t, "set destructor"); err != nil {
		return err
	}
	if t.destructor != nil {
		return errors.AlreadyReflected(t.name, "destructor")
	}
	t.destructor = d
	t.registry.logger.Debug("set destructor", zapType(t))
	return nil
}

func (t *Type) AddMemberProperty(p *MemberProperty) error {
	if err := t.checkAdd(p == nil, p != nil && p.owner != t, "add member property"); err != nil {
		return err
	}
	if slices.Contains(t.memberProperties, p) {
		return errors.AlreadyReflected(t.name, "member property "+p.name)
	}
	t.memberProperties = append(t.memberProperties, p)
	t.registry.logger.Debug("add member property", zapType(t), zapMember(p.name))
	return nil
}

func (t *Type) AddMemberFunction(f *MemberFunction) error {
	if err := t.checkAdd(f == nil, f != nil && f.owner != t, "add member function"); err != nil {
		return err
	}
	if slices.Contains(t.memberFunctions, f) {
		return errors.AlreadyReflected(t.name, "member function "+f.name)
	}
	t.memberFunctions = append(t.memberFunctions, f)
	t.registry.logger.Debug("add member function", zapType(t), zapMember(f.String()))
	return nil
}

func (t *Type) AddStaticProperty(p *StaticProperty) error {
	if err := t.checkAdd(p == nil, p != nil && p.owner != t, "add static property"); err != nil {
		return err
	}
	if slices.Contains(t.staticProperties, p) {
		return errors.AlreadyReflected(t.name, "static property "+p.name)
	}
	t.staticProperties = append(t.staticProperties, p)
	t.registry.logger.Debug("add static property", zapType(t), zapMember(p.name))
	return nil
}

func (t *Type) AddStaticFunction(f *StaticFunction) error {
	if err := t.checkAdd(f == nil, f != nil && f.owner != t, "add static function"); err != nil {
		return err
	}
	if slices.Contains(t.staticFunctions, f) {
		return errors.AlreadyReflected(t.name, "static function "+f.name)
	}
	t.staticFunctions = append(t.staticFunctions, f)
	t.registry.logger.Debug("add static function", zapType(t), zapMember(f.String()))
	return nil
}

// AddConversion registers an explicit conversion from t. At most one
// conversion per target type is allowed.
func (t *Type) AddConversion(c *Conversion) error {
	if err := t.checkAdd(c == nil, c != nil && c.from != t, "add conversion"); err != nil {
		return err
	}
	if slices.IndexFunc(t.conversions, func(x *Conversion) bool { return x == c || x.to == c.to }) >= 0 {
		return errors.AlreadyReflected(t.name, "conversion to "+c.to.name)
	}
	t.conversions = append(t.conversions, c)
	t.registry.logger.Debug("add conversion", zapType(t), zapMember(c.to.name))
	return nil
}

func (t *Type) checkAdd(isNil, foreign bool, what string) error {
	if isNil {
		return errors.InvalidInput(errors.PhaseRegister, what+": descriptor is nil")
	}
	if foreign {
		return errors.InvalidArguments(errors.PhaseRegister, t.name, "", what+": descriptor belongs to another type")
	}
	return t.registry.checkMutable(t.name, what)
}

// Queries. Optional presence is reported with nil, never an error.

// Constructors returns the constructors in registration order.
func (t *Type) Constructors() []*Constructor { return slices.Clone(t.constructors) }

// Constructor returns the constructor whose parameter types equal argTypes
// position by position, or nil.
func (t *Type) Constructor(argTypes ...*Type) *Constructor {
	for _, c := range t.constructors {
		if c.Matches(argTypes...) {
			return c
		}
	}
	return nil
}

// DefaultConstructor returns the first constructor without parameters.
func (t *Type) DefaultConstructor() *Constructor {
	for _, c := range t.constructors {
		if len(c.sig.params) == 0 {
			return c
		}
	}
	return nil
}

// CopyConstructor returns the first constructor taking a single "const T&".
// It is nil when that reference type is not registered.
func (t *Type) CopyConstructor() *Constructor {
	return t.singleParamConstructor(ConstRefName(t.name))
}

// MoveConstructor returns the first constructor taking a single "T&&".
// It is nil when that reference type is not registered.
func (t *Type) MoveConstructor() *Constructor {
	return t.singleParamConstructor(RvalueRefName(t.name))
}

func (t *Type) singleParamConstructor(paramName string) *Constructor {
	pt, ok := t.registry.types[paramName]
	if !ok {
		return nil
	}
	for _, c := range t.constructors {
		if len(c.sig.params) == 1 && c.sig.params[0] == pt {
			return c
		}
	}
	return nil
}

func (t *Type) Properties() []*MemberProperty       { return slices.Clone(t.memberProperties) }
func (t *Type) Functions() []*MemberFunction        { return slices.Clone(t.memberFunctions) }
func (t *Type) StaticProperties() []*StaticProperty { return slices.Clone(t.staticProperties) }
func (t *Type) StaticFunctions() []*StaticFunction  { return slices.Clone(t.staticFunctions) }
func (t *Type) Conversions() []*Conversion          { return slices.Clone(t.conversions) }

// Property returns the first member property named name, or nil.
func (t *Type) Property(name string) *MemberProperty {
	i := slices.IndexFunc(t.memberProperties, func(p *MemberProperty) bool { return p.name == name })
	if i < 0 {
		return nil
	}
	return t.memberProperties[i]
}

// Function returns the first member function named name, or nil.
// With overloads this is the first registered one regardless of signature;
// use FunctionOverload to select by argument types.
func (t *Type) Function(name string) *MemberFunction {
	i := slices.IndexFunc(t.memberFunctions, func(f *MemberFunction) bool { return f.name == name })
	if i < 0 {
		return nil
	}
	return t.memberFunctions[i]
}

// StaticProperty returns the first static property named name, or nil.
func (t *Type) StaticProperty(name string) *StaticProperty {
	i := slices.IndexFunc(t.staticProperties, func(p *StaticProperty) bool { return p.name == name })
	if i < 0 {
		return nil
	}
	return t.staticProperties[i]
}

// StaticFunction returns the first static function named name, or nil.
func (t *Type) StaticFunction(name string) *StaticFunction {
	i := slices.IndexFunc(t.staticFunctions, func(f *StaticFunction) bool { return f.name == name })
	if i < 0 {
		return nil
	}
	return t.staticFunctions[i]
}

// Overloads returns every member function named name in registration order.
func (t *Type) Overloads(name string) []*MemberFunction {
	var out []*MemberFunction
	for _, f := range t.memberFunctions {
		if f.name == name {
			out = append(out, f)
		}
	}
	return out
}

// StaticOverloads returns every static function named name in registration order.
func (t *Type) StaticOverloads(name string) []*StaticFunction {
	var out []*StaticFunction
	for _, f := range t.staticFunctions {
		if f.name == name {
			out = append(out, f)
		}
	}
	return out
}

// FunctionOverload returns the member function named name whose parameter
// types equal argTypes, or nil.
func (t *Type) FunctionOverload(name string, argTypes ...*Type) *MemberFunction {
	for _, f := range t.memberFunctions {
		if f.name == name && f.sig.matches(argTypes) {
			return f
		}
	}
	return nil
}

// StaticFunctionOverload returns the static function named name whose
// parameter types equal argTypes, or nil.
func (t *Type) StaticFunctionOverload(name string, argTypes ...*Type) *StaticFunction {
	for _, f := range t.staticFunctions {
		if f.name == name && f.sig.matches(argTypes) {
			return f
		}
	}
	return nil
}

// Conversion returns the conversion from t to the given type, or nil.
func (t *Type) Conversion(to *Type) *Conversion {
	i := slices.IndexFunc(t.conversions, func(c *Conversion) bool { return c.to == to })
	if i < 0 {
		return nil
	}
	return t.conversions[i]
}

// Dispatch helpers

// New constructs a value with the constructor matching the argument types.
func (t *Type) New(args ...*Value) (*Value, error) {
	types, err := argTypes(errors.PhaseConstruct, args)
	if err != nil {
		return nil, err
	}
	c := t.Constructor(types...)
	if c == nil {
		return nil, errors.NoMatchingOverload(errors.PhaseConstruct, t.name, "", typeNames(types))
	}
	return c.Construct(args...)
}

// Destruct releases v with the registered destructor.
func (t *Type) Destruct(v *Value) error {
	if v.State() == StateDestructed {
		return errors.UseAfterDestruct(errors.PhaseDestruct, t.name)
	}
	if t.destructor == nil {
		return errors.CapabilityMissing(errors.PhaseDestruct, t.name, "destructor")
	}
	return t.destructor.Destruct(v)
}

// Invoke calls the member function overload of name matching the argument types.
func (t *Type) Invoke(instance *Value, name string, args ...*Value) (*Value, error) {
	types, err := argTypes(errors.PhaseInvoke, args)
	if err != nil {
		return nil, err
	}
	f := t.FunctionOverload(name, types...)
	if f == nil {
		return nil, errors.NoMatchingOverload(errors.PhaseInvoke, t.name, name, typeNames(types))
	}
	return f.Invoke(instance, args...)
}

// InvokeStatic calls the static function overload of name matching the argument types.
func (t *Type) InvokeStatic(name string, args ...*Value) (*Value, error) {
	types, err := argTypes(errors.PhaseInvoke, args)
	if err != nil {
		return nil, err
	}
	f := t.StaticFunctionOverload(name, types...)
	if f == nil {
		return nil, errors.NoMatchingOverload(errors.PhaseInvoke, t.name, name, typeNames(types))
	}
	return f.Invoke(args...)
}

// Convert converts v to the target type with the registered conversion.
func (t *Type) Convert(v *Value, to *Type) (*Value, error) {
	if to == nil {
		return nil, errors.InvalidInput(errors.PhaseCast, t.name+": conversion target cannot be nil")
	}
	c := t.Conversion(to)
	if c == nil {
		return nil, errors.CapabilityMissing(errors.PhaseCast, t.name, "conversion to "+to.String())
	}
	return c.Convert(v)
}

// Define helpers create a descriptor owned by t and add it in one step.

func (t *Type) DefineConstructor(fn any, params ...*Type) (*Constructor, error) {
	c, err := NewConstructor(t, fn, params...)
	if err != nil {
		return nil, err
	}
	if err := t.AddConstructor(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (t *Type) DefineDestructor(fn any) (*Destructor, error) {
	d, err := NewDestructor(t, fn)
	if err != nil {
		return nil, err
	}
	if err := t.SetDestructor(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *Type) DefineProperty(name string, pt *Type, accessor any) (*MemberProperty, error) {
	p, err := NewMemberProperty(t, name, pt, accessor)
	if err != nil {
		return nil, err
	}
	if err := t.AddMemberProperty(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Type) DefineField(name string, pt *Type, field string) (*MemberProperty, error) {
	p, err := NewFieldProperty(t, name, pt, field)
	if err != nil {
		return nil, err
	}
	if err := t.AddMemberProperty(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Type) DefineFunction(name string, fn any, result *Type, params ...*Type) (*MemberFunction, error) {
	f, err := NewMemberFunction(t, name, fn, result, params...)
	if err != nil {
		return nil, err
	}
	if err := t.AddMemberFunction(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (t *Type) DefineStaticProperty(name string, pt *Type, ptr any) (*StaticProperty, error) {
	p, err := NewStaticProperty(t, name, pt, ptr)
	if err != nil {
		return nil, err
	}
	if err := t.AddStaticProperty(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Type) DefineStaticFunction(name string, fn any, result *Type, params ...*Type) (*StaticFunction, error) {
	f, err := NewStaticFunction(t, name, fn, result, params...)
	if err != nil {
		return nil, err
	}
	if err := t.AddStaticFunction(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (t *Type) DefineConversion(to *Type, fn any) (*Conversion, error) {
	c, err := NewConversion(t, to, fn)
	if err != nil {
		return nil, err
	}
	if err := t.AddConversion(c); err != nil {
		return nil, err
	}
	return c, nil
}
