// Package gen derives reflection registrations from Go source and renders
// them as a Go file that registers the types with a meta.Registry.
package gen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/wippyai/reflect-runtime/meta"
)

// Package is everything reflected from one Go package.
type Package struct {
	Name  string
	Path  string
	Types []*Type
}

// Type is one reflected named struct type.
type Type struct {
	GoName       string
	Name         string
	Fields       []Field
	Methods      []Method
	Constructors []Constructor
	Final        bool
}

// Field is an exported struct field bound as a property.
type Field struct {
	GoName string
	Name   string
	Type   string
}

// Method is an exported method bound as a member function.
type Method struct {
	GoName string
	Name   string
	Params []string
	Result string
}

// Constructor is a package function New<Type>... bound as a constructor.
type Constructor struct {
	GoName string
	Params []string
}

// Options tune which declarations are reflected.
type Options struct {
	// Types restricts reflection to these Go type names. Empty means all
	// exported struct types.
	Types []string
	// Prefix is prepended to every registered type name.
	Prefix string
	// Final marks these Go type names final.
	Final  []string
	Logger *zap.Logger
}

// Inspect reflects the exported struct types of pkg. Members whose
// signatures use types that cannot be named in the registry are skipped.
func Inspect(pkg *types.Package, opts Options) (*Package, error) {
	if opts.Logger == nil {
		opts.Logger = meta.Logger()
	}
	out := &Package{Name: pkg.Name(), Path: pkg.Path()}

	scope := pkg.Scope()
	names := scope.Names() // sorted
	named := make(map[*types.TypeName]*Type)
	for _, n := range names {
		tn, ok := scope.Lookup(n).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n) {
			continue
		}
		if _, ok := tn.Type().Underlying().(*types.Struct); !ok {
			continue
		}
		if nt, ok := tn.Type().(*types.Named); ok && nt.TypeParams().Len() > 0 {
			continue
		}
		t := &Type{GoName: n, Name: opts.Prefix + n, Final: slices.Contains(opts.Final, n)}
		named[tn] = t
		out.Types = append(out.Types, t)
	}
	for _, want := range opts.Types {
		if slices.IndexFunc(out.Types, func(t *Type) bool { return t.GoName == want }) < 0 {
			return nil, fmt.Errorf("package %s has no exported struct type %s", pkg.Path(), want)
		}
	}

	ins := &inspector{named: named, logger: opts.Logger}
	for tn, t := range named {
		ins.fields(tn, t)
		ins.methods(tn, t)
	}
	for _, n := range names {
		fn, ok := scope.Lookup(n).(*types.Func)
		if !ok || !fn.Exported() || !strings.HasPrefix(n, "New") {
			continue
		}
		ins.constructor(fn)
	}
	for _, t := range out.Types {
		sort.Slice(t.Methods, func(i, j int) bool { return t.Methods[i].GoName < t.Methods[j].GoName })
	}
	return out, nil
}

type inspector struct {
	named  map[*types.TypeName]*Type
	logger *zap.Logger
}

func (ins *inspector) fields(tn *types.TypeName, t *Type) {
	st := tn.Type().Underlying().(*types.Struct)
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() || f.Embedded() {
			continue
		}
		ft, ok := ins.typeName(f.Type())
		if !ok {
			ins.skip(t, f.Name(), f.Type().String())
			continue
		}
		t.Fields = append(t.Fields, Field{GoName: f.Name(), Name: meta.LowerCamel(f.Name()), Type: ft})
	}
}

func (ins *inspector) methods(tn *types.TypeName, t *Type) {
	ms := types.NewMethodSet(types.NewPointer(tn.Type()))
	for i := 0; i < ms.Len(); i++ {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig := fn.Type().(*types.Signature)
		params, result, ok := ins.signature(sig)
		if !ok {
			ins.skip(t, fn.Name(), sig.String())
			continue
		}
		t.Methods = append(t.Methods, Method{
			GoName: fn.Name(),
			Name:   meta.LowerCamel(fn.Name()),
			Params: params,
			Result: result,
		})
	}
}

// constructor binds fn to the type it returns when that type is reflected.
func (ins *inspector) constructor(fn *types.Func) {
	sig := fn.Type().(*types.Signature)
	params, _, ok := ins.signature(sig)
	if !ok || sig.Results().Len() == 0 {
		return
	}
	rt := sig.Results().At(0).Type()
	if p, isPtr := rt.(*types.Pointer); isPtr {
		rt = p.Elem()
	}
	nt, isNamed := rt.(*types.Named)
	if !isNamed {
		return
	}
	t, found := ins.named[nt.Obj()]
	if !found {
		return
	}
	t.Constructors = append(t.Constructors, Constructor{GoName: fn.Name(), Params: params})
}

// signature maps parameter and result types to registry names. A trailing
// error result is allowed.
func (ins *inspector) signature(sig *types.Signature) ([]string, string, bool) {
	if sig.Variadic() || sig.TypeParams().Len() > 0 {
		return nil, "", false
	}
	params := make([]string, 0, sig.Params().Len())
	for i := 0; i < sig.Params().Len(); i++ {
		n, ok := ins.typeName(sig.Params().At(i).Type())
		if !ok {
			return nil, "", false
		}
		params = append(params, n)
	}

	results := sig.Results()
	count := results.Len()
	if count > 0 && types.Identical(results.At(count-1).Type(), types.Universe.Lookup("error").Type()) {
		count--
	}
	switch count {
	case 0:
		return params, "", true
	case 1:
		n, ok := ins.typeName(results.At(0).Type())
		return params, n, ok
	}
	return nil, "", false
}

// typeName returns the registry name for a Go type: builtin basic kinds,
// reflected types and single pointers to either. Final types have no
// pointer variant.
func (ins *inspector) typeName(t types.Type) (string, bool) {
	if p, ok := t.(*types.Pointer); ok {
		n, final, ok := ins.baseName(p.Elem())
		if !ok || final {
			return "", false
		}
		return meta.PointerName(n), true
	}
	n, _, ok := ins.baseName(t)
	return n, ok
}

func (ins *inspector) baseName(t types.Type) (name string, final, ok bool) {
	switch tt := t.(type) {
	case *types.Basic:
		if n, found := builtinNames[tt.Kind()]; found {
			return n, false, true
		}
	case *types.Named:
		if rt, found := ins.named[tt.Obj()]; found {
			return rt.Name, rt.Final, true
		}
	}
	return "", false, false
}

func (ins *inspector) skip(t *Type, member, sig string) {
	ins.logger.Debug("skip member",
		zap.String("type", t.GoName),
		zap.String("member", member),
		zap.String("signature", sig))
}

// builtinNames maps basic kinds to the names meta.RegisterBuiltins uses, so
// byte and rune resolve to uint8 and int32.
var builtinNames = map[types.BasicKind]string{
	types.Bool:    "bool",
	types.String:  "string",
	types.Int:     "int",
	types.Int8:    "int8",
	types.Int16:   "int16",
	types.Int32:   "int32",
	types.Int64:   "int64",
	types.Uint:    "uint",
	types.Uint8:   "uint8",
	types.Uint16:  "uint16",
	types.Uint32:  "uint32",
	types.Uint64:  "uint64",
	types.Float32: "float32",
	types.Float64: "float64",
}
