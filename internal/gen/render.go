package gen

import (
	"io"

	"github.com/dave/jennifer/jen"
)

const (
	metaPath = "github.com/wippyai/reflect-runtime/meta"

	// FuncName is the registration function emitted into the target package.
	FuncName = "RegisterReflection"
)

// Render writes the registration file for pkg to w.
func Render(pkg *Package, w io.Writer) error {
	f := jen.NewFilePathName(pkg.Path, pkg.Name)
	f.HeaderComment("Code generated by reflect-gen. DO NOT EDIT.")
	f.ImportName(metaPath, "meta")

	f.Comment(FuncName + " adds the reflected types of this package to r.")
	f.Comment("Builtins must be registered first, see meta.RegisterBuiltins.")
	f.Func().Id(FuncName).Params(jen.Id("r").Op("*").Qual(metaPath, "Registry")).Error().BlockFunc(func(g *jen.Group) {
		for _, t := range pkg.Types {
			declare(g, t)
		}
		for _, t := range pkg.Types {
			members(g, t)
		}
		g.Return(jen.Nil())
	})
	return f.Render(w)
}

func typeVar(t *Type) string { return "t" + t.GoName }

func declare(g *jen.Group, t *Type) {
	args := []jen.Code{jen.Id("r"), jen.Lit(t.Name)}
	if t.Final {
		args = append(args, jen.Qual(metaPath, "Final").Call())
	}
	g.List(jen.Id(typeVar(t)), jen.Err()).Op(":=").
		Qual(metaPath, "Declare").Types(jen.Id(t.GoName)).Call(args...)
	g.Add(returnOnErr())

	g.If(
		jen.Err().Op(":=").Qual(metaPath, "DeclareReferences").Call(jen.Id("r"), jen.Id(typeVar(t))),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
	if !t.Final {
		define(g, jen.Qual(metaPath, "DeclarePointer").Call(jen.Id("r"), jen.Id(typeVar(t))))
	}
}

func members(g *jen.Group, t *Type) {
	recv := jen.Id(typeVar(t))
	for _, c := range t.Constructors {
		args := append([]jen.Code{jen.Id(c.GoName)}, lookups(c.Params)...)
		define(g, jen.Add(recv).Dot("DefineConstructor").Call(args...))
	}
	for _, f := range t.Fields {
		define(g, jen.Add(recv).Dot("DefineField").Call(jen.Lit(f.Name), lookup(f.Type), jen.Lit(f.GoName)))
	}
	for _, m := range t.Methods {
		result := jen.Nil()
		if m.Result != "" {
			result = lookup(m.Result)
		}
		args := []jen.Code{
			jen.Lit(m.Name),
			jen.Parens(jen.Op("*").Id(t.GoName)).Dot(m.GoName),
			result,
		}
		define(g, jen.Add(recv).Dot("DefineFunction").Call(append(args, lookups(m.Params)...)...))
	}
}

// define emits a Define call whose descriptor result is discarded.
func define(g *jen.Group, call *jen.Statement) {
	g.If(
		jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(call),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
}

func returnOnErr() *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
}

func lookup(name string) *jen.Statement {
	return jen.Id("r").Dot("MustLookup").Call(jen.Lit(name))
}

func lookups(names []string) []jen.Code {
	out := make([]jen.Code, len(names))
	for i, n := range names {
		out[i] = lookup(n)
	}
	return out
}
