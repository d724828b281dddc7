package gen

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const source = `package shapes

type Point struct {
	X, Y   float64
	Label  string
	Next   *Point
	hidden int
	Tags   []string
}

func NewPoint(x, y float64) Point { return Point{X: x, Y: y} }

func NewOrigin() *Point { return &Point{} }

func NewBroken(ch chan int) Point { return Point{} }

func (p *Point) Move(dx, dy float64) { p.X += dx; p.Y += dy }

func (p Point) Dist(q Point) float64 { return 0 }

func (p *Point) Parse(s string) (Point, error) { return Point{}, nil }

func (p *Point) Sum(v ...int) int { return 0 }

func (p *Point) ID() byte { return 0 }

type Token struct {
	Value string
}

func (t *Token) Owner() *Token { return t }

type Count int
`

func check(t *testing.T, src string) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "shapes.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("example.com/shapes", fset, []*ast.File{file}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pkg
}

func TestInspect(t *testing.T) {
	pkg := check(t, source)

	got, err := Inspect(pkg, Options{Final: []string{"Token"}})
	if err != nil {
		t.Fatal(err)
	}

	want := &Package{
		Name: "shapes",
		Path: "example.com/shapes",
		Types: []*Type{
			{
				GoName: "Point",
				Name:   "Point",
				Fields: []Field{
					{GoName: "X", Name: "x", Type: "float64"},
					{GoName: "Y", Name: "y", Type: "float64"},
					{GoName: "Label", Name: "label", Type: "string"},
					{GoName: "Next", Name: "next", Type: "Point*"},
				},
				Methods: []Method{
					{GoName: "Dist", Name: "dist", Params: []string{"Point"}, Result: "float64"},
					{GoName: "ID", Name: "id", Params: []string{}, Result: "uint8"},
					{GoName: "Move", Name: "move", Params: []string{"float64", "float64"}},
					{GoName: "Parse", Name: "parse", Params: []string{"string"}, Result: "Point"},
				},
				Constructors: []Constructor{
					{GoName: "NewOrigin", Params: []string{}},
					{GoName: "NewPoint", Params: []string{"float64", "float64"}},
				},
			},
			{
				GoName: "Token",
				Name:   "Token",
				Final:  true,
				Fields: []Field{{GoName: "Value", Name: "value", Type: "string"}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectSelectedTypes(t *testing.T) {
	pkg := check(t, source)

	got, err := Inspect(pkg, Options{Types: []string{"Token"}, Prefix: "shapes."})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Types) != 1 || got.Types[0].Name != "shapes.Token" {
		t.Fatalf("types = %+v", got.Types)
	}
	// Token is not final here, so Owner's *Token result resolves.
	if len(got.Types[0].Methods) != 1 || got.Types[0].Methods[0].Result != "shapes.Token*" {
		t.Fatalf("methods = %+v", got.Types[0].Methods)
	}

	if _, err := Inspect(pkg, Options{Types: []string{"Count"}}); err == nil {
		t.Fatal("expected error for non-struct type")
	}
}

func TestRender(t *testing.T) {
	pkg := check(t, source)
	model, err := Inspect(pkg, Options{Final: []string{"Token"}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Render(model, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"// Code generated by reflect-gen. DO NOT EDIT.",
		"package shapes",
		`meta "github.com/wippyai/reflect-runtime/meta"`,
		"func RegisterReflection(r *meta.Registry) error {",
		`tPoint, err := meta.Declare[Point](r, "Point")`,
		`tToken, err := meta.Declare[Token](r, "Token", meta.Final())`,
		`meta.DeclarePointer(r, tPoint)`,
		`tPoint.DefineConstructor(NewPoint, r.MustLookup("float64"), r.MustLookup("float64"))`,
		`tPoint.DefineField("next", r.MustLookup("Point*"), "Next")`,
		`tPoint.DefineFunction("move", (*Point).Move, nil, r.MustLookup("float64"), r.MustLookup("float64"))`,
		`tPoint.DefineFunction("dist", (*Point).Dist, r.MustLookup("float64"), r.MustLookup("Point"))`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "DeclarePointer(r, tToken)") {
		t.Error("final type must not get a pointer variant")
	}

	if _, err := parser.ParseFile(token.NewFileSet(), "zz_reflect.go", out, 0); err != nil {
		t.Fatalf("rendered file does not parse: %v", err)
	}
}
