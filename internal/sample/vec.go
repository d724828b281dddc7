package sample

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wippyai/reflect-runtime/meta"
)

// registerVec reflects r3.Vec as "Vec". The Go type is left untouched; every
// member is attached from the outside.
func registerVec(r *meta.Registry) error {
	v, err := meta.Declare[r3.Vec](r, "Vec")
	if err != nil {
		return err
	}
	if err := meta.DeclareReferences(r, v); err != nil {
		return err
	}
	if _, err := meta.DeclarePointer(r, v); err != nil {
		return err
	}
	f64 := r.MustLookup("float64")
	cref := r.MustLookup(meta.ConstRefName("Vec"))

	if _, err := v.DefineConstructor(func() r3.Vec { return r3.Vec{} }); err != nil {
		return err
	}
	if _, err := v.DefineConstructor(func(x, y, z float64) r3.Vec {
		return r3.Vec{X: x, Y: y, Z: z}
	}, f64, f64, f64); err != nil {
		return err
	}
	if _, err := v.DefineConstructor(func(src *r3.Vec) r3.Vec { return *src }, cref); err != nil {
		return err
	}

	for _, field := range []struct{ name, field string }{{"x", "X"}, {"y", "Y"}, {"z", "Z"}} {
		if _, err := v.DefineField(field.name, f64, field.field); err != nil {
			return err
		}
	}

	binary := []struct {
		name string
		fn   func(p, q r3.Vec) r3.Vec
	}{
		{"add", r3.Add},
		{"sub", r3.Sub},
		{"cross", r3.Cross},
	}
	for _, b := range binary {
		fn := b.fn
		if _, err := v.DefineFunction(b.name, func(p *r3.Vec, q *r3.Vec) r3.Vec {
			return fn(*p, *q)
		}, v, cref); err != nil {
			return err
		}
	}

	if _, err := v.DefineFunction("dot", func(p *r3.Vec, q *r3.Vec) float64 {
		return r3.Dot(*p, *q)
	}, f64, cref); err != nil {
		return err
	}
	if _, err := v.DefineFunction("scale", func(p *r3.Vec, f float64) r3.Vec {
		return r3.Scale(f, *p)
	}, v, f64); err != nil {
		return err
	}
	if _, err := v.DefineFunction("norm", func(p *r3.Vec) float64 {
		return r3.Norm(*p)
	}, f64); err != nil {
		return err
	}
	_, err = v.DefineConversion(f64, r3.Norm)
	return err
}
