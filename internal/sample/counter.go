package sample

import (
	"github.com/wippyai/reflect-runtime/meta"
)

// Counter is a small mutable type exercising every descriptor kind.
type Counter struct {
	A int
	B *Counter
}

// NewCounter returns a Counter with its default field values.
func NewCounter() Counter {
	return Counter{A: 5}
}

func NewCounterWith(a int, b *Counter) Counter {
	return Counter{A: a, B: b}
}

func (c *Counter) Increment() { c.A++ }

func (c *Counter) Multiply(n int) int { return c.A * n }

// F is the static property shared by all counters.
var F float32 = 0.5

// Destroyed counts destructor runs.
var Destroyed int

func StaticDecrement() { F-- }

func StaticMultiply(f float32) float32 { return F * f }

// ResetStatics restores F and Destroyed to their initial values.
func ResetStatics() {
	F = 0.5
	Destroyed = 0
}

func registerCounter(r *meta.Registry) error {
	c, err := meta.Declare[Counter](r, "Counter")
	if err != nil {
		return err
	}
	if err := meta.DeclareReferences(r, c); err != nil {
		return err
	}
	ptr, err := meta.DeclarePointer(r, c)
	if err != nil {
		return err
	}
	intT := r.MustLookup("int")
	floatT := r.MustLookup("float32")

	if _, err := c.DefineConstructor(NewCounter); err != nil {
		return err
	}
	if _, err := c.DefineConstructor(NewCounterWith, intT, ptr); err != nil {
		return err
	}
	if _, err := c.DefineConstructor(func(src *Counter) Counter {
		return *src
	}, r.MustLookup(meta.ConstRefName("Counter"))); err != nil {
		return err
	}
	if _, err := c.DefineDestructor(func(*Counter) { Destroyed++ }); err != nil {
		return err
	}

	if _, err := c.DefineField("a", intT, "A"); err != nil {
		return err
	}
	if _, err := c.DefineField("b", ptr, "B"); err != nil {
		return err
	}
	if _, err := c.DefineFunction("increment", (*Counter).Increment, nil); err != nil {
		return err
	}
	if _, err := c.DefineFunction("multiply", (*Counter).Multiply, intT, intT); err != nil {
		return err
	}

	if _, err := c.DefineStaticProperty("f", floatT, &F); err != nil {
		return err
	}
	if _, err := c.DefineStaticFunction("static_decrement", StaticDecrement, nil); err != nil {
		return err
	}
	if _, err := c.DefineStaticFunction("static_multiply", StaticMultiply, floatT, floatT); err != nil {
		return err
	}

	_, err = c.DefineConversion(intT, func(c Counter) int { return c.A })
	return err
}
