package meta

import (
	"fmt"
	"testing"
)

type counter struct {
	A      int
	B      *counter
	hidden int
}

func newCounter() counter { return counter{A: 5} }

func newCounterWith(a int, b *counter) counter { return counter{A: a, B: b} }

func (c *counter) Increment() { c.A++ }

func (c *counter) Multiply(n int) int { return c.A * n }

func (c counter) Sum(other *counter) int { return c.A + other.A }

func (c *counter) Fail() error { return fmt.Errorf("refused") }

func (c *counter) Explode() { panic("boom") }

func (c *counter) Self() *counter { return c }

var counterF float32 = 0.5

func counterDecrement() { counterF -= 1 }

func counterMultiply(f float32) float32 { return counterF * f }

type fixture struct {
	r       *Registry
	intT    *Type
	counter *Type
	ptr     *Type
	ref     *Type
	cref    *Type
	float   *Type
	a       *MemberProperty
	b       *MemberProperty
	f       *StaticProperty
	dtors   *int
}

// newFixture registers builtins and a counter type reflected the way the
// commands and examples do it.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	fx := &fixture{r: r, dtors: new(int)}
	fx.intT = r.MustLookup("int")
	fx.float = r.MustLookup("float32")

	var err error
	if fx.counter, err = Declare[counter](r, "Counter"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := DeclareReferences(r, fx.counter); err != nil {
		t.Fatalf("DeclareReferences: %v", err)
	}
	if fx.ptr, err = DeclarePointer(r, fx.counter); err != nil {
		t.Fatalf("DeclarePointer: %v", err)
	}
	fx.ref = r.MustLookup(RefName("Counter"))
	fx.cref = r.MustLookup(ConstRefName("Counter"))

	must := func(_ any, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(fx.counter.DefineConstructor(newCounter))
	must(fx.counter.DefineConstructor(newCounterWith, fx.intT, fx.ptr))
	must(fx.counter.DefineConstructor(func(src *counter) counter { return *src }, fx.cref))
	must(fx.counter.DefineDestructor(func(c *counter) { *fx.dtors++ }))

	fx.a, err = fx.counter.DefineField("a", fx.intT, "A")
	must(fx.a, err)
	fx.b, err = fx.counter.DefineProperty("b", fx.ptr, func(c *counter) **counter { return &c.B })
	must(fx.b, err)

	must(fx.counter.DefineFunction("increment", (*counter).Increment, nil))
	must(fx.counter.DefineFunction("multiply", (*counter).Multiply, fx.intT, fx.intT))
	must(fx.counter.DefineFunction("sum", counter.Sum, fx.intT, fx.cref))
	must(fx.counter.DefineFunction("fail", (*counter).Fail, nil))
	must(fx.counter.DefineFunction("explode", (*counter).Explode, nil))
	must(fx.counter.DefineFunction("self", (*counter).Self, fx.ref))

	counterF = 0.5
	fx.f, err = fx.counter.DefineStaticProperty("f", fx.float, &counterF)
	must(fx.f, err)
	must(fx.counter.DefineStaticFunction("static_decrement", counterDecrement, nil))
	must(fx.counter.DefineStaticFunction("static_multiply", counterMultiply, fx.float, fx.float))
	must(fx.counter.DefineConversion(fx.intT, func(c counter) int { return c.A }))
	return fx
}

func (fx *fixture) newCounter(t *testing.T) *Value {
	t.Helper()
	v, err := fx.counter.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func (fx *fixture) boxInt(t *testing.T, n int) *Value {
	t.Helper()
	v, err := Box(fx.intT, n)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	return v
}

func (fx *fixture) readA(t *testing.T, v *Value) int {
	t.Helper()
	got, err := fx.a.Get(v)
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	n, err := As[int](got)
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	return n
}
