// Package meta is a runtime metaobject layer over existing Go types.
//
// A Registry maps unique names to Type descriptors. Each Type carries the
// constructors, optional destructor, member and static properties, member and
// static functions and explicit conversions registered for it, plus links to
// its pointer-derived variant. Values cross the layer boxed in a Value, which
// records the Type and whether the box owns, borrows or points at its payload.
//
// # Registration
//
// Registration happens once, before use, and ends with Freeze:
//
//	r := meta.NewRegistry()
//	meta.RegisterBuiltins(r)
//
//	counter, _ := meta.Declare[Counter](r, "Counter")
//	meta.DeclarePointer(r, counter)
//
//	counter.DefineConstructor(func() Counter { return Counter{A: 5} })
//	counter.DefineProperty("a", r.MustLookup("int"), func(c *Counter) *int { return &c.A })
//	counter.DefineFunction("increment", (*Counter).Increment, nil)
//	counter.DefineFunction("multiply", (*Counter).Multiply, r.MustLookup("int"), r.MustLookup("int"))
//
//	r.Freeze()
//
// Native functions are captured as typed Go funcs; their shapes are checked
// against the declared parameter and result Types at registration time.
//
// # Invocation
//
//	c, _ := counter.New()                  // Owned value, a == 5
//	defer c.Close()
//
//	counter.Invoke(c, "increment")
//	a, _ := counter.Property("a").Get(c)   // Referenced value into c
//	n, _ := meta.As[int](a)                // 6
//
// Overloads are resolved by exact Type identity per argument position. There is
// no implicit coercion: an int argument never matches an int64 parameter.
//
// # Ownership
//
// Owned values are released with Close (or a Destructor); the registered
// destructor runs exactly once and the value becomes Destructed. Referenced
// and RawPointer values never release their payload.
//
// # Thread Safety
//
// Registration is single-threaded. After Freeze the registry is read-only and
// safe for concurrent lookups. Values are not synchronized; concurrent access
// to the same instance needs caller-supplied locking.
package meta
