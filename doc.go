// Package reflectruntime provides runtime reflection for Go types that were
// never written with reflection in mind.
//
// Types are registered by name in a registry together with descriptors for
// their constructors, destructor, properties, member and static functions
// and conversions. Callers then create, inspect and invoke instances through
// type-erased values without knowing the concrete Go type.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	reflectruntime/      Package documentation
//	├── meta/            Registry, types, values and descriptors
//	├── scope/           Handle table owning values until release
//	├── describe/        Read-only YAML report of a registry
//	├── script/          HCL scenario runner driving a registry
//	├── errors/          Structured error types with phase and kind
//	├── internal/gen/    Registration code generator
//	├── internal/sample/ Reflected sample types
//	└── cmd/             reflect-inspect and reflect-gen
//
// # Quick Start
//
// Register a type and call it through the registry:
//
//	r := meta.NewRegistry()
//	_ = meta.RegisterBuiltins(r)
//
//	c, _ := meta.Declare[Counter](r, "Counter")
//	_, _ = c.DefineConstructor(NewCounter)
//	_, _ = c.DefineFunction("multiply", (*Counter).Multiply, r.MustLookup("int"), r.MustLookup("int"))
//	r.Freeze()
//
//	v, _ := c.New()
//	defer v.Close()
//
//	n, _ := meta.ValueOf(r, 2)
//	out, err := c.Invoke(v, "multiply", n)
//
// # Types and Variants
//
// Every registered type has a name and a kind. Pointer and reference
// variants are registered as separate types named "T*", "T&", "const T&"
// and "T&&". Reference variants alias the storage of the type they refer
// to, so a value can be passed to a reference parameter without copying.
// A type marked final has no pointer variant.
//
// # Ownership
//
// A value is Owned, Referenced or a RawPointer. Only Owned values run a
// destructor, and a destructed value rejects every further use. The scope
// package holds Owned values by handle and releases whatever is left when
// it closes.
//
// # Thread Safety
//
// A Registry is safe for concurrent lookups once frozen. Registration is
// not synchronized with lookups. Values are not thread-safe; a Scope is.
package reflectruntime
