// Package errors provides structured error types for the reflection runtime.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the registered type name, the member involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindInvalidArguments).
//		Type("Counter").
//		Member("multiply").
//		Detail("argument 0: want int, got float32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotRegistered("Counter")
//	err := errors.UseAfterDestruct(errors.PhaseAccess, "Counter")
//
// All errors implement the standard error interface and support errors.Is/As.
// A Kind is an error too, which allows matching on the category alone:
//
//	if errors.Is(err, errors.KindNotRegistered) { ... }
package errors
