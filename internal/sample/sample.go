// Package sample reflects a few types used by the commands, examples and
// tests: Counter, a mutable type with every kind of member, and Vec, the
// gonum r3.Vec reflected without modification.
package sample

import (
	"github.com/wippyai/reflect-runtime/meta"
)

// Register adds builtins, Counter and Vec to r.
func Register(r *meta.Registry) error {
	if err := meta.RegisterBuiltins(r); err != nil {
		return err
	}
	if err := registerCounter(r); err != nil {
		return err
	}
	return registerVec(r)
}

// NewRegistry returns a frozen registry holding the sample types.
func NewRegistry(opts ...meta.Option) (*meta.Registry, error) {
	r := meta.NewRegistry(opts...)
	if err := Register(r); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
