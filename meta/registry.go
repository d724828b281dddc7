package meta

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/reflect-runtime/errors"
)

// Registry maps unique type names to Type descriptors.
//
// A Registry is populated during a single-threaded setup phase and then
// frozen. Mutations after Freeze fail with KindFrozen; lookups stay available
// and are safe for concurrent use.
type Registry struct {
	types  map[string]*Type
	byGo   map[reflect.Type]*Type
	logger *zap.Logger
	order  []*Type
	frozen bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty, mutable registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		types: make(map[string]*Type),
		byGo:  make(map[reflect.Type]*Type),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = Logger()
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, creating it on first use.
// It lives for the process lifetime. Prefer passing an explicit Registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// TypeOption configures a Type at registration.
type TypeOption func(*Type)

// Final marks the type final: no pointer-derived type may be linked to it.
func Final() TypeOption {
	return func(t *Type) {
		t.final = true
	}
}

// WithGoType binds the Go type values of this Type hold.
func WithGoType(rt reflect.Type) TypeOption {
	return func(t *Type) {
		t.goType = rt
	}
}

// WithKind sets the variant kind. Reference kinds should also use WithReferent.
func WithKind(k TypeKind) TypeOption {
	return func(t *Type) {
		t.kind = k
	}
}

// WithReferent records the type a reference variant aliases.
func WithReferent(ref *Type) TypeOption {
	return func(t *Type) {
		t.referent = ref
	}
}

// Register creates and inserts an empty Type under name.
func (r *Registry) Register(name string, opts ...TypeOption) (*Type, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "type name cannot be empty")
	}
	if r.frozen {
		return nil, errors.Frozen(name, "register type")
	}
	if _, exists := r.types[name]; exists {
		return nil, errors.AlreadyRegistered(name)
	}

	t := &Type{
		registry: r,
		name:     name,
	}
	for _, opt := range opts {
		opt(t)
	}

	r.types[name] = t
	r.order = append(r.order, t)

	// Reference variants share their referent's Go type and never claim it.
	if t.goType != nil && !t.kind.IsReference() {
		if _, claimed := r.byGo[t.goType]; !claimed {
			r.byGo[t.goType] = t
		}
	}

	r.logger.Debug("register type",
		zap.String("type", name),
		zap.Stringer("kind", t.kind),
		zap.Bool("final", t.final))

	return t, nil
}

// Lookup returns the Type registered under name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, errors.NotRegistered(name)
	}
	return t, nil
}

// MustLookup is like Lookup but panics if name is not registered.
func (r *Registry) MustLookup(name string) *Type {
	t, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TypeFor returns the first non-reference Type bound to the Go type rt.
func (r *Registry) TypeFor(rt reflect.Type) (*Type, error) {
	if rt == nil {
		return nil, errors.InvalidInput(errors.PhaseLookup, "Go type cannot be nil")
	}
	t, ok := r.byGo[rt]
	if !ok {
		return nil, errors.New(errors.PhaseLookup, errors.KindNotRegistered).
			Detail("no type bound to Go type %s", rt).
			Build()
	}
	return t, nil
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*Type {
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.order)
}

// LinkPointer records ptr as the pointer-derived variant of base and installs
// ptr's Caster. Both links are set together so that
// base.AddPointer().RemovePointer() == base.
func (r *Registry) LinkPointer(base, ptr *Type) error {
	if base == nil || ptr == nil {
		return errors.InvalidInput(errors.PhaseRegister, "pointer link needs two types")
	}
	if base.registry != r || ptr.registry != r {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArguments).
			Type(base.name).
			Detail("%s and %s must belong to this registry", base.name, ptr.name).
			Build()
	}
	if err := r.checkMutable(base.name, "link pointer"); err != nil {
		return err
	}
	if base.final {
		return errors.New(errors.PhaseRegister, errors.KindFinalType).
			Type(base.name).
			Detail("final type cannot derive %s", ptr.name).
			Build()
	}
	if base.pointer != nil {
		return errors.AlreadyReflected(base.name, "pointer link")
	}
	if ptr.pointee != nil {
		return errors.AlreadyReflected(ptr.name, "pointee link")
	}
	if ptr.goType != nil && ptr.goType.Kind() != reflect.Pointer {
		return errors.TypeMismatch(errors.PhaseRegister, ptr.name, "pointer type", ptr.goType.String())
	}
	if base.goType != nil && ptr.goType != nil && ptr.goType != reflect.PointerTo(base.goType) {
		return errors.TypeMismatch(errors.PhaseRegister, ptr.name,
			reflect.PointerTo(base.goType).String(), ptr.goType.String())
	}

	base.pointer = ptr
	ptr.pointee = base
	ptr.caster = &Caster{from: ptr, to: base}

	r.logger.Debug("link pointer",
		zap.String("type", base.name),
		zap.String("pointer", ptr.name))
	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	r.logger.Debug("registry frozen", zap.Int("types", len(r.order)))
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

func (r *Registry) checkMutable(typeName, what string) error {
	if r.frozen {
		return errors.Frozen(typeName, what)
	}
	return nil
}
