package script

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/reflect-runtime/errors"
	"github.com/wippyai/reflect-runtime/meta"
	"github.com/wippyai/reflect-runtime/scope"
)

// Runner executes scenario scripts against a registry.
type Runner struct {
	registry *meta.Registry
	logger   *zap.Logger
	out      io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for step tracing.
func WithLogger(l *zap.Logger) Option {
	return func(rn *Runner) {
		rn.logger = l
	}
}

// WithOutput writes one line per executed step to w.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.out = w
	}
}

// NewRunner creates a runner over r.
func NewRunner(r *meta.Registry, opts ...Option) *Runner {
	rn := &Runner{registry: r}
	for _, opt := range opts {
		opt(rn)
	}
	if rn.logger == nil {
		rn.logger = meta.Logger()
	}
	return rn
}

// Result summarizes a finished script.
type Result struct {
	// Vars holds the rendering of every variable after the last step.
	Vars map[string]string
	// Steps is the number of executed steps.
	Steps int
}

// RunFile reads and runs the script at path.
func (rn *Runner) RunFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, err, "read script")
	}
	return rn.Run(ctx, src, path)
}

// Run parses src and executes its steps in order. Every value the script
// owns is released before Run returns, also on failure.
func (rn *Runner) Run(ctx context.Context, src []byte, filename string) (res *Result, err error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, diags, "parse "+filename)
	}
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, diags, "decode "+filename)
	}

	s := &session{
		Runner: rn,
		scope:  scope.New(scope.WithLogger(rn.logger)),
		vars:   make(map[string]*binding),
	}
	defer func() {
		err = multierr.Append(err, s.scope.Close())
	}()

	res = &Result{}
	for _, block := range content.Blocks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.exec(block); err != nil {
			return res, stepError(block, err)
		}
		res.Steps++
	}
	res.Vars = s.snapshot()
	rn.logger.Debug("script finished",
		zap.String("file", filename),
		zap.Int("steps", res.Steps))
	return res, nil
}

type binding struct {
	value  *meta.Value
	handle scope.Handle
}

type session struct {
	*Runner
	scope *scope.Scope
	vars  map[string]*binding
}

func (s *session) exec(block *hcl.Block) error {
	label := block.Labels[0]
	switch block.Type {
	case blockNew:
		var body newBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.construct(label, body)
	case blockPointer:
		var body pointerBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.pointer(label, body.To)
	case blockSet:
		var body valueBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.set(label, block.Labels[1], body)
	case blockGet:
		var body intoBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.get(label, block.Labels[1], body.Into)
	case blockCall:
		var body callBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.call(label, block.Labels[1], body)
	case blockStaticSet:
		var body valueBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.staticSet(label, block.Labels[1], body)
	case blockStaticGet:
		var body intoBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.staticGet(label, block.Labels[1], body.Into)
	case blockStaticCall:
		var body callBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.staticCall(label, block.Labels[1], body)
	case blockConvert:
		var body convertBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.convert(label, body)
	case blockDeref:
		var body derefBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.deref(label, body.Into)
	case blockExpect:
		var body expectBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.expect(label, body)
	case blockDestruct:
		var body emptyBody
		if err := decode(block, &body); err != nil {
			return err
		}
		return s.destruct(label)
	}
	return errors.New(errors.PhaseScript, errors.KindInvalidInput).Detail("unknown step %q", block.Type).Build()
}

func decode(block *hcl.Block, target any) error {
	if diags := gohcl.DecodeBody(block.Body, nil, target); diags.HasErrors() {
		return errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, diags, "decode "+block.Type)
	}
	return nil
}

func stepError(block *hcl.Block, err error) error {
	kind := errors.KindOf(err)
	if kind == "" {
		kind = errors.KindInvocation
	}
	return errors.New(errors.PhaseScript, kind).
		Member(block.Type).
		Cause(err).
		Detail("%s", block.DefRange).
		Build()
}

func (s *session) construct(name string, body newBody) error {
	t, err := s.registry.Lookup(body.Type)
	if err != nil {
		return err
	}
	args, err := s.arguments(body.Args, body.Refs)
	if err != nil {
		return err
	}
	ctors := t.Constructors()
	candidates := make([][]*meta.Type, len(ctors))
	for i, c := range ctors {
		candidates[i] = c.Params()
	}
	i, b, err := s.resolve(t, "constructor", candidates, body.Signature, args)
	if err != nil {
		return err
	}
	defer b.close()

	v, err := ctors[i].Construct(b.values...)
	if err != nil {
		return err
	}
	s.trace("new %s = %s%s -> %s", name, t.Name(), signatureString(candidates[i]), v)
	return s.bindVar(name, v)
}

func (s *session) pointer(name, target string) error {
	v, err := s.lookup(target)
	if err != nil {
		return err
	}
	pt := v.Type().AddPointer()
	if pt == nil {
		return errors.CapabilityMissing(errors.PhaseScript, v.Type().Name(), "pointer type")
	}
	addr, err := v.Addr()
	if err != nil {
		return err
	}
	p, err := meta.Pointer(pt, addr)
	if err != nil {
		return err
	}
	s.trace("pointer %s = &%s", name, target)
	return s.bindVar(name, p)
}

func (s *session) set(name, property string, body valueBody) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	p := v.Type().Property(property)
	if p == nil {
		p, err = s.referentProperty(v.Type(), property)
		if err != nil {
			return err
		}
	}
	nv, err := literal(p.Type(), body.Value)
	if err != nil {
		return err
	}
	defer nv.Close()
	if err := p.Set(v, nv); err != nil {
		return err
	}
	s.trace("set %s.%s = %s", name, property, nv)
	return nil
}

func (s *session) get(name, property, into string) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	p := v.Type().Property(property)
	if p == nil {
		p, err = s.referentProperty(v.Type(), property)
		if err != nil {
			return err
		}
	}
	out, err := p.Get(v)
	if err != nil {
		return err
	}
	s.trace("get %s.%s -> %s", name, property, out)
	return s.store(into, out)
}

// referentProperty finds a property declared on the type a reference
// variant aliases.
func (s *session) referentProperty(t *meta.Type, property string) (*meta.MemberProperty, error) {
	if ref := t.Referent(); ref != nil {
		if p := ref.Property(property); p != nil {
			return p, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseScript, "property", t.Name()+"."+property)
}

func (s *session) call(name, function string, body callBody) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	owner := v.Type()
	if owner.Referent() != nil {
		owner = owner.Referent()
	}
	overloads := owner.Overloads(function)
	if len(overloads) == 0 {
		return errors.NotFound(errors.PhaseScript, "function", owner.Name()+"."+function)
	}
	args, err := s.arguments(body.Args, body.Refs)
	if err != nil {
		return err
	}
	candidates := make([][]*meta.Type, len(overloads))
	for i, f := range overloads {
		candidates[i] = f.Params()
	}
	i, b, err := s.resolve(owner, function, candidates, body.Signature, args)
	if err != nil {
		return err
	}
	defer b.close()

	out, err := overloads[i].Invoke(v, b.values...)
	if err != nil {
		return err
	}
	s.trace("call %s.%s%s -> %s", name, function, signatureString(candidates[i]), out)
	return s.store(body.Into, out)
}

func (s *session) staticSet(typeName, property string, body valueBody) error {
	t, err := s.registry.Lookup(typeName)
	if err != nil {
		return err
	}
	p := t.StaticProperty(property)
	if p == nil {
		return errors.NotFound(errors.PhaseScript, "static property", typeName+"::"+property)
	}
	nv, err := literal(p.Type(), body.Value)
	if err != nil {
		return err
	}
	defer nv.Close()
	if err := p.Set(nv); err != nil {
		return err
	}
	s.trace("static_set %s::%s = %s", typeName, property, nv)
	return nil
}

func (s *session) staticGet(typeName, property, into string) error {
	t, err := s.registry.Lookup(typeName)
	if err != nil {
		return err
	}
	p := t.StaticProperty(property)
	if p == nil {
		return errors.NotFound(errors.PhaseScript, "static property", typeName+"::"+property)
	}
	out := p.Get()
	s.trace("static_get %s::%s -> %s", typeName, property, out)
	return s.store(into, out)
}

func (s *session) staticCall(typeName, function string, body callBody) error {
	t, err := s.registry.Lookup(typeName)
	if err != nil {
		return err
	}
	overloads := t.StaticOverloads(function)
	if len(overloads) == 0 {
		return errors.NotFound(errors.PhaseScript, "static function", typeName+"::"+function)
	}
	args, err := s.arguments(body.Args, body.Refs)
	if err != nil {
		return err
	}
	candidates := make([][]*meta.Type, len(overloads))
	for i, f := range overloads {
		candidates[i] = f.Params()
	}
	i, b, err := s.resolve(t, function, candidates, body.Signature, args)
	if err != nil {
		return err
	}
	defer b.close()

	out, err := overloads[i].Invoke(b.values...)
	if err != nil {
		return err
	}
	s.trace("static_call %s::%s%s -> %s", typeName, function, signatureString(candidates[i]), out)
	return s.store(body.Into, out)
}

func (s *session) convert(name string, body convertBody) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	to, err := s.registry.Lookup(body.To)
	if err != nil {
		return err
	}
	from := v.Type()
	if from.Referent() != nil {
		from = from.Referent()
	}
	out, err := from.Convert(v, to)
	if err != nil {
		return err
	}
	s.trace("convert %s to %s -> %s", name, to.Name(), out)
	return s.store(body.Into, out)
}

func (s *session) deref(name, into string) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	c := v.Type().Caster()
	if c == nil {
		return errors.CapabilityMissing(errors.PhaseScript, v.Type().Name(), "caster")
	}
	out, err := c.RemovePointer(v)
	if err != nil {
		return err
	}
	s.trace("deref %s -> %s", name, out)
	return s.store(into, out)
}

func (s *session) expect(name string, body expectBody) error {
	v, err := s.lookup(name)
	if err != nil {
		return err
	}
	subject := name
	if body.Property != "" {
		p := v.Type().Property(body.Property)
		if p == nil {
			if p, err = s.referentProperty(v.Type(), body.Property); err != nil {
				return err
			}
		}
		if v, err = p.Get(v); err != nil {
			return err
		}
		subject += "." + body.Property
	}

	if body.State != "" && v.State().String() != body.State {
		return errors.New(errors.PhaseScript, errors.KindExpectation).
			Detail("%s: state is %s, want %s", subject, v.State(), body.State).
			Build()
	}
	if isSet(body.Equals) {
		ok, want, err := equal(v, body.Equals)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(errors.PhaseScript, errors.KindExpectation).
				Detail("%s is %s, want %s", subject, v, want).
				Build()
		}
	}
	s.trace("expect %s ok", subject)
	return nil
}

func (s *session) destruct(name string) error {
	b, ok := s.vars[name]
	if !ok {
		return errors.NotFound(errors.PhaseScript, "variable", name)
	}
	if b.value.State() == meta.StateDestructed {
		return errors.UseAfterDestruct(errors.PhaseScript, b.value.Type().Name())
	}
	if b.handle != 0 {
		h := b.handle
		b.handle = 0
		if err := s.scope.Release(h); err != nil {
			return err
		}
	} else if err := b.value.Type().Destruct(b.value); err != nil {
		return err
	}
	s.trace("destruct %s", name)
	return nil
}

func (s *session) lookup(name string) (*meta.Value, error) {
	b, ok := s.vars[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseScript, "variable", name)
	}
	return b.value, nil
}

// store binds out to into, or releases it when the result is discarded.
func (s *session) store(into string, out *meta.Value) error {
	if out == nil {
		if into != "" {
			return errors.New(errors.PhaseScript, errors.KindInvalidInput).
				Detail("step returns no value to store in %q", into).
				Build()
		}
		return nil
	}
	if into == "" {
		return out.Close()
	}
	return s.bindVar(into, out)
}

// bindVar names v, releasing any value previously bound to the name.
// Values the script owns are adopted into the session scope.
func (s *session) bindVar(name string, v *meta.Value) error {
	if old, ok := s.vars[name]; ok && old.handle != 0 {
		if err := s.scope.Release(old.handle); err != nil {
			return err
		}
	}
	b := &binding{value: v}
	if st := v.State(); st == meta.StateOwned || st == meta.StateRawPointer {
		h, err := s.scope.Adopt(v)
		if err != nil {
			return err
		}
		b.handle = h
	}
	s.vars[name] = b
	return nil
}

func (s *session) snapshot() map[string]string {
	out := make(map[string]string, len(s.vars))
	for name, b := range s.vars {
		out[name] = b.value.String()
	}
	return out
}

func (s *session) trace(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Debug("script step", zap.String("step", msg))
	if s.out != nil {
		fmt.Fprintln(s.out, msg)
	}
}
