package scope

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/reflect-runtime/errors"
	"github.com/wippyai/reflect-runtime/meta"
)

// Scope owns Owned values by handle and guarantees their release.
//
// Values adopted into a Scope are destructed when released or when the
// Scope closes. Borrowed views block Release until every borrow is
// returned. A Scope is safe for concurrent use; the values it holds are not.
type Scope struct {
	store     *store
	logger    *zap.Logger
	observers []subscription
	nextSub   uint64
	obsMu     sync.RWMutex
}

type subscription struct {
	observer Observer
	id       uint64
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scope) {
		s.logger = l
	}
}

// New creates an empty scope.
func New(opts ...Option) *Scope {
	s := &Scope{store: newStore()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = meta.Logger()
	}
	return s
}

// Adopt takes responsibility for releasing v. Only Owned and RawPointer
// values can be adopted.
func (s *Scope) Adopt(v *meta.Value) (Handle, error) {
	switch v.State() {
	case meta.StateOwned, meta.StateRawPointer:
	case meta.StateEmpty:
		return 0, errors.New(errors.PhaseScope, errors.KindEmptyValue).Detail("cannot adopt an empty value").Build()
	case meta.StateDestructed:
		return 0, errors.UseAfterDestruct(errors.PhaseScope, v.Type().Name())
	default:
		return 0, errors.NotOwned(errors.PhaseScope, v.Type().Name(), v.Ownership().String())
	}

	h := s.store.create(v)
	if h == 0 {
		return 0, closedError()
	}

	s.logger.Debug("adopt value",
		zap.Uint32("handle", uint32(h)),
		zap.String("type", v.Type().Name()))
	s.notify(Event{Kind: EventAdopted, Handle: h, Type: v.Type(), Value: v})
	return h, nil
}

// Get returns the value held under h.
func (s *Scope) Get(h Handle) (*meta.Value, bool) {
	return s.store.get(h)
}

// GetTyped returns the value held under h only if its type is t.
func (s *Scope) GetTyped(h Handle, t *meta.Type) (*meta.Value, bool) {
	v, ok := s.store.get(h)
	if !ok || v.Type() != t {
		return nil, false
	}
	return v, true
}

// Borrow returns a Referenced view of the value under h and records the
// borrow. Each Borrow must be paired with Return.
func (s *Scope) Borrow(h Handle) (*meta.Value, error) {
	v, ok := s.store.borrow(h)
	if !ok {
		return nil, s.missing(h)
	}
	view, err := referenceTo(v)
	if err != nil {
		s.store.returnBorrow(h)
		return nil, errors.Wrap(errors.PhaseScope, errors.KindInvalidArguments, err, fmt.Sprintf("borrow handle %d", h))
	}
	s.notify(Event{Kind: EventBorrowed, Handle: h, Type: v.Type(), Value: view})
	return view, nil
}

func referenceTo(v *meta.Value) (*meta.Value, error) {
	addr, err := v.Addr()
	if err != nil {
		return nil, err
	}
	return meta.Ref(v.Type(), addr)
}

// Return ends one borrow of the value under h.
func (s *Scope) Return(h Handle) error {
	v, ok := s.store.returnBorrow(h)
	if !ok {
		return errors.New(errors.PhaseScope, errors.KindInvalidArguments).
			Detail("handle %d has no outstanding borrow", h).
			Build()
	}
	s.notify(Event{Kind: EventBorrowReturned, Handle: h, Type: v.Type(), Value: v})
	return nil
}

// Borrows returns the number of outstanding borrows of h.
func (s *Scope) Borrows(h Handle) int {
	return int(s.store.borrows(h))
}

// Release removes the value under h and destructs it. It is refused while
// borrows are outstanding.
func (s *Scope) Release(h Handle) error {
	v, found, borrowed := s.store.drop(h)
	if !found {
		return s.missing(h)
	}
	if borrowed {
		return errors.New(errors.PhaseScope, errors.KindBorrowed).
			Type(v.Type().Name()).
			Detail("handle %d has outstanding borrows", h).
			Build()
	}
	return s.release(h, v)
}

// Len returns the number of held values.
func (s *Scope) Len() int {
	return s.store.len()
}

// Each calls fn for every held value in handle order until fn returns false.
func (s *Scope) Each(fn func(Handle, *meta.Value) bool) {
	s.store.each(fn)
}

// Subscribe adds an observer for lifecycle events. The returned func removes
// this subscription and may be called more than once.
func (s *Scope) Subscribe(o Observer) (cancel func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.observers = append(s.observers, subscription{observer: o, id: id})
	return func() {
		s.unsubscribe(func(sub subscription) bool { return sub.id == id })
	}
}

// Unsubscribe removes the first subscription of o. Observers of an
// uncomparable type, such as ObserverFunc, never match; remove those with the
// func returned by Subscribe.
func (s *Scope) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	s.unsubscribe(func(sub subscription) bool { return sub.observer == o })
}

func (s *Scope) unsubscribe(match func(subscription) bool) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, sub := range s.observers {
		if match(sub) {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Close releases every held value, most recently adopted first, and stops accepting
// new values. Outstanding borrows do not prevent release. Destructor errors
// are combined; closing twice is a no-op.
func (s *Scope) Close() error {
	handles, values := s.store.drain()
	var err error
	for i, v := range values {
		err = multierr.Append(err, s.release(handles[i], v))
	}
	if len(values) > 0 {
		s.logger.Debug("scope closed", zap.Int("released", len(values)))
	}
	return err
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	return s.store.isClosed()
}

func (s *Scope) release(h Handle, v *meta.Value) error {
	err := v.Close()
	if err != nil {
		s.logger.Warn("release failed",
			zap.Uint32("handle", uint32(h)),
			zap.String("type", v.Type().Name()),
			zap.Error(err))
		err = errors.Wrap(errors.PhaseScope, errors.KindInvocation, err, fmt.Sprintf("release handle %d", h))
	}
	s.notify(Event{Kind: EventReleased, Handle: h, Type: v.Type(), Value: v})
	return err
}

func (s *Scope) missing(h Handle) error {
	if s.store.isClosed() {
		return closedError()
	}
	return errors.NotFound(errors.PhaseScope, "handle", fmt.Sprint(h))
}

func (s *Scope) notify(e Event) {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, sub := range s.observers {
		sub.observer.OnScopeEvent(e)
	}
}

func closedError() error {
	return errors.New(errors.PhaseScope, errors.KindClosed).Detail("scope is closed").Build()
}
