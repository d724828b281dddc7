package scope

import (
	"github.com/wippyai/reflect-runtime/meta"
)

// Handle is an opaque reference to a value held by a Scope.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a value lifecycle notification.
type EventType uint8

const (
	EventAdopted EventType = iota
	EventReleased
	EventBorrowed
	EventBorrowReturned
)

func (e EventType) String() string {
	switch e {
	case EventAdopted:
		return "adopted"
	case EventReleased:
		return "released"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow-returned"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle change of a held value.
type Event struct {
	Value  *meta.Value
	Type   *meta.Type
	Handle Handle
	Kind   EventType
}

// Observer receives lifecycle events.
type Observer interface {
	OnScopeEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnScopeEvent(e Event) { f(e) }
