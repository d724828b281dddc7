package scope

import (
	"sort"
	"sync"

	"github.com/wippyai/reflect-runtime/meta"
)

// store is the handle table behind a Scope: a slice of slots with a free
// list and per-slot borrow counts.
type store struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	seq      uint64
	closed   bool
}

type entry struct {
	value       *meta.Value
	seq         uint64 // adoption order, survives handle reuse
	borrowCount uint32
	valid       bool
}

func newStore() *store {
	return &store{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// create stores v and returns its handle, or 0 once closed.
func (s *store) create(v *meta.Value) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	s.seq++
	e := entry{value: v, seq: s.seq, valid: true}
	if len(s.freeList) > 0 {
		h := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		s.entries[h-1] = e
		return h
	}

	s.entries = append(s.entries, e)
	return Handle(len(s.entries))
}

// lookup returns the slot for h with the lock held by the caller.
func (s *store) lookup(h Handle) *entry {
	if h == 0 || int(h-1) >= len(s.entries) {
		return nil
	}
	e := &s.entries[h-1]
	if !e.valid {
		return nil
	}
	return e
}

func (s *store) get(h Handle) (*meta.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// drop frees the slot of h. borrowed reports a refusal due to outstanding
// borrows; found is false for invalid handles.
func (s *store) drop(h Handle) (v *meta.Value, found, borrowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(h)
	if e == nil {
		return nil, false, false
	}
	if e.borrowCount > 0 {
		return e.value, true, true
	}

	v = e.value
	*e = entry{}
	s.freeList = append(s.freeList, h)
	return v, true, false
}

func (s *store) borrow(h Handle) (*meta.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(h)
	if e == nil {
		return nil, false
	}
	e.borrowCount++
	return e.value, true
}

func (s *store) returnBorrow(h Handle) (*meta.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(h)
	if e == nil || e.borrowCount == 0 {
		return nil, false
	}
	e.borrowCount--
	return e.value, true
}

func (s *store) borrows(h Handle) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.lookup(h); e != nil {
		return e.borrowCount
	}
	return 0
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.valid {
			count++
		}
	}
	return count
}

func (s *store) each(fn func(Handle, *meta.Value) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, e := range s.entries {
		if e.valid && !fn(Handle(i+1), e.value) {
			break
		}
	}
}

// drain closes the store and hands back every live slot, most recently
// adopted first. Borrow counts are ignored.
func (s *store) drain() ([]Handle, []*meta.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil
	}
	s.closed = true

	live := make([]Handle, 0, len(s.entries))
	for i, e := range s.entries {
		if e.valid {
			live = append(live, Handle(i+1))
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return s.entries[live[i]-1].seq > s.entries[live[j]-1].seq
	})

	values := make([]*meta.Value, len(live))
	for i, h := range live {
		values[i] = s.entries[h-1].value
	}
	s.entries = nil
	s.freeList = nil
	return live, values
}

func (s *store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
