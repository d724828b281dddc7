// Package scope holds Owned meta values by handle and guarantees their release.
//
// A Scope is the scoped-acquisition side of value ownership: code that
// constructs values hands them to a Scope and gets back an integer handle.
// Release destructs one value; Close destructs everything still held.
//
//	s := scope.New()
//	defer s.Close()
//
//	v, err := counter.New()
//	if err != nil {
//		return err
//	}
//	h, err := s.Adopt(v)
//
// # Borrowing
//
// Borrow hands out a Referenced view of a held value and counts it.
// Release fails with errors.KindBorrowed until every borrow is returned:
//
//	view, err := s.Borrow(h)
//	// ... use view ...
//	s.Return(h)
//	s.Release(h)
//
// # Observers
//
// Observers receive Adopted, Released, Borrowed and BorrowReturned events:
//
//	cancel := s.Subscribe(scope.ObserverFunc(func(e scope.Event) {
//		log.Printf("%s %s #%d", e.Kind, e.Type, e.Handle)
//	}))
//	defer cancel()
//
// Handles freed by Release are reused for later adoptions.
package scope
