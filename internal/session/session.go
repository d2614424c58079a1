// Package session keeps one mounted calculator per visitor for the web host.
package session

import (
	"errors"
	"sync"
	"time"

	"expcalc/internal/dom"
	"expcalc/internal/widget"
)

// ErrClosed is returned by Do once the session has been evicted and its
// calculator unmounted.
var ErrClosed = errors.New("session closed")

// Session is one visitor's document with its calculator mounted in it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	doc     *dom.Document
	calc    *widget.Calculator
	pending []widget.Change
	closed  bool
}

func newSession(id string, factory Factory) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		doc:       dom.NewDocument(),
	}
	s.calc = factory(id, s.record)
	s.doc.Mount(s.calc)
	return s
}

// record collects calculator changes; it only runs inside Do.
func (s *Session) record(ch widget.Change) {
	s.pending = append(s.pending, ch)
}

// Do runs fn with exclusive access to the session's document and
// calculator and returns the changes the calculator reported meanwhile.
// Events for one session are handled one at a time. A closed session does
// not run fn and returns ErrClosed.
func (s *Session) Do(fn func(doc *dom.Document, calc *widget.Calculator)) ([]widget.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.doc.IsMounted(s.calc) {
		return nil, ErrClosed
	}
	s.pending = nil
	fn(s.doc, s.calc)
	changes := s.pending
	s.pending = nil
	return changes, nil
}

// close unmounts the calculator so its listeners are released.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc.Unmount(s.calc)
}
