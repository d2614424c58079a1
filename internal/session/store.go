package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"expcalc/internal/log"
	"expcalc/internal/widget"
)

// Factory builds the calculator for a new session. The calculator must
// report its changes to onChange.
type Factory func(sessionID string, onChange func(widget.Change)) *widget.Calculator

// Store holds sessions with TTL and size-based eviction. Evicted sessions
// are unmounted.
type Store struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	factory Factory
	log     *log.Logger
	now     func() time.Time

	stopCleanup  chan struct{}
	cleanupDone  chan struct{}
	shutdownOnce sync.Once
}

type entry struct {
	session   *Session
	expiresAt time.Time
}

// NewStore creates a session store.
func NewStore(maxSize int, ttl time.Duration, factory Factory, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		factory: factory,
		log:     logger.WithComponent(log.ComponentSession),
		now:     time.Now,
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get returns a live session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*Session, bool) {
	elem, ok := s.items[id]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*entry)
	if s.now().After(e.expiresAt) {
		s.removeElement(elem, "expired")
		return nil, false
	}
	e.expiresAt = s.now().Add(s.ttl)
	s.lru.MoveToFront(elem)
	return e.session, true
}

// GetOrCreate returns the session for id, creating one when id is unknown,
// expired or not a valid identifier. created reports whether a new session
// was made; its ID may differ from the one asked for.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.getLocked(id); ok {
		return sess, false
	}
	if _, err := uuid.Parse(id); err != nil {
		id = NewID()
	}

	sess = newSession(id, s.factory)
	elem := s.lru.PushFront(&entry{session: sess, expiresAt: s.now().Add(s.ttl)})
	s.items[id] = elem
	s.log.Debug("Session created", log.FieldSessionID, id, log.FieldOperation, log.OpMount)

	if s.lru.Len() > s.maxSize {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest, "capacity")
		}
	}
	return sess, true
}

// Delete removes and unmounts a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[id]; ok {
		s.removeElement(elem, "deleted")
	}
}

func (s *Store) removeElement(elem *list.Element, reason string) {
	e := elem.Value.(*entry)
	delete(s.items, e.session.ID)
	s.lru.Remove(elem)
	e.session.close()
	s.log.Debug("Session evicted",
		log.FieldSessionID, e.session.ID,
		log.FieldOperation, log.OpEvict,
		"reason", reason)
}

// CleanExpired removes all expired sessions and returns how many were removed
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem, "expired")
	}
	return len(toRemove)
}

// Size returns the current number of sessions
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// StartCleanup begins periodic removal of expired sessions.
func (s *Store) StartCleanup(interval time.Duration) {
	s.mu.Lock()
	if s.stopCleanup != nil {
		s.mu.Unlock()
		return
	}
	s.stopCleanup = make(chan struct{})
	s.cleanupDone = make(chan struct{})
	s.mu.Unlock()

	go s.cleanup(interval)
}

func (s *Store) cleanup(interval time.Duration) {
	defer close(s.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.CleanExpired(); n > 0 {
				s.log.Debug("Session cleanup completed", "sessions_removed", n)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup loop and unmounts every remaining session.
func (s *Store) Stop() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		stop, done := s.stopCleanup, s.cleanupDone
		s.mu.Unlock()
		if stop != nil {
			close(stop)
			<-done
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for elem := s.lru.Front(); elem != nil; {
			next := elem.Next()
			s.removeElement(elem, "shutdown")
			elem = next
		}
	})
}
