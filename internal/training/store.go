// Package training keeps AI practice battles in memory. Sessions are
// addressed by id and evicted once they have been idle for the TTL.
package training

import (
	"errors"
	"sync"
	"time"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
)

var ErrSessionNotFound = errors.New("training session not found")

// Session is one practice battle. The player is always the host side of
// Room; the computer plays the guest.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Room       *game.Room `json:"room"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastActive time.Time  `json:"lastActive"`
}

func (s *Session) clone() *Session {
	out := *s
	out.Room = s.Room.Clone()
	return &out
}

type entry struct {
	session *Session
	expires time.Time
}

// Store is a keyed session store with idle-time eviction.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	debug    bool
	sessions map[string]*entry
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDebug logs every store operation at debug level.
func WithDebug(debug bool) Option {
	return func(s *Store) { s.debug = debug }
}

// NewStore creates an empty store. A non-positive ttl uses the default.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = constants.DefaultTrainingTTL
	}
	s := &Store{ttl: ttl, now: time.Now, sessions: make(map[string]*entry)}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) trace(msg, id string) {
	if s.debug {
		logging.Debug(msg, logging.Fields{constants.LogFieldSessionID: id})
	}
}

// Put stores a copy of sess and starts its idle timer.
func (s *Store) Put(sess *Session) {
	now := s.now()
	c := sess.clone()
	c.LastActive = now
	s.mu.Lock()
	s.sessions[c.ID] = &entry{session: c, expires: now.Add(s.ttl)}
	s.mu.Unlock()
	s.trace("training session stored", c.ID)
}

// Get returns a copy of the session. Expired sessions are reported missing
// even before the sweep removes them.
func (s *Store) Get(id string) (*Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || !now.Before(e.expires) {
		return nil, ErrSessionNotFound
	}
	return e.session.clone(), nil
}

// Update runs fn on the stored session under the store lock and refreshes
// its idle timer. If fn fails the stored session is left unchanged.
func (s *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || !now.Before(e.expires) {
		return nil, ErrSessionNotFound
	}
	work := e.session.clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.LastActive = now
	e.session = work
	e.expires = now.Add(s.ttl)
	s.trace("training session updated", id)
	return work.clone(), nil
}

// Remove deletes a session; it reports whether one was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.trace("training session removed", id)
	}
	return ok
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	var evicted []string
	for id, e := range s.sessions {
		if !now.Before(e.expires) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()
	for _, id := range evicted {
		s.trace("training session expired", id)
	}
	return len(evicted)
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
