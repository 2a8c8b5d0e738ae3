package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"deploywatch/internal/probe"
)

// Session is the snapshot of one monitoring run, from Start to cancellation.
// At most one of the two streak counters is nonzero at any time.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	URL             string        `json:"url"`
	StartedAt       time.Time     `json:"started_at"`
	HealthyStreak   int           `json:"healthy_streak"`
	UnhealthyStreak int           `json:"unhealthy_streak"`
	LastResult      *probe.Result `json:"last_result,omitempty"`
}

// Store holds the live session for the status API. One session per process;
// a new Begin replaces the old snapshot wholesale.
type Store struct {
	mu  sync.RWMutex
	cur *Session
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Begin(url string, start time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &Session{
		ID:        uuid.New(),
		URL:       url,
		StartedAt: start.UTC(),
	}
	return *s.cur
}

// Record applies one probe result: the matching streak increments, the
// counterpart resets to zero. Returns the updated counters.
func (s *Store) Record(r probe.Result) (healthy, unhealthy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return 0, 0
	}
	if r.Healthy {
		s.cur.HealthyStreak++
		s.cur.UnhealthyStreak = 0
	} else {
		s.cur.UnhealthyStreak++
		s.cur.HealthyStreak = 0
	}
	rc := r
	s.cur.LastResult = &rc
	return s.cur.HealthyStreak, s.cur.UnhealthyStreak
}

// Current returns a copy of the live session; ok is false before Begin.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Session{}, false
	}
	out := *s.cur
	if s.cur.LastResult != nil {
		rc := *s.cur.LastResult
		out.LastResult = &rc
	}
	return out, true
}
