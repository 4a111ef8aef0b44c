package web

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dovermoor/cinefetch/internal/shared"
)

// Session statuses, in lifecycle order. A session moves starting → running,
// then to exactly one of the terminal statuses, possibly via cancelling.
const (
	StatusStarting   = "starting"
	StatusRunning    = "running"
	StatusCancelling = "cancelling"
	StatusCancelled  = "cancelled"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Session tracks one dashboard-initiated harvest from submission to download.
type Session struct {
	ID           string
	Status       string
	Target       int
	Concurrency  int
	Format       string
	IncludeAdult bool
	Scraped      int
	Skipped      int
	Filename     string // export path on disk, set once completed
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time

	cancelRequested bool
}

// Finished reports whether the session reached a terminal status.
func (s *Session) Finished() bool {
	switch s.Status {
	case StatusCancelled, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Progress returns the completion percentage, capped at 100 and rounded to
// one decimal place.
func (s *Session) Progress() float64 {
	if s.Target <= 0 {
		return 0
	}
	p := float64(s.Scraped) / float64(s.Target) * 100
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

// Elapsed returns seconds since the session started, frozen at FinishedAt
// once the session is terminal.
func (s *Session) Elapsed() float64 {
	end := time.Now()
	if !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}
	return math.Round(end.Sub(s.StartedAt).Seconds()*10) / 10
}

// SessionManager owns the dashboard session table. Handlers and harvest
// goroutines go through its methods only, and every method hands back a
// snapshot copy rather than the live record.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create registers a new session in the starting state and returns it.
func (m *SessionManager) Create(target, concurrency int, format string, includeAdult bool) Session {
	session := &Session{
		ID:           shared.GenerateID(),
		Status:       StatusStarting,
		Target:       target,
		Concurrency:  concurrency,
		Format:       format,
		IncludeAdult: includeAdult,
		StartedAt:    time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return *session
}

// Get returns a snapshot of the session with the given id.
func (m *SessionManager) Get(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return *session, nil
}

// RequestCancel sets the cooperative cancel flag and moves a live session to
// cancelling. Sessions already in a terminal status are returned unchanged so
// the caller can reject the abort.
func (m *SessionManager) RequestCancel(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if session.Finished() {
		return *session, nil
	}

	session.cancelRequested = true
	session.Status = StatusCancelling
	return *session, nil
}

// CancelRequested reports the cooperative cancel flag. Wired into the engine
// as the HarvestOpts.Cancel poll.
func (m *SessionManager) CancelRequested(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	return ok && session.cancelRequested
}

// SetRunning moves a starting session to running. An abort that landed first
// keeps the session in cancelling.
func (m *SessionManager) SetRunning(id string) (Session, bool) {
	return m.update(id, func(s *Session) {
		if s.Status == StatusStarting {
			s.Status = StatusRunning
		}
	})
}

// RecordScraped advances the running record count. The count never moves
// backwards, so interleaved accumulation and batch updates stay monotonic.
func (m *SessionManager) RecordScraped(id string, scraped int) (Session, bool) {
	return m.update(id, func(s *Session) {
		if scraped > s.Scraped {
			s.Scraped = scraped
		}
	})
}

// Finish moves a session to a terminal status and freezes its counters.
func (m *SessionManager) Finish(id, status string, found, skipped int, path, reason string) (Session, bool) {
	return m.update(id, func(s *Session) {
		s.Status = status
		s.Scraped = found
		s.Skipped = skipped
		s.Filename = path
		s.Error = reason
		s.FinishedAt = time.Now()
	})
}

func (m *SessionManager) update(id string, fn func(*Session)) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	fn(session)
	return *session, true
}
