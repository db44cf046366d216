// Package session keeps the per-visitor dashboard state: the execution
// browser, the demo launcher and a one-shot flash message.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

// Session is the state of one visitor.
type Session struct {
	ID       string
	Browser  *viewer.Browser
	Launcher *demo.Launcher

	mu       sync.Mutex
	flash    string
	lastSeen time.Time
}

// SetFlash stores a message shown on the next page render.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

// TakeFlash returns and clears the pending flash message.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store holds sessions in memory. Sessions idle for longer than the TTL are
// evicted by a background loop.
type Store struct {
	gateway ports.Gateway
	clock   ports.Clock
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	stop     chan struct{}
	once     sync.Once
}

// NewStore creates a store whose sessions read through gateway, and starts
// the eviction loop. Call Stop to terminate it.
func NewStore(gateway ports.Gateway, clock ports.Clock, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Store{
		gateway:  gateway,
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Stop terminates the eviction loop. It is safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) evictLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Evict()
		case <-s.stop:
			return
		}
	}
}

// Get returns the session for id, creating a fresh one when id is empty or
// unknown. The boolean reports whether a new session was created.
func (s *Store) Get(id string) (*Session, bool) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.touch(now)
		return sess, false
	}

	sess := &Session{
		ID:       uuid.NewString(),
		Browser:  viewer.NewBrowser(s.gateway),
		Launcher: demo.NewLauncher(s.gateway),
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Evict drops sessions idle for longer than the TTL.
func (s *Store) Evict() {
	cutoff := s.clock.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
