package imapconn

import (
	"sync"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/belmontdev/mailbot/internal/enum"
)

// Session is the runtime handle bound to one account. The manager is the
// only writer; borrowers read the state and the live client through the
// accessors and must tolerate a session that is not ready.
type Session struct {
	key  string
	user string

	mu          sync.RWMutex
	client      *client.Client
	state       enum.SessionState
	lastError   string
	connectedAt *time.Time
}

func newSession(key, user string) *Session {
	return &Session{
		key:   key,
		user:  user,
		state: enum.SessionDisconnected,
	}
}

func (s *Session) Key() string {
	return s.key
}

func (s *Session) Client() *client.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Session) State() enum.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == enum.SessionReady && s.client != nil
}

func (s *Session) setState(state enum.SessionState, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastError = lastError
	if state != enum.SessionReady {
		s.connectedAt = nil
	}
}

func (s *Session) setReady(c *client.Client) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
	s.state = enum.SessionReady
	s.lastError = ""
	s.connectedAt = &now
}

func (s *Session) snapshot() (enum.SessionState, string, *time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.lastError, s.connectedAt
}

func (s *Session) takeClient() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.client
	s.client = nil
	return c
}
