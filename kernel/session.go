/*
session.go - Session Manager

PURPOSE:
  Issues, validates, and closes operator sessions. No suspension points:
  every operation here is a constant-time guarded map lookup.

GROUNDED ON:
  generic/resource.go's sync.RWMutex-guarded registry map, scoped to a
  single engine instance instead of the package level.
*/
package kernel

import (
	"sync"
	"time"
)

// SessionManager issues/validates/closes operator sessions keyed by id.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionId]*Session
}

// NewSessionManager returns an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[SessionId]*Session)}
}

// CreateSession issues a fresh session for (terminalId, operatorId). Fails
// when either identifier is blank.
func (sm *SessionManager) CreateSession(terminalId, operatorId string) (SessionId, error) {
	if terminalId == "" {
		return "", &InvalidArgumentError{Field: "terminalId", Reason: "must not be blank"}
	}
	if operatorId == "" {
		return "", &InvalidArgumentError{Field: "operatorId", Reason: "must not be blank"}
	}

	s := &Session{
		ID:         newSessionId(),
		TerminalID: terminalId,
		OperatorID: operatorId,
		CreatedUtc: time.Now().UTC(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[s.ID] = s
	return s.ID, nil
}

// ValidateSession fails when sessionId is unknown or closed. Called at the
// head of every kernel mutation.
func (sm *SessionManager) ValidateSession(sessionId SessionId) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, ok := sm.sessions[sessionId]
	if !ok {
		return ErrUnknownSession
	}
	if s.Closed {
		return ErrSessionClosed
	}
	return nil
}

// CloseSession terminally transitions a session. Idempotent: closing an
// already-closed session is a no-op.
func (sm *SessionManager) CloseSession(sessionId SessionId) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, ok := sm.sessions[sessionId]
	if !ok {
		return ErrUnknownSession
	}
	s.Closed = true
	return nil
}

// Get returns a copy of the session record, for inspection by the Kernel
// Client layer (e.g. to surface terminalId/operatorId in a debug view).
func (sm *SessionManager) Get(sessionId SessionId) (Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[sessionId]
	if !ok {
		return Session{}, false
	}
	return *s, true
}
