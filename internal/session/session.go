// Package session is the process-local session store: an opaque cookie names
// a session, and each session holds a small set of values (the cart, admin
// lockout counters). Values live only as long as the process; the durable
// state of the system is all in the remote store.
package session

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// CookieName is the session cookie the HTTP layer manages.
const CookieName = "pos_session"

// Store holds per-session key/value state. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]map[string]interface{}
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]map[string]interface{})}
}

// Get returns the value stored under key for the session, if any.
func (s *Store) Get(sessionID, key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	v, ok := values[key]
	return v, ok
}

// Set stores a value under key for the session.
func (s *Store) Set(sessionID, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sessions[sessionID]
	if !ok {
		values = make(map[string]interface{})
		s.sessions[sessionID] = values
	}
	values[key] = value
}

// Delete removes one key from the session.
func (s *Store) Delete(sessionID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if values, ok := s.sessions[sessionID]; ok {
		delete(values, key)
	}
}

// ID returns the request's session ID, issuing the cookie on first contact.
func ID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
