// Package session holds the per-user login context between requests.
// Sessions live for the process lifetime; there is no expiry or eviction.
package session

import (
	"sync"

	"tecopos-bridge/internal/model"
)

// Store caches the login context keyed by user. Put overwrites any prior
// entry for the same user (last login wins). Implementations must be safe
// for concurrent use.
type Store interface {
	Put(userID string, s model.Session)
	Get(userID string) (model.Session, bool)
}

// Memory is the in-process Store implementation.
type Memory struct {
	mu sync.RWMutex
	m  map[string]model.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]model.Session)}
}

func (s *Memory) Put(userID string, sess model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

func (s *Memory) Get(userID string) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[userID]
	return sess, ok
}
