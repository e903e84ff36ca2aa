// Package session keeps each browser's shell state on the server, keyed by
// an opaque cookie token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"parishfinance/internal/shell"
)

const tokenLength = 32

var ErrSessionNotFound = errors.New("session not found")

// Store persists shell state by session id.
type Store interface {
	// Load returns ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (shell.State, error)
	Save(ctx context.Context, id string, st shell.State, ttl time.Duration) error
	// Touch pushes the expiry of a live session ttl into the future.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a random 64-character hex token.
func NewID() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type memoryEntry struct {
	state     shell.State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (shell.State, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return shell.State{}, ErrSessionNotFound
	}
	if !s.now().After(e.expiresAt) {
		return e.state, nil
	}

	// A Save may have landed since the read lock was released.
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok = s.sessions[id]
	if !ok {
		return shell.State{}, ErrSessionNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return shell.State{}, ErrSessionNotFound
	}
	return e.state, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, st shell.State, ttl time.Duration) error {
	if id == "" {
		return errors.New("session id is empty")
	}
	s.mu.Lock()
	s.sessions[id] = memoryEntry{state: st, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[id]
	if !ok || now.After(e.expiresAt) {
		return ErrSessionNotFound
	}
	e.expiresAt = now.Add(ttl)
	s.sessions[id] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// CleanExpired drops expired sessions and returns how many were removed.
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error { return nil }
