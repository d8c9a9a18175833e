// Package session owns the per-session voice state and its locking
// discipline. The registry lock is held only for map access; each session
// carries its own mutex, held for the full duration of a turn so concurrent
// requests for the same session serialise while distinct sessions proceed in
// parallel.
package session

import (
	"sync"

	"github.com/indiandesillm/inference-core/internal/voice"
)

// Session is one conversation's mutable state. Lock the session before
// touching State and hold the lock until the turn commits or discards.
type Session struct {
	ID string

	mu    sync.Mutex
	state *voice.SessionVoiceState
}

// Lock acquires the session for a turn.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// State returns the live state. Callers must hold the session lock and must
// mutate only a clone, committing via [Session.Commit].
func (s *Session) State() *voice.SessionVoiceState { return s.state }

// Commit atomically replaces the session state with a fully staged clone.
// Callers must hold the session lock.
func (s *Session) Commit(st *voice.SessionVoiceState) { s.state = st }

// Registry maps session ids to sessions. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it with fresh state on
// first contact. created reports whether this call created the session.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s = &Session{ID: id, state: voice.NewSessionVoiceState()}
	r.sessions[id] = s
	return s, true
}

// Remove drops the session for id, if present.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
