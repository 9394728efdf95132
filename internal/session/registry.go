package session

import (
	"errors"
	"sync"

	"kb-agent/internal/helper"
	"kb-agent/internal/models"
	"kb-agent/internal/vectorindex"
)

var ErrNotFound = errors.New("session not found")

// Registry owns every live session and the lifecycle of their indexes.
// One registry is created per process; sessions enter and leave it only
// through explicit calls.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newIndex func() (*vectorindex.Index, error)
}

func NewRegistry(indexOpts vectorindex.Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		newIndex: func() (*vectorindex.Index, error) {
			return vectorindex.New(indexOpts)
		},
	}
}

// NewSession creates a session with a greeting message and no index.
func (r *Registry) NewSession() (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	s := &Session{ID: id, Title: models.DefaultTitle}
	s.Append(models.NewAssistantMessage(models.Greeting, nil))

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session and releases its index storage.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok && s.index != nil {
		return s.index.Close()
	}
	return nil
}

// GetOrCreateIndex lazily attaches an empty index to the session the first
// time one is needed, e.g. when a question arrives before any ingestion.
// Subsequent calls return the same instance.
func (r *Registry) GetOrCreateIndex(s *Session) (*vectorindex.Index, error) {
	if s.index != nil {
		return s.index, nil
	}
	idx, err := r.newIndex()
	if err != nil {
		return nil, err
	}
	s.index = idx
	return idx, nil
}
