package session

import (
	"kb-agent/internal/models"
	"kb-agent/internal/vectorindex"
)

// Session is an isolated conversation context: an append-only message
// history and at most one exclusively-owned vector index.
type Session struct {
	ID    string
	Title string

	messages []models.Message
	index    *vectorindex.Index
}

func (s *Session) Append(msg models.Message) {
	s.messages = append(s.messages, msg)
}

// Messages returns the conversation in order.
func (s *Session) Messages() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Index returns the session's current index, nil until the first
// successful ingestion or the first lazy creation.
func (s *Session) Index() *vectorindex.Index {
	return s.index
}

// ReplaceIndex swaps in a freshly built index and closes the previous one.
// Indexes are replaced wholesale, never merged.
func (s *Session) ReplaceIndex(idx *vectorindex.Index) error {
	old := s.index
	s.index = idx
	if old != nil {
		return old.Close()
	}
	return nil
}
