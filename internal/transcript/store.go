package transcript

import (
	"sync"
	"time"

	"talkbox/internal/domain"
)

// Store is the ordered, append/update-only message list backing the
// widget transcript. Messages are never removed.
type Store struct {
	mu       sync.Mutex
	messages []domain.Message
	lastID   int64
}

func NewStore() *Store {
	return &Store{}
}

// NextID issues a timestamp-derived message ID. IDs are strictly
// increasing even when two messages are created within the same
// millisecond.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Append adds a message to the end of the transcript.
func (s *Store) Append(message domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

// UpdateByID amends the first message with the given ID in place and
// returns the updated copy. A missing ID is a no-op, not an error.
func (s *Store) UpdateByID(id int64, mutate func(*domain.Message)) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			mutate(&s.messages[i])
			return s.messages[i], true
		}
	}
	return domain.Message{}, false
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of transcript entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
