package conversation

import (
	"sync"

	"github.com/sandevgo/policyadvisor/internal/core"
)

const greetingText = "Hi! I'm your health insurance advisor. Tell me what coverage " +
	"you're looking for, your annual budget, and how many family members need cover."

// Greeting is the single message a fresh or empty conversation starts with.
func Greeting() core.Message {
	return core.Message{
		Role:    core.RoleAssistant,
		Kind:    core.KindQuestion,
		Content: greetingText,
	}
}

// Store is the ordered, append-only log of messages for the active session.
// It is replaced wholesale on restore/switch, never merged. The swap happens
// under the lock, so readers never observe a partially replaced list.
type Store struct {
	mu       sync.RWMutex
	messages []core.Message
}

func NewStore() *Store {
	return &Store{}
}

// Append pushes to the end. Repeated identical content is a distinct event;
// no deduplication, no reordering.
func (s *Store) Append(msg core.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// ReplaceAll swaps the whole log atomically.
func (s *Store) ReplaceAll(messages []core.Message) {
	replacement := make([]core.Message, len(messages))
	copy(replacement, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = replacement
}

// Snapshot returns a copy of the current log in order.
func (s *Store) Snapshot() []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Transcript renders the last `window` messages as role+content pairs for
// stateless replay. window <= 0 means the full log.
func (s *Store) Transcript(window int) []core.TranscriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages
	if window > 0 && len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}

	out := make([]core.TranscriptEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.TranscriptEntry{Role: m.Role, Content: m.Content})
	}
	return out
}
