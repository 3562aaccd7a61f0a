// Package chat holds conversation sessions and their on-disk store.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Roles used in session messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a session's history. Messages are immutable once
// appended.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	TokensUsed int       `json:"tokens_used"`
}

// Session is an ordered, append-only message log. TotalTokens always equals
// the sum of TokensUsed over Messages; Append maintains both together.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	TotalTokens  int       `json:"total_tokens"`
	Messages     []Message `json:"messages"`

	mu sync.Mutex
}

// NewSession creates an empty session. An empty title defaults to the
// creation timestamp.
func NewSession(title string) *Session {
	now := time.Now()
	if title == "" {
		title = "Chat " + now.Format("2006-01-02 15:04")
	}
	return &Session{
		ID:           uuid.NewString(),
		Title:        title,
		CreatedAt:    now,
		LastModified: now,
	}
}

// Append adds a message and updates the token total in the same step.
func (s *Session) Append(role, content string, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = append(s.Messages, Message{
		Role:       role,
		Content:    content,
		Timestamp:  time.Now(),
		TokensUsed: tokens,
	})
	s.TotalTokens += tokens
	s.LastModified = time.Now()
}

// History returns a copy of the message log.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// Recent returns the last n messages, or all of them when n is non-positive
// or exceeds the history length.
func (s *Session) Recent(n int) []Message {
	history := s.History()
	if n <= 0 || n >= len(history) {
		return history
	}
	return history[len(history)-n:]
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

// Tokens returns the running token total.
func (s *Session) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TotalTokens
}

// Clear empties the message log and resets the token total.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = nil
	s.TotalTokens = 0
	s.LastModified = time.Now()
}
