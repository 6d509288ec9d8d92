package chat

import (
	"sync"

	"github.com/healthyoda/intake/internal/llm"
)

// HistoryStore keeps per-session conversation history in memory.
// Sessions live for the process lifetime or until cleared; nothing is
// persisted, which keeps patient text out of durable storage by
// default.
type HistoryStore struct {
	mu       sync.Mutex
	sessions map[string][]llm.Message
}

// NewHistoryStore creates an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{sessions: map[string][]llm.Message{}}
}

// Append adds one message to the session, creating it if needed.
func (h *HistoryStore) Append(sessionID string, msg llm.Message) {
	h.mu.Lock()
	h.sessions[sessionID] = append(h.sessions[sessionID], msg)
	h.mu.Unlock()
}

// Window returns a copy of the last n messages of the session, oldest
// first. n <= 0 returns the whole history.
func (h *HistoryStore) Window(sessionID string, n int) []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := h.sessions[sessionID]
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the number of messages in the session.
func (h *HistoryStore) Len(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Clear removes the session and reports whether it existed.
func (h *HistoryStore) Clear(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	return ok
}
