package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/healthyoda/intake/internal/llm"
)

func TestHistoryStore_AppendAndWindow(t *testing.T) {
	h := NewHistoryStore()

	for i := 0; i < 5; i++ {
		h.Append("s", llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("msg %d", i)})
	}

	if got := h.Len("s"); got != 5 {
		t.Fatalf("Len: got %d", got)
	}

	window := h.Window("s", 2)
	if len(window) != 2 || window[0].Content != "msg 3" || window[1].Content != "msg 4" {
		t.Errorf("window: %v", window)
	}

	all := h.Window("s", 0)
	if len(all) != 5 {
		t.Errorf("full window: got %d messages", len(all))
	}

	// The returned slice is a copy.
	all[0].Content = "mutated"
	if h.Window("s", 0)[0].Content == "mutated" {
		t.Error("Window shares backing array with store")
	}
}

func TestHistoryStore_SessionsIsolated(t *testing.T) {
	h := NewHistoryStore()
	h.Append("alice", llm.Message{Role: llm.RoleUser, Content: "hi"})

	if got := h.Len("bob"); got != 0 {
		t.Errorf("unrelated session has %d messages", got)
	}
}

func TestHistoryStore_Clear(t *testing.T) {
	h := NewHistoryStore()
	h.Append("s", llm.Message{Role: llm.RoleUser, Content: "hi"})

	if !h.Clear("s") {
		t.Error("clearing an existing session should report true")
	}
	if h.Clear("s") {
		t.Error("clearing a missing session should report false")
	}
	if h.Len("s") != 0 {
		t.Error("session not emptied")
	}
}

func TestHistoryStore_ConcurrentAppends(t *testing.T) {
	h := NewHistoryStore()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append("s", llm.Message{Role: llm.RoleUser, Content: "m"})
		}()
	}
	wg.Wait()

	if got := h.Len("s"); got != n {
		t.Errorf("got %d messages, want %d", got, n)
	}
}
