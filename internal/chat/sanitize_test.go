package chat

import (
	"strings"
	"testing"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "I have chest pain", "I have chest pain"},
		{"medical punctuation kept", "BP 120/80, temp 37.5; pain (sharp) - left arm?", "BP 120/80, temp 37.5; pain (sharp) - left arm?"},
		// Slashes survive, they are legitimate in medical text (120/80).
		{"angle brackets stripped", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"null bytes removed", "hello\x00world", "helloworld"},
		{"trimmed", "  some pain  ", "some pain"},
		{"only junk", "<>&*^%$#@!", ""},
	}
	for _, tt := range tests {
		if got := SanitizeInput(tt.in, 5000); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeInput_LengthCap(t *testing.T) {
	long := strings.Repeat("a", 6000)
	if got := SanitizeInput(long, 5000); len(got) != 5000 {
		t.Errorf("length cap: got %d chars", len(got))
	}
}

func TestValidSessionID(t *testing.T) {
	valid := []string{"default", "cf.conversation.123", "user-42", "a_b-c.d"}
	for _, id := range valid {
		if !ValidSessionID(id) {
			t.Errorf("%q should be valid", id)
		}
	}

	invalid := []string{"", "has space", "semi;colon", "path/../traversal", strings.Repeat("x", 201)}
	for _, id := range invalid {
		if ValidSessionID(id) {
			t.Errorf("%q should be invalid", id)
		}
	}
}
