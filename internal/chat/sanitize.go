package chat

import (
	"regexp"
	"strings"
)

// disallowedChars matches everything outside letters, digits, whitespace
// and the punctuation that appears in medical free text (dosage slashes,
// ranges, parentheticals, quoted phrases).
var disallowedChars = regexp.MustCompile(`[^\w\s.,;:\-()\[\]/?'"]`)

// sessionIDPattern admits alphanumerics plus dot, hyphen and underscore,
// which covers dotted upstream conversation IDs.
var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

const maxSessionIDLen = 200

// SanitizeInput strips null bytes, truncates to maxLength and removes
// characters outside the allowed set. The result may be empty, which
// callers must treat as an invalid message.
func SanitizeInput(text string, maxLength int) string {
	text = strings.ReplaceAll(text, "\x00", "")
	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength]
	}
	text = disallowedChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ValidSessionID reports whether id is usable as a session key.
func ValidSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLen && sessionIDPattern.MatchString(id)
}
