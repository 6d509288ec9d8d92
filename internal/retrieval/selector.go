// Package retrieval chooses the next relevant intake question from the
// parsed question bank based on recent conversation text.
package retrieval

import (
	"strings"

	"github.com/healthyoda/intake/internal/questionbank"
)

// domainTriggers pairs a clinical domain with the context words that
// activate it. The slice order is the resolution order: the first
// domain with any trigger hit wins, with no scoring or multi-match
// resolution. Reordering entries changes selector behavior.
var domainTriggers = []struct {
	domain   string
	triggers []string
}{
	{"cardiac", []string{"chest", "heart", "cardiac", "palpitation", "shortness of breath"}},
	{"respiratory", []string{"breathing", "cough", "respiratory", "lung", "wheeze"}},
	{"gi", []string{"stomach", "abdominal", "nausea", "vomiting", "diarrhea", "gi", "gastro"}},
	{"neurologic", []string{"headache", "dizziness", "seizure", "neurologic", "neurological"}},
	{"musculoskeletal", []string{"joint", "muscle", "bone", "pain", "musculoskeletal"}},
	{"gu", []string{"urinary", "bladder", "kidney", "gu", "genitourinary"}},
	{"dermatologic", []string{"skin", "rash", "dermatologic", "dermatological"}},
	{"endocrine", []string{"diabetes", "thyroid", "endocrine", "hormone"}},
	{"ent", []string{"ear", "nose", "throat", "ent", "hearing", "vision"}},
}

// Hints optionally constrain the selection. Empty fields apply no
// constraint.
type Hints struct {
	System   string
	Symptom  string
	Category questionbank.Category
}

// Selector picks the next relevant question for a conversation. It is
// deliberately stateless: given the same context, hints and index it
// always returns the same record. The dialogue driver owns any notion
// of a domain being "complete".
type Selector struct {
	index *questionbank.Index
}

// NewSelector creates a selector over the given index. A nil index
// yields a permanently empty selector, the disabled state used when the
// question book could not be loaded.
func NewSelector(index *questionbank.Index) *Selector {
	return &Selector{index: index}
}

// Enabled reports whether the selector has any questions to offer.
func (s *Selector) Enabled() bool {
	return s.index.Len() > 0
}

// SelectNext returns the best-matching question for the conversation
// context, or false when no candidate survives the filters.
//
// Without a system hint the domain is inferred from the context text via
// the trigger table. Filters narrow strictly: a step that empties the
// candidate set does not backtrack.
func (s *Selector) SelectNext(conversationContext string, hints Hints) (questionbank.Record, bool) {
	system := hints.System
	if system == "" {
		system = InferDomain(conversationContext)
	}

	candidates := s.index.All()

	if system != "" {
		candidates = narrow(candidates, func(r questionbank.Record) bool {
			return strings.Contains(strings.ToLower(r.System), strings.ToLower(system))
		})
	}
	if hints.Symptom != "" {
		needle := strings.ToLower(hints.Symptom)
		candidates = narrow(candidates, func(r questionbank.Record) bool {
			return r.Symptom != "" && strings.Contains(strings.ToLower(r.Symptom), needle)
		})
	}
	if hints.Category != "" {
		candidates = narrow(candidates, func(r questionbank.Record) bool {
			return r.Category == hints.Category
		})
	}

	if len(candidates) == 0 {
		return questionbank.Record{}, false
	}
	return candidates[0], true
}

// InferDomain scans the context for domain trigger words and returns
// the first matching domain in table order, or "" when nothing matches.
func InferDomain(conversationContext string) string {
	folded := strings.ToLower(conversationContext)
	for _, d := range domainTriggers {
		for _, trigger := range d.triggers {
			if strings.Contains(folded, trigger) {
				return d.domain
			}
		}
	}
	return ""
}

func narrow(records []questionbank.Record, keep func(questionbank.Record) bool) []questionbank.Record {
	var out []questionbank.Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
