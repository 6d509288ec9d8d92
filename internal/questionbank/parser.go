package questionbank

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDocument is returned when a document yields zero questions.
var ErrMalformedDocument = errors.New("no questions extracted from document")

// headerMaxLen is the length threshold under which a line can be a
// system or symptom header.
const headerMaxLen = 100

// systemNames are the substrings that identify a system header line.
var systemNames = []string{
	"Cardiac System",
	"Respiratory System",
	"GI System",
	"Neurologic System",
	"Musculoskeletal System",
	"GU System",
	"Dermatologic System",
	"Endocrine",
	"ENT Eye System",
}

// parseState is the mutable state threaded through classification.
// The in-progress question accumulates until the next question marker
// or end of document flushes it.
type parseState struct {
	system   string
	symptom  string
	category Category

	question   string
	inProgress bool
	answers    []string

	records []Record
}

// rule pairs a predicate with an action. Rules are evaluated in slice
// order and the first match wins; order is load-bearing (a system header
// must be checked before the symptom-header fallback).
type rule struct {
	name  string
	match func(s *parseState, text string) bool
	apply func(s *parseState, text string, pos int)
}

var parseRules = []rule{
	{
		name: "system-header",
		match: func(_ *parseState, text string) bool {
			if len(text) >= headerMaxLen {
				return false
			}
			for _, name := range systemNames {
				if strings.Contains(text, name) {
					return true
				}
			}
			return false
		},
		apply: func(s *parseState, text string, _ int) {
			s.system = text
			s.symptom = ""
			s.category = ""
		},
	},
	{
		name: "category-header",
		match: func(_ *parseState, text string) bool {
			return IsCategory(text)
		},
		apply: func(s *parseState, text string, _ int) {
			// A category heading abandons any question in progress.
			s.category = Category(text)
			s.question = ""
			s.inProgress = false
			s.answers = nil
		},
	},
	{
		name: "question-marker",
		match: func(_ *parseState, text string) bool {
			return strings.HasPrefix(text, "Q:") || strings.HasPrefix(text, "Q.")
		},
		apply: func(s *parseState, text string, pos int) {
			s.flush(pos)
			s.question = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "Q:"), "Q."))
			s.inProgress = true
			s.answers = nil
		},
	},
	{
		name: "answer-list-marker",
		match: func(_ *parseState, text string) bool {
			return strings.HasPrefix(strings.ToLower(text), "possible answers:")
		},
		apply: func(s *parseState, _ string, _ int) {
			s.answers = nil
		},
	},
	{
		name: "bullet-answer",
		match: func(s *parseState, text string) bool {
			return strings.HasPrefix(text, "-") && s.inProgress
		},
		apply: func(s *parseState, text string, _ int) {
			if a := strings.TrimSpace(text[1:]); a != "" {
				s.answers = append(s.answers, a)
			}
		},
	},
	{
		name: "symptom-header",
		match: func(s *parseState, text string) bool {
			if len(text) >= headerMaxLen || s.system == "" {
				return false
			}
			if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "Possible") {
				return false
			}
			// The document's own index page is not a complaint.
			if text == "Table of Contents" || text == s.system {
				return false
			}
			return true
		},
		apply: func(s *parseState, text string, _ int) {
			s.symptom = text
			s.category = ""
		},
	},
}

// flush emits the in-progress question as a Record. Questions seen
// before any system header are dropped: emitting half-initialized
// hierarchy would poison every downstream filter, so a missing system
// is treated as a document-authoring contract violation.
func (s *parseState) flush(pos int) {
	if !s.inProgress || s.question == "" || s.system == "" {
		return
	}
	answers := make([]string, len(s.answers))
	copy(answers, s.answers)
	s.records = append(s.records, Record{
		System:          s.system,
		Symptom:         s.symptom,
		Category:        s.category,
		Question:        s.question,
		PossibleAnswers: answers,
		SourcePos:       pos,
	})
}

// Parse extracts question records from a document's paragraphs in order.
// Returns ErrMalformedDocument if no questions can be extracted.
func Parse(doc *Document) ([]Record, error) {
	s := &parseState{}

	for i, para := range doc.Paragraphs {
		text := strings.TrimSpace(para)
		if text == "" {
			continue
		}
		for _, r := range parseRules {
			if r.match(s, text) {
				r.apply(s, text, i)
				break
			}
		}
	}

	// The final question has no following marker to flush it.
	s.flush(len(doc.Paragraphs))

	if len(s.records) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.Source, ErrMalformedDocument)
	}
	return s.records, nil
}
