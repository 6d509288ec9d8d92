package questionbank

import "strings"

// Category is one of the fixed question categories used by the question
// book. The literal strings match the document's category headings.
type Category string

const (
	CategoryChiefComplaint      Category = "Chief Complaint"
	CategoryOnsetDuration       Category = "Onset/Duration"
	CategoryQualitySeverity     Category = "Quality/Severity"
	CategoryAggravatingReliving Category = "Aggravating/Relieving"
	CategoryAssociatedSymptoms  Category = "Associated Symptoms"
	CategoryRedFlags            Category = "Red Flags"
	CategoryROS                 Category = "ROS"
	CategoryContext             Category = "Context"
)

// Categories lists every valid category in document order.
var Categories = []Category{
	CategoryChiefComplaint,
	CategoryOnsetDuration,
	CategoryQualitySeverity,
	CategoryAggravatingReliving,
	CategoryAssociatedSymptoms,
	CategoryRedFlags,
	CategoryROS,
	CategoryContext,
}

// IsCategory reports whether text exactly matches a category heading.
func IsCategory(text string) bool {
	for _, c := range Categories {
		if text == string(c) {
			return true
		}
	}
	return false
}

// Record is one clinical question extracted from the question book.
// Records are immutable after parsing; Tags and TreePath are derived on
// demand so copies can never go stale.
type Record struct {
	// System is the top-level clinical domain, e.g. "Cardiac System".
	// Never empty on an emitted record.
	System string

	// Symptom is the complaint under the system. May be empty.
	Symptom string

	// Category is the question category heading. May be empty.
	Category Category

	// Question is the literal question text with the Q: marker stripped.
	Question string

	// PossibleAnswers is the ordered answer list. May be empty.
	PossibleAnswers []string

	// SourcePos is the paragraph ordinal in the source document, used
	// for stable tie-breaking. Strictly increasing across a parse.
	SourcePos int
}

// Tags returns the derived tag set: system:<system>, symptom:<symptom>,
// category:<category>, omitting absent components.
func (r Record) Tags() []string {
	tags := make([]string, 0, 3)
	if r.System != "" {
		tags = append(tags, "system:"+r.System)
	}
	if r.Symptom != "" {
		tags = append(tags, "symptom:"+r.Symptom)
	}
	if r.Category != "" {
		tags = append(tags, "category:"+string(r.Category))
	}
	return tags
}

// TreePath returns the hierarchy string "system > symptom > category",
// omitting absent components.
func (r Record) TreePath() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.System, r.Symptom, string(r.Category)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " > ")
}
