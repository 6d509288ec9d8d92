package questionbank

import "strings"

// Phase is a named stage of the intake conversation.
type Phase string

const (
	PhaseGreeting         Phase = "greeting"
	PhaseSymptomDiscovery Phase = "symptom_discovery"
	PhaseRedFlags         Phase = "red_flags"
	PhaseReviewOfSystems  Phase = "review_of_systems"
	PhaseContext          Phase = "context"
)

// phaseCategories maps each intake phase to its question categories.
var phaseCategories = map[Phase][]Category{
	PhaseGreeting: {CategoryChiefComplaint},
	PhaseSymptomDiscovery: {
		CategoryChiefComplaint,
		CategoryOnsetDuration,
		CategoryQualitySeverity,
		CategoryAggravatingReliving,
		CategoryAssociatedSymptoms,
	},
	PhaseRedFlags:        {CategoryRedFlags},
	PhaseReviewOfSystems: {CategoryROS},
	PhaseContext:         {CategoryContext},
}

// Index is an immutable in-memory index over parsed question records.
// A nil Index is a valid disabled state: every query returns empty.
// Queries never mutate the underlying records and always preserve
// source order.
type Index struct {
	records []Record
}

// NewIndex builds an index over the given records. The slice is copied
// so later mutation by the caller cannot reach the index.
func NewIndex(records []Record) *Index {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Index{records: owned}
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// All returns every indexed record in source order.
func (ix *Index) All() []Record {
	if ix == nil {
		return nil
	}
	return ix.filter(func(Record) bool { return true })
}

// BySystem returns records whose system contains name, case-insensitive.
func (ix *Index) BySystem(name string) []Record {
	needle := strings.ToLower(name)
	return ix.filter(func(r Record) bool {
		return strings.Contains(strings.ToLower(r.System), needle)
	})
}

// BySymptom returns records whose symptom contains name,
// case-insensitive. Records without a symptom never match.
func (ix *Index) BySymptom(name string) []Record {
	needle := strings.ToLower(name)
	return ix.filter(func(r Record) bool {
		return r.Symptom != "" && strings.Contains(strings.ToLower(r.Symptom), needle)
	})
}

// ByCategory returns records with exactly the given category.
func (ix *Index) ByCategory(cat Category) []Record {
	return ix.filter(func(r Record) bool {
		return r.Category == cat
	})
}

// ByKeywords returns records whose question text contains at least one
// keyword, case-insensitive, optionally pre-filtered by system substring
// match. An empty system applies no pre-filter.
func (ix *Index) ByKeywords(keywords []string, system string) []Record {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	sysNeedle := strings.ToLower(system)

	return ix.filter(func(r Record) bool {
		if system != "" && !strings.Contains(strings.ToLower(r.System), sysNeedle) {
			return false
		}
		question := strings.ToLower(r.Question)
		for _, kw := range lowered {
			if strings.Contains(question, kw) {
				return true
			}
		}
		return false
	})
}

// ByPhase returns the union of ByCategory over the phase's category set.
// An unrecognized phase yields an empty result, not an error.
func (ix *Index) ByPhase(phase Phase) []Record {
	cats, ok := phaseCategories[Phase(strings.ToLower(string(phase)))]
	if !ok {
		return nil
	}
	return ix.filter(func(r Record) bool {
		for _, c := range cats {
			if r.Category == c {
				return true
			}
		}
		return false
	})
}

// CategoriesForSymptom returns the distinct categories available for a
// symptom, in the order they first appear.
func (ix *Index) CategoriesForSymptom(symptom string) []Category {
	seen := make(map[Category]bool)
	var cats []Category
	for _, r := range ix.BySymptom(symptom) {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		cats = append(cats, r.Category)
	}
	return cats
}

func (ix *Index) filter(keep func(Record) bool) []Record {
	if ix == nil {
		return nil
	}
	var out []Record
	for _, r := range ix.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
