package questionbank

import (
	"encoding/json"
	"fmt"
	"os"
)

// recordJSON is the flat interchange shape for a parsed question.
// Field names and array semantics are frozen: existing dashboards
// consume this format, and the Redis cache round-trips through it.
type recordJSON struct {
	System          string   `json:"system"`
	Symptom         string   `json:"symptom"`
	Category        string   `json:"category"`
	Question        string   `json:"question"`
	PossibleAnswers []string `json:"possible_answers"`
	LineNumber      int      `json:"line_number"`
	Tags            []string `json:"tags"`
	TreePath        string   `json:"tree_path"`
}

// MarshalRecords serializes records to the interchange JSON array.
func MarshalRecords(records []Record) ([]byte, error) {
	out := make([]recordJSON, len(records))
	for i, r := range records {
		out[i] = recordJSON{
			System:          r.System,
			Symptom:         r.Symptom,
			Category:        string(r.Category),
			Question:        r.Question,
			PossibleAnswers: r.PossibleAnswers,
			LineNumber:      r.SourcePos,
			Tags:            r.Tags(),
			TreePath:        r.TreePath(),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalRecords parses the interchange JSON array back into records.
// Tags and tree_path are derived fields and are recomputed, not trusted.
func UnmarshalRecords(data []byte) ([]Record, error) {
	var in []recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse question bank JSON: %w", err)
	}
	records := make([]Record, len(in))
	for i, r := range in {
		records[i] = Record{
			System:          r.System,
			Symptom:         r.Symptom,
			Category:        Category(r.Category),
			Question:        r.Question,
			PossibleAnswers: r.PossibleAnswers,
			SourcePos:       r.LineNumber,
		}
	}
	return records, nil
}

// ExportJSON writes the parsed bank to a JSON file for dashboards.
func ExportJSON(records []Record, path string) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return fmt.Errorf("serialize question bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write question bank export: %w", err)
	}
	return nil
}

// ImportJSON reads a previously exported bank from a JSON file.
func ImportJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank export: %w", err)
	}
	return UnmarshalRecords(data)
}
