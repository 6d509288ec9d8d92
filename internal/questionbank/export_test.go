package questionbank

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMarshalRecords_FrozenFieldNames(t *testing.T) {
	records := []Record{
		{System: "Cardiac System", Symptom: "Chest Pain", Category: CategoryRedFlags,
			Question: "Any pain at rest?", PossibleAnswers: []string{"Yes", "No"}, SourcePos: 12},
	}

	data, err := MarshalRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, field := range []string{"system", "symptom", "category", "question", "possible_answers", "line_number", "tags", "tree_path"} {
		if _, ok := out[0][field]; !ok {
			t.Errorf("missing interchange field %q", field)
		}
	}
	if out[0]["line_number"] != float64(12) {
		t.Errorf("line_number: got %v", out[0]["line_number"])
	}
	if out[0]["tree_path"] != "Cardiac System > Chest Pain > Red Flags" {
		t.Errorf("tree_path: got %v", out[0]["tree_path"])
	}
}

func TestUnmarshalRecords_RecomputesDerivedFields(t *testing.T) {
	// Derived fields in the payload are wrong on purpose; the loader
	// must not trust them.
	data := []byte(`[{
		"system": "GI System",
		"symptom": "Nausea",
		"category": "Onset/Duration",
		"question": "When did the nausea begin?",
		"possible_answers": null,
		"line_number": 4,
		"tags": ["bogus"],
		"tree_path": "bogus > path"
	}]`)

	records, err := UnmarshalRecords(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if got := r.TreePath(); got != "GI System > Nausea > Onset/Duration" {
		t.Errorf("tree path not recomputed: %q", got)
	}
	want := []string{"system:GI System", "symptom:Nausea", "category:Onset/Duration"}
	if !reflect.DeepEqual(r.Tags(), want) {
		t.Errorf("tags not recomputed: %v", r.Tags())
	}
}

func TestRoundTrip(t *testing.T) {
	records := []Record{
		{System: "Cardiac System", Question: "Do you smoke?", SourcePos: 2},
		{System: "Respiratory System", Symptom: "Cough", Category: CategoryROS,
			Question: "Any fever?", PossibleAnswers: []string{"Yes", "No"}, SourcePos: 9},
	}

	data, err := MarshalRecords(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := UnmarshalRecords(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(records, back) {
		t.Errorf("round trip changed records:\n%+v\n%+v", records, back)
	}
}
