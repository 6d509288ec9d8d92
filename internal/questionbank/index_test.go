package questionbank

import (
	"reflect"
	"testing"
)

func testRecords() []Record {
	return []Record{
		{System: "Cardiac System", Symptom: "Chest Pain", Category: CategoryChiefComplaint, Question: "What brings you in today?", SourcePos: 3},
		{System: "Cardiac System", Symptom: "Chest Pain", Category: CategoryRedFlags, Question: "Any crushing chest pain radiating to the arm?", SourcePos: 8},
		{System: "Cardiac System", Symptom: "Palpitations", Category: CategoryOnsetDuration, Question: "When did the fluttering start?", SourcePos: 15},
		{System: "Respiratory System", Symptom: "Cough", Category: CategoryROS, Question: "Any fever or chills?", SourcePos: 22},
		{System: "Respiratory System", Question: "Do you smoke?", SourcePos: 29},
	}
}

func TestIndex_NilIsEmpty(t *testing.T) {
	var ix *Index
	if ix.Len() != 0 {
		t.Errorf("nil index Len: got %d", ix.Len())
	}
	if got := ix.All(); got != nil {
		t.Errorf("nil index All: got %v", got)
	}
	if got := ix.BySystem("Cardiac"); got != nil {
		t.Errorf("nil index BySystem: got %v", got)
	}
}

func TestIndex_CopiesInput(t *testing.T) {
	records := testRecords()
	ix := NewIndex(records)
	records[0].Question = "mutated"

	if ix.All()[0].Question == "mutated" {
		t.Error("index shares backing array with caller")
	}
}

func TestIndex_BySystem(t *testing.T) {
	ix := NewIndex(testRecords())

	got := ix.BySystem("cardiac")
	if len(got) != 3 {
		t.Fatalf("expected 3 cardiac records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].SourcePos <= got[i-1].SourcePos {
			t.Error("BySystem broke source order")
		}
	}
}

func TestIndex_BySymptomSkipsEmpty(t *testing.T) {
	ix := NewIndex(testRecords())

	// "Do you smoke?" has no symptom and must not match any needle.
	if got := ix.BySymptom("o"); len(got) != 2 {
		t.Errorf("expected 2 records (Chest Pain excluded, empty excluded), got %d", len(got))
	}
}

func TestIndex_ByCategory(t *testing.T) {
	ix := NewIndex(testRecords())

	got := ix.ByCategory(CategoryRedFlags)
	if len(got) != 1 || got[0].Question != "Any crushing chest pain radiating to the arm?" {
		t.Errorf("unexpected red-flag records: %v", got)
	}
}

func TestIndex_ByKeywords(t *testing.T) {
	ix := NewIndex(testRecords())

	got := ix.ByKeywords([]string{"FEVER", "smoke"}, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 keyword matches, got %d", len(got))
	}

	got = ix.ByKeywords([]string{"fever", "smoke"}, "Cardiac")
	if len(got) != 0 {
		t.Errorf("system pre-filter ignored: %v", got)
	}
}

func TestIndex_ByPhase(t *testing.T) {
	ix := NewIndex(testRecords())

	tests := []struct {
		phase Phase
		want  int
	}{
		{PhaseGreeting, 1},
		{PhaseSymptomDiscovery, 2},
		{PhaseRedFlags, 1},
		{PhaseReviewOfSystems, 1},
		{PhaseContext, 0},
		{Phase("RED_FLAGS"), 1}, // case-insensitive
		{Phase("no-such-phase"), 0},
	}
	for _, tt := range tests {
		if got := ix.ByPhase(tt.phase); len(got) != tt.want {
			t.Errorf("ByPhase(%q): got %d records, want %d", tt.phase, len(got), tt.want)
		}
	}
}

func TestIndex_CategoriesForSymptom(t *testing.T) {
	ix := NewIndex(testRecords())

	got := ix.CategoriesForSymptom("Chest Pain")
	want := []Category{CategoryChiefComplaint, CategoryRedFlags}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
