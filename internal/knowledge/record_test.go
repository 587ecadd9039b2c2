package knowledge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRecordMarshalAllFields(t *testing.T) {
	empty := ""
	step := "The chef is dicing onions on a wooden board."
	record := Record{
		Index:                1,
		Segment:              [2]int64{0, 5020},
		VideoTranscript:      "First we dice the onions. ",
		ProcedureDescription: &empty,
		StepDescription:      &step,
		FoodKitchenware:      &empty,
		EnvironmentSound:     &empty,
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, key := range []string{
		`"index":1`,
		`"segment":[0,5020]`,
		`"video_transcript":"First we dice the onions. "`,
		`"procedure_description":""`,
		`"step_description":"The chef is dicing onions on a wooden board."`,
		`"food_and_kitchenware_description":""`,
		`"environment_sound_description":""`,
	} {
		if !strings.Contains(text, key) {
			t.Fatalf("marshaled record missing %s: %s", key, text)
		}
	}
}

func TestRecordMarshalOmitsDisabledFields(t *testing.T) {
	record := Record{
		Index:           2,
		Segment:         [2]int64{5020, 9100},
		VideoTranscript: "Now heat the pan. ",
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, key := range []string{
		"procedure_description",
		"step_description",
		"food_and_kitchenware_description",
		"environment_sound_description",
	} {
		if strings.Contains(text, key) {
			t.Fatalf("disabled field %s should be omitted: %s", key, text)
		}
	}
}

func TestFieldSetNamesCanonicalOrder(t *testing.T) {
	set := NewFieldSet([]string{
		FieldEnvironmentSound,
		FieldProcedureDescription,
	})
	names := set.Names()
	want := []string{FieldProcedureDescription, FieldEnvironmentSound}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
