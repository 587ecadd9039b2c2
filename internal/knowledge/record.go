package knowledge

// Optional record field names, matching the knowledge.fields config list.
// Index, segment, and transcript are unconditional.
const (
	FieldProcedureDescription = "procedure_description"
	FieldStepDescription      = "step_description"
	FieldFoodKitchenware      = "food_and_kitchenware_description"
	FieldEnvironmentSound     = "environment_sound_description"
)

// SchemaVersion identifies the knowledge track artifact layout.
const SchemaVersion = 1

// Record is one sentence's entry in the knowledge track. Segment is
// [previous sentence end, this sentence end] in milliseconds, so consecutive
// records tile the timeline without gaps. Optional description fields are nil
// when disabled by configuration and empty strings when a collaborator
// produced nothing.
type Record struct {
	Index                int      `json:"index"`
	Segment              [2]int64 `json:"segment"`
	VideoTranscript      string   `json:"video_transcript"`
	ProcedureDescription *string  `json:"procedure_description,omitempty"`
	StepDescription      *string  `json:"step_description,omitempty"`
	FoodKitchenware      *string  `json:"food_and_kitchenware_description,omitempty"`
	EnvironmentSound     *string  `json:"environment_sound_description,omitempty"`
}

// Track is the final artifact envelope.
type Track struct {
	SchemaVersion int      `json:"schema_version"`
	VideoID       string   `json:"video_id"`
	Fields        []string `json:"fields"`
	Records       []Record `json:"records"`
}

// FieldSet resolves the configured field list into lookup form. Unknown
// names are ignored; config validation rejects them earlier.
type FieldSet map[string]bool

// NewFieldSet builds a FieldSet from the config list.
func NewFieldSet(fields []string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, field := range fields {
		set[field] = true
	}
	return set
}

// Names returns the enabled fields in canonical order.
func (fs FieldSet) Names() []string {
	var names []string
	for _, field := range []string{
		FieldProcedureDescription,
		FieldStepDescription,
		FieldFoodKitchenware,
		FieldEnvironmentSound,
	} {
		if fs[field] {
			names = append(names, field)
		}
	}
	return names
}
