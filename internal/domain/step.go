package domain

// StepKey identifies a step across renders and in completion state.
type StepKey string

const (
	StepWorkType      StepKey = "work_type"
	StepECTag         StepKey = "ec_tag"
	StepFaceSheet     StepKey = "face_sheet"
	StepEquipmentInfo StepKey = "equipment_info"
	StepSketchMarkup  StepKey = "sketch_markup"
	StepCCSC          StepKey = "ccsc"
	StepBillingForm   StepKey = "billing_form"
	StepFDAAttributes StepKey = "fda_attributes"
	StepReview        StepKey = "review"
)

// Step is one derived wizard step. Steps are never persisted on their own;
// they are re-derived from the configuration and the selected work type.
type Step struct {
	Key         StepKey `json:"key"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	// IsPDFStep marks generic document steps rendered as a fillable PDF.
	IsPDFStep bool `json:"isPdfStep,omitempty"`
	// SectionType is the document section id for generic document steps.
	SectionType string `json:"sectionType,omitempty"`
}

// StepKeys returns the keys of steps in order.
func StepKeys(steps []Step) []StepKey {
	keys := make([]StepKey, len(steps))
	for i, s := range steps {
		keys[i] = s.Key
	}
	return keys
}

// ValidationResult is the derived outcome of the validation gate.
// Valid is true iff Errors is empty; Warnings never block.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Submission is the terminal, immutable artifact handed to a transport.
type Submission struct {
	UtilityCode    string                    `json:"utilityCode"`
	WorkType       string                    `json:"workType"`
	JobID          string                    `json:"jobId"`
	JobIdentifiers map[string]string         `json:"jobIdentifiers"`
	StepData       map[string]map[string]any `json:"stepData"`
	CompletedSteps map[string]bool           `json:"completedSteps"`
	SubmittedAt    string                    `json:"submittedAt"`
	SubmittedBy    string                    `json:"submittedBy"`
}
