package engine

import "github.com/alexander-akhmetov/asbuilt/internal/domain"

// Messages for the built-in mandatory steps.
const (
	MsgWorkTypeNotSelected = "Work type not selected"
	MsgECTagRequired       = "EC Tag completion required"
	MsgSketchRequired      = "Construction sketch markup required"
	MsgChecklistRequired   = "Completion checklist required"
)

// BuiltAsDesignedKey is the captured-data flag on the sketch step meaning
// no redlines were needed.
const BuiltAsDesignedKey = "builtAsDesigned"

// StateReader is the read side of the completion tracker.
type StateReader interface {
	IsComplete(key domain.StepKey) bool
	Data(key domain.StepKey) map[string]any
}

// mandatoryStep is a built-in step that blocks submission until completed.
type mandatoryStep struct {
	key     domain.StepKey
	message string
	applies func(*domain.WorkType) bool
	// waived reports whether captured data excuses an incomplete step.
	waived func(StateReader) bool
}

var mandatorySteps = []mandatoryStep{
	{domain.StepECTag, MsgECTagRequired, func(wt *domain.WorkType) bool { return wt.Requires(domain.DocECTag) }, nil},
	{domain.StepSketchMarkup, MsgSketchRequired, func(wt *domain.WorkType) bool { return requiresSketch(nil, wt) }, BuiltAsDesigned},
	{domain.StepCCSC, MsgChecklistRequired, func(wt *domain.WorkType) bool { return wt.Requires(domain.DocCCSC) }, nil},
}

// Validate evaluates the validation gate. It is a pure function of its
// inputs and must be re-run after every completion change.
//
// Rules, in order:
//  1. no work type selected is a single blocking error;
//  2. each mandatory step required by the work type and not yet completed
//     adds its fixed message as an error (a sketch flagged Built As Designed
//     counts as done);
//  3. each required_unless rule targeting sketch_markup fires while the
//     sketch step is neither completed nor flagged Built As Designed, as an
//     error or warning depending on its severity. The rule applies to every
//     work type, including ones that derive no sketch step.
//
// Unknown rule kinds and targets are ignored.
func Validate(state StateReader, wt *domain.WorkType, cfg *domain.UtilityConfiguration) domain.ValidationResult {
	res := domain.ValidationResult{Errors: []string{}, Warnings: []string{}}

	if wt == nil {
		res.Errors = append(res.Errors, MsgWorkTypeNotSelected)
		return res
	}

	for _, m := range mandatorySteps {
		if !m.applies(wt) || isComplete(state, m.key) {
			continue
		}
		if m.waived != nil && m.waived(state) {
			continue
		}
		res.Errors = append(res.Errors, m.message)
	}

	if cfg != nil {
		for _, rule := range cfg.ValidationRules {
			if !ruleUnmet(state, rule) {
				continue
			}
			if rule.Severity.Blocking() {
				res.Errors = append(res.Errors, rule.Description)
			} else {
				res.Warnings = append(res.Warnings, rule.Description)
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ruleUnmet reports whether rule applies and its condition is not satisfied.
func ruleUnmet(state StateReader, rule domain.ValidationRule) bool {
	switch rule.Kind() {
	case domain.RuleRequiredUnless:
		if rule.Target != domain.TargetSketchMarkup {
			return false
		}
		if isComplete(state, domain.StepSketchMarkup) {
			return false
		}
		return !BuiltAsDesigned(state)
	default:
		return false
	}
}

// BuiltAsDesigned reports whether the sketch step's captured data carries
// builtAsDesigned: true.
func BuiltAsDesigned(state StateReader) bool {
	if state == nil {
		return false
	}
	flag, ok := state.Data(domain.StepSketchMarkup)[BuiltAsDesignedKey].(bool)
	return ok && flag
}

func isComplete(state StateReader, key domain.StepKey) bool {
	return state != nil && state.IsComplete(key)
}
