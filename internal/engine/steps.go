// Package engine makes the pure decisions of the as-built wizard: which
// steps exist for a work type, where the active step moves next, and
// whether the captured state is ready to submit. It holds no state and
// performs no I/O; the wizard session owns state and calls in here.
package engine

import (
	"strings"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// stepDefinition describes a built-in step and when it is derived.
type stepDefinition struct {
	key         domain.StepKey
	label       string
	description string
	trigger     func(cfg *domain.UtilityConfiguration, wt *domain.WorkType) bool
}

var workTypeStep = domain.Step{
	Key:         domain.StepWorkType,
	Label:       "Work Type",
	Description: "Select the type of work performed",
}

var reviewStep = domain.Step{
	Key:         domain.StepReview,
	Label:       "Review & Submit",
	Description: "Review all steps and submit the as-built package",
}

// stepDefinitions lists the built-in document steps in priority order.
// Derived step order follows this slice, not the order of RequiredDocs.
var stepDefinitions = []stepDefinition{
	{
		key:         domain.StepECTag,
		label:       "EC Tag",
		description: "Complete the EC tag form",
		trigger:     requires(domain.DocECTag),
	},
	{
		key:         domain.StepFaceSheet,
		label:       "Face Sheet",
		description: "Fill in the job face sheet",
		trigger:     requires(domain.DocFaceSheet),
	},
	{
		// The EC tag and the equipment info live on the same document.
		key:         domain.StepEquipmentInfo,
		label:       "Equipment Info",
		description: "Record installed and removed equipment",
		trigger:     requiresAny(domain.DocEquipmentInfo, domain.DocECTag),
	},
	{
		key:         domain.StepSketchMarkup,
		label:       "Construction Sketch",
		description: "Redline the construction sketch or mark it Built As Designed",
		trigger:     requiresSketch,
	},
	{
		key:         domain.StepCCSC,
		label:       "Completion Checklist",
		description: "Work through the construction completion standards checklist",
		trigger:     requires(domain.DocCCSC),
	},
	{
		key:         domain.StepBillingForm,
		label:       "Billing Form",
		description: "Enter billable units and crew hours",
		trigger:     requires(domain.DocBillingForm),
	},
	{
		key:         domain.StepFDAAttributes,
		label:       "FDA Attributes",
		description: "Capture equipment attributes for the asset registry",
		trigger: func(cfg *domain.UtilityConfiguration, wt *domain.WorkType) bool {
			return wt.Requires(domain.DocFDAAttributes) && IsECOrEstimated(wt)
		},
	},
}

// builtinDocs are required-document ids with dedicated steps. They never
// produce a generic document step.
var builtinDocs = map[string]bool{
	domain.DocECTag:              true,
	domain.DocFaceSheet:          true,
	domain.DocEquipmentInfo:      true,
	domain.DocConstructionSketch: true,
	domain.DocCCSC:               true,
	domain.DocBillingForm:        true,
	domain.DocFDAAttributes:      true,
}

// DeriveSteps returns the ordered wizard steps for the selected work type.
// With no work type selected only the work-type step exists. Otherwise the
// list starts with the work-type step, continues with the triggered built-in
// steps in priority order and then one generic document step per remaining
// required document that has a completion definition, and always ends with
// the review step. The result is deterministic and free of duplicate keys.
func DeriveSteps(cfg *domain.UtilityConfiguration, wt *domain.WorkType) []domain.Step {
	if wt == nil {
		return []domain.Step{workTypeStep}
	}

	steps := []domain.Step{workTypeStep}
	seen := map[domain.StepKey]bool{domain.StepWorkType: true, domain.StepReview: true}
	add := func(s domain.Step) {
		if seen[s.Key] {
			return
		}
		seen[s.Key] = true
		steps = append(steps, s)
	}

	for _, def := range stepDefinitions {
		if !def.trigger(cfg, wt) {
			continue
		}
		add(domain.Step{
			Key:         def.key,
			Label:       stepLabel(cfg, def),
			Description: def.description,
		})
	}

	for _, doc := range wt.RequiredDocs {
		if builtinDocs[doc] {
			continue
		}
		dc := cfg.DocumentFor(doc)
		if dc == nil {
			continue
		}
		label := dc.Title
		if label == "" {
			label = humanize(doc)
		}
		add(domain.Step{
			Key:         domain.StepKey(doc),
			Label:       label,
			Description: "Complete the " + label + " document",
			IsPDFStep:   true,
			SectionType: doc,
		})
	}

	steps = append(steps, reviewStep)
	return steps
}

// IsECOrEstimated reports whether the work type is an EC-tag type or an
// estimated job, the two classes that feed the asset registry.
func IsECOrEstimated(wt *domain.WorkType) bool {
	if wt == nil {
		return false
	}
	code := strings.ToLower(wt.Code)
	if strings.HasPrefix(code, "ec_") || code == "ec" {
		return true
	}
	tokens := strings.FieldsFunc(code, func(r rune) bool { return r == '_' || r == '-' })
	for i, tok := range tokens {
		if tok != "estimated" {
			continue
		}
		if i > 0 && negations[tokens[i-1]] {
			return false
		}
		return true
	}
	return false
}

// negations mark a following "estimated" token as its opposite.
var negations = map[string]bool{"non": true, "not": true, "no": true}

func requires(doc string) func(*domain.UtilityConfiguration, *domain.WorkType) bool {
	return func(_ *domain.UtilityConfiguration, wt *domain.WorkType) bool {
		return wt.Requires(doc)
	}
}

func requiresAny(docs ...string) func(*domain.UtilityConfiguration, *domain.WorkType) bool {
	return func(_ *domain.UtilityConfiguration, wt *domain.WorkType) bool {
		for _, d := range docs {
			if wt.Requires(d) {
				return true
			}
		}
		return false
	}
}

// requiresSketch reports whether the sketch markup step is mandatory.
func requiresSketch(_ *domain.UtilityConfiguration, wt *domain.WorkType) bool {
	return wt.Requires(domain.DocConstructionSketch) || wt.RequiresSketchMarkup
}

func stepLabel(cfg *domain.UtilityConfiguration, def stepDefinition) string {
	if def.key == domain.StepCCSC && cfg != nil && cfg.Checklist != nil && cfg.Checklist.FormName != "" {
		return cfg.Checklist.FormName
	}
	return def.label
}

// humanize turns a document id like "pole_loading_calc" into "Pole Loading Calc".
func humanize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
