// Package domain defines the shared model types used across asbuilt:
// the utility configuration document, derived steps, validation results,
// and the final submission record.
package domain

import "slices"

// Required-document identifiers with built-in step semantics.
const (
	DocECTag              = "ec_tag"
	DocFaceSheet          = "face_sheet"
	DocEquipmentInfo      = "equipment_info"
	DocConstructionSketch = "construction_sketch"
	DocCCSC               = "ccsc"
	DocBillingForm        = "billing_form"
	DocFDAAttributes      = "fda_attributes"
)

// UtilityConfiguration is the per-utility document that drives a wizard
// session. It is supplied externally and never mutated by the engine.
type UtilityConfiguration struct {
	UtilityCode         string               `yaml:"utility_code" json:"utilityCode" validate:"required"`
	Name                string               `yaml:"name" json:"name"`
	WorkTypes           []WorkType           `yaml:"work_types" json:"workTypes" validate:"required,min=1,unique=Code,dive"`
	Checklist           *Checklist           `yaml:"checklist,omitempty" json:"checklist,omitempty" validate:"omitempty"`
	DocumentCompletions []DocumentCompletion `yaml:"document_completions,omitempty" json:"documentCompletions,omitempty" validate:"dive"`
	ValidationRules     []ValidationRule     `yaml:"validation_rules,omitempty" json:"validationRules,omitempty" validate:"dive"`
}

// WorkType is one selectable classification of work. It determines which
// steps exist for a session.
type WorkType struct {
	Code                 string   `yaml:"code" json:"code" validate:"required"`
	Label                string   `yaml:"label" json:"label" validate:"required"`
	Description          string   `yaml:"description,omitempty" json:"description,omitempty"`
	RequiredDocs         []string `yaml:"required_docs" json:"requiredDocs" validate:"dive,doc_id"`
	RequiresSketchMarkup bool     `yaml:"requires_sketch_markup,omitempty" json:"requiresSketchMarkup,omitempty"`
	AllowBuiltAsDesigned bool     `yaml:"allow_built_as_designed,omitempty" json:"allowBuiltAsDesigned,omitempty"`
}

// Requires reports whether doc is listed in the work type's required documents.
func (w *WorkType) Requires(doc string) bool {
	if w == nil {
		return false
	}
	return slices.Contains(w.RequiredDocs, doc)
}

// Checklist is the utility's completion standards checklist (CCSC).
type Checklist struct {
	FormID   string             `yaml:"form_id" json:"formId"`
	FormName string             `yaml:"form_name" json:"formName"`
	Sections []ChecklistSection `yaml:"sections" json:"sections" validate:"dive"`
}

// ChecklistSection groups labeled boolean items.
type ChecklistSection struct {
	Name  string          `yaml:"name" json:"name" validate:"required"`
	Items []ChecklistItem `yaml:"items" json:"items" validate:"dive"`
}

// ChecklistItem is a single yes/no entry on the checklist.
type ChecklistItem struct {
	ID             string `yaml:"id" json:"id" validate:"required"`
	Label          string `yaml:"label" json:"label" validate:"required"`
	SafetyCritical bool   `yaml:"safety_critical,omitempty" json:"safetyCritical,omitempty"`
}

// SafetyCriticalItems returns the safety-critical items across all sections,
// in declaration order.
func (c *Checklist) SafetyCriticalItems() []ChecklistItem {
	if c == nil {
		return nil
	}
	var items []ChecklistItem
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if it.SafetyCritical {
				items = append(items, it)
			}
		}
	}
	return items
}

// FieldType is the input kind of a document field.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldNumber    FieldType = "number"
	FieldDate      FieldType = "date"
	FieldBoolean   FieldType = "boolean"
	FieldSelect    FieldType = "select"
	FieldSignature FieldType = "signature"
)

// DocumentCompletion describes the fields of one document section.
type DocumentCompletion struct {
	SectionID string  `yaml:"section_id" json:"sectionId" validate:"required,doc_id"`
	Title     string  `yaml:"title,omitempty" json:"title,omitempty"`
	Fields    []Field `yaml:"fields" json:"fields" validate:"dive"`
}

// Field is a single fillable field. AutoFill, when set, is a dotted path
// resolved against the job/user context (e.g. "job.pmNumber", "today").
type Field struct {
	Name     string    `yaml:"name" json:"name" validate:"required"`
	Label    string    `yaml:"label" json:"label"`
	Type     FieldType `yaml:"type" json:"type" validate:"omitempty,oneof=text number date boolean select signature"`
	Required bool      `yaml:"required,omitempty" json:"required,omitempty"`
	AutoFill string    `yaml:"auto_fill,omitempty" json:"autoFill,omitempty"`
}

// DocumentFor returns the document completion definition for a section id,
// or nil when the configuration has none.
func (c *UtilityConfiguration) DocumentFor(sectionID string) *DocumentCompletion {
	if c == nil {
		return nil
	}
	for i := range c.DocumentCompletions {
		if c.DocumentCompletions[i].SectionID == sectionID {
			return &c.DocumentCompletions[i]
		}
	}
	return nil
}

// WorkType returns the work type with the given code, or nil.
func (c *UtilityConfiguration) WorkType(code string) *WorkType {
	if c == nil {
		return nil
	}
	for i := range c.WorkTypes {
		if c.WorkTypes[i].Code == code {
			return &c.WorkTypes[i]
		}
	}
	return nil
}
