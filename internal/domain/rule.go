package domain

import "strings"

// RuleKind is the closed vocabulary of utility-supplied validation rules.
type RuleKind int

const (
	// RuleUnknown is any kind this version does not interpret. Such rules
	// are ignored so newer configurations keep working.
	RuleUnknown RuleKind = iota
	// RuleRequiredUnless makes the target step required unless it was
	// completed or otherwise satisfied (e.g. Built As Designed).
	RuleRequiredUnless
)

var ruleKindNames = map[RuleKind]string{
	RuleRequiredUnless: "required_unless",
}

// ParseRuleKind maps a configuration string to a RuleKind. Unrecognized
// values map to RuleUnknown.
func ParseRuleKind(s string) RuleKind {
	s = strings.TrimSpace(strings.ToLower(s))
	for k, name := range ruleKindNames {
		if name == s {
			return k
		}
	}
	return RuleUnknown
}

func (k RuleKind) String() string {
	if name, ok := ruleKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// RuleTarget names the step a rule applies to.
type RuleTarget string

// TargetSketchMarkup is the only target currently interpreted.
const TargetSketchMarkup RuleTarget = "sketch_markup"

// Severity decides whether an unmet rule blocks submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Blocking reports whether the severity blocks submission. Only "error"
// blocks; every other value is advisory.
func (s Severity) Blocking() bool {
	return s == SeverityError
}

// ValidationRule is a declarative, utility-supplied rule.
type ValidationRule struct {
	Rule        string     `yaml:"rule" json:"rule" validate:"required,rule_kind"`
	Target      RuleTarget `yaml:"target" json:"target"`
	Severity    Severity   `yaml:"severity" json:"severity"`
	Description string     `yaml:"description" json:"description" validate:"required"`
}

// Kind returns the parsed rule kind.
func (r ValidationRule) Kind() RuleKind {
	return ParseRuleKind(r.Rule)
}
