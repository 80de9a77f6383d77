// Package review builds the pre-submission summary of a wizard session and
// renders it through the configured markdown template.
package review

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

// StepLine is one row of the step table.
type StepLine struct {
	Key    string
	Label  string
	Done   bool
	Active bool
}

// Summary is the data passed to the review template.
type Summary struct {
	Title       string
	UtilityCode string
	WorkType    string
	JobID       string
	Steps       []StepLine
	Errors      []string
	Warnings    []string
	Ready       bool
}

// Build collects the summary for s. Warnings are dropped when showWarnings
// is false.
func Build(s *wizard.Session, showWarnings bool) Summary {
	cfg := s.Config()
	sum := Summary{
		Title:       "As-Built Review",
		UtilityCode: cfg.UtilityCode,
	}
	if cfg.Name != "" {
		sum.Title = "As-Built Review: " + cfg.Name
	}
	if wt := s.WorkType(); wt != nil {
		sum.WorkType = wt.Label
	}
	if ctx := s.Context(); ctx != nil && ctx.Job != nil {
		sum.JobID = ctx.Job.ID
	}

	active := s.ActiveIndex()
	for i, st := range s.Steps() {
		sum.Steps = append(sum.Steps, StepLine{
			Key:    string(st.Key),
			Label:  st.Label,
			Done:   s.IsComplete(st.Key),
			Active: i == active,
		})
	}

	res := s.Validation()
	sum.Errors = res.Errors
	if showWarnings {
		sum.Warnings = res.Warnings
	}
	sum.Ready = res.Valid
	return sum
}

// Render executes tmpl against sum.
func Render(tmpl string, sum Summary) (string, error) {
	t, err := template.New("review").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse review template: %w", err)
	}
	var b strings.Builder
	if err := t.Execute(&b, sum); err != nil {
		return "", fmt.Errorf("render review template: %w", err)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}
