// Package submission assembles the terminal as-built package once the
// validation gate is open. It does not re-run validation; callers pass the
// current result and Assemble refuses when it is not valid.
package submission

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/pretty"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
)

// Snapshotter exposes copies of completion flags and captured step data.
type Snapshotter interface {
	Snapshot() (completed map[string]bool, data map[string]map[string]any)
}

// Input is everything the assembler reads.
type Input struct {
	UtilityCode string
	WorkType    string
	Context     *domain.Context
	State       Snapshotter
	Validation  domain.ValidationResult
	Now         time.Time // zero means time.Now()
}

// PreconditionError reports an attempt to assemble while blocking
// validation errors remain.
type PreconditionError struct {
	Errors []string
}

func (e *PreconditionError) Error() string {
	if len(e.Errors) == 0 {
		return "submission not allowed: validation has not passed"
	}
	return "submission not allowed: " + strings.Join(e.Errors, "; ")
}

// Assemble builds the Submission. Job and user attribution are drawn from
// the context only, never from captured step data.
func Assemble(in Input) (*domain.Submission, error) {
	if !in.Validation.Valid {
		return nil, &PreconditionError{Errors: append([]string(nil), in.Validation.Errors...)}
	}
	if in.WorkType == "" {
		return nil, &PreconditionError{Errors: []string{engine.MsgWorkTypeNotSelected}}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	var completed map[string]bool
	var data map[string]map[string]any
	if in.State != nil {
		completed, data = in.State.Snapshot()
	}
	if completed == nil {
		completed = map[string]bool{}
	}
	if data == nil {
		data = map[string]map[string]any{}
	}

	sub := &domain.Submission{
		UtilityCode:    in.UtilityCode,
		WorkType:       in.WorkType,
		JobIdentifiers: map[string]string{},
		StepData:       data,
		CompletedSteps: completed,
		SubmittedAt:    now.UTC().Format(time.RFC3339),
	}

	if in.Context != nil {
		if job := in.Context.Job; job != nil {
			sub.JobID = job.ID
			sub.JobIdentifiers = job.Identifiers()
		}
		if user := in.Context.User; user != nil {
			sub.SubmittedBy = user.LanID
		}
	}

	return sub, nil
}

// MustAssemble is like Assemble but panics when the precondition fails.
func MustAssemble(in Input) *domain.Submission {
	sub, err := Assemble(in)
	if err != nil {
		panic(err)
	}
	return sub
}

// Encode renders the submission as indented JSON.
func Encode(sub *domain.Submission) ([]byte, error) {
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	return pretty.Pretty(raw), nil
}
