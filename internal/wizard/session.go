// Package wizard owns the state of one as-built completion session. A
// Session ties together step derivation, the completion tracker, the
// validation gate and the submission assembler behind a method-call API,
// so any host (CLI, TUI, server handler) drives the same behavior.
package wizard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alexander-akhmetov/asbuilt/internal/autofill"
	"github.com/alexander-akhmetov/asbuilt/internal/completion"
	"github.com/alexander-akhmetov/asbuilt/internal/debug"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
	"github.com/alexander-akhmetov/asbuilt/internal/scope"
	"github.com/alexander-akhmetov/asbuilt/internal/submission"
)

var (
	// ErrUnknownWorkType is returned when a work-type code is not in the
	// utility configuration.
	ErrUnknownWorkType = errors.New("unknown work type")
	// ErrUnknownStep is returned for a step key that is not in the derived
	// step list.
	ErrUnknownStep = errors.New("unknown step")
	// ErrNoConfiguration is returned by New when no utility configuration
	// is available.
	ErrNoConfiguration = errors.New("no utility configuration")
)

// NotReadyError is returned by Submit while blocking validation errors remain.
type NotReadyError struct {
	Errors []string
}

func (e *NotReadyError) Error() string {
	return "not ready to submit: " + strings.Join(e.Errors, "; ")
}

// LaborEntriesKey is the billing-form field holding per-worker labor hours.
// Captured entries take precedence over the timesheet total for crew hours.
const LaborEntriesKey = "laborEntries"

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for "today" and submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithHandler registers an event handler.
func WithHandler(h event.Handler) Option {
	return func(s *Session) { s.handler = h }
}

// WithResolver replaces the auto-fill resolver.
func WithResolver(r *autofill.Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// Session is a single-owner wizard session. All methods are safe for
// concurrent use; mutations are serialized.
type Session struct {
	mu sync.Mutex

	cfg      *domain.UtilityConfiguration
	ctx      *domain.Context
	now      func() time.Time
	handler  event.Handler
	resolver *autofill.Resolver

	workType   *domain.WorkType
	steps      []domain.Step
	active     int
	state      *completion.State
	validation domain.ValidationResult
	submitted  *domain.Submission
}

// New starts a session with no work type selected.
func New(cfg *domain.UtilityConfiguration, ctx *domain.Context, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, ErrNoConfiguration
	}
	s := &Session{
		cfg:   cfg,
		ctx:   ctx,
		now:   time.Now,
		state: completion.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = &autofill.Resolver{Now: s.now}
	}
	s.steps = engine.DeriveSteps(cfg, nil)
	s.validation = engine.Validate(s.state, nil, cfg)
	return s, nil
}

// Config returns the utility configuration driving the session.
func (s *Session) Config() *domain.UtilityConfiguration {
	return s.cfg
}

// Context returns the job/user context.
func (s *Session) Context() *domain.Context {
	return s.ctx
}

// WorkType returns the selected work type, or nil.
func (s *Session) WorkType() *domain.WorkType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workType
}

// SelectWorkType selects the work type by code. Selecting a different work
// type clears all completion state and re-derives the steps; the work-type
// step is then recorded complete and the wizard advances. Re-selecting the
// current work type changes nothing.
//
// After a change CompletedKeys is [work_type], not empty.
func (s *Session) SelectWorkType(code string) error {
	wt := s.cfg.WorkType(code)
	if wt == nil {
		return fmt.Errorf("%w: %q", ErrUnknownWorkType, code)
	}

	s.mu.Lock()
	if s.workType != nil && s.workType.Code == wt.Code {
		s.mu.Unlock()
		return nil
	}

	var events []event.Event
	if s.state.Len() > 0 {
		events = append(events, event.Reset(fmt.Sprintf("work type changed to %s", code)))
	}
	s.state.Reset()
	s.submitted = nil
	s.workType = wt
	s.steps = engine.DeriveSteps(s.cfg, wt)
	s.active = 0
	debug.Logw("wizard: work type selected", "code", code, "steps", domain.StepKeys(s.steps))
	events = append(events, event.WorkTypeSelected(code))

	s.state.Record(domain.StepWorkType, map[string]any{"workType": code})
	events = append(events, s.advanceLocked()...)
	events = append(events, s.revalidateLocked()...)
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// MarkComplete records data for key, marks it complete and advances the
// active step by one, never past the last step. Completing an already
// completed step overwrites its data.
func (s *Session) MarkComplete(key domain.StepKey, data map[string]any) error {
	s.mu.Lock()
	if engine.IndexOf(s.steps, key) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownStep, key)
	}

	s.state.Record(key, data)
	events := []event.Event{event.StepCompleted(string(key))}
	events = append(events, s.advanceLocked()...)
	events = append(events, s.revalidateLocked()...)
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// GoTo makes key the active step. Completed and pending steps can both be
// revisited.
func (s *Session) GoTo(key domain.StepKey) error {
	s.mu.Lock()
	idx := engine.IndexOf(s.steps, key)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownStep, key)
	}
	events := s.setActiveLocked(idx)
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// Next moves to the following step without completing the current one.
func (s *Session) Next() {
	s.mu.Lock()
	events := s.setActiveLocked(engine.NextActiveIndex(s.steps, s.active))
	s.mu.Unlock()
	s.emit(events)
}

// Back moves to the previous step.
func (s *Session) Back() {
	s.mu.Lock()
	events := s.setActiveLocked(engine.Clamp(s.steps, s.active-1))
	s.mu.Unlock()
	s.emit(events)
}

// ActiveIndex returns the index of the active step.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveStep returns the active step.
func (s *Session) ActiveStep() domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.active]
}

// Steps returns a copy of the derived steps.
func (s *Session) Steps() []domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.steps)
}

// IsComplete reports whether key has been completed.
func (s *Session) IsComplete(key domain.StepKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsComplete(key)
}

// Data returns a copy of the data captured for key, or nil.
func (s *Session) Data(key domain.StepKey) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Data(key)
}

// CompletedKeys returns the completed step keys in lexical order.
func (s *Session) CompletedKeys() []domain.StepKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CompletedKeys()
}

// Validation returns the current validation result.
func (s *Session) Validation() domain.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneResult(s.validation)
}

// Scope returns the equipment categories detected from the job.
func (s *Session) Scope() scope.Scope {
	var job *domain.Job
	if s.ctx != nil {
		job = s.ctx.Job
	}
	return scope.Detect(job)
}

// Prefill returns values to pre-populate the step's form from the job and
// user context. Missing values are omitted; the result is never nil.
func (s *Session) Prefill(key domain.StepKey) map[string]any {
	s.mu.Lock()
	idx := engine.IndexOf(s.steps, key)
	var step domain.Step
	if idx >= 0 {
		step = s.steps[idx]
	}
	labor := autofill.LaborHours(s.state.Data(domain.StepBillingForm)[LaborEntriesKey])
	s.mu.Unlock()

	docID := string(key)
	if step.SectionType != "" {
		docID = step.SectionType
	}
	out := s.resolver.Prefill(s.cfg.DocumentFor(docID), s.ctx)
	if out == nil {
		out = map[string]any{}
	}

	switch key {
	case domain.StepECTag:
		if s.ctx != nil && s.ctx.Job != nil && len(s.ctx.Job.ECTags) > 0 {
			setDefault(out, "ecTag", s.ctx.Job.ECTags[0].Number)
		}
	case domain.StepBillingForm:
		if hours, ok := autofill.CrewHours(s.ctx, labor); ok {
			setDefault(out, "crewHours", hours)
		}
	case domain.StepFDAAttributes, domain.StepEquipmentInfo:
		setDefault(out, "attributeSections", scope.AttributeSections(s.Scope()))
	}
	return out
}

// Submit assembles the submission when the validation gate is open.
func (s *Session) Submit() (*domain.Submission, error) {
	s.mu.Lock()
	if !s.validation.Valid {
		err := &NotReadyError{Errors: slices.Clone(s.validation.Errors)}
		s.mu.Unlock()
		return nil, err
	}

	code := ""
	if s.workType != nil {
		code = s.workType.Code
	}
	sub, err := submission.Assemble(submission.Input{
		UtilityCode: s.cfg.UtilityCode,
		WorkType:    code,
		Context:     s.ctx,
		State:       s.state,
		Validation:  s.validation,
		Now:         s.now(),
	})
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("assemble submission: %w", err)
	}
	s.submitted = sub
	s.mu.Unlock()
	debug.Logw("wizard: submission assembled", "utility", sub.UtilityCode, "workType", sub.WorkType, "steps", len(sub.CompletedSteps))

	s.emit([]event.Event{event.Submitted(fmt.Sprintf("%s/%s", sub.UtilityCode, sub.WorkType))})
	return sub, nil
}

// Submitted returns the last assembled submission, or nil.
func (s *Session) Submitted() *domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// advanceLocked applies the auto-advance rule.
func (s *Session) advanceLocked() []event.Event {
	return s.setActiveLocked(engine.NextActiveIndex(s.steps, s.active))
}

func (s *Session) setActiveLocked(idx int) []event.Event {
	idx = engine.Clamp(s.steps, idx)
	if idx == s.active {
		return nil
	}
	s.active = idx
	return []event.Event{event.Navigated(string(s.steps[idx].Key))}
}

// revalidateLocked re-runs the gate and reports a change.
func (s *Session) revalidateLocked() []event.Event {
	res := engine.Validate(s.state, s.workType, s.cfg)
	if sameResult(res, s.validation) {
		return nil
	}
	s.validation = res
	return []event.Event{event.Validation(summarize(res))}
}

// emit delivers events outside the lock so handlers may call back in.
func (s *Session) emit(events []event.Event) {
	if s.handler == nil {
		return
	}
	for _, e := range events {
		s.handler(e)
	}
}

func summarize(res domain.ValidationResult) string {
	if res.Valid {
		return fmt.Sprintf("ready (%d warnings)", len(res.Warnings))
	}
	return fmt.Sprintf("%d blocking, %d warnings", len(res.Errors), len(res.Warnings))
}

func sameResult(a, b domain.ValidationResult) bool {
	return a.Valid == b.Valid && slices.Equal(a.Errors, b.Errors) && slices.Equal(a.Warnings, b.Warnings)
}

func cloneResult(r domain.ValidationResult) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:    r.Valid,
		Errors:   slices.Clone(r.Errors),
		Warnings: slices.Clone(r.Warnings),
	}
}

func setDefault(m map[string]any, k string, v any) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}
