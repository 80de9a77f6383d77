package wizard

import (
	"fmt"

	"github.com/alexander-akhmetov/asbuilt/internal/completion"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
)

// Snapshot is the persistable state of a session. Steps and validation are
// derived and therefore not stored.
type Snapshot struct {
	UtilityCode string             `json:"utilityCode"`
	WorkType    string             `json:"workType,omitempty"`
	ActiveStep  domain.StepKey     `json:"activeStep"`
	State       *completion.State  `json:"state"`
	Submission  *domain.Submission `json:"submission,omitempty"`
}

// Snapshot captures the session for host-side persistence.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so the snapshot shares no maps with the live session.
	state := completion.New()
	for _, key := range s.state.CompletedKeys() {
		state.Record(key, s.state.Data(key))
	}

	snap := Snapshot{
		UtilityCode: s.cfg.UtilityCode,
		ActiveStep:  s.steps[s.active].Key,
		State:       state,
		Submission:  s.submitted,
	}
	if s.workType != nil {
		snap.WorkType = s.workType.Code
	}
	return snap
}

// Restore rebuilds a session from a snapshot. The work type is re-resolved
// against cfg and the steps are re-derived; completion data is kept as is.
func Restore(cfg *domain.UtilityConfiguration, ctx *domain.Context, snap Snapshot, opts ...Option) (*Session, error) {
	s, err := New(cfg, ctx, opts...)
	if err != nil {
		return nil, err
	}
	if snap.UtilityCode != "" && snap.UtilityCode != cfg.UtilityCode {
		return nil, fmt.Errorf("restore session: snapshot is for utility %q, configuration is %q", snap.UtilityCode, cfg.UtilityCode)
	}

	if snap.WorkType != "" {
		wt := cfg.WorkType(snap.WorkType)
		if wt == nil {
			return nil, fmt.Errorf("restore session: %w: %q", ErrUnknownWorkType, snap.WorkType)
		}
		s.workType = wt
		s.steps = engine.DeriveSteps(cfg, wt)
	}
	if snap.State != nil {
		s.state = snap.State
	}
	if idx := engine.IndexOf(s.steps, snap.ActiveStep); idx >= 0 {
		s.active = idx
	}
	s.submitted = snap.Submission
	s.validation = engine.Validate(s.state, s.workType, cfg)
	return s, nil
}
