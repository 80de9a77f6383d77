// Package completion tracks which wizard steps are complete and the data
// captured for each. Entries are written only by an explicit completion and
// removed only by Reset, which the session calls when the work type changes.
package completion

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// State is the completion store for one wizard session. It is not safe for
// concurrent use; the owning session serializes access.
type State struct {
	completed map[domain.StepKey]bool
	data      map[domain.StepKey]map[string]any
}

// New returns an empty State.
func New() *State {
	return &State{
		completed: make(map[domain.StepKey]bool),
		data:      make(map[domain.StepKey]map[string]any),
	}
}

// Record marks key complete and stores data for it, replacing any data
// captured earlier. A nil data map is stored as an empty map.
func (s *State) Record(key domain.StepKey, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	s.completed[key] = true
	s.data[key] = cloneData(data)
}

// IsComplete reports whether key has been completed.
func (s *State) IsComplete(key domain.StepKey) bool {
	if s == nil {
		return false
	}
	return s.completed[key]
}

// Data returns the data captured for key, or nil if none. The returned map
// is a copy.
func (s *State) Data(key domain.StepKey) map[string]any {
	if s == nil {
		return nil
	}
	d, ok := s.data[key]
	if !ok {
		return nil
	}
	return cloneData(d)
}

// Reset clears every completion flag and all captured data.
func (s *State) Reset() {
	clear(s.completed)
	clear(s.data)
}

// Len returns the number of completed steps.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.completed)
}

// CompletedKeys returns the completed step keys in lexical order.
func (s *State) CompletedKeys() []domain.StepKey {
	if s == nil {
		return nil
	}
	keys := slices.Collect(maps.Keys(s.completed))
	slices.Sort(keys)
	return keys
}

// Snapshot returns copies of the completion flags and captured data keyed
// by plain strings, the shape used in submissions.
func (s *State) Snapshot() (completed map[string]bool, data map[string]map[string]any) {
	completed = make(map[string]bool)
	data = make(map[string]map[string]any)
	if s == nil {
		return completed, data
	}
	for k, v := range s.completed {
		completed[string(k)] = v
	}
	for k, v := range s.data {
		data[string(k)] = cloneData(v)
	}
	return completed, data
}

// cloneData copies captured data, descending into nested maps and slices so
// no caller shares mutable structure with the state.
func cloneData(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneData(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneData(e)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	case []bool:
		return slices.Clone(t)
	default:
		return v
	}
}

type stateJSON struct {
	Completed map[domain.StepKey]bool           `json:"completed"`
	Data      map[domain.StepKey]map[string]any `json:"data"`
}

// MarshalJSON encodes the state for host-side persistence.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{Completed: s.completed, Data: s.data})
}

// UnmarshalJSON restores a state written by MarshalJSON.
func (s *State) UnmarshalJSON(b []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = *New()
	for k, v := range raw.Completed {
		if v {
			s.completed[k] = true
		}
	}
	for k, v := range raw.Data {
		if v == nil {
			v = map[string]any{}
		}
		s.data[k] = v
	}
	return nil
}
