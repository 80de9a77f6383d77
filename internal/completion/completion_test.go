package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

func TestState_Record(t *testing.T) {
	s := New()
	assert.False(t, s.IsComplete(domain.StepECTag))
	assert.Nil(t, s.Data(domain.StepECTag))

	s.Record(domain.StepECTag, map[string]any{"tag": "EC-1"})
	assert.True(t, s.IsComplete(domain.StepECTag))
	assert.Equal(t, map[string]any{"tag": "EC-1"}, s.Data(domain.StepECTag))
	assert.Equal(t, 1, s.Len())
}

func TestState_RecordIsIdempotent(t *testing.T) {
	s := New()
	d := map[string]any{"tag": "EC-1"}

	s.Record(domain.StepECTag, d)
	s.Record(domain.StepECTag, d)

	assert.True(t, s.IsComplete(domain.StepECTag))
	assert.Equal(t, d, s.Data(domain.StepECTag))
	assert.Equal(t, 1, s.Len())
}

func TestState_RecordOverwrites(t *testing.T) {
	s := New()
	s.Record(domain.StepECTag, map[string]any{"tag": "EC-1", "extra": true})
	s.Record(domain.StepECTag, map[string]any{"tag": "EC-2"})

	assert.Equal(t, map[string]any{"tag": "EC-2"}, s.Data(domain.StepECTag))
}

func TestState_RecordNilData(t *testing.T) {
	s := New()
	s.Record(domain.StepCCSC, nil)

	assert.True(t, s.IsComplete(domain.StepCCSC))
	assert.Equal(t, map[string]any{}, s.Data(domain.StepCCSC))
}

func TestState_DataIsCopied(t *testing.T) {
	s := New()
	in := map[string]any{"a": 1}
	s.Record(domain.StepCCSC, in)
	in["a"] = 2

	out := s.Data(domain.StepCCSC)
	assert.Equal(t, 1, out["a"])
	out["a"] = 3
	assert.Equal(t, 1, s.Data(domain.StepCCSC)["a"])
}

func TestState_NestedDataIsCopied(t *testing.T) {
	s := New()
	in := map[string]any{
		"crew":    map[string]any{"lead": "A"},
		"entries": []any{map[string]any{"hours": 2}},
		"tags":    []string{"x"},
	}
	s.Record(domain.StepBillingForm, in)

	in["crew"].(map[string]any)["lead"] = "B"
	in["entries"].([]any)[0].(map[string]any)["hours"] = 9
	in["tags"].([]string)[0] = "y"

	got := s.Data(domain.StepBillingForm)
	assert.Equal(t, "A", got["crew"].(map[string]any)["lead"])
	assert.Equal(t, 2, got["entries"].([]any)[0].(map[string]any)["hours"])
	assert.Equal(t, []string{"x"}, got["tags"])

	got["crew"].(map[string]any)["lead"] = "C"
	_, snap := s.Snapshot()
	snap["billing_form"]["crew"].(map[string]any)["lead"] = "D"
	assert.Equal(t, "A", s.Data(domain.StepBillingForm)["crew"].(map[string]any)["lead"])
}

func TestState_Reset(t *testing.T) {
	s := New()
	s.Record(domain.StepWorkType, map[string]any{"workType": "x"})
	s.Record(domain.StepECTag, nil)

	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsComplete(domain.StepWorkType))
	assert.Nil(t, s.Data(domain.StepECTag))
	assert.Empty(t, s.CompletedKeys())
}

func TestState_NilReceiver(t *testing.T) {
	var s *State
	assert.False(t, s.IsComplete(domain.StepECTag))
	assert.Nil(t, s.Data(domain.StepECTag))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.CompletedKeys())

	completed, data := s.Snapshot()
	assert.Empty(t, completed)
	assert.Empty(t, data)
}

func TestState_CompletedKeys(t *testing.T) {
	s := New()
	s.Record(domain.StepReview, nil)
	s.Record(domain.StepCCSC, nil)
	s.Record(domain.StepECTag, nil)

	assert.Equal(t, []domain.StepKey{domain.StepCCSC, domain.StepECTag, domain.StepReview}, s.CompletedKeys())
}

func TestState_Snapshot(t *testing.T) {
	s := New()
	s.Record(domain.StepECTag, map[string]any{"tag": "EC-1"})

	completed, data := s.Snapshot()
	assert.Equal(t, map[string]bool{"ec_tag": true}, completed)
	assert.Equal(t, map[string]map[string]any{"ec_tag": {"tag": "EC-1"}}, data)

	data["ec_tag"]["tag"] = "changed"
	assert.Equal(t, "EC-1", s.Data(domain.StepECTag)["tag"])
}

func TestState_JSONRoundTrip(t *testing.T) {
	s := New()
	s.Record(domain.StepSketchMarkup, map[string]any{"builtAsDesigned": true})
	s.Record(domain.StepCCSC, nil)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(b, restored))

	assert.True(t, restored.IsComplete(domain.StepSketchMarkup))
	assert.True(t, restored.IsComplete(domain.StepCCSC))
	assert.Equal(t, true, restored.Data(domain.StepSketchMarkup)["builtAsDesigned"])
	assert.Equal(t, map[string]any{}, restored.Data(domain.StepCCSC))
}
