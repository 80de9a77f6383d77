package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) Event
		kind Kind
	}{
		{"StepCompleted", StepCompleted, KindStepCompleted},
		{"Navigated", Navigated, KindNavigated},
		{"Validation", Validation, KindValidation},
		{"Submitted", Submitted, KindSubmitted},
		{"Reset", Reset, KindReset},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.fn("hello")
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, "hello", e.Text)
		})
	}
}

func TestWorkTypeSelected(t *testing.T) {
	e := WorkTypeSelected("ec_corrective")
	assert.Equal(t, KindWorkTypeSelected, e.Kind)
	assert.Equal(t, "work_type", e.Step)
	assert.Equal(t, "ec_corrective", e.Text)
}

func TestKindValues(t *testing.T) {
	kinds := []Kind{
		KindWorkTypeSelected, KindStepCompleted, KindNavigated,
		KindValidation, KindSubmitted, KindReset,
	}
	seen := make(map[Kind]bool)
	names := make(map[string]bool)
	for _, k := range kinds {
		assert.False(t, seen[k], "duplicate Kind value %d", k)
		assert.False(t, names[k.String()], "duplicate Kind name %s", k)
		seen[k] = true
		names[k.String()] = true
	}
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestMulti(t *testing.T) {
	var a, b []Event
	h := Multi(
		func(e Event) { a = append(a, e) },
		nil,
		func(e Event) { b = append(b, e) },
	)

	h(StepCompleted("ec_tag"))
	h(Navigated("ccsc"))

	assert.Len(t, a, 2)
	assert.Len(t, b, 2)
	assert.Equal(t, KindNavigated, b[1].Kind)
	assert.Equal(t, "ccsc", b[1].Step)
}
