package engine

import "github.com/alexander-akhmetov/asbuilt/internal/domain"

// NextActiveIndex is the auto-advance rule applied after a step completes:
// move one step forward, never past the last step.
func NextActiveIndex(steps []domain.Step, current int) int {
	return Clamp(steps, current+1)
}

// Clamp bounds idx to the valid index range of steps. An empty list
// clamps to 0.
func Clamp(steps []domain.Step, idx int) int {
	last := len(steps) - 1
	if idx > last {
		idx = last
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// IndexOf returns the position of key in steps, or -1.
func IndexOf(steps []domain.Step, key domain.StepKey) int {
	for i, s := range steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}
