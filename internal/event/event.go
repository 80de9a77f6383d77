// Package event defines typed events emitted by the wizard session,
// consumed by the TUI, the progress logger, and CLI output.
package event

// Kind identifies the type of event.
type Kind int

const (
	// KindWorkTypeSelected is emitted when a work type is chosen and the
	// step list is re-derived.
	KindWorkTypeSelected Kind = iota
	// KindStepCompleted is emitted when a step is marked complete.
	KindStepCompleted
	// KindNavigated is emitted when the active step changes.
	KindNavigated
	// KindValidation is emitted when the validation result changes.
	KindValidation
	// KindSubmitted is emitted once a submission has been assembled.
	KindSubmitted
	// KindReset is emitted when completion state is cleared.
	KindReset
)

var kindNames = [...]string{
	KindWorkTypeSelected: "work_type_selected",
	KindStepCompleted:    "step_completed",
	KindNavigated:        "navigated",
	KindValidation:       "validation",
	KindSubmitted:        "submitted",
	KindReset:            "reset",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is a single typed event emitted by a session.
type Event struct {
	Kind Kind
	Step string // step key the event refers to, if any
	Text string // human-readable payload
}

// Handler is a callback that receives typed events.
type Handler func(Event)

// WorkTypeSelected creates a KindWorkTypeSelected event.
func WorkTypeSelected(code string) Event {
	return Event{Kind: KindWorkTypeSelected, Step: "work_type", Text: code}
}

// StepCompleted creates a KindStepCompleted event.
func StepCompleted(step string) Event { return Event{Kind: KindStepCompleted, Step: step, Text: step} }

// Navigated creates a KindNavigated event for the step now active.
func Navigated(step string) Event { return Event{Kind: KindNavigated, Step: step, Text: step} }

// Validation creates a KindValidation event with a short summary.
func Validation(text string) Event { return Event{Kind: KindValidation, Text: text} }

// Submitted creates a KindSubmitted event.
func Submitted(text string) Event { return Event{Kind: KindSubmitted, Text: text} }

// Reset creates a KindReset event.
func Reset(text string) Event { return Event{Kind: KindReset, Text: text} }

// Multi fans an event out to every non-nil handler.
func Multi(handlers ...Handler) Handler {
	return func(e Event) {
		for _, h := range handlers {
			if h != nil {
				h(e)
			}
		}
	}
}
