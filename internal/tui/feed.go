package tui

import (
	"sync"

	"github.com/alexander-akhmetov/asbuilt/internal/event"
)

const feedLimit = 200

// Feed collects session events for display. Its Handle method is passed to
// the session as (part of) its event handler.
type Feed struct {
	mu     sync.Mutex
	events []event.Event
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Handle records e. It satisfies event.Handler.
func (f *Feed) Handle(e event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	if len(f.events) > feedLimit {
		f.events = f.events[len(f.events)-feedLimit:]
	}
}

// Recent returns up to n of the latest events, oldest first.
func (f *Feed) Recent(n int) []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := max(0, len(f.events)-n)
	out := make([]event.Event, len(f.events)-start)
	copy(out, f.events[start:])
	return out
}
