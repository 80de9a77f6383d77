// Package tui implements the interactive terminal wizard over a
// wizard.Session.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

type mode int

const (
	modeSteps mode = iota
	modeWorkType
	modeReview
)

// Options wires the model to its host.
type Options struct {
	AutoPrefill    bool
	ShowWarnings   bool
	ReviewTemplate string

	// Persist is called after every change to the session.
	Persist func() error
	// Deliver hands an assembled submission to the host and returns where
	// it went.
	Deliver func(*domain.Submission) (string, error)
}

// Model is the bubbletea model for the wizard.
type Model struct {
	sess *wizard.Session
	opts Options
	feed *Feed

	mode   mode
	cursor int // work-type picker position

	detail   viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
	ready    bool

	submitting bool
	delivered  string
	status     string
	statusErr  bool
}

// NewModel creates a model over sess. feed may be nil; pass the same feed's
// Handle to the session to see its events.
func NewModel(sess *wizard.Session, feed *Feed, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if feed == nil {
		feed = NewFeed()
	}
	m := Model{
		sess:    sess,
		opts:    opts,
		feed:    feed,
		spinner: s,
	}
	if sess.WorkType() == nil {
		m.mode = modeWorkType
	}
	return m
}

type rendererReadyMsg struct {
	renderer *glamour.TermRenderer
}

// submitDoneMsg reports the outcome of an asynchronous submit.
type submitDoneMsg struct {
	path string
	err  error
}
