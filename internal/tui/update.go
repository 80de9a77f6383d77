package tui

import (
	"errors"
	"fmt"
	"maps"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/asbuilt/internal/debug"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

func createRendererCmd(width int) tea.Cmd {
	return func() tea.Msg {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-6, 40)),
		)
		if err != nil {
			debug.Logf("tui: failed to create glamour renderer: %v", err)
		}
		return rendererReadyMsg{renderer: renderer}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.detailSize()
		if !m.ready {
			m.detail = viewport.New(w, h)
			m.ready = true
			cmds = append(cmds, createRendererCmd(w))
		} else {
			m.detail.Width = w
			m.detail.Height = h
		}
		m.refreshDetail()

	case rendererReadyMsg:
		m.renderer = msg.renderer
		m.refreshDetail()

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.delivered = msg.path
			m.setStatus("Submitted: " + msg.path)
		}
		m.persist()
		m.refreshDetail()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if m.submitting {
		return m, nil
	}

	switch m.mode {
	case modeWorkType:
		return m.handleWorkTypeKey(key)
	case modeReview:
		switch key {
		case "esc", "r":
			m.mode = modeSteps
			m.refreshDetail()
			return m, nil
		case "s":
			return m.submit()
		}
		return m.scroll(msg)
	}

	switch key {
	case "up", "k":
		m.sess.Back()
		m.persist()
	case "down", "j":
		m.sess.Next()
		m.persist()
	case "enter", " ":
		return m.activate()
	case "w":
		m.openWorkTypes()
	case "b":
		m.builtAsDesigned()
	case "r":
		m.mode = modeReview
	case "s":
		return m.submit()
	default:
		return m.scroll(msg)
	}
	m.refreshDetail()
	return m, nil
}

func (m Model) handleWorkTypeKey(key string) (tea.Model, tea.Cmd) {
	types := m.sess.Config().WorkTypes
	switch key {
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(types)-1, m.cursor+1)
	case "esc":
		if m.sess.WorkType() != nil {
			m.mode = modeSteps
		}
	case "enter", " ":
		if len(types) == 0 {
			return m, nil
		}
		if err := m.sess.SelectWorkType(types[m.cursor].Code); err != nil {
			m.setError(err)
			return m, nil
		}
		m.mode = modeSteps
		m.setStatus("Work type: " + types[m.cursor].Label)
		m.persist()
	}
	m.refreshDetail()
	return m, nil
}

func (m *Model) openWorkTypes() {
	m.mode = modeWorkType
	m.cursor = 0
	if wt := m.sess.WorkType(); wt != nil {
		for i, t := range m.sess.Config().WorkTypes {
			if t.Code == wt.Code {
				m.cursor = i
			}
		}
	}
}

// activate acts on the active step: the work-type step opens the picker,
// the review step submits, any other step is completed with its prefilled
// and previously captured data.
func (m Model) activate() (tea.Model, tea.Cmd) {
	step := m.sess.ActiveStep()
	switch step.Key {
	case domain.StepWorkType:
		m.openWorkTypes()
		m.refreshDetail()
		return m, nil
	case domain.StepReview:
		return m.submit()
	}

	data := map[string]any{}
	if m.opts.AutoPrefill {
		maps.Copy(data, m.sess.Prefill(step.Key))
	}
	maps.Copy(data, m.sess.Data(step.Key))
	if err := m.sess.MarkComplete(step.Key, data); err != nil {
		m.setError(err)
	} else {
		m.setStatus(step.Label + " completed")
		m.persist()
	}
	m.refreshDetail()
	return m, nil
}

func (m *Model) builtAsDesigned() {
	wt := m.sess.WorkType()
	if wt == nil || !wt.AllowBuiltAsDesigned {
		m.setError(errors.New("work type does not allow Built As Designed"))
		return
	}
	if engine.IndexOf(m.sess.Steps(), domain.StepSketchMarkup) < 0 {
		m.setError(errors.New("this work type has no construction sketch"))
		return
	}
	data := m.sess.Data(domain.StepSketchMarkup)
	if data == nil {
		data = map[string]any{}
	}
	data[engine.BuiltAsDesignedKey] = true
	if err := m.sess.MarkComplete(domain.StepSketchMarkup, data); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("Construction sketch marked Built As Designed")
	m.persist()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	res := m.sess.Validation()
	if !res.Valid {
		m.setError(&wizard.NotReadyError{Errors: res.Errors})
		m.mode = modeReview
		m.refreshDetail()
		return m, nil
	}
	m.submitting = true
	m.setStatus("Submitting...")
	sess, deliver := m.sess, m.opts.Deliver
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		sub, err := sess.Submit()
		if err != nil {
			return submitDoneMsg{err: err}
		}
		if deliver == nil {
			return submitDoneMsg{path: fmt.Sprintf("%s/%s", sub.UtilityCode, sub.WorkType)}
		}
		path, err := deliver(sub)
		return submitDoneMsg{path: path, err: err}
	})
}

func (m Model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end":
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) persist() {
	if m.opts.Persist == nil {
		return
	}
	if err := m.opts.Persist(); err != nil {
		m.setError(fmt.Errorf("save session: %w", err))
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}
