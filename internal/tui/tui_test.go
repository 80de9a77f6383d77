package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/asbuilt/internal/config"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

func testSession(t *testing.T, feed *Feed) *wizard.Session {
	t.Helper()
	cfg := &domain.UtilityConfiguration{
		UtilityCode: "pge",
		Name:        "Pacific Gas & Electric",
		WorkTypes: []domain.WorkType{
			{Code: "ec_corrective", Label: "EC Corrective", RequiredDocs: []string{"ec_tag", "ccsc"}},
			{Code: "estimated", Label: "Estimated", RequiredDocs: []string{"construction_sketch", "ccsc"}, AllowBuiltAsDesigned: true},
		},
	}
	ctx := &domain.Context{
		Job:  &domain.Job{ID: "job-9", ECTags: []domain.ECTag{{Number: "EC-77"}}},
		User: &domain.User{LanID: "J1DO"},
	}
	var opts []wizard.Option
	if feed != nil {
		opts = append(opts, wizard.WithHandler(feed.Handle))
	}
	s, err := wizard.New(cfg, ctx, opts...)
	require.NoError(t, err)
	return s
}

func testModel(t *testing.T, opts Options) (Model, *wizard.Session) {
	t.Helper()
	tmpls, err := config.LoadTemplates("", "")
	require.NoError(t, err)
	if opts.ReviewTemplate == "" {
		opts.ReviewTemplate = tmpls.Review
	}
	feed := NewFeed()
	sess := testSession(t, feed)
	m := NewModel(sess, feed, opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return updated.(Model), sess
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

// runCmd executes cmd and returns the produced messages, flattening batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNewModel_StartsInWorkTypePicker(t *testing.T) {
	m := NewModel(testSession(t, nil), nil, Options{})
	assert.Equal(t, modeWorkType, m.mode)
	assert.NotNil(t, m.feed)
	assert.NotNil(t, m.Init())
	assert.Equal(t, "Initializing...", m.View())
}

func TestSelectWorkType(t *testing.T) {
	saves := 0
	m, sess := testModel(t, Options{Persist: func() error { saves++; return nil }})

	m = press(t, m, "down", "up", "enter")

	require.NotNil(t, sess.WorkType())
	assert.Equal(t, "ec_corrective", sess.WorkType().Code)
	assert.Equal(t, modeSteps, m.mode)
	assert.Equal(t, 1, saves)
	assert.Equal(t, domain.StepECTag, sess.ActiveStep().Key)
	assert.Contains(t, m.status, "EC Corrective")
}

func TestWorkTypePicker_EscNeedsSelection(t *testing.T) {
	m, _ := testModel(t, Options{})
	m = press(t, m, "esc")
	assert.Equal(t, modeWorkType, m.mode)

	m = press(t, m, "enter", "w")
	assert.Equal(t, modeWorkType, m.mode)
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "esc")
	assert.Equal(t, modeSteps, m.mode)
}

func TestCompleteActiveStepWithPrefill(t *testing.T) {
	m, sess := testModel(t, Options{AutoPrefill: true})
	m = press(t, m, "enter")

	m = press(t, m, "enter")
	assert.True(t, sess.IsComplete(domain.StepECTag))
	assert.Equal(t, "EC-77", sess.Data(domain.StepECTag)["ecTag"])
	assert.Equal(t, domain.StepEquipmentInfo, sess.ActiveStep().Key)
	assert.False(t, m.statusErr)
}

func TestCompleteWithoutPrefill(t *testing.T) {
	m, sess := testModel(t, Options{AutoPrefill: false})
	m = press(t, m, "enter", "enter")
	assert.True(t, sess.IsComplete(domain.StepECTag))
	assert.Empty(t, sess.Data(domain.StepECTag))
	_ = m
}

func TestNavigation(t *testing.T) {
	m, sess := testModel(t, Options{})
	m = press(t, m, "enter")
	require.Equal(t, 1, sess.ActiveIndex())

	m = press(t, m, "down", "down")
	assert.Equal(t, 3, sess.ActiveIndex())
	m = press(t, m, "up", "k")
	assert.Equal(t, 1, sess.ActiveIndex())
	press(t, m, "up", "up", "up")
	assert.Equal(t, 0, sess.ActiveIndex())
}

func TestEnterOnWorkTypeStepOpensPicker(t *testing.T) {
	m, sess := testModel(t, Options{})
	m = press(t, m, "enter", "up")
	require.Equal(t, domain.StepWorkType, sess.ActiveStep().Key)

	m = press(t, m, "enter")
	assert.Equal(t, modeWorkType, m.mode)
}

func TestBuiltAsDesigned(t *testing.T) {
	m, sess := testModel(t, Options{})
	m = press(t, m, "down", "enter")
	require.Equal(t, "estimated", sess.WorkType().Code)

	m = press(t, m, "b")
	assert.False(t, m.statusErr)
	assert.True(t, sess.IsComplete(domain.StepSketchMarkup))
	assert.True(t, engine.BuiltAsDesigned(sess))
}

func TestBuiltAsDesigned_NotAllowed(t *testing.T) {
	m, sess := testModel(t, Options{})
	m = press(t, m, "enter", "b")
	assert.True(t, m.statusErr)
	assert.False(t, sess.IsComplete(domain.StepSketchMarkup))
}

func TestSubmit_NotReady(t *testing.T) {
	m, sess := testModel(t, Options{})
	m = press(t, m, "enter", "s")

	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, engine.MsgECTagRequired)
	assert.Equal(t, modeReview, m.mode)
	assert.Nil(t, sess.Submitted())
	assert.Contains(t, m.detail.View(), "Not ready to submit")
}

func TestSubmit_Delivers(t *testing.T) {
	var delivered *domain.Submission
	saves := 0
	m, sess := testModel(t, Options{
		Persist: func() error { saves++; return nil },
		Deliver: func(sub *domain.Submission) (string, error) {
			delivered = sub
			return "/outbox/x.json", nil
		},
	})
	m = press(t, m, "enter")
	require.NoError(t, sess.MarkComplete(domain.StepECTag, nil))
	require.NoError(t, sess.MarkComplete(domain.StepCCSC, nil))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	assert.True(t, m.submitting)

	// Keys are ignored while submitting, except quit.
	m = press(t, m, "down")
	assert.True(t, m.submitting)

	var done *submitDoneMsg
	for _, msg := range runCmd(cmd) {
		if d, ok := msg.(submitDoneMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)
	updated, _ = m.Update(*done)
	m = updated.(Model)

	assert.False(t, m.submitting)
	assert.Equal(t, "/outbox/x.json", m.delivered)
	require.NotNil(t, delivered)
	assert.Equal(t, "job-9", delivered.JobID)
	assert.Equal(t, "J1DO", delivered.SubmittedBy)
	assert.NotNil(t, sess.Submitted())
	assert.Equal(t, 2, saves)
}

func TestSubmit_DeliverError(t *testing.T) {
	m, sess := testModel(t, Options{
		Deliver: func(*domain.Submission) (string, error) { return "", errors.New("disk full") },
	})
	m = press(t, m, "enter")
	require.NoError(t, sess.MarkComplete(domain.StepECTag, nil))
	require.NoError(t, sess.MarkComplete(domain.StepCCSC, nil))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	for _, msg := range runCmd(cmd) {
		if d, ok := msg.(submitDoneMsg); ok {
			updated, _ = m.Update(d)
			m = updated.(Model)
		}
	}
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "disk full")
}

func TestPersistError(t *testing.T) {
	m, _ := testModel(t, Options{Persist: func() error { return errors.New("read-only") }})
	m = press(t, m, "enter")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "save session: read-only")
}

func TestReviewToggle(t *testing.T) {
	m, _ := testModel(t, Options{})
	m = press(t, m, "enter", "r")
	assert.Equal(t, modeReview, m.mode)
	assert.Contains(t, m.detail.View(), "As-Built Review")

	m = press(t, m, "esc")
	assert.Equal(t, modeSteps, m.mode)
}

func TestQuit(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		m, _ := testModel(t, Options{})
		var msg tea.KeyMsg
		if key == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestView(t *testing.T) {
	m, _ := testModel(t, Options{ShowWarnings: true})
	view := m.View()
	assert.Contains(t, view, "EC Corrective")
	assert.Contains(t, view, "enter: select")

	m = press(t, m, "enter")
	view = m.View()
	assert.Contains(t, view, "Work Type")
	assert.Contains(t, view, "EC Tag")
	assert.Contains(t, view, "Review & Submit")
	assert.Contains(t, view, engine.MsgECTagRequired)
	assert.Contains(t, view, "work_type_selected")
	assert.Contains(t, view, "enter: complete")
}

func TestFeed(t *testing.T) {
	f := NewFeed()
	assert.Empty(t, f.Recent(3))

	for i := range feedLimit + 10 {
		f.Handle(event.StepCompleted(strings.Repeat("x", i%3+1)))
	}
	assert.Len(t, f.Recent(feedLimit*2), feedLimit)
	recent := f.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, event.KindStepCompleted, recent[1].Kind)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		maxLines int
		want     string
	}{
		{"fits", "short text", 20, 0, "short text"},
		{"wraps with indent", "one two three four", 9, 0, "one two\n  three\n  four"},
		{"truncates", "one two three four", 9, 2, "one two\n  thr..."},
		{"empty", "   ", 10, 0, ""},
		{"zero width", "as is", 0, 0, "as is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width, "  ", tt.maxLines))
		})
	}
}
