package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
)

// 256-color palette shared with the TUI.
var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	styleDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleEvent  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	styleHunk   = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
)

// Writer prints command output. In TTY mode it styles text and renders
// markdown with glamour; otherwise it prints plain text.
type Writer struct {
	out      io.Writer
	isTTY    bool
	width    int
	mu       sync.Mutex
	renderer *glamour.TermRenderer
}

// NewWriter creates a Writer. If width is <= 0, defaults to 80.
func NewWriter(out io.Writer, isTTY bool, width int) *Writer {
	if width <= 0 {
		width = 80
	}

	w := &Writer{
		out:   out,
		isTTY: isTTY,
		width: width,
	}

	if isTTY {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-6, 40)),
		)
		if err == nil {
			w.renderer = r
		}
	}

	return w
}

// IsTTY reports whether output goes to a terminal.
func (w *Writer) IsTTY() bool {
	return w.isTTY
}

// Printf writes formatted text.
func (w *Writer) Printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Title prints a bold heading line.
func (w *Writer) Title(text string) {
	w.Printf("%s\n", w.style(styleTitle, text))
}

// Field prints an aligned "label: value" line.
func (w *Writer) Field(label, value string) {
	w.Printf("  %s %s\n", w.style(styleLabel, fmt.Sprintf("%-12s", label+":")), w.style(styleValue, value))
}

// WriteEvent prints a session event. It satisfies event.Handler.
func (w *Writer) WriteEvent(ev event.Event) {
	var line string
	switch ev.Kind {
	case event.KindWorkTypeSelected:
		line = "work type: " + ev.Text
	case event.KindStepCompleted:
		line = "completed: " + ev.Step
	case event.KindNavigated:
		line = "active step: " + ev.Step
	case event.KindValidation:
		line = "validation: " + ev.Text
	case event.KindSubmitted:
		line = "submitted: " + ev.Text
	case event.KindReset:
		line = "reset: " + ev.Text
	default:
		return
	}
	w.Printf("%s %s\n", w.style(styleEvent, "▶"), line)
}

// Steps prints the derived step list with completion markers.
func (w *Writer) Steps(steps []domain.Step, done func(domain.StepKey) bool, active int) {
	for i, st := range steps {
		mark := "[ ]"
		if done != nil && done(st.Key) {
			mark = w.style(styleDone, "[x]")
		}
		label := fmt.Sprintf("%-22s %s", st.Label, w.style(styleLabel, string(st.Key)))
		pointer := "  "
		if i == active {
			pointer = w.style(styleActive, "->")
			label = w.style(styleActive, fmt.Sprintf("%-22s", st.Label)) + " " + w.style(styleLabel, string(st.Key))
		}
		w.Printf("%s %s %2d. %s\n", pointer, mark, i+1, label)
	}
}

// Validation prints the gate result.
func (w *Writer) Validation(res domain.ValidationResult, showWarnings bool) {
	if res.Valid {
		w.Printf("%s\n", w.style(styleDone, "Ready to submit"))
	} else {
		w.Printf("%s\n", w.style(styleError, fmt.Sprintf("Not ready: %d blocking", len(res.Errors))))
	}
	for _, e := range res.Errors {
		w.Printf("  %s %s\n", w.style(styleError, "error"), e)
	}
	if !showWarnings {
		return
	}
	for _, warn := range res.Warnings {
		w.Printf("  %s %s\n", w.style(styleWarn, "warn "), warn)
	}
}

// Markdown prints text rendered through glamour in TTY mode.
func (w *Writer) Markdown(text string) {
	if w.renderer != nil {
		if rendered, err := w.renderer.Render(text); err == nil {
			text = rendered
		}
	}
	w.Printf("%s\n", strings.TrimRight(text, "\n"))
}

// Diff prints a unified diff, coloring added, removed and hunk lines.
func (w *Writer) Diff(text string) {
	for line := range strings.SplitSeq(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = w.style(styleLabel, line)
		case strings.HasPrefix(line, "+"):
			line = w.style(styleDone, line)
		case strings.HasPrefix(line, "-"):
			line = w.style(styleError, line)
		case strings.HasPrefix(line, "@@"):
			line = w.style(styleHunk, line)
		}
		w.Printf("%s\n", line)
	}
}

// style renders text with s in TTY mode, plain otherwise.
func (w *Writer) style(s lipgloss.Style, text string) string {
	if w.isTTY {
		return s.Render(text)
	}
	return text
}
