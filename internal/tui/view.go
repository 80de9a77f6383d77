package tui

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/asbuilt/internal/debug"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
	"github.com/alexander-akhmetov/asbuilt/internal/review"
)

const feedLines = 3

func (m Model) sidebarWidth() int {
	return max(36, min(50, m.width*35/100))
}

func (m Model) detailSize() (int, int) {
	mainWidth := m.width - m.sidebarWidth() - 4
	contentHeight := m.height - feedLines - 3
	return max(mainWidth-4, 20), max(contentHeight-2, 5)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	sidebarWidth := m.sidebarWidth()
	mainWidth := m.width - sidebarWidth - 4
	contentHeight := m.height - feedLines - 3

	sidebar := stepsBoxStyle.Width(sidebarWidth).Height(contentHeight).Render(m.renderSidebar(sidebarWidth - 4))
	detail := detailBoxStyle.Width(mainWidth).Height(contentHeight).Render(m.detail.View())

	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail)
	return main + "\n" + m.renderFeed() + "\n" + m.renderHelp()
}

func (m Model) renderSidebar(width int) string {
	var b strings.Builder

	cfg := m.sess.Config()
	title := "AS-BUILT"
	if cfg.Name != "" {
		title += " · " + cfg.Name
	}
	b.WriteString(titleStyle.Render(truncate(title, width)))
	b.WriteString("\n")

	if m.mode == modeWorkType {
		b.WriteString(sectionHeader("Work type", width))
		b.WriteString("\n")
		for i, wt := range cfg.WorkTypes {
			label := truncate(wt.Label, width-2)
			line := "  " + label
			if i == m.cursor {
				line = activeStyle.Render("> " + label)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		return b.String()
	}

	if wt := m.sess.WorkType(); wt != nil {
		b.WriteString(labelStyle.Render("Work type: ") + valueStyle.Render(wt.Label))
		b.WriteString("\n\n")
	}

	b.WriteString(sectionHeader("Steps", width))
	b.WriteString("\n")
	active := m.sess.ActiveIndex()
	for i, st := range m.sess.Steps() {
		marker := labelStyle.Render("○")
		if m.sess.IsComplete(st.Key) {
			marker = doneStyle.Render("✓")
		}
		label := st.Label
		if i == active {
			label = activeStyle.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(marker + " " + label + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderValidation(width))
	return b.String()
}

func (m Model) renderValidation(width int) string {
	var b strings.Builder
	res := m.sess.Validation()

	b.WriteString(sectionHeader("Validation", width))
	b.WriteString("\n")
	if res.Valid {
		b.WriteString(doneStyle.Render("✓ Ready to submit"))
		b.WriteString("\n")
	}
	for _, e := range res.Errors {
		b.WriteString(errorStyle.Render("✗ ") + wrapText(e, width-2, "  ", 2))
		b.WriteString("\n")
	}
	if m.opts.ShowWarnings {
		for _, w := range res.Warnings {
			b.WriteString(warnStyle.Render("! ") + wrapText(w, width-2, "  ", 2))
			b.WriteString("\n")
		}
	}
	if sub := m.sess.Submitted(); sub != nil {
		b.WriteString(doneStyle.Render("Submitted " + sub.SubmittedAt))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFeed() string {
	var lines []string
	for _, e := range m.feed.Recent(feedLines) {
		lines = append(lines, eventStyle.Render("▶ ")+labelStyle.Render(formatEvent(e)))
	}
	for len(lines) < feedLines {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

func formatEvent(e event.Event) string {
	switch e.Kind {
	case event.KindStepCompleted:
		return "completed " + e.Step
	case event.KindNavigated:
		return "active step " + e.Step
	default:
		return e.Kind.String() + ": " + e.Text
	}
}

func (m Model) renderHelp() string {
	var parts []string
	if m.submitting {
		parts = append(parts, m.spinner.View()+" submitting")
	} else if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, doneStyle.Render(m.status))
		}
	}

	switch m.mode {
	case modeWorkType:
		parts = append(parts, "↑/↓: choose", "enter: select", "esc: back")
	case modeReview:
		parts = append(parts, "s: submit", "pgup/pgdn: scroll", "esc: back")
	default:
		parts = append(parts, "↑/↓: step", "enter: complete", "b: built as designed", "w: work type", "r: review", "s: submit")
	}
	parts = append(parts, "q: quit")

	return helpStyle.Render(strings.Join(parts, " • "))
}

// refreshDetail re-renders the detail pane for the current mode.
func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	var md string
	switch m.mode {
	case modeReview:
		text, err := review.Render(m.opts.ReviewTemplate, review.Build(m.sess, m.opts.ShowWarnings))
		if err != nil {
			md = "Review unavailable: " + err.Error()
		} else {
			md = text
		}
	case modeWorkType:
		md = m.workTypeMarkdown()
	default:
		md = m.stepMarkdown()
	}
	m.detail.SetContent(m.render(md))
	m.detail.GotoTop()
}

func (m Model) render(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		debug.Logf("tui: render markdown: %v", err)
		return md
	}
	return out
}

func (m Model) workTypeMarkdown() string {
	types := m.sess.Config().WorkTypes
	if len(types) == 0 {
		return "No work types configured."
	}
	wt := types[min(m.cursor, len(types)-1)]
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", wt.Label)
	if wt.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", wt.Description)
	}
	b.WriteString("## Required documents\n\n")
	for _, d := range wt.RequiredDocs {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	if current := m.sess.WorkType(); current != nil && current.Code != wt.Code && len(m.sess.CompletedKeys()) > 1 {
		b.WriteString("\n**Changing the work type clears all completed steps.**\n")
	}
	return b.String()
}

func (m Model) stepMarkdown() string {
	step := m.sess.ActiveStep()
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", step.Label)
	if step.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", step.Description)
	}

	if data := m.sess.Data(step.Key); data != nil {
		b.WriteString("## Captured\n\n")
		writeValues(&b, data)
	} else if prefill := m.sess.Prefill(step.Key); len(prefill) > 0 {
		b.WriteString("## Prefilled from job\n\n")
		writeValues(&b, prefill)
	}
	return b.String()
}

func writeValues(b *strings.Builder, values map[string]any) {
	if len(values) == 0 {
		b.WriteString("_no values_\n")
		return
	}
	keys := slices.Sorted(maps.Keys(values))
	for _, k := range keys {
		v, err := json.Marshal(values[k])
		if err != nil {
			v = []byte(fmt.Sprint(values[k]))
		}
		fmt.Fprintf(b, "- **%s**: `%s`\n", k, v)
	}
}

func sectionHeader(title string, width int) string {
	padding := max(1, (width-len(title)-2)/2)
	line := strings.Repeat("─", padding)
	return labelStyle.Render(line+" ") + valueStyle.Render(title) + labelStyle.Render(" "+line)
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// wrapText wraps text to width; continuation lines get indent. At most
// maxLines lines are kept when maxLines > 0.
func wrapText(text string, width int, indent string, maxLines int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		limit := width
		if len(lines) > 0 {
			limit = width - len(indent)
		}
		if len(current)+1+len(word) <= limit {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = indent + word
	}
	lines = append(lines, current)

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if len(last) > 3 {
			lines[maxLines-1] = last[:len(last)-3] + "..."
		}
	}
	return strings.Join(lines, "\n")
}
