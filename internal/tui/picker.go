package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

type pickerModel struct {
	drafts   []extract.Draft
	selected map[int]bool
	cursor   int
}

func newPickerModel(drafts []extract.Draft) pickerModel {
	selected := make(map[int]bool, len(drafts))
	// Everything starts selected; the common case is accepting the
	// whole plan.
	for i := range drafts {
		selected[i] = true
	}
	return pickerModel{drafts: drafts, selected: selected}
}

func (m pickerModel) Update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case " ":
			if m.selected[m.cursor] {
				delete(m.selected, m.cursor)
			} else {
				m.selected[m.cursor] = true
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.drafts)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Suggested Follow-ups"))
	b.WriteString("\n")

	for i, d := range m.drafts {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}

		timing := fmt.Sprintf("%s %s–%s", d.Date, d.StartTime, d.EndTime)
		line := fmt.Sprintf("%s%s %-30s  %s", cursor, check, d.Title, dimStyle.Render(timing))
		if i == m.cursor {
			line = highlightStyle.Render(fmt.Sprintf("%s%s ", cursor, check)) + d.Title + "  " + dimStyle.Render(timing)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if d.Description != "" {
			desc := d.Description
			if len(desc) > 60 {
				desc = desc[:60] + "..."
			}
			b.WriteString(dimStyle.Render("       " + desc))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"\n%d selected — Space: toggle — e: edit — Enter: schedule — Ctrl+C: cancel", len(m.selected))))

	return boxStyle.Render(b.String())
}

func (m pickerModel) selectedIndices() []int {
	var indices []int
	for i := range m.drafts {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}
	return indices
}
