package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

type editField int

const (
	editTitle editField = iota
	editDate
	editStart
	editEnd
	editDescription

	editFieldCount
)

var editFieldNames = []string{"Title", "Date", "Start", "End", "Description"}

type editModel struct {
	draft     extract.Draft
	field     editField
	textInput textinput.Model
	editing   bool
	fieldErr  string
}

func newEditModel(draft extract.Draft) editModel {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50

	return editModel{
		draft:     draft,
		textInput: ti,
	}
}

func (m editModel) Update(msg tea.Msg) (editModel, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	return m.updateNavigating(msg)
}

func (m editModel) updateNavigating(msg tea.Msg) (editModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "down", "j":
			m.field = (m.field + 1) % editFieldCount
		case "shift+tab", "up", "k":
			m.field = (m.field + editFieldCount - 1) % editFieldCount
		case "enter":
			m.editing = true
			m.fieldErr = ""
			m.textInput.SetValue(m.fieldValue())
			m.textInput.Placeholder = m.fieldPlaceholder()
			return m, m.textInput.Focus()
		}
	}
	return m, nil
}

func (m editModel) updateEditing(msg tea.Msg) (editModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if err := m.applyEdit(); err != nil {
				m.fieldErr = err.Error()
				return m, nil
			}
			m.editing = false
			m.textInput.Blur()
			return m, nil
		case "esc":
			m.editing = false
			m.fieldErr = ""
			m.textInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m editModel) fieldValue() string {
	switch m.field {
	case editTitle:
		return m.draft.Title
	case editDate:
		return m.draft.Date
	case editStart:
		return m.draft.StartTime
	case editEnd:
		return m.draft.EndTime
	case editDescription:
		return m.draft.Description
	}
	return ""
}

func (m editModel) fieldPlaceholder() string {
	switch m.field {
	case editDate:
		return "YYYY-MM-DD"
	case editStart, editEnd:
		return "HH:MM"
	}
	return editFieldNames[m.field]
}

// applyEdit validates and stores the edited value. Date and time fields
// must parse; invalid input keeps the editor open with an error.
func (m *editModel) applyEdit() error {
	v := strings.TrimSpace(m.textInput.Value())

	switch m.field {
	case editTitle:
		if v == "" {
			return fmt.Errorf("title cannot be empty")
		}
		m.draft.Title = v
	case editDate:
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD")
		}
		m.draft.Date = v
	case editStart:
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("start must be HH:MM")
		}
		m.draft.StartTime = v
	case editEnd:
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("end must be HH:MM")
		}
		m.draft.EndTime = v
	case editDescription:
		m.draft.Description = v
	}
	return nil
}

func (m editModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Edit Follow-up"))
	sb.WriteString("\n")

	values := []string{m.draft.Title, m.draft.Date, m.draft.StartTime, m.draft.EndTime, m.draft.Description}
	for i, name := range editFieldNames {
		prefix := "  "
		line := fmt.Sprintf("%s%-12s %s", prefix, name+":", values[i])
		if editField(i) == m.field {
			line = highlightStyle.Render("> ") + selectedStyle.Render(fmt.Sprintf("%-12s", name+":")) + " " + values[i]
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.editing {
		sb.WriteString("\n")
		sb.WriteString(m.textInput.View())
		sb.WriteString("\n")
		if m.fieldErr != "" {
			sb.WriteString(errorStyle.Render(m.fieldErr))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: edit field • Tab/j/k: move • Esc: back to list"))

	return boxStyle.Render(sb.String())
}
