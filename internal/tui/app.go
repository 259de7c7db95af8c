// Package tui holds the interactive review flows: picking and editing
// follow-up drafts before they hit the calendar, and a question/answer
// loop over a meeting's transcript.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

type viewState int

const (
	pickView viewState = iota
	editView
	submitView
	confirmationView
)

// Pusher creates calendar events. Satisfied by calendar.Client; tests
// substitute a stub.
type Pusher interface {
	CreateEvent(ctx context.Context, payload extract.Resolved) error
}

// CreatedEvent pairs the draft the user approved with the payload that
// reached the calendar.
type CreatedEvent struct {
	Draft   extract.Draft
	Payload extract.Resolved
}

// FailedEvent records a draft whose push failed and why.
type FailedEvent struct {
	Draft extract.Draft
	Err   string
}

type Result struct {
	Canceled bool
	Created  []CreatedEvent
	Failed   []FailedEvent
}

type submitMsg struct {
	created []CreatedEvent
	failed  []FailedEvent
}

// App is the follow-up review flow: multi-select candidates, optionally
// edit each, then push the approved ones.
type App struct {
	state   viewState
	picker  pickerModel
	edit    editModel
	spinner spinner.Model
	result  *Result

	pusher Pusher
	loc    *time.Location
}

func NewApp(drafts []extract.Draft, pusher Pusher, loc *time.Location) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	if loc == nil {
		loc = time.Local
	}

	return &App{
		state:   pickView,
		picker:  newPickerModel(drafts),
		spinner: s,
		pusher:  pusher,
		loc:     loc,
	}
}

func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.result = &Result{Canceled: true}
			return a, tea.Quit
		}
	case submitMsg:
		a.result = &Result{Created: msg.created, Failed: msg.failed}
		a.state = confirmationView
		return a, nil
	}

	switch a.state {
	case pickView:
		return a.updatePick(msg)
	case editView:
		return a.updateEdit(msg)
	case submitView:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case confirmationView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case pickView:
		return a.picker.View()
	case editView:
		return a.edit.View()
	case submitView:
		return a.spinner.View() + " Scheduling..."
	case confirmationView:
		return a.confirmationView()
	}
	return ""
}

func (a *App) GetResult() *Result {
	return a.result
}

func (a *App) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "e":
			if len(a.picker.drafts) > 0 {
				a.state = editView
				a.edit = newEditModel(a.picker.drafts[a.picker.cursor])
			}
			return a, nil
		case "enter":
			indices := a.picker.selectedIndices()
			if len(indices) == 0 {
				return a, nil
			}
			a.state = submitView
			return a, tea.Batch(a.spinner.Tick, a.submit(indices))
		}
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	return a, cmd
}

func (a *App) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "esc" && !a.edit.editing {
			a.picker.drafts[a.picker.cursor] = a.edit.draft
			a.state = pickView
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.edit, cmd = a.edit.Update(msg)
	return a, cmd
}

func (a *App) confirmationView() string {
	var sb strings.Builder

	if len(a.result.Created) > 0 {
		sb.WriteString(successStyle.Render(fmt.Sprintf("%d follow-up(s) scheduled", len(a.result.Created))))
		sb.WriteString("\n")
		for _, c := range a.result.Created {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", c.Draft.Title, dimStyle.Render(c.Payload.StartISO)))
		}
	}
	if len(a.result.Failed) > 0 {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("%d failed", len(a.result.Failed))))
		sb.WriteString("\n")
		for _, f := range a.result.Failed {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", f.Draft.Title, dimStyle.Render(f.Err)))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Press any key to exit"))
	return sb.String()
}

// submit resolves and pushes the approved drafts one by one. A failed
// push never aborts the rest.
func (a *App) submit(indices []int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var msg submitMsg
		for _, i := range indices {
			draft := a.picker.drafts[i]

			payload, err := extract.Resolve(draft, a.loc)
			if err != nil {
				msg.failed = append(msg.failed, FailedEvent{Draft: draft, Err: err.Error()})
				continue
			}

			if err := a.pusher.CreateEvent(ctx, payload); err != nil {
				msg.failed = append(msg.failed, FailedEvent{Draft: draft, Err: err.Error()})
				continue
			}

			msg.created = append(msg.created, CreatedEvent{Draft: draft, Payload: payload})
		}
		return msg
	}
}
