package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwerr/AI-Summariser/internal/backend"
)

type askState int

const (
	askInputView askState = iota
	askLoadingView
	askAnswerView
)

// Asker answers questions about one meeting. Satisfied by
// backend.Client.
type Asker interface {
	Ask(ctx context.Context, meetingID int, question string, topK int) (*backend.Answer, error)
}

type answerMsg struct {
	answer *backend.Answer
	err    error
}

// AskApp is the interactive question loop for one meeting.
type AskApp struct {
	state    askState
	textarea textarea.Model
	spinner  spinner.Model
	answer   *backend.Answer
	errMsg   string

	asker        Asker
	meetingID    int
	meetingTitle string
}

func NewAskApp(asker Asker, meetingID int, meetingTitle string) *AskApp {
	ta := textarea.New()
	ta.Placeholder = "Ask about this meeting..."
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(60)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &AskApp{
		textarea:     ta,
		spinner:      s,
		asker:        asker,
		meetingID:    meetingID,
		meetingTitle: meetingTitle,
	}
}

func (a *AskApp) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick)
}

func (a *AskApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case answerMsg:
		if msg.err != nil {
			a.errMsg = msg.err.Error()
		} else {
			a.answer = msg.answer
			a.errMsg = ""
		}
		a.state = askAnswerView
		return a, nil
	}

	switch a.state {
	case askInputView:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
			question := strings.TrimSpace(a.textarea.Value())
			if question != "" {
				a.state = askLoadingView
				return a, tea.Batch(a.spinner.Tick, a.ask(question))
			}
		}
		var cmd tea.Cmd
		a.textarea, cmd = a.textarea.Update(msg)
		return a, cmd
	case askLoadingView:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case askAnswerView:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "n":
				a.textarea.Reset()
				a.state = askInputView
				return a, a.textarea.Focus()
			case "q", "esc":
				return a, tea.Quit
			}
		}
	}

	return a, nil
}

func (a *AskApp) View() string {
	header := titleStyle.Render(fmt.Sprintf("Q&A — %s", a.meetingTitle))

	switch a.state {
	case askInputView:
		help := helpStyle.Render("Enter: ask • Ctrl+C: quit")
		return header + "\n" + a.textarea.View() + "\n" + help
	case askLoadingView:
		return header + "\n" + a.spinner.View() + " Thinking..."
	case askAnswerView:
		return header + "\n" + a.answerView()
	}
	return ""
}

func (a *AskApp) answerView() string {
	var sb strings.Builder

	if a.errMsg != "" {
		sb.WriteString(errorStyle.Render("Error: ") + a.errMsg + "\n")
	} else {
		sb.WriteString(a.answer.Answer)
		sb.WriteString("\n")

		if len(a.answer.Contexts) > 0 {
			sb.WriteString("\n")
			sb.WriteString(dimStyle.Render("Sources:"))
			sb.WriteString("\n")
			for _, c := range a.answer.Contexts {
				snippet := c.Text
				if len(snippet) > 70 {
					snippet = snippet[:70] + "..."
				}
				sb.WriteString(dimStyle.Render(fmt.Sprintf("  [%d] %s (%.2f): %s", c.Index, c.Source, c.Score, snippet)))
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString(helpStyle.Render("\n[n]ew question • [q]uit"))
	return boxStyle.Render(sb.String())
}

func (a *AskApp) ask(question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		answer, err := a.asker.Ask(ctx, a.meetingID, question, 0)
		return answerMsg{answer: answer, err: err}
	}
}
