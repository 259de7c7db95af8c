// Package notify sends desktop notifications for long-running
// operations: a summary finishing while the watcher runs, or a
// follow-up landing on the calendar.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier wraps desktop notifications behind the config toggle.
// Delivery failures are logged, never surfaced: a missing notification
// daemon must not break a CLI command.
type Notifier struct {
	enabled bool
	logger  *slog.Logger
}

func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	beeep.AppName = "summariser"
	return &Notifier{enabled: enabled, logger: logger}
}

func (n *Notifier) SummaryReady(meetingTitle string) {
	n.send("Summary ready", meetingTitle)
}

func (n *Notifier) SummaryFailed(meetingTitle string) {
	n.send("Summarization failed", meetingTitle)
}

func (n *Notifier) FollowupCreated(eventTitle string) {
	n.send("Follow-up scheduled", eventTitle)
}

func (n *Notifier) send(title, message string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Debug("notification failed", "title", title, "error", err)
	}
}
