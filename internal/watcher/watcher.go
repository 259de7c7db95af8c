// Package watcher runs the background poll loop: it tracks meetings
// whose summaries are still processing and notifies when they finish.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jwerr/AI-Summariser/internal/backend"
	"github.com/jwerr/AI-Summariser/internal/config"
	"github.com/jwerr/AI-Summariser/internal/notify"
	"github.com/jwerr/AI-Summariser/internal/store"
)

type Watcher struct {
	cfg      *config.Config
	client   *backend.Client
	db       *store.DB
	notifier *notify.Notifier
	logger   *slog.Logger
}

func New(cfg *config.Config, client *backend.Client, db *store.DB, notifier *notify.Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, client: client, db: db, notifier: notifier, logger: logger}
}

// Run polls processing meetings until ctx is cancelled. The PID file
// lets `summariser stop` find the running watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	interval := time.Duration(w.cfg.Watch.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	fmt.Printf("Watcher started (interval: %s)\n", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			fmt.Println("\nWatcher stopped.")
			return nil
		case <-ticker.C:
		}
	}
}

// sweep checks every processing meeting once, caching summaries that
// reached a terminal state.
func (w *Watcher) sweep(ctx context.Context) {
	meetings, err := w.db.MeetingsWithStatus(backend.StatusProcessing)
	if err != nil {
		w.logger.Error("listing processing meetings", "error", err)
		return
	}

	for _, m := range meetings {
		summary, err := w.client.GetSummary(ctx, m.BackendID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Warn("summary check failed", "meeting", m.BackendID, "error", err)
			continue
		}

		switch summary.Status {
		case backend.StatusReady:
			if err := w.db.CacheSummary(m.BackendID, summary); err != nil {
				w.logger.Error("caching summary", "meeting", m.BackendID, "error", err)
				continue
			}
			w.logger.Info("summary ready", "meeting", m.BackendID, "title", m.Title)
			w.notifier.SummaryReady(m.Title)
		case backend.StatusError:
			if err := w.db.CacheSummary(m.BackendID, summary); err != nil {
				w.logger.Error("caching summary", "meeting", m.BackendID, "error", err)
				continue
			}
			w.logger.Warn("summarization failed", "meeting", m.BackendID, "error", summary.Error)
			w.notifier.SummaryFailed(m.Title)
		}
	}
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "summariser.pid"), nil
}

func (w *Watcher) writePID() error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (w *Watcher) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

// ReadPID returns the PID of a running watcher, or an error when none
// is recorded.
func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running watcher found")
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
