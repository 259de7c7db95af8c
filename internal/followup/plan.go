// Package followup turns a meeting summary into candidate follow-up
// events. Three sources feed it, in strict preference order: the
// backend's own schedule suggestions, an optional AI extractor, and the
// local heuristic miner as last resort. Sources never mix within one
// plan.
package followup

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwerr/AI-Summariser/internal/backend"
	"github.com/jwerr/AI-Summariser/internal/extract"
)

// Source identifies where a plan's events came from.
type Source string

const (
	SourceBackend Source = "backend"
	SourceAI      Source = "ai"
	SourceMiner   Source = "miner"
)

// Extractor is the optional AI extraction step. Implementations return
// events in the summary's own wording; an empty slice (with nil error)
// means the extractor found nothing and the miner should run instead.
type Extractor interface {
	ExtractEvents(ctx context.Context, summaryText string, now time.Time) ([]extract.Event, error)
}

// Plan is the set of candidate events for one meeting along with their
// provenance.
type Plan struct {
	Events []extract.Event
	Source Source
}

// Planner builds follow-up plans from summaries.
type Planner struct {
	extractor Extractor // nil disables the AI step
	logger    *slog.Logger
}

func NewPlanner(extractor Extractor, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{extractor: extractor, logger: logger}
}

// Build returns the follow-up plan for a summary. Backend suggestions,
// when present, are used verbatim: the local layers never second-guess
// the server. An AI extractor failure falls through to the miner rather
// than failing the plan.
func (p *Planner) Build(ctx context.Context, summary *backend.Summary, now time.Time) Plan {
	if events := suggestionEvents(summary.ScheduleSuggestions, p.logger); len(events) > 0 {
		return Plan{Events: events, Source: SourceBackend}
	}

	text := summary.FullText()
	if text == "" {
		return Plan{}
	}

	if p.extractor != nil {
		events, err := p.extractor.ExtractEvents(ctx, text, now)
		if err != nil {
			p.logger.Warn("AI extraction failed, falling back to heuristics", "error", err)
		} else if len(events) > 0 {
			return Plan{Events: events, Source: SourceAI}
		}
	}

	opts := extract.Options{}
	if year, ok := extract.AnchorYear(text); ok {
		opts.AnchorYear = year
		opts.Cap = extract.AnchoredCap
	}
	if events := extract.Mine(text, now, opts); len(events) > 0 {
		return Plan{Events: events, Source: SourceMiner}
	}
	return Plan{}
}

// suggestionEvents converts the backend's suggestions to events,
// dropping any with an unparseable start. Times come back in local time
// so drafts render the way the user's clock reads.
func suggestionEvents(suggestions []backend.ScheduleSuggestion, logger *slog.Logger) []extract.Event {
	var events []extract.Event
	for _, s := range suggestions {
		start, err := time.Parse(time.RFC3339, s.StartISO)
		if err != nil {
			logger.Warn("skipping suggestion with bad start", "title", s.Title, "start", s.StartISO)
			continue
		}

		ev := extract.Event{
			Title:       s.Title,
			Start:       start.Local(),
			Description: s.Description,
			SourceText:  s.RawQuote,
		}
		if ev.Title == "" {
			ev.Title = extract.DefaultTitle
		}
		if s.EndISO != "" {
			if end, err := time.Parse(time.RFC3339, s.EndISO); err == nil {
				ev.End = end.Local()
			}
		}
		events = append(events, ev)
	}
	return events
}
