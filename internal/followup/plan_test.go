package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jwerr/AI-Summariser/internal/backend"
	"github.com/jwerr/AI-Summariser/internal/extract"
)

var testNow = time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)

type stubExtractor struct {
	events []extract.Event
	err    error
	called bool
}

func (s *stubExtractor) ExtractEvents(_ context.Context, _ string, _ time.Time) ([]extract.Event, error) {
	s.called = true
	return s.events, s.err
}

func TestBuild_BackendSuggestionsWinOutright(t *testing.T) {
	ex := &stubExtractor{events: []extract.Event{{Title: "from AI"}}}
	p := NewPlanner(ex, nil)

	summary := &backend.Summary{
		Status:      backend.StatusReady,
		SummaryText: "Let's reconvene on 2025-12-01 at 15:00.",
		ScheduleSuggestions: []backend.ScheduleSuggestion{
			{Title: "Design review", StartISO: "2025-12-03T14:00:00Z", EndISO: "2025-12-03T15:30:00Z", RawQuote: "design review Wednesday"},
		},
	}

	plan := p.Build(context.Background(), summary, testNow)
	if plan.Source != SourceBackend {
		t.Fatalf("Source = %q, want %q", plan.Source, SourceBackend)
	}
	if len(plan.Events) != 1 {
		t.Fatalf("Events = %+v", plan.Events)
	}
	if ex.called {
		t.Error("AI extractor ran despite backend suggestions")
	}

	ev := plan.Events[0]
	if ev.Title != "Design review" {
		t.Errorf("Title = %q", ev.Title)
	}
	if ev.End.IsZero() {
		t.Error("End not carried over from suggestion")
	}
	if got := ev.End.Sub(ev.Start); got != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", got)
	}
	if ev.SourceText != "design review Wednesday" {
		t.Errorf("SourceText = %q", ev.SourceText)
	}
}

func TestBuild_BadSuggestionSkipped(t *testing.T) {
	p := NewPlanner(nil, nil)
	summary := &backend.Summary{
		ScheduleSuggestions: []backend.ScheduleSuggestion{
			{Title: "broken", StartISO: "next tuesday-ish"},
			{StartISO: "2025-12-03T14:00:00Z"},
		},
	}

	plan := p.Build(context.Background(), summary, testNow)
	if len(plan.Events) != 1 {
		t.Fatalf("Events = %+v, want only the parseable suggestion", plan.Events)
	}
	if plan.Events[0].Title != extract.DefaultTitle {
		t.Errorf("Title = %q, want default for untitled suggestion", plan.Events[0].Title)
	}
}

func TestBuild_AIBeforeMiner(t *testing.T) {
	ex := &stubExtractor{events: []extract.Event{
		{Title: "Sprint retro", Start: testNow.AddDate(0, 0, 3)},
	}}
	p := NewPlanner(ex, nil)

	summary := &backend.Summary{SummaryText: "Retro on 2025-12-01."}
	plan := p.Build(context.Background(), summary, testNow)

	if plan.Source != SourceAI {
		t.Fatalf("Source = %q, want %q", plan.Source, SourceAI)
	}
	if plan.Events[0].Title != "Sprint retro" {
		t.Errorf("Title = %q", plan.Events[0].Title)
	}
}

func TestBuild_AIFailureFallsBackToMiner(t *testing.T) {
	ex := &stubExtractor{err: errors.New("model unavailable")}
	p := NewPlanner(ex, nil)

	summary := &backend.Summary{SummaryText: "Next sync 2025-12-01 15:00."}
	plan := p.Build(context.Background(), summary, testNow)

	if plan.Source != SourceMiner {
		t.Fatalf("Source = %q, want %q", plan.Source, SourceMiner)
	}
	want := time.Date(2025, time.December, 1, 15, 0, 0, 0, time.UTC)
	if !plan.Events[0].Start.Equal(want) {
		t.Errorf("Start = %v, want %v", plan.Events[0].Start, want)
	}
}

func TestBuild_AIEmptyFallsBackToMiner(t *testing.T) {
	ex := &stubExtractor{}
	p := NewPlanner(ex, nil)

	summary := &backend.Summary{SummaryText: "Next sync 12/1 at 3pm."}
	plan := p.Build(context.Background(), summary, testNow)

	if !ex.called {
		t.Error("extractor never ran")
	}
	if plan.Source != SourceMiner {
		t.Fatalf("Source = %q, want %q", plan.Source, SourceMiner)
	}
}

func TestBuild_MinerScansAllSections(t *testing.T) {
	p := NewPlanner(nil, nil)
	summary := &backend.Summary{
		SummaryText: "Planning wrapped.",
		ActionItems: []string{"Bob to demo on 2025-12-04 at 11:00"},
	}

	plan := p.Build(context.Background(), summary, testNow)
	if plan.Source != SourceMiner {
		t.Fatalf("Source = %q", plan.Source)
	}
	if len(plan.Events) != 1 {
		t.Fatalf("Events = %+v", plan.Events)
	}
	if plan.Events[0].Start.Day() != 4 {
		t.Errorf("Start = %v", plan.Events[0].Start)
	}
}

func TestBuild_AnchorYearAppliedToMiner(t *testing.T) {
	p := NewPlanner(nil, nil)
	summary := &backend.Summary{
		SummaryText: "Date: November 10, 2025\nKickoff on December 2 at 9am.",
	}

	plan := p.Build(context.Background(), summary, testNow)
	if plan.Source != SourceMiner {
		t.Fatalf("Source = %q", plan.Source)
	}
	if got := plan.Events[0].Start.Year(); got != 2025 {
		t.Errorf("Year = %d, want anchor year 2025", got)
	}
}

func TestBuild_EmptySummary(t *testing.T) {
	p := NewPlanner(nil, nil)
	plan := p.Build(context.Background(), &backend.Summary{Status: backend.StatusEmpty}, testNow)
	if len(plan.Events) != 0 || plan.Source != "" {
		t.Errorf("plan = %+v, want empty", plan)
	}
}
