package extract

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_Basic(t *testing.T) {
	got, err := Resolve(Draft{
		Title:     "Follow-up meeting",
		Date:      "2025-12-01",
		StartTime: "10:00",
		EndTime:   "11:00",
	}, time.UTC)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.StartISO != "2025-12-01T10:00:00Z" {
		t.Errorf("StartISO = %q", got.StartISO)
	}
	if got.EndISO != "2025-12-01T11:00:00Z" {
		t.Errorf("EndISO = %q", got.EndISO)
	}
}

func TestResolve_OvernightRollover(t *testing.T) {
	got, err := Resolve(Draft{
		Date:      "2025-12-01",
		StartTime: "22:00",
		EndTime:   "01:00",
	}, time.UTC)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.StartISO != "2025-12-01T22:00:00Z" {
		t.Errorf("StartISO = %q", got.StartISO)
	}
	if got.EndISO != "2025-12-02T01:00:00Z" {
		t.Errorf("EndISO = %q, want rolled to next day", got.EndISO)
	}
}

func TestResolve_EqualTimesRollOver(t *testing.T) {
	got, err := Resolve(Draft{
		Date:      "2025-12-01",
		StartTime: "10:00",
		EndTime:   "10:00",
	}, time.UTC)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.EndISO != "2025-12-02T10:00:00Z" {
		t.Errorf("EndISO = %q, want next-day rollover for zero duration", got.EndISO)
	}
}

func TestResolve_EmitsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := Resolve(Draft{
		Date:      "2025-12-01",
		StartTime: "10:00",
		EndTime:   "11:00",
	}, loc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.StartISO != "2025-12-01T08:00:00Z" {
		t.Errorf("StartISO = %q, want UTC conversion", got.StartISO)
	}
}

func TestResolve_MissingStart(t *testing.T) {
	_, err := Resolve(Draft{Date: "", StartTime: "10:00", EndTime: "11:00"}, time.UTC)
	if !errors.Is(err, ErrInvalidStart) {
		t.Errorf("err = %v, want ErrInvalidStart", err)
	}

	_, err = Resolve(Draft{Date: "2025-12-01", StartTime: "25:99", EndTime: "11:00"}, time.UTC)
	if !errors.Is(err, ErrInvalidStart) {
		t.Errorf("err = %v, want ErrInvalidStart", err)
	}
}

func TestResolve_MissingEnd(t *testing.T) {
	_, err := Resolve(Draft{Date: "2025-12-01", StartTime: "10:00", EndTime: ""}, time.UTC)
	if !errors.Is(err, ErrInvalidEnd) {
		t.Errorf("err = %v, want ErrInvalidEnd", err)
	}
}

func TestNewDraft_DefaultDuration(t *testing.T) {
	ev := Event{
		Title: "Follow-up meeting",
		Start: time.Date(2025, time.December, 1, 10, 0, 0, 0, time.UTC),
	}
	d := NewDraft(ev)
	if d.Date != "2025-12-01" || d.StartTime != "10:00" {
		t.Errorf("draft start = %s %s", d.Date, d.StartTime)
	}
	if d.EndTime != "11:00" {
		t.Errorf("EndTime = %q, want 60-minute default", d.EndTime)
	}
}

func TestNewDraft_ExplicitEnd(t *testing.T) {
	ev := Event{
		Start: time.Date(2025, time.December, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.December, 1, 10, 30, 0, 0, time.UTC),
	}
	if d := NewDraft(ev); d.EndTime != "10:30" {
		t.Errorf("EndTime = %q, want explicit end preserved", d.EndTime)
	}
}

func TestNewDraft_LateStartRollsThroughResolve(t *testing.T) {
	// A 23:30 start defaults to a 00:30 end; the same-date combination
	// is then repaired by the rollover rule.
	ev := Event{Start: time.Date(2025, time.December, 1, 23, 30, 0, 0, time.UTC)}
	got, err := Resolve(NewDraft(ev), time.UTC)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.StartISO != "2025-12-01T23:30:00Z" || got.EndISO != "2025-12-02T00:30:00Z" {
		t.Errorf("got %q → %q", got.StartISO, got.EndISO)
	}
}
