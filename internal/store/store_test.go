package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jwerr/AI-Summariser/internal/backend"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertMeetingPreservesStatus(t *testing.T) {
	db := testDB(t)

	m := backend.Meeting{ID: 7, Title: "Q4 planning", Platform: "zoom", CreatedAt: time.Now()}
	if err := db.UpsertMeeting(m); err != nil {
		t.Fatalf("UpsertMeeting: %v", err)
	}
	if err := db.SetMeetingStatus(7, backend.StatusProcessing); err != nil {
		t.Fatalf("SetMeetingStatus: %v", err)
	}

	// A list refresh upserts the same meeting again.
	m.Title = "Q4 planning (renamed)"
	if err := db.UpsertMeeting(m); err != nil {
		t.Fatalf("second UpsertMeeting: %v", err)
	}

	meetings, err := db.ListMeetings()
	if err != nil {
		t.Fatalf("ListMeetings: %v", err)
	}
	if len(meetings) != 1 {
		t.Fatalf("got %d meetings, want 1", len(meetings))
	}
	if meetings[0].Title != "Q4 planning (renamed)" {
		t.Errorf("Title = %q", meetings[0].Title)
	}
	if meetings[0].Status != backend.StatusProcessing {
		t.Errorf("Status = %q, want status preserved across upsert", meetings[0].Status)
	}
}

func TestCacheSummaryRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertMeeting(backend.Meeting{ID: 3, Title: "Sync", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMeeting: %v", err)
	}

	summary := &backend.Summary{
		Status:      backend.StatusReady,
		SummaryText: "wrapped up",
		KeyPoints:   []string{"a", "b"},
	}
	if err := db.CacheSummary(3, summary); err != nil {
		t.Fatalf("CacheSummary: %v", err)
	}

	got, err := db.CachedSummary(3)
	if err != nil {
		t.Fatalf("CachedSummary: %v", err)
	}
	if got == nil || got.SummaryText != "wrapped up" || len(got.KeyPoints) != 2 {
		t.Errorf("cached summary = %+v", got)
	}

	meetings, _ := db.MeetingsWithStatus(backend.StatusReady)
	if len(meetings) != 1 {
		t.Errorf("MeetingsWithStatus(ready) = %+v", meetings)
	}
}

func TestCachedSummary_Missing(t *testing.T) {
	db := testDB(t)

	got, err := db.CachedSummary(99)
	if err != nil {
		t.Fatalf("CachedSummary: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for unknown meeting", got)
	}
}

func TestFollowupLifecycle(t *testing.T) {
	db := testDB(t)

	start := time.Date(2025, time.December, 3, 14, 0, 0, 0, time.UTC)
	id, err := db.InsertFollowup(&Followup{
		MeetingID: 7,
		Title:     "Design review",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Source:    "backend",
		Status:    FollowupFailed,
	})
	if err != nil {
		t.Fatalf("InsertFollowup: %v", err)
	}

	failed, err := db.FailedFollowups()
	if err != nil {
		t.Fatalf("FailedFollowups: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != int(id) {
		t.Fatalf("FailedFollowups = %+v", failed)
	}
	if !failed[0].StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", failed[0].StartTime, start)
	}

	if err := db.UpdateFollowupStatus(int(id), FollowupCreated); err != nil {
		t.Fatalf("UpdateFollowupStatus: %v", err)
	}
	failed, _ = db.FailedFollowups()
	if len(failed) != 0 {
		t.Errorf("FailedFollowups after update = %+v", failed)
	}

	byMeeting, err := db.MeetingFollowups(7)
	if err != nil {
		t.Fatalf("MeetingFollowups: %v", err)
	}
	if len(byMeeting) != 1 || byMeeting[0].Status != FollowupCreated {
		t.Errorf("MeetingFollowups = %+v", byMeeting)
	}
}

func TestDeleteMeetingCascades(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertMeeting(backend.Meeting{ID: 5, Title: "Standup", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMeeting: %v", err)
	}
	if _, err := db.InsertFollowup(&Followup{
		MeetingID: 5, Title: "f", StartTime: time.Now(), EndTime: time.Now(), Source: "miner", Status: FollowupCreated,
	}); err != nil {
		t.Fatalf("InsertFollowup: %v", err)
	}

	if err := db.DeleteMeeting(5); err != nil {
		t.Fatalf("DeleteMeeting: %v", err)
	}

	meetings, _ := db.ListMeetings()
	if len(meetings) != 0 {
		t.Errorf("meetings = %+v", meetings)
	}
	followups, _ := db.MeetingFollowups(5)
	if len(followups) != 0 {
		t.Errorf("followups = %+v", followups)
	}
}

func TestState(t *testing.T) {
	db := testDB(t)

	if v, err := db.GetState("watcher_pid"); err != nil || v != "" {
		t.Fatalf("GetState on empty = %q, %v", v, err)
	}
	if err := db.SetState("watcher_pid", "1234"); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := db.SetState("watcher_pid", "5678"); err != nil {
		t.Fatalf("SetState overwrite: %v", err)
	}
	if v, _ := db.GetState("watcher_pid"); v != "5678" {
		t.Errorf("GetState = %q", v)
	}
	if err := db.DeleteState("watcher_pid"); err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	if v, _ := db.GetState("watcher_pid"); v != "" {
		t.Errorf("GetState after delete = %q", v)
	}
}
