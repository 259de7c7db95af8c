package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSummary_Normalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meetings/7/summary" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{
			"summary_path": "/tmp/meeting_7_summary.json",
			"normalized": {
				"status": "ready",
				"summary_text": "Quarterly sync wrapped with two decisions.",
				"key_points": ["Budget approved"],
				"decisions": ["Ship in December"],
				"action_items": ["Alice to draft rollout plan"]
			},
			"data": {
				"status": "ready",
				"schedule_suggestions": [
					{"title": "Rollout review", "start_iso": "2025-12-05T14:00:00Z", "confidence": 0.9}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", nil)
	summary, err := c.GetSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}

	if summary.Status != StatusReady {
		t.Errorf("Status = %q", summary.Status)
	}
	if len(summary.KeyPoints) != 1 || summary.KeyPoints[0] != "Budget approved" {
		t.Errorf("KeyPoints = %v", summary.KeyPoints)
	}
	if len(summary.ScheduleSuggestions) != 1 {
		t.Fatalf("ScheduleSuggestions = %v, want suggestion lifted from data", summary.ScheduleSuggestions)
	}
	if summary.ScheduleSuggestions[0].Title != "Rollout review" {
		t.Errorf("suggestion title = %q", summary.ScheduleSuggestions[0].Title)
	}
}

func TestGetSummary_NeverSummarized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary_path": null, "data": null, "normalized": null}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	summary, err := c.GetSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.Status != StatusEmpty {
		t.Errorf("Status = %q, want %q", summary.Status, StatusEmpty)
	}
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	if _, err := c.ListMeetings(context.Background()); err != nil {
		t.Fatalf("ListMeetings: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDoRequest_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Meeting not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.GetSummary(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "Meeting not found") {
		t.Errorf("err = %v, want backend detail included", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want no retry on 4xx", got)
	}
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/qa/ask" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{
			"answer": "The rollout ships in December [1].",
			"contexts": [{"idx": 1, "source": "summary", "score": 0.83, "text": "Ship in December"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	ans, err := c.Ask(context.Background(), 7, "When do we ship?", 0)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(ans.Answer, "December") {
		t.Errorf("Answer = %q", ans.Answer)
	}
	if len(ans.Contexts) != 1 || ans.Contexts[0].Source != "summary" {
		t.Errorf("Contexts = %+v", ans.Contexts)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	c := NewClient("http://localhost:1", "", nil)
	if _, err := c.Ask(context.Background(), 1, "   ", 6); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestWaitForSummary(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"normalized": {"status": "processing"}}`))
			return
		}
		w.Write([]byte(`{"normalized": {"status": "ready", "summary_text": "done"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summary, err := c.WaitForSummary(ctx, 7, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForSummary: %v", err)
	}
	if summary.SummaryText != "done" {
		t.Errorf("SummaryText = %q", summary.SummaryText)
	}
}

func TestWaitForSummary_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"normalized": {"status": "error", "error": "no readable text"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	summary, err := c.WaitForSummary(context.Background(), 7, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected error for failed summarization")
	}
	if summary == nil || summary.Status != StatusError {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSummaryFullText(t *testing.T) {
	s := &Summary{
		SummaryText: "one-liner",
		KeyPoints:   []string{"kp"},
		Decisions:   []string{"dec"},
		ActionItems: []string{"ai"},
	}
	want := "one-liner\nkp\ndec\nai"
	if got := s.FullText(); got != want {
		t.Errorf("FullText = %q, want %q", got, want)
	}
}
