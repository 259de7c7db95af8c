package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

func TestListEvents_MixedDateAndDateTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/events" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"items": [
				{"summary": "Standup", "start": {"dateTime": "2025-12-01T09:00:00Z"}, "end": {"dateTime": "2025-12-01T09:15:00Z"}},
				{"summary": "Offsite", "start": {"date": "2025-12-04"}, "end": {"date": "2025-12-05"}},
				{"summary": "Broken", "start": {}, "end": {}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	events, err := c.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (malformed one skipped)", len(events))
	}
	if events[0].AllDay {
		t.Error("timed event flagged all-day")
	}
	if !events[1].AllDay {
		t.Error("date-only event not flagged all-day")
	}
	want := time.Date(2025, time.December, 1, 9, 0, 0, 0, time.UTC)
	if !events[0].Start.Equal(want) {
		t.Errorf("Start = %v, want %v", events[0].Start, want)
	}
}

func TestNotConnectedStatuses(t *testing.T) {
	for _, status := range []int{400, 401, 403, 409} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(srv.URL, "", nil)
		_, err := c.ListEvents(context.Background())
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("status %d: err = %v, want ErrNotConnected", status, err)
		}
		srv.Close()
	}
}

func TestCreateEvent(t *testing.T) {
	var got extract.Resolved
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/create" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "evt_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", nil)
	payload := extract.Resolved{
		Title:    "Follow-up meeting",
		StartISO: "2025-12-01T10:00:00Z",
		EndISO:   "2025-12-01T11:00:00Z",
	}
	if err := c.CreateEvent(context.Background(), payload); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if got.StartISO != payload.StartISO || got.Title != payload.Title {
		t.Errorf("relay received %+v", got)
	}
}

func TestConnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/google/status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"connected": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	ok, err := c.Connected(context.Background())
	if err != nil {
		t.Fatalf("Connected: %v", err)
	}
	if !ok {
		t.Error("Connected = false, want true")
	}
}

func TestConnected_NotLinkedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	ok, err := c.Connected(context.Background())
	if err != nil {
		t.Fatalf("Connected: %v", err)
	}
	if ok {
		t.Error("Connected = true, want false")
	}
}

func TestUpcomingWindow(t *testing.T) {
	now := time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)
	start, end := UpcomingWindow(now)
	if !start.Equal(now) {
		t.Errorf("start = %v", start)
	}
	if want := now.AddDate(0, 0, 14); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}
}
