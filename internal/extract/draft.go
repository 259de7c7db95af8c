package extract

import (
	"errors"
	"fmt"
	"time"
)

// Validation failures from Resolve, matched with errors.Is. These are
// surfaced to the caller for user-facing correction; the reconciler
// never logs or retries.
var (
	ErrInvalidStart = errors.New("missing or invalid start date/time")
	ErrInvalidEnd   = errors.New("missing or invalid end time")
)

// Draft is an editable, not-yet-submitted calendar event. The UI layer
// owns field mutation; Resolve consumes an immutable snapshot.
type Draft struct {
	Title       string `json:"title"`
	Date        string `json:"date"`       // 2006-01-02
	StartTime   string `json:"start_time"` // 15:04
	EndTime     string `json:"end_time"`   // 15:04
	Description string `json:"description,omitempty"`
}

// Resolved is the calendar-ready payload. StartISO and EndISO are
// RFC 3339 UTC instants, and EndISO is always strictly after StartISO.
type Resolved struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartISO    string `json:"start_iso"`
	EndISO      string `json:"end_iso"`
}

// NewDraft pre-fills a draft from a mined or server-suggested event.
// When the event has no explicit end, the end time defaults to sixty
// minutes after the start, so the common path never needs the rollover
// rule in Resolve.
func NewDraft(ev Event) Draft {
	end := ev.End
	if end.IsZero() {
		end = ev.Start.Add(60 * time.Minute)
	}
	return Draft{
		Title:       ev.Title,
		Date:        ev.Start.Format("2006-01-02"),
		StartTime:   ev.Start.Format("15:04"),
		EndTime:     end.Format("15:04"),
		Description: ev.Description,
	}
}

// Resolve combines a draft's date and times into a concrete start/end
// instant pair in loc (nil means the system zone), emitted as UTC.
//
// An end at or before the start on the same calendar date is
// reinterpreted as the next day at the same wall-clock time. That covers
// meetings crossing midnight and is applied unconditionally: a rolled
// 30-hour span is accepted silently.
func Resolve(d Draft, loc *time.Location) (Resolved, error) {
	if loc == nil {
		loc = time.Local
	}

	start, err := combine(d.Date, d.StartTime, loc)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %q %q", ErrInvalidStart, d.Date, d.StartTime)
	}

	end, err := combine(d.Date, d.EndTime, loc)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %q", ErrInvalidEnd, d.EndTime)
	}

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return Resolved{
		Title:       d.Title,
		Description: d.Description,
		StartISO:    start.UTC().Format(time.RFC3339),
		EndISO:      end.UTC().Format(time.RFC3339),
	}, nil
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
}
