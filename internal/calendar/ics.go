package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
)

// FetchICS retrieves and parses iCalendar events from a URL or file
// path, returning events that overlap the given window. This is the
// read-only alternative to the relay for users who only want to see
// existing commitments next to suggested follow-ups.
func FetchICS(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]Event, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	dec := ical.NewDecoder(r)
	var events []Event

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(nil)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(nil)
			if err != nil {
				continue
			}

			if !start.Before(windowEnd) || !end.After(windowStart) {
				continue
			}

			title, _ := event.Props.Text(ical.PropSummary)
			if title == "" {
				continue
			}

			// DATE-valued starts mark all-day entries.
			allDay := false
			if prop := event.Props.Get(ical.PropDateTimeStart); prop != nil {
				allDay = prop.ValueType() == ical.ValueDate
			}

			events = append(events, Event{
				Title:  title,
				Start:  start,
				End:    end,
				AllDay: allDay,
			})
		}
	}

	return events, nil
}

// UpcomingWindow is the default listing range for both calendar
// sources: now through two weeks out.
func UpcomingWindow(now time.Time) (time.Time, time.Time) {
	return now, now.AddDate(0, 0, 14)
}
