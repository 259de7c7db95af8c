// Package extract mines free-form meeting text for upcoming calendar
// events and turns edited drafts into calendar-ready payloads. Everything
// in this package is a pure function of its inputs: callers pass the
// reference time explicitly, no I/O happens, and repeated calls with the
// same arguments give identical results.
package extract

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultTitle is used for every mined candidate until title
	// detection exists.
	DefaultTitle = "Follow-up meeting"

	// DefaultCap bounds the result list. AnchoredCap is the raised
	// bound used when the document carries an explicit anchor year and
	// its dates are therefore trustworthy.
	DefaultCap  = 8
	AnchoredCap = 12

	// defaultHour is the wall-clock hour assumed when a date carries no
	// time expression.
	defaultHour = 10
)

// Event is one candidate follow-up meeting inferred from text. Start is
// wall-clock time in now's location and always has a concrete hour and
// minute. End is the zero value unless an end was explicitly known (the
// miner itself never produces one; server suggestions can).
type Event struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	SourceText  string
}

// Options tunes a Mine call. The zero value gives the default behavior:
// no anchor year, cap of DefaultCap, results sorted ascending by start.
type Options struct {
	// AnchorYear disambiguates year-less dates. Zero means no anchor:
	// year-less dates fall back to now's calendar year, and month-name
	// dates that land in the past roll forward one year.
	AnchorYear int

	// Cap truncates the result list. Zero or negative means DefaultCap.
	Cap int

	// NoSort preserves scan order instead of sorting by start time.
	NoSort bool
}

// Mine scans text for date mentions and returns de-duplicated upcoming
// events. Three recognizer passes run in fixed order (ISO, slash,
// month name) over the whole input; each pass keeps its left-to-right
// match order. Fragments that fail to parse are skipped, never reported:
// Mine has no error cases and returns nil for empty input.
//
// Candidates resolving to an instant at or before now are dropped, with
// one exception: a month-name date with no written year and no anchor is
// read as the nearest future occurrence and rolls forward a year.
// Duplicates collapse on exact start equality, first occurrence winning.
// Truncation to the cap happens in scan order, so the retained entries
// are the earliest-occurring matches, not an arbitrary subset; the
// survivors are then sorted unless Options.NoSort is set.
func Mine(text string, now time.Time, opts Options) []Event {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	limit := opts.Cap
	if limit <= 0 {
		limit = DefaultCap
	}

	var matches []rawMatch
	matches = append(matches, scanISO(text)...)
	matches = append(matches, scanSlash(text)...)
	matches = append(matches, scanMonthName(text)...)

	var events []Event
	seen := make(map[int64]struct{})
	for _, m := range matches {
		ev, ok := resolveMatch(m, now, opts.AnchorYear)
		if !ok {
			continue
		}
		key := ev.Start.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		events = append(events, ev)
		if len(events) == limit {
			break
		}
	}

	if !opts.NoSort {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Start.Before(events[j].Start)
		})
	}

	return events
}

// resolveMatch applies year anchoring and the clock heuristic to a raw
// recognizer hit and filters out past or impossible dates.
func resolveMatch(m rawMatch, now time.Time, anchorYear int) (Event, bool) {
	hour, minute, ok := m.clock()
	if !ok {
		return Event{}, false
	}

	if m.month < 1 || m.month > 12 || m.day < 1 || m.day > 31 {
		return Event{}, false
	}

	year := m.year
	if year == 0 {
		if anchorYear != 0 {
			year = anchorYear
		} else {
			year = now.Year()
		}
	}

	start := time.Date(year, time.Month(m.month), m.day, hour, minute, 0, 0, now.Location())

	// time.Date normalizes impossible dates (Feb 30 -> Mar 2); treat
	// those as non-matches rather than inventing a shifted day.
	if start.Day() != m.day || start.Month() != time.Month(m.month) {
		return Event{}, false
	}

	if !start.After(now) {
		// An unanchored month/day with no year refers to the nearest
		// future occurrence.
		if m.kind == passMonthName && m.year == 0 && anchorYear == 0 {
			start = start.AddDate(1, 0, 0)
		} else {
			return Event{}, false
		}
	}

	return Event{
		Title:       DefaultTitle,
		Start:       start,
		Description: "Auto-detected: " + m.text,
		SourceText:  m.text,
	}, true
}
