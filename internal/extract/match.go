package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// passKind identifies which recognizer produced a rawMatch. Passes run in
// this order, and scan order decides which duplicate survives.
type passKind int

const (
	passISO passKind = iota
	passSlash
	passMonthName
)

// rawMatch carries the captured groups of one recognizer hit before any
// year anchoring or clock disambiguation is applied. hour is -1 when the
// text carried no time expression; year is 0 when no year was written.
type rawMatch struct {
	kind     passKind
	text     string
	year     int
	month    int
	day      int
	hour     int
	minute   int
	meridiem string
}

var (
	isoRe = regexp.MustCompile(
		`\b(20\d{2})-(\d{2})-(\d{2})(?:[T ](\d{2}):([0-5]\d))?\b`)

	slashRe = regexp.MustCompile(
		`(?i)\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?` + timeExpr)

	monthRe = regexp.MustCompile(
		`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(20\d{2}))?` + timeExpr)
)

// Shared trailing time expression: H[:MM][am|pm], optionally preceded by "at".
const timeExpr = `(?:\s+(?:at\s+)?(\d{1,2})(?::([0-5]\d))?\s*(am|pm)?)?\b`

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december` +
	`|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func scanISO(text string) []rawMatch {
	var out []rawMatch
	for _, m := range isoRe.FindAllStringSubmatch(text, -1) {
		rm := rawMatch{
			kind:  passISO,
			text:  strings.TrimSpace(m[0]),
			year:  atoi(m[1]),
			month: atoi(m[2]),
			day:   atoi(m[3]),
			hour:  -1,
		}
		if m[4] != "" {
			rm.hour = atoi(m[4])
			rm.minute = atoi(m[5])
		}
		out = append(out, rm)
	}
	return out
}

func scanSlash(text string) []rawMatch {
	var out []rawMatch
	for _, m := range slashRe.FindAllStringSubmatch(text, -1) {
		rm := rawMatch{
			kind:  passSlash,
			text:  strings.TrimSpace(m[0]),
			month: atoi(m[1]),
			day:   atoi(m[2]),
			hour:  -1,
		}
		if m[3] != "" {
			y := atoi(m[3])
			if y < 100 {
				y += 2000
			}
			rm.year = y
		}
		if m[4] != "" {
			rm.hour = atoi(m[4])
			rm.minute = atoi(m[5])
			rm.meridiem = strings.ToLower(m[6])
		}
		out = append(out, rm)
	}
	return out
}

func scanMonthName(text string) []rawMatch {
	var out []rawMatch
	for _, m := range monthRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if len(name) > 3 {
			name = name[:3]
		}
		rm := rawMatch{
			kind:  passMonthName,
			text:  strings.TrimSpace(m[0]),
			month: monthIndex[name],
			day:   atoi(m[2]),
			hour:  -1,
		}
		if m[3] != "" {
			rm.year = atoi(m[3])
		}
		if m[4] != "" {
			rm.hour = atoi(m[4])
			rm.minute = atoi(m[5])
			rm.meridiem = strings.ToLower(m[6])
		}
		out = append(out, rm)
	}
	return out
}

// clock resolves the wall-clock time of a match. ISO times are already
// 24-hour; everywhere else am/pm wins when present, and a bare hour of 7
// or less is read as afternoon. That last rule is a deliberate guess for
// business-meeting text ("at 2" almost always means 14:00) and will
// misread genuine early-morning times like "at 6".
func (m rawMatch) clock() (hour, minute int, ok bool) {
	if m.hour < 0 {
		return defaultHour, 0, true
	}
	h := m.hour
	switch m.meridiem {
	case "pm":
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		if h < 12 {
			h += 12
		}
	case "am":
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		if h == 12 {
			h = 0
		}
	default:
		if h > 23 {
			return 0, 0, false
		}
		if m.kind != passISO && h <= 7 {
			h += 12
		}
	}
	return h, m.minute, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
