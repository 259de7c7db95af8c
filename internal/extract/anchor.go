package extract

import (
	"regexp"
	"strconv"
)

// anchorWindow is how far into a document the header scan looks. Summary
// documents put their "Date: ..." line near the top; anything past this
// is body text and no longer trustworthy as an anchor.
const anchorWindow = 600

var (
	headerDateRe = regexp.MustCompile(
		`(?i)\bdate:\s*(?:` + monthNames + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+(20\d{2})`)
	bareYearRe = regexp.MustCompile(`\b20\d{2}\b`)
)

// AnchorYear derives a year from document context to disambiguate
// year-less date mentions. It prefers an explicit "Date: <Month> <Day>,
// <Year>" header within the first anchorWindow characters, then falls
// back to the first bare 4-digit number starting with "20" in that same
// region. Returns false when neither is present.
func AnchorYear(doc string) (int, bool) {
	head := doc
	if len(head) > anchorWindow {
		head = head[:anchorWindow]
	}

	if m := headerDateRe.FindStringSubmatch(head); m != nil {
		y, err := strconv.Atoi(m[1])
		if err == nil {
			return y, true
		}
	}

	if m := bareYearRe.FindString(head); m != "" {
		y, err := strconv.Atoi(m)
		if err == nil {
			return y, true
		}
	}

	return 0, false
}
