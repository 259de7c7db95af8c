package backend

import (
	"strings"
	"time"
)

// Summary status values reported by the backend.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
	StatusEmpty      = "empty"
)

type Meeting struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Platform       string    `json:"platform,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary is the normalized summary payload for one meeting. The
// backend owns all transcript parsing and model behavior; the client
// only ever sees this shape.
type Summary struct {
	Status      string   `json:"status"`
	SummaryText string   `json:"summary_text"`
	KeyPoints   []string `json:"key_points"`
	Decisions   []string `json:"decisions"`
	ActionItems []string `json:"action_items"`
	Error       string   `json:"error,omitempty"`
	GeneratedAt string   `json:"generated_at,omitempty"`

	// ScheduleSuggestions are server-computed candidate events. When
	// non-empty they are authoritative: the local miner never runs.
	ScheduleSuggestions []ScheduleSuggestion `json:"schedule_suggestions,omitempty"`
}

// FullText joins the summary sections into one block for the local
// extraction fallback to scan.
func (s *Summary) FullText() string {
	parts := make([]string, 0, 1+len(s.KeyPoints)+len(s.Decisions)+len(s.ActionItems))
	if s.SummaryText != "" {
		parts = append(parts, s.SummaryText)
	}
	parts = append(parts, s.KeyPoints...)
	parts = append(parts, s.Decisions...)
	parts = append(parts, s.ActionItems...)
	return strings.Join(parts, "\n")
}

type ScheduleSuggestion struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	StartISO    string  `json:"start_iso"`
	EndISO      string  `json:"end_iso,omitempty"`
	Location    string  `json:"location,omitempty"`
	RawQuote    string  `json:"raw_quote,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Answer is the QA response for one question: the answer text plus the
// cited context snippets it was grounded on.
type Answer struct {
	Answer   string          `json:"answer"`
	Contexts []AnswerContext `json:"contexts"`
}

type AnswerContext struct {
	Index  int     `json:"idx"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}
