package ai

// Extraction is the structured response the model must return.
type Extraction struct {
	Events        []EventDraft `json:"events"`
	Clarification string       `json:"clarification,omitempty"`
}

// EventDraft is one extracted follow-up in the model's wire shape.
// Dates and times are strings so the model never has to emit a full
// timestamp; combination happens locally.
type EventDraft struct {
	Title       string  `json:"title"`
	Date        string  `json:"date" jsonschema_description:"Calendar date in YYYY-MM-DD form"`
	StartTime   string  `json:"start_time" jsonschema_description:"24-hour start time, HH:MM"`
	EndTime     string  `json:"end_time,omitempty" jsonschema_description:"24-hour end time, HH:MM, empty if not stated"`
	Description string  `json:"description,omitempty"`
	SourceQuote string  `json:"source_quote,omitempty" jsonschema_description:"Verbatim snippet the event was inferred from"`
	Confidence  float64 `json:"confidence"`
}
