// Package ai extracts follow-up events from summary text with a
// language model. It sits between the backend's own suggestions and the
// regex miner: smarter than regex, but only consulted when the backend
// sent nothing.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

const defaultModel = "gpt-4o-mini"

// minConfidence filters out events the model itself marked as guesses.
const minConfidence = 0.3

// extractionSchema is reflected once at init; the model is forced to
// answer in this shape.
var extractionSchema = func() any {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(&Extraction{})
}()

// OpenAI extracts events via chat completions with a structured
// response format.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(apiKey, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

// ExtractEvents asks the model for follow-up events in the summary.
// Unparseable or low-confidence drafts are dropped rather than failing
// the call; an empty result means "nothing found, try the miner".
func (o *OpenAI) ExtractEvents(ctx context.Context, summaryText string, now time.Time) ([]extract.Event, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(now)),
			openai.UserMessage(buildUserPrompt(summaryText)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "followup_events",
					Description: openai.String("Follow-up meetings extracted from a summary"),
					Schema:      extractionSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	o.logger.Debug("extraction response", "model", o.model, "len", len(raw))

	var extraction Extraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, fmt.Errorf("parsing extraction: %w (raw: %s)", err, truncateStr(raw, 500))
	}

	if extraction.Clarification != "" {
		o.logger.Debug("model asked for clarification", "clarification", extraction.Clarification)
	}

	return o.toEvents(extraction.Events, now), nil
}

// toEvents converts wire drafts to events, dropping ones that fail to
// parse, sit below the confidence floor, or land in the past.
func (o *OpenAI) toEvents(drafts []EventDraft, now time.Time) []extract.Event {
	var events []extract.Event
	for _, d := range drafts {
		if d.Confidence < minConfidence {
			o.logger.Debug("dropping low-confidence draft", "title", d.Title, "confidence", d.Confidence)
			continue
		}

		startTime := d.StartTime
		if startTime == "" {
			startTime = "10:00"
		}
		start, err := time.ParseInLocation("2006-01-02 15:04", d.Date+" "+startTime, now.Location())
		if err != nil {
			o.logger.Debug("dropping unparseable draft", "title", d.Title, "date", d.Date, "start", d.StartTime)
			continue
		}
		if !start.After(now) {
			continue
		}

		ev := extract.Event{
			Title:       d.Title,
			Start:       start,
			Description: d.Description,
			SourceText:  d.SourceQuote,
		}
		if ev.Title == "" {
			ev.Title = extract.DefaultTitle
		}
		if d.EndTime != "" {
			if end, err := time.ParseInLocation("2006-01-02 15:04", d.Date+" "+d.EndTime, now.Location()); err == nil {
				if !end.After(start) {
					end = end.AddDate(0, 0, 1)
				}
				ev.End = end
			}
		}
		events = append(events, ev)
	}
	return events
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
