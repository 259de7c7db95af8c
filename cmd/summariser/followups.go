package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwerr/AI-Summariser/internal/ai"
	"github.com/jwerr/AI-Summariser/internal/backend"
	"github.com/jwerr/AI-Summariser/internal/calendar"
	"github.com/jwerr/AI-Summariser/internal/config"
	"github.com/jwerr/AI-Summariser/internal/extract"
	"github.com/jwerr/AI-Summariser/internal/followup"
	"github.com/jwerr/AI-Summariser/internal/notify"
	"github.com/jwerr/AI-Summariser/internal/store"
	"github.com/jwerr/AI-Summariser/internal/tui"
)

var followupsCmd = &cobra.Command{
	Use:   "followups <id>",
	Short: "Review and schedule follow-up meetings detected in a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runFollowups,
}

func init() {
	followupsCmd.Flags().Bool("yes", false, "Schedule all candidates without the interactive review")
	followupsCmd.Flags().Int("max", 0, "Maximum number of candidates to consider")
	followupsCmd.Flags().Bool("json", false, "Print the candidate drafts as JSON instead of scheduling")
}

func runFollowups(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	max, _ := cmd.Flags().GetInt("max")
	asJSON, _ := cmd.Flags().GetBool("json")

	id, err := parseMeetingID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := newLogger()
	client := newBackendClient(cfg)
	ctx := context.Background()

	summary, err := client.GetSummary(ctx, id)
	if err != nil {
		return err
	}
	if err := db.CacheSummary(id, summary); err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}
	if summary.Status != backend.StatusReady {
		printSummary(id, summary)
		return nil
	}

	var extractor followup.Extractor
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		extractor = ai.NewOpenAI(cfg.AI.APIKey, cfg.AI.Model, logger)
	}

	planner := followup.NewPlanner(extractor, logger)
	plan := planner.Build(ctx, summary, time.Now())

	if max <= 0 {
		max = cfg.Extract.MaxEvents
	}
	if max > 0 && len(plan.Events) > max {
		plan.Events = plan.Events[:max]
	}

	if len(plan.Events) == 0 {
		fmt.Println("No follow-up candidates found in this summary.")
		return nil
	}

	drafts := make([]extract.Draft, len(plan.Events))
	for i, ev := range plan.Events {
		drafts[i] = extract.NewDraft(ev)
	}

	if asJSON {
		out, err := json.MarshalIndent(drafts, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding drafts: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	loc, err := resolveTimezone(cfg)
	if err != nil {
		return err
	}

	calClient := calendar.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, logger)
	notifier := notify.New(cfg.Notifications.Enabled, logger)

	var result *tui.Result
	if yes {
		result = scheduleAll(ctx, drafts, calClient, loc)
	} else {
		fmt.Printf("Candidates from %s\n", plan.Source)
		app := tui.NewApp(drafts, calClient, loc)
		if _, err := tea.NewProgram(app).Run(); err != nil {
			return fmt.Errorf("running review: %w", err)
		}
		result = app.GetResult()
	}

	if result == nil || result.Canceled {
		fmt.Println("Canceled, nothing scheduled.")
		return nil
	}

	recordResult(db, id, string(plan.Source), result, notifier, loc)

	if len(result.Failed) > 0 {
		for _, f := range result.Failed {
			if strings.Contains(f.Err, calendar.ErrNotConnected.Error()) {
				fmt.Println("Calendar is not connected — run 'summariser calendar connect' first.")
				break
			}
		}
		return fmt.Errorf("%d follow-up(s) failed to schedule", len(result.Failed))
	}
	return nil
}

func resolveTimezone(cfg *config.Config) (*time.Location, error) {
	if cfg.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Calendar.Timezone, err)
	}
	return loc, nil
}

// scheduleAll is the non-interactive path: resolve and push every
// draft, keeping going past individual failures.
func scheduleAll(ctx context.Context, drafts []extract.Draft, pusher tui.Pusher, loc *time.Location) *tui.Result {
	result := &tui.Result{}
	for _, d := range drafts {
		payload, err := extract.Resolve(d, loc)
		if err != nil {
			result.Failed = append(result.Failed, tui.FailedEvent{Draft: d, Err: err.Error()})
			continue
		}
		if err := pusher.CreateEvent(ctx, payload); err != nil {
			result.Failed = append(result.Failed, tui.FailedEvent{Draft: d, Err: err.Error()})
			continue
		}
		result.Created = append(result.Created, tui.CreatedEvent{Draft: d, Payload: payload})
	}
	return result
}

// recordResult mirrors the outcome into the local store and prints it.
func recordResult(db *store.DB, meetingID int, source string, result *tui.Result, notifier *notify.Notifier, loc *time.Location) {
	for _, c := range result.Created {
		start, _ := time.Parse(time.RFC3339, c.Payload.StartISO)
		end, _ := time.Parse(time.RFC3339, c.Payload.EndISO)
		if _, err := db.InsertFollowup(&store.Followup{
			MeetingID:   meetingID,
			Title:       c.Draft.Title,
			Description: c.Draft.Description,
			StartTime:   start,
			EndTime:     end,
			Source:      source,
			Status:      store.FollowupCreated,
		}); err != nil {
			fmt.Printf("Warning: recording follow-up: %v\n", err)
		}
		notifier.FollowupCreated(c.Draft.Title)
		fmt.Printf("Scheduled: %s at %s\n", c.Draft.Title, start.In(loc).Format("Mon Jan 2 15:04"))
	}

	for _, f := range result.Failed {
		start, end := failedWindow(f.Draft, loc)
		if _, err := db.InsertFollowup(&store.Followup{
			MeetingID:   meetingID,
			Title:       f.Draft.Title,
			Description: f.Draft.Description,
			StartTime:   start,
			EndTime:     end,
			Source:      source,
			Status:      store.FollowupFailed,
		}); err != nil {
			fmt.Printf("Warning: recording follow-up: %v\n", err)
		}
		fmt.Printf("Failed: %s — %s\n", f.Draft.Title, f.Err)
	}
}

// failedWindow best-efforts a time window for a draft that never
// resolved, so the failure row still sorts sensibly.
func failedWindow(d extract.Draft, loc *time.Location) (time.Time, time.Time) {
	payload, err := extract.Resolve(d, loc)
	if err != nil {
		now := time.Now().UTC()
		return now, now
	}
	start, _ := time.Parse(time.RFC3339, payload.StartISO)
	end, _ := time.Parse(time.RFC3339, payload.EndISO)
	return start, end
}
