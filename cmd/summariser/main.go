package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/jwerr/AI-Summariser/internal/backend"
	"github.com/jwerr/AI-Summariser/internal/config"
	"github.com/jwerr/AI-Summariser/internal/notify"
	"github.com/jwerr/AI-Summariser/internal/store"
	"github.com/jwerr/AI-Summariser/internal/tui"
	"github.com/jwerr/AI-Summariser/internal/watcher"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "summariser",
	Short: "Meeting summaries, Q&A, and follow-up scheduling from the terminal",
	Long:  "summariser uploads meeting transcripts to a summarization backend, shows the results, answers questions about them, and pushes detected follow-up meetings to your calendar.",
}

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Register a new meeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List meetings",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meeting and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <id> <file>",
	Short: "Upload a transcript file (TXT, VTT, SRT, DOCX, PDF)",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpload,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <id>",
	Short: "Start summarization for a meeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var summaryCmd = &cobra.Command{
	Use:   "summary <id>",
	Short: "Show a meeting's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript <id>",
	Short: "Show a meeting's transcript text",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

var askCmd = &cobra.Command{
	Use:   "ask <id> [question]",
	Short: "Ask a question about a meeting",
	Long:  "Ask a question about a meeting's transcript and summary. With no question argument an interactive Q&A session opens.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch processing summaries and notify when they finish",
	RunE:  runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	RunE:  runStop,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	newCmd.Flags().String("platform", "", "Meeting platform (zoom, meet, teams, ...)")
	listCmd.Flags().String("since", "", "Only meetings since a natural-language time (\"last week\", \"3 days ago\")")
	summarizeCmd.Flags().Bool("wait", false, "Block until the summary is ready")
	askCmd.Flags().Int("top-k", 0, "Number of context snippets to retrieve")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(followupsCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend URL not configured — run 'summariser config' to set it up")
	}
	return cfg, nil
}

func newBackendClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, newLogger())
}

func parseMeetingID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid meeting id %q", arg)
	}
	return id, nil
}

func runNew(cmd *cobra.Command, args []string) error {
	platform, _ := cmd.Flags().GetString("platform")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	client := newBackendClient(cfg)
	meeting, err := client.CreateMeeting(context.Background(), args[0], platform)
	if err != nil {
		return err
	}

	if err := db.UpsertMeeting(*meeting); err != nil {
		return fmt.Errorf("caching meeting: %w", err)
	}

	fmt.Printf("Created meeting %d: %s\n", meeting.ID, meeting.Title)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	sinceExpr, _ := cmd.Flags().GetString("since")

	var since time.Time
	if sinceExpr != "" {
		t, err := naturaldate.Parse(sinceExpr, time.Now(), naturaldate.WithDirection(naturaldate.Past))
		if err != nil {
			return fmt.Errorf("parsing --since %q: %w", sinceExpr, err)
		}
		since = t
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

	client := newBackendClient(cfg)
	meetings, err := client.ListMeetings(context.Background())
	if err != nil {
		return err
	}

	shown := 0
	for _, m := range meetings {
		if err := db.UpsertMeeting(m); err != nil {
			return fmt.Errorf("caching meeting: %w", err)
		}
		if !since.IsZero() && m.CreatedAt.Before(since) {
			continue
		}
		platform := m.Platform
		if platform == "" {
			platform = "-"
		}
		fmt.Printf("  %4d  %s  %-8s  %s\n", m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04"), platform, m.Title)
		shown++
	}

	if shown == 0 {
		fmt.Println("No meetings found.")
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	client := newBackendClient(cfg)
	if err := client.DeleteMeeting(context.Background(), id); err != nil {
		return err
	}
	if err := db.DeleteMeeting(id); err != nil {
		return fmt.Errorf("removing cached meeting: %w", err)
	}

	fmt.Printf("Deleted meeting %d\n", id)
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	id, err := parseMeetingID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newBackendClient(cfg)
	if err := client.UploadTranscript(context.Background(), id, args[1]); err != nil {
		return err
	}

	fmt.Printf("Uploaded %s to meeting %d\n", args[1], id)
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetBool("wait")

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

	client := newBackendClient(cfg)
	ctx := context.Background()

	summary, err := client.Summarize(ctx, id)
	if err != nil {
		return err
	}
	if err := db.SetMeetingStatus(id, summary.Status); err != nil {
		return fmt.Errorf("caching status: %w", err)
	}

	if !wait {
		fmt.Printf("Summarization started for meeting %d (status: %s)\n", id, summary.Status)
		fmt.Println("Run 'summariser summary' once it's ready, or 'summariser watch' to be notified.")
		return nil
	}

	fmt.Println("Waiting for summary...")
	summary, waitErr := client.WaitForSummary(ctx, id, 3*time.Second)
	if summary != nil {
		if err := db.CacheSummary(id, summary); err != nil {
			return fmt.Errorf("caching summary: %w", err)
		}
	}
	if waitErr != nil {
		return waitErr
	}

	printSummary(id, summary)
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	client := newBackendClient(cfg)
	summary, err := client.GetSummary(context.Background(), id)
	if err != nil {
		return err
	}
	if err := db.CacheSummary(id, summary); err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}

	printSummary(id, summary)
	return nil
}

func printSummary(id int, s *backend.Summary) {
	switch s.Status {
	case backend.StatusEmpty:
		fmt.Printf("Meeting %d has not been summarized yet. Run 'summariser summarize %d'.\n", id, id)
		return
	case backend.StatusProcessing:
		fmt.Printf("Summary for meeting %d is still processing.\n", id)
		return
	case backend.StatusError:
		fmt.Printf("Summarization for meeting %d failed: %s\n", id, s.Error)
		return
	}

	fmt.Println(s.SummaryText)

	printSection := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("\n%s:\n", name)
		for _, item := range items {
			fmt.Printf("  - %s\n", item)
		}
	}
	printSection("Key points", s.KeyPoints)
	printSection("Decisions", s.Decisions)
	printSection("Action items", s.ActionItems)

	if len(s.ScheduleSuggestions) > 0 {
		fmt.Printf("\n%d follow-up suggestion(s) — run 'summariser followups %d' to review.\n", len(s.ScheduleSuggestions), id)
	}
}

func runTranscript(cmd *cobra.Command, args []string) error {
	id, err := parseMeetingID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newBackendClient(cfg)
	text, err := client.GetTranscript(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	id, err := parseMeetingID(args[0])
	if err != nil {
		return err
	}
	topK, _ := cmd.Flags().GetInt("top-k")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newBackendClient(cfg)

	// One-shot when the question is on the command line.
	if len(args) > 1 {
		question := strings.Join(args[1:], " ")

		ans, err := client.Ask(context.Background(), id, question, topK)
		if err != nil {
			return err
		}

		fmt.Println(ans.Answer)
		if len(ans.Contexts) > 0 {
			fmt.Println("\nSources:")
			for _, c := range ans.Contexts {
				fmt.Printf("  [%d] %s (%.2f)\n", c.Index, c.Source, c.Score)
			}
		}
		return nil
	}

	title := fmt.Sprintf("meeting %d", id)
	app := tui.NewAskApp(client, id, title)
	if _, err := tea.NewProgram(app).Run(); err != nil {
		return fmt.Errorf("running Q&A session: %w", err)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	notifier := notify.New(cfg.Notifications.Enabled, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	w := watcher.New(cfg, client, db, notifier, logger)
	return w.Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := watcher.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to watcher (PID %d)\n", pid)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
