package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwerr/AI-Summariser/internal/calendar"
	"github.com/jwerr/AI-Summariser/internal/config"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Inspect and connect the calendar",
}

var calendarEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming calendar events",
	RunE:  runCalendarEvents,
}

var calendarConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Link a Google Calendar account via the backend",
	RunE:  runCalendarConnect,
}

var calendarStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a calendar account is linked",
	RunE:  runCalendarStatus,
}

func init() {
	calendarCmd.AddCommand(calendarEventsCmd)
	calendarCmd.AddCommand(calendarConnectCmd)
	calendarCmd.AddCommand(calendarStatusCmd)
}

func newCalendarClient(cfg *config.Config) *calendar.Client {
	return calendar.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, newLogger())
}

func runCalendarEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var events []calendar.Event
	if cfg.Calendar.Source == "" || cfg.Calendar.Source == "relay" {
		events, err = newCalendarClient(cfg).ListEvents(ctx)
		if err != nil {
			if errors.Is(err, calendar.ErrNotConnected) {
				fmt.Println("Calendar is not connected — run 'summariser calendar connect' first.")
				return nil
			}
			return err
		}
	} else {
		start, end := calendar.UpcomingWindow(time.Now())
		events, err = calendar.FetchICS(ctx, cfg.Calendar.Source, start, end)
		if err != nil {
			return err
		}
	}

	if len(events) == 0 {
		fmt.Println("No upcoming events.")
		return nil
	}

	for _, e := range events {
		if e.AllDay {
			fmt.Printf("  %s  all day      %s\n", e.Start.Format("Mon Jan 2"), e.Title)
			continue
		}
		fmt.Printf("  %s  %s–%s  %s\n",
			e.Start.Local().Format("Mon Jan 2"),
			e.Start.Local().Format("15:04"),
			e.End.Local().Format("15:04"),
			e.Title,
		)
	}
	return nil
}

func runCalendarConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newCalendarClient(cfg)
	ctx := context.Background()

	connected, err := client.Connected(ctx)
	if err != nil {
		return err
	}
	if connected {
		fmt.Println("Calendar is already connected.")
		return nil
	}

	url, err := client.AuthURL(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in your browser to grant calendar access:")
	fmt.Printf("\n  %s\n\n", url)
	fmt.Println("Waiting for you to finish...")

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := client.WaitForConnection(waitCtx, 3); err != nil {
		if waitCtx.Err() != nil {
			return fmt.Errorf("timed out waiting for calendar consent")
		}
		return err
	}

	fmt.Println("Calendar connected.")
	return nil
}

func runCalendarStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	connected, err := newCalendarClient(cfg).Connected(context.Background())
	if err != nil {
		return err
	}

	if connected {
		fmt.Println("Calendar: connected")
	} else {
		fmt.Println("Calendar: not connected — run 'summariser calendar connect'")
	}
	return nil
}
