// Package calendar talks to the user's calendar. Two sources exist: the
// backend's calendar relay (read/write, OAuth-connected server-side) and
// a read-only ICS URL or file.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwerr/AI-Summariser/internal/extract"
)

// ErrNotConnected reports that the calendar account is not linked (or
// the link expired). Callers treat this as a prompt to run
// `summariser calendar connect`, never as a fatal error.
var ErrNotConnected = errors.New("calendar not connected")

// Event is one calendar entry as the rest of the app sees it. All-day
// entries carry a midnight Start/End and AllDay set.
type Event struct {
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Client is the calendar relay client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("calendar response", "method", method, "path", path, "status", resp.StatusCode)

	// Auth and connection-state failures all collapse to "not
	// connected": 409 is the relay's explicit signal, the rest are
	// expired or missing tokens.
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict:
		return nil, fmt.Errorf("%w (status %d)", ErrNotConnected, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// googleTime is the relay's start/end shape: a date-time string for
// timed events, a bare date for all-day ones.
type googleTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type googleEvent struct {
	Summary string     `json:"summary"`
	Start   googleTime `json:"start"`
	End     googleTime `json:"end"`
}

type eventList struct {
	Items []googleEvent `json:"items"`
}

// ListEvents returns the next upcoming events from the user's primary
// calendar.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/calendar/events", nil)
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	var list eventList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing calendar events: %w", err)
	}

	var events []Event
	for _, ge := range list.Items {
		ev, err := ge.toEvent()
		if err != nil {
			c.logger.Debug("skipping unparseable calendar event", "summary", ge.Summary, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (ge googleEvent) toEvent() (Event, error) {
	start, allDay, err := ge.Start.parse()
	if err != nil {
		return Event{}, err
	}
	end, _, err := ge.End.parse()
	if err != nil {
		return Event{}, err
	}
	return Event{Title: ge.Summary, Start: start, End: end, AllDay: allDay}, nil
}

func (gt googleTime) parse() (time.Time, bool, error) {
	if gt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, gt.DateTime)
		return t, false, err
	}
	if gt.Date != "" {
		t, err := time.Parse("2006-01-02", gt.Date)
		return t, true, err
	}
	return time.Time{}, false, fmt.Errorf("event has neither dateTime nor date")
}

// CreateEvent submits a reconciled draft to the user's calendar.
func (c *Client) CreateEvent(ctx context.Context, payload extract.Resolved) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/calendar/create", payload); err != nil {
		if errors.Is(err, ErrNotConnected) {
			return err
		}
		return fmt.Errorf("creating calendar event: %w", err)
	}
	return nil
}

// AuthURL asks the relay for the OAuth consent URL the user must open
// in a browser.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/google/auth-url", nil)
	if err != nil {
		return "", fmt.Errorf("fetching auth URL: %w", err)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("parsing auth URL response: %w", err)
	}
	return resp.URL, nil
}

// Connected reports whether the calendar account is currently linked.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/google/status", nil)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			return false, nil
		}
		return false, fmt.Errorf("checking calendar status: %w", err)
	}

	var resp struct {
		Connected bool `json:"connected"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("parsing status response: %w", err)
	}
	return resp.Connected, nil
}

// WaitForConnection polls Connected until the user finishes the browser
// consent flow. Interval is in seconds, matching the relay's guidance.
func (c *Client) WaitForConnection(ctx context.Context, interval int) error {
	if interval < 1 {
		interval = 3
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(interval) * time.Second):
		}

		connected, err := c.Connected(ctx)
		if err != nil {
			return err
		}
		if connected {
			return nil
		}
		c.logger.Debug("waiting for calendar consent")
	}
}
