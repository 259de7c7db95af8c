package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwerr/AI-Summariser/internal/backend"
)

// Meeting is the cached view of a backend meeting.
type Meeting struct {
	BackendID int
	Title     string
	Platform  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertMeeting records a meeting seen on the backend, preserving the
// cached status on conflict so summarization progress survives list
// refreshes.
func (db *DB) UpsertMeeting(m backend.Meeting) error {
	_, err := db.Exec(
		`INSERT INTO meetings (backend_id, title, platform, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(backend_id) DO UPDATE SET
			title = excluded.title,
			platform = excluded.platform,
			updated_at = CURRENT_TIMESTAMP`,
		m.ID, m.Title, m.Platform, m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting meeting: %w", err)
	}
	return nil
}

// SetMeetingStatus updates the cached summary status for a meeting.
func (db *DB) SetMeetingStatus(backendID int, status string) error {
	_, err := db.Exec(
		"UPDATE meetings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE backend_id = ?",
		status, backendID,
	)
	return err
}

// CacheSummary stores the full normalized summary alongside its status.
func (db *DB) CacheSummary(backendID int, summary *backend.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	_, err = db.Exec(
		"UPDATE meetings SET status = ?, summary_json = ?, updated_at = CURRENT_TIMESTAMP WHERE backend_id = ?",
		summary.Status, string(data), backendID,
	)
	if err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}
	return nil
}

// CachedSummary returns the stored summary for a meeting, or nil when
// none was cached.
func (db *DB) CachedSummary(backendID int) (*backend.Summary, error) {
	var data sql.NullString
	err := db.QueryRow("SELECT summary_json FROM meetings WHERE backend_id = ?", backendID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached summary: %w", err)
	}
	if !data.Valid || data.String == "" {
		return nil, nil
	}

	var summary backend.Summary
	if err := json.Unmarshal([]byte(data.String), &summary); err != nil {
		return nil, fmt.Errorf("decoding cached summary: %w", err)
	}
	return &summary, nil
}

// ListMeetings returns all cached meetings, newest first.
func (db *DB) ListMeetings() ([]Meeting, error) {
	return db.queryMeetings(
		`SELECT backend_id, title, platform, status, created_at, updated_at
		 FROM meetings
		 ORDER BY created_at DESC`,
	)
}

// MeetingsWithStatus returns cached meetings in the given status. The
// watcher uses this to find summaries still processing.
func (db *DB) MeetingsWithStatus(status string) ([]Meeting, error) {
	return db.queryMeetings(
		`SELECT backend_id, title, platform, status, created_at, updated_at
		 FROM meetings
		 WHERE status = ?
		 ORDER BY created_at ASC`,
		status,
	)
}

func (db *DB) DeleteMeeting(backendID int) error {
	if _, err := db.Exec("DELETE FROM followups WHERE meeting_id = ?", backendID); err != nil {
		return fmt.Errorf("deleting follow-ups: %w", err)
	}
	if _, err := db.Exec("DELETE FROM meetings WHERE backend_id = ?", backendID); err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	return nil
}

func (db *DB) queryMeetings(query string, args ...interface{}) ([]Meeting, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		var platform sql.NullString
		var createdStr, updatedStr string

		if err := rows.Scan(&m.BackendID, &m.Title, &platform, &m.Status, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}

		m.Platform = platform.String
		m.CreatedAt = parseStoredTime(createdStr)
		m.UpdatedAt = parseStoredTime(updatedStr)

		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}

// parseStoredTime handles both RFC3339 values we write and the
// "2006-01-02 15:04:05" form sqlite's CURRENT_TIMESTAMP produces.
func parseStoredTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
