package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Follow-up status values.
const (
	FollowupCreated = "created"
	FollowupFailed  = "failed"
)

// Followup is one event that was (or failed to be) pushed to the
// calendar for a meeting.
type Followup struct {
	ID          int
	MeetingID   int
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Source      string
	Status      string
	CreatedAt   time.Time
}

func (db *DB) InsertFollowup(f *Followup) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO followups (meeting_id, title, description, start_time, end_time, source, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.MeetingID, f.Title, f.Description,
		f.StartTime.UTC().Format(time.RFC3339),
		f.EndTime.UTC().Format(time.RFC3339),
		f.Source, f.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting follow-up: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) UpdateFollowupStatus(id int, status string) error {
	_, err := db.Exec("UPDATE followups SET status = ? WHERE id = ?", status, id)
	return err
}

// MeetingFollowups returns the follow-ups recorded for one meeting,
// earliest start first.
func (db *DB) MeetingFollowups(meetingID int) ([]Followup, error) {
	return db.queryFollowups(
		`SELECT id, meeting_id, title, description, start_time, end_time, source, status, created_at
		 FROM followups
		 WHERE meeting_id = ?
		 ORDER BY start_time ASC`,
		meetingID,
	)
}

// FailedFollowups returns follow-ups whose calendar push failed, oldest
// first, for retry.
func (db *DB) FailedFollowups() ([]Followup, error) {
	return db.queryFollowups(
		`SELECT id, meeting_id, title, description, start_time, end_time, source, status, created_at
		 FROM followups
		 WHERE status = ?
		 ORDER BY created_at ASC`,
		FollowupFailed,
	)
}

func (db *DB) queryFollowups(query string, args ...interface{}) ([]Followup, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying follow-ups: %w", err)
	}
	defer rows.Close()

	var followups []Followup
	for rows.Next() {
		var f Followup
		var description sql.NullString
		var startStr, endStr, createdStr string

		if err := rows.Scan(
			&f.ID, &f.MeetingID, &f.Title, &description,
			&startStr, &endStr, &f.Source, &f.Status, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scanning follow-up: %w", err)
		}

		f.Description = description.String
		f.StartTime = parseStoredTime(startStr)
		f.EndTime = parseStoredTime(endStr)
		f.CreatedAt = parseStoredTime(createdStr)

		followups = append(followups, f)
	}

	return followups, rows.Err()
}
