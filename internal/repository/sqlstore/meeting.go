package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/repository"
)

var _ repository.MeetingRepository = (*DB)(nil)

const meetingColumns = `meeting_id, meeting_name, meeting_description, meeting_time, user_id, contact_id`

func scanMeeting(s scanner, m *model.Meeting) error {
	var (
		at        time.Time
		userID    sql.NullInt64
		contactID sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Name, &m.Description, &at, &userID, &contactID); err != nil {
		return err
	}
	m.Time = model.NewTimestamp(at)
	m.UserID = userID.Int64
	m.ContactID = contactID.Int64
	return nil
}

// CreateMeeting inserts a meeting and fills in the generated ID. The time is
// stored in UTC so that day-range lookups compare like with like.
func (db *DB) CreateMeeting(ctx context.Context, meeting *model.Meeting) error {
	meeting.Time = model.NewTimestamp(meeting.Time.Time)

	err := db.queryRow(ctx,
		`INSERT INTO meetings (meeting_name, meeting_description, meeting_time, user_id, contact_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING meeting_id`,
		meeting.Name,
		meeting.Description,
		meeting.Time.Time,
		nullID(meeting.UserID),
		nullID(meeting.ContactID),
	).Scan(&meeting.ID)
	if err != nil {
		if cerr := constraintError(err, "meeting", meeting.Name, "userId/contactId"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("sqlstore: inserting meeting %q: %w", meeting.Name, err)
	}
	return nil
}

// GetMeetingByID retrieves a meeting by ID.
func (db *DB) GetMeetingByID(ctx context.Context, id int64) (*model.Meeting, error) {
	var m model.Meeting
	err := scanMeeting(db.queryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE meeting_id = ?`, id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Meeting", id)
		}
		return nil, fmt.Errorf("sqlstore: getting meeting %d: %w", id, err)
	}
	return &m, nil
}

// ListMeetingsByUser returns all meetings of a user in chronological order.
func (db *DB) ListMeetingsByUser(ctx context.Context, userID int64) ([]model.Meeting, error) {
	return db.listMeetings(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE user_id = ? ORDER BY meeting_time, meeting_id`,
		userID)
}

// ListMeetingsByUserBetween returns a user's meetings in [from, to).
func (db *DB) ListMeetingsByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]model.Meeting, error) {
	return db.listMeetings(ctx,
		`SELECT `+meetingColumns+` FROM meetings
		 WHERE user_id = ? AND meeting_time >= ? AND meeting_time < ?
		 ORDER BY meeting_time, meeting_id`,
		userID, from.UTC(), to.UTC())
}

func (db *DB) listMeetings(ctx context.Context, query string, args ...any) ([]model.Meeting, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]model.Meeting, 0)
	for rows.Next() {
		var m model.Meeting
		if err := scanMeeting(rows, &m); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning meeting row: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating meetings: %w", err)
	}

	return meetings, nil
}

// DeleteMeeting removes a meeting by ID. Deleting a missing meeting is not
// an error.
func (db *DB) DeleteMeeting(ctx context.Context, id int64) error {
	if _, err := db.exec(ctx, `DELETE FROM meetings WHERE meeting_id = ?`, id); err != nil {
		return fmt.Errorf("sqlstore: deleting meeting %d: %w", id, err)
	}
	return nil
}
