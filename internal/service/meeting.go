package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/repository"
)

// DateLayout is the day format accepted by the meetings-by-date route.
const DateLayout = "02-01-2006"

const MaxDescriptionLength = 2000

type MeetingService struct {
	meetings repository.MeetingRepository
	logger   *slog.Logger
}

func NewMeetingService(meetings repository.MeetingRepository, logger *slog.Logger) *MeetingService {
	return &MeetingService{meetings: meetings, logger: logger}
}

// Create validates and stores a meeting. The name and time are required;
// the owner follows the same session rules as companies.
func (s *MeetingService) Create(ctx context.Context, meeting model.Meeting, actorID int64) (*model.Meeting, error) {
	name, err := requireName("meetingName", meeting.Name)
	if err != nil {
		return nil, err
	}
	meeting.Name = name

	meeting.Description = strings.TrimSpace(meeting.Description)
	if len(meeting.Description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("meetingDescription",
			fmt.Sprintf("meetingDescription must be %d characters or less", MaxDescriptionLength))
	}

	if meeting.Time.IsZero() {
		return nil, apperror.ValidationFailed("meetingTime", "meetingTime is required")
	}
	meeting.Time = model.NewTimestamp(meeting.Time.Time)

	if meeting.UserID < 0 {
		return nil, apperror.ValidationFailed("userId", "userId must not be negative")
	}
	if meeting.ContactID < 0 {
		return nil, apperror.ValidationFailed("contactId", "contactId must not be negative")
	}
	owner, err := resolveOwner(meeting.UserID, actorID)
	if err != nil {
		return nil, err
	}
	meeting.UserID = owner

	if err := s.meetings.CreateMeeting(ctx, &meeting); err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			s.logger.Error("failed to create meeting",
				slog.String("name", meeting.Name),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating meeting: %w", err)
	}

	s.logger.Info("meeting created",
		slog.Int64("meetingID", meeting.ID),
		slog.Int64("userID", meeting.UserID),
		slog.Time("time", meeting.Time.Time),
	)
	return &meeting, nil
}

func (s *MeetingService) GetByID(ctx context.Context, id int64) (*model.Meeting, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.meetings.GetMeetingByID(ctx, id)
}

// ListByUser returns the user's meetings ordered by time. An unknown user
// simply has no meetings.
func (s *MeetingService) ListByUser(ctx context.Context, userID int64) ([]model.Meeting, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListMeetingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing meetings of user %d: %w", userID, err)
	}
	return meetings, nil
}

// ListByUserOnDate returns the user's meetings on one UTC calendar day.
// date must be in dd-mm-yyyy form; impossible dates such as 31-02-2025
// are rejected.
func (s *MeetingService) ListByUserOnDate(ctx context.Context, userID int64, date string) ([]model.Meeting, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	meetings, err := s.meetings.ListMeetingsByUserBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("listing meetings of user %d on %s: %w", userID, date, err)
	}
	return meetings, nil
}

// Delete removes a meeting. Deleting a missing meeting succeeds.
func (s *MeetingService) Delete(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.meetings.DeleteMeeting(ctx, id); err != nil {
		s.logger.Error("failed to delete meeting",
			slog.Int64("meetingID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting meeting: %w", err)
	}

	s.logger.Info("meeting deleted", slog.Int64("meetingID", id))
	return nil
}

// ParseDate parses a dd-mm-yyyy day as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "Invalid date format. Please use dd-mm-yyyy.")
	}
	return day, nil
}
