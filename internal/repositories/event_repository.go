package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"studygroup-chat-service/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository persists calendar events and their reminder flags.
type EventRepository interface {
	Create(ctx context.Context, event models.CalendarEvent) (models.CalendarEvent, error)
	Get(ctx context.Context, eventID int) (models.CalendarEvent, error)
	Update(ctx context.Context, event models.CalendarEvent) error
	Delete(ctx context.Context, eventID int) error
	ListByGroup(ctx context.Context, groupID int) ([]models.CalendarEvent, error)
	ListStartingBetween(ctx context.Context, from time.Time, to time.Time) ([]models.CalendarEvent, error)
	ListUpcomingForUser(ctx context.Context, userID int, after time.Time) ([]models.CalendarEvent, error)
	SetReminderFlag(ctx context.Context, eventID int, stage models.ReminderStage) error
}

const eventColumns = `id, group_id, created_by, topic, description, start_time, end_time, location, meeting_link, organizer_name, session_type, passcode, status, created_at, reminder_sent, reminder_1_hour_sent, reminder_10_min_sent, reminder_1_min_sent`

// EventRepo is a sqlx-backed implementation.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create persists a new event with all reminder flags cleared.
func (r *EventRepo) Create(ctx context.Context, event models.CalendarEvent) (models.CalendarEvent, error) {
	var saved models.CalendarEvent
	err := r.db.QueryRowxContext(ctx, `INSERT INTO calendar_events
        (group_id, created_by, topic, description, start_time, end_time, location, meeting_link, organizer_name, session_type, passcode, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
        RETURNING `+eventColumns,
		event.GroupID, event.CreatedBy, event.Topic, event.Description, event.StartTime, event.EndTime,
		event.Location, event.MeetingLink, event.OrganizerName, event.SessionType, event.Passcode, event.Status).
		StructScan(&saved)
	return saved, err
}

// Get fetches a single event.
func (r *EventRepo) Get(ctx context.Context, eventID int) (models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM calendar_events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalendarEvent{}, ErrEventNotFound
	}
	return event, err
}

// Update rewrites the editable fields and the reminder flags in one statement,
// so a start-time re-arm persists atomically with the new start.
func (r *EventRepo) Update(ctx context.Context, event models.CalendarEvent) error {
	res, err := r.db.ExecContext(ctx, `UPDATE calendar_events SET
        topic=$1, description=$2, start_time=$3, end_time=$4, location=$5, meeting_link=$6, organizer_name=$7, session_type=$8, passcode=$9, status=$10,
        reminder_sent=$11, reminder_1_hour_sent=$12, reminder_10_min_sent=$13, reminder_1_min_sent=$14
        WHERE id=$15`,
		event.Topic, event.Description, event.StartTime, event.EndTime, event.Location, event.MeetingLink,
		event.OrganizerName, event.SessionType, event.Passcode, event.Status,
		event.ReminderSent, event.Reminder1HourSent, event.Reminder10MinSent, event.Reminder1MinSent, event.ID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event.
func (r *EventRepo) Delete(ctx context.Context, eventID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id=$1`, eventID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByGroup returns the group's events by start time.
func (r *EventRepo) ListByGroup(ctx context.Context, groupID int) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM calendar_events WHERE group_id=$1 ORDER BY start_time ASC`, groupID)
	return events, err
}

// ListStartingBetween returns events whose start time falls inside the window.
func (r *EventRepo) ListStartingBetween(ctx context.Context, from time.Time, to time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM calendar_events WHERE start_time > $1 AND start_time <= $2 ORDER BY start_time ASC`, from, to)
	return events, err
}

// ListUpcomingForUser returns future events across the user's groups,
// soonest first.
func (r *EventRepo) ListUpcomingForUser(ctx context.Context, userID int, after time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := r.db.SelectContext(ctx, &events, `SELECT e.id, e.group_id, e.created_by, e.topic, e.description, e.start_time, e.end_time, e.location, e.meeting_link, e.organizer_name, e.session_type, e.passcode, e.status, e.created_at, e.reminder_sent, e.reminder_1_hour_sent, e.reminder_10_min_sent, e.reminder_1_min_sent
        FROM calendar_events e
        INNER JOIN group_members gm ON gm.group_id = e.group_id
        WHERE gm.user_id=$1 AND e.start_time > $2
        ORDER BY e.start_time ASC`, userID, after)
	return events, err
}

// SetReminderFlag marks one reminder stage as attempted for the event.
func (r *EventRepo) SetReminderFlag(ctx context.Context, eventID int, stage models.ReminderStage) error {
	var column string
	switch stage {
	case models.Stage1Hour:
		column = "reminder_1_hour_sent"
	case models.Stage10Min:
		column = "reminder_10_min_sent"
	case models.Stage1Min:
		column = "reminder_1_min_sent"
	default:
		return errors.New("unknown reminder stage")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE calendar_events SET `+column+` = TRUE WHERE id=$1`, eventID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}
