package models

import "time"

// Calendar event statuses.
const (
	EventStatusOngoing  = "ONGOING"
	EventStatusDone     = "DONE"
	EventStatusCanceled = "CANCELED"
)

// Session types.
const (
	SessionTypeOnline  = "ONLINE"
	SessionTypeOffline = "OFFLINE"
	SessionTypeHybrid  = "HYBRID"
)

// ValidEventStatus reports whether the status belongs to the closed set.
func ValidEventStatus(status string) bool {
	switch status {
	case EventStatusOngoing, EventStatusDone, EventStatusCanceled:
		return true
	}
	return false
}

// ValidSessionType reports whether the session type belongs to the closed set.
func ValidSessionType(sessionType string) bool {
	switch sessionType {
	case SessionTypeOnline, SessionTypeOffline, SessionTypeHybrid:
		return true
	}
	return false
}

// ReminderStage identifies one of the graduated reminder alerts. Each stage
// fires at most once per event, guarded by its flag column.
type ReminderStage string

const (
	Stage1Hour ReminderStage = "1 hour"
	Stage10Min ReminderStage = "10 minutes"
	Stage1Min  ReminderStage = "1 minute"
)

// CalendarEvent is a scheduled study session. CreatedAt is nullable for
// legacy rows; the scheduler skips those. Editing the start time re-arms all
// reminder stages.
type CalendarEvent struct {
	ID            int        `db:"id" json:"id"`
	GroupID       int        `db:"group_id" json:"group_id"`
	CreatedBy     int        `db:"created_by" json:"created_by"`
	Topic         string     `db:"topic" json:"topic"`
	Description   string     `db:"description" json:"description"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	Location      string     `db:"location" json:"location"`
	MeetingLink   string     `db:"meeting_link" json:"meeting_link"`
	OrganizerName string     `db:"organizer_name" json:"organizer_name"`
	SessionType   string     `db:"session_type" json:"session_type"`
	Passcode      string     `db:"passcode" json:"passcode"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`

	// ReminderSent predates the staged flags and is kept for compatibility;
	// it resets together with them on a start-time change.
	ReminderSent      bool `db:"reminder_sent" json:"reminder_sent"`
	Reminder1HourSent bool `db:"reminder_1_hour_sent" json:"reminder_1_hour_sent"`
	Reminder10MinSent bool `db:"reminder_10_min_sent" json:"reminder_10_min_sent"`
	Reminder1MinSent  bool `db:"reminder_1_min_sent" json:"reminder_1_min_sent"`
}
