package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"studygroup-chat-service/internal/email"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/observability"
	"studygroup-chat-service/internal/repositories"
)

// Scheduler fires graduated reminders for upcoming study sessions. Each tick
// scans events starting within the next hour and sends at most one alert per
// event per stage; the stage flag persists the attempt so restarts never
// re-send.
type Scheduler struct {
	eventRepo repositories.EventRepository
	groupRepo repositories.GroupRepository
	notifier  *notify.Notifier
	mail      email.Sender
	interval  time.Duration
}

// New constructs a Scheduler. interval below one second is clamped to the
// 60s default.
func New(eventRepo repositories.EventRepository, groupRepo repositories.GroupRepository, notifier *notify.Notifier, mail email.Sender, interval time.Duration) *Scheduler {
	if interval < time.Second {
		interval = time.Minute
	}
	return &Scheduler{
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		notifier:  notifier,
		mail:      mail,
		interval:  interval,
	}
}

// Run blocks, ticking until ctx is canceled. Each tick runs to completion.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("reminder scheduler started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("reminder scheduler stopped")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	events, err := s.eventRepo.ListStartingBetween(ctx, now, now.Add(time.Hour))
	if err != nil {
		log.Printf("reminder tick: list events: %v", err)
		return
	}

	for _, event := range events {
		// Legacy rows without a creation timestamp cannot be staged.
		if event.CreatedAt == nil {
			continue
		}

		stage := stageFor(now.Sub(*event.CreatedAt))
		if stageSent(event, stage) {
			continue
		}

		s.fire(ctx, event, stage)

		if err := s.eventRepo.SetReminderFlag(ctx, event.ID, stage); err != nil {
			log.Printf("reminder tick: event %d: persist %q flag: %v", event.ID, stage, err)
		}
	}
}

// stageFor maps the event's age to the reminder wording. Freshly created
// events get the short-fuse alert; older ones the full hour notice.
func stageFor(sinceCreation time.Duration) models.ReminderStage {
	switch {
	case sinceCreation < 10*time.Minute:
		return models.Stage1Min
	case sinceCreation < time.Hour:
		return models.Stage10Min
	default:
		return models.Stage1Hour
	}
}

func stageSent(event models.CalendarEvent, stage models.ReminderStage) bool {
	switch stage {
	case models.Stage1Min:
		return event.Reminder1MinSent
	case models.Stage10Min:
		return event.Reminder10MinSent
	default:
		return event.Reminder1HourSent
	}
}

// fire delivers the stage alert to every group member. Member-level failures
// are logged and counted; the loop always finishes.
func (s *Scheduler) fire(ctx context.Context, event models.CalendarEvent, stage models.ReminderStage) {
	members, err := s.groupRepo.ListMembers(ctx, event.GroupID)
	if err != nil {
		log.Printf("reminder: event %d: load members: %v", event.ID, err)
		observability.IncReminderSendFailure()
		return
	}

	subject := fmt.Sprintf("Reminder: %s starts in %s", event.Topic, stage)
	body := fmt.Sprintf("Your study session %q starts at %s (%s). Location: %s.",
		event.Topic, event.StartTime.Format(time.RFC1123), event.SessionType, eventPlace(event))

	entityType := "event"
	eventID := event.ID
	for _, m := range members {
		if m.Email != "" {
			if err := s.mail.SendEmail(m.Email, subject, body); err != nil {
				log.Printf("reminder: event %d: mail to user %d: %v", event.ID, m.UserID, err)
				observability.IncReminderSendFailure()
			}
		}
		if _, err := s.notifier.CreateReminder(ctx, m.UserID, subject, body, &eventID, &entityType); err != nil {
			log.Printf("reminder: event %d: notify user %d: %v", event.ID, m.UserID, err)
			observability.IncReminderSendFailure()
		}
	}

	observability.IncReminderSent(string(stage))
	log.Printf("reminder: event %d stage %q delivered to %d members", event.ID, stage, len(members))
}

func eventPlace(event models.CalendarEvent) string {
	if event.SessionType == models.SessionTypeOnline {
		return event.MeetingLink
	}
	if event.Location != "" {
		return event.Location
	}
	return event.MeetingLink
}
