package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/email"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/telemetry"
)

const relatedEntityEvent = "event"

// EventHandler manages study-session endpoints. Creation, updates and
// cancellations fan out to the group members over mail and the notification
// hub; a failed delivery to one member never blocks the rest.
type EventHandler struct {
	eventRepo repositories.EventRepository
	groupRepo repositories.GroupRepository
	userRepo  repositories.UserRepository
	notifier  *notify.Notifier
	mail      email.Sender
	audit     *telemetry.AuditEmitter
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(eventRepo repositories.EventRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, notifier *notify.Notifier, mail email.Sender, audit *telemetry.AuditEmitter) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		mail:      mail,
		audit:     audit,
	}
}

type eventRequest struct {
	Topic       string    `json:"topic" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Location    string    `json:"location"`
	MeetingLink string    `json:"meeting_link"`
	SessionType string    `json:"session_type"`
	Passcode    string    `json:"passcode"`
	Status      string    `json:"status"`
}

func (r *eventRequest) validate() string {
	r.SessionType = strings.ToUpper(strings.TrimSpace(r.SessionType))
	if r.SessionType == "" {
		r.SessionType = models.SessionTypeOnline
	}
	if !models.ValidSessionType(r.SessionType) {
		return "unknown session type"
	}
	if !r.EndTime.After(r.StartTime) {
		return "end time must be after start time"
	}
	if r.Status != "" {
		r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
		if !models.ValidEventStatus(r.Status) {
			return "unknown event status"
		}
	}
	return ""
}

// CreateEvent handles POST /groups/:group_id/events.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	organizerName := ""
	if organizer, err := h.userRepo.Get(c.Request.Context(), userID); err == nil {
		organizerName = organizer.Name
	}

	event, err := h.eventRepo.Create(c.Request.Context(), models.CalendarEvent{
		GroupID:       groupID,
		CreatedBy:     userID,
		Topic:         req.Topic,
		Description:   req.Description,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      req.Location,
		MeetingLink:   req.MeetingLink,
		OrganizerName: organizerName,
		SessionType:   req.SessionType,
		Passcode:      req.Passcode,
		Status:        models.EventStatusOngoing,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
		return
	}

	subject := fmt.Sprintf("New study session: %s", event.Topic)
	body := fmt.Sprintf("%s scheduled a study session %q starting %s.", organizerName, event.Topic, event.StartTime.Format(time.RFC1123))
	h.fanOut(c, event, subject, body, userID)

	h.emitAudit(c, "INFO", "Event created")
	c.JSON(http.StatusCreated, event)
}

// GetEvent returns one event, visible to group members only.
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, ok := h.loadEvent(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), event.GroupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListGroupEvents returns the group's events ordered by start time.
func (h *EventHandler) ListGroupEvents(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	events, err := h.eventRepo.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ListUpcoming returns events starting after now across the caller's groups.
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	userID := c.GetInt("userID")
	events, err := h.eventRepo.ListUpcomingForUser(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// UpdateEvent handles PUT /events/:event_id. Only the creator or a group
// Admin may edit; moving the start time re-arms all reminder stages.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	event, ok := h.loadEvent(c)
	if !ok {
		return
	}
	if !h.requireEditor(c, event) {
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	startChanged := !req.StartTime.Equal(event.StartTime)

	event.Topic = req.Topic
	event.Description = req.Description
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Location = req.Location
	event.MeetingLink = req.MeetingLink
	event.SessionType = req.SessionType
	event.Passcode = req.Passcode
	if req.Status != "" {
		event.Status = req.Status
	}
	if startChanged {
		event.ReminderSent = false
		event.Reminder1HourSent = false
		event.Reminder10MinSent = false
		event.Reminder1MinSent = false
	}

	if err := h.eventRepo.Update(c.Request.Context(), event); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
		return
	}

	userID := c.GetInt("userID")
	subject := fmt.Sprintf("Study session updated: %s", event.Topic)
	body := fmt.Sprintf("The study session %q was updated; it now starts %s.", event.Topic, event.StartTime.Format(time.RFC1123))
	h.fanOut(c, event, subject, body, userID)

	h.emitAudit(c, "INFO", "Event updated")
	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/:event_id. Members are told about the
// cancellation before the row goes away.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	event, ok := h.loadEvent(c)
	if !ok {
		return
	}
	if !h.requireEditor(c, event) {
		return
	}

	userID := c.GetInt("userID")
	subject := fmt.Sprintf("Study session canceled: %s", event.Topic)
	body := fmt.Sprintf("The study session %q planned for %s was canceled.", event.Topic, event.StartTime.Format(time.RFC1123))
	h.fanOut(c, event, subject, body, userID)

	if err := h.eventRepo.Delete(c.Request.Context(), event.ID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
		return
	}

	h.emitAudit(c, "INFO", "Event deleted")
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) loadEvent(c *gin.Context) (models.CalendarEvent, bool) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return models.CalendarEvent{}, false
	}

	event, err := h.eventRepo.Get(c.Request.Context(), eventID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return models.CalendarEvent{}, false
	}
	return event, true
}

func (h *EventHandler) requireEditor(c *gin.Context, event models.CalendarEvent) bool {
	userID := c.GetInt("userID")
	if event.CreatedBy == userID {
		return true
	}

	role, err := h.groupRepo.RoleInGroup(c.Request.Context(), event.GroupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "role check failed"})
		return false
	}
	if role != models.RoleAdmin {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator or a group admin may modify the event"})
		return false
	}
	return true
}

// fanOut mails and notifies every group member except the actor. Failures
// are logged per member and do not stop the loop.
func (h *EventHandler) fanOut(c *gin.Context, event models.CalendarEvent, subject, body string, excludeUserID int) {
	members, err := h.groupRepo.ListMembers(c.Request.Context(), event.GroupID)
	if err != nil {
		log.Printf("event %d: failed to load members for fan-out: %v", event.ID, err)
		return
	}

	entityType := relatedEntityEvent
	eventID := event.ID
	for _, m := range members {
		if m.UserID == excludeUserID {
			continue
		}
		if m.Email != "" {
			if err := h.mail.SendEmail(m.Email, subject, body); err != nil {
				log.Printf("event %d: mail to user %d failed: %v", event.ID, m.UserID, err)
			}
		}
		if _, err := h.notifier.CreateUpdate(c.Request.Context(), m.UserID, subject, body, &eventID, &entityType); err != nil {
			log.Printf("event %d: notification for user %d failed: %v", event.ID, m.UserID, err)
		}
	}
}

func (h *EventHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
