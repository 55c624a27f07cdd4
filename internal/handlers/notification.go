package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/telemetry"
)

// NotificationHandler manages the per-user notification hub endpoints. Every
// mutation re-derives the owner from the authenticated context.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	notifier         *notify.Notifier
	audit            *telemetry.AuditEmitter
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, notifier *notify.Notifier, audit *telemetry.AuditEmitter) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		notifier:         notifier,
		audit:            audit,
	}
}

// CreateNotification stores a notification and pushes it to the recipient's
// live channel when one is open.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req struct {
		UserID            int     `json:"user_id" binding:"required"`
		Title             *string `json:"title"`
		Message           string  `json:"message" binding:"required"`
		Type              string  `json:"type" binding:"required"`
		RelatedEntityID   *int    `json:"related_entity_id"`
		RelatedEntityType *string `json:"related_entity_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidNotificationType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification type"})
		return
	}

	saved, err := h.notifier.Create(c.Request.Context(), req.UserID, req.Title, req.Message, req.Type, req.RelatedEntityID, req.RelatedEntityType)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create notification"})
		return
	}

	h.emitAudit(c, "INFO", "Notification created")
	c.JSON(http.StatusCreated, saved)
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("userID")
	notifications, err := h.notificationRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// ListUnreadNotifications returns only the caller's unread notifications.
func (h *NotificationHandler) ListUnreadNotifications(c *gin.Context) {
	userID := c.GetInt("userID")
	notifications, err := h.notificationRepo.ListUnreadForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead marks one notification read after verifying ownership.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := c.GetInt("userID")
	notification, err := h.notificationRepo.Get(c.Request.Context(), notificationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "notification not found"})
		return
	}
	if notification.UserID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not your notification"})
		return
	}

	if err := h.notificationRepo.MarkRead(c.Request.Context(), notificationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("userID")
	if err := h.notificationRepo.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRead deletes all read notifications of the caller.
func (h *NotificationHandler) DeleteRead(c *gin.Context) {
	userID := c.GetInt("userID")
	if err := h.notificationRepo.DeleteRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete notifications"})
		return
	}
	h.emitAudit(c, "INFO", "Read notifications deleted")
	c.Status(http.StatusNoContent)
}

// DeleteSelected deletes a batch of the caller's notifications. The batch is
// all-or-nothing: one missing or foreign id rejects the whole request.
func (h *NotificationHandler) DeleteSelected(c *gin.Context) {
	var req struct {
		NotificationIDs []int `json:"notification_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.NotificationIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty id list"})
		return
	}

	ids := make([]int, 0, len(req.NotificationIDs))
	seen := map[int]struct{}{}
	for _, id := range req.NotificationIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	userID := c.GetInt("userID")
	notifications, err := h.notificationRepo.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	if len(notifications) != len(ids) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	for _, n := range notifications {
		if n.UserID != userID {
			h.emitAudit(c, "ERROR", "not allowed")
			c.JSON(http.StatusForbidden, gin.H{"error": "not your notification"})
			return
		}
	}

	if err := h.notificationRepo.DeleteByIDs(c.Request.Context(), ids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete notifications"})
		return
	}

	h.emitAudit(c, "INFO", "Notifications deleted")
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
