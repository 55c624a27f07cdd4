package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/telemetry"
)

// PinHandler manages pinned-message endpoints.
type PinHandler struct {
	pinRepo     repositories.PinRepository
	messageRepo repositories.MessageRepository
	groupRepo   repositories.GroupRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewPinHandler constructs a PinHandler.
func NewPinHandler(pinRepo repositories.PinRepository, messageRepo repositories.MessageRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *PinHandler {
	return &PinHandler{
		pinRepo:     pinRepo,
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// PinMessage handles POST /groups/:group_id/messages/:message_id/pin.
// Pinning an already pinned message yields 409.
func (h *PinHandler) PinMessage(c *gin.Context) {
	groupID, messageID, ok := parseGroupMessageIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMember(c, groupID, userID) {
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.GroupID != groupID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to group"})
		return
	}

	pin, err := h.pinRepo.Pin(c.Request.Context(), groupID, messageID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyPinned) {
			c.JSON(http.StatusConflict, gin.H{"error": "message already pinned"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not pin message"})
		return
	}

	h.emitAudit(c, "INFO", "Message pinned")
	c.JSON(http.StatusCreated, pin)
}

// UnpinMessage handles DELETE /groups/:group_id/messages/:message_id/pin.
// Unpinning a message that is not pinned yields 404.
func (h *PinHandler) UnpinMessage(c *gin.Context) {
	groupID, messageID, ok := parseGroupMessageIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMember(c, groupID, userID) {
		return
	}

	if err := h.pinRepo.Unpin(c.Request.Context(), groupID, messageID); err != nil {
		if errors.Is(err, repositories.ErrNotPinned) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message is not pinned"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unpin message"})
		return
	}

	h.emitAudit(c, "INFO", "Message unpinned")
	c.Status(http.StatusNoContent)
}

// ListPinned returns the group's pinned messages with their content and
// sender names.
func (h *PinHandler) ListPinned(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMember(c, groupID, userID) {
		return
	}

	pins, err := h.pinRepo.ListPinned(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pins"})
		return
	}

	type pinnedResponse struct {
		models.PinnedMessage
		Content    string `json:"content"`
		SenderID   int    `json:"sender_id"`
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]pinnedResponse, 0, len(pins))
	for _, pin := range pins {
		entry := pinnedResponse{PinnedMessage: pin}
		if msg, err := h.messageRepo.GetMessage(c.Request.Context(), pin.MessageID); err == nil {
			entry.Content = msg.Content
			entry.SenderID = msg.SenderID
			if sender, err := h.userRepo.Get(c.Request.Context(), msg.SenderID); err == nil {
				entry.SenderName = sender.Name
			}
		}
		resp = append(resp, entry)
	}

	c.JSON(http.StatusOK, gin.H{"pinned_messages": resp})
}

func (h *PinHandler) requireMember(c *gin.Context, groupID, userID int) bool {
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return false
	}
	return true
}

func (h *PinHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
