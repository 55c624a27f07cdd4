package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/telemetry"
	"studygroup-chat-service/internal/ws"
)

// ChatHandler manages group messaging endpoints.
type ChatHandler struct {
	messageRepo repositories.MessageRepository
	replyRepo   repositories.ReplyRepository
	pollRepo    repositories.PollRepository
	groupRepo   repositories.GroupRepository
	userRepo    repositories.UserRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(messageRepo repositories.MessageRepository, replyRepo repositories.ReplyRepository, pollRepo repositories.PollRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		messageRepo: messageRepo,
		replyRepo:   replyRepo,
		pollRepo:    pollRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		hub:         hub,
		audit:       audit,
	}
}

// PostGroupMessage persists a message, links the optional reply target and
// broadcasts the decorated DTO to group subscribers.
func (h *ChatHandler) PostGroupMessage(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMember(c, groupID, userID) {
		return
	}

	var req struct {
		Content          string `json:"content" binding:"required"`
		MessageType      string `json:"message_type"`
		ReplyToMessageID *int   `json:"reply_to_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messageType := strings.ToUpper(strings.TrimSpace(req.MessageType))
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if !models.ValidSendType(messageType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported message type"})
		return
	}

	// A reply target that no longer exists does not block the message; the
	// link is simply skipped and the message lands unthreaded.
	var original models.GroupMessage
	linkReply := false
	if req.ReplyToMessageID != nil {
		original, err = h.messageRepo.GetMessage(c.Request.Context(), *req.ReplyToMessageID)
		switch {
		case err == nil:
			if original.GroupID != groupID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "reply target belongs to another group"})
				return
			}
			linkReply = true
		case errors.Is(err, repositories.ErrMessageNotFound):
			// deleted or never existed: drop the link, keep the message
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve reply target"})
			return
		}
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), groupID, userID, req.Content, messageType, nil)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	dto := models.ChatMessageDTO{
		GroupID:     msg.GroupID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		Timestamp:   msg.CreatedAt,
		MessageType: msg.MessageType,
	}
	if sender, err := h.userRepo.Get(c.Request.Context(), userID); err == nil {
		dto.SenderName = sender.Name
	}

	if linkReply {
		if _, err := h.replyRepo.CreateReply(c.Request.Context(), msg.ID, original.ID, userID); err != nil {
			h.emitAudit(c, "ERROR", "internal error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link reply"})
			return
		}
		if info, err := h.replyRepo.GetReplyInfo(c.Request.Context(), msg.ID); err == nil {
			originalID := info.OriginalMessageID
			dto.ReplyToMessageID = &originalID
			dto.ReplyToContent = info.OriginalContent
			dto.ReplyToSender = info.OriginalSenderName
		}
	}

	h.hub.BroadcastGroupMessage(groupID, dto)
	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, dto)
}

// GetGroupMessages returns the group history decorated with sender names,
// reply context and poll options.
func (h *ChatHandler) GetGroupMessages(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMember(c, groupID, userID) {
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	replyByMessageID := map[int]models.ReplyInfo{}
	if infos, err := h.replyRepo.ListReplyInfoForGroup(c.Request.Context(), groupID); err == nil {
		for _, info := range infos {
			replyByMessageID[info.ReplyMessageID] = info
		}
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	nameByID := map[int]string{}
	if len(senderIDs) > 0 {
		users, err := h.userRepo.BulkUsers(c.Request.Context(), senderIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
			return
		}
		for _, u := range users {
			nameByID[u.ID] = u.Name
		}
	}

	resp := make([]models.ChatMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		dto := models.ChatMessageDTO{
			GroupID:     m.GroupID,
			MessageID:   m.ID,
			SenderID:    m.SenderID,
			SenderName:  nameByID[m.SenderID],
			Content:     m.Content,
			Timestamp:   m.CreatedAt,
			MessageType: m.MessageType,
			PollID:      m.PollID,
		}
		if info, ok := replyByMessageID[m.ID]; ok {
			originalID := info.OriginalMessageID
			dto.ReplyToMessageID = &originalID
			dto.ReplyToContent = info.OriginalContent
			dto.ReplyToSender = info.OriginalSenderName
		}
		if m.MessageType == models.MessageTypePoll && m.PollID != nil {
			if options, err := h.pollRepo.ListOptions(c.Request.Context(), *m.PollID); err == nil {
				dto.PollOptions = options
			}
		}
		resp = append(resp, dto)
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// DeleteGroupMessage removes a message (sender only), drops its reply links
// and notifies subscribers.
func (h *ChatHandler) DeleteGroupMessage(c *gin.Context) {
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
			h.emitAudit(c, "ERROR", "message not found")
		} else {
			h.emitAudit(c, "ERROR", "internal error")
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.GroupID != groupID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to group"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to delete")
		c.JSON(http.StatusForbidden, gin.H{"error": "only sender may delete"})
		return
	}

	if err := h.replyRepo.DeleteRepliesForMessage(c.Request.Context(), messageID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete"})
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete"})
		return
	}

	h.hub.BroadcastMessageDeletion(groupID, messageID)
	h.emitAudit(c, "INFO", "Group message deleted")
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) requireMember(c *gin.Context, groupID, userID int) bool {
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

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseGroupMessageIDs(c *gin.Context) (int, int, bool) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, 0, false
	}
	msgID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, 0, false
	}
	return groupID, msgID, true
}
