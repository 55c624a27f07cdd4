package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/telemetry"
	"studygroup-chat-service/internal/ws"
)

// PollHandler manages live poll endpoints.
type PollHandler struct {
	pollRepo    repositories.PollRepository
	messageRepo repositories.MessageRepository
	groupRepo   repositories.GroupRepository
	userRepo    repositories.UserRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewPollHandler constructs a PollHandler.
func NewPollHandler(pollRepo repositories.PollRepository, messageRepo repositories.MessageRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *PollHandler {
	return &PollHandler{
		pollRepo:    pollRepo,
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		hub:         hub,
		audit:       audit,
	}
}

// CreatePoll stores the poll with its options, synthesizes the POLL chat
// message carrying the question, and broadcasts it with the option list.
func (h *PollHandler) CreatePoll(c *gin.Context) {
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

	var req struct {
		Question string   `json:"question" binding:"required"`
		Options  []string `json:"options" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := make([]string, 0, len(req.Options))
	for _, opt := range req.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "blank poll option"})
			return
		}
		options = append(options, opt)
	}
	if len(options) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a poll needs at least one option"})
		return
	}

	poll, pollOptions, err := h.pollRepo.CreatePoll(c.Request.Context(), groupID, userID, req.Question, options)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create poll"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), groupID, userID, poll.Question, models.MessageTypePoll, &poll.ID)
	if err != nil {
		// back out the poll so it never exists without its chat message
		if delErr := h.pollRepo.DeletePoll(c.Request.Context(), poll.ID); delErr != nil {
			log.Printf("failed to back out poll %d: %v", poll.ID, delErr)
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create poll message"})
		return
	}

	dto := models.ChatMessageDTO{
		GroupID:     groupID,
		MessageID:   msg.ID,
		SenderID:    userID,
		Content:     poll.Question,
		Timestamp:   msg.CreatedAt,
		MessageType: models.MessageTypePoll,
		PollID:      &poll.ID,
		PollOptions: pollOptions,
	}
	if creator, err := h.userRepo.Get(c.Request.Context(), userID); err == nil {
		dto.SenderName = creator.Name
	}

	h.hub.BroadcastGroupMessage(groupID, dto)
	h.emitAudit(c, "INFO", "Poll created")
	c.JSON(http.StatusCreated, dto)
}

// GetPoll returns a poll and its options.
func (h *PollHandler) GetPoll(c *gin.Context) {
	pollID, err := strconv.Atoi(c.Param("poll_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	poll, err := h.pollRepo.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPollNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "poll not found"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), poll.GroupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	options, err := h.pollRepo.ListOptions(c.Request.Context(), pollID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load options"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": poll, "options": options})
}

// Vote increments the chosen option atomically and broadcasts the new count.
func (h *PollHandler) Vote(c *gin.Context) {
	pollID, err := strconv.Atoi(c.Param("poll_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}
	optionID, err := strconv.Atoi(c.Param("option_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option id"})
		return
	}

	poll, err := h.pollRepo.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPollNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "poll not found"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), poll.GroupID, userID)
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

	option, err := h.pollRepo.IncrementVote(c.Request.Context(), pollID, optionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrOptionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "option not found"})
		return
	}

	h.hub.BroadcastPollVote(poll.GroupID, models.PollVoteDTO{
		MessageType: models.MessageTypePollVote,
		PollID:      pollID,
		OptionID:    option.ID,
		VoteCount:   option.VoteCount,
	})
	h.emitAudit(c, "INFO", "Poll vote recorded")
	c.JSON(http.StatusOK, option)
}

func (h *PollHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
