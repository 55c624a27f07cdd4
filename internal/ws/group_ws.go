package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"studygroup-chat-service/internal/middleware"
	"studygroup-chat-service/internal/observability"
	"studygroup-chat-service/internal/repositories"
)

// GroupWebSocketHandler handles group broadcast subscriptions.
type GroupWebSocketHandler struct {
	hub       *Hub
	groupRepo repositories.GroupRepository
	validator *middleware.TokenValidator
}

// NewGroupWebSocketHandler constructs a GroupWebSocketHandler.
func NewGroupWebSocketHandler(hub *Hub, groupRepo repositories.GroupRepository, validator *middleware.TokenValidator) *GroupWebSocketHandler {
	return &GroupWebSocketHandler{hub: hub, groupRepo: groupRepo, validator: validator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades and registers a websocket connection for a group room.
func (h *GroupWebSocketHandler) Handle(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	ctx, span := otel.Tracer("studygroup-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := authenticate(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for group"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddGroupClient(groupID, conn, info)

	observability.IncWSActive("group")
	observability.IncWSEvent("group", "ws_connect")
	publishLifecycleEvent(ctx, "group", groupID, info, "ws_connect", "", 0)

	go func() {
		defer func() {
			h.hub.RemoveGroupClient(groupID, conn)
			conn.Close()
			observability.DecWSActive("group")
			observability.IncWSEvent("group", "ws_disconnect")
			publishLifecycleEvent(ctx, "group", groupID, info, "ws_disconnect", "", time.Since(info.ConnectedAt).Milliseconds())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
