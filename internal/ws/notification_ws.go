package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studygroup-chat-service/internal/middleware"
	"studygroup-chat-service/internal/observability"
)

// NotificationWebSocketHandler handles per-user notification subscriptions.
// The room is derived from the authenticated identity, so a caller can only
// ever subscribe to their own queue.
type NotificationWebSocketHandler struct {
	hub       *Hub
	validator *middleware.TokenValidator
}

// NewNotificationWebSocketHandler constructs a NotificationWebSocketHandler.
func NewNotificationWebSocketHandler(hub *Hub, validator *middleware.TokenValidator) *NotificationWebSocketHandler {
	return &NotificationWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades and registers a websocket connection for the caller's
// notification room.
func (h *NotificationWebSocketHandler) Handle(c *gin.Context) {
	userID, err := authenticate(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddNotificationClient(userID, conn, info)

	observability.IncWSActive("notifications")
	observability.IncWSEvent("notifications", "ws_connect")
	publishLifecycleEvent(c.Request.Context(), "notifications", userID, info, "ws_connect", "", 0)

	go func() {
		defer func() {
			h.hub.RemoveNotificationClient(userID, conn)
			conn.Close()
			observability.DecWSActive("notifications")
			observability.IncWSEvent("notifications", "ws_disconnect")
			publishLifecycleEvent(context.Background(), "notifications", userID, info, "ws_disconnect", "", time.Since(info.ConnectedAt).Milliseconds())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// authenticate extracts the bearer token from the header or, for browser
// websocket clients that cannot set headers, the "token" query parameter.
func authenticate(c *gin.Context, validator *middleware.TokenValidator) (int, error) {
	header := c.GetHeader("Authorization")
	token := ""
	if header != "" {
		parts := splitBearer(header)
		if parts == "" {
			return 0, errors.New("invalid authorization header")
		}
		token = parts
	} else {
		token = c.Query("token")
	}
	if token == "" {
		return 0, errors.New("missing token")
	}
	return validator.ValidateToken(token)
}

func publishLifecycleEvent(ctx context.Context, kind string, resourceID int, info ConnInfo, event, reason string, durationMS int64) {
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        kind,
				"resource_id": resourceID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": durationMS,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
