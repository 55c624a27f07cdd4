package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/observability"
)

// Hub maintains active websocket rooms: one per group for chat/poll events
// and one per user for notification pushes. Delivery is best-effort; a
// disconnected subscriber recovers from persisted history.
type Hub struct {
	groupRooms    map[int]map[*websocket.Conn]bool
	userRooms     map[int]map[*websocket.Conn]bool
	groupConnInfo map[int]map[*websocket.Conn]ConnInfo
	userConnInfo  map[int]map[*websocket.Conn]ConnInfo
	mu            sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		groupRooms:    make(map[int]map[*websocket.Conn]bool),
		userRooms:     make(map[int]map[*websocket.Conn]bool),
		groupConnInfo: make(map[int]map[*websocket.Conn]ConnInfo),
		userConnInfo:  make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddGroupClient registers a websocket connection to a group room.
func (h *Hub) AddGroupClient(groupID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.groupRooms[groupID]; !ok {
		h.groupRooms[groupID] = make(map[*websocket.Conn]bool)
	}
	h.groupRooms[groupID][conn] = true
	if _, ok := h.groupConnInfo[groupID]; !ok {
		h.groupConnInfo[groupID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.groupConnInfo[groupID][conn] = info
}

// RemoveGroupClient removes a group websocket connection.
func (h *Hub) RemoveGroupClient(groupID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.groupRooms[groupID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.groupRooms, groupID)
		}
	}
	if infos, ok := h.groupConnInfo[groupID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.groupConnInfo, groupID)
		}
	}
}

// AddNotificationClient registers a websocket connection to a user's
// notification room.
func (h *Hub) AddNotificationClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userRooms[userID]; !ok {
		h.userRooms[userID] = make(map[*websocket.Conn]bool)
	}
	h.userRooms[userID][conn] = true
	if _, ok := h.userConnInfo[userID]; !ok {
		h.userConnInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.userConnInfo[userID][conn] = info
}

// RemoveNotificationClient removes a notification websocket connection.
func (h *Hub) RemoveNotificationClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.userRooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.userRooms, userID)
		}
	}
	if infos, ok := h.userConnInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.userConnInfo, userID)
		}
	}
}

// BroadcastGroupMessage sends a chat or poll message DTO to all clients in
// the group room.
func (h *Hub) BroadcastGroupMessage(groupID int, msg models.ChatMessageDTO) {
	h.broadcastToGroup(groupID, msg)
}

// BroadcastPollVote sends a minimal vote update to all clients in the group.
func (h *Hub) BroadcastPollVote(groupID int, vote models.PollVoteDTO) {
	h.broadcastToGroup(groupID, vote)
}

// BroadcastMessageDeletion notifies group clients that a message was removed.
func (h *Hub) BroadcastMessageDeletion(groupID int, messageID int) {
	h.broadcastToGroup(groupID, models.MessageDeletedDTO{
		MessageType: models.MessageTypeDeleted,
		GroupID:     groupID,
		MessageID:   messageID,
	})
}

func (h *Hub) broadcastToGroup(groupID int, event any) {
	h.mu.RLock()
	conns := h.groupRooms[groupID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			h.publishWSError("group", groupID, conn, err)
			conn.Close()
			h.RemoveGroupClient(groupID, conn)
		}
	}
}

// PushNotification delivers a notification DTO to the owner's private room.
// Fire-and-forget: offline users pull from history later.
func (h *Hub) PushNotification(userID int, notification models.Notification) {
	h.mu.RLock()
	conns := h.userRooms[userID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(notification)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			h.publishWSError("notifications", userID, conn, err)
			conn.Close()
			h.RemoveNotificationClient(userID, conn)
		}
	}
}

func (h *Hub) publishWSError(kind string, resourceID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(kind, resourceID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(kind string, resourceID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if kind == "group" {
		if infos, ok := h.groupConnInfo[resourceID]; ok {
			info, exists := infos[conn]
			return info, exists
		}
		return ConnInfo{}, false
	}
	if infos, ok := h.userConnInfo[resourceID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func wsRoutingKey(kind string) string {
	if kind == "group" {
		return "ws_events.groups"
	}
	return "ws_events.notifications"
}
