package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studygroup-chat-service/internal/mocks"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/ws"
)

type eventMocks struct {
	eventRepo        *mocks.EventRepositoryMock
	groupRepo        *mocks.GroupRepositoryMock
	userRepo         *mocks.UserRepositoryMock
	notificationRepo *mocks.NotificationRepositoryMock
	sender           *mocks.SenderMock
}

func setupEventRouter(userID int) (*gin.Engine, eventMocks) {
	gin.SetMode(gin.TestMode)

	m := eventMocks{
		eventRepo:        new(mocks.EventRepositoryMock),
		groupRepo:        new(mocks.GroupRepositoryMock),
		userRepo:         new(mocks.UserRepositoryMock),
		notificationRepo: new(mocks.NotificationRepositoryMock),
		sender:           new(mocks.SenderMock),
	}
	notifier := notify.NewNotifier(m.notificationRepo, ws.NewHub())
	handler := NewEventHandler(m.eventRepo, m.groupRepo, m.userRepo, notifier, m.sender, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/groups/:group_id/events", handler.CreateEvent)
	r.GET("/groups/:group_id/events", handler.ListGroupEvents)
	r.GET("/events/upcoming", handler.ListUpcoming)
	r.GET("/events/:event_id", handler.GetEvent)
	r.PUT("/events/:event_id", handler.UpdateEvent)
	r.DELETE("/events/:event_id", handler.DeleteEvent)
	return r, m
}

func eventBody(start, end time.Time) *bytes.Buffer {
	return bytes.NewBufferString(fmt.Sprintf(
		`{"topic":"algebra","description":"chapter 3","start_time":%q,"end_time":%q,"session_type":"online","meeting_link":"https://meet/x"}`,
		start.Format(time.RFC3339), end.Format(time.RFC3339)))
}

func TestCreateEventFansOutToMembers(t *testing.T) {
	router, m := setupEventRouter(1)

	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.userRepo.On("Get", mock.Anything, 1).Return(models.User{ID: 1, Name: "alice"}, nil).Once()
	m.eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(e models.CalendarEvent) bool {
		return e.GroupID == 9 && e.CreatedBy == 1 && e.Status == models.EventStatusOngoing &&
			e.SessionType == models.SessionTypeOnline && !e.Reminder1HourSent
	})).Return(models.CalendarEvent{ID: 4, GroupID: 9, CreatedBy: 1, Topic: "algebra", StartTime: start, EndTime: end}, nil).Once()
	m.groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{
		{GroupID: 9, UserID: 1, Name: "alice", Email: "alice@example.com"},
		{GroupID: 9, UserID: 2, Name: "bob", Email: "bob@example.com"},
	}, nil).Once()
	m.sender.On("SendEmail", "bob@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	m.notificationRepo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == 2 && n.Type == models.NotificationTypeUpdates
	})).Return(models.Notification{ID: 1, UserID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/9/events", eventBody(start, end))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.eventRepo.AssertExpectations(t)
	m.sender.AssertExpectations(t)
	m.notificationRepo.AssertExpectations(t)
}

func TestCreateEventEndBeforeStart(t *testing.T) {
	router, m := setupEventRouter(1)

	start := time.Now().Add(2 * time.Hour)
	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/9/events", eventBody(start, start.Add(-time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	m.eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateEventForbiddenForPlainMember(t *testing.T) {
	router, m := setupEventRouter(3)

	start := time.Now().Add(2 * time.Hour)
	m.eventRepo.On("Get", mock.Anything, 4).
		Return(models.CalendarEvent{ID: 4, GroupID: 9, CreatedBy: 1, StartTime: start}, nil).Once()
	m.groupRepo.On("RoleInGroup", mock.Anything, 9, 3).Return(models.RoleMember, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/events/4", eventBody(start, start.Add(time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	m.eventRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateEventAdminAllowed(t *testing.T) {
	router, m := setupEventRouter(3)

	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	m.eventRepo.On("Get", mock.Anything, 4).
		Return(models.CalendarEvent{ID: 4, GroupID: 9, CreatedBy: 1, StartTime: start, EndTime: start.Add(time.Hour)}, nil).Once()
	m.groupRepo.On("RoleInGroup", mock.Anything, 9, 3).Return(models.RoleAdmin, nil).Once()
	m.eventRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	m.groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/events/4", eventBody(start, start.Add(time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.eventRepo.AssertExpectations(t)
}

func TestUpdateEventStartChangeRearmsReminders(t *testing.T) {
	router, m := setupEventRouter(1)

	oldStart := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	newStart := oldStart.Add(24 * time.Hour)

	m.eventRepo.On("Get", mock.Anything, 4).Return(models.CalendarEvent{
		ID: 4, GroupID: 9, CreatedBy: 1,
		StartTime: oldStart, EndTime: oldStart.Add(time.Hour),
		ReminderSent: true, Reminder1HourSent: true, Reminder10MinSent: true, Reminder1MinSent: true,
	}, nil).Once()
	m.eventRepo.On("Update", mock.Anything, mock.MatchedBy(func(e models.CalendarEvent) bool {
		return e.StartTime.Equal(newStart) &&
			!e.ReminderSent && !e.Reminder1HourSent && !e.Reminder10MinSent && !e.Reminder1MinSent
	})).Return(nil).Once()
	m.groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/events/4", eventBody(newStart, newStart.Add(time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.eventRepo.AssertExpectations(t)
}

func TestUpdateEventUnchangedStartKeepsFlags(t *testing.T) {
	router, m := setupEventRouter(1)

	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	m.eventRepo.On("Get", mock.Anything, 4).Return(models.CalendarEvent{
		ID: 4, GroupID: 9, CreatedBy: 1,
		StartTime: start, EndTime: start.Add(time.Hour),
		Reminder1HourSent: true,
	}, nil).Once()
	m.eventRepo.On("Update", mock.Anything, mock.MatchedBy(func(e models.CalendarEvent) bool {
		return e.Reminder1HourSent
	})).Return(nil).Once()
	m.groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/events/4", eventBody(start, start.Add(time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.eventRepo.AssertExpectations(t)
}

func TestDeleteEventNotifiesCancellation(t *testing.T) {
	router, m := setupEventRouter(1)

	start := time.Now().Add(2 * time.Hour)
	m.eventRepo.On("Get", mock.Anything, 4).
		Return(models.CalendarEvent{ID: 4, GroupID: 9, CreatedBy: 1, Topic: "algebra", StartTime: start}, nil).Once()
	m.groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{
		{GroupID: 9, UserID: 2, Name: "bob", Email: "bob@example.com"},
	}, nil).Once()
	m.sender.On("SendEmail", "bob@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	m.notificationRepo.On("Create", mock.Anything, mock.Anything).
		Return(models.Notification{ID: 1, UserID: 2}, nil).Once()
	m.eventRepo.On("Delete", mock.Anything, 4).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/events/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	m.eventRepo.AssertExpectations(t)
	m.sender.AssertExpectations(t)
}

func TestGetEventMemberGated(t *testing.T) {
	router, m := setupEventRouter(5)

	m.eventRepo.On("Get", mock.Anything, 4).
		Return(models.CalendarEvent{ID: 4, GroupID: 9, CreatedBy: 1}, nil).Once()
	m.groupRepo.On("IsMember", mock.Anything, 9, 5).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUpcoming(t *testing.T) {
	router, m := setupEventRouter(1)

	m.eventRepo.On("ListUpcomingForUser", mock.Anything, 1, mock.Anything).
		Return([]models.CalendarEvent{{ID: 4, GroupID: 9, Topic: "algebra"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/upcoming", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []models.CalendarEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
}
