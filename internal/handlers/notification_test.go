package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studygroup-chat-service/internal/mocks"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/ws"
)

func setupNotificationRouter(userID int) (*gin.Engine, *mocks.NotificationRepositoryMock) {
	gin.SetMode(gin.TestMode)

	repo := new(mocks.NotificationRepositoryMock)
	handler := NewNotificationHandler(repo, notify.NewNotifier(repo, ws.NewHub()), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/notifications", handler.CreateNotification)
	r.GET("/notifications", handler.ListNotifications)
	r.GET("/notifications/unread", handler.ListUnreadNotifications)
	r.PUT("/notifications/:notification_id/read", handler.MarkRead)
	r.PUT("/notifications/read-all", handler.MarkAllRead)
	r.DELETE("/notifications/read", handler.DeleteRead)
	r.DELETE("/notifications/selected", handler.DeleteSelected)
	return r, repo
}

func TestCreateNotificationSuccess(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == 2 && n.Message == "welcome" && n.Type == models.NotificationTypeInvites
	})).Return(models.Notification{ID: 7, UserID: 2, Message: "welcome", Type: models.NotificationTypeInvites}, nil).Once()

	body := bytes.NewBufferString(`{"user_id":2,"message":"welcome","type":"Invites"}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestCreateNotificationUnknownType(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	body := bytes.NewBufferString(`{"user_id":2,"message":"welcome","type":"Spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListUnreadNotifications(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("ListUnreadForUser", mock.Anything, 1).Return([]models.Notification{
		{ID: 1, UserID: 1, Message: "hello", IsRead: false},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestMarkReadOwnerMismatch(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("Get", mock.Anything, 7).Return(models.Notification{ID: 7, UserID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/notifications/7/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestMarkReadSuccess(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("Get", mock.Anything, 7).Return(models.Notification{ID: 7, UserID: 1}, nil).Once()
	repo.On("MarkRead", mock.Anything, 7).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/notifications/7/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestMarkAllRead(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("MarkAllRead", mock.Anything, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteSelectedForeignIDRejectsWholeBatch(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("GetByIDs", mock.Anything, []int{4, 5}).Return([]models.Notification{
		{ID: 4, UserID: 1},
		{ID: 5, UserID: 2},
	}, nil).Once()

	body := bytes.NewBufferString(`{"notification_ids":[4,5]}`)
	req := httptest.NewRequest(http.MethodDelete, "/notifications/selected", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
}

func TestDeleteSelectedMissingIDRejectsWholeBatch(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("GetByIDs", mock.Anything, []int{4, 99}).Return([]models.Notification{
		{ID: 4, UserID: 1},
	}, nil).Once()

	body := bytes.NewBufferString(`{"notification_ids":[4,99]}`)
	req := httptest.NewRequest(http.MethodDelete, "/notifications/selected", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
}

func TestDeleteSelectedDeduplicatesIDs(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("GetByIDs", mock.Anything, []int{4}).Return([]models.Notification{
		{ID: 4, UserID: 1},
	}, nil).Once()
	repo.On("DeleteByIDs", mock.Anything, []int{4}).Return(nil).Once()

	body := bytes.NewBufferString(`{"notification_ids":[4,4]}`)
	req := httptest.NewRequest(http.MethodDelete, "/notifications/selected", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteSelectedSuccess(t *testing.T) {
	router, repo := setupNotificationRouter(1)

	repo.On("GetByIDs", mock.Anything, []int{4, 5}).Return([]models.Notification{
		{ID: 4, UserID: 1},
		{ID: 5, UserID: 1},
	}, nil).Once()
	repo.On("DeleteByIDs", mock.Anything, []int{4, 5}).Return(nil).Once()

	body := bytes.NewBufferString(`{"notification_ids":[4,5]}`)
	req := httptest.NewRequest(http.MethodDelete, "/notifications/selected", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}
