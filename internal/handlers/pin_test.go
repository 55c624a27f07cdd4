package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studygroup-chat-service/internal/mocks"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
)

type pinMocks struct {
	pinRepo     *mocks.PinRepositoryMock
	messageRepo *mocks.MessageRepositoryMock
	groupRepo   *mocks.GroupRepositoryMock
	userRepo    *mocks.UserRepositoryMock
}

func setupPinRouter(userID int) (*gin.Engine, pinMocks) {
	gin.SetMode(gin.TestMode)

	m := pinMocks{
		pinRepo:     new(mocks.PinRepositoryMock),
		messageRepo: new(mocks.MessageRepositoryMock),
		groupRepo:   new(mocks.GroupRepositoryMock),
		userRepo:    new(mocks.UserRepositoryMock),
	}
	handler := NewPinHandler(m.pinRepo, m.messageRepo, m.groupRepo, m.userRepo, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/groups/:group_id/pins/:message_id", handler.PinMessage)
	r.DELETE("/groups/:group_id/pins/:message_id", handler.UnpinMessage)
	r.GET("/groups/:group_id/pins", handler.ListPinned)
	return r, m
}

func TestPinMessageSuccess(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.messageRepo.On("GetMessage", mock.Anything, 3).
		Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 2}, nil).Once()
	m.pinRepo.On("Pin", mock.Anything, 9, 3, 1).
		Return(models.PinnedMessage{ID: 1, GroupID: 9, MessageID: 3, PinnedBy: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/9/pins/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.pinRepo.AssertExpectations(t)
}

func TestPinMessageAlreadyPinned(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.messageRepo.On("GetMessage", mock.Anything, 3).
		Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 2}, nil).Once()
	m.pinRepo.On("Pin", mock.Anything, 9, 3, 1).
		Return(models.PinnedMessage{}, repositories.ErrAlreadyPinned).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/9/pins/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPinMessageWrongGroup(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.messageRepo.On("GetMessage", mock.Anything, 3).
		Return(models.GroupMessage{ID: 3, GroupID: 12, SenderID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/9/pins/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	m.pinRepo.AssertNotCalled(t, "Pin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnpinMessageNotPinned(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pinRepo.On("Unpin", mock.Anything, 9, 3).Return(repositories.ErrNotPinned).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/9/pins/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnpinMessageSuccess(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pinRepo.On("Unpin", mock.Anything, 9, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/9/pins/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListPinnedDecorated(t *testing.T) {
	router, m := setupPinRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pinRepo.On("ListPinned", mock.Anything, 9).Return([]models.PinnedMessage{
		{ID: 1, GroupID: 9, MessageID: 3, PinnedBy: 1},
	}, nil).Once()
	m.messageRepo.On("GetMessage", mock.Anything, 3).
		Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 2, Content: "important"}, nil).Once()
	m.userRepo.On("Get", mock.Anything, 2).Return(models.User{ID: 2, Name: "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/9/pins", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PinnedMessages []struct {
			MessageID  int    `json:"message_id"`
			Content    string `json:"content"`
			SenderName string `json:"sender_name"`
		} `json:"pinned_messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.PinnedMessages, 1)
	require.Equal(t, "important", resp.PinnedMessages[0].Content)
	require.Equal(t, "bob", resp.PinnedMessages[0].SenderName)
}
