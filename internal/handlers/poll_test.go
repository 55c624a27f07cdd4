package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studygroup-chat-service/internal/mocks"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/ws"
)

type pollMocks struct {
	pollRepo    *mocks.PollRepositoryMock
	messageRepo *mocks.MessageRepositoryMock
	groupRepo   *mocks.GroupRepositoryMock
	userRepo    *mocks.UserRepositoryMock
}

func setupPollRouter(userID int) (*gin.Engine, pollMocks) {
	gin.SetMode(gin.TestMode)

	m := pollMocks{
		pollRepo:    new(mocks.PollRepositoryMock),
		messageRepo: new(mocks.MessageRepositoryMock),
		groupRepo:   new(mocks.GroupRepositoryMock),
		userRepo:    new(mocks.UserRepositoryMock),
	}
	handler := NewPollHandler(m.pollRepo, m.messageRepo, m.groupRepo, m.userRepo, ws.NewHub(), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/groups/:group_id/polls", handler.CreatePoll)
	r.GET("/polls/:poll_id", handler.GetPoll)
	r.POST("/polls/:poll_id/options/:option_id/vote", handler.Vote)
	return r, m
}

func TestCreatePollSuccess(t *testing.T) {
	router, m := setupPollRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pollRepo.On("CreatePoll", mock.Anything, 9, 1, "lunch?", []string{"pizza", "sushi"}).
		Return(
			models.Poll{ID: 5, GroupID: 9, CreatorID: 1, Question: "lunch?"},
			[]models.PollOption{
				{ID: 10, PollID: 5, OptionText: "pizza"},
				{ID: 11, PollID: 5, OptionText: "sushi"},
			}, nil).Once()
	m.messageRepo.On("CreateMessage", mock.Anything, 9, 1, "lunch?", models.MessageTypePoll, mock.Anything).
		Return(models.GroupMessage{ID: 20, GroupID: 9, SenderID: 1, Content: "lunch?", MessageType: models.MessageTypePoll}, nil).Once()
	m.userRepo.On("Get", mock.Anything, 1).Return(models.User{ID: 1, Name: "alice"}, nil).Once()

	body := bytes.NewBufferString(`{"question":"lunch?","options":["pizza","sushi"]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/9/polls", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var dto models.ChatMessageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, models.MessageTypePoll, dto.MessageType)
	require.NotNil(t, dto.PollID)
	require.Equal(t, 5, *dto.PollID)
	require.Len(t, dto.PollOptions, 2)
	m.pollRepo.AssertExpectations(t)
	m.messageRepo.AssertExpectations(t)
}

func TestCreatePollBacksOutOnMessageFailure(t *testing.T) {
	router, m := setupPollRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pollRepo.On("CreatePoll", mock.Anything, 9, 1, "lunch?", []string{"pizza"}).
		Return(
			models.Poll{ID: 5, GroupID: 9, CreatorID: 1, Question: "lunch?"},
			[]models.PollOption{{ID: 10, PollID: 5, OptionText: "pizza"}}, nil).Once()
	m.messageRepo.On("CreateMessage", mock.Anything, 9, 1, "lunch?", models.MessageTypePoll, mock.Anything).
		Return(models.GroupMessage{}, errors.New("insert failed")).Once()
	m.pollRepo.On("DeletePoll", mock.Anything, 5).Return(nil).Once()

	body := bytes.NewBufferString(`{"question":"lunch?","options":["pizza"]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/9/polls", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	m.pollRepo.AssertExpectations(t)
}

func TestCreatePollBlankOption(t *testing.T) {
	router, m := setupPollRouter(1)

	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()

	body := bytes.NewBufferString(`{"question":"lunch?","options":["pizza","  "]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/9/polls", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	m.pollRepo.AssertNotCalled(t, "CreatePoll", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePollNotMember(t *testing.T) {
	router, m := setupPollRouter(3)

	m.groupRepo.On("IsMember", mock.Anything, 9, 3).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"question":"lunch?","options":["pizza"]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/9/polls", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVoteSuccess(t *testing.T) {
	router, m := setupPollRouter(1)

	m.pollRepo.On("GetPoll", mock.Anything, 5).Return(models.Poll{ID: 5, GroupID: 9}, nil).Once()
	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pollRepo.On("IncrementVote", mock.Anything, 5, 10).
		Return(models.PollOption{ID: 10, PollID: 5, OptionText: "pizza", VoteCount: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/polls/5/options/10/vote", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var option models.PollOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &option))
	require.Equal(t, int64(3), option.VoteCount)
	m.pollRepo.AssertExpectations(t)
}

func TestVoteUnknownOption(t *testing.T) {
	router, m := setupPollRouter(1)

	m.pollRepo.On("GetPoll", mock.Anything, 5).Return(models.Poll{ID: 5, GroupID: 9}, nil).Once()
	m.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	m.pollRepo.On("IncrementVote", mock.Anything, 5, 99).
		Return(models.PollOption{}, repositories.ErrOptionNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/polls/5/options/99/vote", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoteUnknownPoll(t *testing.T) {
	router, m := setupPollRouter(1)

	m.pollRepo.On("GetPoll", mock.Anything, 77).Return(models.Poll{}, repositories.ErrPollNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/polls/77/options/1/vote", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	m.pollRepo.AssertNotCalled(t, "IncrementVote", mock.Anything, mock.Anything, mock.Anything)
}
