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
)

func setupGroupRouter(userID int) (*gin.Engine, *mocks.GroupRepositoryMock, *mocks.UserRepositoryMock) {
	gin.SetMode(gin.TestMode)

	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewGroupHandler(groupRepo, userRepo, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups", handler.ListGroups)
	r.GET("/groups/:group_id/members", handler.ListMembers)
	return r, groupRepo, userRepo
}

func TestCreateGroupSuccess(t *testing.T) {
	router, groupRepo, userRepo := setupGroupRouter(1)

	userRepo.On("BulkUsers", mock.Anything, []int{2}).
		Return([]models.User{{ID: 2, Name: "bob"}}, nil).Once()
	groupRepo.On("CreateGroup", mock.Anything, 1, "algebra club", []int{2}).
		Return(models.Group{ID: 5, Name: "algebra club", OwnerID: 1}, nil).Once()

	body := bytes.NewBufferString(`{"name":"algebra club","member_ids":[2]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateGroupUnknownMember(t *testing.T) {
	router, groupRepo, userRepo := setupGroupRouter(1)

	userRepo.On("BulkUsers", mock.Anything, []int{2, 3}).
		Return([]models.User{{ID: 2, Name: "bob"}}, nil).Once()

	body := bytes.NewBufferString(`{"name":"algebra club","member_ids":[2,3]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	groupRepo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupInvalidBody(t *testing.T) {
	router, _, _ := setupGroupRouter(1)

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGroups(t *testing.T) {
	router, groupRepo, _ := setupGroupRouter(1)

	groupRepo.On("ListGroupsForUser", mock.Anything, 1).
		Return([]models.Group{{ID: 5, Name: "algebra club", OwnerID: 1}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestListMembersNonMember(t *testing.T) {
	router, groupRepo, _ := setupGroupRouter(3)

	groupRepo.On("IsMember", mock.Anything, 5, 3).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/5/members", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
}
