package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"studygroup-chat-service/internal/email"
	"studygroup-chat-service/internal/models"
	"studygroup-chat-service/internal/repositories"
)

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, ownerID int, name string, memberIDs []int) (models.Group, error) {
	args := m.Called(ctx, ownerID, name, memberIDs)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID int, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) RoleInGroup(ctx context.Context, groupID int, userID int) (string, error) {
	args := m.Called(ctx, groupID, userID)
	return args.String(0), args.Error(1)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	var members []models.GroupMember
	if val := args.Get(0); val != nil {
		members = val.([]models.GroupMember)
	}
	return members, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, groupID int, senderID int, content string, messageType string, pollID *int) (models.GroupMessage, error) {
	args := m.Called(ctx, groupID, senderID, content, messageType, pollID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID)
	var msgs []models.GroupMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.GroupMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int, senderID int) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

type ReplyRepositoryMock struct {
	mock.Mock
}

func (m *ReplyRepositoryMock) CreateReply(ctx context.Context, replyMessageID int, originalMessageID int, replierID int) (models.MessageReply, error) {
	args := m.Called(ctx, replyMessageID, originalMessageID, replierID)
	var reply models.MessageReply
	if val := args.Get(0); val != nil {
		reply = val.(models.MessageReply)
	}
	return reply, args.Error(1)
}

func (m *ReplyRepositoryMock) GetReplyInfo(ctx context.Context, replyMessageID int) (models.ReplyInfo, error) {
	args := m.Called(ctx, replyMessageID)
	var info models.ReplyInfo
	if val := args.Get(0); val != nil {
		info = val.(models.ReplyInfo)
	}
	return info, args.Error(1)
}

func (m *ReplyRepositoryMock) ListReplyInfoForGroup(ctx context.Context, groupID int) ([]models.ReplyInfo, error) {
	args := m.Called(ctx, groupID)
	var infos []models.ReplyInfo
	if val := args.Get(0); val != nil {
		infos = val.([]models.ReplyInfo)
	}
	return infos, args.Error(1)
}

func (m *ReplyRepositoryMock) DeleteRepliesForMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type PollRepositoryMock struct {
	mock.Mock
}

func (m *PollRepositoryMock) CreatePoll(ctx context.Context, groupID int, creatorID int, question string, options []string) (models.Poll, []models.PollOption, error) {
	args := m.Called(ctx, groupID, creatorID, question, options)
	var poll models.Poll
	if val := args.Get(0); val != nil {
		poll = val.(models.Poll)
	}
	var pollOptions []models.PollOption
	if val := args.Get(1); val != nil {
		pollOptions = val.([]models.PollOption)
	}
	return poll, pollOptions, args.Error(2)
}

func (m *PollRepositoryMock) GetPoll(ctx context.Context, pollID int) (models.Poll, error) {
	args := m.Called(ctx, pollID)
	var poll models.Poll
	if val := args.Get(0); val != nil {
		poll = val.(models.Poll)
	}
	return poll, args.Error(1)
}

func (m *PollRepositoryMock) ListOptions(ctx context.Context, pollID int) ([]models.PollOption, error) {
	args := m.Called(ctx, pollID)
	var options []models.PollOption
	if val := args.Get(0); val != nil {
		options = val.([]models.PollOption)
	}
	return options, args.Error(1)
}

func (m *PollRepositoryMock) DeletePoll(ctx context.Context, pollID int) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func (m *PollRepositoryMock) IncrementVote(ctx context.Context, pollID int, optionID int) (models.PollOption, error) {
	args := m.Called(ctx, pollID, optionID)
	var option models.PollOption
	if val := args.Get(0); val != nil {
		option = val.(models.PollOption)
	}
	return option, args.Error(1)
}

type PinRepositoryMock struct {
	mock.Mock
}

func (m *PinRepositoryMock) Pin(ctx context.Context, groupID int, messageID int, userID int) (models.PinnedMessage, error) {
	args := m.Called(ctx, groupID, messageID, userID)
	var pin models.PinnedMessage
	if val := args.Get(0); val != nil {
		pin = val.(models.PinnedMessage)
	}
	return pin, args.Error(1)
}

func (m *PinRepositoryMock) Unpin(ctx context.Context, groupID int, messageID int) error {
	args := m.Called(ctx, groupID, messageID)
	return args.Error(0)
}

func (m *PinRepositoryMock) ListPinned(ctx context.Context, groupID int) ([]models.PinnedMessage, error) {
	args := m.Called(ctx, groupID)
	var pins []models.PinnedMessage
	if val := args.Get(0); val != nil {
		pins = val.([]models.PinnedMessage)
	}
	return pins, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, notification models.Notification) (models.Notification, error) {
	args := m.Called(ctx, notification)
	var saved models.Notification
	if val := args.Get(0); val != nil {
		saved = val.(models.Notification)
	}
	return saved, args.Error(1)
}

func (m *NotificationRepositoryMock) Get(ctx context.Context, notificationID int) (models.Notification, error) {
	args := m.Called(ctx, notificationID)
	var notification models.Notification
	if val := args.Get(0); val != nil {
		notification = val.(models.Notification)
	}
	return notification, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) ListUnreadForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID int) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) DeleteRead(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) GetByIDs(ctx context.Context, notificationIDs []int) ([]models.Notification, error) {
	args := m.Called(ctx, notificationIDs)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) DeleteByIDs(ctx context.Context, notificationIDs []int) error {
	args := m.Called(ctx, notificationIDs)
	return args.Error(0)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) Create(ctx context.Context, event models.CalendarEvent) (models.CalendarEvent, error) {
	args := m.Called(ctx, event)
	var saved models.CalendarEvent
	if val := args.Get(0); val != nil {
		saved = val.(models.CalendarEvent)
	}
	return saved, args.Error(1)
}

func (m *EventRepositoryMock) Get(ctx context.Context, eventID int) (models.CalendarEvent, error) {
	args := m.Called(ctx, eventID)
	var event models.CalendarEvent
	if val := args.Get(0); val != nil {
		event = val.(models.CalendarEvent)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) Update(ctx context.Context, event models.CalendarEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepositoryMock) Delete(ctx context.Context, eventID int) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *EventRepositoryMock) ListByGroup(ctx context.Context, groupID int) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, groupID)
	var events []models.CalendarEvent
	if val := args.Get(0); val != nil {
		events = val.([]models.CalendarEvent)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) ListStartingBetween(ctx context.Context, from time.Time, to time.Time) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, from, to)
	var events []models.CalendarEvent
	if val := args.Get(0); val != nil {
		events = val.([]models.CalendarEvent)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) ListUpcomingForUser(ctx context.Context, userID int, after time.Time) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, userID, after)
	var events []models.CalendarEvent
	if val := args.Get(0); val != nil {
		events = val.([]models.CalendarEvent)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) SetReminderFlag(ctx context.Context, eventID int, stage models.ReminderStage) error {
	args := m.Called(ctx, eventID, stage)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Get(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReplyRepository = (*ReplyRepositoryMock)(nil)
var _ repositories.PollRepository = (*PollRepositoryMock)(nil)
var _ repositories.PinRepository = (*PinRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.EventRepository = (*EventRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ email.Sender = (*SenderMock)(nil)
