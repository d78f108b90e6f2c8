package mocks

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/mock"

	"chat-notifier/internal/models"
	"chat-notifier/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ClearFCMToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv *models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) NewUpdateBatch(conversationID string) repositories.ConversationBatch {
	args := m.Called(conversationID)
	var batch repositories.ConversationBatch
	if val := args.Get(0); val != nil {
		batch = val.(repositories.ConversationBatch)
	}
	return batch
}

func (m *ConversationRepositoryMock) ResetUnread(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) InitUnreadCounts(ctx context.Context, conversationID string, counts map[string]int64) error {
	args := m.Called(ctx, conversationID, counts)
	return args.Error(0)
}

// ConversationBatchMock records queued aggregate mutations for assertions.
type ConversationBatchMock struct {
	mock.Mock
}

func (m *ConversationBatchMock) IncrementUnread(userID string) {
	m.Called(userID)
}

func (m *ConversationBatchMock) SetLastMessage(content, senderID string) {
	m.Called(content, senderID)
}

func (m *ConversationBatchMock) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	args := m.Called(ctx, groupID)
	var group *models.Group
	if val := args.Get(0); val != nil {
		group = val.(*models.Group)
	}
	return group, args.Error(1)
}

type MessengerMock struct {
	mock.Mock
}

func (m *MessengerMock) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type TokenVerifierMock struct {
	mock.Mock
}

func (m *TokenVerifierMock) Verify(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.ConversationBatch = (*ConversationBatchMock)(nil)
var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
