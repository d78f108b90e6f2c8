package reactors

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-notifier/internal/events"
	"chat-notifier/internal/mocks"
	"chat-notifier/internal/models"
	"chat-notifier/internal/notifications"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Send(ctx context.Context, req notifications.SendRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type fixture struct {
	users         *mocks.UserRepositoryMock
	conversations *mocks.ConversationRepositoryMock
	groups        *mocks.GroupRepositoryMock
	notifier      *notifierMock
	reactor       *Reactor
}

func newFixture() *fixture {
	f := &fixture{
		users:         new(mocks.UserRepositoryMock),
		conversations: new(mocks.ConversationRepositoryMock),
		groups:        new(mocks.GroupRepositoryMock),
		notifier:      new(notifierMock),
	}
	f.reactor = NewReactor(f.users, f.conversations, f.groups, f.notifier, nil)
	return f
}

func messageEvent(conversationID, messageID string, doc string) events.TriggerEvent {
	return events.TriggerEvent{
		Type:           events.TypeMessageCreated,
		ConversationID: conversationID,
		MessageID:      messageID,
		Document:       json.RawMessage(doc),
	}
}

func sendTo(recipientID string) interface{} {
	return mock.MatchedBy(func(req notifications.SendRequest) bool {
		return req.RecipientID == recipientID
	})
}

func TestMessageCreatedDirectThreadWithoutConversation(t *testing.T) {
	f := newFixture()

	f.conversations.On("GetConversation", mock.Anything, "alice_bob").Return((*models.Conversation)(nil), nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(req notifications.SendRequest) bool {
		return req.RecipientID == "bob" &&
			req.SenderID == "alice" &&
			req.ThreadID == "alice_bob" &&
			req.MessageID == "m1" &&
			!req.IsGroup
	})).Return(nil).Once()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("alice_bob", "m1", `{"senderId":"alice","senderName":"Alice","content":"hi"}`))

	f.notifier.AssertExpectations(t)
	f.conversations.AssertNotCalled(t, "NewUpdateBatch", mock.Anything)
}

func TestMessageCreatedUpdatesConversationAggregate(t *testing.T) {
	f := newFixture()

	conv := &models.Conversation{ID: "room1", ParticipantIDs: []string{"alice", "bob", "carol"}}
	batch := new(mocks.ConversationBatchMock)

	f.conversations.On("GetConversation", mock.Anything, "room1").Return(conv, nil).Once()
	f.notifier.On("Send", mock.Anything, sendTo("bob")).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, sendTo("carol")).Return(nil).Once()
	f.conversations.On("NewUpdateBatch", "room1").Return(batch).Once()
	batch.On("IncrementUnread", "bob").Once()
	batch.On("IncrementUnread", "carol").Once()
	batch.On("SetLastMessage", "hi", "alice").Once()
	batch.On("Commit", mock.Anything).Return(nil).Once()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("room1", "m2", `{"senderId":"alice","senderName":"Alice","content":"hi"}`))

	f.notifier.AssertExpectations(t)
	f.conversations.AssertExpectations(t)
	batch.AssertExpectations(t)
}

func TestMessageCreatedNotificationFailureStillCommits(t *testing.T) {
	f := newFixture()

	conv := &models.Conversation{ID: "alice_bob", ParticipantIDs: []string{"alice", "bob"}}
	batch := new(mocks.ConversationBatchMock)

	f.conversations.On("GetConversation", mock.Anything, "alice_bob").Return(conv, nil).Once()
	f.notifier.On("Send", mock.Anything, sendTo("bob")).Return(assert.AnError).Once()
	f.conversations.On("NewUpdateBatch", "alice_bob").Return(batch).Once()
	batch.On("IncrementUnread", "bob").Once()
	batch.On("SetLastMessage", "hi", "alice").Once()
	batch.On("Commit", mock.Anything).Return(nil).Once()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("alice_bob", "m3", `{"senderId":"alice","senderName":"Alice","content":"hi"}`))

	batch.AssertExpectations(t)
}

func TestMessageCreatedSkipsDeletedForEveryone(t *testing.T) {
	f := newFixture()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("alice_bob", "m4", `{"senderId":"alice","content":"hi","isDeletedForEveryone":true}`))

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.conversations.AssertNotCalled(t, "GetConversation", mock.Anything, mock.Anything)
}

func TestMessageCreatedSkipsPerUserDeleted(t *testing.T) {
	f := newFixture()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("alice_bob", "m5", `{"senderId":"alice","content":"hi","deletedForUsers":["bob"]}`))

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMessageCreatedNoParticipantsResolvable(t *testing.T) {
	f := newFixture()

	f.conversations.On("GetConversation", mock.Anything, "room9").Return((*models.Conversation)(nil), nil).Once()

	f.reactor.HandleMessageCreated(context.Background(),
		messageEvent("room9", "m6", `{"senderId":"alice","content":"hi"}`))

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.conversations.AssertNotCalled(t, "NewUpdateBatch", mock.Anything)
}

func TestGroupMessageCreatedFansOutToMembers(t *testing.T) {
	f := newFixture()

	group := &models.Group{ID: "g1", Name: "Team", MemberIDs: []string{"alice", "bob", "carol"}}
	f.groups.On("GetGroup", mock.Anything, "g1").Return(group, nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(req notifications.SendRequest) bool {
		return req.RecipientID == "bob" && req.IsGroup && req.GroupName == "Team" && req.ThreadID == "g1"
	})).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(req notifications.SendRequest) bool {
		return req.RecipientID == "carol" && req.IsGroup && req.GroupName == "Team"
	})).Return(nil).Once()

	f.reactor.HandleGroupMessageCreated(context.Background(), events.TriggerEvent{
		Type:      events.TypeGroupMessageCreated,
		GroupID:   "g1",
		MessageID: "m7",
		Document:  json.RawMessage(`{"senderId":"alice","senderName":"Alice","content":"hi"}`),
	})

	f.notifier.AssertExpectations(t)
	f.conversations.AssertNotCalled(t, "NewUpdateBatch", mock.Anything)
}

func TestGroupMessageCreatedMissingGroup(t *testing.T) {
	f := newFixture()

	f.groups.On("GetGroup", mock.Anything, "g2").Return((*models.Group)(nil), nil).Once()

	f.reactor.HandleGroupMessageCreated(context.Background(), events.TriggerEvent{
		Type:      events.TypeGroupMessageCreated,
		GroupID:   "g2",
		MessageID: "m8",
		Document:  json.RawMessage(`{"senderId":"alice","content":"hi"}`),
	})

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestConversationCreatedInitializesCounters(t *testing.T) {
	f := newFixture()

	f.conversations.On("InitUnreadCounts", mock.Anything, "c1", map[string]int64{"alice": 0, "bob": 0}).Return(nil).Once()

	f.reactor.HandleConversationCreated(context.Background(), events.TriggerEvent{
		Type:           events.TypeConversationCreated,
		ConversationID: "c1",
		Document:       json.RawMessage(`{"participantIds":["alice","bob"]}`),
	})

	f.conversations.AssertExpectations(t)
}

func TestConversationCreatedIdempotent(t *testing.T) {
	f := newFixture()

	f.reactor.HandleConversationCreated(context.Background(), events.TriggerEvent{
		Type:           events.TypeConversationCreated,
		ConversationID: "c1",
		Document:       json.RawMessage(`{"participantIds":["alice","bob"],"unreadCounts":{"alice":2,"bob":0}}`),
	})

	f.conversations.AssertNotCalled(t, "InitUnreadCounts", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserDeletedRemovesProfile(t *testing.T) {
	f := newFixture()

	f.users.On("DeleteUser", mock.Anything, "u1").Return(nil).Once()

	f.reactor.HandleUserDeleted(context.Background(), events.TriggerEvent{
		Type:   events.TypeUserDeleted,
		UserID: "u1",
	})

	f.users.AssertExpectations(t)
}

func TestUserDeletedSwallowsFailure(t *testing.T) {
	f := newFixture()

	f.users.On("DeleteUser", mock.Anything, "u1").Return(assert.AnError).Once()

	require.NotPanics(t, func() {
		f.reactor.HandleUserDeleted(context.Background(), events.TriggerEvent{
			Type:   events.TypeUserDeleted,
			UserID: "u1",
		})
	})
}

func TestDispatchRoutesByType(t *testing.T) {
	f := newFixture()

	f.users.On("DeleteUser", mock.Anything, "u2").Return(nil).Once()

	f.reactor.Dispatch(context.Background(), events.TriggerEvent{Type: events.TypeUserDeleted, UserID: "u2"})
	f.reactor.Dispatch(context.Background(), events.TriggerEvent{Type: "something.else"})

	f.users.AssertExpectations(t)
}

func TestSplitDirectThreadID(t *testing.T) {
	a, b, ok := splitDirectThreadID("alice_bob")
	require.True(t, ok)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	_, _, ok = splitDirectThreadID("a_b_c")
	assert.False(t, ok)

	_, _, ok = splitDirectThreadID("_bob")
	assert.False(t, ok)

	_, _, ok = splitDirectThreadID("room1")
	assert.False(t, ok)
}
