package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chat-notifier/internal/models"
)

const conversationsCollection = "conversations"

// ConversationRepository abstracts conversation aggregate persistence.
type ConversationRepository interface {
	// GetConversation returns nil without error when the document does not exist.
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	// NewUpdateBatch starts an atomic aggregate update for one conversation.
	NewUpdateBatch(conversationID string) ConversationBatch
	// ResetUnread zeroes the caller's unread counter, creating the document
	// if necessary without touching other fields.
	ResetUnread(ctx context.Context, conversationID, userID string) error
	// InitUnreadCounts writes the initial counter map for a new conversation.
	InitUnreadCounts(ctx context.Context, conversationID string, counts map[string]int64) error
}

// ConversationBatch accumulates counter increments and last-message fields
// for a single conversation. All queued mutations commit atomically.
type ConversationBatch interface {
	IncrementUnread(userID string)
	SetLastMessage(content, senderID string)
	Commit(ctx context.Context) error
}

// ConversationRepo is a Firestore implementation of ConversationRepository.
type ConversationRepo struct {
	client *firestore.Client
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(client *firestore.Client) *ConversationRepo {
	return &ConversationRepo{client: client}
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	snap, err := r.client.Collection(conversationsCollection).Doc(conversationID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", conversationID, err)
	}

	var conv models.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", conversationID, err)
	}
	conv.ID = snap.Ref.ID
	return &conv, nil
}

// NewUpdateBatch starts an aggregate update for the conversation.
func (r *ConversationRepo) NewUpdateBatch(conversationID string) ConversationBatch {
	return &conversationBatch{
		ref: r.client.Collection(conversationsCollection).Doc(conversationID),
	}
}

// ResetUnread merge-writes a zero counter for the user.
func (r *ConversationRepo) ResetUnread(ctx context.Context, conversationID, userID string) error {
	_, err := r.client.Collection(conversationsCollection).Doc(conversationID).Set(ctx,
		map[string]interface{}{
			"unreadCounts": map[string]interface{}{userID: 0},
		},
		firestore.Merge(firestore.FieldPath{"unreadCounts", userID}),
	)
	if err != nil {
		return fmt.Errorf("reset unread for %s in %s: %w", userID, conversationID, err)
	}
	return nil
}

// InitUnreadCounts sets the counter map on an existing conversation document.
func (r *ConversationRepo) InitUnreadCounts(ctx context.Context, conversationID string, counts map[string]int64) error {
	_, err := r.client.Collection(conversationsCollection).Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "unreadCounts", Value: counts},
	})
	if err != nil {
		return fmt.Errorf("init unread counts for %s: %w", conversationID, err)
	}
	return nil
}

// conversationBatch queues field updates and commits them as one write, so
// all counter increments and last-message fields land together or not at all.
type conversationBatch struct {
	ref     *firestore.DocumentRef
	updates []firestore.Update
}

func (b *conversationBatch) IncrementUnread(userID string) {
	b.updates = append(b.updates, firestore.Update{
		FieldPath: firestore.FieldPath{"unreadCounts", userID},
		Value:     firestore.Increment(1),
	})
}

func (b *conversationBatch) SetLastMessage(content, senderID string) {
	b.updates = append(b.updates,
		firestore.Update{Path: "lastMessage", Value: content},
		firestore.Update{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
		firestore.Update{Path: "lastSenderId", Value: senderID},
	)
}

func (b *conversationBatch) Commit(ctx context.Context) error {
	if len(b.updates) == 0 {
		return nil
	}
	if _, err := b.ref.Update(ctx, b.updates); err != nil {
		return fmt.Errorf("commit conversation update %s: %w", b.ref.ID, err)
	}
	return nil
}
