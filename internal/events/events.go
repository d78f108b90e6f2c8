package events

import (
	"encoding/json"
	"errors"
	"time"

	"chat-notifier/internal/models"
)

// Trigger event types delivered by the platform bridge. Delivery is
// at-least-once; reactors must tolerate duplicates.
const (
	TypeMessageCreated      = "message.created"
	TypeGroupMessageCreated = "group_message.created"
	TypeConversationCreated = "conversation.created"
	TypeUserDeleted         = "user.deleted"
)

// TriggerEvent is the JSON envelope for one document-store trigger firing.
// Document carries the created document verbatim; the id fields mirror the
// path parameters of the trigger.
type TriggerEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId,omitempty"`
	GroupID        string          `json:"groupId,omitempty"`
	MessageID      string          `json:"messageId,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Document       json.RawMessage `json:"document,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
	DeliveryID     string          `json:"deliveryId,omitempty"`
}

var errEmptyDocument = errors.New("trigger event has no document payload")

// DecodeMessage unmarshals the created message document.
func (e TriggerEvent) DecodeMessage() (models.Message, error) {
	var msg models.Message
	if len(e.Document) == 0 {
		return msg, errEmptyDocument
	}
	if err := json.Unmarshal(e.Document, &msg); err != nil {
		return msg, err
	}
	msg.ID = e.MessageID
	return msg, nil
}

// DecodeConversation unmarshals the created conversation document.
func (e TriggerEvent) DecodeConversation() (models.Conversation, error) {
	var conv models.Conversation
	if len(e.Document) == 0 {
		return conv, errEmptyDocument
	}
	if err := json.Unmarshal(e.Document, &conv); err != nil {
		return conv, err
	}
	conv.ID = e.ConversationID
	return conv, nil
}
