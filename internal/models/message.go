package models

import "time"

// Message represents a chat message document. Messages belong to a
// conversation or group subcollection and are read-only here except for the
// deletion flags, which are owned by the chat service.
type Message struct {
	ID                   string    `firestore:"-" json:"id"`
	SenderID             string    `firestore:"senderId" json:"senderId"`
	SenderName           string    `firestore:"senderName" json:"senderName"`
	Content              string    `firestore:"content" json:"content"`
	IsDeletedForEveryone bool      `firestore:"isDeletedForEveryone" json:"isDeletedForEveryone"`
	DeletedForUsers      []string  `firestore:"deletedForUsers" json:"deletedForUsers"`
	CreatedAt            time.Time `firestore:"createdAt" json:"createdAt"`
}

// Deleted reports whether the message was retracted globally or hidden by at
// least one user. Deleted messages never trigger notifications.
func (m Message) Deleted() bool {
	return m.IsDeletedForEveryone || len(m.DeletedForUsers) > 0
}
