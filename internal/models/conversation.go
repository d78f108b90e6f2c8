package models

import "time"

// Conversation represents a direct conversation document. The document id of
// a direct chat is the two participant ids joined with "_"; group threads use
// independent ids.
type Conversation struct {
	ID              string           `firestore:"-" json:"id"`
	ParticipantIDs  []string         `firestore:"participantIds" json:"participantIds"`
	UnreadCounts    map[string]int64 `firestore:"unreadCounts" json:"unreadCounts"`
	LastMessage     string           `firestore:"lastMessage" json:"lastMessage"`
	LastMessageTime time.Time        `firestore:"lastMessageTime" json:"lastMessageTime"`
	LastSenderID    string           `firestore:"lastSenderId" json:"lastSenderId"`
}
