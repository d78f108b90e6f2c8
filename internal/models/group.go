package models

// Group represents a group thread document. Membership is owned by the chat
// service; this subsystem only reads it to resolve notification recipients.
type Group struct {
	ID        string   `firestore:"-" json:"id"`
	Name      string   `firestore:"name" json:"name"`
	MemberIDs []string `firestore:"memberIds" json:"memberIds"`
}
