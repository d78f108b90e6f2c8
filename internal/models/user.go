package models

// User represents a chat user profile document.
type User struct {
	ID                   string `firestore:"-" json:"id"`
	DisplayName          string `firestore:"displayName" json:"displayName"`
	FCMToken             string `firestore:"fcmToken" json:"fcmToken"`
	NotificationsEnabled *bool  `firestore:"notificationsEnabled" json:"notificationsEnabled"`
}

// NotificationsDisabled reports whether the user has explicitly opted out.
// An absent flag means notifications stay enabled.
func (u User) NotificationsDisabled() bool {
	return u.NotificationsEnabled != nil && !*u.NotificationsEnabled
}
