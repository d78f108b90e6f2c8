package notifications

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"

	"chat-notifier/internal/observability"
	"chat-notifier/internal/repositories"
)

const (
	maxBodyLength = 100
	fallbackTitle = "New message"

	typeDirectMessage = "new_message"
	typeGroupMessage  = "group_message"
)

// Messenger is the outbound push collaborator. *messaging.Client satisfies it.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// isTokenStale classifies the two permanent-failure codes that mean the
// stored token will never work again. Overridable in tests because the SDK's
// error values cannot be constructed outside its internal package.
var isTokenStale = func(err error) bool {
	return messaging.IsRegistrationTokenNotRegistered(err) || errorutils.IsInvalidArgument(err)
}

// SendRequest describes one notification attempt for one recipient.
type SendRequest struct {
	RecipientID string
	SenderID    string
	SenderName  string
	Content     string
	ThreadID    string
	MessageID   string
	IsGroup     bool
	GroupName   string
}

// Notifier builds and delivers push notifications, best-effort and
// at-most-once. Delivery failures never propagate to the caller; stale
// tokens are purged from the recipient's profile.
type Notifier struct {
	users     repositories.UserRepository
	messenger Messenger
	webAppURL string
}

// NewNotifier constructs a Notifier. webAppURL, when set, is used for the
// webpush click-through link.
func NewNotifier(users repositories.UserRepository, messenger Messenger, webAppURL string) *Notifier {
	return &Notifier{users: users, messenger: messenger, webAppURL: webAppURL}
}

// Send attempts one push delivery. Missing recipients, disabled preferences
// and absent tokens are silent no-ops. Only recipient-lookup failures are
// returned as errors.
func (n *Notifier) Send(ctx context.Context, req SendRequest) error {
	user, err := n.users.GetUser(ctx, req.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", req.RecipientID, err)
	}
	if user == nil {
		observability.IncNotificationSkip("missing_user")
		return nil
	}
	if user.NotificationsDisabled() {
		observability.IncNotificationSkip("disabled")
		return nil
	}
	if user.FCMToken == "" {
		observability.IncNotificationSkip("no_token")
		return nil
	}

	message := n.buildMessage(user.FCMToken, req)

	if _, err := n.messenger.Send(ctx, message); err != nil {
		observability.IncNotificationFailure()
		log.Printf("notification send failed recipient=%s message=%s: %v", req.RecipientID, req.MessageID, err)

		if isTokenStale(err) {
			if err := n.users.ClearFCMToken(ctx, req.RecipientID); err != nil {
				log.Printf("stale token cleanup failed recipient=%s: %v", req.RecipientID, err)
			} else {
				observability.IncTokenPurged()
				log.Printf("purged stale fcm token recipient=%s", req.RecipientID)
			}
		}
		return nil
	}

	observability.IncNotificationSent()
	return nil
}

func (n *Notifier) buildMessage(token string, req SendRequest) *messaging.Message {
	title := fallbackTitle
	switch {
	case req.IsGroup && req.GroupName != "" && req.SenderName != "":
		title = fmt.Sprintf("%s in %s", req.SenderName, req.GroupName)
	case req.SenderName != "":
		title = req.SenderName
	}

	msgType := typeDirectMessage
	if req.IsGroup {
		msgType = typeGroupMessage
	}

	data := map[string]string{
		"type":           msgType,
		"conversationId": req.ThreadID,
		"messageId":      req.MessageID,
		"senderId":       req.SenderID,
		"senderName":     req.SenderName,
		"click_action":   "FLUTTER_NOTIFICATION_CLICK",
	}
	if req.IsGroup && req.GroupName != "" {
		data["groupName"] = req.GroupName
	}

	badge := 1
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  truncateBody(req.Content),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default", Badge: &badge},
			},
		},
	}

	if n.webAppURL != "" {
		message.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: fmt.Sprintf("%s/?conversation=%s", n.webAppURL, req.ThreadID),
			},
		}
	}

	return message
}

func truncateBody(content string) string {
	runes := []rune(content)
	if len(runes) <= maxBodyLength {
		return content
	}
	return string(runes[:maxBodyLength]) + "..."
}
