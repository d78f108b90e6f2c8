package reactors

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chat-notifier/internal/events"
	"chat-notifier/internal/notifications"
	"chat-notifier/internal/observability"
	"chat-notifier/internal/repositories"
	"chat-notifier/internal/telemetry"
)

// directThreadSeparator joins the two participant ids in a direct-chat
// thread id.
const directThreadSeparator = "_"

// Notifier sends one push notification, best-effort.
type Notifier interface {
	Send(ctx context.Context, req notifications.SendRequest) error
}

// Reactor processes trigger events. Every handler swallows its errors after
// logging: a reactor must never fail the write it reacts to, and the consumer
// acks the delivery regardless of outcome.
type Reactor struct {
	users         repositories.UserRepository
	conversations repositories.ConversationRepository
	groups        repositories.GroupRepository
	notifier      Notifier
	audit         *telemetry.AuditEmitter
}

// NewReactor constructs a Reactor.
func NewReactor(
	users repositories.UserRepository,
	conversations repositories.ConversationRepository,
	groups repositories.GroupRepository,
	notifier Notifier,
	audit *telemetry.AuditEmitter,
) *Reactor {
	return &Reactor{
		users:         users,
		conversations: conversations,
		groups:        groups,
		notifier:      notifier,
		audit:         audit,
	}
}

// Dispatch routes one trigger event to its handler.
func (r *Reactor) Dispatch(ctx context.Context, ev events.TriggerEvent) {
	switch ev.Type {
	case events.TypeMessageCreated:
		r.HandleMessageCreated(ctx, ev)
	case events.TypeGroupMessageCreated:
		r.HandleGroupMessageCreated(ctx, ev)
	case events.TypeConversationCreated:
		r.HandleConversationCreated(ctx, ev)
	case events.TypeUserDeleted:
		r.HandleUserDeleted(ctx, ev)
	default:
		log.Printf("unknown trigger type %q delivery=%s", ev.Type, ev.DeliveryID)
		observability.IncTriggerEvent(ev.Type, "unknown")
	}
}

// HandleMessageCreated fans out notifications for a new direct message and
// updates the conversation aggregate.
func (r *Reactor) HandleMessageCreated(ctx context.Context, ev events.TriggerEvent) {
	msg, err := ev.DecodeMessage()
	if err != nil {
		log.Printf("message.created: undecodable document conversation=%s: %v", ev.ConversationID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}
	if msg.Deleted() {
		observability.IncTriggerEvent(ev.Type, "skipped")
		return
	}

	conversationID := ev.ConversationID
	conv, err := r.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		// Keep notifying via the id-derived participants; only the counter
		// updates depend on the record.
		log.Printf("message.created: load conversation %s: %v", conversationID, err)
		conv = nil
	}

	var participants []string
	if a, b, ok := splitDirectThreadID(conversationID); ok {
		participants = []string{a, b}
	} else if conv != nil {
		participants = conv.ParticipantIDs
	}

	recipients := recipientsOf(participants, msg.SenderID)

	for _, recipientID := range recipients {
		err := r.notifier.Send(ctx, notifications.SendRequest{
			RecipientID: recipientID,
			SenderID:    msg.SenderID,
			SenderName:  msg.SenderName,
			Content:     msg.Content,
			ThreadID:    conversationID,
			MessageID:   ev.MessageID,
		})
		if err != nil {
			log.Printf("message.created: notify %s in %s: %v", recipientID, conversationID, err)
		}
	}

	if conv != nil {
		batch := r.conversations.NewUpdateBatch(conversationID)
		for _, recipientID := range recipients {
			batch.IncrementUnread(recipientID)
		}
		batch.SetLastMessage(msg.Content, msg.SenderID)
		if err := batch.Commit(ctx); err != nil {
			log.Printf("message.created: update conversation %s: %v", conversationID, err)
			observability.IncTriggerEvent(ev.Type, "error")
			return
		}
	}

	observability.IncTriggerEvent(ev.Type, "ok")
	r.emitAudit(ctx, ev, fmt.Sprintf("message %s in conversation %s fanned out to %d recipients", ev.MessageID, conversationID, len(recipients)))
}

// HandleGroupMessageCreated fans out notifications for a new group message.
// Group threads carry no unread counters.
func (r *Reactor) HandleGroupMessageCreated(ctx context.Context, ev events.TriggerEvent) {
	msg, err := ev.DecodeMessage()
	if err != nil {
		log.Printf("group_message.created: undecodable document group=%s: %v", ev.GroupID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}
	if msg.Deleted() {
		observability.IncTriggerEvent(ev.Type, "skipped")
		return
	}

	group, err := r.groups.GetGroup(ctx, ev.GroupID)
	if err != nil {
		log.Printf("group_message.created: load group %s: %v", ev.GroupID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}
	if group == nil {
		log.Printf("group_message.created: group %s not found", ev.GroupID)
		observability.IncTriggerEvent(ev.Type, "skipped")
		return
	}

	groupName := group.Name
	if groupName == "" {
		groupName = "Group"
	}

	recipients := recipientsOf(group.MemberIDs, msg.SenderID)

	for _, recipientID := range recipients {
		err := r.notifier.Send(ctx, notifications.SendRequest{
			RecipientID: recipientID,
			SenderID:    msg.SenderID,
			SenderName:  msg.SenderName,
			Content:     msg.Content,
			ThreadID:    ev.GroupID,
			MessageID:   ev.MessageID,
			IsGroup:     true,
			GroupName:   groupName,
		})
		if err != nil {
			log.Printf("group_message.created: notify %s in %s: %v", recipientID, ev.GroupID, err)
		}
	}

	observability.IncTriggerEvent(ev.Type, "ok")
	r.emitAudit(ctx, ev, fmt.Sprintf("group message %s in %s fanned out to %d members", ev.MessageID, ev.GroupID, len(recipients)))
}

// HandleConversationCreated initializes the unread-counter map for a new
// conversation. Idempotent: existing counters are never overwritten.
func (r *Reactor) HandleConversationCreated(ctx context.Context, ev events.TriggerEvent) {
	conv, err := ev.DecodeConversation()
	if err != nil {
		log.Printf("conversation.created: undecodable document %s: %v", ev.ConversationID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}

	if len(conv.ParticipantIDs) == 0 || len(conv.UnreadCounts) > 0 {
		observability.IncTriggerEvent(ev.Type, "skipped")
		return
	}

	counts := make(map[string]int64, len(conv.ParticipantIDs))
	for _, participantID := range conv.ParticipantIDs {
		counts[participantID] = 0
	}

	if err := r.conversations.InitUnreadCounts(ctx, ev.ConversationID, counts); err != nil {
		log.Printf("conversation.created: init counters for %s: %v", ev.ConversationID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}
	observability.IncTriggerEvent(ev.Type, "ok")
}

// HandleUserDeleted removes the user profile after account deletion.
func (r *Reactor) HandleUserDeleted(ctx context.Context, ev events.TriggerEvent) {
	if ev.UserID == "" {
		log.Printf("user.deleted: event without user id delivery=%s", ev.DeliveryID)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}

	if err := r.users.DeleteUser(ctx, ev.UserID); err != nil {
		log.Printf("user.deleted: cleanup %s: %v", ev.UserID, err)
		observability.IncTriggerEvent(ev.Type, "error")
		return
	}

	observability.IncTriggerEvent(ev.Type, "ok")
	r.emitAudit(ctx, ev, fmt.Sprintf("profile removed for deleted user %s", ev.UserID))
}

func (r *Reactor) emitAudit(ctx context.Context, ev events.TriggerEvent, text string) {
	r.audit.Emit(ctx, "INFO", text, ev.DeliveryID, nil)
}

// splitDirectThreadID resolves the two participants of an id-derived direct
// chat. Anything other than exactly two non-empty components is not a direct
// thread id.
func splitDirectThreadID(threadID string) (string, string, bool) {
	parts := strings.Split(threadID, directThreadSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// recipientsOf filters the sender out of the participant set, deduplicating
// along the way.
func recipientsOf(participants []string, senderID string) []string {
	seen := make(map[string]struct{}, len(participants))
	recipients := make([]string, 0, len(participants))
	for _, id := range participants {
		if id == "" || id == senderID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients
}
