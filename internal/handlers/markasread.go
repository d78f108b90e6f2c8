package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-notifier/internal/repositories"
	"chat-notifier/internal/telemetry"
)

// MarkAsReadHandler resets the caller's unread counter for a conversation.
type MarkAsReadHandler struct {
	conversations repositories.ConversationRepository
	audit         *telemetry.AuditEmitter
}

// NewMarkAsReadHandler builds a MarkAsReadHandler.
func NewMarkAsReadHandler(conversations repositories.ConversationRepository, audit *telemetry.AuditEmitter) *MarkAsReadHandler {
	return &MarkAsReadHandler{conversations: conversations, audit: audit}
}

type markAsReadPayload struct {
	ConversationID string `json:"conversationId"`
	IsGroup        bool   `json:"isGroup"`
}

type markAsReadRequest struct {
	markAsReadPayload
	// Callable-style clients nest the payload under a data field.
	Data *markAsReadPayload `json:"data"`
}

// MarkAsRead zeroes the caller's unread counter via a merge-write, creating
// the conversation document's counter field if it does not yet exist.
func (h *MarkAsReadHandler) MarkAsRead(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req markAsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payload := req.markAsReadPayload
	if req.Data != nil {
		payload = *req.Data
	}

	if payload.ConversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId missing"})
		return
	}

	if payload.IsGroup {
		// Group unread tracking is out of scope for now; acknowledge only.
		log.Printf("mark-as-read acknowledged for group %s user=%s", payload.ConversationID, userID)
	} else {
		if err := h.conversations.ResetUnread(c.Request.Context(), payload.ConversationID, userID); err != nil {
			log.Printf("mark-as-read failed conversation=%s user=%s: %v", payload.ConversationID, userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	h.audit.Emit(c.Request.Context(), "INFO", "conversation "+payload.ConversationID+" marked as read", requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"result": gin.H{"success": true}})
}
