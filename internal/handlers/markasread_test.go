package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-notifier/internal/mocks"
)

func setupMarkAsReadRouter(handler *MarkAsReadHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	r.POST("/markAsRead", handler.MarkAsRead)
	return r
}

func TestMarkAsReadSuccess(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	handler := NewMarkAsReadHandler(conversations, nil)
	router := setupMarkAsReadRouter(handler, "u1")

	conversations.On("ResetUnread", mock.Anything, "c1", "u1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{"conversationId":"c1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp["result"]["success"])
	conversations.AssertExpectations(t)
}

func TestMarkAsReadNestedDataPayload(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	handler := NewMarkAsReadHandler(conversations, nil)
	router := setupMarkAsReadRouter(handler, "u1")

	conversations.On("ResetUnread", mock.Anything, "c2", "u1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{"data":{"conversationId":"c2"}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	conversations.AssertExpectations(t)
}

func TestMarkAsReadMissingConversationID(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	handler := NewMarkAsReadHandler(conversations, nil)
	router := setupMarkAsReadRouter(handler, "u1")

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	conversations.AssertNotCalled(t, "ResetUnread", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsReadGroupAcknowledgedWithoutMutation(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	handler := NewMarkAsReadHandler(conversations, nil)
	router := setupMarkAsReadRouter(handler, "u1")

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{"conversationId":"g1","isGroup":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	conversations.AssertNotCalled(t, "ResetUnread", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsReadRepoError(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	handler := NewMarkAsReadHandler(conversations, nil)
	router := setupMarkAsReadRouter(handler, "u1")

	conversations.On("ResetUnread", mock.Anything, "c3", "u1").Return(assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{"conversationId":"c3"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["error"])
}

func TestMarkAsReadUnauthenticated(t *testing.T) {
	handler := NewMarkAsReadHandler(new(mocks.ConversationRepositoryMock), nil)
	router := setupMarkAsReadRouter(handler, "")

	req := httptest.NewRequest(http.MethodPost, "/markAsRead", bytes.NewBufferString(`{"conversationId":"c1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
