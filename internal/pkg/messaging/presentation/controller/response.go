package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/infrastructure/middleware"
	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	"go-prestachat/internal/pkg/messaging/application/usecase"
)

const defaultTimeout = 3 * time.Second

type messageResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"created_at"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at"`
}

func toMessageResponse(m messaging.Message) messageResponse {
	return messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
		Read:           m.Read,
		ReadAt:         m.ReadAt,
	}
}

func toMessageResponses(msgs []messaging.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

type summaryResponse struct {
	ConversationID       string     `json:"conversation_id"`
	OtherParticipantID   string     `json:"other_participant_id"`
	OtherParticipantName string     `json:"other_participant_name"`
	LastMessageText      *string    `json:"last_message_text"`
	LastMessageAt        *time.Time `json:"last_message_at"`
	UnreadCount          int64      `json:"unread_count"`
}

// respondError maps domain and persistence errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, messaging.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, messaging.ErrAuthorization):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, messaging.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, usecase.ErrPersistence):
		msg = "storage unavailable, please retry"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

// viewer returns the authenticated viewer or writes a 401.
func viewer(c *gin.Context) (string, bool) {
	id := middleware.ViewerID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return id, true
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
