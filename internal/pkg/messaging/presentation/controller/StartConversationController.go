package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

// StartConversationController opens (or reopens) the viewer's conversation
// with another user, e.g. from a provider's "Contact" button.
type StartConversationController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewStartConversationController(m *facade.Messenger, timeout time.Duration) *StartConversationController {
	return &StartConversationController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

type startConversationRequest struct {
	OtherID string `json:"other_id" binding:"required"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		id, err := h.Messenger.StartConversation(ctx, viewerID, req.OtherID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"conversation_id": id})
	}
}
