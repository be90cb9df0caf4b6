package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

// SendMessageController appends a message as the authenticated viewer.
type SendMessageController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewSendMessageController(m *facade.Messenger, timeout time.Duration) *SendMessageController {
	return &SendMessageController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

// body is validated by the domain so whitespace-only input gets the same error
// as an empty string.
type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		msg, err := h.Messenger.Send(ctx, c.Param("conversationId"), viewerID, req.Body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toMessageResponse(*msg))
	}
}
