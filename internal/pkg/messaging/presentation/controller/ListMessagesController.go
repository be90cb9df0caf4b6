package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

// ListMessagesController returns a thread without touching read state.
type ListMessagesController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewListMessagesController(m *facade.Messenger, timeout time.Duration) *ListMessagesController {
	return &ListMessagesController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

func (h *ListMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		msgs, err := h.Messenger.ListMessages(ctx, c.Param("conversationId"), viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs), "count": len(msgs)})
	}
}
