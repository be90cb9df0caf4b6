package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

// OpenConversationController returns the thread and marks it read. The
// returned messages show read flags as they were before this call.
type OpenConversationController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewOpenConversationController(m *facade.Messenger, timeout time.Duration) *OpenConversationController {
	return &OpenConversationController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

func (h *OpenConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		th, err := h.Messenger.OpenConversation(ctx, c.Param("conversationId"), viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"messages":     toMessageResponses(th.Messages),
			"marked_read":  th.MarkedRead,
			"read_pending": th.ReadPending,
		})
	}
}
