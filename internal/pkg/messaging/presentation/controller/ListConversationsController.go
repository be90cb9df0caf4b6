package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

// ListConversationsController serves the viewer's inbox.
type ListConversationsController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewListConversationsController(m *facade.Messenger, timeout time.Duration) *ListConversationsController {
	return &ListConversationsController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		sums, err := h.Messenger.ListConversations(ctx, viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]summaryResponse, 0, len(sums))
		for _, s := range sums {
			out = append(out, summaryResponse{
				ConversationID:       s.ConversationID,
				OtherParticipantID:   s.OtherParticipantID,
				OtherParticipantName: s.OtherParticipantName,
				LastMessageText:      s.LastMessageText,
				LastMessageAt:        s.LastMessageAt,
				UnreadCount:          s.UnreadCount,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
