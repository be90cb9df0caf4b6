package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
)

type MarkReadController struct {
	Messenger *facade.Messenger
	Timeout   time.Duration
}

func NewMarkReadController(m *facade.Messenger, timeout time.Duration) *MarkReadController {
	return &MarkReadController{Messenger: m, Timeout: timeoutOrDefault(timeout)}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := viewer(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		n, err := h.Messenger.MarkRead(ctx, c.Param("conversationId"), viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"marked_read": n})
	}
}
