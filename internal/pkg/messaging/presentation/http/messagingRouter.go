package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"go-prestachat/internal/pkg/messaging/application/facade"
	"go-prestachat/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes mounts the messaging endpoints on g, which must already
// authenticate the viewer. sendLimit guards message creation only.
func RegisterRoutes(g *gin.RouterGroup, m *facade.Messenger, sendLimit gin.HandlerFunc, timeout time.Duration) {
	listConvCtl := controller.NewListConversationsController(m, timeout)
	startCtl := controller.NewStartConversationController(m, timeout)
	listMsgCtl := controller.NewListMessagesController(m, timeout)
	sendCtl := controller.NewSendMessageController(m, timeout)
	openCtl := controller.NewOpenConversationController(m, timeout)
	readCtl := controller.NewMarkReadController(m, timeout)

	if sendLimit == nil {
		sendLimit = func(c *gin.Context) { c.Next() }
	}

	// GET /api/v1/conversations -> inbox of the viewer
	g.GET("/conversations", listConvCtl.Handle())
	// POST /api/v1/conversations -> get or create the conversation with other_id
	g.POST("/conversations", startCtl.Handle())

	conv := g.Group("/conversations/:conversationId")
	conv.GET("/messages", listMsgCtl.Handle())
	conv.POST("/messages", sendLimit, sendCtl.Handle())
	// opening lists then marks read; plain GET /messages never changes state
	conv.POST("/open", openCtl.Handle())
	conv.POST("/read", readCtl.Handle())
}
