package repository

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// MessageRepository is the append-only message log plus its read flags.
type MessageRepository interface {
	// AppendMessage stores m and returns it with Seq and CreatedAt assigned by
	// the backend.
	AppendMessage(ctx context.Context, m messaging.Message) (messaging.Message, error)
	// ListMessages returns the whole conversation ascending by (CreatedAt, Seq).
	ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error)
	// MarkConversationRead flips every unread message not sent by viewerID in a
	// single conditional update and returns how many changed.
	MarkConversationRead(ctx context.Context, conversationID string, viewerID string) (int64, error)
	StatsReader
}

// StatsReader derives last message and unread count per conversation for
// viewerID. Conversations without messages map to a zero value.
type StatsReader interface {
	ConversationStats(ctx context.Context, viewerID string, conversationIDs []string) (map[string]messaging.ConversationStats, error)
}
