package repository

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// ConversationRepository persists 1:1 conversations.
type ConversationRepository interface {
	// GetOrCreateConversation returns the conversation for the canonical pair
	// (participantA < participantB), creating it when missing. created reports
	// whether this call inserted it.
	GetOrCreateConversation(ctx context.Context, id, participantA, participantB string) (conv messaging.Conversation, created bool, err error)
	// GetConversation returns messaging.ErrConversationNotFound for unknown ids.
	GetConversation(ctx context.Context, id string) (messaging.Conversation, error)
	ListConversationsByParticipant(ctx context.Context, userID string) ([]messaging.Conversation, error)
}
