package usecase

import (
	"context"

	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// MarkConversationReadInput identifies the conversation and the reader.
type MarkConversationReadInput struct {
	ConversationID string
	ViewerID       string
}

// MarkConversationReadUseCase flips every message the viewer received in the
// conversation to read. It is idempotent; the backend applies the whole change
// in one conditional update, so a message appended concurrently is either
// included or stays unread, never half-applied.
type MarkConversationReadUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
}

func NewMarkConversationReadUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Conversations: conversations, Messages: messages}
}

// Execute returns the number of messages that changed state.
func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) (int64, error) {
	conv, viewerID, err := loadConversationFor(ctx, uc.Conversations, in.ConversationID, in.ViewerID)
	if err != nil {
		return 0, err
	}
	n, err := uc.Messages.MarkConversationRead(ctx, conv.ID, viewerID)
	if err != nil {
		return 0, wrapPersistence(err)
	}
	return n, nil
}
