package usecase

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// ListMessagesInput identifies a conversation and who is looking at it.
type ListMessagesInput struct {
	ConversationID string
	ViewerID       string
}

// ListMessagesUseCase returns a conversation's full history to a participant.
type ListMessagesUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
}

func NewListMessagesUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{Conversations: conversations, Messages: messages}
}

// Execute returns messages ascending by (CreatedAt, Seq). Read flags are
// returned as stored; listing never changes them.
func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) ([]messaging.Message, error) {
	conv, _, err := loadConversationFor(ctx, uc.Conversations, in.ConversationID, in.ViewerID)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.Messages.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return msgs, nil
}
