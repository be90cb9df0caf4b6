package usecase

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// AppendMessageInput carries a new message for an existing conversation.
type AppendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           string
}

// AppendMessageUseCase stores a message at the end of its conversation.
type AppendMessageUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
}

func NewAppendMessageUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository) *AppendMessageUseCase {
	return &AppendMessageUseCase{Conversations: conversations, Messages: messages}
}

// Execute validates the message and persists it. The returned message carries
// the backend-assigned Seq and CreatedAt and is unread.
func (uc *AppendMessageUseCase) Execute(ctx context.Context, in AppendMessageInput) (*messaging.Message, error) {
	senderID, err := messaging.ParseID("sender_id", in.SenderID)
	if err != nil {
		return nil, err
	}
	conv, err := loadConversation(ctx, uc.Conversations, in.ConversationID)
	if err != nil {
		return nil, err
	}
	m, err := messaging.NewMessage(conv, senderID, in.Body)
	if err != nil {
		return nil, err
	}
	m.ID = messaging.NewID()

	stored, err := uc.Messages.AppendMessage(ctx, *m)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &stored, nil
}
