package usecase

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// loadConversation validates the raw id and fetches the conversation.
func loadConversation(ctx context.Context, repo repository.ConversationRepository, rawID string) (messaging.Conversation, error) {
	id, err := messaging.ParseID("conversation_id", rawID)
	if err != nil {
		return messaging.Conversation{}, err
	}
	conv, err := repo.GetConversation(ctx, id)
	if err != nil {
		return messaging.Conversation{}, wrapPersistence(err)
	}
	return conv, nil
}

// loadConversationFor is loadConversation plus the participant check for viewer.
func loadConversationFor(ctx context.Context, repo repository.ConversationRepository, rawID, rawViewer string) (messaging.Conversation, string, error) {
	viewerID, err := messaging.ParseID("viewer_id", rawViewer)
	if err != nil {
		return messaging.Conversation{}, "", err
	}
	conv, err := loadConversation(ctx, repo, rawID)
	if err != nil {
		return messaging.Conversation{}, "", err
	}
	if !conv.HasParticipant(viewerID) {
		return messaging.Conversation{}, "", messaging.ErrNotParticipant
	}
	return conv, viewerID, nil
}
