package usecase

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// GetOrCreateConversationInput names the two users, in any order.
type GetOrCreateConversationInput struct {
	UserID      string
	OtherUserID string
}

// GetOrCreateConversationUseCase resolves the single conversation of a pair.
// Concurrent callers for the same pair converge on one row through the
// backend's unique constraint.
type GetOrCreateConversationUseCase struct {
	Repo repository.ConversationRepository
}

func NewGetOrCreateConversationUseCase(repo repository.ConversationRepository) *GetOrCreateConversationUseCase {
	return &GetOrCreateConversationUseCase{Repo: repo}
}

// Execute returns the conversation and whether this call created it.
func (uc *GetOrCreateConversationUseCase) Execute(ctx context.Context, in GetOrCreateConversationInput) (*messaging.Conversation, bool, error) {
	a, b, err := messaging.CanonicalPair(in.UserID, in.OtherUserID)
	if err != nil {
		return nil, false, err
	}
	conv, created, err := uc.Repo.GetOrCreateConversation(ctx, messaging.NewID(), a, b)
	if err != nil {
		return nil, false, wrapPersistence(err)
	}
	return &conv, created, nil
}
