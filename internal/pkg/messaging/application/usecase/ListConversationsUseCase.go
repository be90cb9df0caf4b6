package usecase

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsInput names the viewer whose inbox is listed.
type ListConversationsInput struct {
	ViewerID string
}

// ListConversationsUseCase builds the viewer's inbox. Nothing about the
// summaries is stored: last message and unread count are derived from the
// message log on every call (or through a generation-keyed StatsReader).
type ListConversationsUseCase struct {
	Conversations repository.ConversationRepository
	Stats         repository.StatsReader
	Profiles      repository.ProfileRepository
}

func NewListConversationsUseCase(conversations repository.ConversationRepository, stats repository.StatsReader, profiles repository.ProfileRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Conversations: conversations, Stats: stats, Profiles: profiles}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.ConversationSummary, error) {
	viewerID, err := messaging.ParseID("viewer_id", in.ViewerID)
	if err != nil {
		return nil, err
	}
	convs, err := uc.Conversations.ListConversationsByParticipant(ctx, viewerID)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if len(convs) == 0 {
		return []messaging.ConversationSummary{}, nil
	}

	ids := make([]string, 0, len(convs))
	others := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
		if other, ok := c.OtherParticipant(viewerID); ok {
			others = append(others, other)
		}
	}

	stats, err := uc.Stats.ConversationStats(ctx, viewerID, ids)
	if err != nil {
		return nil, wrapPersistence(err)
	}

	var profiles map[string]messaging.Profile
	if uc.Profiles != nil {
		profiles, err = uc.Profiles.FindProfiles(ctx, others)
		if err != nil {
			return nil, wrapPersistence(err)
		}
	}

	return messaging.BuildSummaries(viewerID, convs, stats, profiles), nil
}
