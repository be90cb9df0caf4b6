package repository

import (
	"context"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// ProfileRepository reads profiles owned by the profile service. Missing users
// are simply absent from the result.
type ProfileRepository interface {
	FindProfiles(ctx context.Context, userIDs []string) (map[string]messaging.Profile, error)
}
