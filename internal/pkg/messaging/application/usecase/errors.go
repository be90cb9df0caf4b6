package usecase

import (
	"errors"
	"fmt"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// ErrPersistence marks failures of the storage backend. Domain errors
// (validation, authorization, not found) are returned unwrapped.
var ErrPersistence = errors.New("persistence error")

func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, messaging.ErrValidation) ||
		errors.Is(err, messaging.ErrAuthorization) ||
		errors.Is(err, messaging.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
