package messaging

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers unchanged. Use errors.Is against these.
var (
	ErrValidation    = errors.New("messaging: validation failed")
	ErrAuthorization = errors.New("messaging: not authorized")
	ErrNotFound      = errors.New("messaging: not found")
)

// Specific failures, each wrapping one of the kinds above.
var (
	ErrEmptyBody            = fmt.Errorf("%w: message body is empty", ErrValidation)
	ErrSelfConversation     = fmt.Errorf("%w: cannot open a conversation with yourself", ErrValidation)
	ErrMalformedID          = fmt.Errorf("%w: malformed identifier", ErrValidation)
	ErrSenderNotParticipant = fmt.Errorf("%w: sender is not a participant in the conversation", ErrValidation)
	ErrNotParticipant       = fmt.Errorf("%w: viewer is not a participant in the conversation", ErrAuthorization)
	ErrConversationNotFound = fmt.Errorf("%w: conversation does not exist", ErrNotFound)
)
