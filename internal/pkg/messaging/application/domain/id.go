package messaging

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier in canonical string form.
func NewID() string {
	return uuid.NewString()
}

// ParseID normalizes a user or conversation identifier. Anything that is not a
// UUID is rejected with ErrMalformedID.
func ParseID(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: %s is required", ErrMalformedID, field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrMalformedID, field, raw)
	}
	return id.String(), nil
}
