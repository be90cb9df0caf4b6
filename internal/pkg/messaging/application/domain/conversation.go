package messaging

import "time"

// Conversation is a 1:1 thread between two distinct users.
//
// Participants are stored in canonical order (ParticipantA < ParticipantB) so
// the unordered pair maps to exactly one row.
type Conversation struct {
	ID           string    `db:"id"`
	ParticipantA string    `db:"participant_a"`
	ParticipantB string    `db:"participant_b"`
	CreatedAt    time.Time `db:"created_at"`
}

// CanonicalPair validates both identifiers and returns them ordered.
func CanonicalPair(first, second string) (string, string, error) {
	a, err := ParseID("participant_a", first)
	if err != nil {
		return "", "", err
	}
	b, err := ParseID("participant_b", second)
	if err != nil {
		return "", "", err
	}
	if a == b {
		return "", "", ErrSelfConversation
	}
	if b < a {
		a, b = b, a
	}
	return a, b, nil
}

// HasParticipant tells whether userID is one of the two participants.
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantA == userID || c.ParticipantB == userID)
}

// OtherParticipant returns the counterpart of userID. The second result is
// false when userID is not a participant.
func (c Conversation) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB, true
	case c.ParticipantB:
		return c.ParticipantA, true
	default:
		return "", false
	}
}
