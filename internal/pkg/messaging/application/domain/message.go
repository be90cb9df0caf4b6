package messaging

import (
	"strings"
	"time"
)

// Message is an entry in a conversation log. Only Read/ReadAt ever change
// after insert, and only from unread to read.
type Message struct {
	ID             string     `db:"id"`
	Seq            int64      `db:"seq"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Body           string     `db:"body"`
	CreatedAt      time.Time  `db:"created_at"`
	Read           bool       `db:"read"`
	ReadAt         *time.Time `db:"read_at"`
}

// NewMessage validates the sender against the conversation and normalizes the
// body. ID, Seq and CreatedAt are left for the store to assign.
func NewMessage(conv Conversation, senderID, body string) (*Message, error) {
	if !conv.HasParticipant(senderID) {
		return nil, ErrSenderNotParticipant
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, ErrEmptyBody
	}
	return &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           trimmed,
	}, nil
}

// UnreadFor reports whether the message counts as unread for viewerID.
// A sender's own messages are never unread to themselves.
func (m Message) UnreadFor(viewerID string) bool {
	return !m.Read && m.SenderID != viewerID
}

// Before orders messages by creation time, then by backend sequence.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}
