package facade

import "time"

// Event types published for the notification collaborator.
const (
	EventMessageSent      = "message.sent"
	EventConversationRead = "conversation.read"
)

type MessageSentEvent struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationReadEvent struct {
	ConversationID string    `json:"conversation_id"`
	ViewerID       string    `json:"viewer_id"`
	Count          int64     `json:"count"`
	ReadAt         time.Time `json:"read_at"`
}
