package messaging

import (
	"sort"
	"time"
)

// ConversationStats is what the message store derives for one (conversation,
// viewer) pair at read time.
type ConversationStats struct {
	LastMessageText *string    `json:"last_message_text,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	LastMessageSeq  int64      `json:"last_message_seq,omitempty"`
	UnreadCount     int64      `json:"unread_count"`
}

// ConversationSummary is the per-viewer projection used by list views. It is
// never persisted.
type ConversationSummary struct {
	ConversationID       string
	OtherParticipantID   string
	OtherParticipantName string
	LastMessageText      *string
	LastMessageAt        *time.Time
	UnreadCount          int64

	lastSeq   int64
	createdAt time.Time
}

// BuildSummaries projects the viewer's conversations into summaries, newest
// activity first. Conversations without messages come last, newest first.
// Conversations the viewer does not belong to are skipped.
func BuildSummaries(viewerID string, convs []Conversation, stats map[string]ConversationStats, profiles map[string]Profile) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		other, ok := c.OtherParticipant(viewerID)
		if !ok {
			continue
		}
		name := UnknownDisplayName
		if p, ok := profiles[other]; ok {
			name = p.DisplayName()
		}
		st := stats[c.ID]
		out = append(out, ConversationSummary{
			ConversationID:       c.ID,
			OtherParticipantID:   other,
			OtherParticipantName: name,
			LastMessageText:      st.LastMessageText,
			LastMessageAt:        st.LastMessageAt,
			UnreadCount:          st.UnreadCount,
			lastSeq:              st.LastMessageSeq,
			createdAt:            c.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].newerThan(out[j])
	})
	return out
}

func (s ConversationSummary) newerThan(o ConversationSummary) bool {
	switch {
	case s.LastMessageAt != nil && o.LastMessageAt == nil:
		return true
	case s.LastMessageAt == nil && o.LastMessageAt != nil:
		return false
	case s.LastMessageAt != nil && o.LastMessageAt != nil:
		if !s.LastMessageAt.Equal(*o.LastMessageAt) {
			return s.LastMessageAt.After(*o.LastMessageAt)
		}
		if s.lastSeq != o.lastSeq {
			return s.lastSeq > o.lastSeq
		}
	}
	if !s.createdAt.Equal(o.createdAt) {
		return s.createdAt.After(o.createdAt)
	}
	return s.ConversationID < o.ConversationID
}
