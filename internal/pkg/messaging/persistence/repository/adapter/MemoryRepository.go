package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// MemoryRepository keeps conversations, messages and profiles in process. It
// satisfies the conversation, message and profile ports and is used by the
// "memory" database driver and by tests. Every operation holds one mutex, so
// MarkConversationRead is atomic with respect to AppendMessage.
type MemoryRepository struct {
	mu            sync.Mutex
	now           func() time.Time
	seq           int64
	conversations map[string]messaging.Conversation
	pairs         map[[2]string]string
	messages      map[string][]messaging.Message
	profiles      map[string]messaging.Profile
}

// NewMemoryRepository builds an empty store. now may be nil.
func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MemoryRepository{
		now:           now,
		conversations: make(map[string]messaging.Conversation),
		pairs:         make(map[[2]string]string),
		messages:      make(map[string][]messaging.Message),
		profiles:      make(map[string]messaging.Profile),
	}
}

// PutProfile seeds a profile, standing in for the profile service.
func (r *MemoryRepository) PutProfile(p messaging.Profile) {
	r.mu.Lock()
	r.profiles[p.UserID] = p
	r.mu.Unlock()
}

func (r *MemoryRepository) GetOrCreateConversation(_ context.Context, id, participantA, participantB string) (messaging.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{participantA, participantB}
	if existing, ok := r.pairs[key]; ok {
		return r.conversations[existing], false, nil
	}
	c := messaging.Conversation{
		ID:           id,
		ParticipantA: participantA,
		ParticipantB: participantB,
		CreatedAt:    r.now(),
	}
	r.conversations[id] = c
	r.pairs[key] = id
	return c, true, nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, id string) (messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok {
		return messaging.Conversation{}, messaging.ErrConversationNotFound
	}
	return c, nil
}

func (r *MemoryRepository) ListConversationsByParticipant(_ context.Context, userID string) ([]messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []messaging.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) AppendMessage(_ context.Context, m messaging.Message) (messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[m.ConversationID]; !ok {
		return messaging.Message{}, messaging.ErrConversationNotFound
	}
	r.seq++
	m.Seq = r.seq
	m.CreatedAt = r.now()
	m.Read = false
	m.ReadAt = nil

	log := r.messages[m.ConversationID]
	if n := len(log); n > 0 && m.CreatedAt.Before(log[n-1].CreatedAt) {
		// keep the log ordered even if the clock steps backwards
		m.CreatedAt = log[n-1].CreatedAt
	}
	r.messages[m.ConversationID] = append(log, m)
	return m, nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, conversationID string) ([]messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.messages[conversationID]
	out := make([]messaging.Message, len(log))
	copy(out, log)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *MemoryRepository) MarkConversationRead(_ context.Context, conversationID string, viewerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.messages[conversationID]
	now := r.now()
	var n int64
	for i := range log {
		if log[i].UnreadFor(viewerID) {
			at := now
			log[i].Read = true
			log[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) ConversationStats(_ context.Context, viewerID string, conversationIDs []string) (map[string]messaging.ConversationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]messaging.ConversationStats, len(conversationIDs))
	for _, id := range conversationIDs {
		var (
			st   messaging.ConversationStats
			last *messaging.Message
		)
		log := r.messages[id]
		for i := range log {
			if log[i].UnreadFor(viewerID) {
				st.UnreadCount++
			}
			if last == nil || last.Before(log[i]) {
				last = &log[i]
			}
		}
		if last != nil {
			body := last.Body
			at := last.CreatedAt
			st.LastMessageText = &body
			st.LastMessageAt = &at
			st.LastMessageSeq = last.Seq
		}
		out[id] = st
	}
	return out, nil
}

func (r *MemoryRepository) FindProfiles(_ context.Context, userIDs []string) (map[string]messaging.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]messaging.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// Ping lets the memory store stand in for the database health check.
func (r *MemoryRepository) Ping(context.Context) error { return nil }
