package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	"go-prestachat/internal/pkg/messaging/persistence/repository/adapter"
)

const (
	alice = "11111111-1111-4111-8111-111111111111"
	bob   = "22222222-2222-4222-8222-222222222222"
	carol = "33333333-3333-4333-8333-333333333333"
)

type fixture struct {
	repo    *adapter.MemoryRepository
	start   *GetOrCreateConversationUseCase
	appendM *AppendMessageUseCase
	list    *ListMessagesUseCase
	inbox   *ListConversationsUseCase
	read    *MarkConversationReadUseCase
}

// steppingClock advances one millisecond per reading.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func newFixture(t *testing.T, now func() time.Time) *fixture {
	t.Helper()
	repo := adapter.NewMemoryRepository(now)
	repo.PutProfile(messaging.Profile{UserID: alice, FirstName: "Alice", LastName: "Martin", Role: messaging.RoleClient})
	repo.PutProfile(messaging.Profile{UserID: bob, CompanyName: "Bob Traiteur", Role: messaging.RolePrestataire})
	return &fixture{
		repo:    repo,
		start:   NewGetOrCreateConversationUseCase(repo),
		appendM: NewAppendMessageUseCase(repo, repo),
		list:    NewListMessagesUseCase(repo, repo),
		inbox:   NewListConversationsUseCase(repo, repo, repo),
		read:    NewMarkConversationReadUseCase(repo, repo),
	}
}

func (f *fixture) conversation(t *testing.T, a, b string) string {
	t.Helper()
	conv, _, err := f.start.Execute(context.Background(), GetOrCreateConversationInput{UserID: a, OtherUserID: b})
	require.NoError(t, err)
	return conv.ID
}

func (f *fixture) send(t *testing.T, convID, sender, body string) *messaging.Message {
	t.Helper()
	m, err := f.appendM.Execute(context.Background(), AppendMessageInput{ConversationID: convID, SenderID: sender, Body: body})
	require.NoError(t, err)
	return m
}

func (f *fixture) summaryFor(t *testing.T, viewer, convID string) messaging.ConversationSummary {
	t.Helper()
	sums, err := f.inbox.Execute(context.Background(), ListConversationsInput{ViewerID: viewer})
	require.NoError(t, err)
	for _, s := range sums {
		if s.ConversationID == convID {
			return s
		}
	}
	t.Fatalf("conversation %s not in %s's inbox", convID, viewer)
	return messaging.ConversationSummary{}
}

func TestGetOrCreateConversationIsSymmetricAndIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, created, err := f.start.Execute(ctx, GetOrCreateConversationInput{UserID: alice, OtherUserID: bob})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.start.Execute(ctx, GetOrCreateConversationInput{UserID: alice, OtherUserID: bob})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	swapped, _, err := f.start.Execute(ctx, GetOrCreateConversationInput{UserID: bob, OtherUserID: alice})
	require.NoError(t, err)
	assert.Equal(t, first.ID, swapped.ID)
	assert.Equal(t, alice, swapped.ParticipantA)
	assert.Equal(t, bob, swapped.ParticipantB)
}

func TestGetOrCreateConversationConcurrentCallersConverge(t *testing.T) {
	f := newFixture(t, nil)

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice, bob
			if i%2 == 1 {
				a, b = b, a
			}
			conv, _, err := f.start.Execute(context.Background(), GetOrCreateConversationInput{UserID: a, OtherUserID: b})
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.NotEmpty(t, ids[0])
}

func TestGetOrCreateConversationRejectsInvalidPairs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, _, err := f.start.Execute(ctx, GetOrCreateConversationInput{UserID: alice, OtherUserID: alice})
	assert.ErrorIs(t, err, messaging.ErrValidation)

	_, _, err = f.start.Execute(ctx, GetOrCreateConversationInput{UserID: alice, OtherUserID: "not-a-uuid"})
	assert.ErrorIs(t, err, messaging.ErrMalformedID)
}

func TestAppendMessage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	convID := f.conversation(t, alice, bob)

	m := f.send(t, convID, alice, "  bonjour  ")
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "bonjour", m.Body)
	assert.False(t, m.Read)
	assert.Nil(t, m.ReadAt)
	assert.False(t, m.CreatedAt.IsZero())

	tests := []struct {
		name string
		in   AppendMessageInput
		want error
	}{
		{"whitespace body", AppendMessageInput{ConversationID: convID, SenderID: alice, Body: " \n\t "}, messaging.ErrEmptyBody},
		{"outsider sender", AppendMessageInput{ConversationID: convID, SenderID: carol, Body: "hi"}, messaging.ErrValidation},
		{"malformed conversation", AppendMessageInput{ConversationID: "x", SenderID: alice, Body: "hi"}, messaging.ErrMalformedID},
		{"malformed sender", AppendMessageInput{ConversationID: convID, SenderID: "", Body: "hi"}, messaging.ErrMalformedID},
		{"unknown conversation", AppendMessageInput{ConversationID: "44444444-4444-4444-8444-444444444444", SenderID: alice, Body: "hi"}, messaging.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.appendM.Execute(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	msgs, err := f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: bob})
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "rejected sends must not be persisted")
}

func TestListMessagesOrderAndAccess(t *testing.T) {
	// a frozen clock forces every message onto the same timestamp
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, func() time.Time { return frozen })
	ctx := context.Background()
	convID := f.conversation(t, alice, bob)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := alice
			if i%2 == 0 {
				sender = bob
			}
			_, _ = f.appendM.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: sender, Body: "ping"})
		}(i)
	}
	wg.Wait()

	msgs, err := f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: alice})
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
		assert.Greater(t, msgs[i].Seq, msgs[i-1].Seq)
	}

	_, err = f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: carol})
	assert.ErrorIs(t, err, messaging.ErrAuthorization)

	_, err = f.list.Execute(ctx, ListMessagesInput{ConversationID: "44444444-4444-4444-8444-444444444444", ViewerID: alice})
	assert.ErrorIs(t, err, messaging.ErrNotFound)
}

func TestListMessagesEmptyConversation(t *testing.T) {
	f := newFixture(t, nil)
	convID := f.conversation(t, alice, bob)

	msgs, err := f.list.Execute(context.Background(), ListMessagesInput{ConversationID: convID, ViewerID: alice})
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestMarkConversationRead(t *testing.T) {
	f := newFixture(t, steppingClock())
	ctx := context.Background()
	convID := f.conversation(t, alice, bob)

	f.send(t, convID, alice, "one")
	f.send(t, convID, alice, "two")
	f.send(t, convID, bob, "three")

	assert.EqualValues(t, 2, f.summaryFor(t, bob, convID).UnreadCount)
	assert.EqualValues(t, 1, f.summaryFor(t, alice, convID).UnreadCount)

	n, err := f.read.Execute(ctx, MarkConversationReadInput{ConversationID: convID, ViewerID: bob})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	before, err := f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: bob})
	require.NoError(t, err)

	n, err = f.read.Execute(ctx, MarkConversationReadInput{ConversationID: convID, ViewerID: bob})
	require.NoError(t, err)
	assert.Zero(t, n)

	after, err := f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: bob})
	require.NoError(t, err)
	assert.Equal(t, before, after, "second mark-read must not change state")

	assert.EqualValues(t, 0, f.summaryFor(t, bob, convID).UnreadCount)
	// bob's own message stays unread for alice
	assert.EqualValues(t, 1, f.summaryFor(t, alice, convID).UnreadCount)
	for _, m := range after {
		assert.Equal(t, m.SenderID == alice, m.Read, m.Body)
	}

	_, err = f.read.Execute(ctx, MarkConversationReadInput{ConversationID: convID, ViewerID: carol})
	assert.ErrorIs(t, err, messaging.ErrAuthorization)
}

func TestUnreadCountMatchesMessageLog(t *testing.T) {
	f := newFixture(t, steppingClock())
	ctx := context.Background()
	convID := f.conversation(t, alice, bob)

	steps := []struct {
		sender string
		read   string
	}{
		{sender: alice}, {sender: bob}, {read: bob}, {sender: alice}, {sender: alice}, {read: alice}, {sender: bob}, {read: bob},
	}
	for _, s := range steps {
		if s.sender != "" {
			f.send(t, convID, s.sender, "msg")
		} else {
			_, err := f.read.Execute(ctx, MarkConversationReadInput{ConversationID: convID, ViewerID: s.read})
			require.NoError(t, err)
		}

		msgs, err := f.list.Execute(ctx, ListMessagesInput{ConversationID: convID, ViewerID: alice})
		require.NoError(t, err)
		for _, viewer := range []string{alice, bob} {
			var want int64
			for _, m := range msgs {
				if m.SenderID != viewer && !m.Read {
					want++
				}
			}
			assert.Equal(t, want, f.summaryFor(t, viewer, convID).UnreadCount)
		}
	}
}

func TestListConversations(t *testing.T) {
	f := newFixture(t, steppingClock())
	ctx := context.Background()

	withBob := f.conversation(t, alice, bob)
	withCarol := f.conversation(t, alice, carol)
	f.send(t, withBob, bob, "devis envoyé")

	sums, err := f.inbox.Execute(ctx, ListConversationsInput{ViewerID: alice})
	require.NoError(t, err)
	require.Len(t, sums, 2)

	assert.Equal(t, withBob, sums[0].ConversationID)
	assert.Equal(t, bob, sums[0].OtherParticipantID)
	assert.Equal(t, "Bob Traiteur", sums[0].OtherParticipantName)
	require.NotNil(t, sums[0].LastMessageText)
	assert.Equal(t, "devis envoyé", *sums[0].LastMessageText)

	// no messages yet: listed last, unknown profile falls back
	assert.Equal(t, withCarol, sums[1].ConversationID)
	assert.Equal(t, messaging.UnknownDisplayName, sums[1].OtherParticipantName)
	assert.Nil(t, sums[1].LastMessageAt)
	assert.Zero(t, sums[1].UnreadCount)

	f.send(t, withCarol, carol, "dispo samedi ?")
	sums, err = f.inbox.Execute(ctx, ListConversationsInput{ViewerID: alice})
	require.NoError(t, err)
	assert.Equal(t, withCarol, sums[0].ConversationID)

	none, err := f.inbox.Execute(ctx, ListConversationsInput{ViewerID: "55555555-5555-4555-8555-555555555555"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.inbox.Execute(ctx, ListConversationsInput{ViewerID: "nope"})
	assert.ErrorIs(t, err, messaging.ErrValidation)
}

type brokenMessages struct {
	*adapter.MemoryRepository
	err error
}

func (b brokenMessages) AppendMessage(context.Context, messaging.Message) (messaging.Message, error) {
	return messaging.Message{}, b.err
}

func (b brokenMessages) MarkConversationRead(context.Context, string, string) (int64, error) {
	return 0, b.err
}

func (b brokenMessages) ConversationStats(context.Context, string, []string) (map[string]messaging.ConversationStats, error) {
	return nil, b.err
}

func TestBackendFailuresAreWrapped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	convID := f.conversation(t, alice, bob)
	broken := brokenMessages{MemoryRepository: f.repo, err: errors.New("connection reset")}

	_, err := NewAppendMessageUseCase(f.repo, broken).Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: alice, Body: "hi"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "connection reset")

	_, err = NewMarkConversationReadUseCase(f.repo, broken).Execute(ctx, MarkConversationReadInput{ConversationID: convID, ViewerID: bob})
	assert.ErrorIs(t, err, ErrPersistence)

	_, err = NewListConversationsUseCase(f.repo, broken, f.repo).Execute(ctx, ListConversationsInput{ViewerID: bob})
	assert.ErrorIs(t, err, ErrPersistence)

	// domain errors from the backend keep their kind
	notFound := brokenMessages{MemoryRepository: f.repo, err: messaging.ErrConversationNotFound}
	_, err = NewAppendMessageUseCase(f.repo, notFound).Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: alice, Body: "hi"})
	assert.ErrorIs(t, err, messaging.ErrNotFound)
	assert.NotErrorIs(t, err, ErrPersistence)
}
