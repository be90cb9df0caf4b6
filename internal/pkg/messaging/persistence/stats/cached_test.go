package stats

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cadapter "go-prestachat/internal/infrastructure/cache/adapter"
	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	"go-prestachat/internal/pkg/messaging/persistence/repository/adapter"
)

const (
	alice = "11111111-1111-4111-8111-111111111111"
	bob   = "22222222-2222-4222-8222-222222222222"
)

type countingRepo struct {
	*adapter.MemoryRepository
	statsCalls atomic.Int64
}

func (c *countingRepo) ConversationStats(ctx context.Context, viewerID string, ids []string) (map[string]messaging.ConversationStats, error) {
	c.statsCalls.Add(1)
	return c.MemoryRepository.ConversationStats(ctx, viewerID, ids)
}

func setup(t *testing.T) (*CachedMessageRepository, *countingRepo, *miniredis.Miniredis, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := cadapter.NewRedisCache(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	mem := adapter.NewMemoryRepository(nil)
	conv, _, err := mem.GetOrCreateConversation(context.Background(), messaging.NewID(), alice, bob)
	require.NoError(t, err)

	inner := &countingRepo{MemoryRepository: mem}
	return NewCachedMessageRepository(inner, cache, time.Minute, zap.NewNop()), inner, mr, conv.ID
}

func appendMsg(t *testing.T, r *CachedMessageRepository, convID, sender, body string) {
	t.Helper()
	_, err := r.AppendMessage(context.Background(), messaging.Message{
		ID: messaging.NewID(), ConversationID: convID, SenderID: sender, Body: body,
	})
	require.NoError(t, err)
}

func TestCachedStatsReadThrough(t *testing.T) {
	r, inner, _, convID := setup(t)
	ctx := context.Background()
	appendMsg(t, r, convID, alice, "hello")

	first, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	second, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)

	assert.EqualValues(t, 1, inner.statsCalls.Load())
	assert.Equal(t, first[convID].UnreadCount, second[convID].UnreadCount)
	require.NotNil(t, second[convID].LastMessageText)
	assert.Equal(t, "hello", *second[convID].LastMessageText)
}

func TestCachedStatsInvalidatedByWrites(t *testing.T) {
	r, inner, _, convID := setup(t)
	ctx := context.Background()
	appendMsg(t, r, convID, alice, "hello")

	st, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, st[convID].UnreadCount)

	appendMsg(t, r, convID, alice, "still there?")
	st, err = r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, st[convID].UnreadCount)
	assert.Equal(t, "still there?", *st[convID].LastMessageText)

	n, err := r.MarkConversationRead(ctx, convID, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	st, err = r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.Zero(t, st[convID].UnreadCount)

	assert.EqualValues(t, 3, inner.statsCalls.Load())
}

func TestCachedStatsPerViewer(t *testing.T) {
	r, _, _, convID := setup(t)
	ctx := context.Background()
	appendMsg(t, r, convID, alice, "hello")

	forBob, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	forAlice, err := r.ConversationStats(ctx, alice, []string{convID})
	require.NoError(t, err)

	assert.EqualValues(t, 1, forBob[convID].UnreadCount)
	assert.Zero(t, forAlice[convID].UnreadCount)
}

func TestCachedStatsFallsBackWhenCacheDown(t *testing.T) {
	r, inner, mr, convID := setup(t)
	ctx := context.Background()
	appendMsg(t, r, convID, alice, "hello")

	mr.Close()
	st, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, st[convID].UnreadCount)
	assert.EqualValues(t, 1, inner.statsCalls.Load())

	// writes still succeed with the cache gone
	appendMsg(t, r, convID, bob, "reply")
}

func TestCachedStatsGenerationExpires(t *testing.T) {
	r, inner, mr, convID := setup(t)
	ctx := context.Background()
	appendMsg(t, r, convID, alice, "hello")

	ttl := mr.TTL(generationKey(convID))
	assert.Greater(t, ttl, time.Minute, "generation outlives the stats entries")
	assert.LessOrEqual(t, ttl, 2*time.Minute)

	_, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)

	mr.FastForward(3 * time.Minute)
	assert.False(t, mr.Exists(generationKey(convID)))

	// a write after the quiet period must still hide the cached value
	st, err := r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, st[convID].UnreadCount)
	appendMsg(t, r, convID, alice, "again")
	st, err = r.ConversationStats(ctx, bob, []string{convID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, st[convID].UnreadCount)
	assert.EqualValues(t, 3, inner.statsCalls.Load())
}
