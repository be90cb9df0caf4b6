// Package stats caches per-viewer conversation stats in front of a
// MessageRepository.
//
// Keys carry a per-conversation generation that is replaced after every append
// and mark-read commits:
//
//	stats:gen:{conversation}                  -> random generation token
//	stats:{conversation}:{viewer}:g{gen}      -> JSON ConversationStats
//
// A reader loads the generation before querying the backend, so a value
// computed while a write was in flight lands under an old generation and is
// never served once that write has returned.
//
// Generation keys expire after twice the stats ttl. A conversation with no
// writes for that long falls back to generation "0", and by then every stats
// entry written under an older generation has expired too.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cport "go-prestachat/internal/infrastructure/cache/port"
	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// CachedMessageRepository decorates a MessageRepository with a read-through
// stats cache. Cache failures degrade to the backend and are only logged.
type CachedMessageRepository struct {
	repository.MessageRepository
	cache cport.Cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ repository.MessageRepository = (*CachedMessageRepository)(nil)

func NewCachedMessageRepository(inner repository.MessageRepository, cache cport.Cache, ttl time.Duration, log *zap.Logger) *CachedMessageRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedMessageRepository{MessageRepository: inner, cache: cache, ttl: ttl, log: log}
}

func generationKey(conversationID string) string {
	return "stats:gen:" + conversationID
}

func statsKey(conversationID, viewerID, gen string) string {
	return fmt.Sprintf("stats:%s:%s:g%s", conversationID, viewerID, gen)
}

func (r *CachedMessageRepository) generationTTL() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	return 2 * r.ttl
}

func (r *CachedMessageRepository) AppendMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	stored, err := r.MessageRepository.AppendMessage(ctx, m)
	if err != nil {
		return stored, err
	}
	r.bump(ctx, stored.ConversationID)
	return stored, nil
}

func (r *CachedMessageRepository) MarkConversationRead(ctx context.Context, conversationID string, viewerID string) (int64, error) {
	n, err := r.MessageRepository.MarkConversationRead(ctx, conversationID, viewerID)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.bump(ctx, conversationID)
	}
	return n, nil
}

func (r *CachedMessageRepository) bump(ctx context.Context, conversationID string) {
	err := r.cache.Set(ctx, generationKey(conversationID), uuid.NewString(), r.generationTTL())
	if err != nil {
		// stale entries now live until ttl
		r.log.Warn("stats generation bump failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}
}

func (r *CachedMessageRepository) ConversationStats(ctx context.Context, viewerID string, conversationIDs []string) (map[string]messaging.ConversationStats, error) {
	out := make(map[string]messaging.ConversationStats, len(conversationIDs))
	gens := make(map[string]string, len(conversationIDs))
	var missing []string

	for _, id := range conversationIDs {
		gen, err := r.generation(ctx, id)
		if err != nil {
			r.log.Warn("stats cache unavailable", zap.Error(err))
			return r.MessageRepository.ConversationStats(ctx, viewerID, conversationIDs)
		}
		gens[id] = gen

		raw, err := r.cache.Get(ctx, statsKey(id, viewerID, gen))
		if err != nil {
			if !errors.Is(err, cport.ErrMiss) {
				r.log.Warn("stats cache get failed", zap.String("conversation_id", id), zap.Error(err))
			}
			missing = append(missing, id)
			continue
		}
		var st messaging.ConversationStats
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			missing = append(missing, id)
			continue
		}
		out[id] = st
	}

	if len(missing) == 0 {
		return out, nil
	}
	fresh, err := r.MessageRepository.ConversationStats(ctx, viewerID, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		st := fresh[id]
		out[id] = st
		b, err := json.Marshal(st)
		if err != nil {
			continue
		}
		if err := r.cache.Set(ctx, statsKey(id, viewerID, gens[id]), string(b), r.ttl); err != nil {
			r.log.Debug("stats cache set failed", zap.String("conversation_id", id), zap.Error(err))
		}
	}
	return out, nil
}

func (r *CachedMessageRepository) generation(ctx context.Context, conversationID string) (string, error) {
	gen, err := r.cache.Get(ctx, generationKey(conversationID))
	if errors.Is(err, cport.ErrMiss) {
		return "0", nil
	}
	return gen, err
}
