package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	qport "go-prestachat/internal/infrastructure/queue/port"
	messaging "go-prestachat/internal/pkg/messaging/application/domain"
)

// MarkReadTaskType is the queue task that retries a mark-read the request path
// could not apply.
const MarkReadTaskType = "messaging:mark_read"

// Queue and retry policy for deferred mark-read tasks.
const (
	MarkReadQueue    = "messaging"
	MarkReadMaxRetry = 10
)

// MarkReadTaskPayload is the JSON payload transported via the queue.
type MarkReadTaskPayload struct {
	ConversationID string `json:"conversationId"`
	ViewerID       string `json:"viewerId"`
}

// NewMarkReadTask encodes the payload and the enqueue policy.
func NewMarkReadTask(conversationID, viewerID string) (qport.Task, qport.EnqueueOption, error) {
	b, err := json.Marshal(MarkReadTaskPayload{ConversationID: conversationID, ViewerID: viewerID})
	if err != nil {
		return qport.Task{}, qport.EnqueueOption{}, err
	}
	return qport.Task{Type: MarkReadTaskType, Payload: b}, qport.EnqueueOption{
		Queue:    MarkReadQueue,
		MaxRetry: MarkReadMaxRetry,
		Timeout:  10 * time.Second,
		// collapse repeated failures for the same viewer and conversation
		UniqueTTL: time.Minute,
	}, nil
}

// Reader applies a mark-read. The messaging façade satisfies it so that a
// deferred update still emits its event and metrics.
type Reader interface {
	MarkRead(ctx context.Context, conversationID, viewerID string) (int64, error)
}

// RegisterMarkReadTask binds the handler to srv. Marking read is idempotent, so
// a retried or duplicated task is harmless.
func RegisterMarkReadTask(srv qport.Server, reader Reader, log *zap.Logger) {
	srv.Register(MarkReadTaskType, MarkReadHandler(reader, log))
}

// MarkReadHandler is the handler RegisterMarkReadTask installs.
func MarkReadHandler(reader Reader, log *zap.Logger) qport.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, t qport.Task) error {
		var p MarkReadTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			log.Error("dropping malformed mark-read task", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		n, err := reader.MarkRead(ctx, p.ConversationID, p.ViewerID)
		switch {
		case err == nil:
			log.Info("deferred mark-read applied",
				zap.String("conversation_id", p.ConversationID),
				zap.String("viewer_id", p.ViewerID),
				zap.Int64("count", n))
			return nil
		case errors.Is(err, messaging.ErrValidation),
			errors.Is(err, messaging.ErrAuthorization),
			errors.Is(err, messaging.ErrNotFound):
			log.Warn("dropping mark-read task",
				zap.String("conversation_id", p.ConversationID),
				zap.String("viewer_id", p.ViewerID),
				zap.Error(err))
			return nil
		default:
			return fmt.Errorf("mark-read %s: %w", p.ConversationID, err)
		}
	}
}
