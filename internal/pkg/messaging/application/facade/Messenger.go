// Package facade is the single entry point the HTTP layer uses for
// messaging. Viewer identity is always an explicit argument.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	eport "go-prestachat/internal/infrastructure/events/port"
	"go-prestachat/internal/infrastructure/metrics"
	qport "go-prestachat/internal/infrastructure/queue/port"
	messaging "go-prestachat/internal/pkg/messaging/application/domain"
	"go-prestachat/internal/pkg/messaging/application/task"
	"go-prestachat/internal/pkg/messaging/application/usecase"
	repository "go-prestachat/internal/pkg/messaging/persistence/repository/port"
)

// Thread is what a viewer sees on opening a conversation. Messages carry the
// read flags as they were before this open marked them read.
type Thread struct {
	Messages    []messaging.Message
	MarkedRead  int64
	ReadPending bool
}

// Options carries the optional collaborators. Nil Queue disables deferring
// failed mark-reads; nil Events drops events.
type Options struct {
	Queue          qport.Client
	Events         eport.Publisher
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	ReadTimeout    time.Duration
	PublishTimeout time.Duration
	Now            func() time.Time
}

type Messenger struct {
	conversations repository.ConversationRepository

	start    *usecase.GetOrCreateConversationUseCase
	appendM  *usecase.AppendMessageUseCase
	list     *usecase.ListMessagesUseCase
	inbox    *usecase.ListConversationsUseCase
	markRead *usecase.MarkConversationReadUseCase

	queue          qport.Client
	events         eport.Publisher
	metrics        *metrics.Metrics
	log            *zap.Logger
	readTimeout    time.Duration
	publishTimeout time.Duration
	now            func() time.Time
}

// NewMessenger wires the use cases over the given repositories. Stats for the
// inbox are read through messages, so passing a cached message repository
// caches summaries too.
func NewMessenger(conversations repository.ConversationRepository, messages repository.MessageRepository, profiles repository.ProfileRepository, o Options) *Messenger {
	m := &Messenger{
		conversations:  conversations,
		start:          usecase.NewGetOrCreateConversationUseCase(conversations),
		appendM:        usecase.NewAppendMessageUseCase(conversations, messages),
		list:           usecase.NewListMessagesUseCase(conversations, messages),
		inbox:          usecase.NewListConversationsUseCase(conversations, messages, profiles),
		markRead:       usecase.NewMarkConversationReadUseCase(conversations, messages),
		queue:          o.Queue,
		events:         o.Events,
		metrics:        o.Metrics,
		log:            o.Logger,
		readTimeout:    o.ReadTimeout,
		publishTimeout: o.PublishTimeout,
		now:            o.Now,
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.metrics == nil {
		m.metrics = metrics.New()
	}
	if m.readTimeout <= 0 {
		m.readTimeout = 5 * time.Second
	}
	if m.publishTimeout <= 0 {
		m.publishTimeout = 2 * time.Second
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	return m
}

// StartConversation returns the id of the viewer's conversation with otherID,
// creating it on first contact.
func (m *Messenger) StartConversation(ctx context.Context, viewerID, otherID string) (string, error) {
	conv, created, err := m.start.Execute(ctx, usecase.GetOrCreateConversationInput{UserID: viewerID, OtherUserID: otherID})
	if err != nil {
		return "", err
	}
	if created {
		m.log.Info("conversation created", zap.String("conversation_id", conv.ID))
	}
	return conv.ID, nil
}

func (m *Messenger) ListConversations(ctx context.Context, viewerID string) ([]messaging.ConversationSummary, error) {
	return m.inbox.Execute(ctx, usecase.ListConversationsInput{ViewerID: viewerID})
}

func (m *Messenger) ListMessages(ctx context.Context, conversationID, viewerID string) ([]messaging.Message, error) {
	return m.list.Execute(ctx, usecase.ListMessagesInput{ConversationID: conversationID, ViewerID: viewerID})
}

// Send appends the message and announces it. The send has succeeded once the
// message is stored; event delivery is best effort.
func (m *Messenger) Send(ctx context.Context, conversationID, senderID, body string) (*messaging.Message, error) {
	msg, err := m.appendM.Execute(ctx, usecase.AppendMessageInput{ConversationID: conversationID, SenderID: senderID, Body: body})
	if err != nil {
		return nil, err
	}
	m.metrics.MessagesSent.Inc()

	var recipient string
	if conv, err := m.conversations.GetConversation(ctx, msg.ConversationID); err == nil {
		recipient, _ = conv.OtherParticipant(msg.SenderID)
	}
	m.publish(ctx, eport.Event{
		Type: EventMessageSent,
		Key:  msg.ConversationID,
		Payload: MessageSentEvent{
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			SenderID:       msg.SenderID,
			RecipientID:    recipient,
			CreatedAt:      msg.CreatedAt,
		},
	})
	return msg, nil
}

// MarkRead marks every message the viewer received in the conversation read
// and returns how many changed. The update runs detached from ctx
// cancellation, bounded by the read timeout, so a caller that navigates away
// never aborts it.
func (m *Messenger) MarkRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.readTimeout)
	defer cancel()

	n, err := m.markRead.Execute(ctx, usecase.MarkConversationReadInput{ConversationID: conversationID, ViewerID: viewerID})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	m.metrics.MessagesMarkedRead.Add(float64(n))
	convID, _ := messaging.ParseID("conversation_id", conversationID)
	viewer, _ := messaging.ParseID("viewer_id", viewerID)
	m.publish(ctx, eport.Event{
		Type: EventConversationRead,
		Key:  convID,
		Payload: ConversationReadEvent{
			ConversationID: convID,
			ViewerID:       viewer,
			Count:          n,
			ReadAt:         m.now(),
		},
	})
	return n, nil
}

// OpenConversation lists the thread, then marks it read for the viewer. If the
// backend rejects the update and a queue is configured, the update is
// deferred and ReadPending is set.
func (m *Messenger) OpenConversation(ctx context.Context, conversationID, viewerID string) (*Thread, error) {
	msgs, err := m.ListMessages(ctx, conversationID, viewerID)
	if err != nil {
		return nil, err
	}
	th := &Thread{Messages: msgs}

	n, err := m.MarkRead(ctx, conversationID, viewerID)
	if err == nil {
		th.MarkedRead = n
		return th, nil
	}
	if !errors.Is(err, usecase.ErrPersistence) || m.queue == nil {
		return nil, err
	}
	if qerr := m.deferMarkRead(ctx, conversationID, viewerID); qerr != nil {
		m.log.Error("mark-read could not be deferred",
			zap.String("conversation_id", conversationID),
			zap.String("viewer_id", viewerID),
			zap.Error(qerr))
		return nil, fmt.Errorf("%w (defer failed: %v)", err, qerr)
	}
	m.metrics.ReadDeferred.Inc()
	m.log.Warn("mark-read deferred",
		zap.String("conversation_id", conversationID),
		zap.String("viewer_id", viewerID),
		zap.Error(err))
	th.ReadPending = true
	return th, nil
}

func (m *Messenger) deferMarkRead(ctx context.Context, conversationID, viewerID string) error {
	// ids were validated by the list that preceded this call
	convID, _ := messaging.ParseID("conversation_id", conversationID)
	viewer, _ := messaging.ParseID("viewer_id", viewerID)
	t, opt, err := task.NewMarkReadTask(convID, viewer)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.readTimeout)
	defer cancel()
	_, err = m.queue.Enqueue(ctx, t, opt)
	if errors.Is(err, qport.ErrDuplicate) {
		// an earlier open already queued this viewer's update
		return nil
	}
	return err
}

func (m *Messenger) publish(ctx context.Context, e eport.Event) {
	if m.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.publishTimeout)
	defer cancel()
	if err := m.events.Publish(pctx, e); err != nil {
		m.metrics.EventsFailed.WithLabelValues(e.Type).Inc()
		m.log.Warn("event publish failed",
			zap.String("type", e.Type),
			zap.String("key", e.Key),
			zap.Error(err))
	}
}
