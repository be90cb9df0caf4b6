package adapter

import (
	"context"

	"go-prestachat/internal/infrastructure/events/port"
)

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

var _ port.Publisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, port.Event) error { return nil }
func (NoopPublisher) Close() error                              { return nil }
