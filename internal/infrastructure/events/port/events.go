package port

import "context"

// Event is a domain notification for collaborators outside this service.
// Key groups related events (the conversation id) so consumers see them in
// order; Payload is JSON encoded by the adapter.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher delivers events. Publish may block on the network and must honour
// ctx. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
