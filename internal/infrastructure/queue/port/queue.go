package port

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by Enqueue when an identical task is still held
// under EnqueueOption.UniqueTTL. The earlier task will do the work.
var ErrDuplicate = errors.New("queue: duplicate task")

// Task is a background job: a stable type name plus opaque payload bytes.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error schedules a retry under the
// adapter's policy, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption is mapped onto the backend best-effort. Zero values mean
// unspecified.
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	MaxRetry  int
	// UniqueTTL drops duplicates of the same type and payload within the window.
	UniqueTTL time.Duration
	Timeout   time.Duration
}

type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs workers. Run blocks until ctx is cancelled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
}
