package event

import (
	"context"

	"github.com/viant/taskflow/internal/clock"
	"github.com/viant/taskflow/service/messaging"
	"github.com/viant/taskflow/service/messaging/memory"
)

type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// NewMemoryPublisher creates a publisher backed by an in-memory queue
func NewMemoryPublisher[T any](config memory.Config) *Publisher[T] {
	return NewPublisher[T](memory.NewQueue[Event[T]](config))
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = clock.Now()
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event message; the caller acks or nacks it
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}
