package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBackoff is the pause after a failed Consume
const DefaultBackoff = 100 * time.Millisecond

// Handler processes an event; a returned error nacks the message so the
// queue redelivers it or moves it to its dead letters
type Handler[T any] func(*Event[T]) error

// ListenerOption customises a listener
type ListenerOption[T any] func(l *Listener[T])

// WithBackoff sets the pause after a failed Consume
func WithBackoff[T any](backoff time.Duration) ListenerOption[T] {
	return func(l *Listener[T]) {
		l.backoff = backoff
	}
}

// Listener delivers published events to a handler on its own goroutine
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   Handler[T]
	logger    logrus.FieldLogger
	backoff   time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex
}

func NewListener[T any](publisher *Publisher[T], handler Handler[T], logger logrus.FieldLogger, options ...ListenerOption[T]) *Listener[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ret := &Listener[T]{publisher: publisher, handler: handler, logger: logger, backoff: DefaultBackoff}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start begins consuming; calling Start on a running listener is a no-op
func (l *Listener[T]) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop stops consuming and waits for the in-flight handler to return
func (l *Listener[T]) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		msg, err := l.publisher.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			l.logger.WithError(err).Warn("failed to consume event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.backoff):
			}
			continue
		}
		if msg == nil {
			continue
		}
		l.deliver(msg.ID(), msg.T(), msg.Ack, msg.Nack)
	}
}

func (l *Listener[T]) deliver(id string, event *Event[T], ack func() error, nack func(error) error) {
	if err := l.handler(event); err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{"messageId": id, "topic": event.Topic()}).Warn("event handler failed")
		if err = nack(err); err != nil {
			l.logger.WithError(err).WithField("messageId", id).Warn("failed to nack event")
		}
		return
	}
	if err := ack(); err != nil {
		l.logger.WithError(err).WithField("messageId", id).Warn("failed to ack event")
	}
}
