package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/taskflow/internal/clock"
	"github.com/viant/taskflow/internal/idgen"
	"github.com/viant/taskflow/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries int           `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	RetryDelay time.Duration `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"`
	DeadLetter bool          `json:"deadLetter,omitempty" yaml:"deadLetter,omitempty"`
	Buffer     int           `json:"buffer,omitempty" yaml:"buffer,omitempty"`
	// Block makes Publish wait for room instead of failing with ErrQueueFull
	Block bool `json:"block,omitempty" yaml:"block,omitempty"`
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
		Buffer:     256,
	}
}

// Message is a message held by an in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
	lastErr    error
}

func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack redelivers the message after the retry delay until MaxRetries is
// exceeded, then moves it to the dead letter list when enabled
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	m.retryCount++
	m.lastErr = err

	q := m.queue
	if m.retryCount <= q.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      q,
			retryCount: m.retryCount,
			createdAt:  clock.Now(),
			lastErr:    err,
		}
		time.AfterFunc(q.config.RetryDelay, func() {
			select {
			case q.messages <- retry:
			default:
				q.deadLetter(retry)
			}
		})
		return nil
	}
	q.deadLetter(m)
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	dlqMu    sync.Mutex
	dlq      []*Message[T]
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
	}
}

// Publish adds a copy of t to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	}
	if !q.config.Block {
		select {
		case q.messages <- msg:
			return nil
		default:
			return messaging.ErrQueueFull
		}
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// DeadLetters returns payloads that exhausted their retries
func (q *Queue[T]) DeadLetters() []T {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	result := make([]T, 0, len(q.dlq))
	for _, msg := range q.dlq {
		result = append(result, msg.payload)
	}
	return result
}

func (q *Queue[T]) deadLetter(msg *Message[T]) {
	if !q.config.DeadLetter {
		return
	}
	q.dlqMu.Lock()
	q.dlq = append(q.dlq, msg)
	q.dlqMu.Unlock()
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
