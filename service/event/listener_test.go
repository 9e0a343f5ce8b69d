package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow/service/messaging"
	"github.com/viant/taskflow/service/messaging/memory"
)

func TestListener(t *testing.T) {
	queue := memory.NewQueue[Event[string]](memory.DefaultConfig())
	publisher := NewPublisher[string](queue)
	received := make(chan *Event[string], 2)
	listener := NewListener[string](publisher, func(e *Event[string]) error {
		received <- e
		return nil
	}, nil)
	listener.Start(context.Background())
	listener.Start(context.Background())

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{Topic: "task.completed", TaskID: "t-1"}, "first")))
	require.NoError(t, publisher.Publish(ctx, &Event[string]{Context: &Context{Topic: "task.returned"}, Data: "second"}))

	for _, expect := range []string{"task.completed", "task.returned"} {
		select {
		case e := <-received:
			assert.Equal(t, expect, e.Topic())
			assert.False(t, e.CreatedAt.IsZero())
		case <-time.After(time.Second):
			t.Fatalf("event %s was not delivered", expect)
		}
	}
	listener.Stop()
	listener.Stop()
	assert.Equal(t, 0, queue.DLQSize())

	var empty *Event[string]
	assert.Equal(t, "", empty.Topic())
}

func TestListener_DeadLetter(t *testing.T) {
	config := memory.DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = time.Millisecond
	queue := memory.NewQueue[Event[string]](config)
	publisher := NewPublisher[string](queue)
	logger, hook := test.NewNullLogger()

	var attempts int32
	listener := NewListener[string](publisher, func(e *Event[string]) error {
		atomic.AddInt32(&attempts, 1)
		if e.Data == "poison" {
			return errors.New("cannot handle")
		}
		return nil
	}, logger)
	listener.Start(context.Background())
	defer listener.Stop()

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{Topic: "task.completed"}, "poison")))
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{Topic: "task.completed"}, "fine")))

	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
	letters := queue.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, "poison", letters[0].Data)
	assert.Equal(t, int32(config.MaxRetries+2), atomic.LoadInt32(&attempts))
	assert.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "event handler failed", hook.AllEntries()[0].Message)
}

type brokenQueue struct {
	calls int32
}

func (q *brokenQueue) Publish(context.Context, *Event[string]) error {
	return errors.New("broken")
}

func (q *brokenQueue) Consume(context.Context) (messaging.Message[Event[string]], error) {
	atomic.AddInt32(&q.calls, 1)
	return nil, errors.New("broken")
}

func TestListener_ConsumeBackoff(t *testing.T) {
	queue := &brokenQueue{}
	logger, _ := test.NewNullLogger()
	listener := NewListener[string](NewPublisher[string](queue), func(*Event[string]) error { return nil }, logger, WithBackoff[string](20*time.Millisecond))
	listener.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	listener.Stop()

	calls := atomic.LoadInt32(&queue.calls)
	assert.GreaterOrEqual(t, calls, int32(1))
	assert.LessOrEqual(t, calls, int32(10))
}
