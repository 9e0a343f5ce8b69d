// Package event carries notifications about committed task actions.
package event

import (
	"time"

	"github.com/viant/taskflow/internal/clock"
)

// Context identifies what an event is about
type Context struct {
	Topic             string `json:"topic"`
	ProcessInstanceID string `json:"processInstanceId,omitempty"`
	TaskID            string `json:"taskId,omitempty"`
	BusinessKey       string `json:"businessKey,omitempty"`
	UserID            string `json:"userId,omitempty"`
	TenantID          string `json:"tenantId,omitempty"`
	TimeTakenMs       int    `json:"timeTakenMs,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Topic returns the event topic or an empty string
func (e *Event[T]) Topic() string {
	if e == nil || e.Context == nil {
		return ""
	}
	return e.Context.Topic
}
