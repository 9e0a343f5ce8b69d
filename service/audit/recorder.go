// Package audit records the comment trail of task actions.
package audit

import (
	"context"

	"github.com/viant/taskflow/internal/clock"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/service/engine"
)

// Recorder writes audit comments through an engine session
type Recorder struct{}

// Annotate appends a comment to a live task
func (r *Recorder) Annotate(ctx context.Context, s engine.Session, task *execution.Task, kind execution.CommentKind, message string, actor *identity.Actor) (*execution.Comment, error) {
	return s.AddComment(ctx, &execution.Comment{
		TaskID:            task.ID,
		ProcessInstanceID: task.ProcessInstanceID,
		Kind:              kind,
		Message:           message,
		UserID:            actor.UserID,
		CreatedAt:         clock.Now(),
	})
}

// Record spawns an audit sub-task of parent assigned to actor, comments it
// and completes it, leaving parent untouched.
func (r *Recorder) Record(ctx context.Context, s engine.Session, parent *execution.Task, kind execution.CommentKind, message string, actor *identity.Actor) (*execution.Comment, error) {
	sub, err := s.NewSubTask(ctx, parent, actor.UserID)
	if err != nil {
		return nil, err
	}
	comment, err := r.Annotate(ctx, s, sub, kind, message, actor)
	if err != nil {
		return nil, err
	}
	if err = s.Complete(ctx, sub.ID, nil); err != nil {
		return nil, err
	}
	return comment, nil
}

// New creates a recorder
func New() *Recorder {
	return &Recorder{}
}
