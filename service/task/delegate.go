package task

import (
	"context"
	"fmt"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/service/engine"
)

// Delegate hands the task to request.UserID until the delegate completes
// it; the current assignee stays its owner.
func (s *Service) Delegate(ctx context.Context, actor *identity.Actor, request *DelegateRequest) error {
	_, err := s.run(ctx, ActionDelegate, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.TaskID = request.TaskID
		task, err := visibleTask(ctx, session, actor, request.TaskID)
		if err != nil {
			return err
		}
		instance, err := liveInstance(ctx, session, task)
		if err != nil {
			return err
		}
		describe(outcome, task, instance)
		outcome.Comment = fmt.Sprintf(s.messages.Delegated, actor.DisplayName(), orDefault(request.NickName, request.UserID))
		if _, err = s.recorder.Record(ctx, session, task, execution.CommentPending, outcome.Comment, actor); err != nil {
			return err
		}
		return session.Delegate(ctx, task.ID, request.UserID)
	})
	return err
}
