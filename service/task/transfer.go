package task

import (
	"context"
	"fmt"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/service/engine"
)

// Transfer reassigns the task to request.UserID for good
func (s *Service) Transfer(ctx context.Context, actor *identity.Actor, request *TransferRequest) error {
	_, err := s.run(ctx, ActionTransfer, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
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
		outcome.Comment = orDefault(request.Comment, fmt.Sprintf(s.messages.Transferred, actor.DisplayName()))
		if _, err = s.recorder.Record(ctx, session, task, execution.CommentTransfer, outcome.Comment, actor); err != nil {
			return err
		}
		return session.SetAssignee(ctx, task.ID, request.UserID)
	})
	return err
}
