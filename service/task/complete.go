package task

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/service/engine"
)

// Complete approves a task. A task under pending delegation is resolved
// instead: it returns to its owner and stays open.
func (s *Service) Complete(ctx context.Context, actor *identity.Actor, request *CompleteRequest) error {
	_, err := s.run(ctx, ActionComplete, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
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
		message := orDefault(request.Message, s.messages.Agree)
		outcome.Comment = message

		if task.Delegation == execution.DelegationPending {
			outcome.Action = ActionResolve
			if err = session.Resolve(ctx, task.ID, request.Variables); err != nil {
				return err
			}
			_, err = s.recorder.Record(ctx, session, task, execution.CommentPass, message, actor)
			return err
		}

		if err = session.UpdateBusinessStatus(ctx, task.ProcessInstanceID, status.Waiting); err != nil {
			return err
		}
		if _, err = s.recorder.Annotate(ctx, session, task, execution.CommentPass, message, actor); err != nil {
			return err
		}
		if err = session.Complete(ctx, task.ID, request.Variables); err != nil {
			return err
		}
		_, open, err := session.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: task.ProcessInstanceID, TenantID: actor.TenantID})
		if err != nil {
			return err
		}
		outcome.BusinessStatus = status.Waiting
		if open == 0 {
			if err = session.Execute(ctx, &UpdateBusinessStatus{ProcessInstanceID: task.ProcessInstanceID, Status: status.Finish}); err != nil {
				return err
			}
			outcome.BusinessStatus = status.Finish
		}
		return nil
	})
	return err
}
