package task

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/service/engine"
)

const terminationReason = "terminated"

// Terminate ends the request the task belongs to. Any user of the tenant may
// terminate; open sub-tasks are deleted before the instance.
func (s *Service) Terminate(ctx context.Context, actor *identity.Actor, request *TerminateRequest) error {
	_, err := s.run(ctx, ActionTerminate, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.TaskID = request.TaskID
		task, err := tenantTask(ctx, session, actor, request.TaskID)
		if err != nil {
			return err
		}
		instance, err := liveInstance(ctx, session, task)
		if err != nil {
			return err
		}
		describe(outcome, task, instance)
		outcome.Comment = s.messages.terminated(actor.DisplayName(), request.Comment)
		if _, err = s.recorder.Annotate(ctx, session, task, execution.CommentTermination, outcome.Comment, actor); err != nil {
			return err
		}
		open, _, err := session.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: task.ProcessInstanceID, TenantID: actor.TenantID})
		if err != nil {
			return err
		}
		for _, candidate := range open {
			if !candidate.IsAuditRecord() {
				continue
			}
			if err = session.DeleteTask(ctx, candidate.ID, terminationReason); err != nil {
				return err
			}
		}
		if len(open) > 0 {
			if err = session.DeleteProcessInstance(ctx, task.ProcessInstanceID, terminationReason); err != nil {
				return err
			}
		}
		outcome.BusinessStatus = status.Termination
		return session.Execute(ctx, &UpdateBusinessStatus{ProcessInstanceID: task.ProcessInstanceID, Status: status.Termination})
	})
	return err
}
