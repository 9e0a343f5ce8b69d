package task

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// Back returns the request to its first completed step and hands every
// resulting task to whoever completed that step. It returns the process
// instance id.
func (s *Service) Back(ctx context.Context, actor *identity.Actor, request *BackRequest) (string, error) {
	outcome, err := s.run(ctx, ActionBack, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.TaskID = request.TaskID
		task, err := assignedTask(ctx, session, actor, request.TaskID)
		if err != nil {
			return err
		}
		instance, err := liveInstance(ctx, session, task)
		if err != nil {
			return err
		}
		describe(outcome, task, instance)
		target, err := rewindTarget(ctx, session, actor, task)
		if err != nil {
			return err
		}
		outcome.Comment = orDefault(request.Message, s.messages.Returned)
		if _, err = s.recorder.Annotate(ctx, session, task, execution.CommentBack, outcome.Comment, actor); err != nil {
			return err
		}
		open, _, err := session.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: task.ProcessInstanceID, TenantID: actor.TenantID, ExcludeSubTasks: true})
		if err != nil {
			return err
		}
		move := &engine.ActivityMove{ProcessInstanceID: task.ProcessInstanceID, To: target.ActivityKey}
		if len(open) > 1 {
			move.From = activityKeys(open)
		} else {
			move.From = []string{task.ActivityKey}
		}
		if err = session.ChangeActivityState(ctx, move); err != nil {
			return err
		}
		rewound, _, err := session.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: task.ProcessInstanceID, TenantID: actor.TenantID, ExcludeSubTasks: true})
		if err != nil {
			return err
		}
		for _, candidate := range rewound {
			if err = session.SetAssignee(ctx, candidate.ID, target.Assignee); err != nil {
				return err
			}
		}
		outcome.BusinessStatus = status.Back
		return session.UpdateBusinessStatus(ctx, task.ProcessInstanceID, status.Back)
	})
	if err != nil {
		return "", err
	}
	return outcome.ProcessInstanceID, nil
}

// rewindTarget returns the first task completed in the task's instance
func rewindTarget(ctx context.Context, session engine.Session, actor *identity.Actor, task *execution.Task) (*execution.HistoricTask, error) {
	history, _, err := session.HistoricTasks(ctx, &engine.HistoricTaskQuery{
		ProcessInstanceID: task.ProcessInstanceID,
		TenantID:          actor.TenantID,
		Finished:          true,
		ExcludeSubTasks:   true,
		OrderByEndTime:    true,
		Page:              &engine.Page{Number: 1, Size: 1},
	})
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, types.NewInvalidStateError("process instance %s has no completed step to return to", task.ProcessInstanceID)
	}
	return history[0], nil
}

// activityKeys returns distinct activity keys in task order
func activityKeys(tasks []*execution.Task) []string {
	seen := make(map[string]bool, len(tasks))
	var result []string
	for _, task := range tasks {
		if seen[task.ActivityKey] {
			continue
		}
		seen[task.ActivityKey] = true
		result = append(result, task.ActivityKey)
	}
	return result
}
