package task

import (
	"context"
	"fmt"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/multiinstance"
)

const messageNotCoSign = "current step is not a co-sign step"

// AddSignatories adds co-signers to the co-sign step the task belongs to
func (s *Service) AddSignatories(ctx context.Context, actor *identity.Actor, request *AddSignatoryRequest) error {
	_, err := s.run(ctx, ActionAddSignatories, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.TaskID = request.TaskID
		task, descriptor, err := s.coSignTask(ctx, session, actor, request.TaskID, outcome)
		if err != nil {
			return err
		}
		switch descriptor.Mode {
		case multiinstance.Parallel:
			for _, assignee := range request.Assignees {
				variables := map[string]interface{}{descriptor.ElementVariable: assignee}
				if _, err = session.AddMultiInstanceExecution(ctx, task.ActivityKey, task.ProcessInstanceID, variables); err != nil {
					return err
				}
			}
		case multiinstance.Sequential:
			if err = session.Execute(ctx, s.resolver.NewAddSequence(task.ExecutionID, descriptor, request.Assignees)); err != nil {
				return err
			}
		}
		outcome.Comment = fmt.Sprintf(s.messages.SignersAdded, actor.DisplayName(), names(request.AssigneeNames, request.Assignees))
		_, err = s.recorder.Record(ctx, session, task, execution.CommentSign, outcome.Comment, actor)
		return err
	})
	return err
}

// RemoveSignatories removes co-signers from the co-sign step the task
// belongs to. The actor's own execution cannot be removed.
func (s *Service) RemoveSignatories(ctx context.Context, actor *identity.Actor, request *RemoveSignatoryRequest) error {
	_, err := s.run(ctx, ActionRemoveSignatories, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.TaskID = request.TaskID
		task, descriptor, err := s.coSignTask(ctx, session, actor, request.TaskID, outcome)
		if err != nil {
			return err
		}
		labels, ids := request.AssigneeNames, request.AssigneeIDs
		switch descriptor.Mode {
		case multiinstance.Parallel:
			for _, executionID := range request.ExecutionIDs {
				if executionID == task.ExecutionID {
					return types.NewValidationError("co-signer of task %s cannot remove itself", task.ID)
				}
				if err = session.DeleteMultiInstanceExecution(ctx, executionID, false); err != nil {
					return err
				}
			}
			for _, taskID := range request.TaskIDs {
				if err = session.DeleteHistoricTask(ctx, taskID); err != nil {
					return err
				}
			}
		case multiinstance.Sequential:
			command := s.resolver.NewDeleteSequence(task.ExecutionID, descriptor, request.AssigneeIDs)
			if err = session.Execute(ctx, command); err != nil {
				return err
			}
			labels, ids = removedLabels(request.AssigneeNames, request.AssigneeIDs, command.Removed), command.Removed
		}
		outcome.Comment = fmt.Sprintf(s.messages.SignersRemoved, actor.DisplayName(), names(labels, ids))
		_, err = s.recorder.Record(ctx, session, task, execution.CommentSignOff, outcome.Comment, actor)
		return err
	})
	return err
}

// coSignTask returns the visible task with its co-sign descriptor
func (s *Service) coSignTask(ctx context.Context, session engine.Session, actor *identity.Actor, taskID string, outcome *Outcome) (*execution.Task, *multiinstance.Descriptor, error) {
	task, err := visibleTask(ctx, session, actor, taskID)
	if err != nil {
		return nil, nil, err
	}
	instance, err := liveInstance(ctx, session, task)
	if err != nil {
		return nil, nil, err
	}
	describe(outcome, task, instance)
	descriptor, err := s.resolver.Resolve(ctx, session, task)
	if err != nil {
		return nil, nil, err
	}
	if descriptor == nil {
		return nil, nil, types.NewValidationError(messageNotCoSign)
	}
	return task, descriptor, nil
}

// removedLabels returns the display names of the removed assignees, keeping
// names aligned with ids only when both were supplied pairwise
func removedLabels(labels, ids, removed []string) []string {
	if len(labels) != len(ids) {
		return nil
	}
	pending := map[string]int{}
	for _, id := range removed {
		pending[id]++
	}
	var result []string
	for i, id := range ids {
		if pending[id] > 0 {
			pending[id]--
			result = append(result, labels[i])
		}
	}
	return result
}
