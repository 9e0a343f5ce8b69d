package task

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

const (
	messageTaskNotFound = "task %s does not exist or is not assigned to you"
	messageSuspended    = "task %s is suspended"
)

// visibleTask returns a task the actor is assigned to or a candidate for
func visibleTask(ctx context.Context, s engine.Session, actor *identity.Actor, taskID string) (*execution.Task, error) {
	return lookup(ctx, s, taskID, &engine.TaskQuery{
		TaskID:              taskID,
		TenantID:            actor.TenantID,
		CandidateOrAssigned: actor.UserID,
		CandidateGroups:     actor.RoleIDs,
		ExcludeSubTasks:     true,
	})
}

// assignedTask returns a task assigned to the actor
func assignedTask(ctx context.Context, s engine.Session, actor *identity.Actor, taskID string) (*execution.Task, error) {
	return lookup(ctx, s, taskID, &engine.TaskQuery{
		TaskID:          taskID,
		TenantID:        actor.TenantID,
		Assignee:        actor.UserID,
		ExcludeSubTasks: true,
	})
}

// tenantTask returns any task of the actor's tenant
func tenantTask(ctx context.Context, s engine.Session, actor *identity.Actor, taskID string) (*execution.Task, error) {
	return lookup(ctx, s, taskID, &engine.TaskQuery{
		TaskID:          taskID,
		TenantID:        actor.TenantID,
		ExcludeSubTasks: true,
	})
}

func lookup(ctx context.Context, s engine.Session, taskID string, query *engine.TaskQuery) (*execution.Task, error) {
	tasks, _, err := s.Tasks(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, types.NewNotFoundError(messageTaskNotFound, taskID)
	}
	task := tasks[0]
	if task.Suspended {
		return nil, types.NewSuspendedError(messageSuspended, taskID)
	}
	return task, nil
}

// liveInstance returns the task's instance when its status still allows changes
func liveInstance(ctx context.Context, s engine.Session, task *execution.Task) (*execution.Instance, error) {
	instance, err := s.ProcessInstance(ctx, task.ProcessInstanceID)
	if err != nil {
		return nil, err
	}
	if err = status.CheckStatus(instance.BusinessStatus); err != nil {
		return nil, err
	}
	return instance, nil
}

// describe copies task and instance identity onto outcome
func describe(outcome *Outcome, task *execution.Task, instance *execution.Instance) {
	if task != nil {
		outcome.TaskID = task.ID
		outcome.ProcessInstanceID = task.ProcessInstanceID
		outcome.ActivityKey = task.ActivityKey
	}
	if instance != nil {
		outcome.ProcessInstanceID = instance.ID
		outcome.BusinessKey = instance.BusinessKey
		outcome.BusinessStatus = instance.BusinessStatus
	}
}
