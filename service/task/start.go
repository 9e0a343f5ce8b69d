package task

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// ProcessInstanceVariable is the task-local variable holding the instance id
const ProcessInstanceVariable = "processInstanceId"

// Start starts a process for request.BusinessKey and hands its first task to
// the actor. A request that is already running is returned as is.
func (s *Service) Start(ctx context.Context, actor *identity.Actor, request *StartRequest) (*StartResult, error) {
	result := &StartResult{}
	_, err := s.run(ctx, ActionStart, actor, func(ctx context.Context, session engine.Session, outcome *Outcome) error {
		if err := request.Validate(); err != nil {
			return err
		}
		outcome.BusinessKey = request.BusinessKey
		instances, err := session.HistoricInstances(ctx, &engine.HistoricInstanceQuery{BusinessKey: request.BusinessKey, TenantID: actor.TenantID})
		if err != nil {
			return err
		}
		var latest *execution.Instance
		if len(instances) > 0 {
			latest = instances[0]
			if err = status.CheckStartStatus(latest.BusinessStatus); err != nil {
				return err
			}
		}
		open, _, err := session.Tasks(ctx, &engine.TaskQuery{BusinessKey: request.BusinessKey, TenantID: actor.TenantID, ExcludeSubTasks: true})
		if err != nil {
			return err
		}
		if len(open) > 0 {
			result.ProcessInstanceID, result.TaskID = open[0].ProcessInstanceID, open[0].ID
			describe(outcome, open[0], latest)
			outcome.Reused = true
			return nil
		}

		variables := make(map[string]interface{}, len(request.Variables)+2)
		for k, v := range request.Variables {
			variables[k] = v
		}
		variables[engine.SkipExpressionEnabled] = true
		variables[engine.Initiator] = actor.UserID
		instance, err := session.StartProcess(ctx, &engine.StartProcess{
			DefinitionKey: request.ProcessKey,
			BusinessKey:   request.BusinessKey,
			TenantID:      actor.TenantID,
			StartUserID:   actor.UserID,
			Variables:     variables,
		})
		if err != nil {
			return err
		}
		if err = session.SetProcessName(ctx, instance.ID, instance.DefinitionName); err != nil {
			return err
		}
		tasks, _, err := session.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: instance.ID, TenantID: actor.TenantID, ExcludeSubTasks: true})
		if err != nil {
			return err
		}
		if len(tasks) != 1 {
			return types.NewConfigurationError("first activity must resolve to a single task - check process definition %s (got %d)", request.ProcessKey, len(tasks))
		}
		first := tasks[0]
		if err = session.UpdateBusinessStatus(ctx, instance.ID, status.Draft); err != nil {
			return err
		}
		if err = session.SetAssignee(ctx, first.ID, actor.UserID); err != nil {
			return err
		}
		if err = session.SetVariableLocal(ctx, first.ID, ProcessInstanceVariable, instance.ID); err != nil {
			return err
		}
		instance.BusinessStatus = status.Draft
		describe(outcome, first, instance)
		result.ProcessInstanceID, result.TaskID = instance.ID, first.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
