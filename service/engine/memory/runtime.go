package memory

import (
	"context"

	"github.com/viant/taskflow/internal/idgen"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// StartProcess starts the latest definition deployed under request.DefinitionKey
func (s *session) StartProcess(_ context.Context, request *engine.StartProcess) (*execution.Instance, error) {
	if request == nil || request.DefinitionKey == "" {
		return nil, types.NewValidationError("process definition key was empty")
	}
	definition := s.engine.definitionByKey(request.DefinitionKey)
	if definition == nil {
		return nil, types.NewNotFoundError("process definition %s was not found", request.DefinitionKey)
	}
	if request.BusinessKey != "" {
		for _, process := range s.processes() {
			candidate := process.Instance
			if !candidate.IsEnded() && candidate.BusinessKey == request.BusinessKey && candidate.TenantID == request.TenantID {
				return nil, types.NewInvalidStateError("process instance %s is already running for business key %s", candidate.ID, request.BusinessKey)
			}
		}
	}
	instance := &execution.Instance{
		ID:             idgen.New(),
		BusinessKey:    request.BusinessKey,
		TenantID:       request.TenantID,
		DefinitionID:   definition.ID,
		DefinitionKey:  definition.Key,
		DefinitionName: definition.Name,
		StartUserID:    request.StartUserID,
		Variables:      map[string]interface{}{},
		StartedAt:      s.now(),
	}
	for k, v := range request.Variables {
		instance.Variables[k] = v
	}
	process := &execution.Process{Instance: instance}
	s.create(process)
	if err := s.enter(process, definition, definition.InitialActivity(), true); err != nil {
		return nil, err
	}
	s.maybeEnd(process)
	return instance.Clone(), nil
}

func (s *session) SetProcessName(_ context.Context, instanceID, name string) error {
	process, err := s.modify(instanceID)
	if err != nil {
		return err
	}
	process.Instance.Name = name
	return nil
}

func (s *session) ProcessInstance(_ context.Context, instanceID string) (*execution.Instance, error) {
	process := s.view(instanceID)
	if process == nil || process.Instance.IsEnded() {
		return nil, types.NewNotFoundError("process instance %s was not found", instanceID)
	}
	return process.Instance.Clone(), nil
}

func (s *session) UpdateBusinessStatus(_ context.Context, instanceID string, businessStatus status.Business) error {
	process, err := s.live(instanceID)
	if err != nil {
		return err
	}
	process.Instance.BusinessStatus = businessStatus
	return nil
}

// DeleteProcessInstance ends a live instance; open sub-tasks must be deleted first
func (s *session) DeleteProcessInstance(_ context.Context, instanceID, reason string) error {
	process, err := s.live(instanceID)
	if err != nil {
		return err
	}
	for _, task := range process.Tasks {
		if task.IsAuditRecord() {
			return types.NewInvalidStateError("process instance %s has open sub-task %s", instanceID, task.ID)
		}
	}
	if reason == "" {
		reason = "deleted"
	}
	for _, task := range append([]*execution.Task(nil), process.Tasks...) {
		s.finishTask(process, task, reason)
	}
	process.Executions = nil
	process.Arrivals = nil
	process.Instance.End(s.now(), reason)
	return nil
}

// AddMultiInstanceExecution adds an instance to a running parallel multi-instance activity
func (s *session) AddMultiInstanceExecution(_ context.Context, activityKey, instanceID string, variables map[string]interface{}) (*execution.Execution, error) {
	process, err := s.live(instanceID)
	if err != nil {
		return nil, err
	}
	definition, err := s.definition(process)
	if err != nil {
		return nil, err
	}
	activity := definition.Activity(activityKey)
	if activity == nil || activity.MultiInstance == nil || activity.MultiInstance.Sequential {
		return nil, types.NewInvalidStateError("activity %s is not a parallel multi-instance activity", activityKey)
	}
	root := multiInstanceRoot(process, activityKey)
	if root == nil {
		return nil, types.NewInvalidStateError("activity %s is not active", activityKey)
	}
	loop := s.engine.intVariable(root, engine.NrOfInstances)
	child := s.newExecution(process, activityKey, root.ID)
	for k, v := range variables {
		child.SetVariable(k, v)
	}
	child.SetVariable(engine.LoopCounter, loop)
	root.SetVariable(engine.NrOfInstances, loop+1)
	root.SetVariable(engine.NrOfActiveInstances, s.engine.intVariable(root, engine.NrOfActiveInstances)+1)
	if _, err = s.newTask(process, definition, activity, child); err != nil {
		return nil, err
	}
	return child.Clone(), nil
}

// DeleteMultiInstanceExecution removes a parallel multi-instance execution
// with its open tasks
func (s *session) DeleteMultiInstanceExecution(_ context.Context, executionID string, completed bool) error {
	process, token, err := s.findExecution(executionID)
	if err != nil {
		return err
	}
	root := process.LookupExecution(token.ParentID)
	if root == nil || !root.MultiInstanceRoot {
		return types.NewInvalidStateError("execution %s is not a multi-instance execution", executionID)
	}
	for _, task := range append([]*execution.Task(nil), process.Tasks...) {
		if task.ExecutionID == executionID {
			s.finishTask(process, task, "deleted")
		}
	}
	process.RemoveExecution(executionID)
	root.SetVariable(engine.NrOfInstances, s.engine.intVariable(root, engine.NrOfInstances)-1)
	if active := s.engine.intVariable(root, engine.NrOfActiveInstances) - 1; active >= 0 {
		root.SetVariable(engine.NrOfActiveInstances, active)
	}
	if completed {
		root.SetVariable(engine.NrOfCompletedInstances, s.engine.intVariable(root, engine.NrOfCompletedInstances)+1)
	}
	if len(process.Children(root.ID)) > 0 {
		return nil
	}
	definition, err := s.definition(process)
	if err != nil {
		return err
	}
	s.removeScope(process, root.ID)
	return s.leave(process, definition, definition.Activity(root.ActivityKey))
}

// ChangeActivityState cancels every token at move.From and enters move.To once
func (s *session) ChangeActivityState(_ context.Context, move *engine.ActivityMove) error {
	if move == nil || len(move.From) == 0 || move.To == "" {
		return types.NewValidationError("activity move requires source and target activities")
	}
	process, err := s.live(move.ProcessInstanceID)
	if err != nil {
		return err
	}
	definition, err := s.definition(process)
	if err != nil {
		return err
	}
	target := definition.Activity(move.To)
	if target == nil {
		return types.NewNotFoundError("activity %s was not found in %s", move.To, definition.ID)
	}
	for _, from := range move.From {
		if definition.Activity(from) == nil {
			return types.NewNotFoundError("activity %s was not found in %s", from, definition.ID)
		}
		for _, task := range append([]*execution.Task(nil), process.Tasks...) {
			if task.ActivityKey == from && !task.IsAuditRecord() {
				s.finishTask(process, task, "moved to "+move.To)
			}
		}
		for _, token := range append([]*execution.Execution(nil), process.Executions...) {
			if token.ActivityKey == from {
				process.RemoveExecution(token.ID)
			}
		}
	}
	process.Arrivals = nil
	return s.enter(process, definition, target, false)
}

func (s *session) Variable(_ context.Context, executionID, name string) (interface{}, error) {
	for _, process := range s.processes() {
		if process.LookupExecution(executionID) != nil {
			value, _ := s.lookup(process, executionID, name)
			return value, nil
		}
	}
	return nil, types.NewNotFoundError("execution %s was not found", executionID)
}

func (s *session) live(instanceID string) (*execution.Process, error) {
	if view := s.view(instanceID); view == nil || view.Instance.IsEnded() {
		return nil, types.NewNotFoundError("process instance %s was not found", instanceID)
	}
	return s.modify(instanceID)
}

func multiInstanceRoot(process *execution.Process, activityKey string) *execution.Execution {
	for _, candidate := range process.Executions {
		if candidate.MultiInstanceRoot && candidate.ActivityKey == activityKey {
			return candidate
		}
	}
	return nil
}
