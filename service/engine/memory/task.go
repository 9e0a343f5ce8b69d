package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/viant/taskflow/internal/idgen"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// Tasks returns open tasks matching query, newest first
func (s *session) Tasks(_ context.Context, query *engine.TaskQuery) ([]*execution.Task, int, error) {
	if query == nil {
		query = &engine.TaskQuery{}
	}
	var result []*execution.Task
	for _, process := range s.processes() {
		for _, task := range process.Tasks {
			if matchTask(query, process.Instance, task) {
				result = append(result, task)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	total := len(result)
	from, to := query.Page.Apply(total)
	page := make([]*execution.Task, 0, to-from)
	for _, task := range result[from:to] {
		page = append(page, task.Clone())
	}
	return page, total, nil
}

func matchTask(query *engine.TaskQuery, instance *execution.Instance, task *execution.Task) bool {
	switch {
	case query.TaskID != "" && task.ID != query.TaskID:
		return false
	case query.ProcessInstanceID != "" && task.ProcessInstanceID != query.ProcessInstanceID:
		return false
	case query.BusinessKey != "" && instance.BusinessKey != query.BusinessKey:
		return false
	case query.TenantID != "" && task.TenantID != query.TenantID:
		return false
	case query.Assignee != "" && task.Assignee != query.Assignee:
		return false
	case query.CandidateOrAssigned != "" && !task.IsVisibleTo(query.CandidateOrAssigned, query.CandidateGroups):
		return false
	case query.ActivityKey != "" && task.ActivityKey != query.ActivityKey:
		return false
	case query.ParentTaskID != "" && task.ParentTaskID != query.ParentTaskID:
		return false
	case query.ExcludeSubTasks && task.IsAuditRecord():
		return false
	case !contains(task.Name, query.NameLike):
		return false
	case !contains(instance.DefinitionName, query.DefinitionNameLike):
		return false
	case query.DefinitionKey != "" && instance.DefinitionKey != query.DefinitionKey:
		return false
	}
	return true
}

func contains(value, fragment string) bool {
	if fragment == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(fragment))
}

func (s *session) Task(_ context.Context, taskID string) (*execution.Task, error) {
	for _, process := range s.processes() {
		if task := process.LookupTask(taskID); task != nil {
			return task.Clone(), nil
		}
	}
	return nil, types.NewNotFoundError("task %s was not found", taskID)
}

// Complete completes a task and moves its token forward
func (s *session) Complete(_ context.Context, taskID string, variables map[string]interface{}) error {
	process, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if task.Suspended {
		return types.NewSuspendedError("task %s is suspended", taskID)
	}
	if task.Delegation == execution.DelegationPending {
		return types.NewInvalidStateError("task %s is pending delegation and must be resolved first", taskID)
	}
	s.setVariables(process, variables)
	s.finishTask(process, task, "")
	if task.IsAuditRecord() {
		return nil
	}
	definition, err := s.definition(process)
	if err != nil {
		return err
	}
	activity := definition.Activity(task.ActivityKey)
	token := process.LookupExecution(task.ExecutionID)
	if activity == nil || token == nil {
		s.maybeEnd(process)
		return nil
	}
	return s.advance(process, definition, activity, token)
}

// Resolve hands a delegated task back to its owner
func (s *session) Resolve(_ context.Context, taskID string, variables map[string]interface{}) error {
	process, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if task.Delegation != execution.DelegationPending {
		return types.NewInvalidStateError("task %s is not pending delegation", taskID)
	}
	s.setVariables(process, variables)
	task.Assignee = task.Owner
	task.Delegation = execution.DelegationResolved
	return nil
}

// Delegate assigns the task to userID keeping the current assignee as owner
func (s *session) Delegate(_ context.Context, taskID, userID string) error {
	_, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if userID == "" {
		return types.NewValidationError("delegate user id was empty")
	}
	if task.Owner == "" {
		task.Owner = task.Assignee
	}
	task.Assignee = userID
	task.Delegation = execution.DelegationPending
	return nil
}

func (s *session) SetAssignee(_ context.Context, taskID, userID string) error {
	_, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	task.Assignee = userID
	return nil
}

func (s *session) SetVariableLocal(_ context.Context, taskID, name string, value interface{}) error {
	_, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if task.Variables == nil {
		task.Variables = map[string]interface{}{}
	}
	task.Variables[name] = value
	return nil
}

// DeleteTask deletes a standalone sub-task
func (s *session) DeleteTask(_ context.Context, taskID, reason string) error {
	process, task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if !task.IsAuditRecord() {
		return types.NewInvalidStateError("task %s is part of a running process and cannot be deleted", taskID)
	}
	if reason == "" {
		reason = "deleted"
	}
	s.finishTask(process, task, reason)
	return nil
}

// NewSubTask creates an open sub-task of parent
func (s *session) NewSubTask(_ context.Context, parent *execution.Task, assignee string) (*execution.Task, error) {
	if parent == nil {
		return nil, types.NewValidationError("parent task was nil")
	}
	process, actual, err := s.findTask(parent.ID)
	if err != nil {
		return nil, err
	}
	task := &execution.Task{
		ID:                idgen.New(),
		ProcessInstanceID: actual.ProcessInstanceID,
		DefinitionID:      actual.DefinitionID,
		ActivityKey:       actual.ActivityKey,
		Name:              actual.Name,
		Assignee:          assignee,
		ParentTaskID:      actual.ID,
		TenantID:          actual.TenantID,
		CreatedAt:         s.now(),
	}
	process.Push(task)
	return task.Clone(), nil
}

// AddComment appends a comment to a live or historic task
func (s *session) AddComment(_ context.Context, comment *execution.Comment) (*execution.Comment, error) {
	if comment == nil || comment.TaskID == "" {
		return nil, types.NewValidationError("comment task id was empty")
	}
	process, err := s.modify(comment.ProcessInstanceID)
	if err != nil {
		return nil, err
	}
	if process.LookupTask(comment.TaskID) == nil && process.LookupHistoricTask(comment.TaskID) == nil {
		return nil, types.NewNotFoundError("task %s was not found in process instance %s", comment.TaskID, comment.ProcessInstanceID)
	}
	ret := *comment
	if ret.ID == "" {
		ret.ID = idgen.New()
	}
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = s.now()
	}
	process.Comments = append(process.Comments, &ret)
	clone := ret
	return &clone, nil
}

func (s *session) definition(process *execution.Process) (*graph.Definition, error) {
	definition := s.engine.definitionByID(process.Instance.DefinitionID)
	if definition == nil {
		return nil, types.NewNotFoundError("process definition %s was not found", process.Instance.DefinitionID)
	}
	return definition, nil
}
