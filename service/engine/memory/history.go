package memory

import (
	"context"
	"sort"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// HistoricInstances returns matching instances, live first then newest started
func (s *session) HistoricInstances(_ context.Context, query *engine.HistoricInstanceQuery) ([]*execution.Instance, error) {
	if query == nil {
		query = &engine.HistoricInstanceQuery{}
	}
	var result []*execution.Instance
	for _, process := range s.processes() {
		instance := process.Instance
		switch {
		case query.InstanceID != "" && instance.ID != query.InstanceID:
			continue
		case query.BusinessKey != "" && instance.BusinessKey != query.BusinessKey:
			continue
		case query.TenantID != "" && instance.TenantID != query.TenantID:
			continue
		}
		result = append(result, instance.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].IsEnded() != result[j].IsEnded() {
			return !result[i].IsEnded()
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result, nil
}

// HistoricTasks returns matching historic tasks
func (s *session) HistoricTasks(_ context.Context, query *engine.HistoricTaskQuery) ([]*execution.HistoricTask, int, error) {
	if query == nil {
		query = &engine.HistoricTaskQuery{}
	}
	var result []*execution.HistoricTask
	for _, process := range s.processes() {
		instance := process.Instance
		for _, task := range process.History {
			switch {
			case query.TaskID != "" && task.ID != query.TaskID:
				continue
			case query.ProcessInstanceID != "" && task.ProcessInstanceID != query.ProcessInstanceID:
				continue
			case query.TenantID != "" && task.TenantID != query.TenantID:
				continue
			case query.Assignee != "" && task.Assignee != query.Assignee:
				continue
			case query.Finished && !task.IsFinished():
				continue
			case query.ExcludeSubTasks && task.IsAuditRecord():
				continue
			case !contains(task.Name, query.NameLike):
				continue
			case !contains(instance.DefinitionName, query.DefinitionNameLike):
				continue
			case query.DefinitionKey != "" && instance.DefinitionKey != query.DefinitionKey:
				continue
			}
			result = append(result, task)
		}
	}
	if query.OrderByEndTime {
		sort.SliceStable(result, func(i, j int) bool {
			left, right := result[i].EndedAt, result[j].EndedAt
			switch {
			case left == nil:
				return false
			case right == nil:
				return true
			}
			return left.Before(*right)
		})
	} else {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	total := len(result)
	from, to := query.Page.Apply(total)
	page := make([]*execution.HistoricTask, 0, to-from)
	for _, task := range result[from:to] {
		page = append(page, task.Clone())
	}
	return page, total, nil
}

// DeleteHistoricTask purges a historic task with its comments
func (s *session) DeleteHistoricTask(_ context.Context, taskID string) error {
	process, err := s.findHistoricTask(taskID)
	if err != nil {
		return err
	}
	if process.LookupTask(taskID) != nil {
		return types.NewInvalidStateError("task %s is still running", taskID)
	}
	process.RemoveHistoricTask(taskID)
	return nil
}

// Comments returns instance comments in creation order
func (s *session) Comments(_ context.Context, instanceID string) ([]*execution.Comment, error) {
	process := s.view(instanceID)
	if process == nil {
		return nil, types.NewNotFoundError("process instance %s was not found", instanceID)
	}
	result := make([]*execution.Comment, 0, len(process.Comments))
	for _, comment := range process.Comments {
		clone := *comment
		result = append(result, &clone)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
