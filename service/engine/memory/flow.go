package memory

import (
	"github.com/viant/taskflow/internal/idgen"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/meta"
)

// enter moves a token into activity; arrive=false bypasses join accounting
func (s *session) enter(process *execution.Process, definition *graph.Definition, activity *graph.Activity, arrive bool) error {
	if activity.Join && arrive {
		incoming := len(definition.Incoming(activity.Key))
		if process.Arrivals == nil {
			process.Arrivals = map[string]int{}
		}
		process.Arrivals[activity.Key]++
		if process.Arrivals[activity.Key] < incoming {
			return nil
		}
		delete(process.Arrivals, activity.Key)
	}
	if s.skip(process, activity) {
		return s.leave(process, definition, activity)
	}
	if activity.MultiInstance != nil {
		return s.enterMultiInstance(process, definition, activity)
	}
	token := s.newExecution(process, activity.Key, "")
	_, err := s.newTask(process, definition, activity, token)
	return err
}

func (s *session) enterMultiInstance(process *execution.Process, definition *graph.Definition, activity *graph.Activity) error {
	mi := activity.MultiInstance
	value, _ := s.lookup(process, "", mi.Collection)
	assignees, err := s.engine.variables.Strings(value)
	if err != nil {
		return types.NewOperationError(err)
	}
	if len(assignees) == 0 {
		return s.leave(process, definition, activity)
	}
	root := s.newExecution(process, activity.Key, "")
	root.MultiInstanceRoot = true
	root.Active = false
	root.SetVariable(mi.Collection, assignees)
	root.SetVariable(engine.NrOfInstances, len(assignees))
	root.SetVariable(engine.NrOfCompletedInstances, 0)
	if mi.Sequential {
		root.SetVariable(engine.NrOfActiveInstances, 1)
		assignees = assignees[:1]
	} else {
		root.SetVariable(engine.NrOfActiveInstances, len(assignees))
	}
	for i, assignee := range assignees {
		child := s.newExecution(process, activity.Key, root.ID)
		child.SetVariable(mi.ElementVariable, assignee)
		child.SetVariable(engine.LoopCounter, i)
		if _, err := s.newTask(process, definition, activity, child); err != nil {
			return err
		}
	}
	return nil
}

// advance moves the token of a completed task forward
func (s *session) advance(process *execution.Process, definition *graph.Definition, activity *graph.Activity, token *execution.Execution) error {
	if token.ParentID != "" {
		if root := process.LookupExecution(token.ParentID); root != nil && root.MultiInstanceRoot {
			return s.advanceMultiInstance(process, definition, activity, root, token)
		}
	}
	process.RemoveExecution(token.ID)
	return s.leave(process, definition, activity)
}

func (s *session) advanceMultiInstance(process *execution.Process, definition *graph.Definition, activity *graph.Activity, root, token *execution.Execution) error {
	completed := s.engine.intVariable(root, engine.NrOfCompletedInstances) + 1
	active := s.engine.intVariable(root, engine.NrOfActiveInstances) - 1
	if active < 0 {
		active = 0
	}
	root.SetVariable(engine.NrOfCompletedInstances, completed)
	root.SetVariable(engine.NrOfActiveInstances, active)

	if mi := activity.MultiInstance; mi != nil && mi.Sequential {
		value, _ := root.Variable(mi.Collection)
		assignees, err := s.engine.variables.Strings(value)
		if err != nil {
			return types.NewOperationError(err)
		}
		next := s.engine.intVariable(token, engine.LoopCounter) + 1
		if next < len(assignees) {
			token.SetVariable(engine.LoopCounter, next)
			token.SetVariable(mi.ElementVariable, assignees[next])
			root.SetVariable(engine.NrOfActiveInstances, 1)
			_, err = s.newTask(process, definition, activity, token)
			return err
		}
	} else {
		process.RemoveExecution(token.ID)
		if len(process.Children(root.ID)) > 0 {
			return nil
		}
	}
	s.removeScope(process, root.ID)
	return s.leave(process, definition, activity)
}

// removeScope removes an execution with all its children
func (s *session) removeScope(process *execution.Process, executionID string) {
	for _, child := range process.Children(executionID) {
		s.removeScope(process, child.ID)
	}
	process.RemoveExecution(executionID)
}

func (s *session) leave(process *execution.Process, definition *graph.Definition, activity *graph.Activity) error {
	if activity.IsEnd() {
		s.maybeEnd(process)
		return nil
	}
	for _, key := range activity.Next {
		next := definition.Activity(key)
		if next == nil {
			return types.NewConfigurationError("activity %s flows into undefined activity %s", activity.Key, key)
		}
		if err := s.enter(process, definition, next, true); err != nil {
			return err
		}
	}
	return nil
}

// maybeEnd ends the instance once no token or process task is left
func (s *session) maybeEnd(process *execution.Process) {
	if len(process.Executions) > 0 || process.Instance.IsEnded() {
		return
	}
	for _, task := range process.Tasks {
		if !task.IsAuditRecord() {
			return
		}
	}
	process.Instance.End(s.now(), "")
}

func (s *session) skip(process *execution.Process, activity *graph.Activity) bool {
	if activity.SkipExpression == "" {
		return false
	}
	enabled, _ := s.lookup(process, "", engine.SkipExpressionEnabled)
	if !s.engine.variables.Bool(enabled) {
		return false
	}
	if name, ok := meta.Reference(activity.SkipExpression); ok {
		value, _ := s.lookup(process, "", name)
		return s.engine.variables.Bool(value)
	}
	return s.engine.variables.Bool(activity.SkipExpression)
}

func (s *session) newExecution(process *execution.Process, activityKey, parentID string) *execution.Execution {
	ret := &execution.Execution{
		ID:                idgen.New(),
		ProcessInstanceID: process.ID(),
		ParentID:          parentID,
		ActivityKey:       activityKey,
		Active:            true,
		CreatedAt:         s.now(),
	}
	process.Executions = append(process.Executions, ret)
	return ret
}

func (s *session) newTask(process *execution.Process, definition *graph.Definition, activity *graph.Activity, token *execution.Execution) (*execution.Task, error) {
	resolve := meta.VariableLookup(func(name string) (interface{}, bool) {
		return s.lookup(process, token.ID, name)
	})
	task := &execution.Task{
		ID:                idgen.New(),
		ProcessInstanceID: process.ID(),
		ExecutionID:       token.ID,
		DefinitionID:      definition.ID,
		ActivityKey:       activity.Key,
		Name:              activity.Name,
		TenantID:          process.Instance.TenantID,
		CreatedAt:         s.now(),
	}
	if task.Name == "" {
		task.Name = activity.Key
	}
	if activity.Assignee != "" {
		task.Assignee = meta.Expand(activity.Assignee, resolve)
		if _, unresolved := meta.Reference(task.Assignee); unresolved {
			return nil, types.NewConfigurationError("activity %s assignee %s could not be resolved", activity.Key, activity.Assignee)
		}
	}
	for _, candidate := range activity.CandidateUsers {
		if user := meta.Expand(candidate, resolve); user != "" {
			task.CandidateUsers = append(task.CandidateUsers, user)
		}
	}
	for _, candidate := range activity.CandidateGroups {
		if group := meta.Expand(candidate, resolve); group != "" {
			task.CandidateGroups = append(task.CandidateGroups, group)
		}
	}
	process.Push(task)
	return task, nil
}

// finishTask removes an open task and closes its history entry; a non empty
// reason marks the task as deleted rather than completed
func (s *session) finishTask(process *execution.Process, task *execution.Task, reason string) {
	process.RemoveTask(task.ID)
	historic := process.LookupHistoricTask(task.ID)
	if historic == nil {
		historic = &execution.HistoricTask{}
		process.History = append(process.History, historic)
	}
	historic.Task = *task.Clone()
	historic.Finish(s.now(), reason)
}
