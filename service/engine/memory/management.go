package memory

import (
	"context"
	"time"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

func (s *session) ActivityBehavior(_ context.Context, definitionID, activityKey string) (graph.Behavior, error) {
	definition := s.engine.definitionByID(definitionID)
	if definition == nil {
		return nil, types.NewNotFoundError("process definition %s was not found", definitionID)
	}
	activity := definition.Activity(activityKey)
	if activity == nil {
		return nil, types.NewNotFoundError("activity %s was not found in %s", activityKey, definitionID)
	}
	return activity.Behavior(), nil
}

func (s *session) Execute(ctx context.Context, command engine.Command) error {
	if command == nil {
		return types.NewValidationError("command was nil")
	}
	return command.Execute(ctx, &commandContext{session: s})
}

type commandContext struct {
	session *session
}

// Instance returns a mutable live or ended instance
func (c *commandContext) Instance(instanceID string) (*execution.Instance, error) {
	process, err := c.session.modify(instanceID)
	if err != nil {
		return nil, err
	}
	return process.Instance, nil
}

// Execution returns a mutable execution
func (c *commandContext) Execution(executionID string) (*execution.Execution, error) {
	_, token, err := c.session.findExecution(executionID)
	return token, err
}

// Task returns a mutable open task
func (c *commandContext) Task(taskID string) (*execution.Task, error) {
	_, task, err := c.session.findTask(taskID)
	return task, err
}

func (c *commandContext) Variable(executionID, name string) (interface{}, bool) {
	for _, process := range c.session.processes() {
		if process.LookupExecution(executionID) != nil {
			return c.session.lookup(process, executionID, name)
		}
	}
	return nil, false
}

func (c *commandContext) Now() time.Time {
	return c.session.now()
}
