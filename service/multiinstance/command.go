package multiinstance

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/variable"
)

// AddSequence appends signers to a running sequential multi-instance activity
type AddSequence struct {
	ExecutionID        string
	CollectionVariable string
	Assignees          []string
	variables          *variable.Coercer
}

func (c *AddSequence) Execute(_ context.Context, cc engine.CommandContext) error {
	root, list, err := sequenceScope(cc, c.variables, c.ExecutionID, c.CollectionVariable)
	if err != nil {
		return err
	}
	list = Insert(list, c.Assignees)
	root.SetVariable(c.CollectionVariable, list)
	root.SetVariable(engine.NrOfInstances, len(list))
	return nil
}

// DeleteSequence removes pending signers from a running sequential
// multi-instance activity. Removed holds the assignees actually dropped
// once executed.
type DeleteSequence struct {
	ExecutionID        string
	CollectionVariable string
	Assignees          []string
	Removed            []string
	variables          *variable.Coercer
}

func (c *DeleteSequence) Execute(_ context.Context, cc engine.CommandContext) error {
	root, list, err := sequenceScope(cc, c.variables, c.ExecutionID, c.CollectionVariable)
	if err != nil {
		return err
	}
	counter, _ := cc.Variable(c.ExecutionID, engine.LoopCounter)
	list, c.Removed = Remove(list, c.variables.Int(counter), c.Assignees)
	if len(c.Removed) == 0 {
		return types.NewValidationError("none of %v is a pending co-signer", c.Assignees)
	}
	root.SetVariable(c.CollectionVariable, list)
	root.SetVariable(engine.NrOfInstances, len(list))
	return nil
}

// sequenceScope returns the multi-instance root execution of executionID and
// its current collection
func sequenceScope(cc engine.CommandContext, variables *variable.Coercer, executionID, collection string) (*execution.Execution, []string, error) {
	token, err := cc.Execution(executionID)
	if err != nil {
		return nil, nil, err
	}
	root := token
	if !token.MultiInstanceRoot {
		if token.ParentID == "" {
			return nil, nil, types.NewInvalidStateError("execution %s is not part of a multi-instance activity", executionID)
		}
		if root, err = cc.Execution(token.ParentID); err != nil {
			return nil, nil, err
		}
		if !root.MultiInstanceRoot {
			return nil, nil, types.NewInvalidStateError("execution %s is not part of a multi-instance activity", executionID)
		}
	}
	value, _ := root.Variable(collection)
	list, err := variables.Strings(value)
	if err != nil {
		return nil, nil, types.NewOperationError(err)
	}
	return root, list, nil
}

// NewAddSequence creates a command adding assignees to the collection of the
// descriptor's activity
func (r *Resolver) NewAddSequence(executionID string, descriptor *Descriptor, assignees []string) *AddSequence {
	return &AddSequence{ExecutionID: executionID, CollectionVariable: descriptor.CollectionVariable, Assignees: assignees, variables: r.variables}
}

// NewDeleteSequence creates a command removing pending assignees
func (r *Resolver) NewDeleteSequence(executionID string, descriptor *Descriptor, assignees []string) *DeleteSequence {
	return &DeleteSequence{
		ExecutionID:        executionID,
		CollectionVariable: descriptor.CollectionVariable,
		Assignees:          assignees,
		variables:          r.variables,
	}
}
