package multiinstance

import (
	"context"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/variable"
)

// Resolver builds descriptors from the engine's activity behavior
type Resolver struct {
	variables *variable.Coercer
}

// Resolve returns the descriptor of the task's activity or nil when the
// activity is not a multi-instance one
func (r *Resolver) Resolve(ctx context.Context, s engine.Session, task *execution.Task) (*Descriptor, error) {
	if task == nil {
		return nil, nil
	}
	behavior, err := s.ActivityBehavior(ctx, task.DefinitionID, task.ActivityKey)
	if err != nil {
		return nil, err
	}
	switch actual := behavior.(type) {
	case *graph.ParallelMultiInstance:
		return &Descriptor{
			Mode:               Parallel,
			ActivityKey:        task.ActivityKey,
			ElementVariable:    actual.ElementVariable,
			CollectionVariable: actual.Collection,
		}, nil
	case *graph.SequentialMultiInstance:
		ret := &Descriptor{
			Mode:               Sequential,
			ActivityKey:        task.ActivityKey,
			ElementVariable:    actual.ElementVariable,
			CollectionVariable: actual.Collection,
		}
		value, err := s.Variable(ctx, task.ExecutionID, actual.Collection)
		if err != nil {
			return nil, err
		}
		if ret.Assignees, err = r.variables.Strings(value); err != nil {
			return nil, err
		}
		counter, err := s.Variable(ctx, task.ExecutionID, engine.LoopCounter)
		if err != nil {
			return nil, err
		}
		ret.LoopCounter = r.variables.Int(counter)
		return ret, nil
	}
	return nil, nil
}

// New creates a resolver
func New(variables *variable.Coercer) *Resolver {
	if variables == nil {
		variables = variable.New(nil)
	}
	return &Resolver{variables: variables}
}
