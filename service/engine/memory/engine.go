// Package memory provides a reference process engine keeping process
// aggregates in memory, optionally backed by a dao.Service.
//
// Each transaction works on copies of the processes it touches; commit
// validates their SCN against the committed state and installs all copies
// at once, so concurrent writers to the same instance fail with a conflict
// instead of overwriting each other.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/structology/conv"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/dao"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/variable"
	"go.uber.org/multierr"
)

// Engine is an in-memory implementation of engine.Engine
type Engine struct {
	mu          sync.RWMutex
	processes   map[string]*execution.Process
	definitions map[string]*graph.Definition // by id
	latest      map[string]*graph.Definition // by key
	pending     []*graph.Definition
	dao         dao.Service[string, execution.Process]
	logger      logrus.FieldLogger
	converter   *conv.Converter
	variables   *variable.Coercer
}

var _ engine.Engine = (*Engine)(nil)

// Transact runs fn in a transaction
func (e *Engine) Transact(ctx context.Context, fn func(ctx context.Context, s engine.Session) error) error {
	s := newSession(e)
	if err := fn(ctx, s); err != nil {
		return err
	}
	return e.commit(ctx, s)
}

// Deploy validates and registers definitions; a definition with an already
// deployed key becomes the latest when its version is not lower.
func (e *Engine) Deploy(definitions ...*graph.Definition) error {
	var err error
	for _, definition := range definitions {
		for _, issue := range definition.Validate() {
			err = multierr.Append(err, fmt.Errorf("%s: %w", definition.Key, issue))
		}
	}
	if err != nil {
		return &types.Error{Kind: types.KindConfiguration, Message: "invalid process definition: " + err.Error(), Cause: err}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, definition := range definitions {
		definition.EnsureID()
		e.definitions[definition.ID] = definition
		if current, ok := e.latest[definition.Key]; !ok || current.Version <= definition.Version {
			e.latest[definition.Key] = definition
		}
	}
	return nil
}

// Definitions returns the latest version of every deployed definition
func (e *Engine) Definitions() []*graph.Definition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var result []*graph.Definition
	for _, definition := range e.latest {
		result = append(result, definition)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Open restores committed processes from the DAO
func (e *Engine) Open(ctx context.Context) error {
	if e.dao == nil {
		return nil
	}
	processes, err := e.dao.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore processes: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, process := range processes {
		if process.ID() == "" {
			continue
		}
		e.processes[process.ID()] = process
	}
	e.logger.WithField("count", len(processes)).Debug("restored processes")
	return nil
}

func (e *Engine) definitionByKey(key string) *graph.Definition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest[key]
}

func (e *Engine) definitionByID(id string) *graph.Definition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.definitions[id]
}

func (e *Engine) intVariable(token *execution.Execution, name string) int {
	value, _ := token.Variable(name)
	return e.variables.Int(value)
}

func (e *Engine) committed(id string) *execution.Process {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.processes[id]
}

func (e *Engine) committedIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]string, 0, len(e.processes))
	for id := range e.processes {
		result = append(result, id)
	}
	return result
}

func (e *Engine) commit(ctx context.Context, s *session) error {
	if len(s.dirty) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		current, ok := e.processes[id]
		if s.created[id] {
			if ok {
				return types.NewConflictError("process instance %s already exists", id)
			}
			if other := e.liveDuplicate(s.working[id].Instance); other != "" {
				return types.NewConflictError("process instance %s is already running for business key %s", other, s.working[id].Instance.BusinessKey)
			}
			continue
		}
		if !ok || current.SCN != s.base[id] {
			e.logger.WithField("processInstanceId", id).Warn("concurrent modification detected")
			return types.NewConflictError("process instance %s was modified concurrently", id)
		}
	}

	for _, id := range ids {
		process := s.working[id]
		process.SCN++
		if e.dao != nil {
			if err := e.dao.Save(ctx, process); err != nil {
				return types.NewOperationError(fmt.Errorf("failed to persist process instance %s: %w", id, err))
			}
		}
	}
	for _, id := range ids {
		e.processes[id] = s.working[id]
	}
	e.logger.WithField("processInstanceIds", ids).Debug("committed")
	return nil
}

// liveDuplicate returns id of another committed live instance with the same
// business key and tenant; callers hold the lock.
func (e *Engine) liveDuplicate(instance *execution.Instance) string {
	if instance.BusinessKey == "" || instance.IsEnded() {
		return ""
	}
	for id, process := range e.processes {
		candidate := process.Instance
		if candidate.IsEnded() || id == instance.ID {
			continue
		}
		if candidate.BusinessKey == instance.BusinessKey && candidate.TenantID == instance.TenantID {
			return id
		}
	}
	return ""
}

// New creates an engine
func New(options ...Option) (*Engine, error) {
	ret := &Engine{
		processes:   map[string]*execution.Process{},
		definitions: map[string]*graph.Definition{},
		latest:      map[string]*graph.Definition{},
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.variables = variable.New(ret.converter)
	if len(ret.pending) > 0 {
		if err := ret.Deploy(ret.pending...); err != nil {
			return nil, err
		}
		ret.pending = nil
	}
	return ret, nil
}

// ProcessKey returns the storage key of a process aggregate
func ProcessKey(p *execution.Process) string {
	return p.ID()
}

// ProcessFields exposes filterable process fields to DAO criteria
func ProcessFields(p *execution.Process) map[string]string {
	if p.Instance == nil {
		return map[string]string{}
	}
	return map[string]string{
		"BusinessKey":    p.Instance.BusinessKey,
		"TenantID":       p.Instance.TenantID,
		"DefinitionKey":  p.Instance.DefinitionKey,
		"BusinessStatus": string(p.Instance.BusinessStatus),
	}
}
