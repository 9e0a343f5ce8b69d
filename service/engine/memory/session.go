package memory

import (
	"sort"
	"time"

	"github.com/viant/taskflow/internal/clock"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

// session is a copy-on-write view of the engine
type session struct {
	engine  *Engine
	working map[string]*execution.Process
	base    map[string]int
	dirty   map[string]bool
	created map[string]bool
}

var _ engine.Session = (*session)(nil)

func newSession(e *Engine) *session {
	return &session{
		engine:  e,
		working: map[string]*execution.Process{},
		base:    map[string]int{},
		dirty:   map[string]bool{},
		created: map[string]bool{},
	}
}

func (s *session) now() time.Time {
	return clock.Now()
}

// view returns the process as seen by the transaction, nil if unknown. The
// result must not be mutated unless obtained via modify.
func (s *session) view(id string) *execution.Process {
	if process, ok := s.working[id]; ok {
		return process
	}
	process := s.engine.committed(id)
	if process == nil {
		return nil
	}
	if _, ok := s.base[id]; !ok {
		s.base[id] = process.SCN
	}
	return process
}

// modify returns a transaction-private copy of the process
func (s *session) modify(id string) (*execution.Process, error) {
	if process, ok := s.working[id]; ok {
		s.dirty[id] = true
		return process, nil
	}
	process := s.view(id)
	if process == nil {
		return nil, types.NewNotFoundError("process instance %s was not found", id)
	}
	clone := process.Clone()
	s.working[id] = clone
	s.dirty[id] = true
	return clone, nil
}

func (s *session) create(process *execution.Process) {
	id := process.ID()
	s.working[id] = process
	s.created[id] = true
	s.dirty[id] = true
}

// ids returns ids of every process visible to the transaction
func (s *session) ids() []string {
	ids := s.engine.committedIDs()
	for id := range s.created {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// processes returns every visible process
func (s *session) processes() []*execution.Process {
	var result []*execution.Process
	for _, id := range s.ids() {
		if process := s.view(id); process != nil {
			result = append(result, process)
		}
	}
	return result
}

func (s *session) findTask(taskID string) (*execution.Process, *execution.Task, error) {
	for _, process := range s.processes() {
		if task := process.LookupTask(taskID); task != nil {
			modified, err := s.modify(process.ID())
			if err != nil {
				return nil, nil, err
			}
			return modified, modified.LookupTask(taskID), nil
		}
	}
	return nil, nil, types.NewNotFoundError("task %s was not found", taskID)
}

func (s *session) findExecution(executionID string) (*execution.Process, *execution.Execution, error) {
	for _, process := range s.processes() {
		if process.LookupExecution(executionID) != nil {
			modified, err := s.modify(process.ID())
			if err != nil {
				return nil, nil, err
			}
			return modified, modified.LookupExecution(executionID), nil
		}
	}
	return nil, nil, types.NewNotFoundError("execution %s was not found", executionID)
}

func (s *session) findHistoricTask(taskID string) (*execution.Process, error) {
	for _, process := range s.processes() {
		if process.LookupHistoricTask(taskID) != nil {
			return s.modify(process.ID())
		}
	}
	return nil, types.NewNotFoundError("historic task %s was not found", taskID)
}

// lookup resolves name walking the execution scope chain up to the instance
func (s *session) lookup(process *execution.Process, executionID, name string) (interface{}, bool) {
	for id := executionID; id != ""; {
		current := process.LookupExecution(id)
		if current == nil {
			break
		}
		if value, ok := current.Variable(name); ok {
			return value, true
		}
		id = current.ParentID
	}
	value, ok := process.Instance.Variables[name]
	return value, ok
}

func (s *session) setVariables(process *execution.Process, variables map[string]interface{}) {
	if len(variables) == 0 {
		return
	}
	if process.Instance.Variables == nil {
		process.Instance.Variables = map[string]interface{}{}
	}
	for k, v := range variables {
		process.Instance.Variables[k] = v
	}
}
