package execution

import "time"

// Execution represents a token (path of execution) of a process instance.
// Multi-instance activities use a root execution holding the loop variables
// with one child per running instance.
type Execution struct {
	ID                string                 `json:"id"`
	ProcessInstanceID string                 `json:"processInstanceId"`
	ParentID          string                 `json:"parentId,omitempty"`
	ActivityKey       string                 `json:"activityKey"`
	MultiInstanceRoot bool                   `json:"multiInstanceRoot,omitempty"`
	Active            bool                   `json:"active"`
	Completed         bool                   `json:"completed,omitempty"`
	Variables         map[string]interface{} `json:"variables,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// Variable returns a local variable
func (e *Execution) Variable(name string) (interface{}, bool) {
	value, ok := e.Variables[name]
	return value, ok
}

// SetVariable sets a local variable
func (e *Execution) SetVariable(name string, value interface{}) {
	if e.Variables == nil {
		e.Variables = make(map[string]interface{})
	}
	e.Variables[name] = value
}

// Clone creates a deep copy of the execution so that the caller can mutate it
// without affecting the original instance.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Variables = cloneVariables(e.Variables)
	return &clone
}
