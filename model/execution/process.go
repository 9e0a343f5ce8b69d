package execution

import (
	"sort"
)

// Process is the persisted aggregate of a process instance: the instance row
// plus its executions, open tasks, task history and audit comments. SCN is
// incremented on every committed change and used for optimistic concurrency.
type Process struct {
	SCN        int             `json:"scn"`
	Instance   *Instance       `json:"instance"`
	Executions []*Execution    `json:"executions,omitempty"`
	Tasks      []*Task         `json:"tasks,omitempty"`
	History    []*HistoricTask `json:"history,omitempty"`
	Comments   []*Comment      `json:"comments,omitempty"`
	// Arrivals counts tokens that reached a join activity, keyed by activity
	Arrivals map[string]int `json:"arrivals,omitempty"`
}

// ID returns process instance id
func (p *Process) ID() string {
	if p.Instance == nil {
		return ""
	}
	return p.Instance.ID
}

// LookupTask returns an open task by id
func (p *Process) LookupTask(id string) *Task {
	for _, candidate := range p.Tasks {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

// LookupHistoricTask returns a historic task by id
func (p *Process) LookupHistoricTask(id string) *HistoricTask {
	for _, candidate := range p.History {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

// LookupExecution returns an execution by id
func (p *Process) LookupExecution(id string) *Execution {
	for _, candidate := range p.Executions {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

// Children returns executions whose parent is id
func (p *Process) Children(id string) []*Execution {
	var result []*Execution
	for _, candidate := range p.Executions {
		if candidate.ParentID == id {
			result = append(result, candidate)
		}
	}
	return result
}

// Push adds open tasks together with their historic counterpart
func (p *Process) Push(tasks ...*Task) {
	for _, task := range tasks {
		p.Tasks = append(p.Tasks, task)
		p.History = append(p.History, &HistoricTask{Task: *task.Clone()})
	}
}

// RemoveTask removes an open task, returns false if it was not found
func (p *Process) RemoveTask(id string) bool {
	for i, candidate := range p.Tasks {
		if candidate.ID == id {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveExecution removes an execution, returns false if it was not found
func (p *Process) RemoveExecution(id string) bool {
	for i, candidate := range p.Executions {
		if candidate.ID == id {
			p.Executions = append(p.Executions[:i], p.Executions[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveHistoricTask purges a historic task and its comments
func (p *Process) RemoveHistoricTask(id string) bool {
	removed := false
	for i, candidate := range p.History {
		if candidate.ID == id {
			p.History = append(p.History[:i], p.History[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return false
	}
	comments := p.Comments[:0]
	for _, comment := range p.Comments {
		if comment.TaskID != id {
			comments = append(comments, comment)
		}
	}
	p.Comments = comments
	return true
}

// FinishedHistory returns completed non audit tasks ordered by end time
func (p *Process) FinishedHistory() []*HistoricTask {
	var result []*HistoricTask
	for _, candidate := range p.History {
		if candidate.IsFinished() && !candidate.IsAuditRecord() {
			result = append(result, candidate)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EndedAt.Before(*result[j].EndedAt)
	})
	return result
}

// Clone creates a deep copy of the aggregate
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	clone := &Process{SCN: p.SCN, Instance: p.Instance.Clone()}
	for _, item := range p.Executions {
		clone.Executions = append(clone.Executions, item.Clone())
	}
	for _, item := range p.Tasks {
		clone.Tasks = append(clone.Tasks, item.Clone())
	}
	for _, item := range p.History {
		clone.History = append(clone.History, item.Clone())
	}
	for _, item := range p.Comments {
		comment := *item
		clone.Comments = append(clone.Comments, &comment)
	}
	if p.Arrivals != nil {
		clone.Arrivals = make(map[string]int, len(p.Arrivals))
		for k, v := range p.Arrivals {
			clone.Arrivals[k] = v
		}
	}
	return clone
}
