package execution

import (
	"time"
)

// DelegationState tracks a delegated task
type DelegationState string

const (
	DelegationNone     DelegationState = ""
	DelegationPending  DelegationState = "pending"
	DelegationResolved DelegationState = "resolved"
)

// Task represents a human task
type Task struct {
	ID                string                 `json:"id"`
	ProcessInstanceID string                 `json:"processInstanceId,omitempty"`
	ExecutionID       string                 `json:"executionId,omitempty"`
	DefinitionID      string                 `json:"definitionId,omitempty"`
	ActivityKey       string                 `json:"activityKey,omitempty"`
	Name              string                 `json:"name"`
	Assignee          string                 `json:"assignee,omitempty"`
	Owner             string                 `json:"owner,omitempty"`
	CandidateUsers    []string               `json:"candidateUsers,omitempty"`
	CandidateGroups   []string               `json:"candidateGroups,omitempty"`
	Suspended         bool                   `json:"suspended,omitempty"`
	Delegation        DelegationState        `json:"delegation,omitempty"`
	ParentTaskID      string                 `json:"parentTaskId,omitempty"`
	TenantID          string                 `json:"tenantId,omitempty"`
	Variables         map[string]interface{} `json:"variables,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// IsAuditRecord returns true for sub-tasks spawned to carry an audit comment
func (t *Task) IsAuditRecord() bool {
	return t.ParentTaskID != ""
}

// IsVisibleTo returns true if user is the assignee, or the task is unassigned
// and user is a candidate either directly or through one of groups.
func (t *Task) IsVisibleTo(userID string, groups []string) bool {
	if t.Assignee != "" {
		return t.Assignee == userID
	}
	for _, candidate := range t.CandidateUsers {
		if candidate == userID {
			return true
		}
	}
	for _, group := range t.CandidateGroups {
		for _, candidate := range groups {
			if group == candidate {
				return true
			}
		}
	}
	return false
}

// Clone creates a copy that can be mutated without affecting the receiver
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	clone.CandidateUsers = append([]string(nil), t.CandidateUsers...)
	clone.CandidateGroups = append([]string(nil), t.CandidateGroups...)
	clone.Variables = cloneVariables(t.Variables)
	return &clone
}

// HistoricTask represents a task as retained after it left the runtime
type HistoricTask struct {
	Task
	EndedAt      *time.Time    `json:"endedAt,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	DeleteReason string        `json:"deleteReason,omitempty"`
}

// IsFinished returns true for tasks that were completed (not deleted)
func (h *HistoricTask) IsFinished() bool {
	return h.EndedAt != nil && h.DeleteReason == ""
}

// Finish marks the historic task as ended
func (h *HistoricTask) Finish(at time.Time, reason string) {
	h.EndedAt = &at
	h.Duration = at.Sub(h.CreatedAt)
	h.DeleteReason = reason
}

// Clone creates a copy that can be mutated without affecting the receiver
func (h *HistoricTask) Clone() *HistoricTask {
	if h == nil {
		return nil
	}
	clone := *h
	clone.Task = *h.Task.Clone()
	if h.EndedAt != nil {
		ended := *h.EndedAt
		clone.EndedAt = &ended
	}
	return &clone
}
