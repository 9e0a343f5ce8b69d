// Package engine defines the boundary between task orchestration and the
// process engine that owns the graph, the execution tokens and persistence.
package engine

import (
	"context"
	"time"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/status"
)

type (
	// Engine runs fn within a single transaction; returning an error rolls back
	// every change made through the session.
	Engine interface {
		Transact(ctx context.Context, fn func(ctx context.Context, s Session) error) error
	}

	// Session is a transactional view of the engine
	Session interface {
		Runtime
		TaskService
		History
		Management
	}

	Runtime interface {
		StartProcess(ctx context.Context, request *StartProcess) (*execution.Instance, error)
		SetProcessName(ctx context.Context, instanceID, name string) error
		// ProcessInstance returns a live instance
		ProcessInstance(ctx context.Context, instanceID string) (*execution.Instance, error)
		// UpdateBusinessStatus updates a live instance; use a Command for ended ones
		UpdateBusinessStatus(ctx context.Context, instanceID string, businessStatus status.Business) error
		DeleteProcessInstance(ctx context.Context, instanceID, reason string) error
		AddMultiInstanceExecution(ctx context.Context, activityKey, instanceID string, variables map[string]interface{}) (*execution.Execution, error)
		DeleteMultiInstanceExecution(ctx context.Context, executionID string, completed bool) error
		ChangeActivityState(ctx context.Context, move *ActivityMove) error
		// Variable resolves name in the execution scope chain, nil when absent
		Variable(ctx context.Context, executionID, name string) (interface{}, error)
	}

	TaskService interface {
		Tasks(ctx context.Context, query *TaskQuery) ([]*execution.Task, int, error)
		Task(ctx context.Context, taskID string) (*execution.Task, error)
		Complete(ctx context.Context, taskID string, variables map[string]interface{}) error
		Resolve(ctx context.Context, taskID string, variables map[string]interface{}) error
		Delegate(ctx context.Context, taskID, userID string) error
		SetAssignee(ctx context.Context, taskID, userID string) error
		SetVariableLocal(ctx context.Context, taskID, name string, value interface{}) error
		DeleteTask(ctx context.Context, taskID, reason string) error
		NewSubTask(ctx context.Context, parent *execution.Task, assignee string) (*execution.Task, error)
		AddComment(ctx context.Context, comment *execution.Comment) (*execution.Comment, error)
	}

	History interface {
		// HistoricInstances returns instances ordered by start time, newest first
		HistoricInstances(ctx context.Context, query *HistoricInstanceQuery) ([]*execution.Instance, error)
		HistoricTasks(ctx context.Context, query *HistoricTaskQuery) ([]*execution.HistoricTask, int, error)
		DeleteHistoricTask(ctx context.Context, taskID string) error
		Comments(ctx context.Context, instanceID string) ([]*execution.Comment, error)
	}

	Management interface {
		// ActivityBehavior returns the behavior of an activity, possibly a type
		// not declared in the graph package
		ActivityBehavior(ctx context.Context, definitionID, activityKey string) (graph.Behavior, error)
		Execute(ctx context.Context, command Command) error
	}

	// Command runs engine-internal logic within the current transaction
	Command interface {
		Execute(ctx context.Context, c CommandContext) error
	}

	// CommandContext exposes the transaction's working copies to a Command;
	// mutations through returned pointers are committed with the transaction.
	CommandContext interface {
		// Instance returns a live or ended instance
		Instance(instanceID string) (*execution.Instance, error)
		Execution(executionID string) (*execution.Execution, error)
		// Task returns an open task
		Task(taskID string) (*execution.Task, error)
		// Variable resolves name in the execution scope chain
		Variable(executionID, name string) (interface{}, bool)
		Now() time.Time
	}
)

type (
	StartProcess struct {
		DefinitionKey string
		BusinessKey   string
		TenantID      string
		StartUserID   string
		Variables     map[string]interface{}
	}

	// ActivityMove moves every token of From activities onto To
	ActivityMove struct {
		ProcessInstanceID string
		From              []string
		To                string
	}

	// Page selects a 1-based page; zero size means everything
	Page struct {
		Number int `json:"number,omitempty"`
		Size   int `json:"size,omitempty"`
	}

	TaskQuery struct {
		TaskID            string
		ProcessInstanceID string
		BusinessKey       string
		TenantID          string
		Assignee          string
		// CandidateOrAssigned matches tasks assigned to the user or, when
		// unassigned, offered to the user or any of CandidateGroups
		CandidateOrAssigned string
		CandidateGroups     []string
		ActivityKey         string
		ParentTaskID        string
		ExcludeSubTasks     bool
		NameLike            string
		DefinitionNameLike  string
		DefinitionKey       string
		Page                *Page
	}

	HistoricInstanceQuery struct {
		InstanceID  string
		BusinessKey string
		TenantID    string
	}

	HistoricTaskQuery struct {
		TaskID             string
		ProcessInstanceID  string
		TenantID           string
		Assignee           string
		Finished           bool
		ExcludeSubTasks    bool
		NameLike           string
		DefinitionNameLike string
		DefinitionKey      string
		// OrderByEndTime sorts ascending by end time, otherwise newest created first
		OrderByEndTime bool
		Page           *Page
	}
)

// Apply returns the requested page of n items as [from,to) bounds
func (p *Page) Apply(n int) (int, int) {
	if p == nil || p.Size <= 0 {
		return 0, n
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	from := (number - 1) * p.Size
	if from > n {
		from = n
	}
	to := from + p.Size
	if to > n {
		to = n
	}
	return from, to
}
