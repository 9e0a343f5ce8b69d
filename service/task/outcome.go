package task

import "github.com/viant/taskflow/model/status"

// Action names a task action
type Action string

const (
	ActionStart             Action = "start"
	ActionComplete          Action = "complete"
	ActionResolve           Action = "resolve"
	ActionDelegate          Action = "delegate"
	ActionTransfer          Action = "transfer"
	ActionTerminate         Action = "terminate"
	ActionAddSignatories    Action = "addSignatories"
	ActionRemoveSignatories Action = "removeSignatories"
	ActionBack              Action = "back"
)

var topics = map[Action]string{
	ActionStart:             "task.started",
	ActionComplete:          "task.completed",
	ActionResolve:           "task.resolved",
	ActionDelegate:          "task.delegated",
	ActionTransfer:          "task.transferred",
	ActionTerminate:         "task.terminated",
	ActionAddSignatories:    "task.signatories.added",
	ActionRemoveSignatories: "task.signatories.removed",
	ActionBack:              "task.returned",
}

// Topic returns the event topic of the action
func (a Action) Topic() string {
	if topic, ok := topics[a]; ok {
		return topic
	}
	return "task." + string(a)
}

// Outcome describes a committed action; it is the payload of action events
type Outcome struct {
	Action            Action          `json:"action"`
	ProcessInstanceID string          `json:"processInstanceId,omitempty"`
	TaskID            string          `json:"taskId,omitempty"`
	BusinessKey       string          `json:"businessKey,omitempty"`
	ActivityKey       string          `json:"activityKey,omitempty"`
	BusinessStatus    status.Business `json:"businessStatus,omitempty"`
	UserID            string          `json:"userId,omitempty"`
	TenantID          string          `json:"tenantId,omitempty"`
	Comment           string          `json:"comment,omitempty"`
	// Reused is set when Start returned an already running request
	Reused bool `json:"reused,omitempty"`
}
