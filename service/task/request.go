package task

import (
	"fmt"
	"strings"

	"github.com/viant/taskflow/model/types"
)

// Messages holds the audit texts used when the caller supplies none.
// Templates take the acting user's display name as the first argument.
type Messages struct {
	Agree       string `json:"agree,omitempty" yaml:"agree,omitempty"`
	Returned    string `json:"returned,omitempty" yaml:"returned,omitempty"`
	Terminated  string `json:"terminated,omitempty" yaml:"terminated,omitempty"`
	Transferred string `json:"transferred,omitempty" yaml:"transferred,omitempty"`
	// Delegated takes the delegate's name as the second argument
	Delegated string `json:"delegated,omitempty" yaml:"delegated,omitempty"`
	// SignersAdded and SignersRemoved take the joined co-signer names
	SignersAdded   string `json:"signersAdded,omitempty" yaml:"signersAdded,omitempty"`
	SignersRemoved string `json:"signersRemoved,omitempty" yaml:"signersRemoved,omitempty"`
}

// DefaultMessages returns the built-in audit texts
func DefaultMessages() Messages {
	return Messages{
		Agree:          "agree",
		Returned:       "returned",
		Terminated:     "%s terminated the request",
		Transferred:    "%s transferred the task",
		Delegated:      "%s delegated to %s",
		SignersAdded:   "%s added co-signers [%s]",
		SignersRemoved: "%s removed co-signers [%s]",
	}
}

// merge fills blank fields from defaults
func (m Messages) merge(defaults Messages) Messages {
	pick := func(value, fallback string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return value
	}
	return Messages{
		Agree:          pick(m.Agree, defaults.Agree),
		Returned:       pick(m.Returned, defaults.Returned),
		Terminated:     pick(m.Terminated, defaults.Terminated),
		Transferred:    pick(m.Transferred, defaults.Transferred),
		Delegated:      pick(m.Delegated, defaults.Delegated),
		SignersAdded:   pick(m.SignersAdded, defaults.SignersAdded),
		SignersRemoved: pick(m.SignersRemoved, defaults.SignersRemoved),
	}
}

func (m Messages) terminated(user, comment string) string {
	message := fmt.Sprintf(m.Terminated, user)
	if comment = strings.TrimSpace(comment); comment != "" {
		message += ": " + comment
	}
	return message
}

type (
	StartRequest struct {
		BusinessKey string                 `json:"businessKey"`
		ProcessKey  string                 `json:"processKey"`
		Variables   map[string]interface{} `json:"variables,omitempty"`
	}

	StartResult struct {
		ProcessInstanceID string `json:"processInstanceId"`
		TaskID            string `json:"taskId"`
	}

	CompleteRequest struct {
		TaskID    string                 `json:"taskId"`
		Message   string                 `json:"message,omitempty"`
		Variables map[string]interface{} `json:"variables,omitempty"`
	}

	DelegateRequest struct {
		TaskID   string `json:"taskId"`
		UserID   string `json:"userId"`
		NickName string `json:"nickName,omitempty"`
	}

	TerminateRequest struct {
		TaskID  string `json:"taskId"`
		Comment string `json:"comment,omitempty"`
	}

	TransferRequest struct {
		TaskID  string `json:"taskId"`
		UserID  string `json:"userId"`
		Comment string `json:"comment,omitempty"`
	}

	AddSignatoryRequest struct {
		TaskID        string   `json:"taskId"`
		Assignees     []string `json:"assignees"`
		AssigneeNames []string `json:"assigneeNames,omitempty"`
	}

	// RemoveSignatoryRequest names the co-signers to drop: executions and
	// their historic tasks for parallel steps, assignee ids for sequential ones
	RemoveSignatoryRequest struct {
		TaskID        string   `json:"taskId"`
		ExecutionIDs  []string `json:"executionIds,omitempty"`
		TaskIDs       []string `json:"taskIds,omitempty"`
		AssigneeIDs   []string `json:"assigneeIds,omitempty"`
		AssigneeNames []string `json:"assigneeNames,omitempty"`
	}

	BackRequest struct {
		TaskID  string `json:"taskId"`
		Message string `json:"message,omitempty"`
	}
)

func (r *StartRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.BusinessKey) == "" {
		return types.NewValidationError("business key is required to start a workflow")
	}
	if strings.TrimSpace(r.ProcessKey) == "" {
		return types.NewValidationError("process key is required to start a workflow")
	}
	return nil
}

func (r *CompleteRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	return requireTaskID(r.TaskID)
}

func (r *DelegateRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	if err := requireTaskID(r.TaskID); err != nil {
		return err
	}
	if strings.TrimSpace(r.UserID) == "" {
		return types.NewValidationError("delegate user id was empty")
	}
	return nil
}

func (r *TerminateRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	return requireTaskID(r.TaskID)
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	if err := requireTaskID(r.TaskID); err != nil {
		return err
	}
	if strings.TrimSpace(r.UserID) == "" {
		return types.NewValidationError("transfer user id was empty")
	}
	return nil
}

func (r *AddSignatoryRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	if err := requireTaskID(r.TaskID); err != nil {
		return err
	}
	if len(r.Assignees) == 0 {
		return types.NewValidationError("no co-signers to add")
	}
	return nil
}

func (r *RemoveSignatoryRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	if err := requireTaskID(r.TaskID); err != nil {
		return err
	}
	if len(r.ExecutionIDs)+len(r.TaskIDs)+len(r.AssigneeIDs) == 0 {
		return types.NewValidationError("no co-signers to remove")
	}
	return nil
}

func (r *BackRequest) Validate() error {
	if r == nil {
		return requireTaskID("")
	}
	return requireTaskID(r.TaskID)
}

func requireTaskID(taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return types.NewValidationError("task id was empty")
	}
	return nil
}

// names returns display names, falling back to ids
func names(labels, ids []string) string {
	if len(labels) == 0 {
		labels = ids
	}
	return strings.Join(labels, ", ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
