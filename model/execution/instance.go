package execution

import (
	"time"

	"github.com/viant/taskflow/model/status"
)

// Instance represents a running or historic process instance.
type Instance struct {
	ID             string                 `json:"id"`
	BusinessKey    string                 `json:"businessKey"`
	TenantID       string                 `json:"tenantId,omitempty"`
	BusinessStatus status.Business        `json:"businessStatus"`
	DefinitionID   string                 `json:"definitionId"`
	DefinitionKey  string                 `json:"definitionKey"`
	DefinitionName string                 `json:"definitionName,omitempty"`
	Name           string                 `json:"name,omitempty"`
	StartUserID    string                 `json:"startUserId,omitempty"`
	Variables      map[string]interface{} `json:"variables,omitempty"`
	StartedAt      time.Time              `json:"startedAt"`
	EndedAt        *time.Time             `json:"endedAt,omitempty"`
	DeleteReason   string                 `json:"deleteReason,omitempty"`
}

// IsEnded returns true once the instance completed or was deleted
func (i *Instance) IsEnded() bool {
	return i.EndedAt != nil
}

// End marks the instance as ended
func (i *Instance) End(at time.Time, reason string) {
	i.EndedAt = &at
	i.DeleteReason = reason
}

// Clone creates a copy that can be mutated without affecting the receiver
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Variables = cloneVariables(i.Variables)
	if i.EndedAt != nil {
		ended := *i.EndedAt
		clone.EndedAt = &ended
	}
	return &clone
}

func cloneVariables(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	ret := make(map[string]interface{}, len(src))
	for k, v := range src {
		switch items := v.(type) {
		case []string:
			v = append([]string(nil), items...)
		case []interface{}:
			v = append([]interface{}(nil), items...)
		}
		ret[k] = v
	}
	return ret
}
