package task

import (
	"context"

	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/service/engine"
)

// UpdateBusinessStatus sets the business status of a live or ended instance
type UpdateBusinessStatus struct {
	ProcessInstanceID string
	Status            status.Business
}

func (c *UpdateBusinessStatus) Execute(_ context.Context, cc engine.CommandContext) error {
	instance, err := cc.Instance(c.ProcessInstanceID)
	if err != nil {
		return err
	}
	instance.BusinessStatus = c.Status
	return nil
}
