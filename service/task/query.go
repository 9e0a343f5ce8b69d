package task

import (
	"context"
	"time"

	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/tracing"
)

type (
	// Filter narrows task listings
	Filter struct {
		Name           string       `json:"name,omitempty"`
		DefinitionName string       `json:"definitionName,omitempty"`
		DefinitionKey  string       `json:"definitionKey,omitempty"`
		Page           *engine.Page `json:"page,omitempty"`
	}

	// Row is a task listing entry
	Row struct {
		ID                 string          `json:"id"`
		Name               string          `json:"name"`
		ActivityKey        string          `json:"activityKey"`
		ProcessInstanceID  string          `json:"processInstanceId"`
		ExecutionID        string          `json:"executionId,omitempty"`
		Assignee           string          `json:"assignee,omitempty"`
		BusinessKey        string          `json:"businessKey,omitempty"`
		BusinessStatus     status.Business `json:"businessStatus,omitempty"`
		BusinessStatusName string          `json:"businessStatusName,omitempty"`
		DefinitionKey      string          `json:"definitionKey,omitempty"`
		DefinitionName     string          `json:"definitionName,omitempty"`
		MultiInstance      bool            `json:"multiInstance,omitempty"`
		CreatedAt          time.Time       `json:"createdAt"`
		EndedAt            *time.Time      `json:"endedAt,omitempty"`
	}

	// Page is one page of a listing with the total number of matches
	Page struct {
		Rows  []*Row `json:"rows"`
		Total int    `json:"total"`
	}
)

// ListTodo lists open tasks the actor is assigned to or a candidate for
func (s *Service) ListTodo(ctx context.Context, actor *identity.Actor, filter *Filter) (*Page, error) {
	return s.listOpen(ctx, "task.listTodo", actor, filter, true)
}

// ListAllTodo lists every open task of the actor's tenant
func (s *Service) ListAllTodo(ctx context.Context, actor *identity.Actor, filter *Filter) (*Page, error) {
	return s.listOpen(ctx, "task.listAllTodo", actor, filter, false)
}

// ListDone lists tasks the actor completed, newest first
func (s *Service) ListDone(ctx context.Context, actor *identity.Actor, filter *Filter) (*Page, error) {
	return s.listFinished(ctx, "task.listDone", actor, filter, true)
}

// ListAllDone lists every completed task of the actor's tenant, newest first
func (s *Service) ListAllDone(ctx context.Context, actor *identity.Actor, filter *Filter) (*Page, error) {
	return s.listFinished(ctx, "task.listAllDone", actor, filter, false)
}

func (s *Service) listOpen(ctx context.Context, name string, actor *identity.Actor, filter *Filter, own bool) (*Page, error) {
	if filter == nil {
		filter = &Filter{}
	}
	result := &Page{}
	err := s.query(ctx, name, actor, func(ctx context.Context, session engine.Session) error {
		query := &engine.TaskQuery{
			TenantID:           actor.TenantID,
			ExcludeSubTasks:    true,
			NameLike:           filter.Name,
			DefinitionNameLike: filter.DefinitionName,
			DefinitionKey:      filter.DefinitionKey,
			Page:               filter.Page,
		}
		if own {
			query.CandidateOrAssigned = actor.UserID
			query.CandidateGroups = actor.RoleIDs
		}
		tasks, total, err := session.Tasks(ctx, query)
		if err != nil {
			return err
		}
		result.Total = total
		instances := instanceCache{}
		for _, task := range tasks {
			row := newRow(task)
			if err = instances.describe(ctx, session, row); err != nil {
				return err
			}
			descriptor, err := s.resolver.Resolve(ctx, session, task)
			if err != nil {
				return err
			}
			row.MultiInstance = descriptor != nil
			result.Rows = append(result.Rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) listFinished(ctx context.Context, name string, actor *identity.Actor, filter *Filter, own bool) (*Page, error) {
	if filter == nil {
		filter = &Filter{}
	}
	result := &Page{}
	err := s.query(ctx, name, actor, func(ctx context.Context, session engine.Session) error {
		query := &engine.HistoricTaskQuery{
			TenantID:           actor.TenantID,
			Finished:           true,
			ExcludeSubTasks:    true,
			NameLike:           filter.Name,
			DefinitionNameLike: filter.DefinitionName,
			DefinitionKey:      filter.DefinitionKey,
			Page:               filter.Page,
		}
		if own {
			query.Assignee = actor.UserID
		}
		tasks, total, err := session.HistoricTasks(ctx, query)
		if err != nil {
			return err
		}
		result.Total = total
		instances := instanceCache{}
		for _, task := range tasks {
			row := newRow(&task.Task)
			row.EndedAt = task.EndedAt
			if err = instances.describe(ctx, session, row); err != nil {
				return err
			}
			result.Rows = append(result.Rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// query runs a read-only listing in its own transaction
func (s *Service) query(ctx context.Context, name string, actor *identity.Actor, fn func(ctx context.Context, session engine.Session) error) error {
	ctx, span := tracing.StartSpan(ctx, name, tracing.KindInternal)
	var err error
	if actor == nil || actor.Validate() != nil {
		err = types.NewValidationError("acting user was not specified")
	} else {
		err = types.Surface(s.engine.Transact(ctx, fn))
	}
	tracing.EndSpan(span, err)
	if err != nil {
		s.logger.WithError(err).WithField("query", name).Warn("task query failed")
	}
	return err
}

func newRow(task *execution.Task) *Row {
	return &Row{
		ID:                task.ID,
		Name:              task.Name,
		ActivityKey:       task.ActivityKey,
		ProcessInstanceID: task.ProcessInstanceID,
		ExecutionID:       task.ExecutionID,
		Assignee:          task.Assignee,
		CreatedAt:         task.CreatedAt,
	}
}

// instanceCache loads each instance of a listing page once
type instanceCache map[string]*execution.Instance

func (c instanceCache) describe(ctx context.Context, session engine.Session, row *Row) error {
	instance, ok := c[row.ProcessInstanceID]
	if !ok {
		instances, err := session.HistoricInstances(ctx, &engine.HistoricInstanceQuery{InstanceID: row.ProcessInstanceID})
		if err != nil {
			return err
		}
		if len(instances) > 0 {
			instance = instances[0]
		}
		c[row.ProcessInstanceID] = instance
	}
	if instance == nil {
		return nil
	}
	row.BusinessKey = instance.BusinessKey
	row.BusinessStatus = instance.BusinessStatus
	row.BusinessStatusName = instance.BusinessStatus.Name()
	row.DefinitionKey = instance.DefinitionKey
	row.DefinitionName = instance.DefinitionName
	return nil
}
