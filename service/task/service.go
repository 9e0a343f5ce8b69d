package task

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/audit"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/event"
	"github.com/viant/taskflow/service/multiinstance"
	"github.com/viant/taskflow/tracing"
)

// Service orchestrates task actions against a process engine
type Service struct {
	engine     engine.Engine
	logger     logrus.FieldLogger
	resolver   *multiinstance.Resolver
	recorder   *audit.Recorder
	publisher  *event.Publisher[Outcome]
	messages   Messages
	registerer prometheus.Registerer
	metrics    *metrics
}

// action is the body of a task action; it fills outcome as it goes
type action func(ctx context.Context, s engine.Session, outcome *Outcome) error

// run executes fn in one engine transaction, then records metrics, logs
// and publishes the outcome
func (s *Service) run(ctx context.Context, name Action, actor *identity.Actor, fn action) (*Outcome, error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "task."+string(name), tracing.KindInternal)
	outcome := &Outcome{Action: name}
	if actor != nil {
		outcome.UserID, outcome.TenantID = actor.UserID, actor.TenantID
	}
	var err error
	if actor == nil || actor.Validate() != nil {
		err = types.NewValidationError("acting user was not specified")
	} else {
		err = s.engine.Transact(ctx, func(ctx context.Context, session engine.Session) error {
			return fn(ctx, session, outcome)
		})
	}
	err = types.Surface(err)

	span.WithAttributes(map[string]string{
		"taskId":            outcome.TaskID,
		"processInstanceId": outcome.ProcessInstanceID,
		"userId":            outcome.UserID,
		"tenantId":          outcome.TenantID,
	})
	tracing.EndSpan(span, err)
	s.metrics.observe(name, started, err)

	logger := s.logger.WithFields(logrus.Fields{
		"action":            string(name),
		"taskId":            outcome.TaskID,
		"processInstanceId": outcome.ProcessInstanceID,
		"userId":            outcome.UserID,
		"tenantId":          outcome.TenantID,
	})
	if err != nil {
		logger.WithError(err).WithField("kind", string(types.KindOf(err))).Warn("task action failed")
		return nil, err
	}
	logger.WithField("businessStatus", outcome.BusinessStatus.String()).Info("task action committed")
	s.publish(ctx, outcome, started)
	return outcome, nil
}

// publish emits the outcome of a committed action; a failure is logged only
// since the action itself already landed
func (s *Service) publish(ctx context.Context, outcome *Outcome, started time.Time) {
	if s.publisher == nil {
		return
	}
	e := event.NewEvent(&event.Context{
		Topic:             outcome.Action.Topic(),
		ProcessInstanceID: outcome.ProcessInstanceID,
		TaskID:            outcome.TaskID,
		BusinessKey:       outcome.BusinessKey,
		UserID:            outcome.UserID,
		TenantID:          outcome.TenantID,
		TimeTakenMs:       int(time.Since(started).Milliseconds()),
	}, *outcome)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WithError(err).WithField("topic", e.Topic()).Warn("failed to publish task event")
	}
}

// Messages returns the effective audit texts
func (s *Service) Messages() Messages {
	return s.messages
}

// New creates a task service running on e
func New(e engine.Engine, options ...Option) (*Service, error) {
	if e == nil {
		return nil, types.NewConfigurationError("process engine was nil")
	}
	ret := &Service{engine: e}
	for _, option := range options {
		option(ret)
	}
	if ret.logger == nil {
		ret.logger = logrus.StandardLogger()
	}
	if ret.resolver == nil {
		ret.resolver = multiinstance.New(nil)
	}
	if ret.recorder == nil {
		ret.recorder = audit.New()
	}
	ret.messages = ret.messages.merge(DefaultMessages())
	var err error
	if ret.metrics, err = newMetrics(ret.registerer); err != nil {
		return nil, err
	}
	return ret, nil
}
