package taskflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs/storage"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/service/dao"
	"github.com/viant/taskflow/service/dao/bolt"
	"github.com/viant/taskflow/service/dao/definition"
	"github.com/viant/taskflow/service/dao/fs"
	"github.com/viant/taskflow/service/dao/store"
	"github.com/viant/taskflow/service/engine/memory"
	"github.com/viant/taskflow/service/event"
	"github.com/viant/taskflow/service/task"
	"github.com/viant/taskflow/tracing"
	"go.uber.org/multierr"
)

// Service wires the reference engine, storage, definitions, events and the
// task orchestrator from a Config
type Service struct {
	config      *Config
	logger      logrus.FieldLogger
	registerer  prometheus.Registerer
	processDAO  dao.Service[string, execution.Process]
	definitions []*graph.Definition
	fsOptions   []storage.Option

	engine    *memory.Engine
	loader    *definition.Service
	publisher *event.Publisher[task.Outcome]
	tasks     *task.Service
	closers   []func() error
}

// Tasks returns the task orchestrator
func (s *Service) Tasks() *task.Service {
	return s.tasks
}

// Engine returns the reference process engine
func (s *Service) Engine() *memory.Engine {
	return s.engine
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Events returns the publisher of committed task actions, nil when disabled
func (s *Service) Events() *event.Publisher[task.Outcome] {
	return s.publisher
}

// Listen delivers task events to handler until ctx is done or the returned
// listener is stopped. Events the handler fails on are redelivered, then
// dead-lettered.
func (s *Service) Listen(ctx context.Context, handler event.Handler[task.Outcome]) (*event.Listener[task.Outcome], error) {
	if s.publisher == nil {
		return nil, fmt.Errorf("events are disabled")
	}
	listener := event.NewListener[task.Outcome](s.publisher, handler, s.logger)
	listener.Start(ctx)
	return listener, nil
}

// LoadDefinition loads a definition without deploying it
func (s *Service) LoadDefinition(ctx context.Context, URL string) (*graph.Definition, error) {
	return s.loader.Load(ctx, URL)
}

// Deploy loads and deploys definitions
func (s *Service) Deploy(ctx context.Context, URLs ...string) error {
	var definitions []*graph.Definition
	for _, URL := range URLs {
		definition, err := s.loader.Load(ctx, URL)
		if err != nil {
			return err
		}
		definitions = append(definitions, definition)
	}
	return s.engine.Deploy(definitions...)
}

// Close releases storage and flushes traces
func (s *Service) Close(ctx context.Context) error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	s.closers = nil
	if s.config.Tracing.Enabled {
		err = multierr.Append(err, tracing.Shutdown(ctx))
	}
	return err
}

func (s *Service) init(ctx context.Context) error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		s.logger = s.config.Log.NewLogger()
	}
	if tc := s.config.Tracing; tc.Enabled {
		if err := tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.Output); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	if s.processDAO == nil {
		var err error
		if s.processDAO, err = s.newProcessDAO(ctx); err != nil {
			return err
		}
	}
	s.loader = definition.New(definition.WithBaseURL(s.config.Definitions.BaseURL), definition.WithFsOptions(s.fsOptions...))
	definitions := s.definitions
	if s.config.Definitions.BaseURL != "" {
		loaded, err := s.loader.LoadAll(ctx, s.config.Definitions.BaseURL)
		if err != nil {
			return err
		}
		definitions = append(definitions, loaded...)
	}

	var err error
	s.engine, err = memory.New(
		memory.WithDAO(s.processDAO),
		memory.WithLogger(s.logger.WithField("component", "engine")),
		memory.WithDefinitions(definitions...),
	)
	if err != nil {
		return err
	}
	if err = s.engine.Open(ctx); err != nil {
		return err
	}

	options := []task.Option{
		task.WithLogger(s.logger.WithField("component", "task")),
		task.WithRegisterer(s.registerer),
		task.WithMessages(s.config.Messages),
	}
	if !s.config.Events.Disabled {
		s.publisher = event.NewMemoryPublisher[task.Outcome](s.config.queueConfig())
		options = append(options, task.WithPublisher(s.publisher))
	}
	s.tasks, err = task.New(s.engine, options...)
	return err
}

func (s *Service) newProcessDAO(ctx context.Context) (dao.Service[string, execution.Process], error) {
	location := s.config.Storage.Location
	switch strings.ToLower(s.config.Storage.Kind) {
	case StorageFS:
		return fs.New[execution.Process](ctx, location, memory.ProcessKey,
			fs.WithFields[execution.Process](memory.ProcessFields),
			fs.WithLogger[execution.Process](s.logger))
	case StorageBolt:
		srv, err := bolt.New[execution.Process](location, "processes", memory.ProcessKey, memory.ProcessFields)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, srv.Close)
		return srv, nil
	}
	return store.NewMemoryStore[string, execution.Process](memory.ProcessKey, memory.ProcessFields), nil
}

// New creates a service
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Close(ctx)
		return nil, err
	}
	return ret, nil
}
