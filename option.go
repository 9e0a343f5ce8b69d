package taskflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs/storage"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/service/dao"
	"github.com/viant/taskflow/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service
type Option func(s *Service)

// WithConfig sets the configuration; DefaultConfig is used otherwise
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger overrides the logger built from the log configuration
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegisterer registers action metrics on registerer
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithProcessDAO overrides the configured process instance storage
func WithProcessDAO(dao dao.Service[string, execution.Process]) Option {
	return func(s *Service) {
		s.processDAO = dao
	}
}

// WithDefinitions deploys definitions on start, next to the ones found
// under the configured base URL
func WithDefinitions(definitions ...*graph.Definition) Option {
	return func(s *Service) {
		s.definitions = append(s.definitions, definitions...)
	}
}

// WithMetaFsOptions with definition file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for example OTLP,
// Jaeger or Zipkin. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
