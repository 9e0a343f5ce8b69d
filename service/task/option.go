package task

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/taskflow/service/audit"
	"github.com/viant/taskflow/service/event"
	"github.com/viant/taskflow/service/multiinstance"
)

type Option func(s *Service)

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

// WithPublisher publishes an event for every committed action
func WithPublisher(publisher *event.Publisher[Outcome]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithMessages overrides default audit texts; blank fields keep defaults
func WithMessages(messages Messages) Option {
	return func(s *Service) {
		s.messages = messages
	}
}

func WithResolver(resolver *multiinstance.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

func WithRecorder(recorder *audit.Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}
