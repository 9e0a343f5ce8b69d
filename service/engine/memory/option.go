package memory

import (
	"github.com/sirupsen/logrus"
	"github.com/viant/structology/conv"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/service/dao"
)

// Option customises the engine
type Option func(e *Engine)

// WithDAO sets storage backing committed processes
func WithDAO(dao dao.Service[string, execution.Process]) Option {
	return func(e *Engine) {
		e.dao = dao
	}
}

// WithLogger sets the engine logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConverter sets the converter used to coerce process variables
func WithConverter(converter *conv.Converter) Option {
	return func(e *Engine) {
		e.converter = converter
	}
}

// WithDefinitions deploys definitions when the engine is created
func WithDefinitions(definitions ...*graph.Definition) Option {
	return func(e *Engine) {
		e.pending = append(e.pending, definitions...)
	}
}
