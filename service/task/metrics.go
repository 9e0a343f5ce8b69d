package task

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/taskflow/model/types"
)

type metrics struct {
	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	ret := &metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskflow",
				Name:      "task_actions_total",
				Help:      "Total number of task actions by outcome",
			},
			[]string{"action", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskflow",
				Name:      "task_action_duration_seconds",
				Help:      "Task action latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"action"},
		),
	}
	if registerer == nil {
		return ret, nil
	}
	var err error
	if ret.actions, err = register(registerer, ret.actions); err != nil {
		return nil, err
	}
	if ret.duration, err = register(registerer, ret.duration); err != nil {
		return nil, err
	}
	return ret, nil
}

// register returns the already registered collector when another service
// registered the same metric first
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return collector, err
}

func (m *metrics) observe(action Action, started time.Time, err error) {
	m.actions.WithLabelValues(string(action), outcome(err)).Inc()
	m.duration.WithLabelValues(string(action)).Observe(time.Since(started).Seconds())
}

// outcome is "ok" or the error kind
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := types.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
