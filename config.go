package taskflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/taskflow/service/meta"
	"github.com/viant/taskflow/service/messaging/memory"
	"github.com/viant/taskflow/service/task"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Storage kinds backing committed process instances
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageBolt   = "bolt"
)

// Config is a serialisable representation of the service configuration. It
// can be loaded from YAML or JSON; omitted sections keep their defaults.
type Config struct {
	Storage     StorageConfig    `json:"storage" yaml:"storage"`
	Definitions DefinitionConfig `json:"definitions" yaml:"definitions"`
	Messages    task.Messages    `json:"messages,omitempty" yaml:"messages,omitempty"`
	Tracing     TracingConfig    `json:"tracing" yaml:"tracing"`
	Log         LogConfig        `json:"log" yaml:"log"`
	Events      EventConfig      `json:"events" yaml:"events"`
}

type StorageConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	// Location is a directory URL for fs or a database file for bolt
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

type DefinitionConfig struct {
	// BaseURL holds YAML definitions deployed when the service starts
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	// Output is a trace file; stdout when empty
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `json:"json,omitempty" yaml:"json,omitempty"`
}

type EventConfig struct {
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Buffer   int  `json:"buffer,omitempty" yaml:"buffer,omitempty"`
	// Block makes publishing wait for room instead of dropping the event
	Block bool `json:"block,omitempty" yaml:"block,omitempty"`
}

// DefaultConfig returns a Config with in-memory storage and events enabled
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Kind: StorageMemory},
		Tracing: TracingConfig{ServiceName: "taskflow"},
		Log:     LogConfig{Level: logrus.InfoLevel.String()},
		Events:  EventConfig{Buffer: memory.DefaultConfig().Buffer},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var err error
	switch strings.ToLower(c.Storage.Kind) {
	case StorageMemory:
	case StorageFS, StorageBolt:
		if c.Storage.Location == "" {
			err = multierr.Append(err, fmt.Errorf("storage.location is required for %s storage", c.Storage.Kind))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unsupported storage.kind %q", c.Storage.Kind))
	}
	if c.Log.Level != "" {
		if _, e := logrus.ParseLevel(c.Log.Level); e != nil {
			err = multierr.Append(err, fmt.Errorf("log.level: %w", e))
		}
	}
	if c.Events.Buffer < 0 {
		err = multierr.Append(err, fmt.Errorf("events.buffer must be >= 0"))
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		err = multierr.Append(err, fmt.Errorf("tracing.serviceName is required when tracing is enabled"))
	}
	return err
}

// queueConfig returns the event queue settings
func (c *Config) queueConfig() memory.Config {
	ret := memory.DefaultConfig()
	if c.Events.Buffer > 0 {
		ret.Buffer = c.Events.Buffer
	}
	ret.Block = c.Events.Block
	return ret
}

// NewLogger creates a logger configured by c
func (c *LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	if c.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// LoadConfig loads a YAML or JSON configuration from URL on top of
// DefaultConfig. ${env.NAME} references are expanded first.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(meta.ExpandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}
