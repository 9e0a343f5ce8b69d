package taskflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow"
	"go.uber.org/multierr"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("TASKFLOW_STORAGE", "fs")
	config, err := taskflow.LoadConfig(context.Background(), "embed:///testdata/config.yaml", &embedFS)
	require.NoError(t, err)
	assert.Equal(t, taskflow.StorageFS, config.Storage.Kind)
	assert.Equal(t, "/tmp/taskflow", config.Storage.Location)
	assert.Equal(t, "embed:///testdata/definitions", config.Definitions.BaseURL)
	assert.Equal(t, "approved", config.Messages.Agree)
	assert.Equal(t, "debug", config.Log.Level)
	assert.True(t, config.Log.JSON)
	assert.Equal(t, 16, config.Events.Buffer)
	assert.Equal(t, "taskflow", config.Tracing.ServiceName, "defaults survive")

	_, err = taskflow.LoadConfig(context.Background(), "embed:///testdata/invalid.yaml", &embedFS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported storage.kind "s3"`)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "events.buffer")

	_, err = taskflow.LoadConfig(context.Background(), "embed:///testdata/missing.yaml", &embedFS)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		adjust func(c *taskflow.Config)
		issues int
	}{
		{name: "default", adjust: func(c *taskflow.Config) {}},
		{name: "bolt without location", adjust: func(c *taskflow.Config) { c.Storage.Kind = taskflow.StorageBolt }, issues: 1},
		{name: "fs with location", adjust: func(c *taskflow.Config) { c.Storage = taskflow.StorageConfig{Kind: "FS", Location: "mem://localhost/x"} }},
		{name: "tracing without name", adjust: func(c *taskflow.Config) {
			c.Tracing = taskflow.TracingConfig{Enabled: true}
		}, issues: 1},
		{name: "many", adjust: func(c *taskflow.Config) {
			c.Storage.Kind = ""
			c.Log.Level = "verbose"
			c.Events.Buffer = -2
		}, issues: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := taskflow.DefaultConfig()
			tc.adjust(config)
			err := config.Validate()
			assert.Len(t, multierr.Errors(err), tc.issues)
		})
	}
}
