package taskflow_test

import (
	"context"
	"embed"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"
	"github.com/viant/taskflow"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/service/event"
	"github.com/viant/taskflow/service/task"
)

//go:embed testdata/*
var embedFS embed.FS

var requester = identity.NewActor("alice", "Alice", "t1", "staff")

func newService(t *testing.T, config *taskflow.Config, options ...taskflow.Option) *taskflow.Service {
	logger, _ := test.NewNullLogger()
	options = append([]taskflow.Option{
		taskflow.WithConfig(config),
		taskflow.WithLogger(logger),
		taskflow.WithMetaFsOptions(&embedFS),
	}, options...)
	srv, err := taskflow.New(context.Background(), options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return srv
}

func submit(t *testing.T, srv *taskflow.Service, businessKey string) *task.StartResult {
	ctx := context.Background()
	started, err := srv.Tasks().Start(ctx, requester, &task.StartRequest{
		BusinessKey: businessKey,
		ProcessKey:  "purchase-order",
		Variables:   map[string]interface{}{"approver": "bob"},
	})
	require.NoError(t, err)
	require.NoError(t, srv.Tasks().Complete(ctx, requester, &task.CompleteRequest{TaskID: started.TaskID}))
	return started
}

func TestService(t *testing.T) {
	config := taskflow.DefaultConfig()
	config.Definitions.BaseURL = "embed:///testdata/definitions"
	config.Messages.Agree = "approved"
	registry := prometheus.NewRegistry()
	srv := newService(t, config, taskflow.WithRegisterer(registry))

	received := make(chan string, 8)
	listener, err := srv.Listen(context.Background(), func(e *event.Event[task.Outcome]) error {
		received <- e.Topic() + " " + e.Data.BusinessKey
		return nil
	})
	require.NoError(t, err)
	defer listener.Stop()

	started := submit(t, srv, "PO-1001")
	for _, expect := range []string{"task.started PO-1001", "task.completed PO-1001"} {
		select {
		case actual := <-received:
			assert.Equal(t, expect, actual)
		case <-time.After(time.Second):
			t.Fatalf("missing event %s", expect)
		}
	}

	page, err := srv.Tasks().ListDone(context.Background(), requester, nil)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, started.TaskID, page.Rows[0].ID)
	assert.Equal(t, status.Waiting, page.Rows[0].BusinessStatus)
	assert.Equal(t, "approved", srv.Tasks().Messages().Agree)
	assert.Equal(t, 1.0, actionCount(t, registry, "start"))
	count, err := testutil.GatherAndCount(registry, "taskflow_task_action_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_Storage(t *testing.T) {
	testCases := []struct {
		name    string
		storage func(dir string) taskflow.StorageConfig
	}{
		{name: "fs", storage: func(dir string) taskflow.StorageConfig {
			return taskflow.StorageConfig{Kind: taskflow.StorageFS, Location: dir}
		}},
		{name: "bolt", storage: func(dir string) taskflow.StorageConfig {
			return taskflow.StorageConfig{Kind: taskflow.StorageBolt, Location: filepath.Join(dir, "taskflow.db")}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := taskflow.DefaultConfig()
			config.Storage = tc.storage(t.TempDir())
			config.Definitions.BaseURL = "embed:///testdata/definitions"
			config.Events.Disabled = true

			srv := newService(t, config)
			assert.Nil(t, srv.Events())
			started := submit(t, srv, "PO-2001")
			require.NoError(t, srv.Close(context.Background()))

			restored := newService(t, config)
			page, err := restored.Tasks().ListTodo(context.Background(), identity.NewActor("bob", "Bob", "t1"), nil)
			require.NoError(t, err)
			require.Len(t, page.Rows, 1)
			assert.Equal(t, started.ProcessInstanceID, page.Rows[0].ProcessInstanceID)
			assert.Equal(t, "PO-2001", page.Rows[0].BusinessKey)

			_, err = restored.Tasks().Start(context.Background(), requester, &task.StartRequest{BusinessKey: "PO-2001", ProcessKey: "purchase-order"})
			assert.Error(t, err, "submitted request cannot restart")
		})
	}
}

func TestService_Deploy(t *testing.T) {
	srv := newService(t, taskflow.DefaultConfig())
	_, err := srv.Tasks().Start(context.Background(), requester, &task.StartRequest{BusinessKey: "PO-1", ProcessKey: "purchase-order"})
	assert.Error(t, err)

	require.NoError(t, srv.Deploy(context.Background(), "embed:///testdata/definitions/purchase-order.yaml"))
	definitions := srv.Engine().Definitions()
	require.Len(t, definitions, 1)
	assert.Equal(t, "purchase-order", definitions[0].Key)

	_, err = srv.LoadDefinition(context.Background(), "embed:///testdata/definitions/missing.yaml")
	assert.Error(t, err)
}

func TestService_InvalidConfig(t *testing.T) {
	config := taskflow.DefaultConfig()
	config.Storage.Kind = "s3"
	_, err := taskflow.New(context.Background(), taskflow.WithConfig(config))
	assert.Error(t, err)
}

// actionCount returns taskflow_task_actions_total summed over outcomes of action
func actionCount(t *testing.T, registry *prometheus.Registry, action string) float64 {
	families, err := registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, family := range families {
		if family.GetName() != "taskflow_task_actions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "action" && label.GetValue() == action {
					total += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
