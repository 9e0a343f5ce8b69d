package task

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow/internal/clock"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/graph"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/engine/memory"
	"github.com/viant/taskflow/service/event"
	messaging "github.com/viant/taskflow/service/messaging/memory"
)

var (
	alice = identity.NewActor("alice", "Alice", "t1", "staff")
	bob   = identity.NewActor("bob", "Bob", "t1", "manager")
	carol = identity.NewActor("carol", "Carol", "t1", "staff")
	dave  = identity.NewActor("dave", "Dave", "t1", "manager")
)

func purchaseOrder() *graph.Definition {
	ret := graph.NewDefinition("purchase-order", "Purchase order")
	ret.NewActivity("apply", "Apply").WithAssignee("${initiator}").WithNext("approve")
	ret.NewActivity("approve", "Approve").WithAssignee("${approver}")
	return ret
}

func leave() *graph.Definition {
	ret := graph.NewDefinition("leave", "Leave request")
	ret.NewActivity("apply", "Apply").WithAssignee("${initiator}").WithNext("approve")
	ret.NewActivity("approve", "Manager approval").WithCandidateGroups("manager")
	return ret
}

func contract(sequential bool) *graph.Definition {
	key := "contract-parallel"
	if sequential {
		key = "contract-sequential"
	}
	ret := graph.NewDefinition(key, "Contract co-sign")
	ret.NewActivity("apply", "Apply").WithAssignee("${initiator}").WithNext("sign")
	ret.NewActivity("sign", "Sign").WithAssignee("${signer}").WithMultiInstance(sequential, "signers", "signer").WithNext("archive")
	ret.NewActivity("archive", "Archive").WithAssignee("${initiator}")
	return ret
}

// twoStarts has an initial parallel split
func twoStarts() *graph.Definition {
	ret := graph.NewDefinition("split", "Split")
	ret.NewActivity("apply", "Apply").WithMultiInstance(false, "applicants", "applicant").WithAssignee("${applicant}")
	return ret
}

type fixture struct {
	engine    *memory.Engine
	service   *Service
	publisher *event.Publisher[Outcome]
	registry  *prometheus.Registry
	logs      *test.Hook
}

func newFixture(t *testing.T, options ...Option) *fixture {
	restore := clock.Freeze(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.Second)
	t.Cleanup(restore)
	e, err := memory.New(memory.WithDefinitions(purchaseOrder(), leave(), contract(false), contract(true), twoStarts()))
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ret := &fixture{
		engine:    e,
		publisher: event.NewMemoryPublisher[Outcome](messaging.DefaultConfig()),
		registry:  prometheus.NewRegistry(),
		logs:      hook,
	}
	options = append([]Option{WithLogger(logger), WithPublisher(ret.publisher), WithRegisterer(ret.registry)}, options...)
	ret.service, err = New(e, options...)
	require.NoError(t, err)
	return ret
}

// start starts a purchase order approved by bob and returns its first task
func (f *fixture) start(t *testing.T, businessKey string) *StartResult {
	result, err := f.service.Start(context.Background(), alice, &StartRequest{
		BusinessKey: businessKey,
		ProcessKey:  "purchase-order",
		Variables:   map[string]interface{}{"amount": 500, "approver": "bob"},
	})
	require.NoError(t, err)
	return result
}

// startContract starts a co-sign contract and completes the apply step
func (f *fixture) startContract(t *testing.T, sequential bool, signers ...string) string {
	key := contract(sequential).Key
	result, err := f.service.Start(context.Background(), alice, &StartRequest{
		BusinessKey: "C-" + key,
		ProcessKey:  key,
		Variables:   map[string]interface{}{"signers": signers},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: result.TaskID}))
	return result.ProcessInstanceID
}

func (f *fixture) openTasks(t *testing.T, instanceID string) []*execution.Task {
	var tasks []*execution.Task
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) (err error) {
		tasks, _, err = s.Tasks(ctx, &engine.TaskQuery{ProcessInstanceID: instanceID, ExcludeSubTasks: true})
		return err
	})
	require.NoError(t, err)
	return tasks
}

func (f *fixture) instance(t *testing.T, instanceID string) *execution.Instance {
	var instances []*execution.Instance
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) (err error) {
		instances, err = s.HistoricInstances(ctx, &engine.HistoricInstanceQuery{InstanceID: instanceID})
		return err
	})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	return instances[0]
}

func (f *fixture) comments(t *testing.T, instanceID string) []*execution.Comment {
	var comments []*execution.Comment
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) (err error) {
		comments, err = s.Comments(ctx, instanceID)
		return err
	})
	require.NoError(t, err)
	return comments
}

func (f *fixture) historic(t *testing.T, instanceID string) []*execution.HistoricTask {
	var tasks []*execution.HistoricTask
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) (err error) {
		tasks, _, err = s.HistoricTasks(ctx, &engine.HistoricTaskQuery{ProcessInstanceID: instanceID, OrderByEndTime: true})
		return err
	})
	require.NoError(t, err)
	return tasks
}

// events drains published events
func (f *fixture) events(t *testing.T) []string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	var topics []string
	for {
		msg, err := f.publisher.Consume(ctx)
		if err != nil {
			return topics
		}
		require.NoError(t, msg.Ack())
		topics = append(topics, msg.T().Topic())
	}
}

func assignees(tasks []*execution.Task) []string {
	var result []string
	for _, task := range tasks {
		result = append(result, task.Assignee)
	}
	return result
}

func commentKinds(comments []*execution.Comment) []execution.CommentKind {
	var result []execution.CommentKind
	for _, comment := range comments {
		result = append(result, comment.Kind)
	}
	return result
}
