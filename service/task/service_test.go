package task

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/model/status"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

func TestService_Start(t *testing.T) {
	f := newFixture(t)
	first := f.start(t, "PO-1001")

	tasks := f.openTasks(t, first.ProcessInstanceID)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.TaskID, tasks[0].ID)
	assert.Equal(t, "alice", tasks[0].Assignee)
	assert.Equal(t, first.ProcessInstanceID, tasks[0].Variables[ProcessInstanceVariable])

	instance := f.instance(t, first.ProcessInstanceID)
	assert.Equal(t, status.Draft, instance.BusinessStatus)
	assert.Equal(t, "Purchase order", instance.Name)
	assert.Equal(t, "alice", instance.StartUserID)
	assert.Equal(t, true, instance.Variables[engine.SkipExpressionEnabled])
	assert.Equal(t, "alice", instance.Variables[engine.Initiator])
	assert.Equal(t, 500, instance.Variables["amount"])

	second := f.start(t, "PO-1001")
	assert.Equal(t, first, second)
	var count int
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) error {
		instances, err := s.HistoricInstances(ctx, &engine.HistoricInstanceQuery{BusinessKey: "PO-1001"})
		count = len(instances)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"task.started", "task.started"}, f.events(t))
}

func TestService_StartFailures(t *testing.T) {
	testCases := []struct {
		name    string
		actor   *identity.Actor
		request *StartRequest
		kind    types.Kind
		message string
	}{
		{name: "empty business key", actor: alice, request: &StartRequest{ProcessKey: "purchase-order"}, kind: types.KindValidation},
		{name: "nil request", actor: alice, kind: types.KindValidation},
		{name: "missing actor", request: &StartRequest{BusinessKey: "PO-1", ProcessKey: "purchase-order"}, kind: types.KindValidation},
		{name: "unknown process", actor: alice, request: &StartRequest{BusinessKey: "PO-1", ProcessKey: "unknown"}, kind: types.KindNotFound},
		{
			name:    "many initial tasks",
			actor:   alice,
			request: &StartRequest{BusinessKey: "S-1", ProcessKey: "split", Variables: map[string]interface{}{"applicants": []string{"a", "b"}}},
			kind:    types.KindConfiguration,
			message: "first activity must resolve to a single task",
		},
		{
			name:    "no initial task",
			actor:   alice,
			request: &StartRequest{BusinessKey: "S-2", ProcessKey: "split", Variables: map[string]interface{}{"applicants": []string{}}},
			kind:    types.KindConfiguration,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Start(context.Background(), tc.actor, tc.request)
			require.Error(t, err)
			assert.Equal(t, tc.kind, types.KindOf(err))
			if tc.message != "" {
				assert.Contains(t, err.Error(), tc.message)
			}
			assert.Empty(t, f.events(t))
		})
	}
}

func TestService_Complete(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, "PO-1001")

	require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID}))
	assert.Equal(t, status.Waiting, f.instance(t, started.ProcessInstanceID).BusinessStatus)
	comments := f.comments(t, started.ProcessInstanceID)
	require.Len(t, comments, 1)
	assert.Equal(t, execution.CommentPass, comments[0].Kind)
	assert.Equal(t, "agree", comments[0].Message)
	assert.Equal(t, started.TaskID, comments[0].TaskID)
	tasks := f.openTasks(t, started.ProcessInstanceID)
	require.Len(t, tasks, 1)
	assert.Equal(t, "approve", tasks[0].ActivityKey)
	assert.Equal(t, "bob", tasks[0].Assignee)

	err := f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: tasks[0].ID})
	assert.True(t, errors.Is(err, types.ErrNotFound), "alice is not the approver: %v", err)

	require.NoError(t, f.service.Complete(context.Background(), bob, &CompleteRequest{TaskID: tasks[0].ID, Message: "ok"}))
	instance := f.instance(t, started.ProcessInstanceID)
	assert.Equal(t, status.Finish, instance.BusinessStatus)
	assert.True(t, instance.IsEnded())
	assert.Empty(t, f.openTasks(t, started.ProcessInstanceID))
	assert.Equal(t, "ok", f.comments(t, started.ProcessInstanceID)[1].Message)
	assert.Equal(t, []string{"task.started", "task.completed", "task.completed"}, f.events(t))
}

func TestService_CompleteOpenTasksIffFinish(t *testing.T) {
	f := newFixture(t)
	instanceID := f.startContract(t, false, "bob", "carol")
	for _, actor := range []*identity.Actor{bob, carol, alice} {
		tasks := f.openTasks(t, instanceID)
		require.NotEmpty(t, tasks)
		var own *execution.Task
		for _, candidate := range tasks {
			if candidate.Assignee == actor.UserID {
				own = candidate
			}
		}
		require.NotNil(t, own, actor.UserID)
		require.NoError(t, f.service.Complete(context.Background(), actor, &CompleteRequest{TaskID: own.ID}))
		open := len(f.openTasks(t, instanceID))
		assert.Equal(t, open == 0, f.instance(t, instanceID).BusinessStatus == status.Finish, "after %s", actor.UserID)
	}
	assert.Equal(t, status.Finish, f.instance(t, instanceID).BusinessStatus)
}

func TestService_DelegateRoundTrip(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, "PO-1002")
	require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID}))
	approve := f.openTasks(t, started.ProcessInstanceID)[0]
	before := len(f.comments(t, started.ProcessInstanceID))

	require.NoError(t, f.service.Delegate(context.Background(), bob, &DelegateRequest{TaskID: approve.ID, UserID: "carol", NickName: "Carol"}))
	delegated := f.openTasks(t, started.ProcessInstanceID)
	require.Len(t, delegated, 1)
	assert.Equal(t, "carol", delegated[0].Assignee)
	assert.Equal(t, "bob", delegated[0].Owner)
	assert.Equal(t, execution.DelegationPending, delegated[0].Delegation)

	err := f.service.Complete(context.Background(), bob, &CompleteRequest{TaskID: approve.ID})
	assert.True(t, errors.Is(err, types.ErrNotFound))

	require.NoError(t, f.service.Complete(context.Background(), carol, &CompleteRequest{TaskID: approve.ID, Message: "checked"}))
	resolved := f.openTasks(t, started.ProcessInstanceID)
	require.Len(t, resolved, 1)
	assert.Equal(t, approve.ID, resolved[0].ID)
	assert.Equal(t, "bob", resolved[0].Assignee)
	assert.Equal(t, execution.DelegationResolved, resolved[0].Delegation)
	assert.Equal(t, status.Waiting, f.instance(t, started.ProcessInstanceID).BusinessStatus)

	comments := f.comments(t, started.ProcessInstanceID)[before:]
	require.Len(t, comments, 2)
	assert.Equal(t, []execution.CommentKind{execution.CommentPending, execution.CommentPass}, commentKinds(comments))
	assert.Equal(t, "Bob delegated to Carol", comments[0].Message)
	assert.Equal(t, "checked", comments[1].Message)
	for _, comment := range comments {
		assert.NotEqual(t, approve.ID, comment.TaskID, "audit comments live on sub-tasks")
	}

	require.NoError(t, f.service.Complete(context.Background(), bob, &CompleteRequest{TaskID: approve.ID}))
	assert.Equal(t, status.Finish, f.instance(t, started.ProcessInstanceID).BusinessStatus)
	assert.Equal(t, []string{"task.started", "task.completed", "task.delegated", "task.resolved", "task.completed"}, f.events(t))
}

func TestService_Transfer(t *testing.T) {
	testCases := []struct {
		name    string
		comment string
		expect  string
	}{
		{name: "default comment", expect: "Bob transferred the task"},
		{name: "custom comment", comment: "on leave", expect: "on leave"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			started := f.start(t, "PO-1003")
			require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID}))
			approve := f.openTasks(t, started.ProcessInstanceID)[0]

			require.NoError(t, f.service.Transfer(context.Background(), bob, &TransferRequest{TaskID: approve.ID, UserID: "dave", Comment: tc.comment}))
			tasks := f.openTasks(t, started.ProcessInstanceID)
			assert.Equal(t, []string{"dave"}, assignees(tasks))
			assert.Equal(t, execution.DelegationNone, tasks[0].Delegation)
			comments := f.comments(t, started.ProcessInstanceID)
			last := comments[len(comments)-1]
			assert.Equal(t, execution.CommentTransfer, last.Kind)
			assert.Equal(t, tc.expect, last.Message)

			err := f.service.Transfer(context.Background(), bob, &TransferRequest{TaskID: approve.ID, UserID: "bob"})
			assert.True(t, errors.Is(err, types.ErrNotFound))
		})
	}
}

func TestService_Terminate(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, "PO-1004")
	require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID}))
	approve := f.openTasks(t, started.ProcessInstanceID)[0]

	require.NoError(t, f.service.Terminate(context.Background(), carol, &TerminateRequest{TaskID: approve.ID, Comment: "duplicate"}))
	instance := f.instance(t, started.ProcessInstanceID)
	assert.Equal(t, status.Termination, instance.BusinessStatus)
	assert.True(t, instance.IsEnded())
	assert.Equal(t, terminationReason, instance.DeleteReason)
	assert.Empty(t, f.openTasks(t, started.ProcessInstanceID))
	comments := f.comments(t, started.ProcessInstanceID)
	last := comments[len(comments)-1]
	assert.Equal(t, execution.CommentTermination, last.Kind)
	assert.Equal(t, "Carol terminated the request: duplicate", last.Message)
	assert.Equal(t, approve.ID, last.TaskID)

	_, err := f.service.Start(context.Background(), alice, &StartRequest{BusinessKey: "PO-1004", ProcessKey: "purchase-order"})
	assert.True(t, errors.Is(err, types.ErrInvalidState))

	other := identity.NewActor("eve", "Eve", "t2")
	second := f.start(t, "PO-1005")
	err = f.service.Terminate(context.Background(), other, &TerminateRequest{TaskID: second.TaskID})
	assert.True(t, errors.Is(err, types.ErrNotFound), "other tenant")
}

func TestService_TerminalStatusBlocksActions(t *testing.T) {
	actions := []struct {
		name string
		run  func(s *Service, taskID string) error
	}{
		{name: "complete", run: func(s *Service, taskID string) error {
			return s.Complete(context.Background(), bob, &CompleteRequest{TaskID: taskID})
		}},
		{name: "delegate", run: func(s *Service, taskID string) error {
			return s.Delegate(context.Background(), bob, &DelegateRequest{TaskID: taskID, UserID: "carol"})
		}},
		{name: "transfer", run: func(s *Service, taskID string) error {
			return s.Transfer(context.Background(), bob, &TransferRequest{TaskID: taskID, UserID: "carol"})
		}},
		{name: "terminate", run: func(s *Service, taskID string) error {
			return s.Terminate(context.Background(), bob, &TerminateRequest{TaskID: taskID})
		}},
		{name: "add signatories", run: func(s *Service, taskID string) error {
			return s.AddSignatories(context.Background(), bob, &AddSignatoryRequest{TaskID: taskID, Assignees: []string{"dave"}})
		}},
		{name: "remove signatories", run: func(s *Service, taskID string) error {
			return s.RemoveSignatories(context.Background(), bob, &RemoveSignatoryRequest{TaskID: taskID, AssigneeIDs: []string{"dave"}})
		}},
		{name: "back", run: func(s *Service, taskID string) error {
			_, err := s.Back(context.Background(), bob, &BackRequest{TaskID: taskID})
			return err
		}},
	}
	for _, terminal := range []status.Business{status.Finish, status.Termination, status.Invalid} {
		for _, action := range actions {
			t.Run(string(terminal)+" "+action.name, func(t *testing.T) {
				f := newFixture(t)
				instanceID := f.startContract(t, true, "bob", "carol")
				var task *execution.Task
				for _, candidate := range f.openTasks(t, instanceID) {
					if candidate.Assignee == bob.UserID {
						task = candidate
					}
				}
				require.NotNil(t, task)
				err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) error {
					return s.Execute(ctx, &UpdateBusinessStatus{ProcessInstanceID: instanceID, Status: terminal})
				})
				require.NoError(t, err)
				before := len(f.comments(t, instanceID))

				err = action.run(f.service, task.ID)
				assert.True(t, errors.Is(err, types.ErrInvalidState), "got %v", err)
				assert.Len(t, f.comments(t, instanceID), before)
				assert.Equal(t, terminal, f.instance(t, instanceID).BusinessStatus)
			})
		}
	}

	f := newFixture(t)
	started := f.start(t, "PO-1006")
	require.NoError(t, f.service.Terminate(context.Background(), alice, &TerminateRequest{TaskID: started.TaskID}))
	for _, action := range actions {
		err := action.run(f.service, started.TaskID)
		assert.Error(t, err, action.name)
	}
}

func TestService_Suspended(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, "PO-1007")
	err := f.engine.Transact(context.Background(), func(ctx context.Context, s engine.Session) error {
		return s.Execute(ctx, &suspendTask{taskID: started.TaskID})
	})
	require.NoError(t, err)
	err = f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID})
	assert.True(t, errors.Is(err, types.ErrSuspended))
	_, err = f.service.Back(context.Background(), alice, &BackRequest{TaskID: started.TaskID})
	assert.True(t, errors.Is(err, types.ErrSuspended))
}

func TestService_Metrics(t *testing.T) {
	f := newFixture(t)
	started := f.start(t, "PO-1008")
	err := f.service.Complete(context.Background(), bob, &CompleteRequest{TaskID: started.TaskID})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.service.metrics.actions.WithLabelValues("start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.service.metrics.actions.WithLabelValues("complete", "notFound")))
	count, err := testutil.GatherAndCount(f.registry, "taskflow_task_action_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	again, err := New(f.engine, WithRegisterer(f.registry))
	require.NoError(t, err)
	assert.Same(t, f.service.metrics.actions, again.metrics.actions)

	var warned bool
	for _, entry := range f.logs.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["action"] == "complete" {
			warned = true
			assert.Equal(t, "notFound", entry.Data["kind"])
			assert.Equal(t, started.TaskID, entry.Data["taskId"], "failed actions log the requested task")
		}
	}
	assert.True(t, warned)
}

func TestService_Messages(t *testing.T) {
	f := newFixture(t, WithMessages(Messages{Agree: "approved"}))
	assert.Equal(t, "approved", f.service.Messages().Agree)
	assert.Equal(t, "returned", f.service.Messages().Returned)
	started := f.start(t, "PO-1009")
	require.NoError(t, f.service.Complete(context.Background(), alice, &CompleteRequest{TaskID: started.TaskID}))
	assert.Equal(t, "approved", f.comments(t, started.ProcessInstanceID)[0].Message)
}

// suspendTask suspends an open task
type suspendTask struct {
	taskID string
}

func (c *suspendTask) Execute(_ context.Context, cc engine.CommandContext) error {
	task, err := cc.Task(c.taskID)
	if err != nil {
		return err
	}
	task.Suspended = true
	return nil
}
