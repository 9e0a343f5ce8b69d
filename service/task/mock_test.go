package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow/model/types"
	"github.com/viant/taskflow/service/engine"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Transact(ctx context.Context, fn func(ctx context.Context, s engine.Session) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func TestService_EngineFailure(t *testing.T) {
	testCases := []struct {
		name    string
		failure error
		kind    types.Kind
		message string
	}{
		{name: "unclassified", failure: errors.New("connection reset by peer"), kind: types.KindOperation, message: "connection reset by peer"},
		{name: "conflict", failure: types.NewConflictError("process instance p1 was modified concurrently"), kind: types.KindConflict, message: "process instance p1 was modified concurrently"},
		{name: "classified", failure: types.NewNotFoundError("task t1 was not found"), kind: types.KindNotFound, message: "task t1 was not found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := &mockEngine{}
			e.On("Transact", mock.Anything, mock.Anything).Return(tc.failure)
			srv, err := New(e)
			require.NoError(t, err)

			err = srv.Complete(context.Background(), alice, &CompleteRequest{TaskID: "t1"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, types.KindOf(err))
			assert.EqualError(t, err, tc.message)
			assert.True(t, errors.Is(err, tc.failure) || tc.kind != types.KindOperation)
			e.AssertNumberOfCalls(t, "Transact", 1)
		})
	}
}

func TestService_NoEngine(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

func TestService_InvalidActorSkipsEngine(t *testing.T) {
	e := &mockEngine{}
	srv, err := New(e)
	require.NoError(t, err)
	_, err = srv.Back(context.Background(), nil, &BackRequest{TaskID: "t1"})
	assert.True(t, errors.Is(err, types.ErrValidation))
	e.AssertNotCalled(t, "Transact", mock.Anything, mock.Anything)
}
