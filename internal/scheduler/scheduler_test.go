package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, params pipeline.RunParams) (pipeline.RunResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(pipeline.RunResult), args.Error(1)
}

func TestTriggerPassesConfiguredParams(t *testing.T) {
	ctx := context.Background()
	params := pipeline.RunParams{Mode: domain.RunModeFull, Keywords: "財政学", MaxPages: 2}

	r := &mockRunner{}
	r.On("Run", ctx, params).Return(pipeline.RunResult{RunID: "r1", Collected: 4}, nil).Once()

	s, err := New(r, "@every 24h", params, logging.NewNop())
	require.NoError(t, err)
	s.Trigger(ctx)

	r.AssertExpectations(t)
}

func TestTriggerToleratesFailures(t *testing.T) {
	ctx := context.Background()
	r := &mockRunner{}
	r.On("Run", ctx, mock.Anything).Return(pipeline.RunResult{}, domain.ErrRunInProgress).Once()
	r.On("Run", ctx, mock.Anything).Return(pipeline.RunResult{}, errors.New("boom")).Once()

	s, err := New(r, "@every 24h", pipeline.RunParams{}, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.Trigger(ctx)
		s.Trigger(ctx)
	})
	r.AssertNumberOfCalls(t, "Run", 2)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s, err := New(&mockRunner{}, "whenever", pipeline.RunParams{}, nil)
	require.NoError(t, err)

	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	r := &mockRunner{}
	s, err := New(r, "@every 1h", pipeline.RunParams{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(nil, "@every 1h", pipeline.RunParams{}, nil)
	assert.Error(t, err)
}
