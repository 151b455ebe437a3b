package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

type stopper struct {
	deadline bool
	calls    int
}

func (s *stopper) Shutdown(ctx context.Context) error {
	s.calls++
	_, s.deadline = ctx.Deadline()
	return ctx.Err()
}

type failingStopper struct{}

func (failingStopper) Shutdown(context.Context) error { return errors.New("busy") }

func TestGracefulStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &stopper{}
	require.NoError(t, Graceful(ctx, s, time.Second, logging.NewNop()))
	assert.Equal(t, 1, s.calls)
	assert.True(t, s.deadline)
}

func TestGracefulReturnsShutdownError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.EqualError(t, Graceful(ctx, failingStopper{}, time.Second, logging.NewNop()), "busy")
}
