package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devhub/internal/services"
)

type sweeperMock struct {
	mock.Mock
	calls atomic.Int32
}

func (m *sweeperMock) AutoCloseExpired(ctx context.Context) (services.SweepResult, error) {
	m.calls.Add(1)
	args := m.Called(ctx)
	return args.Get(0).(services.SweepResult), args.Error(1)
}

func TestRunOnceReturnsSweepResult(t *testing.T) {
	sweeper := new(sweeperMock)
	want := services.SweepResult{Closed: []int{4}, Failed: map[int]string{9: "boom"}}
	sweeper.On("AutoCloseExpired", mock.Anything).Return(want, nil).Once()

	got := NewAutoCloser(sweeper, time.Minute).RunOnce(context.Background())

	assert.Equal(t, want, got)
	sweeper.AssertExpectations(t)
}

func TestRunOnceSurvivesSweepError(t *testing.T) {
	sweeper := new(sweeperMock)
	sweeper.On("AutoCloseExpired", mock.Anything).Return(services.SweepResult{}, errors.New("db down")).Once()

	got := NewAutoCloser(sweeper, time.Minute).RunOnce(context.Background())

	assert.Empty(t, got.Closed)
	sweeper.AssertExpectations(t)
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	sweeper := new(sweeperMock)
	sweeper.On("AutoCloseExpired", mock.Anything).Return(services.SweepResult{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewAutoCloser(sweeper, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunDisabledWithoutInterval(t *testing.T) {
	sweeper := new(sweeperMock)
	NewAutoCloser(sweeper, 0).Run(context.Background())
	assert.Zero(t, sweeper.calls.Load())
}
