package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-LessonService/internal/usecase/payment_sweep"
)

type fakeSweeper struct {
	calls atomic.Int64
	err   error
}

func (f *fakeSweeper) Execute(_ context.Context) (*payment_sweep.Report, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &payment_sweep.Report{}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestScheduler_RunsSweepPeriodically(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, 10*time.Millisecond, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, sweeper.calls.Load(), int64(3))
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New(&fakeSweeper{}, time.Hour, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestScheduler_SweepErrorDoesNotStopLoop(t *testing.T) {
	sweeper := &fakeSweeper{err: payment_sweep.ErrLockHeld}
	s := New(sweeper, 10*time.Millisecond, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, sweeper.calls.Load(), int64(2))
}
