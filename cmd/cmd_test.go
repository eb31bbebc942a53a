package cmd

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockController struct {
	discoverErr error
	cycleErr    error
	cycles      atomic.Int32
}

func (m *mockController) Discover(ctx context.Context) error {
	return m.discoverErr
}

func (m *mockController) RunCycle(ctx context.Context) error {
	m.cycles.Add(1)
	return m.cycleErr
}

func TestServe_DiscoverFailureIsFatal(t *testing.T) {
	t.Parallel()
	svc := &mockController{discoverErr: errors.New("ha unreachable")}

	err := serve(context.Background(), svc, make(chan error, 1))
	require.Error(t, err)
	assert.Equal(t, int32(0), svc.cycles.Load(), "no cycle before discovery succeeds")
}

func TestServe_RunsFirstCycleImmediately(t *testing.T) {
	t.Parallel()
	svc := &mockController{}
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = serve(ctx, svc, make(chan error, 1))
	}()

	assert.Eventually(t, func() bool {
		return svc.cycles.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	assert.ErrorIs(t, runErr, context.Canceled)
}

func TestServe_CycleFailureDoesNotStopTheLoop(t *testing.T) {
	t.Parallel()
	svc := &mockController{cycleErr: errors.New("snapshot failed")}
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = serve(ctx, svc, make(chan error, 1))
	}()

	assert.Eventually(t, func() bool {
		return svc.cycles.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	assert.ErrorIs(t, runErr, context.Canceled, "cycle errors are reported, not fatal")
}
