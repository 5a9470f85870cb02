package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollLoopStarterShouldCallImmediatelyAndThenOnEveryTick(t *testing.T) {
	t.Parallel()

	numCalls := 0
	mutCalls := sync.Mutex{}
	handler := func(ctx context.Context) {
		mutCalls.Lock()
		numCalls++
		mutCalls.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	PollLoopStarter(ctx, &wg, handler, 50*time.Millisecond)

	time.Sleep(180 * time.Millisecond)
	cancel()
	wg.Wait()

	mutCalls.Lock()
	defer mutCalls.Unlock()
	// one immediate call plus at least 2 ticks inside the 180ms window
	require.GreaterOrEqual(t, numCalls, 3)
}

func TestPollLoopStarterShouldSkipTicksFiredDuringSlowCycle(t *testing.T) {
	t.Parallel()

	interval := 100 * time.Millisecond
	startTimes := make([]time.Duration, 0)
	mutCalls := sync.Mutex{}

	testStart := time.Now()
	handler := func(ctx context.Context) {
		mutCalls.Lock()
		firstCall := len(startTimes) == 0
		startTimes = append(startTimes, time.Since(testStart))
		mutCalls.Unlock()

		if firstCall {
			// overrun 2 interval boundaries, the ticks fired meanwhile must be dropped
			time.Sleep(250 * time.Millisecond)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	PollLoopStarter(ctx, &wg, handler, interval)

	time.Sleep(450 * time.Millisecond)
	cancel()
	wg.Wait()

	mutCalls.Lock()
	defer mutCalls.Unlock()
	require.GreaterOrEqual(t, len(startTimes), 2)

	// the slow first cycle ends around +250ms; a queued tick would start the second cycle
	// right there, a skipped one delays it until the next interval boundary at +300ms
	require.GreaterOrEqual(t, startTimes[1], 3*interval)
}

func TestPollLoopStarterShouldStopWhenContextIsDone(t *testing.T) {
	t.Parallel()

	numCalls := 0
	mutCalls := sync.Mutex{}
	handler := func(ctx context.Context) {
		mutCalls.Lock()
		numCalls++
		mutCalls.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	PollLoopStarter(ctx, &wg, handler, 50*time.Millisecond)
	cancel()
	wg.Wait()

	mutCalls.Lock()
	callsAfterStop := numCalls
	mutCalls.Unlock()

	time.Sleep(120 * time.Millisecond)

	mutCalls.Lock()
	defer mutCalls.Unlock()
	require.Equal(t, callsAfterStop, numCalls)
}
