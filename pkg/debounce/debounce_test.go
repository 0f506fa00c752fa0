package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCoalescesBurst(t *testing.T) {
	d := New(50 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { runs.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	// No further runs after the burst settled.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestTriggerRunsAfterQuiescence(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
}

func TestFlushRunsPendingImmediately(t *testing.T) {
	d := New(time.Hour)
	defer d.Stop()

	done := make(chan struct{})
	d.Trigger(func() { close(done) })
	d.Flush()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush did not run the pending function")
	}
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	d := New(10 * time.Millisecond)
	defer d.Stop()
	d.Flush()
}

func TestStopCancelsPendingAndRejectsTriggers(t *testing.T) {
	d := New(20 * time.Millisecond)

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	d.Stop()
	d.Trigger(func() { runs.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestZeroDelayUsesDefault(t *testing.T) {
	d := New(0)
	defer d.Stop()
	assert.Equal(t, 100*time.Millisecond, d.delay)
}
