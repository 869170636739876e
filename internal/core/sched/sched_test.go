package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	coresys "github.com/l1jgo/worldgrid/internal/core/system"
)

func TestManualScheduler_FiresAtDeadline(t *testing.T) {
	m := NewManualScheduler()
	var fired int
	m.Schedule(time.Second, func() { fired++ })

	m.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, m.Pending())

	m.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, time.Second, m.Now())

	m.Advance(time.Hour)
	assert.Equal(t, 1, fired, "a task runs at most once")
}

func TestManualScheduler_OrderAndNestedScheduling(t *testing.T) {
	m := NewManualScheduler()
	var order []string
	m.Schedule(2*time.Second, func() { order = append(order, "b") })
	m.Schedule(time.Second, func() {
		order = append(order, "a")
		m.Schedule(500*time.Millisecond, func() { order = append(order, "a+") })
	})
	m.Schedule(2*time.Second, func() { order = append(order, "c") })

	m.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "a+", "b", "c"}, order)
}

func TestManualScheduler_Cancel(t *testing.T) {
	m := NewManualScheduler()
	var fired int
	h := m.Schedule(time.Second, func() { fired++ })

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel is a no-op")
	assert.Equal(t, 0, m.Pending())

	m.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	h2 := m.Schedule(0, func() { fired++ })
	m.Advance(0)
	assert.Equal(t, 1, fired)
	assert.False(t, h2.Cancel(), "cancel after fire is a no-op")
}

func TestTickDriver_AdvancesClock(t *testing.T) {
	m := NewManualScheduler()
	var fired atomic.Bool
	m.Schedule(time.Second, func() { fired.Store(true) })

	r := coresys.NewRunner()
	r.Register(NewTickDriver(m))
	for range 4 {
		r.Tick(200 * time.Millisecond)
	}
	assert.False(t, fired.Load())
	r.Tick(200 * time.Millisecond)
	assert.True(t, fired.Load())
}

func TestTimerScheduler_RunsOnce(t *testing.T) {
	s := NewTimerScheduler(nil)
	defer s.Close()

	done := make(chan struct{})
	var runs atomic.Int32
	h := s.Schedule(time.Millisecond, func() {
		runs.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never fired")
	}
	assert.False(t, h.Cancel())
	assert.Equal(t, int32(1), runs.Load())
}

func TestTimerScheduler_CancelBeforeFire(t *testing.T) {
	s := NewTimerScheduler(nil)
	var runs atomic.Int32
	h := s.Schedule(time.Hour, func() { runs.Add(1) })

	require.Equal(t, 1, s.Pending())
	assert.True(t, h.Cancel())
	assert.Equal(t, 0, s.Pending())

	s.Close()
	assert.Equal(t, int32(0), runs.Load())
}

func TestTimerScheduler_CloseCancelsPending(t *testing.T) {
	s := NewTimerScheduler(nil)
	var runs atomic.Int32
	for range 5 {
		s.Schedule(time.Hour, func() { runs.Add(1) })
	}
	s.Close()
	assert.Equal(t, 0, s.Pending())

	h := s.Schedule(0, func() { runs.Add(1) })
	assert.False(t, h.Cancel(), "handles from a closed scheduler never fire")
	assert.Equal(t, int32(0), runs.Load())
}

func TestTimerScheduler_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := NewTimerScheduler(zap.New(core))

	done := make(chan struct{})
	s.Schedule(0, func() {
		defer close(done)
		panic("boom")
	})
	<-done
	s.Close()

	require.Equal(t, 1, logs.FilterMessage("scheduled task panicked").Len())
}
