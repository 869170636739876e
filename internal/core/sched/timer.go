package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TimerScheduler runs tasks on their own goroutine via time.AfterFunc.
// Panics inside a task are recovered and logged.
type TimerScheduler struct {
	log     *zap.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[*timerTask]struct{}
	closed  bool
}

func NewTimerScheduler(log *zap.Logger) *TimerScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimerScheduler{
		log:     log,
		pending: make(map[*timerTask]struct{}),
	}
}

type timerTask struct {
	s     *TimerScheduler
	state atomic.Int32
	timer *time.Timer
}

// Schedule arms a timer. After Close it returns a handle that never fires.
func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	t := &timerTask{s: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		t.state.Store(stateCanceled)
		return t
	}
	s.pending[t] = struct{}{}
	s.wg.Add(1)
	t.timer = time.AfterFunc(delay, func() { t.run(fn) })
	return t
}

func (t *timerTask) run(fn func()) {
	defer t.s.done(t)
	if !t.state.CompareAndSwap(statePending, stateRunning) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.s.log.Error("scheduled task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}

func (t *timerTask) Cancel() bool {
	if !t.state.CompareAndSwap(statePending, stateCanceled) {
		return false
	}
	if t.timer != nil && t.timer.Stop() {
		t.s.done(t)
	}
	return true
}

func (s *TimerScheduler) done(t *timerTask) {
	s.mu.Lock()
	if _, ok := s.pending[t]; ok {
		delete(s.pending, t)
		s.wg.Done()
	}
	s.mu.Unlock()
}

// Pending returns the number of armed or running tasks.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels every pending task and waits for running ones to return.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	tasks := make([]*timerTask, 0, len(s.pending))
	for t := range s.pending {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	s.wg.Wait()
}
