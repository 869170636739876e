package sched

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// ManualScheduler is a deterministic clock: tasks fire only when Advance
// moves the clock past their deadline, on the goroutine calling Advance.
// Tasks with equal deadlines fire in scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue taskQueue
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTask struct {
	at    time.Duration
	seq   uint64
	fn    func()
	state atomic.Int32
}

func (t *manualTask) Cancel() bool {
	return t.state.CompareAndSwap(statePending, stateCanceled)
}

func (m *ManualScheduler) Schedule(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{at: m.now + delay, seq: m.seq, fn: fn}
	heap.Push(&m.queue, t)
	return t
}

// Advance moves the clock forward by d and runs every task that became due,
// including tasks scheduled by tasks that run during this call.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if len(m.queue) == 0 || m.queue[0].at > target {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := heap.Pop(&m.queue).(*manualTask)
		m.now = t.at
		m.mu.Unlock()

		// the lock is released so tasks may schedule more work
		if t.state.CompareAndSwap(statePending, stateRunning) {
			t.fn()
		}
	}
}

// Now returns the simulated time elapsed since construction.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of queued tasks that were not canceled.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.queue {
		if t.state.Load() == statePending {
			n++
		}
	}
	return n
}

type taskQueue []*manualTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) {
	*q = append(*q, x.(*manualTask))
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
