// Package sched provides the delayed-task facility used by the region grid:
// schedule a callback after a delay and cancel it before it fires.
package sched

import "time"

// Handle cancels a scheduled task.
// Cancel reports whether the task was stopped before it started running.
// Calling it after the task fired, or twice, is a no-op returning false.
type Handle interface {
	Cancel() bool
}

// Scheduler runs fn once after delay on an execution context of its choosing.
// fn runs at most once per Schedule call.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

// Func adapts a plain function to Scheduler.
type Func func(delay time.Duration, fn func()) Handle

func (f Func) Schedule(delay time.Duration, fn func()) Handle { return f(delay, fn) }

// task states shared by the implementations.
const (
	statePending int32 = iota
	stateRunning
	stateCanceled
)
