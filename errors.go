package celerybridge

import "errors"

// ErrWaitTimeout is returned by WaitForCompletion when no terminal result
// record appears before the deadline. The task may still complete later;
// callers should not treat this as a definite failure.
var ErrWaitTimeout = errors.New("celerybridge: timed out waiting for task result")

// ErrEmptyTaskName is returned when a dispatch is attempted without a task name.
var ErrEmptyTaskName = errors.New("celerybridge: task name must not be empty")

// ErrEmptyQueue is returned when a raw dispatch targets an empty queue name.
var ErrEmptyQueue = errors.New("celerybridge: queue name must not be empty")
