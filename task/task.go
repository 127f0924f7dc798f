/*
NAME
  task.go

DESCRIPTION
  task.go implements the async task runtime: single worker goroutine
  per task, a caller-supplied progress callback whose return value
  requests cancellation, and partial-output cleanup on cancellation.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package task implements the async task runtime every bulk
// operation (export, per-frame async read) is built on: one worker
// goroutine per task, cooperative cancellation through a progress
// callback, and deletion of partial output on cancellation.
package task

import (
	"errors"
	"os"

	"github.com/cortexlab/isxcore/log"
)

// Status is the terminal state of a Task.
type Status int

// The three terminal states a Task can reach.
const (
	Complete Status = iota
	Cancelled
	ErrorException
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "COMPLETE"
	case Cancelled:
		return "CANCELLED"
	case ErrorException:
		return "ERROR_EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// ErrCancelled is returned by a Func to signal that it stopped
// because its ProgressFunc reported a cancellation request.
var ErrCancelled = errors.New("task: cancelled")

// ProgressFunc reports fractional progress in [0,1] from the worker
// goroutine. Returning true requests that the task stop as soon as
// possible; the Func must then return ErrCancelled promptly.
type ProgressFunc func(progress float32) bool

// Func is the work a Task performs on its own goroutine. It must
// invoke report at natural progress points (e.g. once per record)
// and return ErrCancelled as soon as report returns true.
type Func func(report ProgressFunc) error

// Task tracks one Func running on its own goroutine.
type Task struct {
	done       chan struct{}
	status     Status
	err        error
	outputPath string
	log        log.Logger
}

// Run starts fn on its own goroutine, plumbing report through to it,
// and returns immediately with a handle to wait on. outputPath, if
// non-empty, is deleted if fn finishes Cancelled; report and logger may
// be nil.
func Run(fn Func, report ProgressFunc, outputPath string, logger log.Logger) *Task {
	if logger == nil {
		logger = log.NewNop()
	}
	if report == nil {
		report = func(float32) bool { return false }
	}
	t := &Task{done: make(chan struct{}), outputPath: outputPath, log: logger}
	go t.worker(fn, report)
	return t
}

// RunSync runs fn to completion on the calling goroutine's behalf —
// a worker goroutine is still spawned, one per pending operation —
// and blocks until it finishes, returning its Status and error
// directly. This is the synchronous run(params, &output,
// progress_callback) primitive; Run above layers the non-blocking
// handle exporters and async reads need on top of the same worker.
func RunSync(fn Func, report ProgressFunc, outputPath string, logger log.Logger) (Status, error) {
	t := Run(fn, report, outputPath, logger)
	return t.Wait()
}

func (t *Task) worker(fn Func, report ProgressFunc) {
	defer close(t.done)

	err := fn(report)
	switch {
	case errors.Is(err, ErrCancelled):
		t.status = Cancelled
		t.cleanupOutput()
	case err != nil:
		t.status = ErrorException
		t.err = err
		t.log.Log(log.LevelError, "task failed", "error", err.Error())
	default:
		t.status = Complete
	}
}

// cleanupOutput deletes a cancelled task's partial output file before
// Wait returns.
func (t *Task) cleanupOutput() {
	if t.outputPath == "" {
		return
	}
	if err := os.Remove(t.outputPath); err != nil && !os.IsNotExist(err) {
		t.log.Log(log.LevelWarning, "failed to remove partial output after cancellation", "path", t.outputPath, "error", err.Error())
	}
}

// Wait blocks until the task finishes and returns its terminal
// Status and, for ErrorException, the error that caused it.
func (t *Task) Wait() (Status, error) {
	<-t.done
	return t.status, t.err
}

// Done returns a channel that closes when the task finishes, for
// callers that want to select on multiple tasks at once.
func (t *Task) Done() <-chan struct{} { return t.done }
