/*
NAME
  task_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package task

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunSyncComplete(t *testing.T) {
	var progressSeen []float32
	fn := func(report ProgressFunc) error {
		for i := 0; i < 5; i++ {
			if report(float32(i) / 5) {
				return ErrCancelled
			}
			progressSeen = append(progressSeen, float32(i)/5)
		}
		return nil
	}
	status, err := RunSync(fn, func(p float32) bool { return false }, "", nil)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if status != Complete {
		t.Errorf("status = %v, want COMPLETE", status)
	}
	if len(progressSeen) != 5 {
		t.Errorf("len(progressSeen) = %d, want 5", len(progressSeen))
	}
}

func TestRunSyncErrorException(t *testing.T) {
	wantErr := errors.New("boom")
	fn := func(report ProgressFunc) error { return wantErr }
	status, err := RunSync(fn, func(float32) bool { return false }, "", nil)
	if status != ErrorException {
		t.Errorf("status = %v, want ERROR_EXCEPTION", status)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestRunSyncCancelledDeletesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.isxd")
	if err := os.WriteFile(path, []byte("partial"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fn := func(report ProgressFunc) error {
		if report(0.5) {
			return ErrCancelled
		}
		return nil
	}
	status, err := RunSync(fn, func(float32) bool { return true }, path, nil)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if status != Cancelled {
		t.Errorf("status = %v, want CANCELLED", status)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("partial output still exists after cancellation: %v", statErr)
	}
}

func TestRunAsyncDoneChannel(t *testing.T) {
	fn := func(report ProgressFunc) error { return nil }
	tk := Run(fn, func(float32) bool { return false }, "", nil)
	<-tk.Done()
	status, err := tk.Wait()
	if err != nil || status != Complete {
		t.Errorf("status, err = %v, %v, want COMPLETE, nil", status, err)
	}
}
