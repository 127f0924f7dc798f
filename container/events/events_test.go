/*
NAME
  events_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package events

import (
	"path/filepath"
	"testing"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/rational"
)

// TestEventsWriteAndReadBack emits several events on one channel and
// verifies read_channel recovers each point's offset from start
// exactly.
func TestEventsWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s4.isxd")
	start := rational.Time{SecsSinceEpoch: rational.New(1_000, 1)}

	w, err := Create(path, start, container.TypeEvents, []string{"ch0"}, []uint64{0}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	offsets := []uint64{0, 50_000, 100_000, 150_000, 200_000}
	for _, off := range offsets {
		if err := w.WriteEvent("ch0", off, 1); err != nil {
			t.Fatalf("WriteEvent(%d): %v", off, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	names := r.ChannelNames()
	if len(names) != 1 || names[0] != "ch0" {
		t.Fatalf("ChannelNames = %v, want [ch0]", names)
	}
	count, err := r.ChannelCount("ch0")
	if err != nil || count != 5 {
		t.Fatalf("ChannelCount = %d, %v, want 5", count, err)
	}

	lt, err := r.ReadChannel("ch0")
	if err != nil {
		t.Fatalf("ReadChannel: %v", err)
	}
	if len(lt.Points) != 5 {
		t.Fatalf("len(Points) = %d, want 5", len(lt.Points))
	}
	for i, p := range lt.Points {
		d, err := p.Time.Sub(r.StartTime())
		if err != nil {
			t.Fatalf("Sub: %v", err)
		}
		wantSecs := rational.New(int64(offsets[i]), 1_000_000)
		if d.Cmp(wantSecs) != 0 {
			t.Errorf("point[%d] time-T = %v, want %v", i, d, wantSecs)
		}
	}
}

func TestEventsMonotonicEnforced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.isxd")
	start := rational.Time{}
	w, err := Create(path, start, container.TypeEvents, []string{"ch0"}, []uint64{0}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteEvent("ch0", 100, 1); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := w.WriteEvent("ch0", 50, 1); err == nil {
		t.Errorf("expected non-monotonic write to fail")
	}
}

func TestEventsGpioSharesFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpio.isxd")
	start := rational.Time{}
	w, err := Create(path, start, container.TypeGpio, []string{"TRIG", "SYNC"}, []uint64{0, 10}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteEvent("SYNC", 10, 3.3); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	c, err := r.ChannelCount("TRIG")
	if err != nil || c != 0 {
		t.Errorf("ChannelCount(TRIG) = %d, %v, want 0", c, err)
	}
}
