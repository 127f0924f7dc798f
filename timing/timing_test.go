/*
NAME
  timing_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package timing

import (
	"testing"

	"github.com/cortexlab/isxcore/rational"
)

func mustInfo(t *testing.T, start rational.Time, step rational.Rational, n uint64, dropped []uint64, cropped []IndexRange, blank []uint64) Info {
	t.Helper()
	ti, err := New(start, step, n, dropped, cropped, blank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ti
}

func TestIndexTimeRoundTrip(t *testing.T) {
	start := rational.Time{SecsSinceEpoch: rational.New(1_000_000, 1)}
	step := rational.New(50, 1000) // 50ms
	ti := mustInfo(t, start, step, 20, nil, nil, nil)

	for i := uint64(0); i < ti.NumSamples(); i++ {
		tm, err := ti.IndexToStartTime(i)
		if err != nil {
			t.Fatalf("IndexToStartTime(%d): %v", i, err)
		}
		idx, inRange, err := ti.TimeToIndex(tm)
		if err != nil {
			t.Fatalf("TimeToIndex: %v", err)
		}
		if !inRange || uint64(idx) != i {
			t.Errorf("round trip for index %d got index %d (inRange=%v)", i, idx, inRange)
		}
	}
}

func TestDisjointnessValidation(t *testing.T) {
	start := rational.Time{}
	step := rational.New(1, 10)

	if _, err := New(start, step, 10, []uint64{3}, nil, []uint64{3}); err == nil {
		t.Errorf("expected error for overlapping dropped/blank")
	}
	if _, err := New(start, step, 10, nil, []IndexRange{{2, 4}, {4, 6}}, nil); err == nil {
		t.Errorf("expected error for overlapping cropped ranges")
	}
	if _, err := New(start, step, 10, []uint64{11}, nil, nil); err == nil {
		t.Errorf("expected error for out-of-range dropped index")
	}
}

func TestKindOfAndValidity(t *testing.T) {
	start := rational.Time{}
	step := rational.New(1, 10)
	ti := mustInfo(t, start, step, 10, []uint64{1}, []IndexRange{{4, 5}}, []uint64{8})

	cases := map[uint64]Kind{
		0: Valid, 1: Dropped, 2: Valid, 4: Cropped, 5: Cropped, 8: Blank, 9: Valid,
	}
	for i, want := range cases {
		if got := ti.KindOf(i); got != want {
			t.Errorf("KindOf(%d) = %v, want %v", i, got, want)
		}
	}
	if ti.IsValid(1) {
		t.Errorf("index 1 should not be valid")
	}
	if !ti.IsValid(0) {
		t.Errorf("index 0 should be valid")
	}
}

func TestDuration(t *testing.T) {
	start := rational.Time{}
	step := rational.New(1, 20)
	ti := mustInfo(t, start, step, 100, nil, nil, nil)
	dur, err := ti.Duration()
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	want := rational.New(5, 1)
	if dur.Cmp(want) != 0 {
		t.Errorf("Duration() = %v, want %v", dur, want)
	}
}
