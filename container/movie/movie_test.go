/*
NAME
  movie_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package movie

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
)

func mustTiming(t *testing.T, n uint64) timing.Info {
	t.Helper()
	ti, err := timing.New(rational.Time{}, rational.New(50, 1000), n, nil, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	return ti
}

func mustSpacing(t *testing.T) spacing.Info {
	t.Helper()
	sp, err := spacing.New(4, 3, spacing.Point{X: rational.New(3, 1), Y: rational.New(3, 1)}, spacing.Point{})
	if err != nil {
		t.Fatalf("spacing.New: %v", err)
	}
	return sp
}

// TestMovieWriteAndReadBack writes a 4x3 U16 movie pixel by pixel and
// verifies the seal/reopen round-trip preserves spacing and pixel
// data exactly.
func TestMovieWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s1.isxd")
	ti := mustTiming(t, 5)
	sp := mustSpacing(t)

	w, err := Create(path, ti, sp, image.U16, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for f := uint64(0); f < 5; f++ {
		vf, err := w.NewFrame(f)
		if err != nil {
			t.Fatalf("NewFrame: %v", err)
		}
		for p := 0; p < 12; p++ {
			binary.LittleEndian.PutUint16(vf.Data[p*2:p*2+2], uint16(f*12+uint64(p)))
		}
		if err := w.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame(%d): %v", f, err)
		}
	}
	if err := w.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Timing().NumSamples() != 5 {
		t.Errorf("NumSamples = %d, want 5", r.Timing().NumSamples())
	}
	if r.Spacing().PixelSize().X.Cmp(rational.New(3, 1)) != 0 || r.Spacing().PixelSize().Y.Cmp(rational.New(3, 1)) != 0 {
		t.Errorf("pixel size = %v, want (3,3)", r.Spacing().PixelSize())
	}

	frame, err := r.GetFrame(2)
	if err != nil {
		t.Fatalf("GetFrame(2): %v", err)
	}
	got := binary.LittleEndian.Uint16(frame.Data[7*2 : 7*2+2])
	if got != 31 {
		t.Errorf("get_frame(2).pixels[7] = %d, want 31", got)
	}
}

func TestMovieNonValidFramesAreZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonvalid.isxd")
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), 5, []uint64{2}, nil, []uint64{4})
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, image.U8, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, i := range []uint64{0, 1, 3} {
		vf, err := w.NewFrame(i)
		if err != nil {
			t.Fatalf("NewFrame: %v", err)
		}
		if err := w.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	if err := w.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	dropped, err := r.GetFrame(2)
	if err != nil {
		t.Fatalf("GetFrame(2): %v", err)
	}
	if dropped.Kind != image.FrameDropped || !dropped.IsZero() {
		t.Errorf("frame 2 = %v, want all-zero DROPPED", dropped.Kind)
	}
	blank, err := r.GetFrame(4)
	if err != nil {
		t.Fatalf("GetFrame(4): %v", err)
	}
	if blank.Kind != image.FrameBlank || !blank.IsZero() {
		t.Errorf("frame 4 = %v, want all-zero BLANK", blank.Kind)
	}
}

// TestMovieWriteToNonValidIsNoOp covers writing an invalid index
// being a warning and a no-op.
func TestMovieWriteToNonValidIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.isxd")
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), 3, []uint64{1}, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, image.U8, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	vf, err := w.NewFrame(1)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if err := w.WriteFrame(vf); err != nil {
		t.Errorf("WriteFrame(1) (dropped index) should be a no-op, got error: %v", err)
	}
	if w.nextValid != 0 {
		t.Errorf("nextValid advanced past a no-op write")
	}
}

func TestMovieTrailerIntegrity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trailer.isxd")
	ti := mustTiming(t, 2)
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, image.U8, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for f := uint64(0); f < 2; f++ {
		vf, _ := w.NewFrame(f)
		if err := w.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-4); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Errorf("expected Open to fail on a truncated trailer")
	}
}

func TestMovieCloseFewerSamplesFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.isxd")
	ti := mustTiming(t, 5)
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, image.U8, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for f := uint64(0); f < 3; f++ {
		vf, _ := w.NewFrame(f)
		if err := w.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	shortTiming := mustTiming(t, 2)
	if err := w.Close(&shortTiming); err == nil {
		t.Errorf("expected Close with fewer samples than written to fail")
	}
}

func TestMovieRoundTripIdempotent(t *testing.T) {
	path1 := filepath.Join(t.TempDir(), "rt1.isxd")
	ti := mustTiming(t, 3)
	sp := mustSpacing(t)
	w, err := Create(path1, ti, sp, image.U8, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for f := uint64(0); f < 3; f++ {
		vf, _ := w.NewFrame(f)
		for i := range vf.Data {
			vf.Data[i] = byte(f + uint64(i))
		}
		if err := w.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r1, err := Open(path1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r1.Close()

	path2 := filepath.Join(t.TempDir(), "rt2.isxd")
	w2, err := Create(path2, r1.Timing(), r1.Spacing(), r1.DataType(), false, nil)
	if err != nil {
		t.Fatalf("Create rt2: %v", err)
	}
	for f := uint64(0); f < r1.Timing().NumSamples(); f++ {
		vf, err := r1.GetFrame(f)
		if err != nil {
			t.Fatalf("GetFrame: %v", err)
		}
		if err := w2.WriteFrame(vf); err != nil {
			t.Fatalf("WriteFrame rt2: %v", err)
		}
	}
	if err := w2.Close(nil); err != nil {
		t.Fatalf("Close rt2: %v", err)
	}

	r2, err := Open(path2)
	if err != nil {
		t.Fatalf("Open rt2: %v", err)
	}
	defer r2.Close()

	for f := uint64(0); f < r1.Timing().NumSamples(); f++ {
		a, _ := r1.GetFrame(f)
		b, _ := r2.GetFrame(f)
		if diff := cmp.Diff(a.Data, b.Data); diff != "" {
			t.Errorf("frame %d mismatch after round trip (-orig +roundtrip):\n%s", f, diff)
		}
	}
}
