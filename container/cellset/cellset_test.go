/*
NAME
  cellset_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package cellset

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
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

// TestCellSetWriteAndReadBack writes a single named cell's footprint
// and trace and verifies the seal/reopen round-trip preserves its
// name, status, and values within f32 precision.
func TestCellSetWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s2.isxd")
	ti := mustTiming(t, 5)
	sp := mustSpacing(t)

	w, err := Create(path, ti, sp, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	im, err := image.New(sp, image.F32, 1, 0)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	binary.LittleEndian.PutUint32(im.Data[0:4], math.Float32bits(1))
	binary.LittleEndian.PutUint32(im.Data[4:8], math.Float32bits(2.5))

	tr := trace.New(ti)
	for i := range tr.Values {
		tr.Values[i] = float32(84 + 0.01*float64(i))
	}

	if err := w.WriteImageAndTrace(im, tr, "Lonely1"); err != nil {
		t.Fatalf("WriteImageAndTrace: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.NumCells() != 1 {
		t.Fatalf("NumCells = %d, want 1", r.NumCells())
	}
	name, err := r.CellName(0)
	if err != nil || name != "Lonely1" {
		t.Errorf("CellName(0) = %q, %v, want Lonely1", name, err)
	}
	status, err := r.CellStatus(0)
	if err != nil || status != Undecided {
		t.Errorf("CellStatus(0) = %v, %v, want UNDECIDED", status, err)
	}

	gotImg, err := r.CellImage(0)
	if err != nil {
		t.Fatalf("CellImage: %v", err)
	}
	p0 := math.Float32frombits(binary.LittleEndian.Uint32(gotImg.Data[0:4]))
	p1 := math.Float32frombits(binary.LittleEndian.Uint32(gotImg.Data[4:8]))
	if p0 != 1 || p1 != 2.5 {
		t.Errorf("cell image pixels[0,1] = %v, %v, want 1, 2.5", p0, p1)
	}

	gotTrace, err := r.CellTrace(0)
	if err != nil {
		t.Fatalf("CellTrace: %v", err)
	}
	for i, v := range gotTrace.Values {
		want := float32(84 + 0.01*float64(i))
		if v != want {
			t.Errorf("trace[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestCellSetDefaultNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.isxd")
	ti := mustTiming(t, 2)
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	im, _ := image.New(sp, image.F32, 1, 0)
	tr := trace.New(ti)
	for i := 0; i < 11; i++ {
		if err := w.WriteImageAndTrace(im, tr, ""); err != nil {
			t.Fatalf("WriteImageAndTrace(%d): %v", i, err)
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
	name0, _ := r.CellName(0)
	name10, _ := r.CellName(10)
	if name0 != "C00" || name10 != "C10" {
		t.Errorf("default names = %q, %q, want C00, C10", name0, name10)
	}
}

func TestCellSetNonValidTraceIsNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.isxd")
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), 4, []uint64{1}, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp := mustSpacing(t)
	w, err := Create(path, ti, sp, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	im, _ := image.New(sp, image.F32, 1, 0)
	tr := trace.New(ti)
	for i := range tr.Values {
		tr.Values[i] = float32(i)
	}
	if err := w.WriteImageAndTrace(im, tr, "X"); err != nil {
		t.Fatalf("WriteImageAndTrace: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	got, err := r.CellTrace(0)
	if err != nil {
		t.Fatalf("CellTrace: %v", err)
	}
	if !math.IsNaN(float64(got.Values[1])) {
		t.Errorf("trace[1] (dropped) = %v, want NaN", got.Values[1])
	}
}
