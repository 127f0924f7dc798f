/*
NAME
  cellset_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cortexlab/isxcore/container/cellset"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/task"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
)

func TestExportCellSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.isxd")
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), 4, nil, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp, err := spacing.New(4, 4, spacing.Point{X: rational.New(1, 1), Y: rational.New(1, 1)}, spacing.Point{})
	if err != nil {
		t.Fatalf("spacing.New: %v", err)
	}

	w, err := cellset.Create(path, ti, sp, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	im, err := image.New(sp, image.F32, 1, 0)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	tr := trace.New(ti)
	for i := range tr.Values {
		tr.Values[i] = float32(i)
	}
	if err := w.WriteImageAndTrace(im, tr, "C0"); err != nil {
		t.Fatalf("WriteImageAndTrace: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := cellset.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	outDir := filepath.Join(dir, "out")
	status, err := ExportCellSet(CellSetExporterParams{
		Source: r, OutputDir: outDir, Footprints: true,
	}, nil, nil)
	if err != nil {
		t.Fatalf("ExportCellSet: %v", err)
	}
	if status != task.Complete {
		t.Fatalf("status = %v, want COMPLETE", status)
	}

	rows := readCSVRows(t, filepath.Join(outDir, "C0.csv"))
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if _, err := os.Stat(filepath.Join(outDir, "C0.tiff")); err != nil {
		t.Errorf("footprint TIFF not written: %v", err)
	}
}
