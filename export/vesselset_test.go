/*
NAME
  vesselset_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cortexlab/isxcore/container/vesselset"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/task"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
)

func TestExportVesselSetVelocityWithCorrelations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vel.isxd")
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), 2, nil, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp, err := spacing.New(5, 5, spacing.Point{X: rational.New(1, 1), Y: rational.New(1, 1)}, spacing.Point{})
	if err != nil {
		t.Fatalf("spacing.New: %v", err)
	}

	w, err := vesselset.Create(path, ti, sp, vesselset.Params{
		SetType: vesselset.RBCVelocity, Units: vesselset.UnitsMicronsPerSecond, ProjectionType: vesselset.ProjectionMax,
		TimeWindow: 2.0, TimeIncrement: 1.0, InputMovieFps: 20,
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	proj, _ := image.New(sp, image.F32, 1, 0)
	vel := trace.New(ti)
	dirTr := trace.New(ti)
	line := []vesselset.Point{{Col: 0, Row: 0}, {Col: 3, Row: 0}, {Col: 0, Row: 3}, {Col: 3, Row: 3}}
	corr := &vesselset.CorrelationVolume{Width: 2, Height: 2, Data: make([]float32, int(ti.NumSamples())*3*2*2)}
	for i := range corr.Data {
		corr.Data[i] = float32(i)
	}
	if err := w.WriteVelocityVessel(proj, line, vel, dirTr, corr, "V0"); err != nil {
		t.Fatalf("WriteVelocityVessel: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := vesselset.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	outDir := filepath.Join(dir, "out")
	status, err := ExportVesselSet(VesselSetExporterParams{
		Source: r, OutputDir: outDir, Correlations: true,
	}, nil, nil)
	if err != nil {
		t.Fatalf("ExportVesselSet: %v", err)
	}
	if status != task.Complete {
		t.Fatalf("status = %v, want COMPLETE", status)
	}

	if _, err := os.Stat(filepath.Join(outDir, "V0.csv")); err != nil {
		t.Errorf("trace CSV not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "V0_direction.csv")); err != nil {
		t.Errorf("direction CSV not written: %v", err)
	}
	rows := readCSVRows(t, filepath.Join(outDir, "V0_correlation.csv"))
	if len(rows) != 2*3*2*2 {
		t.Fatalf("len(correlation rows) = %d, want %d", len(rows), 2*3*2*2)
	}
}
