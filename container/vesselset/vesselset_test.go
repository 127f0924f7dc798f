/*
NAME
  vesselset_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package vesselset

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
	ti, err := timing.New(rational.Time{}, rational.New(1, 20), n, nil, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	return ti
}

func mustSpacing(t *testing.T) spacing.Info {
	t.Helper()
	sp, err := spacing.New(5, 5, spacing.Point{X: rational.New(1, 1), Y: rational.New(1, 1)}, spacing.Point{})
	if err != nil {
		t.Fatalf("spacing.New: %v", err)
	}
	return sp
}

func TestVesselSetDiameterWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diam.isxd")
	ti := mustTiming(t, 4)
	sp := mustSpacing(t)

	w, err := Create(path, ti, sp, Params{
		SetType: VesselDiameter, Units: UnitsMicrons, ProjectionType: ProjectionMean,
		TimeWindow: 1.0, TimeIncrement: 0.5,
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	proj, err := image.New(sp, image.F32, 1, 0)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	diam := trace.New(ti)
	center := trace.New(ti)
	for i := range diam.Values {
		diam.Values[i] = float32(10 + i)
		center.Values[i] = float32(2)
	}
	line := []Point{{Col: 1, Row: 1}, {Col: 3, Row: 3}}
	if err := w.WriteDiameterVessel(proj, line, diam, center, "V0"); err != nil {
		t.Fatalf("WriteDiameterVessel: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.NumVessels() != 1 {
		t.Fatalf("NumVessels = %d, want 1", r.NumVessels())
	}
	if r.SetType() != VesselDiameter {
		t.Errorf("SetType = %v, want VESSEL_DIAMETER", r.SetType())
	}
	name, _ := r.VesselName(0)
	if name != "V0" {
		t.Errorf("VesselName(0) = %q, want V0", name)
	}
	gotLine, err := r.VesselLine(0)
	if err != nil || len(gotLine) != 2 || gotLine[1].Col != 3 {
		t.Errorf("VesselLine(0) = %v, %v, want [{1 1} {3 3}]", gotLine, err)
	}
	gotDiam, err := r.VesselTrace(0)
	if err != nil {
		t.Fatalf("VesselTrace: %v", err)
	}
	for i, v := range gotDiam.Values {
		if v != float32(10+i) {
			t.Errorf("diameter[%d] = %v, want %v", i, v, float32(10+i))
		}
	}
	gotCenter, err := r.VesselSecondaryTrace(0)
	if err != nil {
		t.Fatalf("VesselSecondaryTrace: %v", err)
	}
	for _, v := range gotCenter.Values {
		if v != 2 {
			t.Errorf("center = %v, want 2", v)
		}
	}
}

func TestVesselSetVelocityWithCorrelations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vel.isxd")
	ti := mustTiming(t, 2)
	sp := mustSpacing(t)

	w, err := Create(path, ti, sp, Params{
		SetType: RBCVelocity, Units: UnitsMicronsPerSecond, ProjectionType: ProjectionMax,
		TimeWindow: 2.0, TimeIncrement: 1.0, InputMovieFps: 20,
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	proj, _ := image.New(sp, image.F32, 1, 0)
	vel := trace.New(ti)
	dir := trace.New(ti)
	line := []Point{{Col: 0, Row: 0}, {Col: 1, Row: 1}, {Col: 2, Row: 2}, {Col: 3, Row: 3}}

	corr := &CorrelationVolume{Width: 2, Height: 2, Data: make([]float32, int(ti.NumSamples())*3*2*2)}
	for i := range corr.Data {
		corr.Data[i] = float32(i)
	}
	if err := w.WriteVelocityVessel(proj, line, vel, dir, corr, ""); err != nil {
		t.Fatalf("WriteVelocityVessel: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	name, _ := r.VesselName(0)
	if name != "V0" {
		t.Errorf("VesselName(0) = %q, want default V0", name)
	}
	gotCorr, err := r.VesselCorrelationVolume(0)
	if err != nil {
		t.Fatalf("VesselCorrelationVolume: %v", err)
	}
	if gotCorr == nil || gotCorr.Width != 2 || gotCorr.Height != 2 {
		t.Fatalf("VesselCorrelationVolume = %v, want (2,2)", gotCorr)
	}
	for i, v := range gotCorr.Data {
		if v != float32(i) {
			t.Errorf("corr.Data[%d] = %v, want %v", i, v, float32(i))
		}
	}
}

func TestProjectFramesMean(t *testing.T) {
	sp := mustSpacing(t)
	mk := func(v float32) *image.Image {
		im, _ := image.New(sp, image.F32, 1, 0)
		for r := 0; r < int(sp.NumRows()); r++ {
			for c := 0; c < int(sp.NumCols()); c++ {
				off := r*im.RowBytes + c*4
				binary.LittleEndian.PutUint32(im.Data[off:off+4], math.Float32bits(v))
			}
		}
		return im
	}
	frames := []*image.Image{mk(1), mk(2), mk(3)}
	out, err := ProjectFrames(frames, sp, ProjectionMean)
	if err != nil {
		t.Fatalf("ProjectFrames: %v", err)
	}
	got := math.Float32frombits(binary.LittleEndian.Uint32(out.Data[0:4]))
	if got != 2 {
		t.Errorf("mean projection = %v, want 2", got)
	}
}

func TestComputeCorrelationVolumeSelfCorrelationPeaksAtZero(t *testing.T) {
	a := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	out := ComputeCorrelationVolume(a, a)
	if out == nil {
		t.Fatal("ComputeCorrelationVolume returned nil")
	}
	peak := 0
	for i := 1; i < len(out); i++ {
		if out[i] > out[peak] {
			peak = i
		}
	}
	if peak != 0 {
		t.Errorf("self-correlation peak at lag %d, want 0", peak)
	}
}
