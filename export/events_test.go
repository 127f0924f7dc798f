/*
NAME
  events_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package export

import (
	"path/filepath"
	"testing"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/container/events"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/task"
)

func buildEvents(t *testing.T, path string) {
	t.Helper()
	start := rational.Time{SecsSinceEpoch: rational.New(1_000, 1)}
	w, err := events.Create(path, start, container.TypeEvents, []string{"ch0", "ch1"}, []uint64{0, 0}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, off := range []uint64{0, 50_000, 100_000} {
		if err := w.WriteEvent("ch0", off, 1); err != nil {
			t.Fatalf("WriteEvent: %v", err)
		}
	}
	if err := w.WriteEvent("ch1", 25_000, 2); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestExportEventsCombined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.isxd")
	buildEvents(t, path)

	r, err := events.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	outPath := filepath.Join(dir, "out.csv")
	status, err := ExportEvents(EventsExporterParams{Source: r, OutputPath: outPath}, nil, nil)
	if err != nil {
		t.Fatalf("ExportEvents: %v", err)
	}
	if status != task.Complete {
		t.Fatalf("status = %v, want COMPLETE", status)
	}
	rows := readCSVRows(t, outPath)
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if rows[0][0] != "ch0" || rows[0][1] != "0" {
		t.Errorf("rows[0] = %v, want [ch0 0 ...]", rows[0])
	}
}

func TestExportEventsSplit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.isxd")
	buildEvents(t, path)

	r, err := events.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	outPath := filepath.Join(dir, "out.csv")
	status, err := ExportEvents(EventsExporterParams{Source: r, OutputPath: outPath, Split: true}, nil, nil)
	if err != nil {
		t.Fatalf("ExportEvents: %v", err)
	}
	if status != task.Complete {
		t.Fatalf("status = %v, want COMPLETE", status)
	}

	ch0Rows := readCSVRows(t, filepath.Join(dir, "out_ch0.csv"))
	if len(ch0Rows) != 3 {
		t.Fatalf("len(ch0Rows) = %d, want 3", len(ch0Rows))
	}
	ch1Rows := readCSVRows(t, filepath.Join(dir, "out_ch1.csv"))
	if len(ch1Rows) != 1 || ch1Rows[0][0] != "25000" {
		t.Fatalf("ch1Rows = %v, want [[25000 2]]", ch1Rows)
	}
}
