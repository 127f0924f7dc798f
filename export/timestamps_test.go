/*
NAME
  timestamps_test.go

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cortexlab/isxcore/container/movie"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/task"
	"github.com/cortexlab/isxcore/timing"
)

// buildMovie writes n frames at step 1/30s with an increasing TSC
// tick count, mirroring a hardware-timestamped capture.
func buildMovie(t *testing.T, path string, start rational.Time, n uint64, tscStep uint64) {
	t.Helper()
	ti, err := timing.New(start, rational.New(1, 30), n, nil, nil, nil)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	sp, err := spacing.New(4, 4, spacing.Point{X: rational.New(1, 1), Y: rational.New(1, 1)}, spacing.Point{})
	if err != nil {
		t.Fatalf("spacing.New: %v", err)
	}
	w, err := movie.Create(path, ti, sp, 0, true, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := uint64(0); i < n; i++ {
		vf, err := w.NewFrame(i)
		if err != nil {
			t.Fatalf("NewFrame: %v", err)
		}
		tsc := 100_000 + i*tscStep
		if err := w.WriteFrameWithHeaderFooter(vf, movie.EncodeTSCHeader(tsc), movie.EncodeTSCHeader(0)); err != nil {
			t.Fatalf("WriteFrameWithHeaderFooter: %v", err)
		}
	}
	if err := w.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func readCSVRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll %s: %v", path, err)
	}
	return rows[1:] // drop header row
}

// TestExportMovieTimestampsAcrossModes checks that exported timestamps
// under the three RelativeTo modes stay internally consistent:
// UNIX_EPOCH minus the first frame's timestamp equals FIRST_DATA_ITEM,
// and TSC reports the raw tick counts written into the frame header.
func TestExportMovieTimestampsAcrossModes(t *testing.T) {
	const n = 113
	dir := t.TempDir()
	moviePath := filepath.Join(dir, "movie.isxd")
	start := rational.Time{SecsSinceEpoch: rational.New(1_649_819_290_471_000, 1_000_000)}
	buildMovie(t, moviePath, start, n, 33_333)

	r, err := movie.Open(moviePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	export := func(relTo RelativeTo) [][]string {
		path := filepath.Join(dir, string(relTo)+".csv")
		status, err := ExportMovieTimestamps(MovieTimestampExporterParams{
			Sources:    []*movie.Reader{r},
			Path:       path,
			RelativeTo: relTo,
		}, nil, nil)
		if err != nil {
			t.Fatalf("ExportMovieTimestamps(%s): %v", relTo, err)
		}
		if status != task.Complete {
			t.Fatalf("ExportMovieTimestamps(%s) status = %v, want COMPLETE", relTo, status)
		}
		return readCSVRows(t, path)
	}

	epochRows := export(UnixEpoch)
	firstRows := export(FirstDataItem)
	tscRows := export(TSC)

	if len(epochRows) != n || len(firstRows) != n || len(tscRows) != n {
		t.Fatalf("row counts = %d,%d,%d, want %d each", len(epochRows), len(firstRows), len(tscRows), n)
	}

	epoch0, err := strconv.ParseFloat(epochRows[0][2], 64)
	if err != nil {
		t.Fatalf("parse epoch[0]: %v", err)
	}

	for i := 0; i < n; i++ {
		epochV, err := strconv.ParseFloat(epochRows[i][2], 64)
		if err != nil {
			t.Fatalf("parse epoch[%d]: %v", i, err)
		}
		firstV, err := strconv.ParseFloat(firstRows[i][2], 64)
		if err != nil {
			t.Fatalf("parse first[%d]: %v", i, err)
		}
		want := epochV - epoch0
		if diff := want - firstV; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("frame %d: FIRST_DATA_ITEM = %v, want %v", i, firstV, want)
		}

		tscV, err := strconv.ParseUint(tscRows[i][2], 10, 64)
		if err != nil {
			t.Fatalf("parse tsc[%d]: %v", i, err)
		}
		wantTSC := uint64(100_000 + uint64(i)*33_333)
		if tscV != wantTSC {
			t.Errorf("frame %d: TSC = %d, want %d", i, tscV, wantTSC)
		}
	}

	if firstRows[0][2] != "0.000000" {
		t.Errorf("FIRST_DATA_ITEM[0] = %q, want 0.000000", firstRows[0][2])
	}
}
