/*
NAME
  cellset.go

DESCRIPTION
  cellset.go implements ExportCellSet: one CSV file per cell trace,
  plus one TIFF per footprint image when Footprints is set, in the
  multi-output-file exporter shape (one trace file, one footprint per
  cell).

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/task"
)

// ExportCellSet writes p.Source's traces to "<OutputDir>/<cellName>.csv"
// (columns: frame_index, value) and, if p.Footprints, each cell's
// footprint to "<OutputDir>/<cellName>.tiff".
func ExportCellSet(p CellSetExporterParams, report task.ProgressFunc, logger log.Logger) (task.Status, error) {
	if p.Source == nil {
		return task.ErrorException, errs.New(errs.UserInput, "CellSetExporterParams requires a source").WithField("source")
	}

	fn := func(report task.ProgressFunc) error {
		if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
			return errs.Wrap(errs.FileIO, err, "create cell set export directory").WithPath(p.OutputDir)
		}

		n := p.Source.NumCells()
		for c := 0; c < n; c++ {
			if report(float32(c) / float32(n)) {
				return task.ErrCancelled
			}

			name, err := p.Source.CellName(c)
			if err != nil {
				return err
			}

			tr, err := p.Source.CellTrace(c)
			if err != nil {
				return err
			}
			tracePath := filepath.Join(p.OutputDir, name+".csv")
			if err := writeTraceCSV(tracePath, tr.Values); err != nil {
				return err
			}

			if !p.Footprints {
				continue
			}
			im, err := p.Source.CellImage(c)
			if err != nil {
				return err
			}
			out, err := toStdImage(im)
			if err != nil {
				return err
			}
			if err := writeTIFF(filepath.Join(p.OutputDir, name+".tiff"), out); err != nil {
				return err
			}
		}
		return nil
	}

	return task.RunSync(fn, report, p.OutputDir, logger)
}

// writeTraceCSV writes one (frame_index, value) row per sample,
// skipping NaN (non-valid) indices.
func writeTraceCSV(path string, values []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.FileIO, err, "create trace CSV").WithPath(path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame_index", "value"}); err != nil {
		return errs.Wrap(errs.FileIO, err, "write trace CSV header").WithPath(path)
	}
	for i, v := range values {
		if v != v { // NaN: non-valid index, not persisted
			continue
		}
		if err := w.Write([]string{fmt.Sprint(i), fmt.Sprintf("%g", v)}); err != nil {
			return errs.Wrap(errs.FileIO, err, "write trace CSV row").WithPath(path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.FileIO, err, "flush trace CSV").WithPath(path)
	}
	return nil
}
