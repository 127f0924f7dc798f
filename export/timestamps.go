/*
NAME
  timestamps.go

DESCRIPTION
  timestamps.go implements ExportMovieTimestamps: a per-frame CSV
  timestamp dump under one of three RelativeTo modes. Exercises
  container/movie.Reader.GetFrameTSC for the TSC mode.

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

	"github.com/cortexlab/isxcore/container/movie"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/task"
	"github.com/cortexlab/isxcore/timing"
)

// ExportMovieTimestamps writes one CSV row per frame across
// p.Sources (source_index, frame_index, timestamp), with timestamp
// expressed per p.RelativeTo. report may be nil.
func ExportMovieTimestamps(p MovieTimestampExporterParams, report task.ProgressFunc, logger log.Logger) (task.Status, error) {
	if len(p.Sources) == 0 {
		return task.ErrorException, errs.New(errs.UserInput, "MovieTimestampExporterParams requires at least one source").WithField("sources")
	}
	if report == nil {
		report = func(float32) bool { return false }
	}

	fn := func(report task.ProgressFunc) error {
		f, err := os.Create(p.Path)
		if err != nil {
			return errs.Wrap(errs.FileIO, err, "create timestamp export file").WithPath(p.Path)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if err := w.Write([]string{"source_index", "frame_index", "timestamp"}); err != nil {
			return errs.Wrap(errs.FileIO, err, "write CSV header").WithPath(p.Path)
		}

		total := 0
		for _, r := range p.Sources {
			total += int(r.Timing().NumSamples())
		}

		firstFrameSecs, err := firstFrameEpochSecs(p.Sources[0].Timing())
		if err != nil {
			return errs.Wrap(errs.Algorithm, err, "compute first-data-item reference").WithPath(p.Path)
		}

		done := 0
		for si, r := range p.Sources {
			ti := r.Timing()
			for i := uint64(0); i < ti.NumSamples(); i++ {
				if report(float32(done) / float32(total)) {
					return task.ErrCancelled
				}
				done++

				value, err := frameTimestamp(r, ti, i, p.RelativeTo, firstFrameSecs)
				if err != nil {
					return err
				}
				if err := w.Write([]string{fmt.Sprint(si), fmt.Sprint(i), value}); err != nil {
					return errs.Wrap(errs.FileIO, err, "write CSV row").WithPath(p.Path)
				}
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return errs.Wrap(errs.FileIO, err, "flush CSV export").WithPath(p.Path)
		}
		return nil
	}

	return task.RunSync(fn, report, p.Path, logger)
}

func firstFrameEpochSecs(ti timing.Info) (float64, error) {
	t, err := ti.IndexToStartTime(0)
	if err != nil {
		return 0, err
	}
	return t.SecsSinceEpoch.Float64(), nil
}

// frameTimestamp renders frame i's timestamp under relativeTo:
// UNIX_EPOCH and FIRST_DATA_ITEM both derive from the frame's grid
// position via IndexToStartTime; TSC instead reads the raw hardware
// tick count embedded in the frame header.
func frameTimestamp(r *movie.Reader, ti timing.Info, i uint64, relativeTo RelativeTo, firstFrameSecs float64) (string, error) {
	if relativeTo == TSC {
		tsc, err := r.GetFrameTSC(i)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(tsc), nil
	}

	t, err := ti.IndexToStartTime(i)
	if err != nil {
		return "", err
	}
	secs := t.SecsSinceEpoch.Float64()
	if relativeTo == FirstDataItem {
		secs -= firstFrameSecs
	}
	return fmt.Sprintf("%.6f", secs), nil
}
