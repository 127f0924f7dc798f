/*
NAME
  vesselset.go

DESCRIPTION
  vesselset.go implements ExportVesselSet: one CSV per vessel trace
  (two for RBC_VELOCITY vessels: velocity and direction) plus, when
  Correlations is set on an RBC_VELOCITY set, one CSV per vessel's
  correlation volume, following the vessel set reader's
  VesselTrace/VesselSecondaryTrace/VesselCorrelationVolume split
  (container/vesselset/vesselset.go).

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

	"github.com/cortexlab/isxcore/container/vesselset"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/task"
)

// ExportVesselSet writes p.Source's traces to
// "<OutputDir>/<vesselName>[_direction].csv" and, for an RBC_VELOCITY
// set with Correlations set, each vessel's correlation volume to
// "<OutputDir>/<vesselName>_correlation.csv".
func ExportVesselSet(p VesselSetExporterParams, report task.ProgressFunc, logger log.Logger) (task.Status, error) {
	if p.Source == nil {
		return task.ErrorException, errs.New(errs.UserInput, "VesselSetExporterParams requires a source").WithField("source")
	}

	fn := func(report task.ProgressFunc) error {
		if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
			return errs.Wrap(errs.FileIO, err, "create vessel set export directory").WithPath(p.OutputDir)
		}

		isVelocity := p.Source.SetType() == vesselset.RBCVelocity
		n := p.Source.NumVessels()
		for v := 0; v < n; v++ {
			if report(float32(v) / float32(n)) {
				return task.ErrCancelled
			}

			name, err := p.Source.VesselName(v)
			if err != nil {
				return err
			}

			tr, err := p.Source.VesselTrace(v)
			if err != nil {
				return err
			}
			if err := writeTraceCSV(filepath.Join(p.OutputDir, name+".csv"), tr.Values); err != nil {
				return err
			}

			if !isVelocity {
				continue
			}

			dirTr, err := p.Source.VesselSecondaryTrace(v)
			if err != nil {
				return err
			}
			if err := writeTraceCSV(filepath.Join(p.OutputDir, name+"_direction.csv"), dirTr.Values); err != nil {
				return err
			}

			if !p.Correlations {
				continue
			}
			cv, err := p.Source.VesselCorrelationVolume(v)
			if err != nil {
				return err
			}
			if cv == nil {
				continue
			}
			if err := writeCorrelationVolumeCSV(filepath.Join(p.OutputDir, name+"_correlation.csv"), cv); err != nil {
				return err
			}
		}
		return nil
	}

	return task.RunSync(fn, report, p.OutputDir, logger)
}

// writeCorrelationVolumeCSV writes one (frame, channel, row, col,
// value) row per sample of cv's Data, which holds NumSamples*3 stacked
// Width x Height maps (channels 0-2: peak, secondary peak, confidence
// per frame).
func writeCorrelationVolumeCSV(path string, cv *vesselset.CorrelationVolume) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.FileIO, err, "create correlation volume CSV").WithPath(path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "channel", "row", "col", "value"}); err != nil {
		return errs.Wrap(errs.FileIO, err, "write correlation volume CSV header").WithPath(path)
	}
	mapSize := cv.Width * cv.Height
	numMaps := 0
	if mapSize > 0 {
		numMaps = len(cv.Data) / mapSize
	}
	for m := 0; m < numMaps; m++ {
		for r := 0; r < cv.Height; r++ {
			for c := 0; c < cv.Width; c++ {
				v := cv.Data[m*mapSize+r*cv.Width+c]
				if err := w.Write([]string{fmt.Sprint(m / 3), fmt.Sprint(m % 3), fmt.Sprint(r), fmt.Sprint(c), fmt.Sprintf("%g", v)}); err != nil {
					return errs.Wrap(errs.FileIO, err, "write correlation volume CSV row").WithPath(path)
				}
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.FileIO, err, "flush correlation volume CSV").WithPath(path)
	}
	return nil
}
