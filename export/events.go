/*
NAME
  events.go

DESCRIPTION
  events.go implements ExportEvents: a CSV dump of every channel in
  p.Source, either combined into one file (channel, offset_us, value)
  or split into one file per channel when Split is set.

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
	"strings"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/task"
	"github.com/cortexlab/isxcore/trace"
)

// ExportEvents writes p.Source's channels to p.OutputPath (one CSV
// with columns channel,offset_us,value) or, if p.Split, to one file
// per channel named "<dir>/<base>_<channel>.csv" alongside
// p.OutputPath's base name, with columns offset_us,value.
func ExportEvents(p EventsExporterParams, report task.ProgressFunc, logger log.Logger) (task.Status, error) {
	if p.Source == nil {
		return task.ErrorException, errs.New(errs.UserInput, "EventsExporterParams requires a source").WithField("source")
	}

	fn := func(report task.ProgressFunc) error {
		channels := p.Source.ChannelNames()
		start := p.Source.StartTime()

		if p.Split {
			dir := filepath.Dir(p.OutputPath)
			base := strings.TrimSuffix(filepath.Base(p.OutputPath), filepath.Ext(p.OutputPath))
			for i, ch := range channels {
				if report(float32(i) / float32(len(channels))) {
					return task.ErrCancelled
				}
				lt, err := p.Source.ReadChannel(ch)
				if err != nil {
					return err
				}
				path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", base, ch))
				if err := writeChannelCSV(path, lt, start); err != nil {
					return err
				}
			}
			return nil
		}

		f, err := os.Create(p.OutputPath)
		if err != nil {
			return errs.Wrap(errs.FileIO, err, "create events export file").WithPath(p.OutputPath)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if err := w.Write([]string{"channel", "offset_us", "value"}); err != nil {
			return errs.Wrap(errs.FileIO, err, "write events CSV header").WithPath(p.OutputPath)
		}
		for i, ch := range channels {
			if report(float32(i) / float32(len(channels))) {
				return task.ErrCancelled
			}
			lt, err := p.Source.ReadChannel(ch)
			if err != nil {
				return err
			}
			for _, pt := range lt.Points {
				offsetUs, err := offsetMicros(start, pt)
				if err != nil {
					return err
				}
				row := []string{ch, fmt.Sprint(offsetUs), fmt.Sprintf("%g", pt.Value)}
				if err := w.Write(row); err != nil {
					return errs.Wrap(errs.FileIO, err, "write events CSV row").WithPath(p.OutputPath)
				}
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return errs.Wrap(errs.FileIO, err, "flush events CSV").WithPath(p.OutputPath)
		}
		return nil
	}

	return task.RunSync(fn, report, p.OutputPath, logger)
}

// writeChannelCSV writes one (offset_us, value) row per point in lt,
// with offsets measured from start.
func writeChannelCSV(path string, lt *trace.LogicalTrace, start rational.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.FileIO, err, "create channel CSV").WithPath(path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"offset_us", "value"}); err != nil {
		return errs.Wrap(errs.FileIO, err, "write channel CSV header").WithPath(path)
	}
	for _, pt := range lt.Points {
		offsetUs, err := offsetMicros(start, pt)
		if err != nil {
			return err
		}
		if err := w.Write([]string{fmt.Sprint(offsetUs), fmt.Sprintf("%g", pt.Value)}); err != nil {
			return errs.Wrap(errs.FileIO, err, "write channel CSV row").WithPath(path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.FileIO, err, "flush channel CSV").WithPath(path)
	}
	return nil
}

// offsetMicros returns pt.Time's offset from start in whole
// microseconds.
func offsetMicros(start rational.Time, pt trace.Point) (int64, error) {
	d, err := pt.Time.Sub(start)
	if err != nil {
		return 0, err
	}
	micros, err := d.Mul(rational.New(1_000_000, 1))
	if err != nil {
		return 0, err
	}
	return micros.Num / micros.Den, nil
}
