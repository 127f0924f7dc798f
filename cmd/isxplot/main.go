/*
NAME
  isxplot

DESCRIPTION
  isxplot renders a single Trace (from a cell set or vessel set) or
  LogicalTrace (from an events file) to a PNG line plot, a small
  debug/QA tool.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package isxplot is a supplementary CLI that plots one trace from a
// native container file to a PNG image.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cortexlab/isxcore/container/cellset"
	"github.com/cortexlab/isxcore/container/events"
	"github.com/cortexlab/isxcore/container/vesselset"
	"github.com/cortexlab/isxcore/trace"
)

var (
	kind    = flag.String("type", "", "cellset, vesselset or events")
	file    = flag.String("file", "", "path to the native container file")
	cell    = flag.Int("cell", 0, "cell index, for -type=cellset")
	vessel  = flag.Int("vessel", 0, "vessel index, for -type=vesselset")
	channel = flag.String("channel", "", "channel name, for -type=events")
	out     = flag.String("out", "out.png", "output PNG path")
)

func main() {
	flag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: isxplot -type={cellset,vesselset,events} -file path [-cell n] [-vessel n] [-channel name] [-out out.png]")
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "isxplot:", err)
		os.Exit(1)
	}
}

func run() error {
	switch *kind {
	case "cellset":
		r, err := cellset.Open(*file)
		if err != nil {
			return err
		}
		defer r.Close()
		tr, err := r.CellTrace(*cell)
		if err != nil {
			return err
		}
		return plotTrace(tr, *out)
	case "vesselset":
		r, err := vesselset.Open(*file)
		if err != nil {
			return err
		}
		defer r.Close()
		tr, err := r.VesselTrace(*vessel)
		if err != nil {
			return err
		}
		return plotTrace(tr, *out)
	case "events":
		r, err := events.Open(*file)
		if err != nil {
			return err
		}
		defer r.Close()
		lt, err := r.ReadChannel(*channel)
		if err != nil {
			return err
		}
		return plotLogicalTrace(lt, *out)
	default:
		return fmt.Errorf("unrecognized -type %q (want cellset, vesselset or events)", *kind)
	}
}

// plotTrace renders tr as value-vs-sample-index, skipping NaN
// (non-valid) samples.
func plotTrace(tr *trace.Trace, path string) error {
	pts := make(plotter.XYs, 0, len(tr.Values))
	for i, v := range tr.Values {
		if v != v { // NaN
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: float64(v)})
	}
	return savePlot(pts, "sample index", "value", path)
}

// plotLogicalTrace renders lt as value-vs-seconds-since-first-point.
func plotLogicalTrace(lt *trace.LogicalTrace, path string) error {
	if len(lt.Points) == 0 {
		return fmt.Errorf("channel %q has no points", lt.Name)
	}
	t0 := lt.Points[0].Time
	pts := make(plotter.XYs, len(lt.Points))
	for i, p := range lt.Points {
		d, err := p.Time.Sub(t0)
		if err != nil {
			return err
		}
		pts[i] = plotter.XY{X: d.Float64(), Y: float64(p.Value)}
	}
	return savePlot(pts, "seconds", "value", path)
}

func savePlot(pts plotter.XYs, xLabel, yLabel, path string) error {
	p := plot.New()
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
