/*
NAME
  isxdump

DESCRIPTION
  isxdump prints a native isxcore container's header to stdout: its
  modality, timing grid, spacing grid (if any), data type (if any),
  and, for the modalities that carry one, a short summary of its
  contents (cell/vessel/channel counts and names).

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package isxdump is a supplementary CLI that inspects a native
// container file's header without requiring the caller to know its
// modality ahead of time.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/container/cellset"
	"github.com/cortexlab/isxcore/container/events"
	"github.com/cortexlab/isxcore/container/vesselset"
	"github.com/cortexlab/isxcore/log"
)

var logFile = flag.String("log-file", "", "write diagnostics to this rotating log file (without it they are discarded)")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: isxdump [-log-file path] <file>")
		os.Exit(2)
	}

	var logger log.Logger
	if *logFile != "" {
		logger = log.NewFileSink(*logFile, 10, 3)
	} else {
		logger = log.NewNop()
	}

	if err := dump(flag.Arg(0), logger); err != nil {
		fmt.Fprintln(os.Stderr, "isxdump:", err)
		os.Exit(1)
	}
}

func dump(path string, logger log.Logger) error {
	r, err := container.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var common container.Common
	if err := json.Unmarshal(r.HeaderBytes(), &common); err != nil {
		return err
	}

	fmt.Printf("path:             %s\n", path)
	fmt.Printf("type:             %s\n", common.Type)
	fmt.Printf("version:          %d\n", common.Version)
	fmt.Printf("payload bytes:    %d\n", r.PayloadSize())
	fmt.Printf("num samples:      %d\n", common.Timing.NumSamples())
	fmt.Printf("start time:       %s\n", common.Timing.Start())
	fmt.Printf("step:             %s\n", common.Timing.Step())
	fmt.Printf("dropped indices:  %v\n", common.Timing.Dropped())
	fmt.Printf("cropped ranges:   %v\n", common.Timing.Cropped())
	fmt.Printf("blank indices:    %v\n", common.Timing.Blank())
	if common.Spacing != nil {
		fmt.Printf("spacing:          %d cols x %d rows\n", common.Spacing.NumCols(), common.Spacing.NumRows())
	}
	if common.DataType != nil {
		fmt.Printf("data type:        %s\n", *common.DataType)
	}
	if len(common.ExtraProperties) > 0 {
		fmt.Printf("extra properties: %s\n", common.ExtraProperties)
	}

	return dumpModality(path, common.Type)
}

// dumpModality reopens path with the modality-specific reader that
// common.Type names, printing the summary only that reader exposes.
func dumpModality(path, typ string) error {
	switch typ {
	case container.TypeCellSet:
		r, err := cellset.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		fmt.Printf("num cells:        %d\n", r.NumCells())
		for c := 0; c < r.NumCells(); c++ {
			name, err := r.CellName(c)
			if err != nil {
				return err
			}
			status, err := r.CellStatus(c)
			if err != nil {
				return err
			}
			fmt.Printf("  cell %d: %s (%v)\n", c, name, status)
		}
	case container.TypeVesselSet:
		r, err := vesselset.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		fmt.Printf("vessel set type:  %s\n", r.SetType())
		fmt.Printf("num vessels:      %d\n", r.NumVessels())
		for v := 0; v < r.NumVessels(); v++ {
			name, err := r.VesselName(v)
			if err != nil {
				return err
			}
			fmt.Printf("  vessel %d: %s\n", v, name)
		}
	case container.TypeEvents, container.TypeGpio, container.TypeImu:
		r, err := events.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		fmt.Printf("start time:       %s\n", r.StartTime())
		for _, ch := range r.ChannelNames() {
			count, err := r.ChannelCount(ch)
			if err != nil {
				return err
			}
			fmt.Printf("  channel %s: %d packets\n", ch, count)
		}
	}
	return nil
}
