/*
NAME
  trace.go

DESCRIPTION
  trace.go implements Trace (a dense f32 series on a TimingInfo, NaN
  at non-valid indices) and LogicalTrace (a sparse time->value map for
  irregular GPIO/event-like data), as a plain Go value type.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package trace implements the dense and sparse time-series value
// types used by cell sets, vessel sets and auxiliary signals.
package trace

import (
	"math"
	"sort"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/timing"
)

// Trace is a dense numeric series defined on a TimingInfo. Values at
// non-valid indices are NaN and are not persisted by container
// writers.
type Trace struct {
	Timing timing.Info
	Values []float32
}

// New allocates a Trace over ti, with non-valid indices set to NaN.
func New(ti timing.Info) *Trace {
	values := make([]float32, ti.NumSamples())
	for i := range values {
		if !ti.IsValid(uint64(i)) {
			values[i] = float32(math.NaN())
		}
	}
	return &Trace{Timing: ti, Values: values}
}

// SetValue sets the value at index i, returning a UserInput error for
// an out-of-range index.
func (tr *Trace) SetValue(i uint64, v float32) error {
	if !tr.Timing.IndexInRange(i) {
		return errs.Newf(errs.UserInput, "trace index %d out of range [0, %d)", i, tr.Timing.NumSamples()).WithField("index")
	}
	tr.Values[i] = v
	return nil
}

// Value returns the value at index i, NaN for a non-valid index.
func (tr *Trace) Value(i uint64) float32 { return tr.Values[i] }

// Point is a single (time, value) sample of a LogicalTrace.
type Point struct {
	Time  rational.Time
	Value float32
}

// LogicalTrace is a sparse, irregularly-sampled series, used for
// GPIO/event-like data where samples are not on a regular grid.
type LogicalTrace struct {
	Name   string
	Points []Point
}

// NewLogical returns a LogicalTrace with points sorted by time.
func NewLogical(name string, points []Point) *LogicalTrace {
	sorted := append([]Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Less(sorted[j].Time) })
	return &LogicalTrace{Name: name, Points: sorted}
}

// Append adds a point, keeping Points sorted by time. It is the
// caller's responsibility to pass points in non-decreasing time order
// for O(1) amortized appends; out-of-order points are still placed
// correctly but at the cost of a linear insert.
func (lt *LogicalTrace) Append(p Point) {
	n := len(lt.Points)
	if n == 0 || !p.Time.Less(lt.Points[n-1].Time) {
		lt.Points = append(lt.Points, p)
		return
	}
	idx := sort.Search(n, func(i int) bool { return !lt.Points[i].Time.Less(p.Time) })
	lt.Points = append(lt.Points, Point{})
	copy(lt.Points[idx+1:], lt.Points[idx:])
	lt.Points[idx] = p
}
