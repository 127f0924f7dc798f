/*
NAME
  timing.go

DESCRIPTION
  timing.go implements TimingInfo: a regular sample grid with
  dropped/cropped/blank bookkeeping and the index<->time conversions
  and validity queries every native container format is built on.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package timing implements the regular sample-time grid (TimingInfo)
// shared by every native container format.
package timing

import (
	"fmt"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/rational"
)

// Kind classifies why a sample index is not valid.
type Kind int

// The three reasons a sample can be non-valid, plus Valid itself.
const (
	Valid Kind = iota
	Dropped
	Cropped
	Blank
)

func (k Kind) String() string {
	switch k {
	case Valid:
		return "VALID"
	case Dropped:
		return "DROPPED"
	case Cropped:
		return "CROPPED"
	case Blank:
		return "BLANK"
	default:
		return "UNKNOWN"
	}
}

// Info is a regular sample grid with per-index validity bookkeeping.
type Info struct {
	start      rational.Time
	step       rational.Rational
	numSamples uint64
	dropped    []uint64
	cropped    []IndexRange
	blank      []uint64
}

// New validates and constructs an Info. step must be strictly
// positive. Every dropped index, blank index and cropped-range
// endpoint must lie in [0, numSamples), and dropped, blank and the
// union of cropped ranges must be pairwise disjoint.
func New(start rational.Time, step rational.Rational, numSamples uint64, dropped []uint64, cropped []IndexRange, blank []uint64) (Info, error) {
	if step.Sign() <= 0 {
		return Info{}, errs.New(errs.UserInput, "TimingInfo step must be strictly positive").WithField("step")
	}

	d := sortedUint64(dropped)
	b := sortedUint64(blank)
	c := sortedRanges(cropped)

	inRange := func(i uint64) bool { return i < numSamples }
	for _, i := range d {
		if !inRange(i) {
			return Info{}, errs.Newf(errs.UserInput, "dropped index %d out of range [0, %d)", i, numSamples).WithField("dropped")
		}
	}
	for _, i := range b {
		if !inRange(i) {
			return Info{}, errs.Newf(errs.UserInput, "blank index %d out of range [0, %d)", i, numSamples).WithField("blank")
		}
	}
	for _, r := range c {
		if !inRange(r.First) || !inRange(r.Last) || r.First > r.Last {
			return Info{}, errs.Newf(errs.UserInput, "cropped range [%d,%d] invalid for [0, %d)", r.First, r.Last, numSamples).WithField("cropped")
		}
	}

	// Pairwise disjointness: dropped vs blank, dropped vs cropped,
	// blank vs cropped, and cropped ranges among themselves.
	for _, i := range d {
		if containsUint64(b, i) {
			return Info{}, errs.Newf(errs.UserInput, "index %d is both dropped and blank", i).WithField("dropped")
		}
		if rangesContain(c, i) {
			return Info{}, errs.Newf(errs.UserInput, "index %d is both dropped and cropped", i).WithField("dropped")
		}
	}
	for _, i := range b {
		if rangesContain(c, i) {
			return Info{}, errs.Newf(errs.UserInput, "index %d is both blank and cropped", i).WithField("blank")
		}
	}
	for i := 1; i < len(c); i++ {
		if c[i].First <= c[i-1].Last {
			return Info{}, errs.New(errs.UserInput, "cropped ranges overlap").WithField("cropped")
		}
	}

	return Info{
		start:      start,
		step:       step,
		numSamples: numSamples,
		dropped:    d,
		cropped:    c,
		blank:      b,
	}, nil
}

// Start returns the start time of the first sample.
func (t Info) Start() rational.Time { return t.start }

// Step returns the sample period.
func (t Info) Step() rational.Rational { return t.step }

// NumSamples returns the number of samples in the grid.
func (t Info) NumSamples() uint64 { return t.numSamples }

// Dropped returns the sorted, deduplicated set of dropped indices.
func (t Info) Dropped() []uint64 { return append([]uint64(nil), t.dropped...) }

// Cropped returns the sorted, non-overlapping set of cropped ranges.
func (t Info) Cropped() []IndexRange { return append([]IndexRange(nil), t.cropped...) }

// Blank returns the sorted, deduplicated set of blank indices.
func (t Info) Blank() []uint64 { return append([]uint64(nil), t.blank...) }

// KindOf classifies index i as Valid, Dropped, Cropped or Blank. It
// does not check i is in range; callers needing that should use
// IndexInRange first.
func (t Info) KindOf(i uint64) Kind {
	if containsUint64(t.dropped, i) {
		return Dropped
	}
	if rangesContain(t.cropped, i) {
		return Cropped
	}
	if containsUint64(t.blank, i) {
		return Blank
	}
	return Valid
}

// IsValid reports whether index i is valid, i.e. in none of the
// dropped, cropped or blank sets.
func (t Info) IsValid(i uint64) bool {
	return t.IndexInRange(i) && t.KindOf(i) == Valid
}

// IndexInRange reports whether i is within [0, NumSamples()).
func (t Info) IndexInRange(i uint64) bool { return i < t.numSamples }

// IndexToStartTime returns start + i*step. It returns an error only on
// Rational overflow; the index itself is not range-checked, since
// series alignment projects indices past num_samples deliberately.
func (t Info) IndexToStartTime(i uint64) (rational.Time, error) {
	off, err := t.step.MulInt(int64(i))
	if err != nil {
		return rational.Time{}, fmt.Errorf("timing: overflow computing index %d start time: %w", i, err)
	}
	return t.start.Add(off)
}

// TimeToIndex returns the index whose start time is closest to tm,
// rounding exact ties toward the earlier index, and reports whether
// that index lies within [0, NumSamples()).
func (t Info) TimeToIndex(tm rational.Time) (index int64, inRange bool, err error) {
	d, err := tm.Sub(t.start)
	if err != nil {
		return 0, false, fmt.Errorf("timing: overflow computing time-to-index: %w", err)
	}
	ratio := Rat(d, t.step)
	idx := rational.RoundHalfDown(ratio)
	inRange = idx >= 0 && uint64(idx) < t.numSamples
	return idx, inRange, nil
}

// Rat divides a by b exactly, returning a Rational. It is exposed
// because TimingInfo.TimeToIndex needs duration/step, a division the
// rational package itself leaves to callers (division can always be
// expressed as the reciprocal multiplication, but the reciprocal of a
// Rational needs its own swap, done here rather than in the
// arithmetic core to keep Rational's surface to +,-,*).
func Rat(a, b rational.Rational) rational.Rational {
	recip := rational.Rational{Num: b.Den, Den: b.Num}
	if b.Num < 0 {
		recip = rational.Rational{Num: -b.Den, Den: -b.Num}
	}
	out, err := a.Mul(recip)
	if err != nil {
		// a/b overflow is astronomically unlikely for timing ratios
		// (durations are seconds, steps are sub-second); treat as a
		// saturating huge value rather than propagating a three-level
		// error chain through this helper.
		if a.Sign() > 0 {
			return rational.Rational{Num: 1 << 62, Den: 1}
		}
		return rational.Rational{Num: -(1 << 62), Den: 1}
	}
	return out
}

// Duration returns NumSamples()*Step(), the total span of the grid.
func (t Info) Duration() (rational.Rational, error) {
	return t.step.MulInt(int64(t.numSamples))
}

// End returns the time one step past the last sample, i.e.
// Start()+Duration().
func (t Info) End() (rational.Time, error) {
	dur, err := t.Duration()
	if err != nil {
		return rational.Time{}, err
	}
	return t.start.Add(dur)
}
