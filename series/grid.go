/*
NAME
  grid.go

DESCRIPTION
  grid.go synthesizes a composite Series' TimingInfo from its
  members: each member's start time is snapped onto the shared grid
  (rounding up, per the Open Question resolution in DESIGN.md), and
  any gap between one member's last sample and the next member's base
  index is marked synthesized-blank.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package series

import (
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/timing"
)

// resynthesize rebuilds s.synthTiming from s.memberData, which must
// already be sorted by member start time. It is called after every
// successful Insert.
func (s *Series) resynthesize() error {
	if len(s.memberData) == 0 {
		s.hasSynth = false
		return nil
	}

	start := s.memberData[0].Timing.Start()
	step := s.memberData[0].Timing.Step()

	var dropped, blank []uint64
	var cropped []timing.IndexRange
	var nextFree uint64

	for _, md := range s.memberData {
		base, err := snapToGrid(start, step, md.Timing.Start())
		if err != nil {
			return err
		}
		if base < nextFree {
			base = nextFree
		}
		if base > nextFree {
			for i := nextFree; i < base; i++ {
				blank = append(blank, i)
			}
		}

		for _, d := range md.Timing.Dropped() {
			dropped = append(dropped, base+d)
		}
		for _, b := range md.Timing.Blank() {
			blank = append(blank, base+b)
		}
		for _, c := range md.Timing.Cropped() {
			cropped = append(cropped, timing.IndexRange{First: base + c.First, Last: base + c.Last})
		}
		nextFree = base + md.Timing.NumSamples()
	}

	synth, err := timing.New(start, step, nextFree, dropped, cropped, blank)
	if err != nil {
		return err
	}
	s.synthTiming = synth
	s.hasSynth = true
	return nil
}

// snapToGrid maps absolute time tm onto the index grid with the
// given start and step, rounding up to the next grid boundary when
// tm does not land exactly on one. This resolves the "un-aligned
// start time" Open Question: off-grid starts snap forward rather
// than backward, so a later member never overlaps the index space a
// prior member already occupies.
func snapToGrid(start rational.Time, step rational.Rational, tm rational.Time) (uint64, error) {
	d, err := tm.Sub(start)
	if err != nil {
		return 0, err
	}
	if d.Sign() <= 0 {
		return 0, nil
	}
	ratio := timing.Rat(d, step)
	idx := ratio.Num / ratio.Den
	if ratio.Num%ratio.Den != 0 {
		idx++
	}
	return uint64(idx), nil
}
