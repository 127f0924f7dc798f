/*
NAME
  child.go

DESCRIPTION
  child.go implements the parent/child back-reference relation
  between a Series and data derived from it (e.g. a cell set
  extracted from a movie): the child must be fully temporally
  contained in its parent, and image-derived children must share the
  parent's pixel dimensions.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package series

import (
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/spacing"
)

// Parent returns the series child was derived from, or nil if it has
// none.
func (s *Series) Parent() *Series { return s.parent }

// Children returns the series derived from s.
func (s *Series) Children() []*Series { return append([]*Series(nil), s.children...) }

// AddChild records that child was derived from s: child must be a
// unitary series fully contained in s's time span, and if both carry
// a SpacingInfo, their pixel dimensions must match.
func (s *Series) AddChild(child *Series) error {
	if child.unitary == nil {
		return errs.New(errs.Series, "only a unitary Series can be added as a derived child").WithField("child")
	}

	parentTiming, err := s.Timing()
	if err != nil {
		return err
	}
	childTiming := child.unitary.Timing

	parentEnd, err := parentTiming.End()
	if err != nil {
		return err
	}
	childEnd, err := childTiming.End()
	if err != nil {
		return err
	}
	if childTiming.Start().Less(parentTiming.Start()) || parentEnd.Less(childEnd) {
		return errs.New(errs.Series, "a Series can only derive children that are within its time span").WithField("timing")
	}

	if ps, cs := s.spacing(), child.unitary.Spacing; ps != nil && cs != nil {
		if ps.NumCols() != cs.NumCols() || ps.NumRows() != cs.NumRows() {
			return errs.New(errs.Series, "a Series can only derive children with the same number of pixels").WithField("spacingInfo")
		}
	}

	child.parent = s
	s.children = append(s.children, child)
	return nil
}

// spacing returns the SpacingInfo shared by s's members, or nil if s
// has none (event-like modalities have no pixel grid).
func (s *Series) spacing() *spacing.Info {
	if s.unitary != nil {
		return s.unitary.Spacing
	}
	if len(s.memberData) > 0 {
		return s.memberData[0].Spacing
	}
	return nil
}
