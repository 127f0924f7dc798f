/*
NAME
  series.go

DESCRIPTION
  series.go implements Series: an ordered composition of unitary
  files of one modality, the insert compatibility pipeline, and the
  synthesized TimingInfo a composite series exposes over its members.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package series implements Series composition: unitary and
// composite series of native files, the ordered insert compatibility
// rules, and the synthesized grid a composite series exposes over its
// members.
package series

import (
	"sort"
	"strconv"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
)

// Member describes the one UnitaryFile a unitary Series wraps: just
// enough of its header to drive the insert compatibility checks and
// the synthesized-grid construction, without the series package
// needing to depend on container/movie, container/cellset, etc.
type Member struct {
	Modality   string
	HistoryTag string
	Timing     timing.Info
	Spacing    *spacing.Info
	DataType   *image.DataType
	Channels   []string
}

// Series is either unitary (wraps exactly one Member) or composite
// (an ordered, time-sorted list of unitary Series).
type Series struct {
	name        string
	unitary     *Member
	members     []*Series
	memberData  []Member
	synthTiming timing.Info
	hasSynth    bool
	container   *Series
	parent      *Series
	children    []*Series
	inContainer bool
	modified    bool
}

// NewUnitary wraps m as a one-member unitary Series named name.
func NewUnitary(name string, m Member) *Series {
	return &Series{name: name, unitary: &m}
}

// NewComposite constructs an empty composite series named name, with
// no members yet inserted.
func NewComposite(name string) *Series {
	return &Series{name: name}
}

// Name returns the series' current name.
func (s *Series) Name() string { return s.name }

// IsUnitary reports whether s wraps exactly one UnitaryFile.
func (s *Series) IsUnitary() bool { return s.unitary != nil }

// NumMembers returns the number of unitary members of a composite
// series, or 1 for a unitary series.
func (s *Series) NumMembers() int {
	if s.unitary != nil {
		return 1
	}
	return len(s.members)
}

// Member returns the i'th unitary member series.
func (s *Series) Member(i int) (*Series, error) {
	if s.unitary != nil {
		if i != 0 {
			return nil, errs.Newf(errs.UserInput, "member index %d out of range [0,1)", i).WithField("index")
		}
		return s, nil
	}
	if i < 0 || i >= len(s.members) {
		return nil, errs.Newf(errs.UserInput, "member index %d out of range [0,%d)", i, len(s.members)).WithField("index")
	}
	return s.members[i], nil
}

// Timing returns the series' TimingInfo: the member's own for a
// unitary series, or the synthesized composite grid for a composite
// one.
func (s *Series) Timing() (timing.Info, error) {
	if s.unitary != nil {
		return s.unitary.Timing, nil
	}
	if !s.hasSynth {
		return timing.Info{}, errs.New(errs.Series, "composite series has no members").WithField("members")
	}
	return s.synthTiming, nil
}

// Insert adds member, a unitary series, to composite series s,
// enforcing five ordered compatibility checks. On success member is
// marked as contained and s's synthesized timing is recomputed.
func (s *Series) Insert(member *Series) error {
	if s.unitary != nil {
		return errs.New(errs.Series, "Can't add DataSets to a unitary Series!")
	}
	if member.unitary == nil {
		return errs.New(errs.Series, "Only unitary Series can be inserted!")
	}
	if member.inContainer {
		return errs.New(errs.Series, "Series is already in another container!")
	}

	m := *member.unitary
	if len(s.memberData) > 0 {
		ref := s.memberData[0]
		if ref.Modality != m.Modality {
			return errs.Newf(errs.Series, "new member has modality %q, series holds %q", m.Modality, ref.Modality).WithField("modality")
		}
		if ref.HistoryTag != m.HistoryTag {
			return errs.New(errs.Series, "new member has a different processing history than existing members").WithField("historyTag")
		}
		if err := checkModalitySpecific(ref, m); err != nil {
			return err
		}
		if ref.Timing.Step().Cmp(m.Timing.Step()) != 0 {
			return errs.New(errs.Series, "new member has a different sample step than existing members").WithField("step")
		}
		for _, existing := range s.memberData {
			overlap, err := overlaps(existing.Timing, m.Timing)
			if err != nil {
				return errs.Wrap(errs.Series, err, "comparing member time spans")
			}
			if overlap {
				return errs.New(errs.Series, "Members of series are not ordered in time.")
			}
		}
	}

	if s.findName(member.name) {
		member.name = s.uniqueName(member.name)
	}

	idx := sort.Search(len(s.members), func(i int) bool {
		return m.Timing.Start().Less(s.memberData[i].Timing.Start())
	})
	s.members = append(s.members, nil)
	s.memberData = append(s.memberData, Member{})
	copy(s.members[idx+1:], s.members[idx:])
	copy(s.memberData[idx+1:], s.memberData[idx:])
	s.members[idx] = member
	s.memberData[idx] = m

	member.inContainer = true
	member.container = s
	s.modified = true

	return s.resynthesize()
}

// checkModalitySpecific checks identical SpacingInfo and DataType for
// image modalities, identical channel set for events-like modalities.
func checkModalitySpecific(ref, m Member) error {
	switch ref.Modality {
	case container.TypeMovie, container.TypeCellSet, container.TypeVesselSet:
		if !sameSpacing(ref.Spacing, m.Spacing) {
			return errs.New(errs.Series, "new member has a different SpacingInfo than existing members").WithField("spacingInfo")
		}
		if !sameDataType(ref.DataType, m.DataType) {
			return errs.New(errs.Series, "new member has a different DataType than existing members").WithField("dataType")
		}
	case container.TypeEvents, container.TypeGpio, container.TypeImu:
		if !sameChannels(ref.Channels, m.Channels) {
			return errs.New(errs.Series, "new member has a different channel set than existing members").WithField("channels")
		}
	}
	return nil
}

func sameSpacing(a, b *spacing.Info) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.NumCols() == b.NumCols() && a.NumRows() == b.NumRows() &&
		a.PixelSize() == b.PixelSize() && a.TopLeft() == b.TopLeft()
}

func sameDataType(a, b *image.DataType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameChannels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// overlaps reports whether the half-open time spans [a.Start, a.End)
// and [b.Start, b.End) intersect.
func overlaps(a, b timing.Info) (bool, error) {
	aEnd, err := a.End()
	if err != nil {
		return false, err
	}
	bEnd, err := b.End()
	if err != nil {
		return false, err
	}
	return a.Start().Less(bEnd) && b.Start().Less(aEnd), nil
}

func (s *Series) findName(name string) bool {
	for _, m := range s.members {
		if m.name == name {
			return true
		}
	}
	return false
}

// uniqueName appends a numeric suffix to base until it no longer
// collides with an existing member name, mirroring getUniqueName's
// rename-on-collision behaviour.
func (s *Series) uniqueName(base string) string {
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !s.findName(candidate) {
			return candidate
		}
	}
}
