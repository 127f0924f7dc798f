/*
NAME
  indexset.go

DESCRIPTION
  indexset.go provides the sorted index-set and index-range helpers
  TimingInfo uses to track dropped, cropped and blank samples.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package timing

import "sort"

// IndexRange is an inclusive, closed index range [First, Last].
type IndexRange struct {
	First, Last uint64
}

// Contains reports whether i falls within r.
func (r IndexRange) Contains(i uint64) bool {
	return i >= r.First && i <= r.Last
}

// sortedUint64 returns a sorted copy of xs with duplicates removed.
func sortedUint64(xs []uint64) []uint64 {
	out := append([]uint64(nil), xs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	var last uint64
	first := true
	for _, v := range out {
		if first || v != last {
			dedup = append(dedup, v)
			last = v
			first = false
		}
	}
	return dedup
}

// containsUint64 reports whether a sorted slice contains v, via binary
// search.
func containsUint64(sorted []uint64, v uint64) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= v })
	return i < len(sorted) && sorted[i] == v
}

// sortedRanges returns a sorted copy of ranges by First; it does not
// merge or validate overlaps, that is the caller's job.
func sortedRanges(ranges []IndexRange) []IndexRange {
	out := append([]IndexRange(nil), ranges...)
	sort.Slice(out, func(i, j int) bool { return out[i].First < out[j].First })
	return out
}

func rangesContain(ranges []IndexRange, i uint64) bool {
	for _, r := range ranges {
		if r.Contains(i) {
			return true
		}
	}
	return false
}
