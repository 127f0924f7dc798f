/*
NAME
  validity.go

DESCRIPTION
  validity.go adds the index-walking helpers container/movie needs to
  map a movie's full sample domain onto its physically stored record
  offsets: skipping over non-valid stretches and counting how many
  non-valid indices precede a given one.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package timing

// NextValidFrom returns the smallest valid index >= i, or NumSamples()
// if no valid index remains.
func (t Info) NextValidFrom(i uint64) uint64 {
	for ; i < t.numSamples; i++ {
		if t.KindOf(i) == Valid {
			return i
		}
	}
	return t.numSamples
}

// InvalidBefore returns the number of non-valid (dropped, cropped or
// blank) indices strictly less than i.
func (t Info) InvalidBefore(i uint64) uint64 {
	var n uint64
	for _, d := range t.dropped {
		if d < i {
			n++
		}
	}
	for _, b := range t.blank {
		if b < i {
			n++
		}
	}
	for _, c := range t.cropped {
		if i == 0 {
			continue
		}
		lo, hi := c.First, c.Last
		if hi > i-1 {
			hi = i - 1
		}
		if lo <= hi {
			n += hi - lo + 1
		}
	}
	return n
}

// NumStored returns NumSamples() minus the total count of dropped,
// cropped and blank indices: the number of physically stored records
// a movie/cellset/vesselset file needs.
func (t Info) NumStored() uint64 {
	return t.numSamples - t.InvalidBefore(t.numSamples)
}
