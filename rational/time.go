/*
NAME
  time.go

DESCRIPTION
  time.go provides the Time type: a wall-clock timestamp stored as an
  exact Rational number of seconds since the Unix epoch plus a UTC
  offset for display, keeping all timing arithmetic free of floating
  point.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package rational

import (
	"fmt"
	"time"
)

// Time is an absolute wall-clock timestamp, exact to the Rational's
// precision, with an associated UTC offset used only for display.
type Time struct {
	SecsSinceEpoch Rational
	UTCOffsetSecs  int32
}

// FromUnix builds a Time from a standard library time.Time, preserving
// sub-second precision exactly as nanoseconds/1e9.
func FromUnix(t time.Time) Time {
	_, offset := t.Zone()
	return Time{
		SecsSinceEpoch: New(t.Unix()*1_000_000_000+int64(t.Nanosecond()), 1_000_000_000),
		UTCOffsetSecs:  int32(offset),
	}
}

// ToUnix returns the UTC standard-library time.Time equivalent to t,
// losing precision beyond nanoseconds.
func (t Time) ToUnix() time.Time {
	secs := t.SecsSinceEpoch.Num / t.SecsSinceEpoch.Den
	rem := t.SecsSinceEpoch.Num - secs*t.SecsSinceEpoch.Den
	nanos := rem * 1_000_000_000 / t.SecsSinceEpoch.Den
	return time.Unix(secs, nanos).UTC()
}

// Cmp returns -1, 0 or 1 according to the total order on
// SecsSinceEpoch; the UTC offset never affects ordering.
func (t Time) Cmp(o Time) int {
	return t.SecsSinceEpoch.Cmp(o.SecsSinceEpoch)
}

// Less reports whether t is strictly before o.
func (t Time) Less(o Time) bool { return t.Cmp(o) < 0 }

// Equal reports whether t and o denote the same instant, ignoring the
// display-only UTC offset.
func (t Time) Equal(o Time) bool { return t.Cmp(o) == 0 }

// Add returns t advanced by d seconds, erroring on Rational overflow.
func (t Time) Add(d Rational) (Time, error) {
	s, err := t.SecsSinceEpoch.Add(d)
	if err != nil {
		return Time{}, err
	}
	return Time{SecsSinceEpoch: s, UTCOffsetSecs: t.UTCOffsetSecs}, nil
}

// Sub returns the exact duration t-o, in seconds.
func (t Time) Sub(o Time) (Rational, error) {
	return t.SecsSinceEpoch.Sub(o.SecsSinceEpoch)
}

// String renders t as an RFC3339-ish string in its own UTC offset.
func (t Time) String() string {
	loc := time.FixedZone("", int(t.UTCOffsetSecs))
	return fmt.Sprintf("%s", t.ToUnix().In(loc).Format("2006-01-02T15:04:05.000000000Z07:00"))
}
