/*
NAME
  rational.go

DESCRIPTION
  rational.go provides an exact rational-number type used for every
  duration, sample period and sub-second timestamp offset in isxcore.
  No floating point appears in timing invariants; Rational is the
  substitute.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package rational provides exact rational arithmetic and wall-clock
// timestamps built on it.
package rational

import (
	"fmt"
	"math/big"
)

// Rational is an exact fraction num/den, always kept reduced with a
// positive denominator.
type Rational struct {
	Num int64
	Den int64
}

// New returns a reduced Rational for num/den. It panics if den is zero,
// since a zero denominator can only come from a programming error, not
// from any value that crosses an API boundary (callers construct
// Rationals from fixed sample rates, never from arbitrary user input).
func New(num, den int64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	return reduce(num, den)
}

func reduce(num, den int64) Rational {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Rational{0, 1}
	}
	g := gcd(abs64(num), den)
	return Rational{num / g, den / g}
}

func gcd(a, b int64) int64 {
	bg := new(big.Int).GCD(nil, nil, big.NewInt(a), big.NewInt(b))
	if bg.Sign() == 0 {
		return 1
	}
	return bg.Int64()
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

// Zero is the additive identity.
var Zero = Rational{0, 1}

// IsZero reports whether r is exactly zero.
func (r Rational) IsZero() bool { return r.Num == 0 }

// Sign returns -1, 0 or 1 according to the sign of r.
func (r Rational) Sign() int {
	switch {
	case r.Num < 0:
		return -1
	case r.Num > 0:
		return 1
	default:
		return 0
	}
}

// Add returns r+o, returning an error on i64 overflow of the
// intermediate cross-multiplication.
func (r Rational) Add(o Rational) (Rational, error) {
	n, ok1 := mulOverflow(r.Num, o.Den)
	m, ok2 := mulOverflow(o.Num, r.Den)
	if !ok1 || !ok2 {
		return Rational{}, fmt.Errorf("rational: overflow adding %v + %v", r, o)
	}
	num, ok3 := addOverflow(n, m)
	den, ok4 := mulOverflow(r.Den, o.Den)
	if !ok3 || !ok4 {
		return Rational{}, fmt.Errorf("rational: overflow adding %v + %v", r, o)
	}
	return reduce(num, den), nil
}

// Sub returns r-o, with the same overflow behaviour as Add.
func (r Rational) Sub(o Rational) (Rational, error) {
	return r.Add(Rational{-o.Num, o.Den})
}

// Mul returns r*o, with the same overflow behaviour as Add.
func (r Rational) Mul(o Rational) (Rational, error) {
	num, ok1 := mulOverflow(r.Num, o.Num)
	den, ok2 := mulOverflow(r.Den, o.Den)
	if !ok1 || !ok2 {
		return Rational{}, fmt.Errorf("rational: overflow multiplying %v * %v", r, o)
	}
	return reduce(num, den), nil
}

// MulInt returns r*n, with the same overflow behaviour as Add.
func (r Rational) MulInt(n int64) (Rational, error) {
	return r.Mul(Rational{n, 1})
}

// Cmp returns -1, 0 or 1 according to whether r is less than, equal
// to, or greater than o.
func (r Rational) Cmp(o Rational) int {
	lhs := big.NewInt(r.Num)
	lhs.Mul(lhs, big.NewInt(o.Den))
	rhs := big.NewInt(o.Num)
	rhs.Mul(rhs, big.NewInt(r.Den))
	return lhs.Cmp(rhs)
}

// Less reports whether r < o.
func (r Rational) Less(o Rational) bool { return r.Cmp(o) < 0 }

// Float64 returns the closest float64 approximation of r, used only
// for display and never for comparisons or timing decisions.
func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

// String renders r as "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func mulOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}

func addOverflow(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

// RoundHalfDown rounds r to the nearest integer, breaking exact ties
// toward the lower integer. This is the tie-breaking rule timing uses
// for time_to_index.
func RoundHalfDown(r Rational) int64 {
	num, den := r.Num, r.Den
	q := num / den
	rem := num % den
	if rem == 0 {
		return q
	}
	// Normalize remainder sign so rem is in (0, den) for num/den with
	// truncating division semantics of Go's integer division.
	if rem < 0 {
		rem += den
		q--
	}
	twice := rem * 2
	switch {
	case twice < den:
		return q
	case twice > den:
		return q + 1
	default:
		// Exact half: break toward the earlier (lower) index.
		return q
	}
}
