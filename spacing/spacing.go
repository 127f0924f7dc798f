/*
NAME
  spacing.go

DESCRIPTION
  spacing.go implements SpacingInfo: the pixel grid, its micron-scale
  origin and pixel size, and the pixel<->micron coordinate conversions
  every image-grid modality (movies, cell footprints, vessel
  projections) shares.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package spacing implements the pixel grid shared by every
// image-grid native container format.
package spacing

import (
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/rational"
)

// Point is a 2-D point in microns, exact via Rational components.
type Point struct {
	X, Y rational.Rational
}

// PixelCoord is a 2-D pixel index, (col, row).
type PixelCoord struct {
	Col, Row uint32
}

// Info is the pixel grid of an image-grid modality.
type Info struct {
	numCols, numRows uint32
	pixelSize        Point // microns per pixel, (width, height)
	topLeft          Point // microns
}

// New validates and constructs an Info. numCols and numRows must be
// strictly positive, and pixelSize's components must be strictly
// positive.
func New(numCols, numRows uint32, pixelSize, topLeft Point) (Info, error) {
	if numCols == 0 || numRows == 0 {
		return Info{}, errs.New(errs.UserInput, "SpacingInfo must have at least one column and row").WithField("numCols/numRows")
	}
	if pixelSize.X.Sign() <= 0 || pixelSize.Y.Sign() <= 0 {
		return Info{}, errs.New(errs.UserInput, "SpacingInfo pixel size must be strictly positive").WithField("pixelSize")
	}
	return Info{numCols: numCols, numRows: numRows, pixelSize: pixelSize, topLeft: topLeft}, nil
}

// NumCols returns the number of pixel columns.
func (s Info) NumCols() uint32 { return s.numCols }

// NumRows returns the number of pixel rows.
func (s Info) NumRows() uint32 { return s.numRows }

// PixelSize returns the (width, height) of one pixel in microns.
func (s Info) PixelSize() Point { return s.pixelSize }

// TopLeft returns the top-left corner of the grid in microns.
func (s Info) TopLeft() Point { return s.topLeft }

// NumPixels returns numCols*numRows.
func (s Info) NumPixels() uint64 { return uint64(s.numCols) * uint64(s.numRows) }

// TotalSize returns the full grid extent in microns:
// (numCols, numRows) * pixelSize.
func (s Info) TotalSize() (Point, error) {
	w, err := s.pixelSize.X.MulInt(int64(s.numCols))
	if err != nil {
		return Point{}, err
	}
	h, err := s.pixelSize.Y.MulInt(int64(s.numRows))
	if err != nil {
		return Point{}, err
	}
	return Point{X: w, Y: h}, nil
}

// BottomRight returns TopLeft() + TotalSize().
func (s Info) BottomRight() (Point, error) {
	size, err := s.TotalSize()
	if err != nil {
		return Point{}, err
	}
	x, err := s.topLeft.X.Add(size.X)
	if err != nil {
		return Point{}, err
	}
	y, err := s.topLeft.Y.Add(size.Y)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// PixelCenterInMicrons returns the micron coordinate of the center of
// pixel (col, row): topLeft + (col+1/2, row+1/2)*pixelSize.
func (s Info) PixelCenterInMicrons(col, row uint32) (Point, error) {
	half := rational.New(1, 2)
	colHalf, err := rational.New(int64(col), 1).Add(half)
	if err != nil {
		return Point{}, err
	}
	rowHalf, err := rational.New(int64(row), 1).Add(half)
	if err != nil {
		return Point{}, err
	}
	dx, err := colHalf.Mul(s.pixelSize.X)
	if err != nil {
		return Point{}, err
	}
	dy, err := rowHalf.Mul(s.pixelSize.Y)
	if err != nil {
		return Point{}, err
	}
	x, err := s.topLeft.X.Add(dx)
	if err != nil {
		return Point{}, err
	}
	y, err := s.topLeft.Y.Add(dy)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// MicronsToPixel maps a micron coordinate to the pixel whose center is
// nearest, breaking ties toward the lower index and clamping into
// [0,numCols) x [0,numRows).
func (s Info) MicronsToPixel(p Point) (PixelCoord, error) {
	dx, err := p.X.Sub(s.topLeft.X)
	if err != nil {
		return PixelCoord{}, err
	}
	dy, err := p.Y.Sub(s.topLeft.Y)
	if err != nil {
		return PixelCoord{}, err
	}
	// col+1/2 = dx/pixelW  =>  col = dx/pixelW - 1/2
	colF := ratDiv(dx, s.pixelSize.X)
	rowF := ratDiv(dy, s.pixelSize.Y)
	half := rational.New(1, 2)
	colF, err = colF.Sub(half)
	if err != nil {
		return PixelCoord{}, err
	}
	rowF, err = rowF.Sub(half)
	if err != nil {
		return PixelCoord{}, err
	}

	col := rational.RoundHalfDown(colF)
	row := rational.RoundHalfDown(rowF)

	col = clampInt(col, 0, int64(s.numCols)-1)
	row = clampInt(row, 0, int64(s.numRows)-1)

	return PixelCoord{Col: uint32(col), Row: uint32(row)}, nil
}

func ratDiv(a, b rational.Rational) rational.Rational {
	recip := rational.Rational{Num: b.Den, Den: b.Num}
	if b.Num < 0 {
		recip = rational.Rational{Num: -b.Den, Den: -b.Num}
	}
	out, err := a.Mul(recip)
	if err != nil {
		if a.Sign() >= 0 {
			return rational.Rational{Num: 1 << 62, Den: 1}
		}
		return rational.Rational{Num: -(1 << 62), Den: 1}
	}
	return out
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
