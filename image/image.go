/*
NAME
  image.go

DESCRIPTION
  image.go implements Image and VideoFrame: an owned pixel buffer with
  datatype, dimensions, row stride, and — for VideoFrame — timestamp,
  index and validity kind.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package image implements the owned pixel buffer shared by movies,
// cell footprints and vessel projections.
package image

import (
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
)

// DataType is the pixel component type.
type DataType int

// The three pixel component types.
const (
	U8 DataType = iota
	U16
	F32
)

// ByteSize returns the fixed byte size of one pixel component.
func (d DataType) ByteSize() int {
	switch d {
	case U8:
		return 1
	case U16:
		return 2
	case F32:
		return 4
	default:
		return 0
	}
}

func (d DataType) String() string {
	switch d {
	case U8:
		return "U8"
	case U16:
		return "U16"
	case F32:
		return "F32"
	default:
		return "UNKNOWN"
	}
}

// Image is an owned pixel buffer on a spacing grid.
type Image struct {
	Spacing  spacing.Info
	DataType DataType
	Channels int
	RowBytes int
	Data     []byte
}

// New allocates a zeroed Image. rowBytes must be at least
// cols*channels*pixelByteSize; pass 0 to use the minimum tight stride.
func New(sp spacing.Info, dt DataType, channels int, rowBytes int) (*Image, error) {
	if channels < 1 {
		return nil, errs.New(errs.UserInput, "Image must have at least one channel").WithField("channels")
	}
	minRowBytes := int(sp.NumCols()) * channels * dt.ByteSize()
	if rowBytes == 0 {
		rowBytes = minRowBytes
	}
	if rowBytes < minRowBytes {
		return nil, errs.Newf(errs.UserInput, "rowBytes %d smaller than minimum %d", rowBytes, minRowBytes).WithField("rowBytes")
	}
	data := make([]byte, rowBytes*int(sp.NumRows()))
	return &Image{Spacing: sp, DataType: dt, Channels: channels, RowBytes: rowBytes, Data: data}, nil
}

// MinRowBytes returns cols*channels*pixelByteSize, the tightest
// possible stride.
func (im *Image) MinRowBytes() int {
	return int(im.Spacing.NumCols()) * im.Channels * im.DataType.ByteSize()
}

// IsZero reports whether every payload byte in the image (ignoring
// stride padding) is zero.
func (im *Image) IsZero() bool {
	min := im.MinRowBytes()
	for r := 0; r < int(im.Spacing.NumRows()); r++ {
		row := im.Data[r*im.RowBytes : r*im.RowBytes+min]
		for _, b := range row {
			if b != 0 {
				return false
			}
		}
	}
	return true
}

// Kind classifies the validity of a VideoFrame.
type Kind int

// The four frame validity kinds.
const (
	FrameValid Kind = iota
	FrameDropped
	FrameCropped
	FrameBlank
)

func (k Kind) String() string {
	switch k {
	case FrameValid:
		return "VALID"
	case FrameDropped:
		return "DROPPED"
	case FrameCropped:
		return "CROPPED"
	case FrameBlank:
		return "BLANK"
	default:
		return "UNKNOWN"
	}
}

// KindFromTiming maps a timing.Kind to the equivalent VideoFrame Kind.
func KindFromTiming(k timing.Kind) Kind {
	switch k {
	case timing.Dropped:
		return FrameDropped
	case timing.Cropped:
		return FrameCropped
	case timing.Blank:
		return FrameBlank
	default:
		return FrameValid
	}
}

// VideoFrame is an Image sample taken at a point in a movie's timing
// grid. Non-valid frames carry an all-zero payload and no acquisition
// timestamp; Timestamp is the zero rational.Time for them.
type VideoFrame struct {
	*Image
	Timestamp rational.Time
	Index     uint64
	Kind      Kind
}
