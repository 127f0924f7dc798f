//go:build !withcv

/*
NAME
  project.go

DESCRIPTION
  project.go computes a vessel's projection image from a stack of
  movie frames using a pure-Go pixel-wise reducer. See project_cv.go
  for the OpenCV-accelerated alternative built with -tags withcv.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package vesselset

import (
	"encoding/binary"
	"math"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/spacing"
)

// ProjectFrames reduces frames (all sharing sp, F32, single channel)
// into one projection image using pt. frames must be non-empty.
func ProjectFrames(frames []*image.Image, sp spacing.Info, pt ProjectionType) (*image.Image, error) {
	if len(frames) == 0 {
		return nil, errs.New(errs.UserInput, "ProjectFrames requires at least one frame").WithField("frames")
	}
	out, err := image.New(sp, image.F32, 1, 0)
	if err != nil {
		return nil, err
	}
	cols := int(sp.NumCols())
	rows := int(sp.NumRows())

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			off := r*out.RowBytes + c*4
			values := make([]float64, len(frames))
			for i, f := range frames {
				foff := r*f.RowBytes + c*4
				values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(f.Data[foff : foff+4])))
			}
			var v float64
			switch pt {
			case ProjectionMin:
				v = values[0]
				for _, x := range values[1:] {
					if x < v {
						v = x
					}
				}
			case ProjectionMax:
				v = values[0]
				for _, x := range values[1:] {
					if x > v {
						v = x
					}
				}
			case ProjectionStdDev:
				v = stddev(values)
			default: // ProjectionMean
				v = mean(values)
			}
			binary.LittleEndian.PutUint32(out.Data[off:off+4], math.Float32bits(float32(v)))
		}
	}
	return out, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
