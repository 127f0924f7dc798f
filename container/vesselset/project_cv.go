//go:build withcv

/*
NAME
  project_cv.go

DESCRIPTION
  project_cv.go is the OpenCV-accelerated alternative to project.go's
  pure-Go pixel reducer, built with -tags withcv.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package vesselset

import (
	"encoding/binary"
	"math"

	"gocv.io/x/gocv"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/spacing"
)

// ProjectFrames reduces frames into one projection image using pt,
// accumulating with gocv.Mat arithmetic instead of a per-pixel Go
// loop.
func ProjectFrames(frames []*image.Image, sp spacing.Info, pt ProjectionType) (*image.Image, error) {
	if len(frames) == 0 {
		return nil, errs.New(errs.UserInput, "ProjectFrames requires at least one frame").WithField("frames")
	}
	cols := int(sp.NumCols())
	rows := int(sp.NumRows())

	mats := make([]gocv.Mat, len(frames))
	for i, f := range frames {
		m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV32F, toTightBytes(f, rows, cols))
		if err != nil {
			for _, mm := range mats[:i] {
				mm.Close()
			}
			return nil, errs.Wrap(errs.UserInput, err, "build gocv.Mat from frame")
		}
		mats[i] = m
	}
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()

	acc := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer acc.Close()

	switch pt {
	case ProjectionMin:
		mats[0].CopyTo(&acc)
		for _, m := range mats[1:] {
			gocv.Min(acc, m, &acc)
		}
	case ProjectionMax:
		mats[0].CopyTo(&acc)
		for _, m := range mats[1:] {
			gocv.Max(acc, m, &acc)
		}
	case ProjectionStdDev:
		meanMat, stdMat := gocv.NewMat(), gocv.NewMat()
		defer meanMat.Close()
		defer stdMat.Close()
		gocv.MeanStdDev(stackMats(mats), &meanMat, &stdMat)
		return matToImage(stdMat, sp)
	default: // ProjectionMean
		acc.SetTo(gocv.NewScalar(0, 0, 0, 0))
		for _, m := range mats {
			gocv.AddWeighted(acc, 1, m, 1.0/float64(len(mats)), 0, &acc)
		}
	}
	return matToImage(acc, sp)
}

func toTightBytes(f *image.Image, rows, cols int) []byte {
	min := f.MinRowBytes()
	out := make([]byte, min*rows)
	for r := 0; r < rows; r++ {
		copy(out[r*min:(r+1)*min], f.Data[r*f.RowBytes:r*f.RowBytes+min])
	}
	return out
}

// stackMats vertically concatenates mats into one tall Mat so
// MeanStdDev's per-column statistics fold across the frame stack.
func stackMats(mats []gocv.Mat) gocv.Mat {
	out := mats[0].Clone()
	for _, m := range mats[1:] {
		next := gocv.NewMat()
		gocv.Vconcat(out, m, &next)
		out.Close()
		out = next
	}
	return out
}

func matToImage(m gocv.Mat, sp spacing.Info) (*image.Image, error) {
	out, err := image.New(sp, image.F32, 1, 0)
	if err != nil {
		return nil, err
	}
	cols := int(sp.NumCols())
	rows := int(sp.NumRows())
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := m.GetFloatAt(r, c)
			off := r*out.RowBytes + c*4
			binary.LittleEndian.PutUint32(out.Data[off:off+4], math.Float32bits(v))
		}
	}
	return out, nil
}
