//go:build withcv

/*
NAME
  movie_cv.go

DESCRIPTION
  movie_cv.go is the OpenCV-accelerated alternative to movie.go's
  pure-Go TIFF path, built with -tags withcv: frames are handed to
  gocv.IMWrite instead of golang.org/x/image/tiff.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/task"
)

// ExportMovie writes p.Sources to p.OutputPath in p.Format. Only Tiff
// is implemented here; it writes one "<OutputPath>/frame_%06d.tiff"
// per valid frame across all sources, encoded via gocv.IMWrite.
func ExportMovie(p MovieExporterParams, report task.ProgressFunc, logger log.Logger) (task.Status, error) {
	if len(p.Sources) == 0 {
		return task.ErrorException, errs.New(errs.UserInput, "MovieExporterParams requires at least one source").WithField("sources")
	}
	if p.Format != Tiff {
		return task.ErrorException, errs.Newf(errs.UserInput, "movie export format %s has no encoder in this package", p.Format).WithField("format")
	}

	fn := func(report task.ProgressFunc) error {
		if err := os.MkdirAll(p.OutputPath, 0o755); err != nil {
			return errs.Wrap(errs.FileIO, err, "create TIFF export directory").WithPath(p.OutputPath)
		}

		total := 0
		for _, r := range p.Sources {
			total += int(r.Timing().NumSamples())
		}

		done := 0
		frame := 0
		for _, r := range p.Sources {
			ti := r.Timing()
			for i := uint64(0); i < ti.NumSamples(); i++ {
				if report(float32(done) / float32(total)) {
					return task.ErrCancelled
				}
				done++

				vf, err := r.GetFrame(i)
				if err != nil {
					return err
				}
				if vf.Kind != image.FrameValid {
					continue
				}
				mat, err := toMat(vf.Image)
				if err != nil {
					return err
				}
				path := filepath.Join(p.OutputPath, fmt.Sprintf("frame_%06d.tiff", frame))
				ok := gocv.IMWrite(path, mat)
				mat.Close()
				if !ok {
					return errs.Newf(errs.FileIO, "gocv.IMWrite failed").WithPath(path)
				}
				frame++
			}
		}
		return nil
	}

	return task.RunSync(fn, report, p.OutputPath, logger)
}

// toMat builds a gocv.Mat from im. F32 images (cell footprints,
// vessel projections) are min-max normalized to 16-bit grayscale, the
// same treatment as the pure-Go path in movie.go.
func toMat(im *image.Image) (gocv.Mat, error) {
	cols := int(im.Spacing.NumCols())
	rows := int(im.Spacing.NumRows())
	tight := make([]byte, cols*rows*im.DataType.ByteSize())
	rowTight := cols * im.DataType.ByteSize()
	for r := 0; r < rows; r++ {
		copy(tight[r*rowTight:(r+1)*rowTight], im.Data[r*im.RowBytes:r*im.RowBytes+rowTight])
	}

	switch im.DataType {
	case image.U8:
		return gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8U, tight)
	case image.U16:
		return gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV16U, tight)
	case image.F32:
		src, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV32F, tight)
		if err != nil {
			return gocv.Mat{}, errs.Wrap(errs.UserInput, err, "build gocv.Mat from F32 image")
		}
		defer src.Close()
		minVal, maxVal, _, _ := gocv.MinMaxLoc(src)
		out := gocv.NewMat()
		scale := 1.0
		if maxVal > minVal {
			scale = 65535.0 / float64(maxVal-minVal)
		}
		src.ConvertToWithParams(&out, gocv.MatTypeCV16U, float32(scale), float32(-float64(minVal)*scale))
		return out, nil
	default:
		return gocv.Mat{}, errs.Newf(errs.UserInput, "TIFF export does not support %s images", im.DataType).WithField("dataType")
	}
}
