//go:build !withcv

/*
NAME
  movie.go

DESCRIPTION
  movie.go implements ExportMovie's TIFF path: one frame per output
  file, encoded with golang.org/x/image/tiff. See movie_cv.go for the
  -tags withcv alternative using gocv.IMWrite. NWB and MP4 are named
  in Format but have no encoder here: ExportMovie rejects them with a
  UserInput error so callers route those formats to an external
  encoder.

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
	stdimage "image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/task"
)

// ExportMovie writes p.Sources to p.OutputPath in p.Format. Only Tiff
// is implemented here; it writes one "<OutputPath>/frame_%06d.tiff"
// per valid frame across all sources.
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
				out, err := toStdImage(vf.Image)
				if err != nil {
					return err
				}
				path := filepath.Join(p.OutputPath, fmt.Sprintf("frame_%06d.tiff", frame))
				if err := writeTIFF(path, out); err != nil {
					return err
				}
				frame++
			}
		}
		return nil
	}

	return task.RunSync(fn, report, p.OutputPath, logger)
}

func writeTIFF(path string, img stdimage.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.FileIO, err, "create TIFF file").WithPath(path)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		return errs.Wrap(errs.FileIO, err, "encode TIFF").WithPath(path)
	}
	return nil
}

// toStdImage converts im into a standard library image.Image. F32
// images (cell footprints, vessel projections) have no native TIFF
// sample format in this encoder, so they are min-max normalized to
// 16-bit grayscale.
func toStdImage(im *image.Image) (stdimage.Image, error) {
	cols := int(im.Spacing.NumCols())
	rows := int(im.Spacing.NumRows())

	switch im.DataType {
	case image.U8:
		out := stdimage.NewGray(stdimage.Rect(0, 0, cols, rows))
		for r := 0; r < rows; r++ {
			copy(out.Pix[r*out.Stride:r*out.Stride+cols], im.Data[r*im.RowBytes:r*im.RowBytes+cols])
		}
		return out, nil
	case image.U16:
		out := stdimage.NewGray16(stdimage.Rect(0, 0, cols, rows))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				off := r*im.RowBytes + c*2
				v := uint16(im.Data[off]) | uint16(im.Data[off+1])<<8
				out.SetGray16(c, r, color.Gray16{Y: v})
			}
		}
		return out, nil
	case image.F32:
		vals := make([]float32, cols*rows)
		min, max := float32(0), float32(0)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				off := r*im.RowBytes + c*4
				bits := uint32(im.Data[off]) | uint32(im.Data[off+1])<<8 | uint32(im.Data[off+2])<<16 | uint32(im.Data[off+3])<<24
				v := math.Float32frombits(bits)
				vals[r*cols+c] = v
				if r == 0 && c == 0 {
					min, max = v, v
				} else {
					if v < min {
						min = v
					}
					if v > max {
						max = v
					}
				}
			}
		}
		out := stdimage.NewGray16(stdimage.Rect(0, 0, cols, rows))
		scale := float32(1)
		if max > min {
			scale = 65535 / (max - min)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out.SetGray16(c, r, color.Gray16{Y: uint16((vals[r*cols+c] - min) * scale)})
			}
		}
		return out, nil
	default:
		return nil, errs.Newf(errs.UserInput, "TIFF export does not support %s images", im.DataType).WithField("dataType")
	}
}
