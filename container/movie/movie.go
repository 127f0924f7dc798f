/*
NAME
  movie.go

DESCRIPTION
  movie.go implements the MosaicMovie file format: a sequence of
  fixed-size frame records, optionally bracketed by fixed header/
  footer metadata bands, on top of the shared container envelope.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package movie implements the MosaicMovie native container: a frame
// store with optional per-frame header/footer metadata bands.
package movie

import (
	"encoding/binary"
	"encoding/json"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
)

// Legacy fixed band sizes: 2 rows of 1280 u16 samples each, independent
// of the cropped ROI.
const (
	bandRows       = 2
	bandCols       = 1280
	bandBytesEach  = bandRows * bandCols * 2 // sizeof(u16)
)

// Version tags. Version1 has no per-frame header/footer; Version2 adds
// it. A reader must fail cleanly on any other value.
const (
	Version1 = 1
	Version2 = 2
)

// Header is the "miniscope movie" JSON header.
type Header struct {
	container.Common
	HasFrameHeaderFooter bool `json:"hasFrameHeaderFooter"`
}

// Writer creates a new movie file. It is in the CREATING state until
// Close is called.
type Writer struct {
	env             *container.Writer
	timing          timing.Info
	spacing         spacing.Info
	dataType        image.DataType
	hasHeaderFooter bool
	nextValid       uint64
	extra           *container.ExtraProperties
	log             log.Logger
}

// Create opens a new movie file for writing.
func Create(path string, ti timing.Info, sp spacing.Info, dt image.DataType, hasHeaderFooter bool, logger log.Logger) (*Writer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	env, err := container.Create(path, logger)
	if err != nil {
		return nil, err
	}
	return &Writer{
		env:             env,
		timing:          ti,
		spacing:         sp,
		dataType:        dt,
		hasHeaderFooter: hasHeaderFooter,
		nextValid:       ti.NextValidFrom(0),
		extra:           container.NewExtraProperties(),
		log:             logger,
	}, nil
}

func (w *Writer) frameDataBytes() int {
	return int(w.spacing.NumCols()) * int(w.spacing.NumRows()) * w.dataType.ByteSize()
}

func (w *Writer) recordBytes() int {
	n := w.frameDataBytes()
	if w.hasHeaderFooter {
		n += 2 * bandBytesEach
	}
	return n
}

// SetExtraProperties replaces the writer's extra-properties document.
func (w *Writer) SetExtraProperties(e *container.ExtraProperties) { w.extra = e }

// NewFrame allocates a zeroed VideoFrame shaped for this movie at
// index, so the caller can fill it in without risking a shape
// mismatch against write_frame.
func (w *Writer) NewFrame(index uint64) (*image.VideoFrame, error) {
	im, err := image.New(w.spacing, w.dataType, 1, 0)
	if err != nil {
		return nil, err
	}
	return &image.VideoFrame{Image: im, Index: index, Kind: image.FrameValid}, nil
}

// WriteFrame appends a frame with no header/footer band. Use
// WriteFrameWithHeaderFooter for movies created with
// hasFrameHeaderFooter=true.
func (w *Writer) WriteFrame(vf *image.VideoFrame) error {
	return w.writeFrame(vf, nil, nil)
}

// WriteFrameWithHeaderFooter appends a frame together with its fixed-
// size header and footer metadata bands.
func (w *Writer) WriteFrameWithHeaderFooter(vf *image.VideoFrame, header, footer []byte) error {
	if !w.hasHeaderFooter {
		return errs.New(errs.UserInput, "movie was not created with hasFrameHeaderFooter")
	}
	if len(header) != bandBytesEach || len(footer) != bandBytesEach {
		return errs.Newf(errs.UserInput, "header/footer bands must be exactly %d bytes", bandBytesEach).WithField("header/footer")
	}
	return w.writeFrame(vf, header, footer)
}

func (w *Writer) writeFrame(vf *image.VideoFrame, header, footer []byte) error {
	idx := vf.Index
	if !w.timing.IndexInRange(idx) {
		return errs.Newf(errs.UserInput, "frame index %d out of range [0,%d)", idx, w.timing.NumSamples()).WithField("index")
	}
	if w.timing.KindOf(idx) != timing.Valid {
		w.log.Log(int8(log.LevelWarning), "ignoring write to non-valid frame index", "index", idx)
		return nil
	}
	if idx != w.nextValid {
		return errs.Newf(errs.UserInput, "frames must be written in index order: expected %d, got %d", w.nextValid, idx).WithField("index")
	}

	want := w.frameDataBytes()
	if len(vf.Data) < want {
		return errs.Newf(errs.UserInput, "frame payload too small: have %d bytes, want %d", len(vf.Data), want).WithField("data")
	}

	if w.hasHeaderFooter {
		if _, err := w.env.WritePayload(header); err != nil {
			return err
		}
	}
	if _, err := w.env.WritePayload(vf.Data[:want]); err != nil {
		return err
	}
	if w.hasHeaderFooter {
		if _, err := w.env.WritePayload(footer); err != nil {
			return err
		}
	}

	w.nextValid = w.timing.NextValidFrom(idx + 1)
	return nil
}

// Close seals the movie file. Closing with a TimingInfo that declares
// fewer samples than were written is a DataIO error; declaring more is
// allowed (trailing samples become BLANK on read, as they were never
// stored).
func (w *Writer) Close(finalTiming *timing.Info) error {
	ti := w.timing
	if finalTiming != nil {
		ti = *finalTiming
	}
	stored := w.timing.NumStored() - uint64(countValidFrom(w.timing, w.nextValid, w.timing.NumSamples()))
	if ti.NumSamples() < stored {
		return errs.Newf(errs.DataIO, "closing timing has %d samples, fewer than the %d frames already written", ti.NumSamples(), stored).WithField("numSamples")
	}
	if ti.NumStored() > stored {
		blank, seen := ti.Blank(), uint64(0)
		for i := uint64(0); i < ti.NumSamples(); i++ {
			if ti.IsValid(i) {
				if seen++; seen > stored {
					blank = append(blank, i)
				}
			}
		}
		padded, err := timing.New(ti.Start(), ti.Step(), ti.NumSamples(), ti.Dropped(), ti.Cropped(), blank)
		if err != nil {
			return err
		}
		ti = padded
	}

	version := Version1
	if w.hasHeaderFooter {
		version = Version2
	}
	extraRaw, err := w.extra.Raw()
	if err != nil {
		return err
	}
	dt := w.dataType.String()
	header := Header{
		Common: container.Common{
			Version:         version,
			Type:            container.TypeMovie,
			Timing:          ti,
			Spacing:         &w.spacing,
			DataType:        &dt,
			ExtraProperties: extraRaw,
		},
		HasFrameHeaderFooter: w.hasHeaderFooter,
	}
	return w.env.Seal(header)
}

func countValidFrom(ti timing.Info, from, to uint64) uint64 {
	var n uint64
	for i := from; i < to; i++ {
		if ti.KindOf(i) == timing.Valid {
			n++
		}
	}
	return n
}

// Reader provides random-access reads of a sealed movie file.
type Reader struct {
	env      *container.Reader
	header   Header
	spacing  spacing.Info
	dataType image.DataType
	extra    *container.ExtraProperties
}

// Open opens an existing movie file for reading.
func Open(path string) (*Reader, error) {
	env, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(env.HeaderBytes(), &h); err != nil {
		env.Close()
		return nil, errs.Wrap(errs.DataIO, err, "parse movie header").WithPath(path)
	}
	if h.Version != Version1 && h.Version != Version2 {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "unknown movie version %d", h.Version).WithPath(path)
	}
	if h.Type != container.TypeMovie {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "expected movie type, got %q", h.Type).WithPath(path)
	}
	if h.Spacing == nil || h.DataType == nil {
		env.Close()
		return nil, errs.New(errs.DataIO, "movie header missing spacingInfo/dataType").WithPath(path)
	}
	dt, err := parseDataTypeLocal(*h.DataType)
	if err != nil {
		env.Close()
		return nil, err
	}
	extra, err := container.ParseExtraProperties(h.ExtraProperties)
	if err != nil {
		env.Close()
		return nil, err
	}
	return &Reader{env: env, header: h, spacing: *h.Spacing, dataType: dt, extra: extra}, nil
}

func parseDataTypeLocal(s string) (image.DataType, error) {
	switch s {
	case "U8":
		return image.U8, nil
	case "U16":
		return image.U16, nil
	case "F32":
		return image.F32, nil
	default:
		return 0, errs.Newf(errs.DataIO, "unrecognized dataType %q", s)
	}
}

// Close releases the reader's file handle/mapping.
func (r *Reader) Close() error { return r.env.Close() }

// Timing returns the movie's TimingInfo.
func (r *Reader) Timing() timing.Info { return r.header.Timing }

// Spacing returns the movie's SpacingInfo.
func (r *Reader) Spacing() spacing.Info { return r.spacing }

// DataType returns the movie's pixel data type.
func (r *Reader) DataType() image.DataType { return r.dataType }

// ExtraProperties returns the movie's extra-properties document.
func (r *Reader) ExtraProperties() *container.ExtraProperties { return r.extra }

// HasFrameHeaderFooter reports whether frames carry metadata bands.
func (r *Reader) HasFrameHeaderFooter() bool { return r.header.HasFrameHeaderFooter }

func (r *Reader) frameDataBytes() int {
	return int(r.spacing.NumCols()) * int(r.spacing.NumRows()) * r.dataType.ByteSize()
}

func (r *Reader) recordBytes() int {
	n := r.frameDataBytes()
	if r.header.HasFrameHeaderFooter {
		n += 2 * bandBytesEach
	}
	return n
}

// GetFrame returns the VideoFrame at index i. Non-valid indices return
// an all-zero buffer with the matching Kind; no acquisition timestamp
// is attached.
func (r *Reader) GetFrame(i uint64) (*image.VideoFrame, error) {
	ti := r.header.Timing
	if !ti.IndexInRange(i) {
		return nil, errs.Newf(errs.UserInput, "frame index %d out of range [0,%d)", i, ti.NumSamples()).WithField("index")
	}
	kind := ti.KindOf(i)
	im, err := image.New(r.spacing, r.dataType, 1, 0)
	if err != nil {
		return nil, err
	}
	if kind != timing.Valid {
		return &image.VideoFrame{Image: im, Index: i, Kind: image.KindFromTiming(kind)}, nil
	}

	stored := i - ti.InvalidBefore(i)
	recBytes := r.recordBytes()
	offset := int64(stored) * int64(recBytes)
	dataOffset := offset
	if r.header.HasFrameHeaderFooter {
		dataOffset += bandBytesEach
	}
	if _, err := r.env.ReadAt(im.Data, dataOffset); err != nil {
		return nil, err
	}
	ts, err := ti.IndexToStartTime(i)
	if err != nil {
		return nil, err
	}
	return &image.VideoFrame{Image: im, Index: i, Kind: image.FrameValid, Timestamp: ts}, nil
}

// GetFrameHeader returns the raw header band for frame i, or nil if
// the movie has no header/footer bands.
func (r *Reader) GetFrameHeader(i uint64) ([]byte, error) {
	return r.getBand(i, true)
}

// GetFrameFooter returns the raw footer band for frame i, or nil if
// the movie has no header/footer bands.
func (r *Reader) GetFrameFooter(i uint64) ([]byte, error) {
	return r.getBand(i, false)
}

func (r *Reader) getBand(i uint64, header bool) ([]byte, error) {
	if !r.header.HasFrameHeaderFooter {
		return nil, nil
	}
	ti := r.header.Timing
	if !ti.IndexInRange(i) {
		return nil, errs.Newf(errs.UserInput, "frame index %d out of range [0,%d)", i, ti.NumSamples()).WithField("index")
	}
	if ti.KindOf(i) != timing.Valid {
		return make([]byte, bandBytesEach), nil
	}
	stored := i - ti.InvalidBefore(i)
	recBytes := r.recordBytes()
	offset := int64(stored) * int64(recBytes)
	if !header {
		offset += int64(bandBytesEach) + int64(r.frameDataBytes())
	}
	buf := make([]byte, bandBytesEach)
	if _, err := r.env.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// GetFrameTSC decodes the monotonic hardware counter (a little-endian
// u64 tick count) embedded in the first 8 bytes of frame i's header
// band. It errors if the movie has no per-frame header.
func (r *Reader) GetFrameTSC(i uint64) (uint64, error) {
	if !r.header.HasFrameHeaderFooter {
		return 0, errs.New(errs.DataIO, "Input movie does not have frame timestamps stored in file.")
	}
	band, err := r.GetFrameHeader(i)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(band[:8]), nil
}

// EncodeTSCHeader returns a header band whose first 8 bytes encode
// tsc, suitable for WriteFrameWithHeaderFooter.
func EncodeTSCHeader(tsc uint64) []byte {
	buf := make([]byte, bandBytesEach)
	binary.LittleEndian.PutUint64(buf[:8], tsc)
	return buf
}
