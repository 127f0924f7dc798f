/*
NAME
  cellset.go

DESCRIPTION
  cellset.go implements the CellSet native container: per-cell
  footprint image + trace + status + name, fixed-stride records of
  (image, trace) pairs on top of the shared envelope.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package cellset implements the CellSet native container: a
// per-region spatial footprint plus a time series, one pair per cell.
package cellset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
)

// Status is a cell's acceptance state.
type Status int

// The three cell statuses.
const (
	Undecided Status = iota
	Accepted
	Rejected
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "ACCEPTED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNDECIDED"
	}
}

func parseStatus(s string) (Status, error) {
	switch s {
	case "ACCEPTED":
		return Accepted, nil
	case "REJECTED":
		return Rejected, nil
	case "UNDECIDED", "":
		return Undecided, nil
	default:
		return 0, errs.Newf(errs.DataIO, "unrecognized cell status %q", s)
	}
}

// Method is idps.cellset's processing method.
type Method string

// Recognized processing methods.
const (
	MethodPCAICA  Method = "pca-ica"
	MethodCNMFE   Method = "cnmfe"
	MethodManual  Method = "manual"
	MethodApplied Method = "applied"
)

// SignalType is idps.cellset's signal type.
type SignalType string

// Recognized signal types.
const (
	SignalAnalog SignalType = "analog"
	SignalBinary SignalType = "binary"
)

// Units is idps.cellset's trace units.
type Units string

// Recognized trace units.
const (
	UnitsRaw     Units = "raw"
	UnitsDFoverF Units = "dF over F"
	UnitsDF      Units = "dF"
	UnitsDFNoise Units = "dF over noise"
)

// Metrics holds optional per-cell computed metrics.
type Metrics struct {
	Color         *string  `json:"color,omitempty"`
	CentroidX     *float64 `json:"centroidX,omitempty"`
	CentroidY     *float64 `json:"centroidY,omitempty"`
	Size          *float64 `json:"size,omitempty"`
	NumComponents *int     `json:"numComponents,omitempty"`
}

// cellMeta is one entry in the header's "cells" array.
type cellMeta struct {
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Metrics Metrics `json:"metrics,omitempty"`
}

// Header is the "cell set" JSON header.
type Header struct {
	container.Common
	IsRoiSet bool       `json:"isRoiSet"`
	Cells    []cellMeta `json:"cells"`
}

// cellSetMeta is the idps.cellset extraProperties object.
type cellSetMeta struct {
	Method Method     `json:"method"`
	Type   SignalType `json:"type"`
	Units  Units       `json:"units"`
}

type pendingCell struct {
	name    string
	status  Status
	metrics Metrics
}

// Writer creates a new cell set file.
type Writer struct {
	env      *container.Writer
	timing   timing.Info
	spacing  spacing.Info
	isRoiSet bool
	cells    []pendingCell
	extra    *container.ExtraProperties
	log      log.Logger
}

// Create opens a new cell set file for writing.
func Create(path string, ti timing.Info, sp spacing.Info, isRoiSet bool, logger log.Logger) (*Writer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	env, err := container.Create(path, logger)
	if err != nil {
		return nil, err
	}
	return &Writer{env: env, timing: ti, spacing: sp, isRoiSet: isRoiSet, extra: container.NewExtraProperties(), log: logger}, nil
}

// SetExtraProperties replaces the writer's extra-properties document.
func (w *Writer) SetExtraProperties(e *container.ExtraProperties) { w.extra = e }

// SetIDPSCellSet records the idps.cellset processing metadata.
func (w *Writer) SetIDPSCellSet(method Method, typ SignalType, units Units) error {
	raw, err := json.Marshal(cellSetMeta{Method: method, Type: typ, Units: units})
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	w.extra.Set(container.KeyIDPSCellset, v)
	return nil
}

func (w *Writer) imageBytes() int {
	return int(w.spacing.NumCols()) * int(w.spacing.NumRows()) * 4 // f32
}

func (w *Writer) traceBytes() int {
	return int(w.timing.NumSamples()) * 4 // f32
}

// WriteImageAndTrace appends the next cell in index order. image's
// SpacingInfo must match the file's, and trace's TimingInfo must
// match the file's. Re-writing a previously written cell index is not
// supported; cells must be appended strictly in order.
func (w *Writer) WriteImageAndTrace(im *image.Image, tr *trace.Trace, name string) error {
	if im.Spacing.NumCols() != w.spacing.NumCols() || im.Spacing.NumRows() != w.spacing.NumRows() {
		return errs.New(errs.UserInput, "cell image spacing does not match cell set spacing").WithField("image")
	}
	if tr.Timing.NumSamples() != w.timing.NumSamples() {
		return errs.New(errs.UserInput, "cell trace timing does not match cell set timing").WithField("trace")
	}

	imgBuf := make([]byte, w.imageBytes())
	min := im.MinRowBytes()
	for r := 0; r < int(im.Spacing.NumRows()); r++ {
		src := im.Data[r*im.RowBytes : r*im.RowBytes+min]
		copy(imgBuf[r*min:(r+1)*min], src)
	}
	if _, err := w.env.WritePayload(imgBuf); err != nil {
		return err
	}

	traceBuf := make([]byte, w.traceBytes())
	for i, v := range tr.Values {
		if !w.timing.IsValid(uint64(i)) {
			v = float32(math.NaN())
		}
		binary.LittleEndian.PutUint32(traceBuf[i*4:i*4+4], math.Float32bits(v))
	}
	if _, err := w.env.WritePayload(traceBuf); err != nil {
		return err
	}

	w.cells = append(w.cells, pendingCell{name: name, status: Undecided, metrics: computeFootprintMetrics(im)})
	return nil
}

// computeFootprintMetrics derives a weighted centroid and footprint
// size from a cell's footprint image, using each pixel's intensity as
// its weight. Pixels at or below zero do not contribute.
func computeFootprintMetrics(im *image.Image) Metrics {
	cols := int(im.Spacing.NumCols())
	rows := int(im.Spacing.NumRows())
	var xs, ys, ws []float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			off := r*im.RowBytes + c*4
			v := math.Float32frombits(binary.LittleEndian.Uint32(im.Data[off : off+4]))
			if v <= 0 {
				continue
			}
			xs = append(xs, float64(c))
			ys = append(ys, float64(r))
			ws = append(ws, float64(v))
		}
	}
	if len(ws) == 0 {
		return Metrics{}
	}
	cx := stat.Mean(xs, ws)
	cy := stat.Mean(ys, ws)
	var size float64
	for _, w := range ws {
		size += w
	}
	n := len(ws)
	return Metrics{CentroidX: &cx, CentroidY: &cy, Size: &size, NumComponents: &n}
}

// SetCellStatus sets the status of an already-written cell.
func (w *Writer) SetCellStatus(index int, status Status) error {
	if index < 0 || index >= len(w.cells) {
		return errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", index, len(w.cells)).WithField("index")
	}
	w.cells[index].status = status
	return nil
}

// SetCellMetrics sets the optional metrics of an already-written cell.
func (w *Writer) SetCellMetrics(index int, m Metrics) error {
	if index < 0 || index >= len(w.cells) {
		return errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", index, len(w.cells)).WithField("index")
	}
	w.cells[index].metrics = m
	return nil
}

// Close seals the cell set file, filling in default names ("C<d>",
// zero-padded to the width of num_cells-1) for any cell written
// without an explicit name.
func (w *Writer) Close() error {
	n := len(w.cells)
	width := len(fmt.Sprintf("%d", maxInt(n-1, 0)))
	cells := make([]cellMeta, n)
	for i, c := range w.cells {
		name := c.name
		if name == "" {
			name = fmt.Sprintf("C%0*d", width, i)
		}
		cells[i] = cellMeta{Name: name, Status: c.status.String(), Metrics: c.metrics}
	}

	extraRaw, err := w.extra.Raw()
	if err != nil {
		return err
	}
	header := Header{
		Common: container.Common{
			Version:         1,
			Type:            container.TypeCellSet,
			Timing:          w.timing,
			Spacing:         &w.spacing,
			ExtraProperties: extraRaw,
		},
		IsRoiSet: w.isRoiSet,
		Cells:    cells,
	}
	return w.env.Seal(header)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Reader provides random-access reads of a sealed cell set file.
type Reader struct {
	env     *container.Reader
	header  Header
	spacing spacing.Info
	extra   *container.ExtraProperties
}

// Open opens an existing cell set file for reading.
func Open(path string) (*Reader, error) {
	env, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(env.HeaderBytes(), &h); err != nil {
		env.Close()
		return nil, errs.Wrap(errs.DataIO, err, "parse cell set header").WithPath(path)
	}
	if h.Type != container.TypeCellSet {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "expected cell set type, got %q", h.Type).WithPath(path)
	}
	if h.Spacing == nil {
		env.Close()
		return nil, errs.New(errs.DataIO, "cell set header missing spacingInfo").WithPath(path)
	}
	extra, err := container.ParseExtraProperties(h.ExtraProperties)
	if err != nil {
		env.Close()
		return nil, err
	}
	return &Reader{env: env, header: h, spacing: *h.Spacing, extra: extra}, nil
}

// Close releases the reader's file handle/mapping.
func (r *Reader) Close() error { return r.env.Close() }

// Timing returns the cell set's TimingInfo.
func (r *Reader) Timing() timing.Info { return r.header.Timing }

// Spacing returns the cell set's SpacingInfo.
func (r *Reader) Spacing() spacing.Info { return r.spacing }

// ExtraProperties returns the cell set's extra-properties document.
func (r *Reader) ExtraProperties() *container.ExtraProperties { return r.extra }

// NumCells returns the number of cells in the file.
func (r *Reader) NumCells() int { return len(r.header.Cells) }

// CellName returns the name of cell c.
func (r *Reader) CellName(c int) (string, error) {
	if c < 0 || c >= len(r.header.Cells) {
		return "", errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", c, len(r.header.Cells)).WithField("index")
	}
	return r.header.Cells[c].Name, nil
}

// CellStatus returns the status of cell c.
func (r *Reader) CellStatus(c int) (Status, error) {
	if c < 0 || c >= len(r.header.Cells) {
		return 0, errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", c, len(r.header.Cells)).WithField("index")
	}
	return parseStatus(r.header.Cells[c].Status)
}

// CellMetrics returns the metrics of cell c.
func (r *Reader) CellMetrics(c int) (Metrics, error) {
	if c < 0 || c >= len(r.header.Cells) {
		return Metrics{}, errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", c, len(r.header.Cells)).WithField("index")
	}
	return r.header.Cells[c].Metrics, nil
}

func (r *Reader) imageBytes() int {
	return int(r.spacing.NumCols()) * int(r.spacing.NumRows()) * 4
}

func (r *Reader) traceBytes() int {
	return int(r.header.Timing.NumSamples()) * 4
}

func (r *Reader) recordBytes() int { return r.imageBytes() + r.traceBytes() }

// CellImage returns the footprint image of cell c.
func (r *Reader) CellImage(c int) (*image.Image, error) {
	if c < 0 || c >= len(r.header.Cells) {
		return nil, errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", c, len(r.header.Cells)).WithField("index")
	}
	im, err := image.New(r.spacing, image.F32, 1, 0)
	if err != nil {
		return nil, err
	}
	offset := int64(c) * int64(r.recordBytes())
	if _, err := r.env.ReadAt(im.Data, offset); err != nil {
		return nil, err
	}
	return im, nil
}

// CellTrace returns the time series of cell c, with non-valid indices
// decoded as NaN.
func (r *Reader) CellTrace(c int) (*trace.Trace, error) {
	if c < 0 || c >= len(r.header.Cells) {
		return nil, errs.Newf(errs.UserInput, "cell index %d out of range [0,%d)", c, len(r.header.Cells)).WithField("index")
	}
	buf := make([]byte, r.traceBytes())
	offset := int64(c)*int64(r.recordBytes()) + int64(r.imageBytes())
	if _, err := r.env.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	tr := trace.New(r.header.Timing)
	for i := range tr.Values {
		tr.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return tr, nil
}
