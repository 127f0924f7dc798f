/*
NAME
  vesselset.go

DESCRIPTION
  vesselset.go implements the VesselSet native container: per-vessel
  projection image + geometry line + trace(s), with an optional
  per-frame correlation volume for RBC_VELOCITY vessels.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package vesselset implements the VesselSet native container: per-
// vessel projection images, geometry lines, and diameter or velocity
// traces, with optional RBC-velocity correlation volumes.
package vesselset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
)

// SetType distinguishes the two VesselSet subtypes.
type SetType string

// The two recognized vessel set subtypes.
const (
	VesselDiameter SetType = "VESSEL_DIAMETER"
	RBCVelocity    SetType = "RBC_VELOCITY"
)

// Units is the unit family for vessel traces.
type Units string

// Recognized vessel trace units.
const (
	UnitsPixels            Units = "PIXELS"
	UnitsMicrons           Units = "MICRONS"
	UnitsPixelsPerSecond   Units = "PIXELS_PER_SECOND"
	UnitsMicronsPerSecond  Units = "MICRONS_PER_SECOND"
)

// ProjectionType is the temporal reduction used to build a vessel's
// projection image.
type ProjectionType string

// Recognized projection reductions.
const (
	ProjectionMean   ProjectionType = "MEAN"
	ProjectionMin    ProjectionType = "MIN"
	ProjectionMax    ProjectionType = "MAX"
	ProjectionStdDev ProjectionType = "STANDARD_DEVIATION"
)

// Status mirrors cellset.Status: a vessel is recorded as accepted,
// undecided or rejected.
type Status int

// The three vessel statuses.
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
		return 0, errs.Newf(errs.DataIO, "unrecognized vessel status %q", s)
	}
}

// Point is an integer pixel coordinate in a vessel's geometry line.
type Point struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// vesselMeta is one entry in the header's "vessels" array.
type vesselMeta struct {
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	Line         []Point `json:"line"`
	CorrWidth    int     `json:"corrWidth,omitempty"`
	CorrHeight   int     `json:"corrHeight,omitempty"`
	HasCorrelations bool `json:"hasCorrelations,omitempty"`
}

// Header is the "vessel set" JSON header.
type Header struct {
	container.Common
	VesselSetType  string   `json:"vesselSetType"`
	Units          string   `json:"units"`
	ProjectionType string   `json:"projectionType"`
	TimeWindow     float64  `json:"timeWindow"`
	TimeIncrement  float64  `json:"timeIncrement"`
	InputMovieFps  float64  `json:"inputMovieFps,omitempty"`
	Vessels        []vesselMeta `json:"vessels"`
}

// vesselSetMeta is the idps.vesselset extraProperties object.
type vesselSetMeta struct {
	Type             string                   `json:"type"`
	Units            string                   `json:"units"`
	ProjectionType   string                   `json:"projectionType"`
	TimeWindow       float64                  `json:"timeWindow"`
	TimeIncrement    float64                  `json:"timeIncrement"`
	EstimationMethod string                   `json:"estimationMethod,omitempty"`
	InputMovieFps    float64                  `json:"inputMovieFps,omitempty"`
	ClippedVessels   map[string][]uint64      `json:"clippedVessels,omitempty"`
	NoSignificant    map[string][]uint64      `json:"noSignificantVessels,omitempty"`
	DirectionChanged map[string][]uint64      `json:"directionChangedVessels,omitempty"`
	InvalidWindows   []uint64                 `json:"invalidWindows,omitempty"`
}

type pendingVessel struct {
	name            string
	status          Status
	line            []Point
	hasCorrelations bool
	corrW, corrH    int
}

// Writer creates a new vessel set file.
type Writer struct {
	env            *container.Writer
	timing         timing.Info
	spacing        spacing.Info
	setType        SetType
	units          Units
	projectionType ProjectionType
	timeWindow     float64
	timeIncrement  float64
	inputMovieFps  float64
	vessels        []pendingVessel
	extra          *container.ExtraProperties
	log            log.Logger
}

// Params bundles the fixed, whole-file metadata for a new vessel set.
type Params struct {
	SetType        SetType
	Units          Units
	ProjectionType ProjectionType
	TimeWindow     float64
	TimeIncrement  float64
	InputMovieFps  float64 // velocity sets only
}

// Create opens a new vessel set file for writing.
func Create(path string, ti timing.Info, sp spacing.Info, p Params, logger log.Logger) (*Writer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	env, err := container.Create(path, logger)
	if err != nil {
		return nil, err
	}
	return &Writer{
		env: env, timing: ti, spacing: sp,
		setType: p.SetType, units: p.Units, projectionType: p.ProjectionType,
		timeWindow: p.TimeWindow, timeIncrement: p.TimeIncrement, inputMovieFps: p.InputMovieFps,
		extra: container.NewExtraProperties(), log: logger,
	}, nil
}

// SetExtraProperties replaces the writer's extra-properties document.
func (w *Writer) SetExtraProperties(e *container.ExtraProperties) { w.extra = e }

// SetIDPSVesselSet records the idps.vesselset processing metadata.
func (w *Writer) SetIDPSVesselSet(estimationMethod string, clipped, noSignificant, directionChanged map[string][]uint64, invalidWindows []uint64) error {
	raw, err := json.Marshal(vesselSetMeta{
		Type: string(w.setType), Units: string(w.units), ProjectionType: string(w.projectionType),
		TimeWindow: w.timeWindow, TimeIncrement: w.timeIncrement, EstimationMethod: estimationMethod,
		InputMovieFps: w.inputMovieFps, ClippedVessels: clipped, NoSignificant: noSignificant,
		DirectionChanged: directionChanged, InvalidWindows: invalidWindows,
	})
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	w.extra.Set(container.KeyIDPSVesselset, v)
	return nil
}

func (w *Writer) projectionBytes() int {
	return int(w.spacing.NumCols()) * int(w.spacing.NumRows()) * 4
}

func (w *Writer) traceBytes() int {
	return int(w.timing.NumSamples()) * 4
}

func encodeTrace(ti timing.Info, tr *trace.Trace) []byte {
	buf := make([]byte, int(ti.NumSamples())*4)
	for i, v := range tr.Values {
		if !ti.IsValid(uint64(i)) {
			v = float32(math.NaN())
		}
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// WriteDiameterVessel appends a VESSEL_DIAMETER vessel: a projection
// image, a 2-point geometry line, a diameter trace and a center
// trace. Vessels must be appended in order; re-writing a vessel is
// not supported.
func (w *Writer) WriteDiameterVessel(projection *image.Image, line []Point, diameter, center *trace.Trace, name string) error {
	if w.setType != VesselDiameter {
		return errs.New(errs.UserInput, "WriteDiameterVessel requires a VESSEL_DIAMETER set")
	}
	if len(line) != 2 {
		return errs.Newf(errs.UserInput, "diameter vessel line must have 2 points, got %d", len(line)).WithField("line")
	}
	if err := w.writeProjection(projection); err != nil {
		return err
	}
	if err := w.writeTrace(diameter); err != nil {
		return err
	}
	if err := w.writeTrace(center); err != nil {
		return err
	}
	w.vessels = append(w.vessels, pendingVessel{name: name, status: Undecided, line: line})
	return nil
}

// WriteVelocityVessel appends an RBC_VELOCITY vessel: a projection
// image, a 4-point geometry line, a velocity trace, a direction
// trace, and — if corr is non-nil — a per-frame correlation volume
// of three (corrW, corrH) maps.
func (w *Writer) WriteVelocityVessel(projection *image.Image, line []Point, velocity, direction *trace.Trace, corr *CorrelationVolume, name string) error {
	if w.setType != RBCVelocity {
		return errs.New(errs.UserInput, "WriteVelocityVessel requires an RBC_VELOCITY set")
	}
	if len(line) != 4 {
		return errs.Newf(errs.UserInput, "velocity vessel line must have 4 points, got %d", len(line)).WithField("line")
	}
	if err := w.writeProjection(projection); err != nil {
		return err
	}
	if err := w.writeTrace(velocity); err != nil {
		return err
	}
	if err := w.writeTrace(direction); err != nil {
		return err
	}
	v := pendingVessel{name: name, status: Undecided, line: line}
	if corr != nil {
		if corr.Width <= 0 || corr.Height <= 0 {
			return errs.New(errs.UserInput, "correlation volume must have positive width/height").WithField("corr")
		}
		want := int(w.timing.NumSamples()) * 3 * corr.Width * corr.Height
		if len(corr.Data) != want {
			return errs.Newf(errs.UserInput, "correlation volume has %d samples, want %d", len(corr.Data), want).WithField("corr")
		}
		buf := make([]byte, len(corr.Data)*4)
		for i, f := range corr.Data {
			binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
		}
		if _, err := w.env.WritePayload(buf); err != nil {
			return err
		}
		v.hasCorrelations = true
		v.corrW, v.corrH = corr.Width, corr.Height
	}
	w.vessels = append(w.vessels, v)
	return nil
}

func (w *Writer) writeProjection(im *image.Image) error {
	if im.Spacing.NumCols() != w.spacing.NumCols() || im.Spacing.NumRows() != w.spacing.NumRows() {
		return errs.New(errs.UserInput, "projection image spacing does not match vessel set spacing").WithField("image")
	}
	buf := make([]byte, w.projectionBytes())
	min := im.MinRowBytes()
	for r := 0; r < int(im.Spacing.NumRows()); r++ {
		src := im.Data[r*im.RowBytes : r*im.RowBytes+min]
		copy(buf[r*min:(r+1)*min], src)
	}
	_, err := w.env.WritePayload(buf)
	return err
}

func (w *Writer) writeTrace(tr *trace.Trace) error {
	if tr.Timing.NumSamples() != w.timing.NumSamples() {
		return errs.New(errs.UserInput, "vessel trace timing does not match vessel set timing").WithField("trace")
	}
	_, err := w.env.WritePayload(encodeTrace(w.timing, tr))
	return err
}

// SetVesselStatus sets the status of an already-written vessel.
func (w *Writer) SetVesselStatus(index int, status Status) error {
	if index < 0 || index >= len(w.vessels) {
		return errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", index, len(w.vessels)).WithField("index")
	}
	w.vessels[index].status = status
	return nil
}

// Close seals the vessel set file, filling in default names ("V<d>",
// zero-padded to the width of num_vessels-1) for any vessel written
// without an explicit name.
func (w *Writer) Close() error {
	width := len(fmt.Sprintf("%d", maxInt(len(w.vessels)-1, 0)))
	vessels := make([]vesselMeta, len(w.vessels))
	for i, v := range w.vessels {
		name := v.name
		if name == "" {
			name = fmt.Sprintf("V%0*d", width, i)
		}
		vessels[i] = vesselMeta{
			Name: name, Status: v.status.String(), Line: v.line,
			HasCorrelations: v.hasCorrelations, CorrWidth: v.corrW, CorrHeight: v.corrH,
		}
	}
	extraRaw, err := w.extra.Raw()
	if err != nil {
		return err
	}
	header := Header{
		Common: container.Common{
			Version: 1, Type: container.TypeVesselSet, Timing: w.timing,
			Spacing: &w.spacing, ExtraProperties: extraRaw,
		},
		VesselSetType: string(w.setType), Units: string(w.units), ProjectionType: string(w.projectionType),
		TimeWindow: w.timeWindow, TimeIncrement: w.timeIncrement, InputMovieFps: w.inputMovieFps,
		Vessels: vessels,
	}
	return w.env.Seal(header)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CorrelationVolume is the per-vessel, per-frame cross-correlation
// payload for RBC_VELOCITY vessels: NumSamples frames of three
// (Width, Height) maps each, stored frame-major then map-major.
type CorrelationVolume struct {
	Width, Height int
	Data          []float32
}

// ComputeCorrelationVolume returns the FFT-based cross-correlation of
// two pixel traces taken along a vessel's direction axis: element k,
// for k in [0, len(a)), is the sum over i of a[i+k]*b[i], with both
// traces zero beyond their ends. It returns nil when a is empty or b
// has a different length. It returns one raw correlation sequence; it
// does not build a CorrelationVolume or its peak, secondary peak and
// confidence maps.
func ComputeCorrelationVolume(a, b []float64) []float64 {
	n := len(a)
	if n == 0 || len(b) != n {
		return nil
	}
	size := 1
	for size < 2*n {
		size *= 2
	}
	fa := make([]float64, size)
	fb := make([]float64, size)
	copy(fa, a)
	copy(fb, b)

	fft := fourier.NewFFT(size)
	ca := fft.Coefficients(nil, fa)
	cb := fft.Coefficients(nil, fb)
	for i := range ca {
		ca[i] = ca[i] * cmplxConj(cb[i])
	}
	corr := fft.Sequence(nil, ca)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = corr[i] / float64(size)
	}
	return out
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Reader provides random-access reads of a sealed vessel set file.
type Reader struct {
	env     *container.Reader
	header  Header
	spacing spacing.Info
	extra   *container.ExtraProperties
}

// Open opens an existing vessel set file for reading.
func Open(path string) (*Reader, error) {
	env, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(env.HeaderBytes(), &h); err != nil {
		env.Close()
		return nil, errs.Wrap(errs.DataIO, err, "parse vessel set header").WithPath(path)
	}
	if h.Type != container.TypeVesselSet {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "expected vessel set type, got %q", h.Type).WithPath(path)
	}
	if h.Spacing == nil {
		env.Close()
		return nil, errs.New(errs.DataIO, "vessel set header missing spacingInfo").WithPath(path)
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

// Timing returns the vessel set's TimingInfo.
func (r *Reader) Timing() timing.Info { return r.header.Timing }

// Spacing returns the vessel set's SpacingInfo.
func (r *Reader) Spacing() spacing.Info { return r.spacing }

// ExtraProperties returns the vessel set's extra-properties document.
func (r *Reader) ExtraProperties() *container.ExtraProperties { return r.extra }

// SetType returns the vessel set's subtype.
func (r *Reader) SetType() SetType { return SetType(r.header.VesselSetType) }

// NumVessels returns the number of vessels in the file.
func (r *Reader) NumVessels() int { return len(r.header.Vessels) }

// VesselName returns the name of vessel v.
func (r *Reader) VesselName(v int) (string, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return "", errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	return r.header.Vessels[v].Name, nil
}

// VesselStatus returns the status of vessel v.
func (r *Reader) VesselStatus(v int) (Status, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return 0, errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	return parseStatus(r.header.Vessels[v].Status)
}

// VesselLine returns the geometry line of vessel v.
func (r *Reader) VesselLine(v int) ([]Point, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return nil, errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	return r.header.Vessels[v].Line, nil
}

func (r *Reader) projectionBytes() int {
	return int(r.spacing.NumCols()) * int(r.spacing.NumRows()) * 4
}

func (r *Reader) traceBytes() int {
	return int(r.header.Timing.NumSamples()) * 4
}

func (r *Reader) recordBytes(v int) int {
	n := r.projectionBytes()
	switch SetType(r.header.VesselSetType) {
	case VesselDiameter:
		n += 2 * r.traceBytes()
	case RBCVelocity:
		n += 2 * r.traceBytes()
		if r.header.Vessels[v].HasCorrelations {
			n += int(r.header.Timing.NumSamples()) * 3 * r.header.Vessels[v].CorrWidth * r.header.Vessels[v].CorrHeight * 4
		}
	}
	return n
}

func (r *Reader) vesselOffset(v int) int64 {
	var off int64
	for i := 0; i < v; i++ {
		off += int64(r.recordBytes(i))
	}
	return off
}

// VesselProjection returns the projection image of vessel v.
func (r *Reader) VesselProjection(v int) (*image.Image, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return nil, errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	im, err := image.New(r.spacing, image.F32, 1, 0)
	if err != nil {
		return nil, err
	}
	if _, err := r.env.ReadAt(im.Data, r.vesselOffset(v)); err != nil {
		return nil, err
	}
	return im, nil
}

func (r *Reader) readTrace(v int, which int) (*trace.Trace, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return nil, errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	buf := make([]byte, r.traceBytes())
	offset := r.vesselOffset(v) + int64(r.projectionBytes()) + int64(which)*int64(r.traceBytes())
	if _, err := r.env.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	tr := trace.New(r.header.Timing)
	for i := range tr.Values {
		tr.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return tr, nil
}

// VesselTrace returns the primary trace (diameter or velocity) of
// vessel v.
func (r *Reader) VesselTrace(v int) (*trace.Trace, error) { return r.readTrace(v, 0) }

// VesselSecondaryTrace returns the secondary trace (center or
// direction) of vessel v.
func (r *Reader) VesselSecondaryTrace(v int) (*trace.Trace, error) { return r.readTrace(v, 1) }

// VesselCorrelationVolume returns the raw correlation volume of
// vessel v, or nil if it was written without one.
func (r *Reader) VesselCorrelationVolume(v int) (*CorrelationVolume, error) {
	if v < 0 || v >= len(r.header.Vessels) {
		return nil, errs.Newf(errs.UserInput, "vessel index %d out of range [0,%d)", v, len(r.header.Vessels)).WithField("index")
	}
	vm := r.header.Vessels[v]
	if !vm.HasCorrelations {
		return nil, nil
	}
	n := int(r.header.Timing.NumSamples()) * 3 * vm.CorrWidth * vm.CorrHeight
	buf := make([]byte, n*4)
	offset := r.vesselOffset(v) + int64(r.projectionBytes()) + 2*int64(r.traceBytes())
	if _, err := r.env.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return &CorrelationVolume{Width: vm.CorrWidth, Height: vm.CorrHeight, Data: data}, nil
}
