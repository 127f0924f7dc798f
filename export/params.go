/*
NAME
  params.go

DESCRIPTION
  params.go defines the exporter parameter records: the typed requests
  a caller builds and hands to one of this package's Export* functions,
  each collecting every knob an export needs into one struct built up
  front.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package export implements the exporters driven by the core
// readers: CSV and TIFF are concrete; MP4 and NWB are named as
// boundary interfaces only.
package export

import (
	"github.com/cortexlab/isxcore/container/cellset"
	"github.com/cortexlab/isxcore/container/events"
	"github.com/cortexlab/isxcore/container/movie"
	"github.com/cortexlab/isxcore/container/vesselset"
)

// Format is a movie export's output container.
type Format string

// The three movie export formats. Only Tiff has a concrete encoder in
// this package; Nwb and Mp4 are named so callers can route to an
// external encoder at the vendor-container boundary.
const (
	Nwb  Format = "NWB"
	Tiff Format = "TIFF"
	Mp4  Format = "MP4"
)

// RelativeTo is the reference instant a timestamp export is
// expressed against.
type RelativeTo string

// The three reference instants a timestamp export can use.
const (
	FirstDataItem RelativeTo = "FIRST_DATA_ITEM"
	UnixEpoch     RelativeTo = "UNIX_EPOCH"
	TSC           RelativeTo = "TSC"
)

// MovieExporterParams drives ExportMovie: the valid frames of one or
// more movies written in the given Format. Only Tiff is encoded, as one
// frame_%06d.tiff file per valid frame in the directory OutputPath; no
// single muxed output file is produced.
type MovieExporterParams struct {
	Sources    []*movie.Reader
	OutputPath string
	Format     Format
}

// MovieTimestampExporterParams drives ExportMovieTimestamps: one CSV
// row per frame across Sources, giving each frame's timestamp
// relative to RelativeTo.
type MovieTimestampExporterParams struct {
	Sources    []*movie.Reader
	Path       string
	RelativeTo RelativeTo
}

// CellSetExporterParams drives ExportCellSet: one CSV file per trace
// plus one TIFF per footprint, or just the traces if Footprints is
// false.
type CellSetExporterParams struct {
	Source     *cellset.Reader
	OutputDir  string
	Footprints bool
}

// VesselSetExporterParams drives ExportVesselSet: one CSV per trace
// plus, for RBC_VELOCITY sets with correlation data, one CSV per
// vessel's correlation volume.
type VesselSetExporterParams struct {
	Source       *vesselset.Reader
	OutputDir    string
	Correlations bool
}

// EventsExporterParams drives ExportEvents: one CSV with columns
// (channel, offset_us, value), or one CSV per channel if Split is
// true.
type EventsExporterParams struct {
	Source     *events.Reader
	OutputPath string
	Split      bool
}

// NVisionMovieTrackingExporterParams names the parameter record for
// nVision behavior-tracking export. nVision tracking output is a
// vendor format with no wire layout implemented here; this struct
// exists so callers can route the request to an external
// collaborator, the same boundary-interface treatment as Nwb/Mp4.
type NVisionMovieTrackingExporterParams struct {
	Source     *movie.Reader
	OutputPath string
}
