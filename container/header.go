/*
NAME
  header.go

DESCRIPTION
  header.go defines Common, the fields every native container header
  carries, embedded by each modality's own header type.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package container

import (
	"encoding/json"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/image"
	"github.com/cortexlab/isxcore/spacing"
	"github.com/cortexlab/isxcore/timing"
)

// Modality type tags, as recorded in the header's "type" field.
const (
	TypeMovie    = "miniscope movie"
	TypeCellSet  = "cell set"
	TypeVesselSet = "vessel set"
	TypeEvents   = "events"
	TypeGpio     = "gpio"
	TypeImu      = "imu"
)

// Common holds the fields every native header carries regardless of
// modality: version, type tag, timing, and — for image-grid
// modalities — spacing and data type, plus the free-form extra
// properties blob.
type Common struct {
	Version         int             `json:"version"`
	Type            string          `json:"type"`
	Timing          timing.Info     `json:"timingInfo"`
	Spacing         *spacing.Info   `json:"spacingInfo,omitempty"`
	DataType        *string         `json:"dataType,omitempty"`
	ExtraProperties json.RawMessage `json:"extraProperties,omitempty"`
}

// dataTypeString renders an image.DataType as the header's "dataType"
// string; it always returns a non-nil pointer.
func dataTypeString(dt image.DataType) *string {
	s := dt.String()
	return &s
}

// parseDataType inverts dataTypeString, returning a DataIO error for
// an unrecognized name.
func parseDataType(s string) (image.DataType, error) {
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
