/*
NAME
  nvision.go

DESCRIPTION
  nvision.go names ExportNVisionMovieTracking as a boundary function:
  nVision behavior-tracking output is a vendor format with no wire
  layout implemented here, so this always returns an error directing
  the caller to an external encoder, the same treatment as ExportMovie's
  Nwb/Mp4 formats.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

package export

import (
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/task"
)

// ExportNVisionMovieTracking has no encoder in this package; nVision
// tracking export is named only so callers can route p to an external
// collaborator.
func ExportNVisionMovieTracking(p NVisionMovieTrackingExporterParams) (task.Status, error) {
	return task.ErrorException, errs.New(errs.UserInput, "nVision movie tracking export has no encoder in this package").WithField("source")
}
