/*
NAME
  extraproperties.go

DESCRIPTION
  extraproperties.go treats the header's free-form "extraProperties"
  JSON document as a loosely-typed sub-document: typed accessors for
  the recognized keys, and a raw string accessor for everything else.
  Setters never rewrite keys the accessors don't understand.

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
)

// ExtraProperties is a loosely-typed JSON sub-document carried through
// every read/write cycle unmodified except where a typed accessor's
// Set method is used.
type ExtraProperties struct {
	raw map[string]interface{}
}

// NewExtraProperties returns an empty ExtraProperties document.
func NewExtraProperties() *ExtraProperties {
	return &ExtraProperties{raw: map[string]interface{}{}}
}

// ParseExtraProperties parses data (which may be empty) into an
// ExtraProperties, preserving every key it does not recognize.
func ParseExtraProperties(data json.RawMessage) (*ExtraProperties, error) {
	if len(data) == 0 {
		return NewExtraProperties(), nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.DataIO, err, "parse extraProperties")
	}
	return &ExtraProperties{raw: raw}, nil
}

// Raw returns the full JSON document, including unrecognized keys.
func (e *ExtraProperties) Raw() (json.RawMessage, error) {
	if e == nil || len(e.raw) == 0 {
		return nil, nil
	}
	return json.Marshal(e.raw)
}

// String returns the raw document as a string, a fallback accessor
// for keys with no typed getter.
func (e *ExtraProperties) String() string {
	raw, err := e.Raw()
	if err != nil || raw == nil {
		return "{}"
	}
	return string(raw)
}

func dottedGet(m map[string]interface{}, path []string) (interface{}, bool) {
	cur := interface{}(m)
	for _, key := range path {
		mm, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = mm[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func dottedSet(m map[string]interface{}, path []string, value interface{}) {
	cur := m
	for i, key := range path {
		if i == len(path)-1 {
			cur[key] = value
			return
		}
		next, ok := cur[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[key] = next
		}
		cur = next
	}
}

// GetString reads a recognized dotted key (e.g. "probe.name",
// "cameraName") as a string. Recognized top-level families are
// probe.*, microscope.*, idps.*, processingInterface.*,
// trackingInterface.*, and cameraName.
func (e *ExtraProperties) GetString(dottedKey string) (string, bool) {
	v, ok := dottedGet(e.raw, splitDotted(dottedKey))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat reads a recognized dotted key as a float64.
func (e *ExtraProperties) GetFloat(dottedKey string) (float64, bool) {
	v, ok := dottedGet(e.raw, splitDotted(dottedKey))
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetBool reads a recognized dotted key as a bool.
func (e *ExtraProperties) GetBool(dottedKey string) (bool, bool) {
	v, ok := dottedGet(e.raw, splitDotted(dottedKey))
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Set writes value at dottedKey without disturbing any other key,
// recognized or not.
func (e *ExtraProperties) Set(dottedKey string, value interface{}) {
	if e.raw == nil {
		e.raw = map[string]interface{}{}
	}
	dottedSet(e.raw, splitDotted(dottedKey), value)
}

func splitDotted(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// Recognized top-level extra-properties key families.
const (
	KeyProbeName             = "probe.name"
	KeyProbeID               = "probe.id"
	KeyProbeType             = "probe.type"
	KeyProbeLength           = "probe.length"
	KeyProbeDiameter         = "probe.diameter"
	KeyMicroscopeType        = "microscope.type"
	KeyMicroscopeFocus       = "microscope.focus"
	KeyMicroscopeDownSample  = "microscope.downSamplingFactor"
	KeyMicroscopeWidefield   = "microscope.widefield"
	KeyMicroscopeDualColor   = "microscope.dualColor"
	KeyIDPSIntegratedBase    = "idps.integratedBasePlate"
	KeyIDPSPixelsPerCm       = "idps.pixelsPerCm"
	KeyIDPSSpatialDownsample = "idps.spatialDownsampling"
	KeyIDPSTemporalDownsample = "idps.temporalDownsampling"
	KeyIDPSPreMC             = "idps.pre_mc"
	KeyIDPSMCPadding         = "idps.mc_padding"
	KeyIDPSInterpolatedFrames = "idps.interpolatedFrames"
	KeyIDPSChannel           = "idps.channel"
	KeyIDPSEfocus            = "idps.efocus"
	KeyIDPSCellset           = "idps.cellset"
	KeyIDPSVesselset         = "idps.vesselset"
	KeyIDPSPcaicaEstimated   = "idps.pcaica.estimated"
	KeyIDPSCnmfeEstimated    = "idps.cnmfe.estimated"
	KeyCameraName            = "cameraName"
)
