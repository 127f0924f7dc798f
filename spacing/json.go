/*
NAME
  json.go

DESCRIPTION
  json.go gives Info a stable JSON representation for the container
  header's "spacingInfo" object.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package spacing

import (
	"encoding/json"

	"github.com/cortexlab/isxcore/rational"
)

type jsonRational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

func toJR(r rational.Rational) jsonRational   { return jsonRational{r.Num, r.Den} }
func fromJR(r jsonRational) rational.Rational { return rational.Rational{Num: r.Num, Den: r.Den} }

type jsonPoint struct {
	X jsonRational `json:"x"`
	Y jsonRational `json:"y"`
}

type jsonInfo struct {
	NumCols   uint32    `json:"numCols"`
	NumRows   uint32    `json:"numRows"`
	PixelSize jsonPoint `json:"pixelSize"`
	TopLeft   jsonPoint `json:"topLeft"`
}

// MarshalJSON renders Info as the "spacingInfo" object every
// image-grid modality requires.
func (s Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonInfo{
		NumCols:   s.numCols,
		NumRows:   s.numRows,
		PixelSize: jsonPoint{toJR(s.pixelSize.X), toJR(s.pixelSize.Y)},
		TopLeft:   jsonPoint{toJR(s.topLeft.X), toJR(s.topLeft.Y)},
	})
}

// UnmarshalJSON parses a "spacingInfo" header object and re-validates
// its invariants.
func (s *Info) UnmarshalJSON(data []byte) error {
	var j jsonInfo
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	info, err := New(
		j.NumCols, j.NumRows,
		Point{X: fromJR(j.PixelSize.X), Y: fromJR(j.PixelSize.Y)},
		Point{X: fromJR(j.TopLeft.X), Y: fromJR(j.TopLeft.Y)},
	)
	if err != nil {
		return err
	}
	*s = info
	return nil
}
