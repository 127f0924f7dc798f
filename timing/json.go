/*
NAME
  json.go

DESCRIPTION
  json.go gives Info a stable JSON representation for the container
  header, keeping every field exact (Rationals serialize as
  num/den pairs, never as floats).

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package timing

import (
	"encoding/json"

	"github.com/cortexlab/isxcore/rational"
)

type jsonRational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

func toJSONRational(r rational.Rational) jsonRational { return jsonRational{r.Num, r.Den} }
func fromJSONRational(r jsonRational) rational.Rational { return rational.Rational{Num: r.Num, Den: r.Den} }

type jsonTime struct {
	SecsSinceEpoch jsonRational `json:"secsSinceEpoch"`
	UTCOffsetSecs  int32        `json:"utcOffsetSecs"`
}

type jsonIndexRange struct {
	First uint64 `json:"first"`
	Last  uint64 `json:"last"`
}

type jsonInfo struct {
	Start      jsonTime         `json:"start"`
	Step       jsonRational     `json:"step"`
	NumSamples uint64           `json:"numSamples"`
	Dropped    []uint64         `json:"dropped"`
	Cropped    []jsonIndexRange `json:"cropped"`
	Blank      []uint64         `json:"blank"`
}

// MarshalJSON renders Info as the "timingInfo" object every native
// header requires.
func (t Info) MarshalJSON() ([]byte, error) {
	cropped := make([]jsonIndexRange, len(t.cropped))
	for i, c := range t.cropped {
		cropped[i] = jsonIndexRange{c.First, c.Last}
	}
	return json.Marshal(jsonInfo{
		Start: jsonTime{
			SecsSinceEpoch: toJSONRational(t.start.SecsSinceEpoch),
			UTCOffsetSecs:  t.start.UTCOffsetSecs,
		},
		Step:       toJSONRational(t.step),
		NumSamples: t.numSamples,
		Dropped:    t.dropped,
		Cropped:    cropped,
		Blank:      t.blank,
	})
}

// UnmarshalJSON parses a "timingInfo" header object and re-validates
// its invariants, so a corrupted or hand-edited header fails cleanly
// with a DataIO error rather than producing an inconsistent Info.
func (t *Info) UnmarshalJSON(data []byte) error {
	var j jsonInfo
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	cropped := make([]IndexRange, len(j.Cropped))
	for i, c := range j.Cropped {
		cropped[i] = IndexRange{c.First, c.Last}
	}
	start := rational.Time{
		SecsSinceEpoch: fromJSONRational(j.Start.SecsSinceEpoch),
		UTCOffsetSecs:  j.Start.UTCOffsetSecs,
	}
	info, err := New(
		start,
		fromJSONRational(j.Step),
		j.NumSamples,
		j.Dropped,
		cropped,
		j.Blank,
	)
	if err != nil {
		return err
	}
	*t = info
	return nil
}
