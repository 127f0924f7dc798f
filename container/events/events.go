/*
NAME
  events.go

DESCRIPTION
  events.go implements EventsFile v2: a multi-channel sparse packet
  stream, reused identically for the gpio/imu type tags.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package events implements the EventsFile native container: a
// sparse, multi-channel packet stream shared by events, gpio and imu
// files.
package events

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/cortexlab/isxcore/container"
	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
	"github.com/cortexlab/isxcore/rational"
	"github.com/cortexlab/isxcore/timing"
	"github.com/cortexlab/isxcore/trace"
)

// Version2 is the only recognized EventsFile version.
const Version2 = 2

// packetBytes is the size of one fixed packet: u64 offset_us, f32
// value, u32 channel_index.
const packetBytes = 8 + 4 + 4

// channelMeta describes one channel in the header's channel table.
type channelMeta struct {
	Name string `json:"name"`
	// SampleStepUs is the channel's regular sampling step in
	// microseconds, or 0 if the channel is irregular.
	SampleStepUs uint64 `json:"sampleStepUs"`
}

// Header is the "events"/"gpio"/"imu" JSON header.
type Header struct {
	container.Common
	Channels []channelMeta `json:"channels"`
}

// Writer creates a new events file. Type selects between
// container.TypeEvents, container.TypeGpio and container.TypeImu —
// the three modalities share this exact wire format.
type Writer struct {
	env         *container.Writer
	start       rational.Time
	typ         string
	channels    []channelMeta
	lastOffset  []uint64
	wroteAny    []bool
	packetCount uint64
	extra       *container.ExtraProperties
}

// Create opens a new events file for writing, starting at start and
// tagged with typ (one of container.TypeEvents/TypeGpio/TypeImu).
// channelNames gives the channel table in write order; sampleStepUs
// gives each channel's regular step in microseconds, or 0 if
// irregular.
func Create(path string, start rational.Time, typ string, channelNames []string, sampleStepUs []uint64, logger log.Logger) (*Writer, error) {
	if len(channelNames) != len(sampleStepUs) {
		return nil, errs.New(errs.UserInput, "channelNames and sampleStepUs must have the same length")
	}
	env, err := container.Create(path, logger)
	if err != nil {
		return nil, err
	}
	channels := make([]channelMeta, len(channelNames))
	for i, name := range channelNames {
		channels[i] = channelMeta{Name: name, SampleStepUs: sampleStepUs[i]}
	}
	return &Writer{
		env: env, start: start, typ: typ, channels: channels,
		lastOffset: make([]uint64, len(channels)), wroteAny: make([]bool, len(channels)),
		extra: container.NewExtraProperties(),
	}, nil
}

// SetExtraProperties replaces the writer's extra-properties document.
func (w *Writer) SetExtraProperties(e *container.ExtraProperties) { w.extra = e }

func (w *Writer) channelIndex(name string) (int, error) {
	for i, c := range w.channels {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, errs.Newf(errs.UserInput, "unrecognized channel %q", name).WithField("channel")
}

// WriteEvent appends one packet to channel, at offsetUs microseconds
// since the file's start time. Writes within a channel must be
// monotonic non-decreasing by offset.
func (w *Writer) WriteEvent(channel string, offsetUs uint64, value float32) error {
	idx, err := w.channelIndex(channel)
	if err != nil {
		return err
	}
	if w.wroteAny[idx] && offsetUs < w.lastOffset[idx] {
		return errs.Newf(errs.UserInput, "channel %q: offsets must be monotonic non-decreasing, got %d after %d", channel, offsetUs, w.lastOffset[idx]).WithField("offsetUs")
	}
	buf := make([]byte, packetBytes)
	binary.LittleEndian.PutUint64(buf[0:8], offsetUs)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(value))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(idx))
	if _, err := w.env.WritePayload(buf); err != nil {
		return err
	}
	w.lastOffset[idx] = offsetUs
	w.wroteAny[idx] = true
	w.packetCount++
	return nil
}

// Close seals the events file. Events are sparse and carry no regular
// sample grid, so the shared header's timingInfo field is populated
// with a single-sample placeholder anchored at the file's start time;
// readers use StartTime and per-packet offsets instead.
func (w *Writer) Close() error {
	extraRaw, err := w.extra.Raw()
	if err != nil {
		return err
	}
	placeholder, err := timing.New(w.start, rational.New(1, 1), 1, nil, nil, nil)
	if err != nil {
		return err
	}
	header := Header{
		Common: container.Common{
			Version: Version2,
			Type:    w.typ,
			Timing:  placeholder,
		},
		Channels: w.channels,
	}
	startRaw, err := json.Marshal(w.start)
	if err != nil {
		return err
	}
	var startVal interface{}
	if err := json.Unmarshal(startRaw, &startVal); err != nil {
		return err
	}
	var base map[string]interface{}
	if len(extraRaw) > 0 {
		if err := json.Unmarshal(extraRaw, &base); err != nil {
			return err
		}
	} else {
		base = map[string]interface{}{}
	}
	base["startTime"] = startVal
	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}
	header.Common.ExtraProperties = merged
	return w.env.Seal(header)
}

// Reader provides random-access reads of a sealed events file.
type Reader struct {
	env    *container.Reader
	header Header
	start  rational.Time
	extra  *container.ExtraProperties
}

// Open opens an existing events/gpio/imu file for reading.
func Open(path string) (*Reader, error) {
	env, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(env.HeaderBytes(), &h); err != nil {
		env.Close()
		return nil, errs.Wrap(errs.DataIO, err, "parse events header").WithPath(path)
	}
	if h.Type != container.TypeEvents && h.Type != container.TypeGpio && h.Type != container.TypeImu {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "expected events/gpio/imu type, got %q", h.Type).WithPath(path)
	}
	if h.Version != Version2 {
		env.Close()
		return nil, errs.Newf(errs.DataIO, "unknown events version %d", h.Version).WithPath(path)
	}
	var extra struct {
		StartTime rational.Time `json:"startTime"`
	}
	if len(h.ExtraProperties) > 0 {
		if err := json.Unmarshal(h.ExtraProperties, &extra); err != nil {
			env.Close()
			return nil, errs.Wrap(errs.DataIO, err, "parse events startTime").WithPath(path)
		}
	}
	parsedExtra, err := container.ParseExtraProperties(h.ExtraProperties)
	if err != nil {
		env.Close()
		return nil, err
	}
	return &Reader{env: env, header: h, start: extra.StartTime, extra: parsedExtra}, nil
}

// Close releases the reader's file handle/mapping.
func (r *Reader) Close() error { return r.env.Close() }

// StartTime returns the file's reference start time; every packet's
// offset_us is relative to it.
func (r *Reader) StartTime() rational.Time { return r.start }

// ExtraProperties returns the file's extra-properties document
// (including the internal startTime key this package manages).
func (r *Reader) ExtraProperties() *container.ExtraProperties { return r.extra }

// ChannelNames returns the channel table in file order.
func (r *Reader) ChannelNames() []string {
	names := make([]string, len(r.header.Channels))
	for i, c := range r.header.Channels {
		names[i] = c.Name
	}
	return names
}

// ChannelCount returns the number of packets recorded on channel.
func (r *Reader) ChannelCount(channel string) (uint64, error) {
	idx, err := r.channelIndex(channel)
	if err != nil {
		return 0, err
	}
	var n uint64
	err = r.scan(func(offsetUs uint64, value float32, ch int) {
		if ch == idx {
			n++
		}
	})
	return n, err
}

func (r *Reader) channelIndex(name string) (int, error) {
	for i, c := range r.header.Channels {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, errs.Newf(errs.UserInput, "unrecognized channel %q", name).WithField("channel")
}

func (r *Reader) numPackets() int64 {
	return r.env.PayloadSize() / packetBytes
}

func (r *Reader) scan(fn func(offsetUs uint64, value float32, channel int)) error {
	n := r.numPackets()
	buf := make([]byte, packetBytes)
	for i := int64(0); i < n; i++ {
		if _, err := r.env.ReadAt(buf, i*packetBytes); err != nil {
			return err
		}
		offsetUs := binary.LittleEndian.Uint64(buf[0:8])
		value := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12]))
		ch := int(binary.LittleEndian.Uint32(buf[12:16]))
		fn(offsetUs, value, ch)
	}
	return nil
}

// ReadChannel returns the named channel's packets as a LogicalTrace,
// with each point's time computed as the file's start time plus the
// packet's offset in microseconds.
func (r *Reader) ReadChannel(channel string) (*trace.LogicalTrace, error) {
	idx, err := r.channelIndex(channel)
	if err != nil {
		return nil, err
	}
	var points []trace.Point
	err = r.scan(func(offsetUs uint64, value float32, ch int) {
		if ch != idx {
			return
		}
		dt, derr := r.start.Add(rational.New(int64(offsetUs), 1_000_000))
		if derr != nil {
			return
		}
		points = append(points, trace.Point{Time: dt, Value: value})
	})
	if err != nil {
		return nil, err
	}
	return trace.NewLogical(channel, points), nil
}
