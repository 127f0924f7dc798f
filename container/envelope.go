/*
NAME
  envelope.go

DESCRIPTION
  envelope.go implements the container envelope shared by every
  native file: a packed binary payload followed by a JSON header,
  followed by an 8-byte little-endian trailer pointing at the header.
  A single handle writes the header at seal time and records its
  offset at the end.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package container implements the shared binary-payload-then-JSON-
// header envelope used by every native isxcore file format, and the
// open/seal protocol around it.
package container

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"sync"

	"github.com/cortexlab/isxcore/errs"
	"github.com/cortexlab/isxcore/log"
)

// trailerSize is the fixed size, in bytes, of the little-endian u64
// header offset at the end of every native file.
const trailerSize = 8

// Writer streams a fixed-stride binary payload to a new file, then
// seals it by appending a JSON header and the trailer. Writer is safe
// for use by exactly one goroutine at a time; the lifecycle is a
// CREATING -> FROZEN state machine.
type Writer struct {
	f            *os.File
	path         string
	payloadBytes int64
	sealed       bool
	log          log.Logger
}

// Create opens a new file at path for writing, failing if it already
// exists.
func Create(path string, logger log.Logger) (*Writer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, errs.Wrap(errs.FileIO, err, "create").WithPath(path)
	}
	return &Writer{f: f, path: path, log: logger}, nil
}

// WritePayload appends b to the payload, returning the byte offset it
// was written at.
func (w *Writer) WritePayload(b []byte) (int64, error) {
	if w.sealed {
		return 0, errs.New(errs.UserInput, "cannot write to a sealed file").WithPath(w.path)
	}
	offset := w.payloadBytes
	n, err := w.f.Write(b)
	if err != nil {
		return 0, errs.Wrap(errs.FileIO, err, "write payload").WithPath(w.path)
	}
	w.payloadBytes += int64(n)
	return offset, nil
}

// PayloadBytes returns the number of payload bytes written so far.
func (w *Writer) PayloadBytes() int64 { return w.payloadBytes }

// Seal marshals header to JSON, writes it after the payload, writes
// the trailer, and closes the file. header must carry a Common field
// (by embedding) or MarshalJSON equivalent. Once sealed, the file
// transitions CREATING -> FROZEN and WritePayload must not be called
// again.
func (w *Writer) Seal(header interface{}) error {
	if w.sealed {
		return errs.New(errs.UserInput, "file already sealed").WithPath(w.path)
	}
	raw, err := json.Marshal(header)
	if err != nil {
		return errs.Wrap(errs.DataIO, err, "marshal header").WithPath(w.path)
	}
	if _, err := w.f.Write(raw); err != nil {
		return errs.Wrap(errs.FileIO, err, "write header").WithPath(w.path)
	}
	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint64(trailer[:], uint64(w.payloadBytes))
	if _, err := w.f.Write(trailer[:]); err != nil {
		return errs.Wrap(errs.FileIO, err, "write trailer").WithPath(w.path)
	}
	if err := w.f.Close(); err != nil {
		return errs.Wrap(errs.FileIO, err, "close").WithPath(w.path)
	}
	w.sealed = true
	w.log.Log(int8(log.LevelDebug), "sealed container", "path", w.path, "payloadBytes", w.payloadBytes, "headerBytes", len(raw))
	return nil
}

// Abort closes and deletes a partially-written file: on seal failure
// the file is corrupt and must not be left behind.
func (w *Writer) Abort() error {
	_ = w.f.Close()
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.FileIO, err, "remove aborted file").WithPath(w.path)
	}
	return nil
}

// Reader provides random-access, memory-mapped (where supported) read
// access to a sealed native file's payload, plus the parsed-out raw
// header bytes. Two Readers on the same path are independent: each
// opens its own handle.
type Reader struct {
	path        string
	payloadSize int64
	headerRaw   []byte
	mu          sync.Mutex
	backend     payloadBackend
}

// payloadBackend abstracts the unix-mmap vs portable-ReadAt payload
// access strategies, split across mmap_unix.go / mmap_other.go.
type payloadBackend interface {
	ReadAt(buf []byte, offset int64) (int, error)
	Close() error
}

// Open opens path for read access, validates the trailer, and parses
// out the raw header bytes (without unmarshalling them — that is
// modality-specific and is done by the caller).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileIO, err, "open").WithPath(path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.FileIO, err, "stat").WithPath(path)
	}
	size := info.Size()
	if size < trailerSize {
		f.Close()
		return nil, errs.New(errs.DataIO, "file too small to contain a trailer").WithPath(path)
	}

	var trailer [trailerSize]byte
	if _, err := f.ReadAt(trailer[:], size-trailerSize); err != nil {
		f.Close()
		return nil, errs.Wrap(errs.FileIO, err, "read trailer").WithPath(path)
	}
	headerOffset := int64(binary.LittleEndian.Uint64(trailer[:]))
	if headerOffset < 0 || headerOffset > size-trailerSize {
		f.Close()
		return nil, errs.Newf(errs.DataIO, "trailer points to invalid header offset %d (file size %d)", headerOffset, size).WithPath(path)
	}

	headerLen := (size - trailerSize) - headerOffset
	headerRaw := make([]byte, headerLen)
	if headerLen > 0 {
		if _, err := f.ReadAt(headerRaw, headerOffset); err != nil {
			f.Close()
			return nil, errs.Wrap(errs.FileIO, err, "read header").WithPath(path)
		}
	}
	if !json.Valid(headerRaw) {
		f.Close()
		return nil, errs.New(errs.DataIO, "header is not valid JSON").WithPath(path)
	}

	backend, err := newPayloadBackend(f, headerOffset)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Reader{path: path, payloadSize: headerOffset, headerRaw: headerRaw, backend: backend}, nil
}

// PayloadSize returns the exact payload size P.
func (r *Reader) PayloadSize() int64 { return r.payloadSize }

// HeaderBytes returns the raw JSON header text.
func (r *Reader) HeaderBytes() []byte { return r.headerRaw }

// ReadAt reads len(buf) bytes of payload starting at offset, failing
// with a UserInput error if the read would cross the payload/header
// boundary.
func (r *Reader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || offset+int64(len(buf)) > r.payloadSize {
		return 0, errs.Newf(errs.UserInput, "read [%d,%d) out of payload bounds [0,%d)", offset, offset+int64(len(buf)), r.payloadSize).WithPath(r.path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.ReadAt(buf, offset)
}

// Close releases the reader's underlying file handle / mapping.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Close()
}
