//go:build linux || darwin

/*
NAME
  mmap_unix.go

DESCRIPTION
  mmap_unix.go provides the memory-mapped payload backend on unix
  platforms.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package container

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/cortexlab/isxcore/errs"
)

// mmapBackend memory-maps the payload region [0, size) of a file.
type mmapBackend struct {
	f    *os.File
	data []byte
}

func newPayloadBackend(f *os.File, size int64) (payloadBackend, error) {
	if size == 0 {
		// mmap of zero bytes is invalid; fall back to a backend that
		// never reads anything (an empty payload never gets ReadAt).
		return &mmapBackend{f: f, data: nil}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.FileIO, err, "mmap")
	}
	return &mmapBackend{f: f, data: data}, nil
}

func (b *mmapBackend) ReadAt(buf []byte, offset int64) (int, error) {
	n := copy(buf, b.data[offset:offset+int64(len(buf))])
	return n, nil
}

func (b *mmapBackend) Close() error {
	var err error
	if b.data != nil {
		err = unix.Munmap(b.data)
	}
	if cerr := b.f.Close(); err == nil {
		err = cerr
	}
	return err
}
