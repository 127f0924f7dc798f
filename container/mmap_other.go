//go:build !linux && !darwin

/*
NAME
  mmap_other.go

DESCRIPTION
  mmap_other.go provides the portable, non-mmap payload backend for
  platforms without a unix mmap syscall, using plain ReadAt.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.
*/

package container

import "os"

// fileBackend reads the payload region directly from the open file
// handle via ReadAt, with no memory mapping.
type fileBackend struct {
	f *os.File
}

func newPayloadBackend(f *os.File, size int64) (payloadBackend, error) {
	return &fileBackend{f: f}, nil
}

func (b *fileBackend) ReadAt(buf []byte, offset int64) (int, error) {
	return b.f.ReadAt(buf, offset)
}

func (b *fileBackend) Close() error {
	return b.f.Close()
}
