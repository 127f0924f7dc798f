/*
NAME
  errs.go

DESCRIPTION
  errs.go defines the error taxonomy used across isxcore: every error
  that escapes a public API is tagged with a Kind and formatted as a
  single line starting with that Kind's tag.

LICENSE
  Copyright (C) 2026 the isxcore authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the isxcore authors.
*/

// Package errs provides the Kind-tagged error type shared by every
// isxcore package, built on github.com/pkg/errors so causes keep
// their stack trace through the wrapping chain.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which part of the error taxonomy an Error belongs
// to.
type Kind int

// The five error kinds.
const (
	// FileIO covers open/read/write/seek failures, missing paths and
	// truncation.
	FileIO Kind = iota
	// DataIO covers header parsing failures, unknown versions, type
	// mismatches and out-of-range trailers.
	DataIO
	// UserInput covers out-of-range arguments, wrong modality for an
	// operation, and unrecognized extensions.
	UserInput
	// Series covers a §4.6 compatibility rule failure.
	Series
	// Algorithm is reserved for §4.7 exporters/algorithms.
	Algorithm
)

func (k Kind) String() string {
	switch k {
	case FileIO:
		return "FileIO"
	case DataIO:
		return "DataIO"
	case UserInput:
		return "UserInput"
	case Series:
		return "Series"
	case Algorithm:
		return "Algorithm"
	default:
		return "Unknown"
	}
}

// Error is a single-line, Kind-tagged error optionally naming the file
// path and field/index involved, wrapping an underlying cause.
type Error struct {
	Kind    Kind
	Path    string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface, rendering
// "<Kind>: [<path>: ]<message>[ (field <field>)][: <cause>]".
func (e *Error) Error() string {
	s := e.Kind.String() + ": "
	if e.Path != "" {
		s += e.Path + ": "
	}
	s += e.Message
	if e.Field != "" {
		s += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error of the given kind with no cause and no
// stack trace.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to cause, always capturing a new stack
// trace via pkg/errors.WithStack. A nil cause gives the same result as
// New.
func Wrap(kind Kind, cause error, message string) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

// WithPath returns a copy of e with Path set, used to identify the
// file involved in the failure.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithField returns a copy of e with Field set, used to identify the
// violated field or index.
func (e *Error) WithField(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
