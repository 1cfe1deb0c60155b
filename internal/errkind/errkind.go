// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package errkind holds the Kind taxonomy and Error type shared by the root
// v2f package and its quantizer/decorrelator subpackages. It exists only to
// break the import cycle that would otherwise result from those subpackages
// needing the same Kind values that package v2f re-exports at its top level.
package errkind

import (
	"fmt"
	"runtime"
)

// Kind identifies the class of failure reported by an Error. Numeric values
// are stable and may be surfaced directly as process exit codes.
type Kind uint8

const (
	// None is never carried by an Error; it exists only so that Kind's zero
	// value corresponds to "no error" the same way the original v2f_error_t
	// reserves 0 for V2F_E_NONE.
	None Kind = iota
	UnexpectedEndOfFile
	Io
	CorruptedData
	InvalidParameter
	NonZeroReservedOrPadding
	UnableToCreateTemporaryFile
	OutOfMemory
	FeatureNotImplemented
)

func (k Kind) String() string {
	switch k {
	case None:
		return "no error"
	case UnexpectedEndOfFile:
		return "unexpected end of file"
	case Io:
		return "I/O error"
	case CorruptedData:
		return "corrupted data"
	case InvalidParameter:
		return "invalid parameter"
	case NonZeroReservedOrPadding:
		return "non-zero reserved or padding bits"
	case UnableToCreateTemporaryFile:
		return "unable to create temporary file"
	case OutOfMemory:
		return "out of memory"
	case FeatureNotImplemented:
		return "feature not implemented"
	default:
		return "unknown error"
	}
}

// Error is the wrapper type for errors specific to this library. It carries
// a stable Kind alongside a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e Error) Error() string {
	if e.Msg == "" {
		return "v2f: " + e.Kind.String()
	}
	return "v2f: " + e.Kind.String() + ": " + e.Msg
}

// KindOf reports the Kind of err, or Io if err does not carry one.
func KindOf(err error) Kind {
	if err == nil {
		return None
	}
	if e, ok := err.(Error); ok {
		return e.Kind
	}
	return Io
}

// Errorf constructs an Error of the given Kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Panicf is Errorf followed by panic, for use deep inside validation code
// that wants to unwind past several call frames to a single deferred
// Recover at the exported entry point.
func Panicf(kind Kind, format string, args ...interface{}) {
	panic(Errorf(kind, format, args...))
}

// Recover is deferred by every exported entry point that uses Panicf
// internally. It re-panics on a runtime.Error (a programmer mistake we want
// to see) and on any panic value that is not an error; an Error is returned
// as is, and any other error is returned as an Error of Kind Io.
func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case Error:
		*err = ex
	case error:
		*err = Error{Kind: Io, Msg: ex.Error()}
	default:
		panic(ex)
	}
}
