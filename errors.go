// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package v2f implements the V2F variable-to-fixed raster codec: a
// quantizer, a spatial decorrelator, and a forest of prefix trees that
// amortizes one fixed-width output codeword across a variable run of
// input samples.
package v2f

import (
	"io"

	"github.com/gici-uab/v2f/internal/errkind"
)

// Kind identifies the class of failure reported by an Error. Numeric values
// are stable and may be surfaced directly as process exit codes. This is a
// re-export of internal/errkind.Kind so that quantizer and decorrelator
// (which cannot import package v2f without a cycle) share the exact same
// taxonomy that callers of package v2f observe.
type Kind = errkind.Kind

const (
	None                        = errkind.None
	UnexpectedEndOfFile         = errkind.UnexpectedEndOfFile
	Io                          = errkind.Io
	CorruptedData               = errkind.CorruptedData
	InvalidParameter            = errkind.InvalidParameter
	NonZeroReservedOrPadding    = errkind.NonZeroReservedOrPadding
	UnableToCreateTemporaryFile = errkind.UnableToCreateTemporaryFile
	OutOfMemory                 = errkind.OutOfMemory
	FeatureNotImplemented       = errkind.FeatureNotImplemented
)

// Error is the wrapper type for errors specific to this library. It carries
// a stable Kind alongside a human-readable message.
type Error = errkind.Error

// KindOf reports the Kind of err, or Io if err does not carry one.
func KindOf(err error) Kind {
	return errkind.KindOf(err)
}

func errorf(kind Kind, format string, args ...interface{}) error {
	return errkind.Errorf(kind, format, args...)
}

// recoverError is deferred by every exported entry point that uses panic
// internally to unwind past several layers of validation code. It re-panics
// on a runtime.Error (a programmer mistake we want to see) and on any panic
// value that is not an error.
func recoverError(err *error) {
	errkind.Recover(err)
}

// wrapErr normalizes a generic error into an Error of the given Kind,
// leaving existing Errors (and io.EOF) untouched.
func wrapErr(err error, kind Kind) error {
	if err == nil || err == io.EOF {
		return err
	}
	if _, ok := err.(Error); ok {
		return err
	}
	return Error{Kind: kind, Msg: err.Error()}
}
