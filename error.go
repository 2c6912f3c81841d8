// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sysrand

import (
	"fmt"
	"os"
)

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
//
// Every error produced by this package is fatal: it is passed to the
// installed fatal handler and the process does not continue past it.  The
// kinds exist so a custom handler installed via UseFatalHandler can
// distinguish the failure before the process terminates.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrDeviceOpen indicates the random device file could not be opened
	// for a reason other than an interrupted system call.
	ErrDeviceOpen = ErrorKind("ErrDeviceOpen")

	// ErrEntropyQuery indicates the kernel query for the available entropy
	// bit count failed while entropy readiness gating is in effect.
	ErrEntropyQuery = ErrorKind("ErrEntropyQuery")

	// ErrSetCloseOnExec indicates the close-on-exec flag could not be set
	// on the resolved device descriptor.
	ErrSetCloseOnExec = ErrorKind("ErrSetCloseOnExec")

	// ErrSourceRead indicates the resolved entropy primitive returned a
	// hard error while reading.
	ErrSourceRead = ErrorKind("ErrSourceRead")

	// ErrSourceExhausted indicates the resolved entropy primitive returned
	// no data, which is treated as source exhaustion rather than a
	// condition that can be retried.
	ErrSourceExhausted = ErrorKind("ErrSourceExhausted")

	// ErrDupDescriptor indicates a descriptor supplied to UseDeviceFd
	// could not be duplicated.
	ErrDupDescriptor = ErrorKind("ErrDupDescriptor")

	// ErrDescriptorConflict indicates a descriptor was supplied to
	// UseDeviceFd after the entropy source had already been resolved to a
	// different device descriptor.
	ErrDescriptorConflict = ErrorKind("ErrDescriptorConflict")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error produced while acquiring entropy from the
// kernel.  It has full support for errors.Is and errors.As, so the caller
// can ascertain the specific reason for the error by checking the underlying
// error.
type Error struct {
	Err         error
	RawErr      error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.  The raw error is the
// underlying system error, if any.
func makeError(kind ErrorKind, desc string, rawErr error) Error {
	return Error{Err: kind, RawErr: rawErr, Description: desc}
}

// fatalHandler is invoked with the offending error whenever the package
// encounters a condition it cannot continue from.  It must not return.
var fatalHandler = exitFatalHandler

// exitFatalHandler writes the error to stderr and terminates the process.
func exitFatalHandler(err error) {
	fmt.Fprintf(os.Stderr, "sysrand: %v\n", err)
	os.Exit(1)
}

// UseFatalHandler replaces the handler invoked when entropy acquisition
// fails.  The default handler writes the error to stderr and terminates the
// process.
//
// Handing weak or partial randomness to a cryptographic consumer is strictly
// worse than crashing, so a replacement handler must not allow the caller to
// continue: it is expected to terminate the process after performing any
// cleanup of its own.  Should the handler return anyway, the package panics
// with the same error.
func UseFatalHandler(f func(err error)) {
	fatalHandler = f
}

// processFatal logs the error, routes it to the installed fatal handler, and
// guarantees that control never returns to the caller.
func processFatal(err error) {
	log.Criticalf("%v", err)
	fatalHandler(err)
	panic(err)
}
