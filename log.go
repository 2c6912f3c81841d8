// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sysrand

import "github.com/decred/slog"

// log is a logger that is initialized with no output filters.  This
// means the package will not perform any logging by default until the caller
// requests it.
// The default amount of logging is none.
var log = slog.Disabled

// DisableLog disables all library log output.  Logging output is disabled
// by default until UseLogger is called.
func DisableLog() {
	log = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
//
// The package only logs advisory diagnostics, such as a one-time notice when
// the process must block waiting for the kernel entropy pool to become
// ready.  Nothing logged here is an error: failures terminate the process
// through the fatal handler instead.
func UseLogger(logger slog.Logger) {
	log = logger
}
