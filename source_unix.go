// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build unix && !linux

package sysrand

import "golang.org/x/sys/unix"

// sysGetrandom reports the syscall as unsupported so that resolution falls
// through to the random device file.
func sysGetrandom(p []byte, nonblock bool) (int, error) {
	return 0, unix.ENOSYS
}

// kernelEntropyCount is only reachable under entropy readiness gating, which
// relies on a Linux-only kernel query.
func kernelEntropyCount(fd int) (int, error) {
	return 0, unix.ENOTTY
}
