// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build linux

package sysrand

import "golang.org/x/sys/unix"

// sysGetrandom reads entropy via the getrandom syscall.  In non-blocking
// mode the syscall fails with EAGAIN instead of waiting when the kernel
// entropy pool has not been initialized yet.
func sysGetrandom(p []byte, nonblock bool) (int, error) {
	var flags int
	if nonblock {
		flags = unix.GRND_NONBLOCK
	}
	return unix.Getrandom(p, flags)
}

// kernelEntropyCount returns the number of entropy bits the kernel reports
// as available for the random device behind fd.
func kernelEntropyCount(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.RNDGETENTCNT)
}
