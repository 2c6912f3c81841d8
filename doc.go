// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sysrand acquires cryptographically strong random bytes directly
// from the operating system kernel.  It is intended to seed downstream
// cryptographic generators and therefore makes an uncompromising tradeoff:
// every request is satisfied in full with fresh kernel entropy, or the
// process is terminated.  There is no error return and no partial fill.
//
// The kernel primitive is resolved exactly once per process.  On Linux the
// getrandom syscall is probed first and used for all reads when available.
// When the syscall is missing, the package falls back to reading from
// /dev/urandom, or from a descriptor previously supplied via UseDeviceFd.
// If the kernel reports that its entropy pool is not yet initialized, the
// package blocks until it is, rather than continuing with poor entropy.
//
// Builds with the fips tag additionally require the kernel to report at
// least 256 bits of available entropy before the device descriptor is used,
// polling until that threshold is met.
//
// All exported functions are safe for concurrent access.  Only Unix-like
// platforms are supported.
package sysrand
