// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !fips

package sysrand

// entropyGate is off in ordinary builds.  The getrandom probe already blocks
// until the kernel pool is initialized, and /dev/urandom is usable as soon
// as it opens.
const entropyGate = false
