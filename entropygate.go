// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build fips

package sysrand

// entropyGate enables certified-mode entropy readiness gating: a device
// descriptor is not used until the kernel reports at least entropyBitsNeeded
// bits of available entropy.
const entropyGate = true
