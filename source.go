// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build unix

package sysrand

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// devRandomPath is the canonical device file used when the getrandom
	// syscall is unavailable and no descriptor has been supplied via
	// UseDeviceFd.
	devRandomPath = "/dev/urandom"

	// entropyBitsNeeded is the number of available entropy bits the kernel
	// must report before a device descriptor is used under entropy
	// readiness gating.
	entropyBitsNeeded = 256

	// entropyPollInterval is how long to sleep between entropy bit count
	// queries while waiting for the kernel pool to reach the threshold.
	entropyPollInterval = 250 * time.Millisecond
)

// sourceState describes which kernel primitive serves entropy reads.
type sourceState uint8

// The state starts out unresolved and transitions exactly once, to either
// the getrandom syscall or an open device descriptor.  It never reverts.
const (
	sourceUnresolved sourceState = iota
	sourceGetrandom
	sourceDevice
)

// primitive is the resolved entropy primitive.  The fd field is only
// meaningful in the sourceDevice state.
type primitive struct {
	state sourceState
	fd    int
}

// source is a process-wide entropy source.  The zero-configured instance
// produced by newSource reaches directly into the kernel; the function
// fields exist so tests can substitute instrumented primitives.
//
// The resolved primitive is written exactly once inside the sync.Once and
// read without further synchronization afterward, which is safe because the
// once establishes a happens-before edge to every subsequent reader.  The
// requested descriptor has its own lock since it may legitimately be written
// before resolution ever runs.
type source struct {
	// once is the one-time execution barrier for resolve.
	once sync.Once

	// reqMtx guards reqFd and reqSet.
	reqMtx sync.RWMutex

	// reqFd is a descriptor supplied via UseDeviceFd that resolution will
	// use instead of opening the device file.  reqSet distinguishes an
	// unset request from descriptor zero.
	reqFd  int
	reqSet bool

	// prim is the resolved entropy primitive.  Only resolve writes it.
	prim primitive

	// Kernel primitives.  Defaults are established by newSource.
	getrandom   func(p []byte, nonblock bool) (int, error)
	open        func(path string, mode int, perm uint32) (int, error)
	read        func(fd int, p []byte) (int, error)
	dup         func(fd int) (int, error)
	closeFd     func(fd int) error
	fcntl       func(fd uintptr, cmd, arg int) (int, error)
	entropyBits func(fd int) (int, error)

	// gatePoll is the sleep interval between entropy readiness queries.
	gatePoll time.Duration

	// fatal is invoked on unrecoverable failures and never returns.
	fatal func(err error)
}

// newSource returns a source wired to the real kernel primitives for the
// build platform.
func newSource() *source {
	return &source{
		getrandom:   sysGetrandom,
		open:        unix.Open,
		read:        unix.Read,
		dup:         unix.Dup,
		closeFd:     unix.Close,
		fcntl:       unix.FcntlInt,
		entropyBits: kernelEntropyCount,
		gatePoll:    entropyPollInterval,
		fatal:       processFatal,
	}
}

// resolveOnce runs resolve under the one-time execution barrier.  Concurrent
// first callers block until the single execution finishes and then observe
// its results without further locking.
func (s *source) resolveOnce() {
	s.once.Do(s.resolve)
}

// resolve decides which kernel primitive serves all future reads.  It probes
// the getrandom syscall first and falls back to a device descriptor, either
// one previously supplied via UseDeviceFd or a freshly opened
// /dev/urandom.  It only returns once a usable primitive is established;
// every failure mode short of an interrupted system call is fatal.
func (s *source) resolve() {
	s.reqMtx.RLock()
	fd, haveFd := s.reqFd, s.reqSet
	s.reqMtx.RUnlock()

	// Probe getrandom with a single non-blocking byte.  EAGAIN means the
	// syscall exists but the kernel entropy pool is not yet initialized,
	// in which case the same call is repeated in blocking mode rather
	// than continuing with poor entropy.
	var probe [1]byte
	n, err := s.getrandom(probe[:], true)
	if err == nil && n == 1 {
		s.prim = primitive{state: sourceGetrandom}
		return
	}
	if errors.Is(err, unix.EAGAIN) {
		log.Warnf("getrandom indicates the kernel entropy pool has not " +
			"been initialized; blocking until entropy is available rather " +
			"than continuing with poor entropy")
		for {
			n, err = s.getrandom(probe[:], false)
			if err == nil && n == 1 {
				s.prim = primitive{state: sourceGetrandom}
				return
			}
			if !errors.Is(err, unix.EINTR) {
				break
			}
		}
	}

	// The syscall is unusable on this system.  Fall back to the device
	// file unless a descriptor was already supplied.
	if !haveFd {
		for {
			fd, err = s.open(devRandomPath, unix.O_RDONLY, 0)
			if err == nil {
				break
			}
			if !errors.Is(err, unix.EINTR) {
				s.fatal(makeError(ErrDeviceOpen, fmt.Sprintf("cannot open %s: %v",
					devRandomPath, err), err))
			}
		}
	}

	if entropyGate {
		s.waitKernelEntropy(fd)
	}

	s.setCloseOnExec(fd)
	s.prim = primitive{state: sourceDevice, fd: fd}
}

// waitKernelEntropy blocks until the kernel reports at least
// entropyBitsNeeded bits of available entropy for the device descriptor.
// getrandom performs the equivalent readiness check in the kernel, but a
// plain device descriptor has to be polled.  The loop is intentionally
// unbounded.
func (s *source) waitKernelEntropy(fd int) {
	firstIteration := true
	for {
		bits, err := s.entropyBits(fd)
		if err != nil {
			s.fatal(makeError(ErrEntropyQuery, fmt.Sprintf("cannot query "+
				"available kernel entropy: %v", err), err))
		}
		if bits >= entropyBitsNeeded {
			return
		}
		if firstIteration {
			log.Infof("Kernel entropy pool contains too few bits: have %d, "+
				"want %d; blocking until sufficient entropy is available",
				bits, entropyBitsNeeded)
			firstIteration = false
		}
		time.Sleep(s.gatePoll)
	}
}

// setCloseOnExec marks fd close-on-exec.  A kernel without fcntl support is
// tolerated; any other failure is fatal.
func (s *source) setCloseOnExec(fd int) {
	flags, err := s.fcntl(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		if errors.Is(err, unix.ENOSYS) {
			return
		}
		s.fatal(makeError(ErrSetCloseOnExec, fmt.Sprintf("cannot read "+
			"descriptor flags: %v", err), err))
	}
	_, err = s.fcntl(uintptr(fd), unix.F_SETFD, flags|unix.FD_CLOEXEC)
	if err != nil {
		s.fatal(makeError(ErrSetCloseOnExec, fmt.Sprintf("cannot set "+
			"close-on-exec: %v", err), err))
	}
}

// fill writes len(b) bytes of kernel entropy into b using the resolved
// primitive.  Interrupted calls are retried and short reads accumulate; any
// other failure is fatal.  resolveOnce must have completed.
func (s *source) fill(b []byte) {
	for len(b) > 0 {
		var n int
		var err error
		switch s.prim.state {
		case sourceGetrandom:
			n, err = s.getrandom(b, false)
		case sourceDevice:
			n, err = s.read(s.prim.fd, b)
		default:
			panic("sysrand: entropy source used before resolution")
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			s.fatal(makeError(ErrSourceRead, fmt.Sprintf("cannot read from "+
				"entropy source: %v", err), err))
		}
		if n <= 0 {
			s.fatal(makeError(ErrSourceExhausted,
				"entropy source returned no data", nil))
		}
		b = b[n:]
	}
}

// readFull fills b entirely, resolving the entropy primitive first if
// needed.  A zero-length request returns before the resolution barrier and
// has no side effects at all.
func (s *source) readFull(b []byte) {
	if len(b) == 0 {
		return
	}
	s.resolveOnce()
	s.fill(b)
}

// setDeviceFd registers the caller's descriptor as the device fallback.  The
// descriptor is duplicated, so ownership is not taken and the caller remains
// responsible for closing its own copy.
//
// The first caller to either read entropy or register a descriptor fixes the
// outcome for the process: if resolution has already settled on getrandom
// the duplicate is simply closed, while a registration conflicting with an
// earlier device resolution is a fatal usage error.
func (s *source) setDeviceFd(fd int) {
	dupFd, err := s.dup(fd)
	if err != nil {
		s.fatal(makeError(ErrDupDescriptor, fmt.Sprintf("cannot duplicate "+
			"descriptor %d: %v", fd, err), err))
	}

	s.reqMtx.Lock()
	s.reqFd, s.reqSet = dupFd, true
	s.reqMtx.Unlock()

	s.resolveOnce()
	switch {
	case s.prim.state == sourceGetrandom:
		s.closeFd(dupFd)
	case s.prim.fd != dupFd:
		s.fatal(makeError(ErrDescriptorConflict, fmt.Sprintf("descriptor %d "+
			"registered after the entropy source was already resolved", fd),
			nil))
	}
}

// globalSource is the single entropy source shared by the whole process.  It
// is never torn down.
var globalSource = newSource()

// Read fills b with cryptographically strong random bytes sourced from the
// operating system kernel.  It never returns an error: on return the buffer
// is fully populated, and any failure to produce entropy terminates the
// process through the fatal handler instead.  A zero-length b is a no-op.
//
// Read is safe for concurrent access.
func Read(b []byte) {
	globalSource.readFull(b)
}

// UseDeviceFd supplies an already-open readable descriptor for the random
// device, to be used in place of opening /dev/urandom should the getrandom
// syscall be unavailable.  The descriptor is duplicated internally; the
// caller keeps ownership of fd and may close it at any time.
//
// Registration only has an effect before the entropy source is resolved,
// which happens on the first Read or UseDeviceFd call process-wide.  After a
// resolution that chose getrandom the descriptor is silently discarded;
// after a resolution that chose a different device descriptor the call is a
// fatal usage error.
func UseDeviceFd(fd int) {
	globalSource.setDeviceFd(fd)
}

// reader adapts the package to io.Reader for callers that want to plug the
// kernel source into interfaces expecting one.
type reader struct{}

// Read implements io.Reader.Read.  It never returns an error.
func (reader) Read(p []byte) (int, error) {
	globalSource.readFull(p)
	return len(p), nil
}

// Reader returns an io.Reader that fills buffers with kernel entropy.  Its
// Read method never errors and always performs a full read.  The returned
// reader is safe for concurrent access.
func Reader() io.Reader {
	return reader{}
}
