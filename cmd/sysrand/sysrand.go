// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// sysrand writes cryptographically strong random bytes obtained from the
// operating system kernel to stdout.
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/decred/sysrand"
	flags "github.com/jessevdk/go-flags"
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

type config struct {
	Bytes   uint   `short:"n" long:"bytes" description:"number of random bytes to write"`
	Raw     bool   `short:"r" long:"raw" description:"write raw bytes instead of a hexadecimal string"`
	Device  string `short:"d" long:"device" description:"random device path to register as the fallback source instead of /dev/urandom"`
	Verbose bool   `short:"v" long:"verbose" description:"log source resolution diagnostics to stderr"`
}

func main() {
	cfg := config{
		Bytes: 32,
	}
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS]"
	_, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if cfg.Verbose {
		backend := slog.NewBackend(os.Stderr)
		logger := backend.Logger("RAND")
		logger.SetLevel(slog.LevelDebug)
		sysrand.UseLogger(logger)
	}

	if cfg.Device != "" {
		f, err := os.Open(cfg.Device)
		if err != nil {
			fatalf("cannot open %s: %v\n", cfg.Device, err)
		}
		// The package duplicates the descriptor, so the file can be
		// closed again immediately.
		sysrand.UseDeviceFd(int(f.Fd()))
		f.Close()
	}

	buf := make([]byte, cfg.Bytes)
	sysrand.Read(buf)

	stdout := bufio.NewWriter(os.Stdout)
	if cfg.Raw {
		_, err = stdout.Write(buf)
	} else {
		_, err = fmt.Fprintf(stdout, "%s\n", hex.EncodeToString(buf))
	}
	if err == nil {
		err = stdout.Flush()
	}
	if err != nil {
		fatalf("cannot write output: %v\n", err)
	}
}
