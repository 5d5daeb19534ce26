// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/spwallet/enotestore"
	"github.com/btcsuite/spwallet/inputselect"
	"github.com/jrick/logrotate/rotator"
)

const (
	// logRotateThresholdKB is the size a log file grows to before it is
	// rotated.
	logRotateThresholdKB = 10 * 1024

	// logRotateMaxRolls is the number of rotated log files kept.
	logRotateMaxRolls = 3

	logDirPerm = 0o700
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotatorPipe != nil {
		logRotatorPipe.Write(p)
	}

	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it will write to the backend. When adding
// new subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file. This must be performed early during application startup by
// calling initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers. The backend must not be used before the log rotator has
	// been initialized, or data races and/or nil pointer dereferences
	// will occur.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	// logRotatorPipe is the write-end pipe for writing to the log
	// rotator. It is written to by the Write method of the logWriter
	// type.
	logRotatorPipe *io.PipeWriter

	log  = backendLog.Logger("SPSL")
	slog = backendLog.Logger("SLCT")
	elog = backendLog.Logger("ESTR")
)

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"SPSL": log,
	"SLCT": slog,
	"ESTR": elog,
}

func init() {
	inputselect.UseLogger(slog)
	enotestore.UseLogger(elog)
}

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory. It must be called before the
// package-global log rotator variables are used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, logDirPerm); err != nil {
			return fmt.Errorf("failed to create log directory: %w",
				err)
		}
	}

	r, err := rotator.New(
		logFile, logRotateThresholdKB, false, logRotateMaxRolls,
	)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		_ = r.Run(pr)
	}()

	logRotator = r
	logRotatorPipe = pw

	return nil
}

// closeLogRotator flushes and closes the log file, if one is open.
func closeLogRotator() {
	if logRotatorPipe != nil {
		_ = logRotatorPipe.Close()
	}
	if logRotator != nil {
		_ = logRotator.Close()
	}
}

// setLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically created
// as needed.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level. It also dynamically creates the subsystem loggers as needed, so it
// can be used to initialize the logging system.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
