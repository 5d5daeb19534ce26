// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename = "spselect.log"
	defaultLogLevel    = "info"
	defaultMaxInputs   = 16
)

var (
	defaultLogDir = filepath.Join(".", "logs")

	// errNoOutputs is returned when no output amount is given.
	errNoOutputs = errors.New("at least one --output is required")

	// errInvalidMaxInputs is returned for a non-positive input limit.
	errInvalidMaxInputs = errors.New("--maxinputs must be positive")

	// errInvalidLogLevel is returned for an unknown debug level.
	errInvalidLogLevel = errors.New("invalid --debuglevel")

	// errNegativeOutputs is returned for a negative number of additional
	// outputs.
	errNegativeOutputs = errors.New("--additionaloutputs must not be " +
		"negative")
)

// config defines the configuration options for spselect.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Legacy     []uint64 `long:"legacy" description:"Amount of a legacy record in the store; may be repeated"`
	Seraphis   []uint64 `long:"seraphis" description:"Amount of a seraphis record in the store; may be repeated"`
	Outputs    []uint64 `long:"output" description:"Amount of a payment output; may be repeated"`
	SelfSpends []uint64 `long:"selfspend" description:"Amount of a self-spend output, only with --outputmode=v1; may be repeated"`

	OutputMode        string `long:"outputmode" description:"How the output count is derived" choice:"simple" choice:"v1" default:"simple"`
	AdditionalOutputs int    `long:"additionaloutputs" description:"Extra outputs a transaction with change has, only with --outputmode=simple" default:"1"`

	FeeRate    uint64 `long:"feerate" description:"Fee per weight unit" default:"1"`
	FeeModel   string `long:"feemodel" description:"Fee calculator" choice:"trivial" choice:"simple" choice:"stepped" choice:"weighted" default:"simple"`
	StepSize   int    `long:"stepsize" description:"Inputs per fee step for --feemodel=stepped" default:"2"`
	Discretize bool   `long:"discretize" description:"Round weighted fees up to the discretized fee levels"`

	Strategy  string `long:"strategy" description:"How the selector orders candidates" choice:"simple" choice:"ordered" choice:"largest" choice:"random" default:"simple"`
	MaxInputs int    `long:"maxinputs" description:"Maximum number of inputs" default:"16"`

	LogDir     string `long:"logdir" description:"Directory to log output"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)

	return ok
}

// loadConfig parses the command line arguments into a config and validates
// it. The returned slice holds the arguments that were not parsed.
func loadConfig(args []string) (*config, []string, error) {
	cfg := config{
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
		MaxInputs:  defaultMaxInputs,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if len(cfg.Outputs) == 0 && len(cfg.SelfSpends) == 0 {
		return nil, nil, errNoOutputs
	}

	if cfg.MaxInputs <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", errInvalidMaxInputs,
			cfg.MaxInputs)
	}

	if cfg.AdditionalOutputs < 0 {
		return nil, nil, fmt.Errorf("%w: %d", errNegativeOutputs,
			cfg.AdditionalOutputs)
	}

	if !validLogLevel(cfg.DebugLevel) {
		return nil, nil, fmt.Errorf("%w: %q", errInvalidLogLevel,
			cfg.DebugLevel)
	}

	return &cfg, remaining, nil
}
